package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

// vaultTokenRecord is the single-row custody table for the access/refresh
// pair. Put replaces the row wholesale inside one transaction, so a partial
// pair never exists on disk.
type vaultTokenRecord struct {
	bun.BaseModel `bun:"table:vault_tokens,alias:vt"`

	ID           string    `bun:"id,pk"`
	AccessToken  string    `bun:"access_token,notnull"`
	RefreshToken string    `bun:"refresh_token,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
