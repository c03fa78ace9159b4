package sqlstore

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/finsnap/finsnap-go/core"
)

// VaultTokenStore persists the token pair in the vault_tokens table. The
// table holds at most one row; Put swaps it inside one transaction.
type VaultTokenStore struct {
	db   *bun.DB
	repo repository.Repository[*vaultTokenRecord]
}

func NewVaultTokenStore(db *bun.DB) (*VaultTokenStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*vaultTokenRecord](db, vaultTokenHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid vault token repository wiring: %w", err)
		}
	}
	return &VaultTokenStore{db: db, repo: repo}, nil
}

func (s *VaultTokenStore) Get(ctx context.Context) (core.TokenPair, error) {
	if s == nil || s.repo == nil {
		return core.TokenPair{}, fmt.Errorf("sqlstore: vault token store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.TokenPair{}, err
	}
	if len(records) == 0 {
		return core.TokenPair{}, nil
	}
	return core.TokenPair{
		AccessToken:  records[0].AccessToken,
		RefreshToken: records[0].RefreshToken,
	}, nil
}

func (s *VaultTokenStore) Put(ctx context.Context, pair core.TokenPair) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: vault token store is not configured")
	}
	if err := pair.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*vaultTokenRecord)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return err
		}
		record := &vaultTokenRecord{
			ID:           uuid.NewString(),
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}

func (s *VaultTokenStore) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: vault token store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*vaultTokenRecord)(nil)).
		Where("1 = 1").
		Exec(ctx)
	return err
}

var _ core.TokenVault = (*VaultTokenStore)(nil)
