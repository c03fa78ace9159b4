package core

import (
	"fmt"
	"strings"
	"time"
)

// Wire shapes for the FinSnap REST API. Field names follow the server's
// snake_case contract exactly.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("core: email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("core: password is required")
	}
	return nil
}

const minPasswordLength = 8

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"-"`
	CompanyName     string `json:"company_name,omitempty"`
}

// Validate enforces the client-side registration preconditions: confirmation
// equality and the minimum length policy, checked before any network call.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("core: email is required")
	}
	if len(r.Password) < minPasswordLength {
		return fmt.Errorf("core: password must be at least %d characters", minPasswordLength)
	}
	if r.Password != r.PasswordConfirm {
		return fmt.Errorf("core: password confirmation does not match")
	}
	return nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func (r TokenResponse) Pair() TokenPair {
	return TokenPair{
		AccessToken:  strings.TrimSpace(r.AccessToken),
		RefreshToken: strings.TrimSpace(r.RefreshToken),
	}
}

type SIICredentials struct {
	RUT      string `json:"rut"`
	Password string `json:"password"`
}

type ItauCredentials struct {
	RUTUsuario string `json:"rut_usuario"`
	Clave      string `json:"clave"`
	RUTEmpresa string `json:"rut_empresa,omitempty"`
}

type ConnectionCreateRequest struct {
	ConnectionType  ConnectionType   `json:"connection_type"`
	Name            string           `json:"name"`
	WebhookURL      string           `json:"webhook_url,omitempty"`
	SIICredentials  *SIICredentials  `json:"sii_credentials,omitempty"`
	ItauCredentials *ItauCredentials `json:"itau_credentials,omitempty"`
}

func (r ConnectionCreateRequest) Validate() error {
	if err := r.ConnectionType.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("core: connection name is required")
	}
	return nil
}

type ConnectionUpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	WebhookURL *string `json:"webhook_url,omitempty"`
	IsEnabled  *bool   `json:"is_enabled,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LinkTokenCreateRequest struct {
	ConnectionType ConnectionType `json:"connection_type"`
	Name           string         `json:"name"`
	WebhookURL     string         `json:"webhook_url,omitempty"`
}

func (r LinkTokenCreateRequest) Validate() error {
	if err := r.ConnectionType.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("core: connection name is required")
	}
	return nil
}

type LinkTokenResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

type APIKeyCreateRequest struct {
	Name          string `json:"name"`
	ExpiresInDays int    `json:"expires_in_days,omitempty"`
}

func (r APIKeyCreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("core: api key name is required")
	}
	if r.ExpiresInDays < 0 {
		return fmt.Errorf("core: expires_in_days must not be negative")
	}
	return nil
}

// APIErrorResponse is the server's error envelope.
type APIErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func (r APIErrorResponse) Text() string {
	if strings.TrimSpace(r.Detail) != "" {
		return strings.TrimSpace(r.Detail)
	}
	return strings.TrimSpace(r.Message)
}
