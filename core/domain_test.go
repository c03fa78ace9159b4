package core

import (
	"errors"
	"testing"
	"time"
)

func TestConnectionTransitionAllowed(t *testing.T) {
	cases := []struct {
		current ConnectionStatus
		next    ConnectionStatus
		want    bool
	}{
		{ConnectionStatusPending, ConnectionStatusActive, true},
		{ConnectionStatusActive, ConnectionStatusSyncing, true},
		{ConnectionStatusSyncing, ConnectionStatusActive, true},
		{ConnectionStatusSyncing, ConnectionStatusError, true},
		{ConnectionStatusActive, ConnectionStatusError, true},
		{ConnectionStatusError, ConnectionStatusSyncing, true},
		{ConnectionStatusActive, ConnectionStatusDisconnected, true},
		{ConnectionStatusError, ConnectionStatusDisconnected, true},
		{ConnectionStatusError, ConnectionStatusActive, false},
		{ConnectionStatusPending, ConnectionStatusPending, true},
	}
	for _, tc := range cases {
		if got := ConnectionTransitionAllowed(tc.current, tc.next); got != tc.want {
			t.Fatalf("transition %s -> %s: expected %v, got %v", tc.current, tc.next, tc.want, got)
		}
	}
}

func TestConnectionTypeValidate(t *testing.T) {
	for _, valid := range []ConnectionType{
		ConnectionTypeSII, ConnectionTypeBankItau, ConnectionTypeBankChile, ConnectionTypeBankSantander,
	} {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected %q to be valid, got %v", valid, err)
		}
	}
	if err := ConnectionType("bank_bci").Validate(); !errors.Is(err, ErrInvalidConnectionType) {
		t.Fatalf("expected invalid connection type error, got %v", err)
	}
}

func TestTokenPairValidateRejectsPartialPair(t *testing.T) {
	if err := (TokenPair{AccessToken: "acc"}).Validate(); !errors.Is(err, ErrIncompleteTokenPair) {
		t.Fatalf("expected incomplete pair error for missing refresh token, got %v", err)
	}
	if err := (TokenPair{RefreshToken: "ref"}).Validate(); !errors.Is(err, ErrIncompleteTokenPair) {
		t.Fatalf("expected incomplete pair error for missing access token, got %v", err)
	}
	if err := (TokenPair{AccessToken: "acc", RefreshToken: "ref"}).Validate(); err != nil {
		t.Fatalf("expected complete pair to validate, got %v", err)
	}
}

func TestAuthTransitionAllowed(t *testing.T) {
	if !AuthTransitionAllowed(AuthStateBoot, AuthStateValidating) {
		t.Fatalf("expected boot -> validating to be allowed")
	}
	if !AuthTransitionAllowed(AuthStateValidating, AuthStateAnonymous) {
		t.Fatalf("expected validating -> anonymous to be allowed")
	}
	if AuthTransitionAllowed(AuthStateBoot, AuthStateAuthenticated) {
		t.Fatalf("expected boot -> authenticated to be rejected without validation")
	}
}

func TestLinkTokenExpired(t *testing.T) {
	now := time.Now().UTC()
	token := LinkToken{Token: "tok_123", Expiration: now.Add(-time.Minute)}
	if !token.Expired(now) {
		t.Fatalf("expected token past its expiration to report expired")
	}
	fresh := LinkToken{Token: "tok_456", Expiration: now.Add(time.Minute)}
	if fresh.Expired(now) {
		t.Fatalf("expected fresh token to not report expired")
	}
	open := LinkToken{Token: "tok_789"}
	if open.Expired(now) {
		t.Fatalf("expected zero expiration to never report expired")
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	base := RegisterRequest{
		Email:           "ops@acme.cl",
		Password:        "hunter22hunter22",
		PasswordConfirm: "hunter22hunter22",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid register request, got %v", err)
	}

	short := base
	short.Password = "short"
	short.PasswordConfirm = "short"
	if err := short.Validate(); err == nil {
		t.Fatalf("expected minimum length policy to reject short password")
	}

	mismatch := base
	mismatch.PasswordConfirm = "different-password"
	if err := mismatch.Validate(); err == nil {
		t.Fatalf("expected confirmation mismatch to be rejected")
	}
}
