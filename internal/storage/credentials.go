package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// SaveCredentials writes the token and the user snapshot as a pair. If
// either write fails the pair is cleared so a half-written session can
// never be restored.
func SaveCredentials(ctx context.Context, store domain.CredentialStore, token string, user *domain.User) error {
	if token == "" || user == nil {
		return domain.ErrCredentialsIncomplete
	}
	snapshot, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user snapshot: %w", err)
	}

	if err := store.Set(ctx, domain.UserDataKey, string(snapshot)); err != nil {
		return fmt.Errorf("persist user snapshot: %w", err)
	}
	if err := store.Set(ctx, domain.TokenKey, token); err != nil {
		_ = ClearCredentials(ctx, store)
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// LoadCredentials reads the stored pair. A fully absent pair loads as
// (nil, nil). A half-present or corrupt pair is cleared and reported as
// incomplete, forcing re-authentication.
func LoadCredentials(ctx context.Context, store domain.CredentialStore) (*domain.Credentials, error) {
	token, err := store.Get(ctx, domain.TokenKey)
	if err != nil && !errors.Is(err, domain.ErrCredentialsNotFound) {
		return nil, err
	}
	snapshot, err := store.Get(ctx, domain.UserDataKey)
	if err != nil && !errors.Is(err, domain.ErrCredentialsNotFound) {
		return nil, err
	}

	if token == "" && snapshot == "" {
		return nil, nil
	}
	if token == "" || snapshot == "" {
		_ = ClearCredentials(ctx, store)
		return nil, domain.ErrCredentialsIncomplete
	}

	var user domain.User
	if err := json.Unmarshal([]byte(snapshot), &user); err != nil {
		_ = ClearCredentials(ctx, store)
		return nil, domain.ErrCredentialsIncomplete
	}
	return &domain.Credentials{Token: token, User: &user}, nil
}

// ClearCredentials removes both halves of the pair.
func ClearCredentials(ctx context.Context, store domain.CredentialStore) error {
	tokenErr := store.Remove(ctx, domain.TokenKey)
	userErr := store.Remove(ctx, domain.UserDataKey)
	return errors.Join(tokenErr, userErr)
}
