// Package services – SettingsService
//
// This file implements per-community settings. The prefix is the only
// setting; reads and writes go through the community repository so that its
// cache stays authoritative.
package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-community-bot/internal/config"
)

// PrefixRepo is implemented by the community repository.
type PrefixRepo interface {
	GetPrefix(ctx context.Context, communityID int64) (string, error)
	SetPrefix(ctx context.Context, communityID int64, prefix string) (bool, error)
}

// SettingsService reads and changes community settings.
type SettingsService struct {
	Repo PrefixRepo
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(r PrefixRepo) *SettingsService {
	return &SettingsService{Repo: r}
}

// Prefix returns the community's current prefix.
func (s *SettingsService) Prefix(ctx context.Context, communityID int64) (string, error) {
	return s.Repo.GetPrefix(ctx, communityID)
}

// SetPrefix validates and stores a new prefix. It returns the normalized
// prefix and whether it changed.
func (s *SettingsService) SetPrefix(ctx context.Context, communityID int64, raw string) (string, bool, error) {
	prefix := NormalizePrefix(raw)
	if err := config.ValidatePrefix(prefix); err != nil {
		return prefix, false, fmt.Errorf("%w: %s", ErrInvalidPrefix, err.Error())
	}
	changed, err := s.Repo.SetPrefix(ctx, communityID, prefix)
	if err != nil {
		return prefix, false, err
	}
	return prefix, changed, nil
}

// NormalizePrefix trims surrounding whitespace and applies NFC so visually
// identical prefixes compare equal.
func NormalizePrefix(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}
