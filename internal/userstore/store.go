// Package userstore persists signup/login state (component C): one
// row per label, its password hash, and its NS-mode selection.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrLabelTaken is returned by Create when the label already exists.
var ErrLabelTaken = errors.New("label already exists")

// ErrNotFound is returned when a lookup finds no matching user.
var ErrNotFound = errors.New("user not found")

// Store wraps a *gorm.DB scoped to the users table.
type Store struct {
	db *gorm.DB
}

// New wraps an already-migrated *gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new user row with the given label and password
// hash, defaulting to internal NS mode. The count check is only a fast
// path; the actual uniqueness guarantee for two simultaneous signups of
// the same label is the unique index on users.label, enforced by
// sqlite and surfaced here as ErrLabelTaken via gorm's TranslateError
// (spec.md's "the store's uniqueness constraint").
func (s *Store) Create(ctx context.Context, label, passwordHash string) (User, error) {
	now := time.Now().UTC()
	user := User{
		Label:        label,
		PasswordHash: passwordHash,
		NSMode:       ModeInternal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("label = ?", label).Count(&count).Error; err != nil {
			return fmt.Errorf("check existing label: %w", err)
		}
		if count > 0 {
			return ErrLabelTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrLabelTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Get fetches a user row by label.
func (s *Store) Get(ctx context.Context, label string) (User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "label = ?", label).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user %q: %w", label, err)
	}
	return user, nil
}

// VerifyAndTouch records a successful login by bumping last_login_at.
// Callers perform the password comparison themselves (component B/G);
// this only persists the side effect of a verified login.
func (s *Store) VerifyAndTouch(ctx context.Context, label string) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("label = ?", label).
		Updates(map[string]any{"last_login_at": now, "updated_at": now})
	if res.Error != nil {
		return fmt.Errorf("touch login for %q: %w", label, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetExternal switches a user into external NS mode with the given
// nameserver list (1-6 entries).
func (s *Store) SetExternal(ctx context.Context, label string, ns []string) error {
	n1, n2, n3, n4, n5, n6 := externalNSColumns(ns)
	res := s.db.WithContext(ctx).Model(&User{}).Where("label = ?", label).Updates(map[string]any{
		"ns_mode":       ModeExternal,
		"external_ns1":  n1,
		"external_ns2":  n2,
		"external_ns3":  n3,
		"external_ns4":  n4,
		"external_ns5":  n5,
		"external_ns6":  n6,
		"updated_at":    time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("set external ns for %q: %w", label, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetInternal switches a user back into internal NS mode, clearing any
// previously stored external nameservers.
func (s *Store) SetInternal(ctx context.Context, label string) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("label = ?", label).Updates(map[string]any{
		"ns_mode":      ModeInternal,
		"external_ns1": nil,
		"external_ns2": nil,
		"external_ns3": nil,
		"external_ns4": nil,
		"external_ns5": nil,
		"external_ns6": nil,
		"updated_at":   time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("set internal ns for %q: %w", label, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPassword overwrites a user's stored password hash.
func (s *Store) SetPassword(ctx context.Context, label, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("label = ?", label).Updates(map[string]any{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("set password for %q: %w", label, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountLabels reports the total number of signed-up labels, shown on
// the dnsctl dashboard's summary.
func (s *Store) CountLabels(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count labels: %w", err)
	}
	return count, nil
}

// Delete removes a user row by label, returning ErrNotFound when no row
// matches. The signup saga does not call it: the user row is the saga's
// last step, so a failed signup leaves no row behind.
func (s *Store) Delete(ctx context.Context, label string) error {
	res := s.db.WithContext(ctx).Where("label = ?", label).Delete(&User{})
	if res.Error != nil {
		return fmt.Errorf("delete user %q: %w", label, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
