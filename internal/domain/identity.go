// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxIdentityIDLen   = 64
	MaxDisplayNameLen  = 36
	MaxAvatarRefLen    = 512
	defaultDisplayName = "guest"
)

var (
	ErrIdentityIDEmpty    = errors.New("identity id empty")
	ErrIdentityIDTooLong  = errors.New("identity id too long")
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrAvatarRefTooLong   = errors.New("avatar ref too long")
)

type IdentityID string

// Identity is a verified principal handed over by the identity provider.
// It is a value: copies are cheap and nothing in the relay mutates one.
type Identity struct {
	ID          IdentityID `json:"id"`
	DisplayName string     `json:"display_name"`
	AvatarRef   string     `json:"avatar_ref,omitempty"`
}

// NewIdentity keeps adapters from building identities with ad-hoc literals.
// An empty display name falls back to "guest".
func NewIdentity(id IdentityID, displayName, avatarRef string) (Identity, error) {
	if id == "" {
		return Identity{}, ErrIdentityIDEmpty
	}
	if len(id) > MaxIdentityIDLen {
		return Identity{}, ErrIdentityIDTooLong
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = defaultDisplayName
	}
	if utf8.RuneCountInString(displayName) > MaxDisplayNameLen {
		return Identity{}, ErrDisplayNameTooLong
	}
	if len(avatarRef) > MaxAvatarRefLen {
		return Identity{}, ErrAvatarRefTooLong
	}
	return Identity{ID: id, DisplayName: displayName, AvatarRef: avatarRef}, nil
}

// Equal compares identities by ID only.
func (i Identity) Equal(other Identity) bool { return i.ID == other.ID }
