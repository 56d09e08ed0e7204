// Package session owns the persisted credential triple: bearer token, cached
// user profile, and the remember-me flag. The three values are written and
// removed as one logical unit so a crash between writes can never leave a
// half-written session behind.
package session

import (
	"context"
	"errors"

	"github.com/nkiryanov/streamcat/internal/client/models"
)

// Logical storage keys. Medium-agnostic: the bbolt store uses them as bucket
// keys, the memory store as map keys.
const (
	KeyToken      = "authToken"
	KeyUser       = "authUser"
	KeyRememberMe = "rememberMe"
)

// ErrNoSession is returned by UpdateUser when there is no persisted session
// to update. The user half must never exist without the token half.
var ErrNoSession = errors.New("no active session")

// Data is the persisted triple. Token and User never exist independently.
type Data struct {
	Token      string
	User       *models.User
	RememberMe bool
}

// Store persists the session triple.
//
// Contract:
//   - Write persists all three values atomically.
//   - Read returns the triple, or nil when the store is empty. A partial
//     triple (token without user, or vice versa) reads as empty.
//   - UpdateUser overwrites only the cached profile, leaving token and
//     remember-me untouched; fails with ErrNoSession when the store is empty.
//   - Clear removes all three keys atomically. Idempotent.
//   - Token returns just the bearer token ("" when absent); it is the cheap
//     read used by the HTTP transport before every request.
//
// All operations are safe to call before any write has occurred.
type Store interface {
	Write(ctx context.Context, data Data) error
	Read(ctx context.Context) (*Data, error)
	UpdateUser(ctx context.Context, user *models.User) error
	Clear(ctx context.Context) error
	Token(ctx context.Context) (string, error)
}
