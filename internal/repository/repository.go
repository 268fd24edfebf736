// Package repository is the persistence gateway. It translates domain
// operations into document store operations and storage faults into the
// error taxonomy; raw driver errors never cross this boundary upward.
package repository

import (
	"context"

	"github.com/mkdirlove/song-server/internal/domain"
)

// UserRepository persists users. Uniqueness of usernames is enforced by a
// unique index, not by pre-checks, so concurrent inserts of the same name
// cannot race past each other.
type UserRepository interface {
	// Insert stores a new user. A uniqueness violation maps to
	// errors.ErrUsernameExists; any other storage fault maps to
	// errors.ErrDBOperationFailure.
	Insert(ctx context.Context, user *domain.User) error

	// FindByUsername returns the user with the exact username, or
	// (nil, nil) when no such user exists.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// List returns one page of users ordered ascending by username.
	// Pages are 1-indexed; page < 1 maps to errors.ErrInvalidPageNumber.
	List(ctx context.Context, adminsOnly bool, page, pageSize int) ([]*domain.User, error)

	// Remove deletes the user with the exact username. Zero matches map
	// to errors.ErrInvalidUserDetails.
	Remove(ctx context.Context, username string) error

	// HasAdmin reports whether any admin user exists.
	HasAdmin(ctx context.Context) (bool, error)
}

// SongRepository persists songs. The (name, source_url) pair is unique by
// index, and the counters move only via atomic increments.
type SongRepository interface {
	// Insert stores a new song. A uniqueness violation maps to
	// errors.ErrSongExists.
	Insert(ctx context.Context, song *domain.Song) error

	// List returns one page of songs ordered ascending by name, ties
	// broken by identity. filterExplicit excludes explicit songs. Pages
	// are 1-indexed; a page past the end is an empty slice, not an error.
	List(ctx context.Context, filterExplicit bool, page, pageSize int) ([]*domain.Song, error)

	// IncrementCounter atomically adds 1 to the named counter field of
	// the song. Zero matched records map to errors.ErrSongNotFound.
	IncrementCounter(ctx context.Context, songID, counterField string) error

	// Remove deletes the song matching (name, sourceURL) exactly. Zero
	// matches map to errors.ErrSongNotFound.
	Remove(ctx context.Context, name, sourceURL string) error
}

// pageSkip converts a 1-indexed page number into a skip offset.
func pageSkip(page, pageSize int) int64 {
	return int64(page-1) * int64(pageSize)
}
