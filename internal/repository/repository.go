// Package repository defines the storage interfaces consumed by the
// service layer. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/c-playground/internal/model"
)

// ListOptions controls pagination and filtering for snippet listings.
type ListOptions struct {
	Limit  int
	Offset int
	// UserID, when nonempty, restricts the listing to one owner.
	UserID string
}

// SnippetRepository stores saved C programs.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

// UserRepository stores user accounts. GitHub accounts are keyed by
// their GitHub identity via Upsert; local accounts are created once and
// looked up by email at login.
type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	CreateLocal(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}
