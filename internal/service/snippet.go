package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/c-playground/internal/apperror"
	"github.com/sakif/c-playground/internal/model"
	"github.com/sakif/c-playground/internal/repository"
)

const (
	MaxSnippetNameLength = 100
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// SnippetService handles saved programs. Snippets may be anonymous
// (UserID empty) or owned; owned snippets can only be changed by their
// owner.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

// NewSnippetService creates a SnippetService. The caller decides which
// repository implementation to inject — sqlite in production, a mock in
// tests.
func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// SnippetInput carries the user-editable fields of a snippet.
type SnippetInput struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Stdin       string `json:"stdin"`
	Description string `json:"description"`
}

func validateInput(in SnippetInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.ValidationFailed("name", "snippet name is required")
	}
	if len(in.Name) > MaxSnippetNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("snippet name must be %d characters or less", MaxSnippetNameLength))
	}
	if len(in.Source) > MaxSourceLength {
		return apperror.ValidationFailed("source",
			fmt.Sprintf("source must be %d characters or less", MaxSourceLength))
	}
	return nil
}

// Create validates and saves a new snippet. userID may be empty for an
// anonymous save.
func (s *SnippetService) Create(ctx context.Context, userID string, in SnippetInput) (*model.Snippet, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		Name:        strings.TrimSpace(in.Name),
		Source:      in.Source,
		Stdin:       in.Stdin,
		Description: strings.TrimSpace(in.Description),
		UserID:      userID,
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("name", snippet.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("name", snippet.Name),
	)
	return snippet, nil
}

// GetByID retrieves a snippet. Reads are public — anyone with the ID
// can load a snippet into the editor.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List retrieves snippets newest-first with pagination. A nonempty
// userID restricts the listing to that owner's snippets.
func (s *SnippetService) List(ctx context.Context, limit, offset int, userID string) ([]model.Snippet, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	snippets, err := s.repo.List(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
		UserID: userID,
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// Update modifies an existing snippet after an ownership check: an
// owned snippet can only be changed by its owner. Anonymous snippets
// have no owner to check against.
func (s *SnippetService) Update(ctx context.Context, userID, id string, in SnippetInput) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.UserID != "" && snippet.UserID != userID {
		return nil, apperror.Forbidden("not your snippet")
	}

	snippet.Name = strings.TrimSpace(in.Name)
	snippet.Source = in.Source
	snippet.Stdin = in.Stdin
	snippet.Description = strings.TrimSpace(in.Description)

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", snippet.ID))
	return snippet, nil
}

// Delete removes a snippet, subject to the same ownership rule as
// Update.
func (s *SnippetService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if snippet.UserID != "" && snippet.UserID != userID {
		return apperror.Forbidden("not your snippet")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}
