package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/c-playground/internal/apperror"
	"github.com/sakif/c-playground/internal/model"
	"github.com/sakif/c-playground/internal/repository"
)

// newTestDB returns a fresh in-memory database, destroyed when the test
// finishes. t.Helper() keeps failure line numbers pointing at the caller.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestSnippet(t *testing.T, db *DB, name, source string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{Name: name, Source: source}
	if err := db.Create(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}

func TestCreate(t *testing.T) {
	db := newTestDB(t)

	snippet := &model.Snippet{
		Name:   "hello",
		Source: `int main(void) { return 0; }`,
		Stdin:  "3\n",
	}

	if err := db.Create(context.Background(), snippet); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if snippet.ID == "" {
		t.Error("Create() did not set snippet.ID")
	}
	if snippet.CreatedAt.IsZero() {
		t.Error("Create() did not set snippet.CreatedAt")
	}
	if snippet.UpdatedAt.IsZero() {
		t.Error("Create() did not set snippet.UpdatedAt")
	}
}

func TestCreate_VerifyPersistence(t *testing.T) {
	db := newTestDB(t)

	original := &model.Snippet{
		Name:   "echo",
		Source: `#include <stdio.h>` + "\n" + `int main(void){int n;scanf("%d",&n);printf("%d",n);}`,
		Stdin:  "42\n",
	}
	if err := db.Create(context.Background(), original); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Name != original.Name {
		t.Errorf("Name = %q, want %q", found.Name, original.Name)
	}
	if found.Source != original.Source {
		t.Errorf("Source = %q, want %q", found.Source, original.Source)
	}
	if found.Stdin != original.Stdin {
		t.Errorf("Stdin = %q, want %q", found.Stdin, original.Stdin)
	}
	if found.UserID != "" {
		t.Errorf("UserID = %q, want empty for anonymous snippet", found.UserID)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "does-not-exist")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	db := newTestDB(t)

	createTestSnippet(t, db, "first", "int main(void){return 1;}")
	createTestSnippet(t, db, "second", "int main(void){return 2;}")
	createTestSnippet(t, db, "third", "int main(void){return 3;}")

	snippets, err := db.List(context.Background(), repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 3 {
		t.Fatalf("List() returned %d snippets, want 3", len(snippets))
	}
}

func TestList_Pagination(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		createTestSnippet(t, db, "prog", "int main(void){return 0;}")
	}

	page, err := db.List(context.Background(), repository.ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page) != 2 {
		t.Errorf("List(limit=2, offset=2) returned %d snippets, want 2", len(page))
	}
}

func TestList_FilterByUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{GitHubID: 777, Login: "alice"}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	owned := &model.Snippet{Name: "mine", Source: "int main(void){}", UserID: user.ID}
	if err := db.Create(context.Background(), owned); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	createTestSnippet(t, db, "anonymous", "int main(void){}")

	snippets, err := db.List(context.Background(), repository.ListOptions{Limit: 10, UserID: user.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 1 {
		t.Fatalf("List(user) returned %d snippets, want 1", len(snippets))
	}
	if snippets[0].ID != owned.ID {
		t.Errorf("List(user) returned snippet %s, want %s", snippets[0].ID, owned.ID)
	}
	if snippets[0].UserID != user.ID {
		t.Errorf("UserID = %q, want %q", snippets[0].UserID, user.ID)
	}
}

func TestUpdate(t *testing.T) {
	db := newTestDB(t)

	snippet := createTestSnippet(t, db, "before", "int main(void){return 0;}")

	snippet.Name = "after"
	snippet.Source = "int main(void){return 1;}"
	snippet.Stdin = "7\n"
	if err := db.Update(context.Background(), snippet); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), snippet.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "after" {
		t.Errorf("Name = %q, want %q", found.Name, "after")
	}
	if found.Stdin != "7\n" {
		t.Errorf("Stdin = %q, want %q", found.Stdin, "7\n")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Snippet{ID: "ghost", Name: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)

	snippet := createTestSnippet(t, db, "doomed", "int main(void){}")

	if err := db.Delete(context.Background(), snippet.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.GetByID(context.Background(), snippet.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
