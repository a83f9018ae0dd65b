// Package model defines the data structures used throughout the application.
package model

import "time"

// Snippet is a saved C program.
//
// Stdin holds the sample input the user last ran the program with, so an
// interactive program can be reloaded together with the input that drives
// it. UserID is empty for anonymous snippets; when set, only that user may
// update or delete the snippet.
type Snippet struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Source      string    `json:"source"      db:"source"`
	Stdin       string    `json:"stdin"       db:"stdin"`
	Description string    `json:"description" db:"description"`
	UserID      string    `json:"userId,omitempty" db:"user_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
