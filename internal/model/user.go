// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain values shared by the
// repository, service, and handler layers.
package model

import "time"

// User represents a person maintaining a movie collection.
//
// Names are unique across the store. The users table carries a UNIQUE
// constraint on name, and the service layer pre-checks before inserting so
// a duplicate surfaces as a clean Conflict rather than a raw driver error.
//
// The ID is an xid string generated by the repository on insert — we never
// expose database rowids to callers.
type User struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
