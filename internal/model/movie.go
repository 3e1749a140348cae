package model

import "time"

// Movie represents a single film in the collection.
//
// A movie row is a shared resource: titles are unique across the store, so
// when two users add the same title they reference one row rather than each
// owning a private copy. The row lives as long as at least one UserMovie
// link references it.
//
// Rating is a pointer because it is genuinely optional — a movie can sit in
// a list unrated, and "no rating" (NULL in the DB) is distinct from 0.0.
type Movie struct {
	ID        string    `json:"id"               db:"id"`
	Title     string    `json:"title"            db:"title"`
	Director  string    `json:"director"         db:"director"`
	Year      int       `json:"year"             db:"year"`
	Rating    *float64  `json:"rating,omitempty" db:"rating"`
	Poster    string    `json:"poster,omitempty" db:"poster"`
	CreatedAt time.Time `json:"createdAt"        db:"created_at"`
}

// UserMovie links a user to a movie in their collection.
//
// At most one link exists per (user, movie) pair — UNIQUE(user_id, movie_id)
// in the schema. A movie with zero remaining links is deleted by the
// repository as part of the operation that removed the last link.
type UserMovie struct {
	ID      string `json:"id"      db:"id"`
	UserID  string `json:"userId"  db:"user_id"`
	MovieID string `json:"movieId" db:"movie_id"`
}
