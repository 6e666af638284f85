package models

import "time"

// Person is a stable student identity. It is created once per real
// individual by the roster process and never recreated on grade or year
// changes; enrollments carry the per-year context.
type Person struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
