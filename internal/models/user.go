package models

// User holds the profile fields this service needs for sender names and
// reminder emails. Profile management itself lives elsewhere.
type User struct {
	ID    int    `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
