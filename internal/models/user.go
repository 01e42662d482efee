package models

// PublicUser is the display projection of a user. Credentials never leave the users table.
type PublicUser struct {
	ID       int    `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Name     string `db:"name" json:"name"`
	Avatar   string `db:"avatar" json:"avatar"`
}
