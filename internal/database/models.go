package database

// Profile is the stored identity metadata of a Telegram user that wrote to
// the bot. Rows are keyed by the Telegram user id.
type Profile struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}
