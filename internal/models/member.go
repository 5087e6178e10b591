package models

// Member is one person on the lunch club roster.
type Member struct {
	// Username uniquely identifies the member (lowercase).
	Username string

	// Department is the member's department tag (e.g., "eng", "sales").
	Department string
}
