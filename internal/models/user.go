package models

// User is one live connection's presence record: the transport-assigned
// connection id, the display name it joined with, and its current room.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Room     string `json:"room"`
}
