// Package ident generates identifiers for live connections.
package ident

import "github.com/google/uuid"

// NewConnectionID returns a time-ordered UUID v7 for a freshly accepted
// connection. Ids are unique per live connection and deliberately unstable
// across reconnects.
func NewConnectionID() string {
	return uuid.Must(uuid.NewV7()).String()
}
