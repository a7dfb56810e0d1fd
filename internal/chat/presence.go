package chat

import (
	"sort"

	"github.com/parlorchat/parlor/internal/models"
)

// PresenceTracker maps live connections to their display name and current
// room. It also maintains a per-room membership index so broadcasts resolve
// recipients without scanning every connection. Callers must hold the owning
// Service lock.
type PresenceTracker struct {
	byConn map[string]*models.User
	byRoom map[string]map[string]*models.User
}

// NewPresenceTracker creates an empty tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		byConn: make(map[string]*models.User),
		byRoom: make(map[string]map[string]*models.User),
	}
}

// Join records or overwrites the connection's presence. If the connection was
// already assigned to another room it is moved, so a connection is a member
// of exactly one room at any observable point.
func (p *PresenceTracker) Join(connID, username, room string) {
	if existing, ok := p.byConn[connID]; ok {
		delete(p.byRoom[existing.Room], connID)
	}

	user := &models.User{ID: connID, Username: username, Room: room}
	p.byConn[connID] = user

	members, ok := p.byRoom[room]
	if !ok {
		members = make(map[string]*models.User)
		p.byRoom[room] = members
	}
	members[connID] = user
}

// Leave removes the connection's presence record and returns it. The second
// return is false when the connection never joined.
func (p *PresenceTracker) Leave(connID string) (models.User, bool) {
	user, ok := p.byConn[connID]
	if !ok {
		return models.User{}, false
	}
	delete(p.byConn, connID)
	delete(p.byRoom[user.Room], connID)
	return *user, true
}

// Get returns the connection's presence record, if any.
func (p *PresenceTracker) Get(connID string) (models.User, bool) {
	user, ok := p.byConn[connID]
	if !ok {
		return models.User{}, false
	}
	return *user, true
}

// UsersIn returns the presence records of every connection currently assigned
// to the room, ordered by connection id for stable output.
func (p *PresenceTracker) UsersIn(room string) []models.User {
	members := p.byRoom[room]
	users := make([]models.User, 0, len(members))
	for _, user := range members {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// ConnIDsIn returns the connection ids of the room's current members.
func (p *PresenceTracker) ConnIDsIn(room string) []string {
	members := p.byRoom[room]
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// All returns every presence record, ordered by connection id.
func (p *PresenceTracker) All() []models.User {
	users := make([]models.User, 0, len(p.byConn))
	for _, user := range p.byConn {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// Count returns the number of live presence records.
func (p *PresenceTracker) Count() int {
	return len(p.byConn)
}
