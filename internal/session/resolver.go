package session

import "database/sql"

// Resolver hands out the right Store for a player identity. The choice is
// made once when a game starts; everything downstream works against the
// Store interface instead of re-checking who the player is.
type Resolver struct {
	db  *sql.DB
	dir string
}

func NewResolver(db *sql.DB, localDir string) *Resolver {
	return &Resolver{db: db, dir: localDir}
}

// ForUser returns the SQL-backed store for a signed-in player.
func (r *Resolver) ForUser(userID string) Store {
	return NewRemoteStore(r.db, userID)
}

// ForAnonymous returns the file-backed store for an anonymous owner token.
func (r *Resolver) ForAnonymous(owner string) Store {
	return NewLocalStore(r.dir, owner)
}
