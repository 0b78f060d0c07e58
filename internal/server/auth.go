package server

import (
	"net/http"
	"strings"
)

// identity is who the request is acting as. Exactly one of User or AnonID
// is set: anonymous players are tracked by a server-issued cookie so their
// local sessions survive page loads.
type identity struct {
	User   *ProfileInfo
	AnonID string
}

// ProfileInfo is the public view of a profile.
type ProfileInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func (id identity) isAnonymous() bool { return id.User == nil }

// ownerID is the stable key for session ownership: the user ID for
// signed-in players, the anonymous cookie value otherwise.
func (id identity) ownerID() string {
	if id.User != nil {
		return id.User.ID
	}
	return id.AnonID
}

const anonCookieName = "geoquest_anon"

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
