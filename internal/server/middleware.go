package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type ctxKey int

const ctxKeyIdentity ctxKey = iota

// identityMiddleware resolves the caller: a valid Bearer token yields the
// signed-in profile; anything else is an anonymous player identified by the
// geoquest_anon cookie (issued here on first contact).
func identityMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id identity

			if token, ok := bearerToken(r); ok {
				profile, err := store.UserFromToken(r.Context(), token)
				if err == nil {
					id.User = &ProfileInfo{
						ID:        profile.ID,
						Email:     profile.Email,
						Username:  profile.Username,
						AvatarURL: profile.AvatarURL,
					}
				}
			}

			if id.User == nil {
				if cookie, err := r.Cookie(anonCookieName); err == nil && cookie.Value != "" {
					id.AnonID = cookie.Value
				} else {
					id.AnonID = uuid.NewString()
					http.SetCookie(w, &http.Cookie{
						Name:     anonCookieName,
						Value:    id.AnonID,
						Path:     "/",
						MaxAge:   int(365 * 24 * time.Hour / time.Second),
						HttpOnly: true,
						SameSite: http.SameSiteLaxMode,
					})
				}
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireUser rejects anonymous callers. Creator endpoints sit behind it.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityFrom(r).isAnonymous() {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFrom(r *http.Request) identity {
	id, _ := r.Context().Value(ctxKeyIdentity).(identity)
	return id
}

// loginLimiter throttles credential attempts per remote address.
type loginLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLoginLimiter(r rate.Limit, burst int) *loginLimiter {
	l := &loginLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    burst,
	}
	go l.cleanup()
	return l
}

func (l *loginLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[addr] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (l *loginLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)

		l.mu.Lock()
		for addr, v := range l.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(l.visitors, addr)
			}
		}
		l.mu.Unlock()
	}
}

func (l *loginLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "too many attempts, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
