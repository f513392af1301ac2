package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session identity rides in a signed cookie, the way Flask signs its
// session cookie. The token carries only the opaque session id; all
// conversation state stays server-side.

const cookieName = "parley_session"

type contextKey string

const sessionContextKey contextKey = "session"

type sessionInfo struct {
	id string
	// established reports whether the id came from a valid cookie on
	// the request, as opposed to being minted just now.
	established bool
}

// SessionID returns the request's session id and whether the client
// presented it (rather than having one assigned on this request).
func SessionID(ctx context.Context) (string, bool) {
	info, ok := ctx.Value(sessionContextKey).(sessionInfo)
	if !ok {
		return "", false
	}
	return info.id, info.established
}

// WithSession returns a context carrying the given session id exactly
// as the Session middleware would attach it.
func WithSession(ctx context.Context, sessionID string, established bool) context.Context {
	return context.WithValue(ctx, sessionContextKey, sessionInfo{id: sessionID, established: established})
}

// Session validates the signed session cookie and attaches the session
// id to the request context, minting and setting a fresh one when the
// cookie is missing or tampered with.
func Session(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := sessionInfo{}

			if cookie, err := r.Cookie(cookieName); err == nil {
				if id, ok := verifyToken(cookie.Value, key); ok {
					info = sessionInfo{id: id, established: true}
				}
			}

			if info.id == "" {
				info.id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    signToken(info.id, key),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifyToken(tokenStr string, key []byte) (string, bool) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", false
	}
	id, ok := claims["session_id"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func signToken(sessionID string, key []byte) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": sessionID,
	})
	signed, _ := tok.SignedString(key)
	return signed
}
