package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/staycal/internal/domain/user"
	"github.com/example/staycal/internal/internaltypes"
)

// UserStore is the persistence the auth store needs.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type Store struct {
	sc    *securecookie.SecureCookie
	users UserStore
}

type ctxKey string

const userIDKey ctxKey = "userID"

const (
	cookieName = "staycal_session"
	sessionTTL = 14 * 24 * time.Hour
)

func NewStore(users UserStore, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionTTL.Seconds()))
	return &Store{sc: sc, users: users}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (s *Store) CreateUser(ctx context.Context, username, password string) (int64, error) {
	if err := user.ValidateNew(username, password); err != nil {
		return 0, fmt.Errorf("%w: %v", internaltypes.ErrInvalidInput, err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}
	return s.users.Create(ctx, username, hash)
}

// Authenticate returns the user id. Unknown users and wrong passwords both
// yield ErrUnauthorized.
func (s *Store) Authenticate(ctx context.Context, username, password string) (int64, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, internaltypes.ErrNotFound) {
		return 0, internaltypes.ErrUnauthorized
	}
	if err != nil {
		return 0, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return 0, internaltypes.ErrUnauthorized
	}
	return u.ID, nil
}

type Session struct {
	UserID int64
}

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	encoded, err := s.sc.Encode(cookieName, Session{UserID: userID})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	var sess Session
	if err := s.sc.Decode(cookieName, c.Value, &sess); err != nil || sess.UserID <= 0 {
		return Session{}, false
	}
	return sess, true
}

// RequireAuth rejects requests without a valid session with 401 and a JSON body.
func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"unauthorized"}` + "\n"))
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}
