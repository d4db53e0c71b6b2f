// Package session keeps the bearer tokens operators paste into the console.
// Tokens are sealed before they touch the database.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/nacl/secretbox"

	"medeasy/admin/internal/client"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
	ErrNoToken  = errors.New("token is required")
)

// Session is one signed-in operator.
type Session struct {
	ID        string
	Token     string
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
	CreatedAt time.Time
}

// Credential is the value threaded into every API call for this session.
func (s Session) Credential() client.Credential {
	return client.Credential{Token: s.Token}
}

// CredentialFor also forwards the cookies of the incoming request, minus
// the console's own session cookie.
func (s Session) CredentialFor(r *http.Request, ownCookie string) client.Credential {
	cred := s.Credential()
	for _, c := range r.Cookies() {
		if c.Name != ownCookie {
			cred.Cookies = append(cred.Cookies, c)
		}
	}
	return cred
}

type row struct {
	ID          string `db:"id"`
	SealedToken string `db:"sealed_token"`
	Subject     string `db:"subject"`
	ExpiresAt   int64  `db:"expires_at"`
	CreatedAt   int64  `db:"created_at"`
}

// Store persists sessions through sqlx.
type Store struct {
	db  *sqlx.DB
	key [32]byte
	now func() time.Time
}

// NewStore builds a Store whose sealing key is derived from secret.
func NewStore(db *sqlx.DB, secret string) *Store {
	return &Store{db: db, key: sha256.Sum256([]byte(secret)), now: time.Now}
}

// Create stores token under a new session id. JWT tokens have their exp and
// sub claims read without verification; the remote API stays the verifier.
// Opaque tokens are accepted as-is.
func (s *Store) Create(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Session{}, ErrNoToken
	}
	now := s.now()
	subject, expires := inspect(token)
	if !expires.IsZero() && !expires.After(now) {
		return Session{}, ErrExpired
	}
	sealed, err := s.seal(token)
	if err != nil {
		return Session{}, err
	}

	sess := Session{ID: uuid.NewString(), Token: token, Subject: subject, ExpiresAt: expires, CreatedAt: now}
	var expiresUnix int64
	if !expires.IsZero() {
		expiresUnix = expires.Unix()
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO sessions (id, sealed_token, subject, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`),
		sess.ID, sealed, subject, expiresUnix, now.Unix())
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Get loads the session id. Expired sessions are removed and reported as
// ErrExpired.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	var r row
	err := s.db.GetContext(ctx, &r, s.db.Rebind(`SELECT id, sealed_token, subject, expires_at, created_at FROM sessions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if r.ExpiresAt > 0 && !time.Unix(r.ExpiresAt, 0).After(s.now()) {
		_ = s.Delete(ctx, id)
		return Session{}, ErrExpired
	}
	token, err := s.open(r.SealedToken)
	if err != nil {
		return Session{}, err
	}
	sess := Session{ID: r.ID, Token: token, Subject: r.Subject, CreatedAt: time.Unix(r.CreatedAt, 0)}
	if r.ExpiresAt > 0 {
		sess.ExpiresAt = time.Unix(r.ExpiresAt, 0)
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Purge removes every expired session and reports how many were dropped.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE expires_at > 0 AND expires_at <= ?`), s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) seal(token string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (s *Store) open(sealed string) (string, error) {
	box, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(box) < 24 {
		return "", errors.New("corrupt sealed token")
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, &s.key)
	if !ok {
		return "", errors.New("sealed token does not match the configured secret")
	}
	return string(plain), nil
}

// inspect reads the subject and expiry from a JWT without verifying it.
// Non-JWT tokens yield zero values.
func inspect(token string) (subject string, expires time.Time) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", time.Time{}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expires = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, expires
	}
	for _, key := range []string{"email", "username", "user_id"} {
		if v, ok := claims[key]; ok && v != nil {
			return fmt.Sprint(v), expires
		}
	}
	return "", expires
}
