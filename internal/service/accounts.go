package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/model"
	"github.com/bbmitchh/Logmypour2/internal/repository"
	"github.com/bbmitchh/Logmypour2/internal/utils"
)

// UserStore is the persistence the account flows need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// SessionStore persists server-side session rows.
type SessionStore interface {
	Create(ctx context.Context, s model.Session) error
	Validate(ctx context.Context, id string) (uint64, error)
	Revoke(ctx context.Context, id string) error
}

// AccountsConfig carries the secrets and tunables of the account flows.
type AccountsConfig struct {
	SignupCode    string
	SessionSecret string
	SessionTTL    time.Duration
	BcryptCost    int
}

// SignupInput is the signup form after trimming.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Identity is the user behind a live session.
type Identity struct {
	User      model.User
	SessionID string
}

// Accounts handles login, signup and session lifecycle.
type Accounts struct {
	users    UserStore
	sessions SessionStore
	cfg      AccountsConfig
	metrics  Recorder
	log      *zap.Logger
}

func NewAccounts(users UserStore, sessions SessionStore, cfg AccountsConfig, rec Recorder, log *zap.Logger) *Accounts {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Accounts{users: users, sessions: sessions, cfg: cfg, metrics: rec, log: log}
}

// Verify checks an email and password pair.
func (a *Accounts) Verify(ctx context.Context, email, password string) (*model.User, error) {
	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyDecoy(password)
			a.metrics.Login("invalid")
			return nil, ErrInvalidCredentials
		}
		a.metrics.Login("error")
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		a.metrics.Login("invalid")
		return nil, ErrInvalidCredentials
	}
	a.metrics.Login("ok")
	return &u, nil
}

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// CreateAccount registers a user when code matches the configured signup
// code. The code is checked first, so a wrong code never reveals whether an
// email is taken.
func (a *Accounts) CreateAccount(ctx context.Context, in SignupInput, code string) (*model.User, error) {
	if subtle.ConstantTimeCompare([]byte(code), []byte(a.cfg.SignupCode)) != 1 {
		a.metrics.Signup("bad_code")
		return nil, ErrInvalidCode
	}
	email := repository.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		a.metrics.Signup("invalid")
		return nil, ErrInvalidSignup
	}
	if len(in.Password) > maxPasswordBytes {
		a.metrics.Signup("invalid")
		return nil, ErrPasswordTooLong
	}

	hash, err := utils.HashPassword(in.Password, a.cfg.BcryptCost)
	if err != nil {
		a.metrics.Signup("error")
		return nil, err
	}
	u := &model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
	}
	if err := a.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			a.metrics.Signup("duplicate")
			return nil, err
		}
		a.metrics.Signup("error")
		return nil, fmt.Errorf("create user: %w", err)
	}
	a.metrics.Signup("ok")
	a.log.Info("account created", zap.Uint64("user_id", u.ID))
	return u, nil
}

// StartSession records a new session for userID and returns the signed
// cookie value.
func (a *Accounts) StartSession(ctx context.Context, userID uint64) (utils.SessionToken, error) {
	id := uuid.NewString()
	tok, err := utils.NewSessionToken(a.cfg.SessionSecret, userID, id, a.cfg.SessionTTL)
	if err != nil {
		return utils.SessionToken{}, err
	}
	if err := a.sessions.Create(ctx, model.Session{ID: id, UserID: userID, ExpiresAt: tok.Exp.Unix()}); err != nil {
		return utils.SessionToken{}, fmt.Errorf("store session: %w", err)
	}
	return tok, nil
}

// ResolveSession verifies a cookie value and loads its user. Any token or
// session problem yields utils.ErrInvalidSession.
func (a *Accounts) ResolveSession(ctx context.Context, raw string) (*Identity, error) {
	claims, err := utils.ParseSessionToken(a.cfg.SessionSecret, raw)
	if err != nil {
		return nil, err
	}
	uid, err := a.sessions.Validate(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.ErrInvalidSession
		}
		return nil, fmt.Errorf("validate session: %w", err)
	}
	if uid != claims.UserID {
		return nil, utils.ErrInvalidSession
	}
	u, err := a.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.ErrInvalidSession
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &Identity{User: u, SessionID: claims.SessionID}, nil
}

// EndSession revokes a session.
func (a *Accounts) EndSession(ctx context.Context, sessionID string) error {
	if err := a.sessions.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
