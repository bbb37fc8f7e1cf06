// Package auth implements credential verification, token issuance, and
// password recovery. Tokens are HS256 JWTs; sign-out revokes a token by
// blacklisting its jti in Redis until the token would have expired anyway.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"foodbridge/internal/config"
	"foodbridge/internal/models"
	"foodbridge/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL      = 7 * 24 * time.Hour
	resetTokenTTL = time.Hour

	issuer   = "foodbridge-api"
	audience = "foodbridge-client"
)

// Event names delivered to state-change listeners.
const (
	EventSignedIn         = "SIGNED_IN"
	EventSignedOut        = "SIGNED_OUT"
	EventPasswordRecovery = "PASSWORD_RECOVERY"
	EventUserUpdated      = "USER_UPDATED"
)

// Session is an authenticated token paired with its user.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// StateListener receives auth state transitions. The session is nil for
// EventSignedOut.
type StateListener func(event string, session *Session)

// Service issues and validates sessions against the user store.
type Service struct {
	users repository.UserRepository
	redis *redis.Client
	cfg   *config.Config

	mu        sync.RWMutex
	listeners map[string]StateListener
}

// NewService returns a new auth Service. The redis client may be nil, in
// which case sign-out revocation and password reset tokens are unavailable.
func NewService(users repository.UserRepository, rdb *redis.Client, cfg *config.Config) *Service {
	return &Service{
		users:     users,
		redis:     rdb,
		cfg:       cfg,
		listeners: make(map[string]StateListener),
	}
}

// OnAuthStateChange registers a listener and returns an unsubscribe func.
// Unsubscribing twice is harmless.
func (s *Service) OnAuthStateChange(fn StateListener) func() {
	id := uuid.New().String()
	s.mu.Lock()
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) emit(event string, session *Session) {
	s.mu.RLock()
	fns := make([]StateListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		func() {
			defer func() { _ = recover() }()
			fn(event, session)
		}()
	}
}

// SignUp creates an account and signs the new user in.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	s.emit(EventSignedIn, session)
	return session, nil
}

// SignInWithPassword verifies credentials and returns a fresh session.
// Unknown email and wrong password produce the same error.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	s.emit(EventSignedIn, session)
	return session, nil
}

// GetSession validates a token and returns the session it represents, or
// (nil, nil) when the token is empty. Revoked and expired tokens are
// unauthorized.
func (s *Service) GetSession(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, nil
	}

	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	if jti, _ := claims["jti"].(string); jti != "" && s.redis != nil {
		revoked, err := s.redis.Exists(ctx, revocationKey(jti)).Result()
		if err == nil && revoked > 0 {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}

	userID, err := subjectID(claims)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	expiresAt := time.Now().Add(tokenTTL)
	if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
		expiresAt = exp.Time
	}
	return &Session{Token: tokenString, ExpiresAt: expiresAt, User: user}, nil
}

// SignOut revokes the token. Revocation failure is an error; callers must
// not clear local state unless this succeeds.
func (s *Service) SignOut(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		s.emit(EventSignedOut, nil)
		return nil
	}

	claims, err := s.parseClaims(tokenString)
	if err != nil {
		// An already-invalid token has nothing left to revoke.
		s.emit(EventSignedOut, nil)
		return nil
	}

	if s.redis != nil {
		jti, _ := claims["jti"].(string)
		if jti != "" {
			ttl := tokenTTL
			if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
				ttl = time.Until(exp.Time)
			}
			if ttl > 0 {
				if err := s.redis.Set(ctx, revocationKey(jti), "1", ttl).Err(); err != nil {
					return models.NewInternalError(err)
				}
			}
		}
	}

	s.emit(EventSignedOut, nil)
	return nil
}

// ResetPasswordForEmail issues a one-hour reset token. It reports success
// even for unknown emails so the endpoint cannot be used to probe accounts.
func (s *Service) ResetPasswordForEmail(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	if s.redis == nil {
		return "", models.NewInternalError(fmt.Errorf("password reset requires redis"))
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", models.NewInternalError(err)
	}
	token := hex.EncodeToString(buf)

	key := resetKey(token)
	if err := s.redis.Set(ctx, key, strconv.FormatUint(uint64(user.ID), 10), resetTokenTTL).Err(); err != nil {
		return "", models.NewInternalError(err)
	}

	s.emit(EventPasswordRecovery, nil)
	return token, nil
}

// UpdatePassword consumes a reset token and writes the new password hash.
func (s *Service) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if s.redis == nil {
		return models.NewInternalError(fmt.Errorf("password reset requires redis"))
	}

	key := resetKey(resetToken)
	val, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return models.NewUnauthorizedError("Invalid or expired reset token")
	}
	if err != nil {
		return models.NewInternalError(err)
	}

	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return models.NewUnauthorizedError("Invalid or expired reset token")
	}
	user, err := s.users.GetByID(ctx, uint(userID))
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.redis.Del(ctx, key)
	s.emit(EventUserUpdated, nil)
	return nil
}

// ChangePassword verifies the current password before replacing it, for
// signed-in users updating their own credentials.
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.emit(EventUserUpdated, nil)
	return nil
}

func (s *Service) issueSession(user *models.User) (*Session, error) {
	if s.cfg.JWTSecret == "" {
		return nil, models.NewInternalError(fmt.Errorf("JWT secret not configured"))
	}

	now := time.Now()
	expiresAt := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"iss":  issuer,
		"aud":  audience,
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience))
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (uint, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token subject")
	}
	id, err := strconv.ParseUint(strings.TrimSpace(sub), 10, 32)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}
	return uint(id), nil
}

// generateJTI creates a unique token ID so individual tokens can be revoked.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

func revocationKey(jti string) string {
	return "auth:revoked:" + jti
}

func resetKey(token string) string {
	return "auth:reset:" + token
}
