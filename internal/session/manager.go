package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"foodbridge/internal/auth"
	"foodbridge/internal/models"
	"foodbridge/internal/repository"
	"foodbridge/internal/storage"
)

var errNoUploader = errors.New("no storage uploader configured")

// Snapshot is an immutable view of the session state at one point in time.
// Listeners all receive the same snapshot for a given transition.
type Snapshot struct {
	User            *models.User `json:"user,omitempty"`
	IsAuthenticated bool         `json:"is_authenticated"`
	AdminUser       *models.User `json:"admin_user,omitempty"`
	IsAdmin         bool         `json:"is_admin"`
}

// Listener receives session snapshots after each state transition.
type Listener func(Snapshot)

// Manager owns the current session state. All dependencies are injected;
// nothing here is package-global.
type Manager struct {
	auth         *auth.Service
	users        repository.UserRepository
	stats        repository.StatsRepository
	store        Store
	uploader     storage.Uploader
	avatarBucket string
	logger       *slog.Logger

	mu        sync.RWMutex
	current   Snapshot
	listeners map[int]Listener
	nextID    int
}

// NewManager returns a Manager with empty session state. The uploader may be
// nil when avatar uploads are not needed.
func NewManager(authSvc *auth.Service, users repository.UserRepository, stats repository.StatsRepository, store Store, uploader storage.Uploader, avatarBucket string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		auth:         authSvc,
		users:        users,
		stats:        stats,
		store:        store,
		uploader:     uploader,
		avatarBucket: avatarBucket,
		logger:       logger,
		listeners:    make(map[int]Listener),
	}
}

// Close drops all listeners. The manager must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.listeners = make(map[int]Listener)
	m.mu.Unlock()
}

// Subscribe registers a listener and returns an unsubscribe func. Listeners
// are invoked synchronously; a panicking listener is recovered so the rest
// still run.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) setState(snap Snapshot) {
	m.mu.Lock()
	m.current = snap
	fns := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("session listener panicked", "panic", r)
				}
			}()
			fn(snap)
		}()
	}
}

// Initialize restores session state at startup. A valid token wins over the
// persisted store; an invalid token yields a signed-out snapshot rather than
// an error.
func (m *Manager) Initialize(ctx context.Context, token string) Snapshot {
	if token != "" {
		sess, err := m.auth.GetSession(ctx, token)
		if err == nil && sess != nil {
			snap := m.buildSnapshot(ctx, sess.User)
			m.persist(ctx, snap)
			m.setState(snap)
			return snap
		}
		if err != nil {
			m.logger.Warn("stored token rejected during initialize", "error", err)
		}
	}

	snap := m.restore(ctx)
	m.setState(snap)
	return snap
}

// SignIn authenticates and transitions to a signed-in snapshot.
func (m *Manager) SignIn(ctx context.Context, email, password string) (Snapshot, *auth.Session, error) {
	sess, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return m.Snapshot(), nil, err
	}

	snap := m.buildSnapshot(ctx, sess.User)
	m.persist(ctx, snap)
	m.setState(snap)
	return snap, sess, nil
}

// SignUp registers a new account and signs it in.
func (m *Manager) SignUp(ctx context.Context, name, email, password string) (Snapshot, *auth.Session, error) {
	sess, err := m.auth.SignUp(ctx, name, email, password)
	if err != nil {
		return m.Snapshot(), nil, err
	}

	snap := m.buildSnapshot(ctx, sess.User)
	m.persist(ctx, snap)
	m.setState(snap)
	return snap, sess, nil
}

// SignOut revokes the token and clears local state. Local state survives if
// revocation fails, so a retry can still see who was signed in.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	if err := m.auth.SignOut(ctx, token); err != nil {
		return err
	}

	if err := m.store.Delete(ctx, KeyUserAuthenticated, KeyCurrentUser, KeyAdminAuthenticated, KeyAdminUser); err != nil {
		m.logger.Warn("failed to clear persisted session", "error", err)
	}
	m.setState(Snapshot{})
	return nil
}

// AdminSignIn authenticates and requires the admin role. A non-admin
// account gets its credentials accepted but the session refused.
func (m *Manager) AdminSignIn(ctx context.Context, email, password string) (Snapshot, *auth.Session, error) {
	sess, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return m.Snapshot(), nil, err
	}
	if !sess.User.IsAdmin() {
		return m.Snapshot(), nil, models.NewUnauthorizedError("Admin access required")
	}

	snap := m.buildSnapshot(ctx, sess.User)
	snap.AdminUser = snap.User
	snap.IsAdmin = true
	m.persist(ctx, snap)
	m.setState(snap)
	return snap, sess, nil
}

// AdminSignOut drops the admin half of the session, leaving any regular
// user session intact.
func (m *Manager) AdminSignOut(ctx context.Context) {
	if err := m.store.Delete(ctx, KeyAdminAuthenticated, KeyAdminUser); err != nil {
		m.logger.Warn("failed to clear persisted admin session", "error", err)
	}

	snap := m.Snapshot()
	snap.AdminUser = nil
	snap.IsAdmin = false
	m.setState(snap)
}

// UpdateProfile applies mutable profile fields to the signed-in user and
// broadcasts the refreshed snapshot.
func (m *Manager) UpdateProfile(ctx context.Context, apply func(*models.User)) (Snapshot, error) {
	snap := m.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil {
		return snap, models.NewUnauthorizedError("No active session")
	}

	user := snap.User
	apply(user)
	if err := m.users.Update(ctx, user); err != nil {
		return snap, err
	}

	next := m.buildSnapshot(ctx, user)
	next.AdminUser = snap.AdminUser
	next.IsAdmin = snap.IsAdmin
	m.persist(ctx, next)
	m.setState(next)
	return next, nil
}

// UploadAvatar stores the image and points the profile's avatar URL at it.
func (m *Manager) UploadAvatar(ctx context.Context, filename string, data []byte, contentType string) (Snapshot, error) {
	snap := m.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil {
		return snap, models.NewUnauthorizedError("No active session")
	}
	if m.uploader == nil {
		return snap, models.NewInternalError(errNoUploader)
	}
	if !storage.AllowedImageType(contentType) {
		return snap, models.NewValidationError("Unsupported image type")
	}

	object := storage.AvatarObjectName(snap.User.ID, filename)
	url, err := m.uploader.Upload(ctx, m.avatarBucket, object, data, contentType)
	if err != nil {
		return snap, models.NewInternalError(err)
	}

	return m.UpdateProfile(ctx, func(u *models.User) {
		u.AvatarURL = url
	})
}

// ResetPassword starts password recovery for an email.
func (m *Manager) ResetPassword(ctx context.Context, email string) (string, error) {
	return m.auth.ResetPasswordForEmail(ctx, email)
}

// UpdatePassword consumes a recovery token.
func (m *Manager) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	return m.auth.UpdatePassword(ctx, resetToken, newPassword)
}

// Refresh re-reads the signed-in user's profile and broadcasts the result.
func (m *Manager) Refresh(ctx context.Context) Snapshot {
	snap := m.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil {
		return snap
	}

	next := m.buildSnapshot(ctx, snap.User)
	next.AdminUser = snap.AdminUser
	next.IsAdmin = snap.IsAdmin
	m.persist(ctx, next)
	m.setState(next)
	return next
}

// buildSnapshot loads the full profile for the signed-in user, provisioning
// a stats row on first sign-in. If the profile cannot be loaded the session
// falls back to the user record from the token so sign-in still succeeds.
func (m *Manager) buildSnapshot(ctx context.Context, user *models.User) Snapshot {
	profile, err := m.users.GetProfile(ctx, user.ID)
	if err != nil || profile == nil {
		if err != nil {
			m.logger.Warn("profile load failed, using token identity", "user_id", user.ID, "error", err)
		}
		profile = user
	}

	if profile.Stats == nil && m.stats != nil {
		if err := m.stats.Upsert(ctx, &models.UserStats{UserID: profile.ID}); err != nil {
			m.logger.Warn("stats provisioning failed", "user_id", profile.ID, "error", err)
		} else {
			profile.Stats = &models.UserStats{UserID: profile.ID}
		}
	}

	snap := Snapshot{
		User:            profile,
		IsAuthenticated: true,
	}
	if profile.IsAdmin() {
		snap.AdminUser = profile
		snap.IsAdmin = true
	}
	return snap
}

func (m *Manager) persist(ctx context.Context, snap Snapshot) {
	set := func(key, value string) {
		if err := m.store.Set(ctx, key, value); err != nil {
			m.logger.Warn("failed to persist session key", "key", key, "error", err)
		}
	}

	if snap.IsAuthenticated && snap.User != nil {
		if data, err := json.Marshal(snap.User); err == nil {
			set(KeyUserAuthenticated, "true")
			set(KeyCurrentUser, string(data))
		}
	}
	if snap.IsAdmin && snap.AdminUser != nil {
		if data, err := json.Marshal(snap.AdminUser); err == nil {
			set(KeyAdminAuthenticated, "true")
			set(KeyAdminUser, string(data))
		}
	}
}

// restore rebuilds a snapshot from the persisted store. Corrupt values are
// treated as signed out.
func (m *Manager) restore(ctx context.Context) Snapshot {
	var snap Snapshot

	if flag, ok, _ := m.store.Get(ctx, KeyUserAuthenticated); ok && flag == "true" {
		if raw, ok, _ := m.store.Get(ctx, KeyCurrentUser); ok {
			var user models.User
			if err := json.Unmarshal([]byte(raw), &user); err == nil {
				snap.User = &user
				snap.IsAuthenticated = true
			}
		}
	}
	if flag, ok, _ := m.store.Get(ctx, KeyAdminAuthenticated); ok && flag == "true" {
		if raw, ok, _ := m.store.Get(ctx, KeyAdminUser); ok {
			var admin models.User
			if err := json.Unmarshal([]byte(raw), &admin); err == nil {
				snap.AdminUser = &admin
				snap.IsAdmin = true
			}
		}
	}
	return snap
}
