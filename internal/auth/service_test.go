package auth

import (
	"context"
	"testing"

	"foodbridge/internal/config"
	"foodbridge/internal/models"
	"foodbridge/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	getByIDFn    func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn func(ctx context.Context, email string) (*models.User, error)
	createFn     func(ctx context.Context, user *models.User) error
	updateFn     func(ctx context.Context, user *models.User) error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeUserRepo) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	return f.createFn(ctx, user)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	return f.updateFn(ctx, user)
}

func (f *fakeUserRepo) List(ctx context.Context, filters repository.UserFilters) ([]models.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Recent(ctx context.Context, limit int) ([]models.User, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "unit-test-secret-0123456789abcdef0123456789",
	}
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()
		repo := &fakeUserRepo{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return &models.User{ID: 1, Email: "dana@example.com"}, nil
			},
		}
		svc := NewService(repo, nil, testConfig())

		_, err := svc.SignUp(context.Background(), "Dana", "dana@example.com", "hunter2!")
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrCodeConflict, appErr.Code)
	})

	t.Run("creates user and issues session", func(t *testing.T) {
		t.Parallel()
		var created *models.User
		repo := &fakeUserRepo{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return nil, nil
			},
			createFn: func(_ context.Context, user *models.User) error {
				user.ID = 42
				created = user
				return nil
			},
		}
		svc := NewService(repo, nil, testConfig())

		session, err := svc.SignUp(context.Background(), "Dana", "dana@example.com", "hunter2!")
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, models.RoleUser, created.Role)
		assert.NotEqual(t, "hunter2!", created.Password)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, uint(42), session.User.ID)
	})
}

func TestSignInWithPassword(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: 7, Email: "sam@example.com"}

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		t.Parallel()
		user := *user
		user.Password = hashed(t, "correct-horse")
		repo := &fakeUserRepo{
			getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
				if email == user.Email {
					return &user, nil
				}
				return nil, nil
			},
		}
		svc := NewService(repo, nil, testConfig())

		_, errUnknown := svc.SignInWithPassword(context.Background(), "nobody@example.com", "x")
		_, errWrong := svc.SignInWithPassword(context.Background(), user.Email, "battery-staple")
		require.Error(t, errUnknown)
		require.Error(t, errWrong)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("valid credentials round-trip through GetSession", func(t *testing.T) {
		t.Parallel()
		user := *user
		user.Password = hashed(t, "correct-horse")
		repo := &fakeUserRepo{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return &user, nil
			},
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				require.Equal(t, user.ID, id)
				return &user, nil
			},
		}
		svc := NewService(repo, nil, testConfig())

		session, err := svc.SignInWithPassword(context.Background(), user.Email, "correct-horse")
		require.NoError(t, err)

		got, err := svc.GetSession(context.Background(), session.Token)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.User.ID)
	})
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	t.Run("empty token means no session", func(t *testing.T) {
		t.Parallel()
		svc := NewService(&fakeUserRepo{}, nil, testConfig())
		session, err := svc.GetSession(context.Background(), "")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		t.Parallel()
		svc := NewService(&fakeUserRepo{}, nil, testConfig())
		_, err := svc.GetSession(context.Background(), "not.a.jwt")
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrCodeUnauthorized, appErr.Code)
	})

	t.Run("token signed with a different secret is rejected", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: 3, Password: hashed(t, "pw")}
		repo := &fakeUserRepo{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return user, nil },
		}
		otherCfg := &config.Config{JWTSecret: "a-completely-different-secret-value-here"}
		issuer := NewService(repo, nil, otherCfg)
		session, err := issuer.SignInWithPassword(context.Background(), "x@example.com", "pw")
		require.NoError(t, err)

		verifier := NewService(repo, nil, testConfig())
		_, err = verifier.GetSession(context.Background(), session.Token)
		require.Error(t, err)
	})
}

func TestOnAuthStateChange(t *testing.T) {
	t.Parallel()

	t.Run("listeners observe sign-in and sign-out", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: 9, Password: hashed(t, "pw")}
		repo := &fakeUserRepo{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return user, nil },
		}
		svc := NewService(repo, nil, testConfig())

		var events []string
		unsubscribe := svc.OnAuthStateChange(func(event string, _ *Session) {
			events = append(events, event)
		})

		_, err := svc.SignInWithPassword(context.Background(), "x@example.com", "pw")
		require.NoError(t, err)
		require.NoError(t, svc.SignOut(context.Background(), ""))

		assert.Equal(t, []string{EventSignedIn, EventSignedOut}, events)

		unsubscribe()
		unsubscribe() // second call is a no-op

		_, err = svc.SignInWithPassword(context.Background(), "x@example.com", "pw")
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("panicking listener does not starve the rest", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: 9, Password: hashed(t, "pw")}
		repo := &fakeUserRepo{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return user, nil },
		}
		svc := NewService(repo, nil, testConfig())

		svc.OnAuthStateChange(func(string, *Session) { panic("listener bug") })
		var called bool
		svc.OnAuthStateChange(func(string, *Session) { called = true })

		_, err := svc.SignInWithPassword(context.Background(), "x@example.com", "pw")
		require.NoError(t, err)
		assert.True(t, called)
	})
}
