package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ready(authenticated, admin bool) State {
	return State{Initialized: true, Authenticated: authenticated, Admin: admin}
}

func TestDispatchGuards(t *testing.T) {
	t.Parallel()

	t.Run("uninitialized state always loads, never redirects", func(t *testing.T) {
		t.Parallel()
		for _, path := range []string{"/", "/dashboard", "/admin", "/admin/users", "/nonsense"} {
			res := Dispatch(path, State{})
			assert.Equal(t, KindLoading, res.Kind, "path %s", path)
		}
	})

	t.Run("loading state holds even when authenticated", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/dashboard", State{Initialized: true, Loading: true, Authenticated: true})
		assert.Equal(t, KindLoading, res.Kind)
	})

	t.Run("admin prefix without admin session redirects to admin login", func(t *testing.T) {
		t.Parallel()
		for _, path := range []string{"/admin", "/admin/users", "/admin/distribution/5/attendees", "/admin/junk"} {
			res := Dispatch(path, ready(true, false))
			assert.Equal(t, KindRedirect, res.Kind, "path %s", path)
			assert.Equal(t, "/admin/login", res.To, "path %s", path)
		}
	})

	t.Run("admin login page is reachable without an admin session", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/admin/login", ready(false, false))
		assert.Equal(t, KindPage, res.Kind)
		assert.Equal(t, "admin-login", res.View)
		assert.False(t, res.Chrome)
	})

	t.Run("protected paths redirect anonymous users to login", func(t *testing.T) {
		t.Parallel()
		for path := range map[string]struct{}{
			"/profile": {}, "/dashboard": {}, "/share": {}, "/claim": {},
			"/community": {}, "/settings": {}, "/notifications": {}, "/listings": {},
		} {
			res := Dispatch(path, ready(false, false))
			assert.Equal(t, KindRedirect, res.Kind, "path %s", path)
			assert.Equal(t, "/login", res.To, "path %s", path)
		}
	})

	t.Run("authenticated users bounce off the auth pages", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/login", ready(true, false))
		assert.Equal(t, KindRedirect, res.Kind)
		assert.Equal(t, "/dashboard", res.To)

		res = Dispatch("/signup", ready(true, true))
		assert.Equal(t, KindRedirect, res.Kind)
		assert.Equal(t, "/admin", res.To)
	})

	t.Run("forgot-password stays reachable while signed in", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/forgot-password", ready(true, false))
		assert.Equal(t, KindPage, res.Kind)
		assert.Equal(t, "forgot-password", res.View)
	})
}

func TestDispatchTables(t *testing.T) {
	t.Parallel()

	t.Run("public pages render with chrome for anyone", func(t *testing.T) {
		t.Parallel()
		cases := map[string]string{
			"/":             "home",
			"/find":         "find-food",
			"/near-me":      "near-me",
			"/blog":         "blog",
			"/success":      "success-stories",
			"/how-it-works": "how-it-works",
			"/terms":        "terms",
			"/privacy":      "privacy",
			"/cookies":      "cookies",
		}
		for path, view := range cases {
			res := Dispatch(path, ready(false, false))
			assert.Equal(t, KindPage, res.Kind, "path %s", path)
			assert.Equal(t, view, res.View, "path %s", path)
			assert.True(t, res.Chrome, "path %s", path)
		}
	})

	t.Run("auth pages render without chrome", func(t *testing.T) {
		t.Parallel()
		for _, path := range []string{"/login", "/signup", "/forgot-password"} {
			res := Dispatch(path, ready(false, false))
			assert.Equal(t, KindPage, res.Kind, "path %s", path)
			assert.False(t, res.Chrome, "path %s", path)
		}
	})

	t.Run("protected pages render for authenticated users", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/dashboard", ready(true, false))
		assert.Equal(t, KindPage, res.Kind)
		assert.Equal(t, "dashboard", res.View)
		assert.True(t, res.Chrome)
	})

	t.Run("admin pages render for admin sessions", func(t *testing.T) {
		t.Parallel()
		cases := map[string]string{
			"/admin":              "admin-dashboard",
			"/admin/users":        "admin-users",
			"/admin/content":      "admin-content",
			"/admin/distribution": "admin-distribution",
			"/admin/reports":      "admin-reports",
			"/admin/settings":     "admin-settings",
			"/admin/profile":      "admin-profile",
		}
		for path, view := range cases {
			res := Dispatch(path, ready(true, true))
			assert.Equal(t, KindPage, res.Kind, "path %s", path)
			assert.Equal(t, view, res.View, "path %s", path)
			assert.True(t, res.Chrome, "path %s", path)
		}
	})
}

func TestDispatchPatterns(t *testing.T) {
	t.Parallel()

	t.Run("category pages capture the category param", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/find/category/baked-goods", ready(false, false))
		assert.Equal(t, KindPage, res.Kind)
		assert.Equal(t, "find-category", res.View)
		assert.Equal(t, "baked-goods", res.Params["category"])
	})

	t.Run("numeric or underscore categories miss the pattern", func(t *testing.T) {
		t.Parallel()
		for _, path := range []string{"/find/category/123", "/find/category/baked_goods", "/find/category/"} {
			res := Dispatch(path, ready(false, false))
			assert.Equal(t, ViewNotFound, res.View, "path %s", path)
		}
	})

	t.Run("attendees pages capture the event id", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/admin/distribution/42/attendees", ready(true, true))
		assert.Equal(t, KindPage, res.Kind)
		assert.Equal(t, "admin-distribution-attendees", res.View)
		assert.Equal(t, "42", res.Params["event_id"])
	})

	t.Run("non-numeric event ids miss the pattern", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/admin/distribution/abc/attendees", ready(true, true))
		assert.Equal(t, ViewAdminNotFound, res.View)
	})
}

func TestDispatchNotFound(t *testing.T) {
	t.Parallel()

	t.Run("unknown public path gets the 404 view with chrome", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/does-not-exist", ready(false, false))
		assert.Equal(t, KindPage, res.Kind)
		assert.Equal(t, ViewNotFound, res.View)
		assert.True(t, res.Chrome)
	})

	t.Run("unknown admin path gets the admin 404 view", func(t *testing.T) {
		t.Parallel()
		res := Dispatch("/admin/does-not-exist", ready(true, true))
		assert.Equal(t, ViewAdminNotFound, res.View)
		assert.True(t, res.Chrome)
	})
}
