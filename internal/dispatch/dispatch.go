// Package dispatch decides which view a path resolves to for a given
// session state. It is a pure function: redirects come back as values for
// the caller to act on, never as side effects.
package dispatch

import (
	"log/slog"
	"regexp"
	"strings"
)

// State is the session-derived input to a dispatch decision.
type State struct {
	Initialized   bool `json:"initialized"`
	Loading       bool `json:"loading"`
	Authenticated bool `json:"authenticated"`
	Admin         bool `json:"admin"`
}

// Kind discriminates dispatch results.
type Kind string

const (
	KindLoading  Kind = "loading"
	KindRedirect Kind = "redirect"
	KindPage     Kind = "page"
)

// Result is exactly one of a loading marker, a pending redirect, or a page.
type Result struct {
	Kind   Kind              `json:"kind"`
	To     string            `json:"to,omitempty"`
	View   string            `json:"view,omitempty"`
	Chrome bool              `json:"chrome"`
	Params map[string]string `json:"params,omitempty"`
}

// Well-known view identifiers.
const (
	ViewNotFound      = "not-found"
	ViewAdminNotFound = "admin-not-found"
	ViewError         = "error"
)

func loading() Result { return Result{Kind: KindLoading} }

func redirect(to string) Result { return Result{Kind: KindRedirect, To: to} }

func page(view string) Result { return Result{Kind: KindPage, View: view, Chrome: true} }

func barePage(view string) Result { return Result{Kind: KindPage, View: view, Chrome: false} }

func errorView() Result { return Result{Kind: KindPage, View: ViewError, Chrome: true} }

// publicRoutes are reachable without a session.
var publicRoutes = map[string]string{
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

// authRoutes render without page chrome.
var authRoutes = map[string]string{
	"/login":           "login",
	"/signup":          "signup",
	"/forgot-password": "forgot-password",
}

// protectedRoutes require an authenticated session.
var protectedRoutes = map[string]string{
	"/profile":       "profile",
	"/dashboard":     "dashboard",
	"/share":         "share-food",
	"/claim":         "claim-food",
	"/community":     "community",
	"/settings":      "settings",
	"/notifications": "notifications",
	"/listings":      "my-listings",
}

// adminRoutes require an admin session, except the login page.
var adminRoutes = map[string]string{
	"/admin":              "admin-dashboard",
	"/admin/users":        "admin-users",
	"/admin/content":      "admin-content",
	"/admin/distribution": "admin-distribution",
	"/admin/reports":      "admin-reports",
	"/admin/settings":     "admin-settings",
	"/admin/profile":      "admin-profile",
	"/admin/login":        "admin-login",
}

var (
	attendeesPattern = regexp.MustCompile(`^/admin/distribution/(\d+)/attendees$`)
	categoryPattern  = regexp.MustCompile(`^/find/category/([a-zA-Z-]+)$`)
)

// Dispatch resolves a path against the session state. A panic anywhere in
// resolution is recovered and replaced by the error view.
func Dispatch(path string, st State) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dispatch panicked", "path", path, "panic", r)
			result = errorView()
		}
	}()
	return resolve(path, st)
}

func resolve(path string, st State) Result {
	// Guards run in order; the first that fires wins.
	if !st.Initialized || st.Loading {
		return loading()
	}
	if strings.HasPrefix(path, "/admin") && !st.Admin && path != "/admin/login" {
		return redirect("/admin/login")
	}
	if _, ok := protectedRoutes[path]; ok && !st.Authenticated {
		return redirect("/login")
	}
	if (path == "/login" || path == "/signup") && st.Authenticated {
		if st.Admin {
			return redirect("/admin")
		}
		return redirect("/dashboard")
	}

	if strings.HasPrefix(path, "/admin") {
		if view, ok := adminRoutes[path]; ok {
			if path == "/admin/login" {
				return barePage(view)
			}
			return page(view)
		}
		if m := attendeesPattern.FindStringSubmatch(path); m != nil {
			res := page("admin-distribution-attendees")
			res.Params = map[string]string{"event_id": m[1]}
			return res
		}
		return page(ViewAdminNotFound)
	}

	if view, ok := authRoutes[path]; ok {
		return barePage(view)
	}
	if view, ok := publicRoutes[path]; ok {
		return page(view)
	}
	if view, ok := protectedRoutes[path]; ok {
		return page(view)
	}
	if m := categoryPattern.FindStringSubmatch(path); m != nil {
		res := page("find-category")
		res.Params = map[string]string{"category": m[1]}
		return res
	}
	return page(ViewNotFound)
}
