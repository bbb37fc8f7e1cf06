package server

import (
	"log/slog"
	"strings"

	"foodbridge/internal/dispatch"
	"foodbridge/internal/models"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// Signup registers a new account and returns a session token.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	sess, err := s.authService.SignUp(c.Context(), req.Name, strings.ToLower(req.Email), req.Password)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"user":       sess.User,
	})
}

// Login authenticates a user and returns a session token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	sess, err := s.authService.SignInWithPassword(c.Context(), strings.ToLower(req.Email), req.Password)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"user":       sess.User,
	})
}

// AdminLogin authenticates a user and additionally requires the admin role.
// The issued token is a regular session token; the role gate lives in
// AdminRequired on every admin route.
func (s *Server) AdminLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	sess, err := s.authService.SignInWithPassword(c.Context(), strings.ToLower(req.Email), req.Password)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if !sess.User.IsAdmin() {
		// Revoke the token we just minted so a non-admin cannot keep it.
		if rerr := s.authService.SignOut(c.Context(), sess.Token); rerr != nil {
			slog.Warn("failed to revoke non-admin token", "error", rerr)
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("Admin access required"))
	}

	return c.JSON(fiber.Map{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"user":       sess.User,
	})
}

// Logout revokes the presented token. An absent or invalid token is not an
// error; logging out twice is fine.
func (s *Server) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	token := ""
	if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
		token = parts[1]
	}
	if token == "" {
		return c.JSON(fiber.Map{"message": "Logged out"})
	}

	if err := s.authService.SignOut(c.Context(), token); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetSessionInfo validates the presented token and returns the session user.
func (s *Server) GetSessionInfo(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	token := ""
	if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
		token = parts[1]
	}

	sess, err := s.authService.GetSession(c.Context(), token)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if sess == nil {
		return c.JSON(fiber.Map{"session": nil})
	}

	return c.JSON(fiber.Map{
		"session": fiber.Map{
			"expires_at": sess.ExpiresAt,
			"user":       sess.User,
		},
	})
}

// ForgotPassword starts a password reset. The response is identical whether
// or not the email exists.
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	token, err := s.authService.ResetPasswordForEmail(c.Context(), strings.ToLower(req.Email))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if token != "" {
		// Delivery normally goes out by email; without a mailer configured the
		// token is only logged so operators can relay it manually.
		slog.Info("password reset token issued", "email", req.Email)
	}

	return c.JSON(fiber.Map{
		"message": "If an account exists for that email, a reset link has been sent.",
	})
}

// ResetPassword completes a password reset using the emailed token.
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.authService.UpdatePassword(c.Context(), req.Token, req.Password); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

// ChangePassword updates the password of the authenticated user after
// verifying the current one.
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	err := s.authService.ChangePassword(c.Context(), currentUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

// ResolveShell resolves a client-side path against the caller's session
// state and returns the view decision. Unauthenticated callers are
// legitimate here; they simply resolve with a signed-out state.
func (s *Server) ResolveShell(c *fiber.Ctx) error {
	path := c.Query("path", "/")

	result := dispatch.Dispatch(path, s.shellState(c))
	return c.JSON(result)
}

// shellState derives dispatch state from an optional bearer token.
func (s *Server) shellState(c *fiber.Ctx) dispatch.State {
	st := dispatch.State{Initialized: true}

	userID, ok := s.optionalUserID(c)
	if !ok {
		return st
	}
	st.Authenticated = true

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		// Token validated but the account is gone; treat as signed out.
		st.Authenticated = false
		return st
	}
	st.Admin = user.IsAdmin()
	return st
}
