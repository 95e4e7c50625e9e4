package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrlmwn/feedgram/internal/apperr"
	"github.com/hrlmwn/feedgram/internal/crypto"
	"github.com/hrlmwn/feedgram/internal/events"
	"github.com/hrlmwn/feedgram/internal/hash"
	"github.com/hrlmwn/feedgram/internal/logging"
	"github.com/hrlmwn/feedgram/internal/mail"
	"github.com/hrlmwn/feedgram/internal/models"
	"github.com/hrlmwn/feedgram/internal/repo"
	"github.com/hrlmwn/feedgram/internal/session"
	"github.com/hrlmwn/feedgram/internal/tokens"
	"github.com/hrlmwn/feedgram/internal/validator"
	"github.com/hrlmwn/feedgram/internal/verification"
)

// LoginCookieName is set by the client after a successful login and only
// consulted by the isAuthenticated probe.
const LoginCookieName = "LOGIN_COOKIE"

// AuthHandler orchestrates the account state machine: registration with
// deferred email verification, login, refresh rotation, and the
// forgot/reset-password cycle.
type AuthHandler struct {
	Users    *repo.UserRepo
	Codes    *verification.Ledger
	Sessions *session.Store
	Tokens   *tokens.Service
	Cipher   *crypto.Cipher
	Mailer   mail.Mailer
	Events   *events.Producer

	CookieAccessName string
	CookieIDName     string
	ClientOrigin     string
	Secure           bool
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "error", err)
		return apperr.BadRequest("invalid body")
	}

	if errs := validator.Register(req.Email, req.Username, req.Password); errs != nil {
		l.Warn("register_failed", "status", 400, "reason", "validation")
		return apperr.Validation(errs)
	}

	// Identity-provider collision guard: a password registration must not
	// capture an email owned by a federated account.
	existing, err := h.Users.ByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if existing != nil && existing.Strategy != models.StrategyDefault {
		l.Warn("register_failed", "status", 400, "reason", "strategy_collision")
		return apperr.BadRequest("another user has been registered with this email")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Username:       req.Username,
		PasswordHash:   pwHash,
		Strategy:       models.StrategyDefault,
		JwtVersion:     uuid.NewString(),
		RequiredAction: models.ActionEmailVerification,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			l.Warn("register_failed", "status", 400, "reason", "duplicate_email")
			return apperr.BadRequest(fmt.Sprintf("%s has been registered", req.Email))
		case errors.Is(err, repo.ErrDuplicateUsername):
			l.Warn("register_failed", "status", 400, "reason", "duplicate_username")
			return apperr.BadRequest(fmt.Sprintf("%s has been registered", req.Username))
		}
		return err
	}

	code, err := h.Codes.Issue(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := h.Mailer.Send(ctx, user.Email, mail.Verification(user.Username, code)); err != nil {
		l.Error("register_failed", "status", 500, "reason", "mail_dispatch", "error", err)
		return err
	}

	h.publishEvent(c, user.ID, map[string]interface{}{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	c.SetCookie(CreateCookie(h.CookieIDName, user.ID, "/", h.Secure))
	l.Info("register_success", "status", 201, "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": fmt.Sprintf("an email has been sent to %s, please verify your account", user.Email),
	})
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_verify_email")

	var req struct {
		VerificationCode string `json:"verificationCode"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if strings.TrimSpace(req.VerificationCode) == "" {
		return apperr.BadRequest("invalid code")
	}

	idCookie, err := c.Cookie(h.CookieIDName)
	if err != nil || idCookie.Value == "" {
		l.Warn("verify_failed", "status", 405, "reason", "missing_id_cookie")
		return apperr.NotAllowed("action is stopped by server")
	}
	userID := idCookie.Value

	if err := h.Codes.Redeem(ctx, userID, req.VerificationCode); err != nil {
		if errors.Is(err, verification.ErrNotPermitted) {
			l.Warn("verify_failed", "status", 405, "reason", "redeem_rejected")
			return apperr.NotAllowed("action is stopped by server")
		}
		return err
	}

	// Fresh jwt epoch: everything signed before verification is void.
	if err := h.Users.Update(ctx, userID, map[string]any{
		"jwt_version":     uuid.NewString(),
		"is_active":       true,
		"is_login":        true,
		"is_verified":     true,
		"required_action": models.ActionNone,
	}); err != nil {
		return err
	}

	user, err := h.Users.ByID(ctx, userID)
	if err != nil {
		return err
	}

	encAccess, err := h.mintSession(ctx, user)
	if err != nil {
		return err
	}

	h.publishEvent(c, user.ID, map[string]interface{}{
		"type":     "user_verified",
		"user_id":  user.ID,
		"username": user.Username,
	})

	c.SetCookie(CreateCookie(h.CookieAccessName, encAccess, "/", h.Secure))
	c.SetCookie(CreateCookie(h.CookieIDName, user.ID, "/", h.Secure))
	l.Info("verify_success", "status", 200, "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": user.Public()})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Identity string `json:"identity"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if errs := validator.Login(req.Identity, req.Password); errs != nil {
		return apperr.Validation(errs)
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(req.Identity, "@") {
		user, err = h.Users.ByEmail(ctx, req.Identity)
	} else {
		user, err = h.Users.ByUsername(ctx, req.Identity)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 404, "reason", "user_not_found")
			return apperr.NotFound("user not found")
		}
		return err
	}

	if !user.IsVerified {
		l.Warn("login_failed", "status", 403, "reason", "unverified")
		return apperr.Forbidden("please verify your email first")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 403, "reason", "bad_password")
		return apperr.Forbidden("invalid password")
	}

	encAccess, err := h.mintSession(ctx, user)
	if err != nil {
		return err
	}

	h.publishEvent(c, user.ID, map[string]interface{}{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	c.SetCookie(CreateCookie(h.CookieAccessName, encAccess, "/", h.Secure))
	c.SetCookie(CreateCookie(h.CookieIDName, user.ID, "/", h.Secure))
	l.Info("login_success", "status", 200, "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// RefreshToken exchanges the stored refresh token for a new access/refresh
// pair. The refresh token never travels in a cookie: it is looked up by the
// ID cookie, decrypted, verified, and only then compared against the live
// account's jwt version. Storing the new pair overwrites the old entry, which
// is the rotation.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	idCookie, err := c.Cookie(h.CookieIDName)
	if err != nil || idCookie.Value == "" {
		l.Warn("refresh_failed", "status", 405, "reason", "missing_id_cookie")
		return apperr.NotAllowed("action is stopped by server")
	}
	userID := idCookie.Value

	encRefresh, err := h.Sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			l.Warn("refresh_failed", "status", 405, "reason", "no_stored_session")
			return apperr.NotAllowed("action is stopped by server")
		}
		return err
	}

	rawRefresh, err := h.Cipher.Decrypt(encRefresh)
	if err != nil {
		return err
	}
	claims, err := h.Tokens.VerifyRefresh(rawRefresh)
	if err != nil {
		l.Warn("refresh_failed", "status", 405, "reason", "token_rejected")
		return apperr.NotAllowed("action is stopped by server")
	}

	user, err := h.Users.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotAllowed("action is stopped by server")
		}
		return err
	}
	if user.JwtVersion != claims.JwtVersion {
		l.Warn("refresh_failed", "status", 405, "reason", "expired_version")
		return apperr.NotAllowed("expired jwt version")
	}

	encAccess, err := h.mintSession(ctx, user)
	if err != nil {
		return err
	}

	c.SetCookie(CreateCookie(h.CookieAccessName, encAccess, "/", h.Secure))
	l.Info("refresh_success", "status", 200, "user_id", user.ID)
	return c.String(http.StatusOK, "cookie renew")
}

// Logout clears both transport cookies. It intentionally leaves the stored
// refresh token and the jwt version untouched: the entry dies at its TTL or
// at the next version bump.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	c.SetCookie(DeleteCookie(h.CookieAccessName, "/"))
	c.SetCookie(DeleteCookie(h.CookieIDName, "/"))
	l.Info("logout_success", "status", 200)
	return c.String(http.StatusOK, "logout successfully")
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_forgot_password")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if errs := validator.ForgotPassword(req.Email); errs != nil {
		return apperr.Validation(errs)
	}

	user, err := h.Users.ByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("forgot_password_failed", "status", 404, "reason", "user_not_found")
			return apperr.NotFound("user not found")
		}
		return err
	}
	if !user.IsVerified {
		l.Warn("forgot_password_failed", "status", 403, "reason", "unverified")
		return apperr.Forbidden("please verify your email first")
	}

	if err := h.Users.Update(ctx, user.ID, map[string]any{
		"required_action": models.ActionResetPassword,
	}); err != nil {
		return err
	}

	linkToken, err := h.Tokens.SignLink(user.Email)
	if err != nil {
		return err
	}
	encToken, err := h.Cipher.Encrypt(linkToken)
	if err != nil {
		return err
	}
	// base64 ciphertext can contain '/', which would break the path segment
	escaped := strings.ReplaceAll(encToken, "/", "_")
	link := h.ClientOrigin + "/reset-password/" + escaped

	if err := h.Mailer.Send(ctx, user.Email, mail.PasswordReset(user.Username, link)); err != nil {
		l.Error("forgot_password_failed", "status", 500, "reason", "mail_dispatch", "error", err)
		return err
	}

	l.Info("forgot_password_success", "status", 200, "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("a reset link has been sent to %s", user.Email),
	})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_password")

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if errs := validator.ResetPassword(req.Password); errs != nil {
		return apperr.Validation(errs)
	}

	escaped := c.Param("linkToken")
	linkToken, err := h.Cipher.Decrypt(strings.ReplaceAll(escaped, "_", "/"))
	if err != nil {
		l.Warn("reset_password_failed", "status", 400, "reason", "bad_link")
		return apperr.BadRequest("invalid reset link")
	}
	claims, err := h.Tokens.VerifyLink(linkToken)
	if err != nil {
		l.Warn("reset_password_failed", "status", 400, "reason", "link_rejected")
		return apperr.BadRequest("invalid reset link")
	}

	user, err := h.Users.ByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.BadRequest("invalid reset link")
		}
		return err
	}

	// A link minted before an unrelated completed reset must not replay.
	if user.RequiredAction != models.ActionResetPassword {
		l.Warn("reset_password_failed", "status", 400, "reason", "action_not_granted")
		return apperr.BadRequest("action not granted")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := h.Users.Update(ctx, user.ID, map[string]any{
		"jwt_version":     uuid.NewString(),
		"required_action": models.ActionNone,
		"password_hash":   pwHash,
	}); err != nil {
		return err
	}

	l.Info("reset_password_success", "status", 200, "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "password updated, please login with your new password",
	})
}

func (h *AuthHandler) IsAuthenticated(c echo.Context) error {
	ctx := c.Request().Context()

	idCookie, idErr := c.Cookie(h.CookieIDName)
	_, loginErr := c.Cookie(LoginCookieName)
	if idErr == nil && loginErr == nil && idCookie.Value != "" {
		if _, err := h.Users.ByID(ctx, idCookie.Value); err == nil {
			return c.String(http.StatusOK, "login")
		}
	}
	return c.String(http.StatusOK, "not login")
}

// mintSession signs a fresh access/refresh pair for the account's current
// jwt version, stores the encrypted refresh token (overwriting any previous
// one) and returns the encrypted access token for the cookie.
func (h *AuthHandler) mintSession(ctx context.Context, user *models.User) (string, error) {
	accessToken, err := h.Tokens.SignAccess(user)
	if err != nil {
		return "", err
	}
	refreshToken, err := h.Tokens.SignRefresh(user)
	if err != nil {
		return "", err
	}

	encAccess, err := h.Cipher.Encrypt(accessToken)
	if err != nil {
		return "", err
	}
	encRefresh, err := h.Cipher.Encrypt(refreshToken)
	if err != nil {
		return "", err
	}

	if err := h.Sessions.Put(ctx, user.ID, encRefresh); err != nil {
		return "", err
	}
	return encAccess, nil
}

func (h *AuthHandler) publishEvent(c echo.Context, key string, event map[string]interface{}) {
	if h.Events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.PublishEvent(ctx, events.UserEventsTopic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
