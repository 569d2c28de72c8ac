package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/service"
)

// userResponse is the public shape of an account
type userResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
	CreatedAt   string  `json:"createdAt"`
}

func toUser(a *core.Account) *userResponse {
	if a == nil {
		return nil
	}
	return &userResponse{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	cookies     CookieConfig
	metrics     *Metrics
	logger      *slog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, cookies CookieConfig, metrics *Metrics, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cookies:     cookies,
		metrics:     metrics,
		logger:      logger,
	}
}

// CheckEmail reports whether an email is registered
func (h *AuthHandlers) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"taken": false})
		return
	}

	taken, err := h.authService.CheckEmail(c.Request.Context(), email)
	h.observe("check_email", err)
	if err != nil {
		var coded *core.Error
		if errors.As(err, &coded) && coded.Code == core.CodeInvalidInput {
			c.JSON(http.StatusBadRequest, gin.H{"taken": false})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"taken": taken})
}

// Captcha issues a registration challenge
func (h *AuthHandlers) Captcha(c *gin.Context) {
	issued, err := h.authService.Captcha(c.Request.Context())
	h.observe("captcha", err)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"captchaId": issued.ID, "image": issued.Image})
}

// Register handles the registration request
func (h *AuthHandlers) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectBody(c, "register", err)
		return
	}

	account, err := h.authService.Register(c.Request.Context(), req)
	h.observe("register", err)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUser(account)})
}

// Login handles the login request
func (h *AuthHandlers) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectBody(c, "login", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	h.observe("login", err)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.cookies.setSession(c, result.Tokens, h.authService.AccessTTL(), h.authService.RefreshTTL())
	c.JSON(http.StatusOK, gin.H{"user": toUser(result.Account)})
}

// Refresh rotates the refresh cookie
func (h *AuthHandlers) Refresh(c *gin.Context) {
	pair, err := h.authService.Refresh(c.Request.Context(), cookieValue(c, RefreshCookie))
	h.observe("refresh", err)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.cookies.setSession(c, pair, h.authService.AccessTTL(), h.authService.RefreshTTL())
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Logout revokes the refresh cookie and clears both session cookies
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.authService.Logout(c.Request.Context(), cookieValue(c, RefreshCookie))
	h.observe("logout", nil)

	h.cookies.clearSession(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me returns the signed-in user, or null when there is none
func (h *AuthHandlers) Me(c *gin.Context) {
	account, err := h.authService.Me(c.Request.Context(), cookieValue(c, AccessCookie))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUser(account)})
}

// UpdateMe changes the display name of the signed-in user
func (h *AuthHandlers) UpdateMe(c *gin.Context) {
	var req struct {
		DisplayName *string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DisplayName == nil {
		h.rejectBody(c, "update_profile", err)
		return
	}

	account, err := h.authService.UpdateProfile(c.Request.Context(), c.GetString(accessTokenKey), *req.DisplayName)
	h.observe("update_profile", err)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUser(account)})
}

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandlers) fail(c *gin.Context, err error) {
	var coded *core.Error
	if !errors.As(err, &coded) {
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorCode})
		return
	}

	body := gin.H{"error": coded.Code}
	if len(coded.Details) > 0 {
		body["details"] = coded.Details
	}
	c.JSON(StatusFor(coded.Code), body)
}

// rejectBody counts and answers a request whose body could not be bound.
func (h *AuthHandlers) rejectBody(c *gin.Context, operation string, cause error) {
	err := core.NewError(core.CodeInvalidInput, "body_unreadable", cause)
	h.observe(operation, err)
	h.fail(c, err)
}

func (h *AuthHandlers) observe(operation string, err error) {
	code := "ok"
	if err != nil {
		if c, ok := core.CodeOf(err); ok {
			code = string(c)
		} else {
			code = internalErrorCode
		}
	}
	h.metrics.AuthOutcomes.WithLabelValues(operation, code).Inc()
}
