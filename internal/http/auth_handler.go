package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"school-auth/internal/domain"
	"school-auth/internal/service"
)

// AuthHandler expone registro, verificacion de email y sesiones.
type AuthHandler struct {
	logger       *zap.Logger
	registration *service.RegistrationService
	auth         *service.AuthService
	jwtServ      *service.JWTService
}

func NewAuthHandler(
	logger *zap.Logger,
	registration *service.RegistrationService,
	auth *service.AuthService,
	jwtServ *service.JWTService,
) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		registration: registration,
		auth:         auth,
		jwtServ:      jwtServ,
	}
}

// Register maneja POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Password    string `json:"password" binding:"required"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	account, err := h.registration.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.writeError(c, err, "could not register account")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registration accepted, check your email to confirm the account",
		"user_id": account.ID,
		"email":   account.Email,
	})
}

// VerifyEmail maneja POST /api/auth/verify-email.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.verify(c, req.Token)
}

// VerifyEmailLink maneja GET /api/auth/verify-email?token=, destino del enlace del correo.
func (h *AuthHandler) VerifyEmailLink(c *gin.Context) {
	h.verify(c, c.Query("token"))
}

// verify activa la cuenta y abre sesion en el mismo paso.
func (h *AuthHandler) verify(c *gin.Context, token string) {
	account, err := h.registration.Verify(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err, "could not verify email")
		return
	}
	tokens, ok := h.issueTokens(c, account)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "verified",
		"access_token": tokens.AccessToken,
		"tokens":       tokens,
		"user":         account,
	})
}

// ResendVerification maneja POST /api/auth/resend-verification.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid resend request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sent, err := h.registration.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		h.writeError(c, err, "could not resend verification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "verification_resent", "email_sent": sent})
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	// Password sin binding: una cuenta pendiente responde EmailNotVerified aunque venga vacia.
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	account, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err, "could not login")
		return
	}
	h.respondWithTokens(c, account)
}

// Refresh maneja POST /api/auth/refresh; rota el refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	claims, err := h.jwtServ.ConsumeRefresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	accountID, err := claims.AccountID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	account, err := h.auth.CurrentUser(c.Request.Context(), accountID)
	if err != nil {
		h.writeError(c, err, "could not refresh session")
		return
	}
	h.respondWithTokens(c, account)
}

// Logout maneja POST /api/auth/logout revocando el refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.jwtServ.RevokeRefresh(req.RefreshToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// Me maneja GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	accountID, ok := GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	account, err := h.auth.CurrentUser(c.Request.Context(), accountID)
	if err != nil {
		h.writeError(c, err, "could not load account")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account})
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, account domain.Account) {
	tokens, ok := h.issueTokens(c, account)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": tokens.AccessToken, "tokens": tokens, "user": account})
}

// issueTokens responde 500 por su cuenta si no puede firmar el par.
func (h *AuthHandler) issueTokens(c *gin.Context, account domain.Account) (service.TokenPair, bool) {
	tokens, err := h.jwtServ.GeneratePair(account)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Int64("account_id", account.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return service.TokenPair{}, false
	}
	return tokens, true
}

// writeError traduce errores de dominio a codigos HTTP; el resto es 500.
func (h *AuthHandler) writeError(c *gin.Context, err error, fallback string) {
	status, msg := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(fallback, zap.Error(err))
		msg = fallback
	}
	c.JSON(status, gin.H{"error": msg})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidOrConsumedToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrNotFoundOrAlreadyVerified):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDuplicateAccount):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrPersonNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrDirectoryUnavailable):
		return http.StatusServiceUnavailable, service.ErrDirectoryUnavailable.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrEmailNotVerified),
		errors.Is(err, service.ErrAccountInactive):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "too many requests"
	default:
		return http.StatusInternalServerError, ""
	}
}
