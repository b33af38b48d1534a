package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"school-auth/internal/domain"
	"school-auth/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// AdminHandler es una capa de lectura/escritura sin reglas de negocio.
type AdminHandler struct {
	logger   *zap.Logger
	accounts repository.AccountRepository
	roles    repository.RoleRepository
	logs     repository.EmailLogRepository
}

func NewAdminHandler(
	logger *zap.Logger,
	accounts repository.AccountRepository,
	roles repository.RoleRepository,
	logs repository.EmailLogRepository,
) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		accounts: accounts,
		roles:    roles,
		logs:     logs,
	}
}

// AdminTokenMiddleware exige Authorization: Bearer <ADMIN_API_TOKEN>.
// Sin token configurado el panel queda deshabilitado.
func AdminTokenMiddleware(token string) gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(token))
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			c.Abort()
			return
		}
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}
		got := []byte(strings.TrimSpace(header[len("Bearer "):]))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ListAccounts maneja GET /api/admin/accounts.
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	limit, offset := pagination(c)
	accounts, err := h.accounts.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list accounts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list accounts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "limit": limit, "offset": offset})
}

// ListRoles maneja GET /api/admin/roles.
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list roles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list roles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

// CreateRole maneja POST /api/admin/roles.
func (h *AdminHandler) CreateRole(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	role := domain.Role{
		Name:        strings.ToLower(strings.TrimSpace(req.Name)),
		Description: strings.TrimSpace(req.Description),
	}
	if role.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.roles.Create(c.Request.Context(), &role); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "role already exists"})
			return
		}
		h.logger.Error("create role failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create role"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"role": role})
}

// ListEmailLogs maneja GET /api/admin/email-logs.
func (h *AdminHandler) ListEmailLogs(c *gin.Context) {
	limit, offset := pagination(c)
	logs, err := h.logs.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list email logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email_logs": logs, "limit": limit, "offset": offset})
}

func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
