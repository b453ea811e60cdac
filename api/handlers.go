package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nemopss/carbon-tracker/backend/analytics"
	"github.com/nemopss/carbon-tracker/backend/db"
	"github.com/nemopss/carbon-tracker/backend/models"
)

// Store is the persistence the handlers need. Both db.Storage and
// db.MemoryStorage satisfy it.
type Store interface {
	analytics.TransactionSource
	CreateUser(ctx context.Context, input models.CreateUser) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, id int, input models.UpdateProfile) (*models.User, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	ListTransactions(ctx context.Context, userID int) ([]models.Transaction, error)
}

type Handler struct {
	storage   Store
	analytics *analytics.Service
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewHandler(s Store, a *analytics.Service, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		storage:   s,
		analytics: a,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.CreateUser true "User data"
// @Success 201 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /register [post]
func (h *Handler) Register(c *gin.Context) {
	var input models.CreateUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(input.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	user, err := h.storage.CreateUser(c.Request.Context(), input)
	switch {
	case errors.Is(err, db.ErrShortPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, db.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile(user))
}

// Login godoc
// @Summary Log in and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.Credentials true "Email and password"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.storage.GetUserByEmail(c.Request.Context(), creds.Email)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.LoginResponse{Token: token})
}

// GetProfile godoc
// @Summary Current user's profile
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/user/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.storage.GetUserByID(c.Request.Context(), userID(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, profile(user))
}

// UpdateProfile godoc
// @Summary Update first and last name
// @Tags user
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param profile body models.UpdateProfile true "New names"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/user/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var input models.UpdateProfile
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.storage.UpdateProfile(c.Request.Context(), userID(c), input)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile(user))
}

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// internalError logs err and answers 500 with its message.
func (h *Handler) internalError(c *gin.Context, err error) {
	h.log.Error().
		Err(err).
		Str("request_id", c.GetString(requestIDKey)).
		Str("path", c.FullPath()).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func profile(u *models.User) models.ProfileResponse {
	return models.ProfileResponse{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
	}
}
