package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/middleware"
	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/pkg/apperrors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// IDTokenVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	verifier       IDTokenVerifier
	jwtSecret      string
	jwtTTL         time.Duration
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. verifier may be nil, which disables Firebase login.
func NewAuthHandler(userRepo repositories.UserRepository, verifier IDTokenVerifier, jwtSecret string, jwtTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		verifier:       verifier,
		jwtSecret:      jwtSecret,
		jwtTTL:         jwtTTL,
		logger:         logger,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	if h.verifier != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
	g.GET("/user", h.CurrentUser, requireAuth)
}

// Signup registers a local user with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := h.userRepository.GetUserByEmail(ctx, email)
	if err == nil {
		return apperrors.NewConflictError("user with this email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.FromDB(err, "user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Email:       email,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Password:    string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return apperrors.FromDB(err, "user")
	}
	h.logger.Info("user signed up", zap.Uint("user_id", user.ID))

	return h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn authenticates a local user with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewUnauthenticatedError("invalid email or password")
		}
		return apperrors.FromDB(err, "user")
	}

	// Firebase-only accounts have no local password.
	if user.Password == "" {
		return apperrors.NewUnauthenticatedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return apperrors.NewUnauthenticatedError("invalid email or password")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT, creating or linking the user
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	token, err := h.verifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return apperrors.NewUnauthenticatedError("invalid Firebase ID token").WithCause(err)
	}

	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(email)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)
	firebaseUID := token.UID

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, firebaseUID)
	switch {
	case err == nil:
		if name != "" {
			user.DisplayName = name
		}
		if picture != "" {
			user.ProfileImageURL = picture
		}
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return apperrors.FromDB(err, "user")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if email == "" {
			return apperrors.NewValidationError("firebase account has no email address")
		}
		user, err = h.userRepository.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			// Linking hands over the local account, so the provider must vouch for the address.
			if verified, _ := token.Claims["email_verified"].(bool); !verified {
				h.logger.Warn("firebase login for existing email with unverified address", zap.Uint("user_id", user.ID))
				return apperrors.NewConflictError("an account with this email already exists; verify the email address to link it")
			}
			user.FirebaseUID = &firebaseUID
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return apperrors.FromDB(err, "user")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = &models.User{
				Email:           email,
				DisplayName:     name,
				ProfileImageURL: picture,
				FirebaseUID:     &firebaseUID,
			}
			if err := h.userRepository.CreateUser(ctx, user); err != nil {
				return apperrors.FromDB(err, "user")
			}
			h.logger.Info("user created from firebase login", zap.Uint("user_id", user.ID))
		default:
			return apperrors.FromDB(err, "user")
		}
	default:
		return apperrors.FromDB(err, "user")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// CurrentUser returns the authenticated user
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return apperrors.NewUnauthenticatedError("")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return apperrors.FromDB(err, "user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User) error {
	token, err := middleware.GenerateToken(user, h.jwtSecret, h.jwtTTL)
	if err != nil {
		return apperrors.NewInternalError("failed to generate token", err)
	}
	return c.JSON(status, models.AuthResponse{Token: token, User: user})
}
