package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/auth"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         *auth.TokenManager
	cookieSecure   bool
	now            func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, tokens *auth.TokenManager, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		cookieSecure:   cookieSecure,
		now:            time.Now,
	}
}

// RegisterAuthRoutes registers authentication-related routes. protect guards /me.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, protect echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me, protect)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	_, err := h.userRepository.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}
	if !apperror.Is(err, apperror.NotFound) {
		return httpError(c, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := models.NewUser(h.now())
	user.Email = req.Email
	user.PasswordHash = string(hashedPassword)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Username = strings.ToLower(req.FirstName) + strings.ToLower(req.LastName)
	user.UserImage = models.DefaultUserImage

	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return httpError(c, err)
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}
	c.SetCookie(h.sessionCookie(token))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    user.Public(user.ID),
		"token":   token,
	})
}

// Login handles local user authentication with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if apperror.Is(err, apperror.NotFound) {
		return echo.NewHTTPError(http.StatusBadRequest, "User not found")
	}
	if err != nil {
		return httpError(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	c.SetCookie(h.sessionCookie(token))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user":    user.Public(user.ID),
		"token":   token,
	})
}

// Logout expires the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie := h.sessionCookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	c.SetCookie(cookie)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Me returns the stored profile of the caller, or the bare identity for
// provider accounts without a profile document.
func (h *AuthHandler) Me(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), identity.UID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"user": user.Public(identity.UID)})
	case apperror.Is(err, apperror.NotFound) && identity.Provider == auth.ProviderFirebase:
		return c.JSON(http.StatusOK, echo.Map{"user": identity})
	default:
		return httpError(c, err)
	}
}

func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	ttl := h.tokens.TTL()
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  h.now().Add(ttl),
	}
}
