package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/engagement"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const defaultSuggestionLimit = 5

// UserHandler handles profile reads and updates and the follow graph.
type UserHandler struct {
	userRepository repositories.UserRepository
	engagement     *engagement.Service
	notifier       *Notifier
	now            func() time.Time
}

func NewUserHandler(userRepo repositories.UserRepository, svc *engagement.Service, notifier *Notifier) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		engagement:     svc,
		notifier:       notifier,
		now:            time.Now,
	}
}

func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users", h.GetUsers)
	g.POST("/users", h.CreateUser)
	g.GET("/users/suggestions", h.GetSuggestions)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/:id", h.UpdateUser)
	g.POST("/users/follow/:followUserId", h.Follow)
	g.POST("/users/unfollow/:unfollowUserId", h.Unfollow)
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	users, err := h.userRepository.GetUsers(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, publicUsers(users, identity.UID))
}

// CreateUser creates a profile document without credentials.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if req.Email != "" {
		_, err := h.userRepository.GetUserByEmail(ctx, req.Email)
		if err == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
		}
		if !apperror.Is(err, apperror.NotFound) {
			return httpError(c, err)
		}
	}

	user := models.NewUser(h.now())
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Username = req.Username
	user.UserImage = req.UserImage
	if user.UserImage == "" {
		user.UserImage = models.DefaultUserImage
	}
	user.Bio = req.Bio
	user.Website = req.Website

	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, user.Public(""))
}

func (h *UserHandler) GetUser(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, user.Public(identity.UID))
}

// UpdateUser lets callers edit only their own profile.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if id != identity.UID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only update your own profile")
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.userRepository.UpdateUser(ctx, id, &req, h.now()); err != nil {
		return httpError(c, err)
	}
	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, user.Public(identity.UID))
}

func (h *UserHandler) GetSuggestions(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	users, err := h.userRepository.GetSuggestions(c.Request().Context(), identity.UID, limit)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, publicUsers(users, identity.UID))
}

func (h *UserHandler) Follow(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	targetID := c.Param("followUserId")

	res, err := h.engagement.Follow(c.Request().Context(), identity.UID, targetID)
	if err != nil {
		return httpError(c, err)
	}
	h.notifier.Notify(c.Request().Context(), models.NotificationFollow, identity.UID, targetID, targetID, "user",
		identity.Username+" started following you")

	return c.JSON(http.StatusOK, echo.Map{
		"message":   res.Message,
		"following": res.Following,
		"followers": res.Followers,
	})
}

func (h *UserHandler) Unfollow(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	res, err := h.engagement.Unfollow(c.Request().Context(), identity.UID, c.Param("unfollowUserId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   res.Message,
		"following": res.Following,
		"followers": res.Followers,
	})
}

func publicUsers(users []models.User, viewerID string) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = u.Public(viewerID)
	}
	return out
}
