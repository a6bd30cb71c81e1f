package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler lists the two sides of a user's follow graph.
type FollowHandler struct {
	userRepository repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{userRepository: userRepo}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// GetFollowers returns compact profiles of everyone following :id
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return h.respond(c, user.Followers)
}

// GetFollowing returns compact profiles of everyone :id follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return h.respond(c, user.Following)
}

func (h *FollowHandler) respond(c echo.Context, ids []string) error {
	users, err := h.compactUsers(c.Request().Context(), ids)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"users": users, "count": len(users)},
	})
}

// compactUsers resolves ids in order, skipping users that no longer exist.
func (h *FollowHandler) compactUsers(ctx context.Context, ids []string) ([]models.UserCompact, error) {
	out := make([]models.UserCompact, 0, len(ids))
	for _, id := range ids {
		user, err := h.userRepository.GetUserByID(ctx, id)
		if apperror.Is(err, apperror.NotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, user.ToCompact())
	}
	return out, nil
}
