package handlers

import (
	"net/http"

	"github.com/anonto42/socialgraph/backend/internal/engagement"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// BookmarkHandler exposes a user's bookmark list.
type BookmarkHandler struct {
	engagement *engagement.Service
}

func NewBookmarkHandler(svc *engagement.Service) *BookmarkHandler {
	return &BookmarkHandler{engagement: svc}
}

func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.GET("/bookmarks/:userId", h.GetBookmarks)
	g.POST("/bookmarks/:userId", h.AddBookmarkFromBody)
	g.POST("/bookmarks/:userId/:postId", h.AddBookmark)
	g.DELETE("/bookmarks/:userId/:postId", h.RemoveBookmark)
}

// RegisterAdminRoutes registers the all-users bookmark view on an admin-guarded group.
func (h *BookmarkHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/bookmarks", h.GetAllBookmarks)
}

func (h *BookmarkHandler) GetBookmarks(c echo.Context) error {
	list, err := h.engagement.Bookmarks(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *BookmarkHandler) AddBookmark(c echo.Context) error {
	return h.add(c, c.Param("postId"))
}

// AddBookmarkFromBody accepts {"postId": ...} in place of the path segment.
func (h *BookmarkHandler) AddBookmarkFromBody(c echo.Context) error {
	var req models.BookmarkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.add(c, req.PostID)
}

func (h *BookmarkHandler) add(c echo.Context, postID string) error {
	userID, err := h.owner(c)
	if err != nil {
		return err
	}
	list, err := h.engagement.AddBookmark(c.Request().Context(), userID, postID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Post bookmarked successfully",
		"bookmarks": list,
	})
}

func (h *BookmarkHandler) RemoveBookmark(c echo.Context) error {
	userID, err := h.owner(c)
	if err != nil {
		return err
	}
	list, err := h.engagement.RemoveBookmark(c.Request().Context(), userID, c.Param("postId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Post removed from bookmarks",
		"bookmarks": list,
	})
}

func (h *BookmarkHandler) GetAllBookmarks(c echo.Context) error {
	all, err := h.engagement.AllBookmarks(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookmarks": all})
}

// owner returns the path userId when it belongs to the caller.
func (h *BookmarkHandler) owner(c echo.Context) (string, error) {
	identity, err := currentIdentity(c)
	if err != nil {
		return "", err
	}
	userID := c.Param("userId")
	if userID != identity.UID {
		return "", echo.NewHTTPError(http.StatusForbidden, "You can only modify your own bookmarks")
	}
	return userID, nil
}
