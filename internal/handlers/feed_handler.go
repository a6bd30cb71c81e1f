package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const defaultFeedLimit = 10

// FeedHandler serves the caller's home feed: their own posts and those of
// the users they follow, newest first.
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// FeedPost is a post with viewer-specific flags
type FeedPost struct {
	models.Post
	IsLiked      bool `json:"isLiked"`
	IsDisliked   bool `json:"isDisliked"`
	IsBookmarked bool `json:"isBookmarked"`
}

// GetFeed returns one page of the caller's feed
func (h *FeedHandler) GetFeed(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = defaultFeedLimit
	}

	ctx := c.Request().Context()
	authors := map[string]bool{identity.UID: true}
	bookmarked := map[string]bool{}
	// Provider accounts may not have a profile document yet; they see only their own posts.
	if viewer, err := h.userRepository.GetUserByID(ctx, identity.UID); err == nil {
		for _, id := range viewer.Following {
			authors[id] = true
		}
		for _, id := range viewer.Bookmarks {
			bookmarked[id] = true
		}
	}

	posts, err := h.postRepository.GetPosts(ctx, "")
	if err != nil {
		return httpError(c, err)
	}

	feed := make([]FeedPost, 0, len(posts))
	for _, p := range posts {
		if !authors[p.UserID] {
			continue
		}
		feed = append(feed, FeedPost{
			Post:         p,
			IsLiked:      containsID(p.Likes.LikedBy, identity.UID),
			IsDisliked:   containsID(p.Likes.DislikedBy, identity.UID),
			IsBookmarked: bookmarked[p.ID],
		})
	}

	totalItems := len(feed)
	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))
	start := min((page-1)*limit, totalItems)
	end := min(start+limit, totalItems)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": feed[start:end],
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      totalItems,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
