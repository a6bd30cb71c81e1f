package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/engagement"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	engagement        *engagement.Service
	notifier          *Notifier
	now               func() time.Time
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, svc *engagement.Service, notifier *Notifier) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		commentRepository: commentRepo,
		engagement:        svc,
		notifier:          notifier,
		now:               time.Now,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts) // all posts, or one author's with ?userId=
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/like", h.LikePost)
	g.POST("/posts/:id/dislike", h.DislikePost)
	g.DELETE("/posts/:id/comments", h.DeletePostComments)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post := models.NewPost(identity.Author(), req.Content, h.now())
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts retrieves multiple posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.postRepository.GetPosts(c.Request().Context(), c.QueryParam("userId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("id")
	existingPost, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(c, err)
	}

	// Ensure the user updating the post is the owner
	if existingPost.UserID != identity.UID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	now := h.now()
	if err := h.postRepository.UpdateContent(ctx, postID, req.Content, now); err != nil {
		return httpError(c, err)
	}
	existingPost.Content = req.Content
	existingPost.UpdatedAt = now

	return c.JSON(http.StatusOK, existingPost)
}

// DeletePost deletes a post, its comments and every bookmark of it
func (h *PostHandler) DeletePost(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("id")
	existingPost, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(c, err)
	}

	// Ensure the user deleting the post is the owner
	if existingPost.UserID != identity.UID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	deleted, err := h.commentRepository.DeleteCommentsByPostID(ctx, postID)
	if err != nil {
		return httpError(c, err)
	}
	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		return httpError(c, err)
	}
	unbookmarked, err := h.engagement.ForgetPost(ctx, postID)
	if err != nil {
		return httpError(c, err)
	}

	logrus.WithFields(logrus.Fields{"post_id": postID, "comments": deleted, "bookmarks": unbookmarked}).Debug("post deleted")
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// DeletePostComments removes every comment of a post, owner only.
func (h *PostHandler) DeletePostComments(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("id")
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(c, err)
	}
	if post.UserID != identity.UID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete these comments")
	}

	deleted, err := h.commentRepository.DeleteCommentsByPostID(ctx, postID)
	if err != nil {
		return httpError(c, err)
	}
	if err := h.postRepository.ClearComments(ctx, postID); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Comments deleted successfully",
		"deleted": deleted,
	})
}

func (h *PostHandler) LikePost(c echo.Context) error {
	return h.react(c, engagement.Positive)
}

func (h *PostHandler) DislikePost(c echo.Context) error {
	return h.react(c, engagement.Negative)
}

func (h *PostHandler) react(c echo.Context, p engagement.Polarity) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("id")
	res, err := h.engagement.ReactToPost(ctx, postID, identity.UID, p)
	if err != nil {
		return httpError(c, err)
	}

	if p == engagement.Positive && res.Toggle.Added {
		if post, err := h.postRepository.GetPostByID(ctx, postID); err == nil {
			h.notifier.Notify(ctx, models.NotificationLike, identity.UID, post.UserID, postID, "post",
				identity.Username+" liked your post")
		}
	}
	return c.JSON(http.StatusOK, res)
}
