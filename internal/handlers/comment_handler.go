package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/engagement"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	engagement        *engagement.Service
	notifier          *Notifier
	now               func() time.Time
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, svc *engagement.Service, notifier *Notifier) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		engagement:        svc,
		notifier:          notifier,
		now:               time.Now,
	}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/comments", h.GetComments)
	g.POST("/comments", h.CreateComment)
	g.GET("/comments/post/:postId", h.GetCommentsByPost)
	g.GET("/comments/:id", h.GetComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/upvote", h.Upvote)
	g.POST("/comments/:id/downvote", h.Downvote)
}

func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.commentRepository.GetComments(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// GetCommentsByPost returns all comments for a post
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) GetComment(c echo.Context) error {
	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, comment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, req.PostID)
	if err != nil {
		return httpError(c, err)
	}

	comment := models.NewComment(identity.Author(), req.PostID, req.Text, h.now())
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return httpError(c, err)
	}
	if err := h.postRepository.AddComment(ctx, req.PostID, comment.ID); err != nil {
		return httpError(c, err)
	}

	h.notifier.Notify(ctx, models.NotificationComment, identity.UID, post.UserID, post.ID, "post",
		identity.Username+" commented on your post")

	return c.JSON(http.StatusCreated, comment)
}

// UpdateComment updates a comment (owner only)
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	comment, err := h.ownedComment(c, identity.UID, "update")
	if err != nil {
		return err
	}

	now := h.now()
	if err := h.commentRepository.UpdateText(ctx, comment.ID, req.Text, now); err != nil {
		return httpError(c, err)
	}
	comment.Text = req.Text
	comment.UpdatedAt = now

	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment (owner only)
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	comment, err := h.ownedComment(c, identity.UID, "delete")
	if err != nil {
		return err
	}

	if err := h.commentRepository.DeleteComment(ctx, comment.ID); err != nil {
		return httpError(c, err)
	}
	// The post may already be gone; its comments list then needs no cleanup.
	if err := h.postRepository.RemoveComment(ctx, comment.PostID, comment.ID); err != nil && !apperror.Is(err, apperror.NotFound) {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully"})
}

func (h *CommentHandler) Upvote(c echo.Context) error {
	return h.vote(c, engagement.Positive)
}

func (h *CommentHandler) Downvote(c echo.Context) error {
	return h.vote(c, engagement.Negative)
}

func (h *CommentHandler) vote(c echo.Context, p engagement.Polarity) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	res, err := h.engagement.VoteOnComment(c.Request().Context(), c.Param("id"), identity.UID, p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) ownedComment(c echo.Context, userID, action string) (*models.Comment, error) {
	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, httpError(c, err)
	}
	if comment.UserID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You are not authorized to "+action+" this comment")
	}
	return comment, nil
}
