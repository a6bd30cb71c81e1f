package repositories

import (
	"context"
	"slices"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/store"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetComments(ctx context.Context) ([]models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateText(ctx context.Context, id, text string, now time.Time) error
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByPostID(ctx context.Context, postID string) (int, error)
}

type StoreCommentRepository struct {
	store store.DocumentStore
}

func NewStoreCommentRepository(st store.DocumentStore) *StoreCommentRepository {
	return &StoreCommentRepository{store: st}
}

func (r *StoreCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	id, err := r.store.Add(ctx, models.CommentsCollection, comment)
	if err != nil {
		return apperror.Wrap(apperror.Internal, err, "failed to create comment")
	}
	comment.ID = id
	return nil
}

func (r *StoreCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := store.Load[models.Comment](ctx, r.store, models.CommentsCollection, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found", "failed to load comment")
	}
	return comment, nil
}

func (r *StoreCommentRepository) GetComments(ctx context.Context) ([]models.Comment, error) {
	docs, err := r.store.List(ctx, models.CommentsCollection)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to list comments")
	}
	return decodeComments(docs)
}

// GetCommentsByPostID returns a post's comments oldest first.
func (r *StoreCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	docs, err := r.store.Query(ctx, models.CommentsCollection, "postId", postID)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to query comments")
	}
	return decodeComments(docs)
}

func (r *StoreCommentRepository) UpdateText(ctx context.Context, id, text string, now time.Time) error {
	err := r.store.Update(ctx, models.CommentsCollection, id, []store.Update{
		{Path: "text", Value: text},
		{Path: "updatedAt", Value: now},
	})
	if err != nil {
		return notFoundOr(err, "Comment not found", "failed to update comment")
	}
	return nil
}

func (r *StoreCommentRepository) DeleteComment(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CommentsCollection, id); err != nil {
		return notFoundOr(err, "Comment not found", "failed to delete comment")
	}
	return nil
}

// DeleteCommentsByPostID removes every comment of postID in one batch and reports how many.
func (r *StoreCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID string) (int, error) {
	docs, err := r.store.Query(ctx, models.CommentsCollection, "postId", postID)
	if err != nil {
		return 0, apperror.Wrap(apperror.Internal, err, "failed to query comments")
	}
	if len(docs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID()
	}
	if err := r.store.BatchDelete(ctx, models.CommentsCollection, ids); err != nil {
		return 0, apperror.Wrap(apperror.Internal, err, "failed to delete comments")
	}
	return len(ids), nil
}

func decodeComments(docs []store.Document) ([]models.Comment, error) {
	comments, err := store.DecodeAll[models.Comment](docs)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to decode comments")
	}
	slices.SortStableFunc(comments, func(a, b models.Comment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return comments, nil
}
