package repositories

import (
	"context"
	"slices"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/store"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPosts(ctx context.Context, userID string) ([]models.Post, error)
	UpdateContent(ctx context.Context, id, content string, now time.Time) error
	DeletePost(ctx context.Context, id string) error
	AddComment(ctx context.Context, postID, commentID string) error
	RemoveComment(ctx context.Context, postID, commentID string) error
	ClearComments(ctx context.Context, postID string) error
}

type StorePostRepository struct {
	store store.DocumentStore
}

func NewStorePostRepository(st store.DocumentStore) *StorePostRepository {
	return &StorePostRepository{store: st}
}

func (r *StorePostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	id, err := r.store.Add(ctx, models.PostsCollection, post)
	if err != nil {
		return apperror.Wrap(apperror.Internal, err, "failed to create post")
	}
	post.ID = id
	return nil
}

func (r *StorePostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := store.Load[models.Post](ctx, r.store, models.PostsCollection, id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found", "failed to load post")
	}
	return post, nil
}

// GetPosts returns posts newest first, restricted to userID when it is not empty.
func (r *StorePostRepository) GetPosts(ctx context.Context, userID string) ([]models.Post, error) {
	var (
		docs []store.Document
		err  error
	)
	if userID != "" {
		docs, err = r.store.Query(ctx, models.PostsCollection, "userId", userID)
	} else {
		docs, err = r.store.List(ctx, models.PostsCollection)
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to list posts")
	}

	posts, err := store.DecodeAll[models.Post](docs)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to decode posts")
	}
	slices.SortStableFunc(posts, func(a, b models.Post) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return posts, nil
}

func (r *StorePostRepository) UpdateContent(ctx context.Context, id, content string, now time.Time) error {
	err := r.store.Update(ctx, models.PostsCollection, id, []store.Update{
		{Path: "content", Value: content},
		{Path: "updatedAt", Value: now},
	})
	if err != nil {
		return notFoundOr(err, "Post not found", "failed to update post")
	}
	return nil
}

func (r *StorePostRepository) DeletePost(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.PostsCollection, id); err != nil {
		return notFoundOr(err, "Post not found", "failed to delete post")
	}
	return nil
}

// AddComment records commentID on the post's comments list.
func (r *StorePostRepository) AddComment(ctx context.Context, postID, commentID string) error {
	err := r.store.Update(ctx, models.PostsCollection, postID, []store.Update{
		{Path: "comments", Value: store.ArrayUnion(commentID)},
	})
	if err != nil {
		return notFoundOr(err, "Post not found", "failed to link comment")
	}
	return nil
}

func (r *StorePostRepository) RemoveComment(ctx context.Context, postID, commentID string) error {
	err := r.store.Update(ctx, models.PostsCollection, postID, []store.Update{
		{Path: "comments", Value: store.ArrayRemove(commentID)},
	})
	if err != nil {
		return notFoundOr(err, "Post not found", "failed to unlink comment")
	}
	return nil
}

func (r *StorePostRepository) ClearComments(ctx context.Context, postID string) error {
	err := r.store.Update(ctx, models.PostsCollection, postID, []store.Update{
		{Path: "comments", Value: []string{}},
	})
	if err != nil {
		return notFoundOr(err, "Post not found", "failed to clear comments")
	}
	return nil
}
