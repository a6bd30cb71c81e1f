package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/store"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest, now time.Time) error
	GetSuggestions(ctx context.Context, viewerID string, limit int) ([]models.User, error)
}

// StoreUserRepository implements UserRepository over a DocumentStore
type StoreUserRepository struct {
	store store.DocumentStore
}

func NewStoreUserRepository(st store.DocumentStore) *StoreUserRepository {
	return &StoreUserRepository{store: st}
}

// CreateUser stores user under a generated id and assigns it to user.ID.
func (r *StoreUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	id, err := r.store.Add(ctx, models.UsersCollection, user)
	if err != nil {
		return apperror.Wrap(apperror.Internal, err, "failed to create user")
	}
	user.ID = id
	return nil
}

func (r *StoreUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := store.Load[models.User](ctx, r.store, models.UsersCollection, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "failed to load user")
	}
	return user, nil
}

// GetUserByEmail returns the first user registered with email.
func (r *StoreUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := r.store.Query(ctx, models.UsersCollection, "email", email)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to query users")
	}
	if len(docs) == 0 {
		return nil, apperror.New(apperror.NotFound, "User not found")
	}
	user, err := store.Decode[models.User](docs[0])
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to decode user")
	}
	return user, nil
}

func (r *StoreUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	docs, err := r.store.List(ctx, models.UsersCollection)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to list users")
	}
	users, err := store.DecodeAll[models.User](docs)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to decode users")
	}
	return users, nil
}

// UpdateUser writes only the profile fields present in req.
func (r *StoreUserRepository) UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest, now time.Time) error {
	updates := []store.Update{{Path: "updatedAt", Value: now}}
	for path, v := range map[string]*string{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"username":  req.Username,
		"userImage": req.UserImage,
		"bio":       req.Bio,
		"website":   req.Website,
	} {
		if v != nil {
			updates = append(updates, store.Update{Path: path, Value: *v})
		}
	}
	if err := r.store.Update(ctx, models.UsersCollection, id, updates); err != nil {
		return notFoundOr(err, "User not found", "failed to update user")
	}
	return nil
}

// GetSuggestions returns up to limit users that are neither viewerID nor followed by them.
func (r *StoreUserRepository) GetSuggestions(ctx context.Context, viewerID string, limit int) ([]models.User, error) {
	viewer, err := r.GetUserByID(ctx, viewerID)
	if err != nil && !apperror.Is(err, apperror.NotFound) {
		return nil, err
	}
	followed := map[string]bool{viewerID: true}
	if viewer != nil {
		for _, id := range viewer.Following {
			followed[id] = true
		}
	}

	users, err := r.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, limit)
	for _, u := range users {
		if len(out) == limit {
			break
		}
		if !followed[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.New(apperror.NotFound, notFound)
	}
	return apperror.Wrap(apperror.Internal, err, internal)
}
