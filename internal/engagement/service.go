package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/metrics"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/store"
	"github.com/sirupsen/logrus"
)

// Mode selects how multi-step operations reach the store.
type Mode string

const (
	// ModeFast issues the reads and the resulting atomic field transforms as
	// independent calls. likedBy, dislikedBy, upvotedBy, downvotedBy, following
	// and followers keep each id at most once, but likeCount is derived from the
	// pre-read state: two concurrent first likes can leave likeCount == 2 with a
	// single entry in likedBy. The two halves of a follow edge can also drift.
	// Bookmark mutations ignore the mode and always run in a transaction.
	ModeFast Mode = "fast"
	// ModeTransactional runs each operation's reads and writes in one store transaction.
	ModeTransactional Mode = "transactional"
)

// ParseMode validates a configured consistency mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFast, ModeTransactional:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown consistency mode %q", s)
}

type Service struct {
	store   store.DocumentStore
	mode    Mode
	now     func() time.Time
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLogger(log logrus.FieldLogger) Option { return func(s *Service) { s.log = log } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(st store.DocumentStore, mode Mode, opts ...Option) *Service {
	s := &Service{
		store: st,
		mode:  mode,
		now:   time.Now,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Mode() Mode { return s.mode }

func (s *Service) run(ctx context.Context, fn store.TxFunc) error {
	if s.mode == ModeTransactional {
		return s.store.RunTransaction(ctx, fn)
	}
	return fn(ctx, s.store)
}

// ReactToPost toggles a like (Positive) or dislike (Negative) by userID on a post.
func (s *Service) ReactToPost(ctx context.Context, postID, userID string, p Polarity) (LikeResult, error) {
	var res LikeResult
	err := s.run(ctx, func(ctx context.Context, rw store.ReadWriter) error {
		post, err := store.Load[models.Post](ctx, rw, models.PostsCollection, postID)
		if err != nil {
			return loadError(err, "Post not found")
		}
		res = ToggleLike(post.Likes, userID, p)

		primary, opposite := "likes.likedBy", "likes.dislikedBy"
		if p == Negative {
			primary, opposite = opposite, primary
		}
		updates := toggleUpdates(res.Toggle, primary, opposite, userID)
		if delta := res.CountDelta(p); delta != 0 {
			updates = append(updates, store.Update{Path: "likes.likeCount", Value: store.Increment(int64(delta))})
		}
		return writeError(rw.Update(ctx, models.PostsCollection, postID, updates))
	})
	if err != nil {
		return LikeResult{}, err
	}

	name := "like"
	if p == Negative {
		name = "dislike"
	}
	s.metrics.ObserveVote("post", name, outcome(res.Toggle))
	s.log.WithFields(logrus.Fields{"post_id": postID, "user_id": userID, "polarity": name}).Debug(res.Message)
	return res, nil
}

// VoteOnComment toggles an upvote (Positive) or downvote (Negative) by userID on a comment.
func (s *Service) VoteOnComment(ctx context.Context, commentID, userID string, p Polarity) (VoteResult, error) {
	var res VoteResult
	err := s.run(ctx, func(ctx context.Context, rw store.ReadWriter) error {
		comment, err := store.Load[models.Comment](ctx, rw, models.CommentsCollection, commentID)
		if err != nil {
			return loadError(err, "Comment not found")
		}
		res = ToggleVote(comment.Votes, userID, p)

		primary, opposite := "votes.upvotedBy", "votes.downvotedBy"
		if p == Negative {
			primary, opposite = opposite, primary
		}
		return writeError(rw.Update(ctx, models.CommentsCollection, commentID, toggleUpdates(res.Toggle, primary, opposite, userID)))
	})
	if err != nil {
		return VoteResult{}, err
	}

	name := "upvote"
	if p == Negative {
		name = "downvote"
	}
	s.metrics.ObserveVote("comment", name, outcome(res.Toggle))
	s.log.WithFields(logrus.Fields{"comment_id": commentID, "user_id": userID, "polarity": name}).Debug(res.Message)
	return res, nil
}

// Follow makes followerID follow targetID.
func (s *Service) Follow(ctx context.Context, followerID, targetID string) (FollowResult, error) {
	res, err := s.edge(ctx, followerID, targetID, true)
	s.metrics.ObserveFollow("follow", err)
	return res, err
}

// Unfollow removes the edge followerID -> targetID.
func (s *Service) Unfollow(ctx context.Context, followerID, targetID string) (FollowResult, error) {
	res, err := s.edge(ctx, followerID, targetID, false)
	s.metrics.ObserveFollow("unfollow", err)
	return res, err
}

func (s *Service) edge(ctx context.Context, followerID, targetID string, follow bool) (FollowResult, error) {
	if followerID == targetID {
		if follow {
			return FollowResult{}, apperror.New(apperror.InvalidOperation, "You cannot follow yourself")
		}
		return FollowResult{}, apperror.New(apperror.InvalidOperation, "You cannot unfollow yourself")
	}

	var res FollowResult
	err := s.run(ctx, func(ctx context.Context, rw store.ReadWriter) error {
		follower, err := store.Load[models.User](ctx, rw, models.UsersCollection, followerID)
		if err != nil {
			return loadError(err, "User not found")
		}
		target, err := store.Load[models.User](ctx, rw, models.UsersCollection, targetID)
		if err != nil {
			return loadError(err, "Target user not found")
		}

		transform := store.ArrayUnion
		if follow {
			res, err = Follow(follower, target)
		} else {
			res, err = Unfollow(follower, target)
			transform = store.ArrayRemove
		}
		if err != nil {
			return err
		}

		now := s.now()
		// Two independent document writes; only ModeTransactional makes them atomic together.
		if err := rw.Update(ctx, models.UsersCollection, followerID, []store.Update{
			{Path: "following", Value: transform(targetID)},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return writeError(err)
		}
		return writeError(rw.Update(ctx, models.UsersCollection, targetID, []store.Update{
			{Path: "followers", Value: transform(followerID)},
			{Path: "updatedAt", Value: now},
		}))
	})
	if err != nil {
		return FollowResult{}, err
	}

	s.log.WithFields(logrus.Fields{"follower_id": followerID, "target_id": targetID}).Debug(res.Message)
	return res, nil
}

// Bookmarks returns userID's bookmark list, empty when none exists.
func (s *Service) Bookmarks(ctx context.Context, userID string) (*models.BookmarkList, error) {
	list, err := store.Load[models.BookmarkList](ctx, s.store, models.BookmarksCollection, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.BookmarkList{UserID: userID, Posts: []models.BookmarkEntry{}}, nil
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to load bookmarks")
	}
	return list, nil
}

// AllBookmarks returns every user's bookmark entries keyed by user id.
func (s *Service) AllBookmarks(ctx context.Context) (map[string][]models.BookmarkEntry, error) {
	docs, err := s.store.List(ctx, models.BookmarksCollection)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to list bookmarks")
	}
	lists, err := store.DecodeAll[models.BookmarkList](docs)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "failed to decode bookmarks")
	}
	out := make(map[string][]models.BookmarkEntry, len(lists))
	for _, l := range lists {
		if l.Posts == nil {
			l.Posts = []models.BookmarkEntry{}
		}
		out[l.UserID] = l.Posts
	}
	return out, nil
}

// AddBookmark bookmarks postID for userID, creating the bookmark document on first use.
// The duplicate check and the write share one transaction in every mode, so a
// post is listed at most once.
func (s *Service) AddBookmark(ctx context.Context, userID, postID string) (*models.BookmarkList, error) {
	var list *models.BookmarkList
	err := s.store.RunTransaction(ctx, func(ctx context.Context, rw store.ReadWriter) error {
		if _, err := rw.Get(ctx, models.PostsCollection, postID); err != nil {
			return loadError(err, "Post not found")
		}
		existing, err := store.Load[models.BookmarkList](ctx, rw, models.BookmarksCollection, userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return loadError(err, "")
		}
		hasUser, err := exists(ctx, rw, models.UsersCollection, userID)
		if err != nil {
			return err
		}

		now := s.now()
		entry := models.BookmarkEntry{PostID: postID, BookmarkedAt: now, BookmarkedBy: userID}
		if existing == nil {
			list = &models.BookmarkList{UserID: userID, Posts: []models.BookmarkEntry{entry}, CreatedAt: now, UpdatedAt: now}
			if err := rw.Set(ctx, models.BookmarksCollection, userID, list); err != nil {
				return writeError(err)
			}
		} else {
			posts, err := AddBookmark(existing.Posts, entry)
			if err != nil {
				return err
			}
			if err := rw.Update(ctx, models.BookmarksCollection, userID, []store.Update{
				{Path: "posts", Value: store.ArrayUnion(entry)},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return writeError(err)
			}
			existing.Posts, existing.UpdatedAt = posts, now
			list = existing
		}

		if !hasUser {
			return nil
		}
		return writeError(rw.Update(ctx, models.UsersCollection, userID, []store.Update{
			{Path: "bookmarks", Value: store.ArrayUnion(postID)},
		}))
	})
	s.metrics.ObserveBookmark("add", err)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "post_id": postID}).Debug("Post bookmarked successfully")
	return list, nil
}

// RemoveBookmark removes postID from userID's bookmarks. The filtered list replaces
// the stored one inside a transaction so concurrent adds are not dropped.
func (s *Service) RemoveBookmark(ctx context.Context, userID, postID string) (*models.BookmarkList, error) {
	var list *models.BookmarkList
	err := s.store.RunTransaction(ctx, func(ctx context.Context, rw store.ReadWriter) error {
		existing, err := store.Load[models.BookmarkList](ctx, rw, models.BookmarksCollection, userID)
		if err != nil {
			return loadError(err, "No bookmarks found for this user")
		}
		hasUser, err := exists(ctx, rw, models.UsersCollection, userID)
		if err != nil {
			return err
		}

		posts, err := RemoveBookmark(existing.Posts, postID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := rw.Update(ctx, models.BookmarksCollection, userID, []store.Update{
			{Path: "posts", Value: posts},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return writeError(err)
		}
		existing.Posts, existing.UpdatedAt = posts, now
		list = existing

		if !hasUser {
			return nil
		}
		return writeError(rw.Update(ctx, models.UsersCollection, userID, []store.Update{
			{Path: "bookmarks", Value: store.ArrayRemove(postID)},
		}))
	})
	s.metrics.ObserveBookmark("remove", err)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "post_id": postID}).Debug("Post removed from bookmarks")
	return list, nil
}

// ForgetPost removes postID from every bookmark list and from the owners'
// bookmarks mirror. It returns the number of lists that changed.
func (s *Service) ForgetPost(ctx context.Context, postID string) (int, error) {
	docs, err := s.store.List(ctx, models.BookmarksCollection)
	if err != nil {
		return 0, apperror.Wrap(apperror.Internal, err, "failed to list bookmarks")
	}
	lists, err := store.DecodeAll[models.BookmarkList](docs)
	if err != nil {
		return 0, apperror.Wrap(apperror.Internal, err, "failed to decode bookmarks")
	}

	pruned := 0
	for _, l := range lists {
		if !bookmarked(l.Posts, postID) {
			continue
		}
		userID := l.UserID
		changed := false
		err := s.store.RunTransaction(ctx, func(ctx context.Context, rw store.ReadWriter) error {
			changed = false
			current, err := store.Load[models.BookmarkList](ctx, rw, models.BookmarksCollection, userID)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return loadError(err, "")
			}
			if !bookmarked(current.Posts, postID) {
				return nil
			}
			hasUser, err := exists(ctx, rw, models.UsersCollection, userID)
			if err != nil {
				return err
			}
			posts, err := RemoveBookmark(current.Posts, postID)
			if err != nil {
				return err
			}
			if err := rw.Update(ctx, models.BookmarksCollection, userID, []store.Update{
				{Path: "posts", Value: posts},
				{Path: "updatedAt", Value: s.now()},
			}); err != nil {
				return writeError(err)
			}
			changed = true
			if !hasUser {
				return nil
			}
			return writeError(rw.Update(ctx, models.UsersCollection, userID, []store.Update{
				{Path: "bookmarks", Value: store.ArrayRemove(postID)},
			}))
		})
		s.metrics.ObserveBookmark("forget", err)
		if err != nil {
			return pruned, err
		}
		if changed {
			pruned++
		}
	}
	if pruned > 0 {
		s.log.WithFields(logrus.Fields{"post_id": postID, "lists": pruned}).Debug("Post removed from bookmarks of all users")
	}
	return pruned, nil
}

func bookmarked(posts []models.BookmarkEntry, postID string) bool {
	for _, p := range posts {
		if p.PostID == postID {
			return true
		}
	}
	return false
}

func toggleUpdates(t Toggle, primary, opposite, userID string) []store.Update {
	var updates []store.Update
	switch {
	case t.Removed:
		updates = append(updates, store.Update{Path: primary, Value: store.ArrayRemove(userID)})
	case t.Added:
		updates = append(updates, store.Update{Path: primary, Value: store.ArrayUnion(userID)})
	}
	if t.RemovedOpposite {
		updates = append(updates, store.Update{Path: opposite, Value: store.ArrayRemove(userID)})
	}
	return updates
}

func outcome(t Toggle) string {
	switch {
	case t.Removed:
		return "removed"
	case t.RemovedOpposite:
		return "switched"
	}
	return "added"
}

func exists(ctx context.Context, r store.Reader, collection, id string) (bool, error) {
	_, err := r.Get(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Wrap(apperror.Internal, err, "failed to load document")
	}
	return true, nil
}

func loadError(err error, notFound string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.New(apperror.NotFound, notFound)
	}
	return apperror.Wrap(apperror.Internal, err, "failed to load document")
}

func writeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperror.New(apperror.NotFound, "Document no longer exists")
	}
	return apperror.Wrap(apperror.Internal, err, "failed to update document")
}
