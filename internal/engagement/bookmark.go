package engagement

import (
	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/models"
)

// AddBookmark appends entry unless its post is already bookmarked.
func AddBookmark(posts []models.BookmarkEntry, entry models.BookmarkEntry) ([]models.BookmarkEntry, error) {
	for _, p := range posts {
		if p.PostID == entry.PostID {
			return nil, apperror.New(apperror.Conflict, "Post already bookmarked")
		}
	}
	out := make([]models.BookmarkEntry, 0, len(posts)+1)
	out = append(out, posts...)
	return append(out, entry), nil
}

// RemoveBookmark filters postID out of posts. An empty list is NotFound; a postID
// absent from a non-empty list leaves it unchanged.
func RemoveBookmark(posts []models.BookmarkEntry, postID string) ([]models.BookmarkEntry, error) {
	if len(posts) == 0 {
		return nil, apperror.New(apperror.NotFound, "No bookmarks found for this user")
	}
	out := make([]models.BookmarkEntry, 0, len(posts))
	for _, p := range posts {
		if p.PostID != postID {
			out = append(out, p)
		}
	}
	return out, nil
}
