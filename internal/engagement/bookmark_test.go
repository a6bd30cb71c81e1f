package engagement

import (
	"testing"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/models"
)

func TestAddBookmarkRejectsDuplicate(t *testing.T) {
	entry := models.BookmarkEntry{PostID: "p1", BookmarkedAt: time.Unix(1, 0), BookmarkedBy: "u1"}

	posts, err := AddBookmark(nil, entry)
	if err != nil || len(posts) != 1 {
		t.Fatalf("AddBookmark = %v, %v", posts, err)
	}

	entry.BookmarkedAt = time.Unix(2, 0)
	if _, err := AddBookmark(posts, entry); !apperror.Is(err, apperror.Conflict) {
		t.Fatalf("duplicate AddBookmark = %v, want conflict", err)
	}
}

func TestRemoveBookmark(t *testing.T) {
	if _, err := RemoveBookmark(nil, "p1"); !apperror.Is(err, apperror.NotFound) {
		t.Fatalf("RemoveBookmark on empty = %v, want not found", err)
	}

	posts := []models.BookmarkEntry{{PostID: "p1"}, {PostID: "p2"}}
	got, err := RemoveBookmark(posts, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PostID != "p2" {
		t.Fatalf("RemoveBookmark = %+v", got)
	}

	got, err = RemoveBookmark(posts, "missing")
	if err != nil || len(got) != 2 {
		t.Fatalf("RemoveBookmark(missing) = %+v, %v", got, err)
	}
}
