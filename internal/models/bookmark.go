package models

import "time"

// BookmarksCollection holds one document per user, keyed by the user id.
const BookmarksCollection = "bookmarks"

type BookmarkEntry struct {
	PostID       string    `json:"postId" firestore:"postId" bson:"postId"`
	BookmarkedAt time.Time `json:"bookmarkedAt" firestore:"bookmarkedAt" bson:"bookmarkedAt"`
	BookmarkedBy string    `json:"bookmarkedBy" firestore:"bookmarkedBy" bson:"bookmarkedBy"`
}

type BookmarkList struct {
	UserID    string          `json:"userId" firestore:"userId" bson:"userId"`
	Posts     []BookmarkEntry `json:"posts" firestore:"posts" bson:"posts"`
	CreatedAt time.Time       `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

// SetID is a no-op beyond keeping UserID aligned with the document key.
func (b *BookmarkList) SetID(id string) { b.UserID = id }

type BookmarkRequest struct {
	PostID string `json:"postId" validate:"required"`
}
