package models

import "time"

const CommentsCollection = "comments"

// Votes is the engagement sub-object of a comment.
type Votes struct {
	UpvotedBy   []string `json:"upvotedBy" firestore:"upvotedBy" bson:"upvotedBy"`
	DownvotedBy []string `json:"downvotedBy" firestore:"downvotedBy" bson:"downvotedBy"`
}

type Comment struct {
	ID        string    `json:"id" firestore:"-" bson:"-"`
	PostID    string    `json:"postId" firestore:"postId" bson:"postId"`
	UserID    string    `json:"userId" firestore:"userId" bson:"userId"`
	Username  string    `json:"username" firestore:"username" bson:"username"`
	FirstName string    `json:"firstName" firestore:"firstName" bson:"firstName"`
	LastName  string    `json:"lastName" firestore:"lastName" bson:"lastName"`
	Text      string    `json:"text" firestore:"text" bson:"text"`
	UserImage string    `json:"userImage" firestore:"userImage" bson:"userImage"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
	Votes     Votes     `json:"votes" firestore:"votes" bson:"votes"`
}

func (c *Comment) SetID(id string) { c.ID = id }

func NewComment(author Author, postID, text string, now time.Time) *Comment {
	return &Comment{
		PostID:    postID,
		UserID:    author.UserID,
		Username:  author.Username,
		FirstName: author.FirstName,
		LastName:  author.LastName,
		UserImage: author.UserImage,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
		Votes:     Votes{UpvotedBy: []string{}, DownvotedBy: []string{}},
	}
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID string `json:"postId" validate:"required"`
	Text   string `json:"text" validate:"required,min=1,max=1000"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}
