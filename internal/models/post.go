package models

import "time"

const PostsCollection = "posts"

// Likes is the engagement sub-object of a post. LikeCount equals len(LikedBy) and
// a user id appears in at most one of LikedBy and DislikedBy.
type Likes struct {
	LikeCount  int      `json:"likeCount" firestore:"likeCount" bson:"likeCount"`
	LikedBy    []string `json:"likedBy" firestore:"likedBy" bson:"likedBy"`
	DislikedBy []string `json:"dislikedBy" firestore:"dislikedBy" bson:"dislikedBy"`
}

type Post struct {
	ID        string    `json:"id" firestore:"-" bson:"-"`
	Content   string    `json:"content" firestore:"content" bson:"content"`
	UserID    string    `json:"userId" firestore:"userId" bson:"userId"`
	Username  string    `json:"username" firestore:"username" bson:"username"`
	FirstName string    `json:"firstName" firestore:"firstName" bson:"firstName"`
	LastName  string    `json:"lastName" firestore:"lastName" bson:"lastName"`
	UserImage string    `json:"userImage" firestore:"userImage" bson:"userImage"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
	Likes     Likes     `json:"likes" firestore:"likes" bson:"likes"`
	Comments  []string  `json:"comments" firestore:"comments" bson:"comments"`
}

func (p *Post) SetID(id string) { p.ID = id }

// NewPost returns a post authored by author with empty engagement state.
func NewPost(author Author, content string, now time.Time) *Post {
	return &Post{
		Content:   content,
		UserID:    author.UserID,
		Username:  author.Username,
		FirstName: author.FirstName,
		LastName:  author.LastName,
		UserImage: author.UserImage,
		CreatedAt: now,
		UpdatedAt: now,
		Likes:     Likes{LikedBy: []string{}, DislikedBy: []string{}},
		Comments:  []string{},
	}
}

// Author is the denormalized author snapshot copied onto posts and comments.
type Author struct {
	UserID    string
	Username  string
	FirstName string
	LastName  string
	UserImage string
}

type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type UpdatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
