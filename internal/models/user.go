package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// UsersCollection holds user documents keyed by store generated ids.
const UsersCollection = "users"

// DefaultUserImage is assigned at signup when the client sends none.
const DefaultUserImage = "https://encrypted-tbn0.gstatic.com/images?q=tbn:ANd9GcTA_e9lfWk1kqC3XIQD4snZ0OTa_sQKzpLFVQ&s"

type User struct {
	ID           string    `json:"id" firestore:"-" bson:"-"`
	Email        string    `json:"email" firestore:"email" bson:"email"`
	PasswordHash string    `json:"passwordHash,omitempty" firestore:"passwordHash" bson:"passwordHash"`
	FirstName    string    `json:"firstName" firestore:"firstName" bson:"firstName"`
	LastName     string    `json:"lastName" firestore:"lastName" bson:"lastName"`
	Username     string    `json:"username" firestore:"username" bson:"username"`
	UserImage    string    `json:"userImage" firestore:"userImage" bson:"userImage"`
	Bio          string    `json:"bio" firestore:"bio" bson:"bio"`
	Website      string    `json:"website" firestore:"website" bson:"website"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
	Following    []string  `json:"following" firestore:"following" bson:"following"`
	Followers    []string  `json:"followers" firestore:"followers" bson:"followers"`
	IsFollowed   bool      `json:"isFollowed" firestore:"isFollowed" bson:"isFollowed"`
	Bookmarks    []string  `json:"bookmarks" firestore:"bookmarks" bson:"bookmarks"`
}

func (u *User) SetID(id string) { u.ID = id }

// NewUser returns a user with every array field initialized.
func NewUser(now time.Time) *User {
	return &User{
		CreatedAt: now,
		UpdatedAt: now,
		Following: []string{},
		Followers: []string{},
		Bookmarks: []string{},
	}
}

// Public returns a copy safe to send to clients, with isFollowed computed for viewerID.
func (u User) Public(viewerID string) User {
	u.PasswordHash = ""
	u.IsFollowed = false
	for _, id := range u.Followers {
		if id == viewerID {
			u.IsFollowed = true
			break
		}
	}
	return u
}

// UserCompact is the author/actor summary embedded in other responses.
type UserCompact struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserImage string `json:"userImage"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, UserImage: u.UserImage}
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,min=1,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest creates a profile document without credentials.
type CreateUserRequest struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,min=1,max=50"`
	Username  string `json:"username" validate:"required,min=2,max=50"`
	UserImage string `json:"userImage,omitempty" validate:"omitempty,url"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=160"`
	Website   string `json:"website,omitempty" validate:"omitempty,url"`
}

// UpdateUserRequest lists the only profile fields a client may change.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	Username  *string `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	UserImage *string `json:"userImage,omitempty" validate:"omitempty,url"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=160"`
	Website   *string `json:"website,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
	UserImage string `json:"userImage,omitempty"`
	jwt.RegisteredClaims
}
