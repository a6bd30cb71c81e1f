package engagement

import (
	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/models"
)

// FollowResult carries both endpoints' arrays after a follow or unfollow.
type FollowResult struct {
	Message   string   `json:"message"`
	Following []string `json:"following"`
	Followers []string `json:"followers"`
}

// Follow adds the edge follower -> target. follower.Following and target.Followers
// of the returned result are the next states of the two documents.
func Follow(follower, target *models.User) (FollowResult, error) {
	if follower.ID == target.ID {
		return FollowResult{}, apperror.New(apperror.InvalidOperation, "You cannot follow yourself")
	}
	if contains(follower.Following, target.ID) {
		return FollowResult{}, apperror.New(apperror.Conflict, "Already following this user")
	}
	following := clone(follower.Following)
	following = append(following, target.ID)
	followers := clone(target.Followers)
	if !contains(followers, follower.ID) {
		followers = append(followers, follower.ID)
	}
	return FollowResult{Message: "User followed successfully", Following: following, Followers: followers}, nil
}

// Unfollow removes the edge follower -> target.
func Unfollow(follower, target *models.User) (FollowResult, error) {
	if follower.ID == target.ID {
		return FollowResult{}, apperror.New(apperror.InvalidOperation, "You cannot unfollow yourself")
	}
	if !contains(follower.Following, target.ID) {
		return FollowResult{}, apperror.New(apperror.Conflict, "You are not following this user")
	}
	return FollowResult{
		Message:   "User unfollowed successfully",
		Following: without(follower.Following, target.ID),
		Followers: without(target.Followers, follower.ID),
	}, nil
}
