// Package engagement computes like/dislike, upvote/downvote, follow and bookmark
// state transitions and applies them to the document store.
package engagement

import "github.com/anonto42/socialgraph/backend/internal/models"

// Polarity selects which of the two mutually exclusive sets a vote targets.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

// Toggle describes how a vote changed the two membership sets.
type Toggle struct {
	Added           bool // actor joined the requested set
	Removed         bool // actor left the requested set (toggle-off)
	RemovedOpposite bool // actor left the opposing set when switching polarity
}

// toggle flips userID's membership in primary and enforces exclusion from opposite.
// Input slices are never modified.
func toggle(primary, opposite []string, userID string) ([]string, []string, Toggle) {
	if contains(primary, userID) {
		return without(primary, userID), clone(opposite), Toggle{Removed: true}
	}
	t := Toggle{Added: true}
	nextOpposite := clone(opposite)
	if contains(opposite, userID) {
		nextOpposite = without(opposite, userID)
		t.RemovedOpposite = true
	}
	return append(clone(primary), userID), nextOpposite, t
}

// LikeResult is the outcome of a like or dislike on a post.
type LikeResult struct {
	Likes   models.Likes `json:"likes"`
	Toggle  Toggle       `json:"-"`
	Message string       `json:"message"`
}

// CountDelta is the change applied to likeCount.
func (r LikeResult) CountDelta(p Polarity) int {
	switch {
	case p == Positive && r.Toggle.Added:
		return 1
	case p == Positive && r.Toggle.Removed:
		return -1
	case p == Negative && r.Toggle.RemovedOpposite:
		return -1
	}
	return 0
}

// ToggleLike applies a like (Positive) or dislike (Negative) by userID to likes.
// Switching from liked to disliked costs exactly one like.
func ToggleLike(likes models.Likes, userID string, p Polarity) LikeResult {
	var res LikeResult
	if p == Positive {
		likedBy, dislikedBy, t := toggle(likes.LikedBy, likes.DislikedBy, userID)
		res = LikeResult{Likes: models.Likes{LikedBy: likedBy, DislikedBy: dislikedBy}, Toggle: t}
		res.Message = message(t, "Like removed", "Post liked")
	} else {
		dislikedBy, likedBy, t := toggle(likes.DislikedBy, likes.LikedBy, userID)
		res = LikeResult{Likes: models.Likes{LikedBy: likedBy, DislikedBy: dislikedBy}, Toggle: t}
		res.Message = message(t, "Dislike removed", "Post disliked")
	}
	res.Likes.LikeCount = likes.LikeCount + res.CountDelta(p)
	return res
}

// VoteResult is the outcome of an upvote or downvote on a comment.
type VoteResult struct {
	Votes   models.Votes `json:"votes"`
	Toggle  Toggle       `json:"-"`
	Message string       `json:"message"`
}

// ToggleVote applies an upvote (Positive) or downvote (Negative) by userID to votes.
func ToggleVote(votes models.Votes, userID string, p Polarity) VoteResult {
	if p == Positive {
		up, down, t := toggle(votes.UpvotedBy, votes.DownvotedBy, userID)
		return VoteResult{
			Votes:   models.Votes{UpvotedBy: up, DownvotedBy: down},
			Toggle:  t,
			Message: message(t, "Upvote removed", "Upvoted successfully"),
		}
	}
	down, up, t := toggle(votes.DownvotedBy, votes.UpvotedBy, userID)
	return VoteResult{
		Votes:   models.Votes{UpvotedBy: up, DownvotedBy: down},
		Toggle:  t,
		Message: message(t, "Downvote removed", "Downvoted successfully"),
	}
}

func message(t Toggle, removed, added string) string {
	if t.Removed {
		return removed
	}
	return added
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func without(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func clone(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
