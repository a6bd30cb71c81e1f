package models

import "time"

const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     string    `json:"actorId" gorm:"size:128;index"`
	RecipientID string    `json:"recipientId" gorm:"size:128;index"`
	TargetID    string    `json:"targetId" gorm:"size:128"`
	TargetType  string    `json:"targetType" gorm:"size:20"` // post, comment, user
	Message     string    `json:"message"`
	IsRead      bool      `json:"isRead" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}
