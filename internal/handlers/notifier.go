package handlers

import (
	"context"

	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// Notifier records activity notifications. A nil Notifier drops them.
type Notifier struct {
	repo repositories.NotificationRepository
	log  logrus.FieldLogger
}

func NewNotifier(repo repositories.NotificationRepository, log logrus.FieldLogger) *Notifier {
	return &Notifier{repo: repo, log: log}
}

// Notify stores a notification for recipientID. Self-actions are skipped and
// failures are logged without failing the caller.
func (n *Notifier) Notify(ctx context.Context, kind, actorID, recipientID, targetID, targetType, message string) {
	if n == nil || actorID == recipientID || recipientID == "" {
		return
	}
	notification := &models.Notification{
		Type:        kind,
		ActorID:     actorID,
		RecipientID: recipientID,
		TargetID:    targetID,
		TargetType:  targetType,
		Message:     message,
	}
	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"type":         kind,
			"actor_id":     actorID,
			"recipient_id": recipientID,
		}).Warn("failed to create notification")
	}
}
