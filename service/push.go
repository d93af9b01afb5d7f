package service

import (
	"context"
	"encoding/json"
	"time"

	"mingle/models"
	"mingle/repository"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushService stores browser push subscriptions and sends best-effort
// notifications for social events. Delivery is fire and forget; a failed push
// never fails the operation that triggered it.
type PushService struct {
	subs       repository.SubscriptionRepository
	publicKey  string
	privateKey string
	subscriber string
}

// NewPushService returns a new PushService. With empty VAPID keys every send
// is a silent no-op.
func NewPushService(subs repository.SubscriptionRepository, publicKey, privateKey, subscriber string) *PushService {
	if subscriber == "" {
		subscriber = "mailto:admin@mingle.app"
	}
	return &PushService{
		subs:       subs,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
	}
}

// PublicKey returns the VAPID public key clients subscribe with.
func (s *PushService) PublicKey() string {
	return s.publicKey
}

// Subscribe upserts the user's push subscription.
func (s *PushService) Subscribe(ctx context.Context, userID primitive.ObjectID, sub webpush.Subscription) error {
	return s.subs.Upsert(ctx, repository.PushSubscription{
		UserID: userID,
		Sub:    sub,
	})
}

// NotifyNewFollower tells targetID that followerName started following them.
func (s *PushService) NotifyNewFollower(targetID primitive.ObjectID, followerName string) {
	if followerName == "" {
		followerName = "Someone"
	}
	s.send(targetID, followerName+" started following you", "Check out their profile")
}

// NotifyNewComment tells the post owner about a new comment.
func (s *PushService) NotifyNewComment(ownerID primitive.ObjectID, commenterName, postTitle string) {
	if commenterName == "" {
		commenterName = "Someone"
	}
	body := postTitle
	if len(body) > 100 {
		body = body[:100] + "..."
	}
	s.send(ownerID, commenterName+" commented on your post", body)
}

func (s *PushService) send(userID primitive.ObjectID, title, body string) {
	if s == nil || s.privateKey == "" {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("push notification panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sub, err := s.subs.GetByUser(ctx, userID)
		if err != nil {
			if !models.IsCode(err, models.CodeNotFound) {
				logrus.WithError(err).Warn("failed to load push subscription")
			}
			return
		}

		payload, err := json.Marshal(map[string]interface{}{
			"title":     title,
			"body":      body,
			"timestamp": time.Now().Unix(),
		})
		if err != nil {
			logrus.WithError(err).Warn("failed to marshal push payload")
			return
		}

		resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
			Subscriber:      s.subscriber,
			VAPIDPublicKey:  s.publicKey,
			VAPIDPrivateKey: s.privateKey,
			TTL:             30,
		})
		if err != nil {
			logrus.WithError(err).WithField("user", userID.Hex()).Warn("push send failed")
			if resp != nil && resp.StatusCode == 410 {
				if delErr := s.subs.DeleteByUser(ctx, userID); delErr != nil {
					logrus.WithError(delErr).Warn("failed to delete expired push subscription")
				}
			}
			return
		}
		resp.Body.Close()
	}()
}
