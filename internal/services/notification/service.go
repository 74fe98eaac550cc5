// Package notification pushes messages to users' devices.
package notification

import (
	"context"
	"fmt"

	"relais/internal/models"
	"relais/internal/repositories"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Message is one push notification.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

type Notifier interface {
	// Notify delivers msg to the user's registered device. Users without a
	// device token are skipped.
	Notify(ctx context.Context, user *models.User, msg Message) error
}

// sender is the subset of *messaging.Client the notifier uses.
type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCM struct {
	client sender
	log    *zap.Logger
}

// NewFCM returns a notifier backed by Firebase Cloud Messaging, or a Noop
// when app is nil.
func NewFCM(ctx context.Context, app *firebase.App, log *zap.Logger) (Notifier, error) {
	if app == nil {
		return Noop{}, nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging client: %w", err)
	}
	return &FCM{client: client, log: log}, nil
}

func (n *FCM) Notify(ctx context.Context, user *models.User, msg Message) error {
	if user == nil || user.FCMToken == "" {
		return nil
	}

	id, err := n.client.Send(ctx, &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	})
	if err != nil {
		return fmt.Errorf("send fcm message: %w", err)
	}

	n.log.Debug("push sent", zap.Uint("user_id", user.ID), zap.String("message_id", id))
	return nil
}

// Noop drops every message.
type Noop struct{}

func (Noop) Notify(context.Context, *models.User, Message) error { return nil }

// NotifyUser loads the user and notifies them, logging instead of failing.
// Callers use it after their own work has committed.
func NotifyUser(ctx context.Context, n Notifier, users repositories.UserRepository, log *zap.Logger, userID uint, msg Message) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		log.Warn("notify: load user", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	if err := n.Notify(ctx, user, msg); err != nil {
		log.Warn("notify: deliver", zap.Uint("user_id", userID), zap.Error(err))
	}
}
