package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/streamnest/streamnest/internal/domain/entity"
	repo "github.com/streamnest/streamnest/internal/domain/repository"
	"github.com/streamnest/streamnest/pkg/helpers"
)

// ChatTopic is the Redis pub/sub topic messages for a receiver fan out on.
func ChatTopic(receiverID string) string {
	return "chat:user:" + receiverID
}

// ChatJob is the queue payload handed to the chat worker.
type ChatJob struct {
	MessageID  string `json:"message_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

// ChatService persists chat messages and hands them to the fan-out pipeline.
// Persistence is the source of truth; fan-out is best-effort at-least-once to
// whoever is subscribed when the worker publishes.
type ChatService struct {
	Users    repo.UserRepository
	Messages repo.MessageRepository
	Pub      *helpers.RabbitPublisher
	Logger   *logrus.Logger
}

func (s *ChatService) Send(ctx context.Context, senderID, receiverID, body string) (*entity.Message, error) {
	if _, err := s.Users.GetByID(ctx, receiverID); err != nil {
		return nil, ErrUserNotFound
	}
	m := &entity.Message{SenderID: senderID, ReceiverID: receiverID, Body: body}
	if err := s.Messages.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.Pub != nil {
		job := ChatJob{
			MessageID:  m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Body:       m.Body,
			CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("message_id", m.ID).Warn("failed to enqueue chat message")
		}
	}
	return m, nil
}

func (s *ChatService) History(ctx context.Context, callerID, otherID string, limit int) ([]entity.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Messages.ListBetween(ctx, callerID, otherID, limit)
}
