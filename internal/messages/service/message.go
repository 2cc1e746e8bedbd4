package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"srida/internal/authz"
	messageserrors "srida/internal/messages/errors"
	"srida/internal/messages/repository"
	"srida/internal/messages/validator"
	usersvc "srida/internal/users/service"
	"srida/pkg/config"
	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
	"srida/pkg/model"
	"srida/pkg/query"
	"srida/pkg/sanitizer"
)

type MessageService interface {
	Send(ctx context.Context, id identity.Identity, req *model.MessageRequest) (*model.Message, error)
	GetByID(ctx context.Context, id identity.Identity, messageID string) (*model.Message, error)
	Inbox(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Message, int64, error)
	Sent(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Message, int64, error)
	Conversation(ctx context.Context, id identity.Identity, otherID string, page query.Page) ([]*model.Message, int64, error)
	UnreadCount(ctx context.Context, id identity.Identity) (int64, error)
}

type messageService struct {
	repo      repository.MessageRepository
	users     usersvc.UserService
	validator *validator.MessageValidator
	cfg       *config.Config
}

func NewMessageService(
	repo repository.MessageRepository,
	users usersvc.UserService,
	validator *validator.MessageValidator,
	cfg *config.Config,
) MessageService {
	return &messageService{
		repo:      repo,
		users:     users,
		validator: validator,
		cfg:       cfg,
	}
}

// Send creates a message in unread state. Any authenticated identity
// may message any other; there is no eligibility check between the
// two parties.
func (s *messageService) Send(ctx context.Context, id identity.Identity, req *model.MessageRequest) (*model.Message, error) {
	if err := authz.Authorize(id, authz.ActionSendMessage, nil); err != nil {
		return nil, err
	}

	req.Subject = sanitizer.TrimAndNormalize(req.Subject)
	req.Body = sanitizer.TrimAndNormalize(req.Body)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Message validation failed", "sender_id", id.UserID, "error", err)
		return nil, apperrors.Validation("Invalid message input", map[string]any{"error": err.Error()})
	}

	message := &model.Message{
		SenderID:   id.UserID,
		ReceiverID: req.ReceiverID,
		ServiceID:  req.ServiceID,
		BookingID:  req.BookingID,
		Subject:    req.Subject,
		Body:       req.Body,
		IsRead:     false,
	}

	if err := s.repo.Create(ctx, message); err != nil {
		s.cfg.Log.Error("Failed to create message", "sender_id", id.UserID, "error", err)
		return nil, apperrors.StoreUnavailable("create message", err)
	}

	s.cfg.Log.Info("Message sent",
		"id", message.ID,
		"sender_id", message.SenderID,
		"receiver_id", message.ReceiverID,
	)

	s.populate(ctx, []*model.Message{message})
	return message, nil
}

// GetByID fetches a single message. When the viewer is the receiver
// and the message is unread, the unread flag flips and read_at is
// stamped, exactly once; the sender viewing it mutates nothing.
func (s *messageService) GetByID(ctx context.Context, id identity.Identity, messageID string) (*model.Message, error) {
	message, err := s.find(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if err := authz.Authorize(id, authz.ActionReadMessage, authz.MessageResource{
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
	}); err != nil {
		return nil, err
	}

	if id.UserID == message.ReceiverID && !message.IsRead {
		readAt := time.Now().UTC().Truncate(time.Millisecond)
		flipped, err := s.repo.MarkRead(ctx, messageID, id.UserID, readAt)
		if err != nil {
			s.cfg.Log.Error("Failed to mark message read", "id", messageID, "error", err)
			return nil, apperrors.StoreUnavailable("mark message read", err)
		}
		if flipped {
			message.IsRead = true
			message.ReadAt = &readAt
		}
	}

	s.populate(ctx, []*model.Message{message})
	return message, nil
}

func (s *messageService) Inbox(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Message, int64, error) {
	filter := bson.M{"receiver_id": id.UserID}
	return s.list(ctx, filter, query.SortNewestFirst(), page)
}

func (s *messageService) Sent(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Message, int64, error) {
	filter := bson.M{"sender_id": id.UserID}
	return s.list(ctx, filter, query.SortNewestFirst(), page)
}

// Conversation merges both directions between the caller and the other
// party into one chronological thread. Listing never mutates
// read-state.
func (s *messageService) Conversation(ctx context.Context, id identity.Identity, otherID string, page query.Page) ([]*model.Message, int64, error) {
	if otherID == "" {
		return nil, 0, apperrors.InvalidInput("Conversation partner ID cannot be empty")
	}

	filter := bson.M{
		"$or": []bson.M{
			{"sender_id": id.UserID, "receiver_id": otherID},
			{"sender_id": otherID, "receiver_id": id.UserID},
		},
	}
	return s.list(ctx, filter, query.SortOldestFirst(), page)
}

func (s *messageService) UnreadCount(ctx context.Context, id identity.Identity) (int64, error) {
	count, err := s.repo.Count(ctx, bson.M{"receiver_id": id.UserID, "is_read": false})
	if err != nil {
		s.cfg.Log.Error("Failed to count unread messages", "receiver_id", id.UserID, "error", err)
		return 0, apperrors.StoreUnavailable("count unread messages", err)
	}
	return count, nil
}

func (s *messageService) find(ctx context.Context, messageID string) (*model.Message, error) {
	if messageID == "" {
		return nil, apperrors.InvalidInput("Message ID cannot be empty")
	}

	message, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, messageserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Message", messageID)
		}
		if errors.Is(err, messageserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid message ID format")
		}
		return nil, apperrors.StoreUnavailable("find message", err)
	}
	return message, nil
}

func (s *messageService) list(ctx context.Context, filter bson.M, sort bson.D, page query.Page) ([]*model.Message, int64, error) {
	var count int64
	var messages []*model.Message
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count messages", "error", errCount)
			errCount = apperrors.StoreUnavailable("count messages", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		messages, errFind = s.repo.FindAll(ctx, filter, sort, page)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list messages", "error", errFind)
			errFind = apperrors.StoreUnavailable("list messages", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.populate(ctx, messages)
	return messages, count, nil
}

func (s *messageService) populate(ctx context.Context, messages []*model.Message) {
	ids := make([]string, 0, len(messages)*2)
	for _, m := range messages {
		ids = append(ids, m.SenderID, m.ReceiverID)
	}

	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve message users", "error", err)
		return
	}
	for _, m := range messages {
		m.Sender = summaries[m.SenderID]
		m.Receiver = summaries[m.ReceiverID]
	}
}
