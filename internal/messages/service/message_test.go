package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	messageserrors "srida/internal/messages/errors"
	"srida/internal/messages/validator"
	usersvc "srida/internal/users/service"
	"srida/pkg/config"
	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
	"srida/pkg/logger"
	"srida/pkg/model"
	"srida/pkg/query"
)

const (
	senderID   = "507f1f77bcf86cd799439021"
	receiverID = "507f1f77bcf86cd799439022"
	strangerID = "507f1f77bcf86cd799439023"
	messageID  = "507f1f77bcf86cd799439024"
)

type mockMessageRepository struct {
	createFunc   func(ctx context.Context, message *model.Message) error
	findByIDFunc func(ctx context.Context, id string) (*model.Message, error)
	findAllFunc  func(ctx context.Context, filter bson.M, sort bson.D, page query.Page) ([]*model.Message, error)
	countFunc    func(ctx context.Context, filter bson.M) (int64, error)
	markReadFunc func(ctx context.Context, id string, receiverID string, readAt time.Time) (bool, error)
}

func (m *mockMessageRepository) Create(ctx context.Context, message *model.Message) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, message)
	}
	message.ID = messageID
	return nil
}

func (m *mockMessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, messageserrors.ErrNotFound
}

func (m *mockMessageRepository) FindAll(ctx context.Context, filter bson.M, sort bson.D, page query.Page) ([]*model.Message, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, sort, page)
	}
	return []*model.Message{}, nil
}

func (m *mockMessageRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockMessageRepository) MarkRead(ctx context.Context, id string, receiverID string, readAt time.Time) (bool, error) {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id, receiverID, readAt)
	}
	return true, nil
}

type mockUserService struct{}

func (m *mockUserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, Name: "Test User"}, nil
}

func (m *mockUserService) List(ctx context.Context, filter usersvc.ListFilter, page query.Page) ([]*model.User, int64, error) {
	return nil, 0, nil
}

func (m *mockUserService) SetVerified(ctx context.Context, id string, verified bool) error {
	return nil
}

func (m *mockUserService) Delete(ctx context.Context, id string) error { return nil }

func (m *mockUserService) Summaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error) {
	out := make(map[string]*model.UserSummary, len(ids))
	for _, id := range ids {
		out[id] = &model.UserSummary{ID: id, Name: "Test User"}
	}
	return out, nil
}

func newTestService(repo *mockMessageRepository) *messageService {
	cfg := &config.Config{
		Log:          logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Service: "test"}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return &messageService{
		repo:      repo,
		users:     &mockUserService{},
		validator: validator.NewMessageValidator(cfg.Log),
		cfg:       cfg,
	}
}

func unreadMessage() *model.Message {
	return &model.Message{
		ID:         messageID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Subject:    "Availability",
		Body:       "Is the venue free in June?",
		IsRead:     false,
	}
}

func TestSend_CreatesUnread(t *testing.T) {
	var created *model.Message
	repo := &mockMessageRepository{
		createFunc: func(ctx context.Context, message *model.Message) error {
			message.ID = messageID
			created = message
			return nil
		},
	}
	svc := newTestService(repo)

	message, err := svc.Send(context.Background(), identity.Identity{UserID: senderID, Role: identity.RoleBuyer}, &model.MessageRequest{
		ReceiverID: receiverID,
		Subject:    "  Availability  ",
		Body:       "Is the venue free in June?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected message to be persisted")
	}
	if message.IsRead {
		t.Error("expected new message to be unread")
	}
	if message.SenderID != senderID {
		t.Errorf("expected sender %s, got %s", senderID, message.SenderID)
	}
	if message.Subject != "Availability" {
		t.Errorf("expected trimmed subject, got %q", message.Subject)
	}
}

func TestSend_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockMessageRepository{})

	_, err := svc.Send(context.Background(), identity.Identity{UserID: senderID, Role: identity.RoleBuyer}, &model.MessageRequest{
		ReceiverID: receiverID,
		Subject:    "",
		Body:       "no subject",
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGetByID_ReceiverReadFlipsOnce(t *testing.T) {
	markReadCalls := 0
	repo := &mockMessageRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Message, error) {
			return unreadMessage(), nil
		},
		markReadFunc: func(ctx context.Context, id string, rid string, readAt time.Time) (bool, error) {
			markReadCalls++
			if rid != receiverID {
				t.Errorf("expected receiver %s, got %s", receiverID, rid)
			}
			return true, nil
		},
	}
	svc := newTestService(repo)

	message, err := svc.GetByID(context.Background(), identity.Identity{UserID: receiverID, Role: identity.RoleSeller}, messageID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !message.IsRead {
		t.Error("expected message marked read")
	}
	if message.ReadAt == nil {
		t.Error("expected read_at stamped")
	}
	if markReadCalls != 1 {
		t.Errorf("expected 1 mark-read call, got %d", markReadCalls)
	}

	// Already-read messages skip the conditional write entirely.
	readAt := time.Now().UTC()
	repo.findByIDFunc = func(ctx context.Context, id string) (*model.Message, error) {
		m := unreadMessage()
		m.IsRead = true
		m.ReadAt = &readAt
		return m, nil
	}
	if _, err := svc.GetByID(context.Background(), identity.Identity{UserID: receiverID, Role: identity.RoleSeller}, messageID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if markReadCalls != 1 {
		t.Errorf("expected no further mark-read calls, got %d", markReadCalls)
	}
}

func TestGetByID_SenderReadDoesNotFlip(t *testing.T) {
	repo := &mockMessageRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Message, error) {
			return unreadMessage(), nil
		},
		markReadFunc: func(ctx context.Context, id string, rid string, readAt time.Time) (bool, error) {
			t.Error("sender view must not mark read")
			return false, nil
		},
	}
	svc := newTestService(repo)

	message, err := svc.GetByID(context.Background(), identity.Identity{UserID: senderID, Role: identity.RoleBuyer}, messageID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if message.IsRead {
		t.Error("sender view must leave message unread")
	}
}

func TestGetByID_RaceLoserKeepsSnapshot(t *testing.T) {
	// Two concurrent receiver reads: the conditional write matches
	// only once. The loser must not stamp a second read time.
	repo := &mockMessageRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Message, error) {
			return unreadMessage(), nil
		},
		markReadFunc: func(ctx context.Context, id string, rid string, readAt time.Time) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(repo)

	message, err := svc.GetByID(context.Background(), identity.Identity{UserID: receiverID, Role: identity.RoleSeller}, messageID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if message.IsRead || message.ReadAt != nil {
		t.Error("losing read must not mutate the local snapshot")
	}
}

func TestGetByID_StrangerRejected(t *testing.T) {
	repo := &mockMessageRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Message, error) {
			return unreadMessage(), nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.GetByID(context.Background(), identity.Identity{UserID: strangerID, Role: identity.RoleBuyer}, messageID)
	if !apperrors.HasCode(err, apperrors.CodeNotParticipant) {
		t.Fatalf("expected NOT_PARTICIPANT, got %v", err)
	}
}

func TestConversation_BidirectionalAscending(t *testing.T) {
	var gotFilter bson.M
	var gotSort bson.D
	repo := &mockMessageRepository{
		findAllFunc: func(ctx context.Context, filter bson.M, sort bson.D, page query.Page) ([]*model.Message, error) {
			gotFilter = filter
			gotSort = sort
			return []*model.Message{unreadMessage()}, nil
		},
		countFunc: func(ctx context.Context, filter bson.M) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo)

	messages, count, err := svc.Conversation(context.Background(), identity.Identity{UserID: senderID, Role: identity.RoleBuyer}, receiverID, query.DefaultPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d (count %d)", len(messages), count)
	}

	or, ok := gotFilter["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("expected $or with both directions, got %v", gotFilter)
	}
	if or[0]["sender_id"] != senderID || or[0]["receiver_id"] != receiverID {
		t.Errorf("unexpected outbound leg: %v", or[0])
	}
	if or[1]["sender_id"] != receiverID || or[1]["receiver_id"] != senderID {
		t.Errorf("unexpected inbound leg: %v", or[1])
	}
	if len(gotSort) != 1 || gotSort[0].Key != "created_at" || gotSort[0].Value != 1 {
		t.Errorf("expected ascending created_at sort, got %v", gotSort)
	}
}

func TestConversation_EmptyPartnerRejected(t *testing.T) {
	svc := newTestService(&mockMessageRepository{})

	_, _, err := svc.Conversation(context.Background(), identity.Identity{UserID: senderID, Role: identity.RoleBuyer}, "", query.DefaultPage())
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestUnreadCount_ScopesToReceiver(t *testing.T) {
	repo := &mockMessageRepository{
		countFunc: func(ctx context.Context, filter bson.M) (int64, error) {
			if filter["receiver_id"] != receiverID || filter["is_read"] != false {
				t.Errorf("unexpected filter: %v", filter)
			}
			return 3, nil
		},
	}
	svc := newTestService(repo)

	count, err := svc.UnreadCount(context.Background(), identity.Identity{UserID: receiverID, Role: identity.RoleSeller})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}
}
