package service

import (
	"context"
	"encoding/json"
	"strings"

	"chelagram/internal/middleware"
	"chelagram/internal/models"
	"chelagram/internal/notifications"
	"chelagram/internal/repository"
	"chelagram/internal/validation"
)

// ChatService provides direct-message conversation business logic.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	notifier *notifications.Notifier
}

// SendMessageInput is the input for sending a message.
type SendMessageInput struct {
	UserID         uint
	ConversationID uint
	Content        string
}

// NewChatService returns a new ChatService.
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	notifier *notifications.Notifier,
) *ChatService {
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo, notifier: notifier}
}

func (s *ChatService) GetConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	return s.chatRepo.GetUserConversations(ctx, userID)
}

// GetMessages returns a conversation's messages for a participant.
func (s *ChatService) GetMessages(ctx context.Context, userID, conversationID uint, limit, offset int) ([]*models.Message, error) {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return s.chatRepo.GetMessages(ctx, conversationID, limit, offset)
}

// StartConversation finds the existing two-party conversation with the
// recipient or creates one.
func (s *ChatService) StartConversation(ctx context.Context, userID, recipientID uint) (*models.Conversation, error) {
	if recipientID == userID {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	existing, err := s.chatRepo.FindDirectConversation(ctx, userID, recipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.chatRepo.CreateConversation(ctx, userID, recipientID)
}

// SendMessage persists the message and notifies the other participants.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if err := validation.ValidateMessageContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requireParticipant(ctx, in.ConversationID, in.UserID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.UserID,
		Content:        content,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.notifyParticipants(ctx, msg)
	return msg, nil
}

// DeleteConversation removes the conversation and everything in it. Only a
// participant may delete.
func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID uint) error {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.chatRepo.DeleteConversation(ctx, conversationID)
}

func (s *ChatService) requireParticipant(ctx context.Context, conversationID, userID uint) error {
	ok, err := s.chatRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewForbiddenError("You are not a participant in this conversation")
	}
	return nil
}

// notifyParticipants fans a message_new event out to the other participants'
// user channels. Delivery is best effort; REST remains the source of truth.
func (s *ChatService) notifyParticipants(ctx context.Context, msg *models.Message) {
	if s.notifier == nil {
		return
	}
	conv, err := s.chatRepo.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "chat: load conversation for notify failed", "error", err)
		return
	}
	payload, err := json.Marshal(notifications.Event{
		Type:           notifications.EventMessageNew,
		ConversationID: msg.ConversationID,
		Message:        msg,
	})
	if err != nil {
		return
	}
	for _, p := range conv.Participants {
		if p.ID == msg.SenderID {
			continue
		}
		if err := s.notifier.PublishUser(ctx, p.ID, string(payload)); err != nil {
			middleware.Logger.WarnContext(ctx, "chat: publish notify failed", "user_id", p.ID, "error", err)
		}
	}
}
