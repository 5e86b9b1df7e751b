package server

import (
	"chelagram/internal/models"
	"chelagram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StartConversationRequest is the request body for starting a conversation.
type StartConversationRequest struct {
	RecipientID uint `json:"recipientId"`
}

// SendMessageRequest is the request body for sending a message.
type SendMessageRequest struct {
	ConversationID uint   `json:"conversationId"`
	Content        string `json:"content"`
}

// GetConversations handles GET /api/chat/conversations, most recently active
// first, each with a one-message preview.
func (s *Server) GetConversations(c *fiber.Ctx) error {
	conversations, err := s.chatService.GetConversations(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(conversations)
}

// GetConversationMessages handles GET /api/chat/conversations/:conversationId,
// oldest first within the requested window.
func (s *Server) GetConversationMessages(c *fiber.Ctx) error {
	conversationID, err := parseID(c, "conversationId")
	if err != nil {
		return err
	}

	page := parsePagination(c, 50)
	messages, err := s.chatService.GetMessages(c.UserContext(), currentUserID(c), conversationID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(messages)
}

// StartConversation handles POST /api/chat/start. Returns the existing
// two-party conversation when one already exists.
func (s *Server) StartConversation(c *fiber.Ctx) error {
	var req StartConversationRequest
	if err := c.BodyParser(&req); err != nil || req.RecipientID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A valid recipientId is required"))
	}

	conversation, err := s.chatService.StartConversation(c.UserContext(), currentUserID(c), req.RecipientID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(conversation)
}

// SendMessage handles POST /api/chat/messages.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil || req.ConversationID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A valid conversationId is required"))
	}

	message, err := s.chatService.SendMessage(c.UserContext(), service.SendMessageInput{
		UserID:         currentUserID(c),
		ConversationID: req.ConversationID,
		Content:        req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// DeleteConversation handles DELETE /api/chat/conversations/:conversationId.
// Deletes the conversation for both participants.
func (s *Server) DeleteConversation(c *fiber.Ctx) error {
	conversationID, err := parseID(c, "conversationId")
	if err != nil {
		return err
	}

	if err := s.chatService.DeleteConversation(c.UserContext(), currentUserID(c), conversationID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
