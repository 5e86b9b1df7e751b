package repository

import (
	"context"
	"errors"
	"time"

	"chelagram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for conversation and message data operations.
type ChatRepository interface {
	CreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error)
	FindDirectConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error)
	IsParticipant(ctx context.Context, convID, userID uint) (bool, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.Message, error)
	DeleteConversation(ctx context.Context, convID uint) error
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// CreateConversation makes a new two-party conversation, inserting both
// participant rows in the same transaction.
func (r *chatRepository) CreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		participants := []models.Participant{
			{ConversationID: conv.ID, UserID: userA},
			{ConversationID: conv.ID, UserID: userB},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&participants).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return r.GetConversation(ctx, conv.ID)
}

// FindDirectConversation locates an existing conversation whose participant
// set is exactly the two given users. Returns nil when none exists.
func (r *chatRepository) FindDirectConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	var convID uint
	err := r.db.WithContext(ctx).Raw(
		`SELECT p.conversation_id FROM participants p
		 WHERE p.user_id IN (?, ?)
		 GROUP BY p.conversation_id
		 HAVING COUNT(DISTINCT p.user_id) = 2
		    AND (SELECT COUNT(*) FROM participants p2 WHERE p2.conversation_id = p.conversation_id) = 2
		 LIMIT 1`,
		userA, userB,
	).Scan(&convID).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if convID == 0 {
		return nil, nil
	}
	return r.GetConversation(ctx, convID)
}

func (r *chatRepository) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(1)
		}).
		Preload("Messages.Sender").
		First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Conversation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

// GetUserConversations lists the user's conversations, most recent activity
// first, each carrying its newest message as a preview. A preload limit
// applies to the whole IN query rather than per conversation, so previews
// load separately via a window function.
func (r *chatRepository) GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN participants p ON conversations.id = p.conversation_id").
		Where("p.user_id = ?", userID).
		Preload("Participants").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachLastMessages(ctx, conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// attachLastMessages fills each conversation's Messages with its single
// newest message, sender included.
func (r *chatRepository) attachLastMessages(ctx context.Context, conversations []*models.Conversation) error {
	if len(conversations) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(conversations))
	byID := make(map[uint]*models.Conversation, len(conversations))
	for _, conv := range conversations {
		ids = append(ids, conv.ID)
		byID[conv.ID] = conv
	}

	var latest []models.Message
	err := r.db.WithContext(ctx).Raw(
		`SELECT * FROM (
		   SELECT messages.*, ROW_NUMBER() OVER (PARTITION BY conversation_id ORDER BY created_at DESC) AS rn
		   FROM messages WHERE conversation_id IN (?)
		 ) ranked WHERE rn = 1`,
		ids,
	).Scan(&latest).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	if len(latest) == 0 {
		return nil
	}

	senderIDs := make([]uint, 0, len(latest))
	seen := make(map[uint]bool, len(latest))
	for i := range latest {
		if !seen[latest[i].SenderID] {
			seen[latest[i].SenderID] = true
			senderIDs = append(senderIDs, latest[i].SenderID)
		}
	}
	var senders []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", senderIDs).Find(&senders).Error; err != nil {
		return models.NewInternalError(err)
	}
	senderByID := make(map[uint]*models.User, len(senders))
	for i := range senders {
		senderByID[senders[i].ID] = &senders[i]
	}

	for i := range latest {
		msg := latest[i]
		msg.Sender = senderByID[msg.SenderID]
		if conv, ok := byID[msg.ConversationID]; ok {
			conv.Messages = []models.Message{msg}
		}
	}
	return nil
}

func (r *chatRepository) IsParticipant(ctx context.Context, convID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// CreateMessage inserts the message and bumps the conversation's updated_at in
// one transaction so the conversation list stays ordered by latest activity.
func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Preload("Sender").First(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetMessages returns a page of messages in chronological order. The query
// fetches newest first so the page covers the latest messages, then reverses.
func (r *chatRepository) GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// DeleteConversation removes the conversation with its messages and
// participant rows in one transaction.
func (r *chatRepository) DeleteConversation(ctx context.Context, convID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", convID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", convID).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, convID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
