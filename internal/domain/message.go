package domain

import (
	"fmt"
	"time"
)

var (
	// ErrMessageNotFound is returned when looking up a non-existent message.
	ErrMessageNotFound = fmt.Errorf("%w: message not found", ErrNotFound)
	// ErrEmptyMessage is returned when the message content is blank.
	ErrEmptyMessage = fmt.Errorf("%w: message content is empty", ErrValidation)
	// ErrSelfMessage is returned when a user addresses a message to themselves.
	ErrSelfMessage = fmt.Errorf("%w: cannot message yourself", ErrValidation)
	// ErrNotRecipient is returned when someone other than the recipient marks a message read.
	ErrNotRecipient = fmt.Errorf("%w: not the recipient", ErrForbidden)
)

// Message is a direct message between two users. Only IsRead changes after
// creation, and only the recipient may change it.
type Message struct {
	ID                     int64     `json:"id"`
	FromUserID             int64     `json:"fromUserId"`
	ToUserID               int64     `json:"toUserId"`
	RelatedToApplicationID *int64    `json:"relatedToApplicationId"`
	Content                string    `json:"content"`
	IsRead                 bool      `json:"isRead"`
	SentAt                 time.Time `json:"sentAt"`
}

// PartnerOf returns the participant of the message that is not userID.
func (m Message) PartnerOf(userID int64) int64 {
	if m.FromUserID == userID {
		return m.ToUserID
	}

	return m.FromUserID
}

// Before orders messages by SentAt, falling back to creation order.
func (m Message) Before(other Message) bool {
	if !m.SentAt.Equal(other.SentAt) {
		return m.SentAt.Before(other.SentAt)
	}

	return m.ID < other.ID
}

// LatestMessage is the preview of the newest message in a conversation.
type LatestMessage struct {
	ID       int64     `json:"id"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
	IsRead   bool      `json:"isRead"`
	IsSender bool      `json:"isSender"`
}

// Conversation summarizes the messages exchanged with one partner.
type Conversation struct {
	PartnerID     int64          `json:"partnerId"`
	PartnerName   string         `json:"partnerName"`
	PartnerAvatar *string        `json:"partnerAvatar"`
	LatestMessage *LatestMessage `json:"latestMessage"`
	UnreadCount   int            `json:"unreadCount"`
}
