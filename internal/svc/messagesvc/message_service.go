package messagesvc

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	"github.com/mkrupp/jobboard/internal/repo/store"
	"github.com/mkrupp/jobboard/internal/svc/access"
)

// UnknownPartnerName is shown for partners without a profile.
const UnknownPartnerName = "Unknown"

// Repository is the part of the store the message service uses.
type Repository interface {
	store.UserRepository
	store.JobSeekerProfileRepository
	store.CompanyProfileRepository
	store.MessageRepository
	GetApplication(ctx context.Context, id int64) (*domain.Application, bool, error)
}

// MessageService implements direct messages between users.
type MessageService struct {
	Repo Repository
	Log  logging.Logger
	Now  func() time.Time
}

func NewMessageService(repo Repository) *MessageService {
	return &MessageService{
		Repo: repo,
		Log:  logging.GetLogger("svc.messagesvc.message_service"),
		Now:  time.Now,
	}
}

// SendMessage sends content from user to the user toUserID. If
// relatedApplicationID is set the application must exist.
func (s *MessageService) SendMessage(
	ctx context.Context,
	user *domain.User,
	toUserID int64,
	content string,
	relatedApplicationID *int64,
) (message *domain.Message, err error) {
	log := s.Log.With(logging.Group("message", "fromUserId", user.ID, "toUserId", toUserID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "send message failed", "error", err)
		} else {
			log.DebugContext(ctx, "message sent", "id", message.ID)
		}
	}()

	if toUserID == user.ID {
		return nil, domain.ErrSelfMessage
	}

	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyMessage
	}

	if _, ok, err := s.Repo.GetUser(ctx, toUserID); err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	} else if !ok {
		return nil, domain.ErrUserNotFound
	}

	if relatedApplicationID != nil {
		if _, ok, err := s.Repo.GetApplication(ctx, *relatedApplicationID); err != nil {
			return nil, fmt.Errorf("get application: %w", err)
		} else if !ok {
			return nil, domain.ErrApplicationNotFound
		}
	}

	message, err = s.Repo.CreateMessage(ctx, domain.Message{
		FromUserID:             user.ID,
		ToUserID:               toUserID,
		RelatedToApplicationID: relatedApplicationID,
		Content:                content,
		IsRead:                 false,
		SentAt:                 s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	return message, nil
}

// ListConversations returns one entry per partner user has exchanged
// messages with, newest conversation first.
func (s *MessageService) ListConversations(ctx context.Context, user *domain.User) ([]domain.Conversation, error) {
	messages, err := s.Repo.ListMessagesByParticipant(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	latest := make(map[int64]domain.Message)
	unread := make(map[int64]int)

	for _, message := range messages {
		partnerID := message.PartnerOf(user.ID)

		if current, ok := latest[partnerID]; !ok || current.Before(message) {
			latest[partnerID] = message
		}

		if message.ToUserID == user.ID && !message.IsRead {
			unread[partnerID]++
		}
	}

	conversations := make([]domain.Conversation, 0, len(latest))

	for partnerID, message := range latest {
		name, avatar, err := s.partner(ctx, partnerID)
		if err != nil {
			return nil, err
		}

		conversations = append(conversations, domain.Conversation{
			PartnerID:     partnerID,
			PartnerName:   name,
			PartnerAvatar: avatar,
			LatestMessage: &domain.LatestMessage{
				ID:       message.ID,
				Content:  message.Content,
				SentAt:   message.SentAt,
				IsRead:   message.IsRead,
				IsSender: message.FromUserID == user.ID,
			},
			UnreadCount: unread[partnerID],
		})
	}

	slices.SortFunc(conversations, func(a, b domain.Conversation) int {
		ma := domain.Message{ID: a.LatestMessage.ID, SentAt: a.LatestMessage.SentAt}
		mb := domain.Message{ID: b.LatestMessage.ID, SentAt: b.LatestMessage.SentAt}

		switch {
		case mb.Before(ma):
			return -1
		case ma.Before(mb):
			return 1
		default:
			return 0
		}
	})

	return conversations, nil
}

// partner resolves the display name and avatar of partnerID from the
// profile matching their role.
func (s *MessageService) partner(ctx context.Context, partnerID int64) (string, *string, error) {
	partner, ok, err := s.Repo.GetUser(ctx, partnerID)
	if err != nil {
		return "", nil, fmt.Errorf("get partner: %w", err)
	} else if !ok {
		return UnknownPartnerName, nil, nil
	}

	switch {
	case partner.IsJobSeeker():
		profile, ok, err := s.Repo.GetJobSeekerProfileByUserID(ctx, partnerID)
		if err != nil {
			return "", nil, fmt.Errorf("get job seeker profile: %w", err)
		} else if ok {
			return profile.DisplayName(), profile.AvatarURL, nil
		}
	case partner.IsEmployer():
		company, ok, err := s.Repo.GetCompanyProfileByUserID(ctx, partnerID)
		if err != nil {
			return "", nil, fmt.Errorf("get company profile: %w", err)
		} else if ok {
			return company.Name, company.LogoURL, nil
		}
	}

	return UnknownPartnerName, nil, nil
}

// GetConversation returns the messages between user and partnerID, oldest
// first, and marks the ones addressed to user read. The returned messages
// reflect the state after marking.
func (s *MessageService) GetConversation(
	ctx context.Context,
	user *domain.User,
	partnerID int64,
) (messages []domain.Message, err error) {
	log := s.Log.With(logging.Group("conversation", "userId", user.ID, "partnerId", partnerID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "get conversation failed", "error", err)
		} else {
			log.DebugContext(ctx, "conversation read", "messages", len(messages))
		}
	}()

	if _, ok, err := s.Repo.GetUser(ctx, partnerID); err != nil {
		return nil, fmt.Errorf("get partner: %w", err)
	} else if !ok {
		return nil, domain.ErrUserNotFound
	}

	messages, err = s.Repo.ListConversation(ctx, user.ID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}

	if _, err := s.Repo.MarkConversationRead(ctx, user.ID, partnerID); err != nil {
		return nil, fmt.Errorf("mark conversation read: %w", err)
	}

	for i := range messages {
		if messages[i].ToUserID == user.ID {
			messages[i].IsRead = true
		}
	}

	if messages == nil {
		messages = []domain.Message{}
	}

	return messages, nil
}

// MarkRead marks message id read. Only its recipient may do so; marking a
// read message again succeeds.
func (s *MessageService) MarkRead(ctx context.Context, user *domain.User, id int64) (message *domain.Message, err error) {
	log := s.Log.With(logging.Group("message", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "mark message read failed", "error", err)
		} else {
			log.DebugContext(ctx, "message marked read")
		}
	}()

	current, ok, err := s.Repo.GetMessage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	} else if !ok {
		return nil, domain.ErrMessageNotFound
	}

	if !access.CanMarkMessageRead(user, current) {
		return nil, domain.ErrNotRecipient
	}

	message, err = s.Repo.MarkMessageRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark message read: %w", err)
	}

	return message, nil
}

func (s *MessageService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}

	return s.Now().UTC()
}
