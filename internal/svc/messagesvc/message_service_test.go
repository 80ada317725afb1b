package messagesvc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/jobboard/internal/domain"
	context_ "github.com/mkrupp/jobboard/internal/infra/context"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
	"github.com/mkrupp/jobboard/internal/repo/store"
	"github.com/mkrupp/jobboard/internal/svc/messagesvc"
)

//nolint:gochecknoglobals
var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

type fixture struct {
	svc   *messagesvc.MessageService
	repo  store.Repository
	clock *time.Time
	// alice is a job seeker with a profile, bob an employer with a company,
	// carol a job seeker without a profile.
	alice, bob, carol *domain.User
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	repo := store.NewMemoryRepository()
	clock := epoch

	svc := messagesvc.NewMessageService(repo)
	svc.Now = func() time.Time { return clock }

	createUser := func(name string, userType domain.UserType) *domain.User {
		user, err := repo.CreateUser(ctx, domain.User{
			Username: name, Email: name + "@example.com", PasswordHash: []byte("x"), UserType: userType, CreatedAt: epoch,
		})
		require.NoError(t, err)

		return user
	}

	f := &fixture{
		svc:   svc,
		repo:  repo,
		clock: &clock,
		alice: createUser("alice", domain.UserTypeJobSeeker),
		bob:   createUser("bob", domain.UserTypeEmployer),
		carol: createUser("carol", domain.UserTypeJobSeeker),
	}

	_, err := repo.CreateJobSeekerProfile(ctx, domain.JobSeekerProfile{
		UserID: f.alice.ID, FirstName: "Alice", LastName: "Liddell", AvatarURL: ptr("/api/assets/a"),
	})
	require.NoError(t, err)

	_, err = repo.CreateCompanyProfile(ctx, domain.CompanyProfile{
		UserID: f.bob.ID, Name: "Acme", LogoURL: ptr("/api/assets/b"),
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) send(t *testing.T, from, to *domain.User, content string) *domain.Message {
	t.Helper()

	*f.clock = f.clock.Add(time.Minute)

	message, err := f.svc.SendMessage(context.Background(), from, to.ID, content, nil)
	require.NoError(t, err)

	return message
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		to      int64
		content string
		related *int64
		wantErr error
	}{
		{name: "self", to: f.alice.ID, content: "Hi", wantErr: domain.ErrSelfMessage},
		{name: "empty", to: f.bob.ID, content: "  \n\t", wantErr: domain.ErrEmptyMessage},
		{name: "missing recipient", to: 99, content: "Hi", wantErr: domain.ErrUserNotFound},
		{name: "missing application", to: f.bob.ID, content: "Hi", related: ptr(int64(7)), wantErr: domain.ErrApplicationNotFound},
	}

	for _, tt := range tests {
		_, err := f.svc.SendMessage(ctx, f.alice, tt.to, tt.content, tt.related)
		require.ErrorIs(t, err, tt.wantErr, tt.name)
	}

	application, err := f.repo.CreateApplication(ctx, domain.Application{
		JobID: 1, JobSeekerID: 1, Status: domain.ApplicationStatusPending, AppliedAt: epoch, UpdatedAt: epoch,
	})
	require.NoError(t, err)

	message, err := f.svc.SendMessage(ctx, f.alice, f.bob.ID, "Hi", &application.ID)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, message.FromUserID)
	assert.Equal(t, f.bob.ID, message.ToUserID)
	assert.Equal(t, application.ID, *message.RelatedToApplicationID)
	assert.False(t, message.IsRead)
	assert.Equal(t, epoch, message.SentAt)
}

func TestConversationReadFlow(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	f.send(t, f.alice, f.bob, "Hi")

	conversations, err := f.svc.ListConversations(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, 1, conversations[0].UnreadCount)
	assert.Equal(t, "Alice Liddell", conversations[0].PartnerName)
	assert.Equal(t, "/api/assets/a", *conversations[0].PartnerAvatar)
	assert.False(t, conversations[0].LatestMessage.IsSender)

	messages, err := f.svc.GetConversation(ctx, f.bob, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsRead)

	stored, ok, err := f.repo.GetMessage(ctx, messages[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, stored.IsRead)

	conversations, err = f.svc.ListConversations(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, 0, conversations[0].UnreadCount)
	assert.Equal(t, "Acme", conversations[0].PartnerName)
	assert.True(t, conversations[0].LatestMessage.IsSender)

	_, err = f.svc.GetConversation(ctx, f.bob, 99)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetConversationOrderAndSideEffect(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	f.send(t, f.alice, f.bob, "one")
	f.send(t, f.bob, f.alice, "two")
	f.send(t, f.alice, f.bob, "three")
	f.send(t, f.carol, f.bob, "elsewhere")

	messages, err := f.svc.GetConversation(ctx, f.bob, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	for i, content := range []string{"one", "two", "three"} {
		assert.Equal(t, content, messages[i].Content)

		if i > 0 {
			assert.False(t, messages[i].SentAt.Before(messages[i-1].SentAt))
		}
	}

	// bob's message to alice stays unread until alice reads it.
	stored, _, err := f.repo.GetMessage(ctx, messages[1].ID)
	require.NoError(t, err)
	assert.False(t, stored.IsRead)

	conversations, err := f.svc.ListConversations(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, f.carol.ID, conversations[0].PartnerID, "newest conversation first")
	assert.Equal(t, messagesvc.UnknownPartnerName, conversations[0].PartnerName)
	assert.Nil(t, conversations[0].PartnerAvatar)
	assert.Equal(t, 1, conversations[0].UnreadCount)
	assert.Equal(t, 0, conversations[1].UnreadCount)
	assert.Equal(t, "three", conversations[1].LatestMessage.Content)

	messages, err = f.svc.GetConversation(ctx, f.bob, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 3)

	empty, err := f.svc.GetConversation(ctx, f.alice, f.carol.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListConversationsSameTimestamp(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, f.alice, f.bob.ID, "first", nil)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.bob, f.alice.ID, "second", nil)
	require.NoError(t, err)

	conversations, err := f.svc.ListConversations(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "second", conversations[0].LatestMessage.Content)
	assert.Equal(t, 1, conversations[0].UnreadCount)
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	message := f.send(t, f.alice, f.bob, "Hi")

	_, err := f.svc.MarkRead(ctx, f.alice, message.ID)
	require.ErrorIs(t, err, domain.ErrNotRecipient)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.MarkRead(ctx, f.bob, 99)
	require.ErrorIs(t, err, domain.ErrMessageNotFound)

	for range 2 {
		read, err := f.svc.MarkRead(ctx, f.bob, message.ID)
		require.NoError(t, err)
		assert.True(t, read.IsRead)
	}
}

func serve(t *testing.T, handler http.Handler, user *domain.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(context_.WithUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestHTTPTransport(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	mux := http_.NewServeMux(messagesvc.NewHTTPTransport(f.svc, http_.HTTPTransportConfig{}))

	rec := serve(t, mux, nil, http.MethodGet, "/api/messages", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, mux, f.alice, http.MethodPost, "/api/messages", `{"toUserId":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, mux, f.alice, http.MethodPost, "/api/messages", `{"toUserId":2,"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, mux, f.alice, http.MethodPost, "/api/messages", `{"toUserId":99,"content":"Hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, mux, f.alice, http.MethodPost, "/api/messages", `{"toUserId":2,"content":"Hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var message domain.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &message))

	rec = serve(t, mux, f.bob, http.MethodGet, "/api/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"partnerName":"Alice Liddell"`)
	assert.Contains(t, rec.Body.String(), `"unreadCount":1`)

	rec = serve(t, mux, f.alice, http.MethodPut, "/api/messages/1/read", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, mux, f.bob, http.MethodGet, "/api/messages/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isRead":true`)

	rec = serve(t, mux, f.bob, http.MethodPut, "/api/messages/1/read", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, mux, f.bob, http.MethodGet, "/api/messages/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
