package messagesvc

import (
	"net/http"

	"github.com/mkrupp/jobboard/internal/infra/logging"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
)

// SendMessageRequest is the body of POST /api/messages.
type SendMessageRequest struct {
	ToUserID               int64  `json:"toUserId" validate:"required,gt=0"`
	Content                string `json:"content" validate:"required,max=10000"`
	RelatedToApplicationID *int64 `json:"relatedToApplicationId" validate:"omitempty,gt=0"`
}

// HTTPTransport exposes the message service over HTTP.
type HTTPTransport struct {
	messageSvc *MessageService
	log        logging.Logger
	cfg        http_.HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

func NewHTTPTransport(messageSvc *MessageService, cfg http_.HTTPTransportConfig) *HTTPTransport {
	return &HTTPTransport{
		messageSvc: messageSvc,
		log:        logging.GetLogger("svc.messagesvc.http_transport"),
		cfg:        cfg,
	}
}

// RegisterRoutes sets up the message endpoints. All of them require an
// authenticated user.
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/messages", http_.HandleErrors(ht.log, "send message", ht.sendMessage))
	mux.HandleFunc("GET /api/messages", http_.HandleErrors(ht.log, "list conversations", ht.listConversations))
	mux.HandleFunc("GET /api/messages/{partnerId}",
		http_.HandleErrors(ht.log, "get conversation", ht.getConversation))
	mux.HandleFunc("PUT /api/messages/{id}/read", http_.HandleErrors(ht.log, "mark message read", ht.markRead))
}

func (ht *HTTPTransport) sendMessage(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := http_.DecodeJSON(w, r, &req, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	message, err := ht.messageSvc.SendMessage(r.Context(), user, req.ToUserID, req.Content, req.RelatedToApplicationID)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusCreated, message)
}

func (ht *HTTPTransport) listConversations(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	conversations, err := ht.messageSvc.ListConversations(r.Context(), user)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, conversations)
}

func (ht *HTTPTransport) getConversation(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	partnerID, err := http_.PathID(r, "partnerId")
	if err != nil {
		return err
	}

	messages, err := ht.messageSvc.GetConversation(r.Context(), user, partnerID)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, messages)
}

func (ht *HTTPTransport) markRead(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	message, err := ht.messageSvc.MarkRead(r.Context(), user, id)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, message)
}
