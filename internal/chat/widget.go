package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"innoportal/internal/chatbot"
)

// Sender is the UI-side author of a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Guard errors returned by Send before any state change happens.
var (
	ErrNoSession       = errors.New("chat session not established")
	ErrContactRequired = errors.New("contact info not collected yet")
	ErrSendInFlight    = errors.New("a message send is already in flight")
)

// UIMessage is one rendered entry of the widget's message list.
// Pending marks an optimistic user message that has not been confirmed
// by the backend yet; it is either replaced in place by the confirmed
// copy or removed on failure, never left behind.
type UIMessage struct {
	ID          string
	Sender      Sender
	Text        string
	Time        time.Time
	Attachments []chatbot.Attachment
	Pending     bool
}

// SessionStore resolves the persistent session identifier for a chat.
type SessionStore interface {
	GetOrCreate(chatID int64) (string, error)
}

// Widget drives the support-chat lifecycle for a single chat: session
// bootstrap, the contact-info gate, and the optimistic send cycle.
// Sends are single-flight; the mutex is never held across a network
// call.
type Widget struct {
	chatID  int64
	store   SessionStore
	backend chatbot.Backend
	log     *logrus.Entry

	mu              sync.Mutex
	sessionID       string
	contact         chatbot.ContactInfo
	showContactForm bool
	infoCollected   bool
	messages        []UIMessage
	analysis        *chatbot.NoveltyAnalysis
	typing          bool
	sending         bool
	bootstrapped    bool
}

func NewWidget(chatID int64, store SessionStore, backend chatbot.Backend) *Widget {
	return &Widget{
		chatID:  chatID,
		store:   store,
		backend: backend,
		log:     logrus.WithField("chat_id", chatID),
	}
}

// Bootstrap establishes the session identifier and hydrates any
// existing conversation. It runs at most once per widget; later calls
// are no-ops. Lookup failures are treated exactly like a missing
// conversation: the contact form is shown and nothing is surfaced.
func (w *Widget) Bootstrap(ctx context.Context) {
	w.mu.Lock()
	if w.bootstrapped {
		w.mu.Unlock()
		return
	}
	w.bootstrapped = true
	w.mu.Unlock()

	sessionID, err := w.store.GetOrCreate(w.chatID)
	if err != nil {
		w.log.WithError(err).Error("failed to resolve session id")
		w.mu.Lock()
		w.showContactForm = true
		w.mu.Unlock()
		return
	}

	conv, err := w.backend.GetConversation(ctx, sessionID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessionID = sessionID
	if err != nil {
		// Not-found and transport failures take the same branch.
		w.log.WithError(err).Debug("no existing conversation")
		w.showContactForm = true
		return
	}

	if conv.Contact().Empty() {
		w.showContactForm = true
	} else {
		w.contact = conv.Contact()
		w.infoCollected = true
	}
	for _, m := range conv.Messages {
		w.messages = append(w.messages, mapMessage(m))
	}
	if conv.NoveltyAnalysis.Valid() {
		w.analysis = conv.NoveltyAnalysis
	}
}

// SubmitContactInfo validates and stores the visitor's details, then
// appends the locally synthesized welcome message. The backend upsert
// failing does not block the chat: it is logged and the info is still
// treated as collected.
func (w *Widget) SubmitContactInfo(ctx context.Context, name, email, mobile string) (UIMessage, error) {
	info, err := ValidateContact(name, email, mobile)
	if err != nil {
		return UIMessage{}, err
	}

	w.mu.Lock()
	sessionID := w.sessionID
	w.mu.Unlock()
	if sessionID == "" {
		return UIMessage{}, ErrNoSession
	}

	if _, err := w.backend.UpsertConversation(ctx, sessionID, info); err != nil {
		w.log.WithError(err).Warn("failed to store contact info, continuing")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.contact = info
	w.infoCollected = true
	w.showContactForm = false
	welcome := UIMessage{
		ID:     fmt.Sprintf("welcome-%d", time.Now().UnixMilli()),
		Sender: SenderBot,
		Text: fmt.Sprintf("Hi %s! Welcome to our innovation desk. "+
			"Tell me about your idea and I can help assess how novel it is.", info.Name),
		Time: time.Now(),
	}
	w.messages = append(w.messages, welcome)
	return welcome, nil
}

// Send runs one chat turn: optimistic append, dispatch, then
// reconcile or roll back. The returned message is the bot entry that
// ended the cycle: the assistant reply on success, a synthesized
// apology on failure. Only guard rejections return an error.
func (w *Widget) Send(ctx context.Context, text string, files []chatbot.FileUpload) (UIMessage, error) {
	w.mu.Lock()
	if w.sessionID == "" {
		w.mu.Unlock()
		return UIMessage{}, ErrNoSession
	}
	if w.showContactForm || !w.infoCollected {
		w.mu.Unlock()
		return UIMessage{}, ErrContactRequired
	}
	if w.sending {
		w.mu.Unlock()
		return UIMessage{}, ErrSendInFlight
	}

	display := text
	if n := len(files); n > 0 {
		display = fmt.Sprintf("%s [%d file(s) attached]", text, n)
	}
	tempID := fmt.Sprintf("temp-%d", time.Now().UnixMilli())
	w.messages = append(w.messages, UIMessage{
		ID:      tempID,
		Sender:  SenderUser,
		Text:    display,
		Time:    time.Now(),
		Pending: true,
	})
	req := chatbot.SendRequest{
		SessionID:      w.sessionID,
		Message:        text,
		AnalyzeNovelty: len(w.messages)-1 >= 3,
		Contact:        w.contact,
		Files:          files,
	}
	w.sending = true
	w.typing = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.sending = false
		w.typing = false
		w.mu.Unlock()
	}()

	resp, err := w.backend.SendMessage(ctx, req)
	if err != nil {
		w.log.WithError(err).Warn("chat send failed, rolling back")
		return w.rollback(tempID, err), nil
	}
	return w.reconcile(tempID, resp), nil
}

// reconcile atomically swaps the pending entry for the confirmed copy
// and appends the assistant reply, so no intermediate duplicate or
// missing state is ever observable.
func (w *Widget) reconcile(tempID string, resp *chatbot.SendResponse) UIMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.messages {
		if w.messages[i].ID == tempID {
			confirmed := mapMessage(resp.UserMessage)
			confirmed.Sender = SenderUser
			w.messages[i] = confirmed
			break
		}
	}
	reply := mapMessage(resp.AssistantMessage)
	w.messages = append(w.messages, reply)
	if resp.NoveltyAnalysis.Valid() {
		w.analysis = resp.NoveltyAnalysis
	}
	return reply
}

func (w *Widget) rollback(tempID string, cause error) UIMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.messages {
		if w.messages[i].ID == tempID {
			w.messages = append(w.messages[:i], w.messages[i+1:]...)
			break
		}
	}
	apology := UIMessage{
		ID:     fmt.Sprintf("error-%d", time.Now().UnixMilli()),
		Sender: SenderBot,
		Text:   fmt.Sprintf("Sorry, I couldn't send that message: %s Please try again.", cause.Error()),
		Time:   time.Now(),
	}
	w.messages = append(w.messages, apology)
	return apology
}

// NeedsContactInfo reports whether the contact form gate is still in
// front of the chat.
func (w *Widget) NeedsContactInfo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.showContactForm || !w.infoCollected
}

func (w *Widget) SessionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionID
}

func (w *Widget) Typing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.typing
}

// Messages returns a snapshot of the rendered list.
func (w *Widget) Messages() []UIMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]UIMessage, len(w.messages))
	copy(out, w.messages)
	return out
}

func (w *Widget) Analysis() *chatbot.NoveltyAnalysis {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.analysis
}

func (w *Widget) Contact() chatbot.ContactInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.contact
}

// mapMessage translates a backend message into the UI shape. Unknown
// roles render as bot messages.
func mapMessage(m chatbot.Message) UIMessage {
	sender := SenderBot
	if m.Role == chatbot.RoleUser {
		sender = SenderUser
	}
	ts, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	return UIMessage{
		ID:          m.ID,
		Sender:      sender,
		Text:        m.Content,
		Time:        ts,
		Attachments: m.Attachments,
	}
}
