package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"innoportal/internal/api"
	"innoportal/internal/booking"
	"innoportal/internal/chat"
	"innoportal/internal/chatbot"
	"innoportal/internal/session"
)

type fakeSender struct{ sent []string }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, m.Text)
	case tgbotapi.EditMessageTextConfig:
		f.sent = append(f.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fakeChatBackend struct {
	conv *chatbot.Conversation
}

func (b *fakeChatBackend) GetConversation(ctx context.Context, sessionID string) (*chatbot.Conversation, error) {
	if b.conv == nil {
		return nil, fmt.Errorf("Conversation not found")
	}
	return b.conv, nil
}

func (b *fakeChatBackend) UpsertConversation(ctx context.Context, sessionID string, info chatbot.ContactInfo) (*chatbot.Conversation, error) {
	return &chatbot.Conversation{SessionID: sessionID, Name: info.Name}, nil
}

func (b *fakeChatBackend) SendMessage(ctx context.Context, req chatbot.SendRequest) (*chatbot.SendResponse, error) {
	return &chatbot.SendResponse{
		UserMessage:      chatbot.Message{ID: "u1", Role: chatbot.RoleUser, Content: req.Message},
		AssistantMessage: chatbot.Message{ID: "a1", Role: chatbot.RoleAssistant, Content: "Tell me more about that."},
	}, nil
}

func testBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	store, err := session.NewFileStore(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	fs := &fakeSender{}
	return &Bot{
		s:        fs,
		sessions: store,
		chatSvc:  &fakeChatBackend{},
		widgets:  make(map[int64]*chat.Widget),
		flows:    make(map[int64]*flow),
	}, fs
}

func textMsg(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}
}

func TestContactGateThenChat(t *testing.T) {
	b, fs := testBot(t)
	ctx := context.Background()

	// First plain message opens the contact form instead of chatting.
	b.handleMessage(ctx, textMsg(1, "hello there"))
	if !strings.Contains(fs.last(), "name") {
		t.Fatalf("expected name prompt, got %q", fs.last())
	}

	b.handleMessage(ctx, textMsg(1, "Jane"))
	if !strings.Contains(fs.last(), "email") {
		t.Fatalf("expected email prompt, got %q", fs.last())
	}

	// Invalid email re-prompts inline without advancing.
	b.handleMessage(ctx, textMsg(1, "not-an-email"))
	if !strings.Contains(fs.last(), "email") {
		t.Fatalf("expected email re-prompt, got %q", fs.last())
	}

	b.handleMessage(ctx, textMsg(1, "jane@x.com"))
	if !strings.Contains(fs.last(), "mobile") {
		t.Fatalf("expected mobile prompt, got %q", fs.last())
	}

	b.handleMessage(ctx, textMsg(1, "+1 555 123 4567"))
	if !strings.Contains(fs.last(), "Jane") {
		t.Fatalf("welcome should be personalized, got %q", fs.last())
	}

	// Now plain text flows through the widget.
	b.handleMessage(ctx, textMsg(1, "I built a solar-powered kettle"))
	if fs.last() != "Tell me more about that." {
		t.Fatalf("expected assistant reply, got %q", fs.last())
	}

	w := b.widgets[1]
	msgs := w.Messages()
	if len(msgs) != 3 { // welcome + user + assistant
		t.Fatalf("got %d widget messages, want 3: %+v", len(msgs), msgs)
	}
}

func TestResetDropsWidgetButKeepsSession(t *testing.T) {
	b, _ := testBot(t)
	ctx := context.Background()

	w := b.widget(ctx, 9)
	id := w.SessionID()
	if id == "" {
		t.Fatalf("widget has no session id")
	}
	b.dropWidget(9)
	if b.ActiveWidgets() != 0 {
		t.Fatalf("widget not dropped")
	}
	if got := b.widget(ctx, 9).SessionID(); got != id {
		t.Fatalf("session id changed across reset: %q != %q", got, id)
	}
}

func TestCancelFlowRejectsCaseMismatch(t *testing.T) {
	var cancelCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/cancel") {
			cancelCalls++
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer srv.Close()

	b, fs := testBot(t)
	b.bookingSvc = booking.NewService(api.NewClient(srv.URL, time.Second))
	b.setFlow(5, &flow{kind: flowCancel, bookingID: "bk1", storedEmail: "jane@example.com"})

	b.handleMessage(context.Background(), textMsg(5, "Jane@Example.com"))
	if cancelCalls != 0 {
		t.Fatalf("cancellation must not reach the backend on a mismatch")
	}
	if !strings.Contains(fs.last(), "doesn't match") {
		t.Fatalf("unexpected response: %q", fs.last())
	}

	b.setFlow(5, &flow{kind: flowCancel, bookingID: "bk1", storedEmail: "jane@example.com"})
	b.handleMessage(context.Background(), textMsg(5, "jane@example.com"))
	if cancelCalls != 1 {
		t.Fatalf("exact match should cancel, calls=%d", cancelCalls)
	}
	if !strings.Contains(fs.last(), "cancelled") {
		t.Fatalf("unexpected response: %q", fs.last())
	}
}

func TestThemeToggleChangesRendering(t *testing.T) {
	b, fs := testBot(t)
	b.toggleTheme(3)
	if b.sessions.Theme(3) != session.ThemeCompact {
		t.Fatalf("theme not toggled: %q", b.sessions.Theme(3))
	}
	if !strings.Contains(fs.last(), "compact") {
		t.Fatalf("unexpected toggle reply: %q", fs.last())
	}
	b.toggleTheme(3)
	if b.sessions.Theme(3) != session.ThemeFull {
		t.Fatalf("theme not toggled back: %q", b.sessions.Theme(3))
	}
}
