package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"innoportal/internal/booking"
	"innoportal/internal/chat"
	"innoportal/internal/chatbot"
	"innoportal/internal/contact"
	"innoportal/internal/content"
	"innoportal/internal/digest"
	"innoportal/internal/session"
	"innoportal/internal/storage"
)

// Bot is the portal's presentational layer: commands render the
// informational resources, a guided flow drives consultation booking,
// and plain text goes through the chat widget to the support chatbot.
type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	sessions    *session.FileStore
	chatSvc     chatbot.Backend
	bookingSvc  *booking.Service
	contentSvc  *content.Service
	contactSvc  *contact.Service
	recorder    storage.Recorder
	subs        digest.Repository
	adminChatID int64

	mu           sync.Mutex
	widgets      map[int64]*chat.Widget
	flows        map[int64]*flow
	seenAnalyses map[int64]*chatbot.NoveltyAnalysis
}

type Deps struct {
	Sessions    *session.FileStore
	Chatbot     chatbot.Backend
	Booking     *booking.Service
	Content     *content.Service
	Contact     *contact.Service
	Recorder    storage.Recorder
	Subscribers digest.Repository
	AdminChatID int64
}

func New(botToken string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:         api,
		s:           api,
		sessions:    deps.Sessions,
		chatSvc:     deps.Chatbot,
		bookingSvc:  deps.Booking,
		contentSvc:  deps.Content,
		contactSvc:  deps.Contact,
		recorder:    deps.Recorder,
		subs:        deps.Subscribers,
		adminChatID: deps.AdminChatID,
		widgets:     make(map[int64]*chat.Widget),
		flows:       make(map[int64]*flow),
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
		}
	}
}

// widget returns the chat widget for the chat, creating and
// bootstrapping it on first use.
func (b *Bot) widget(ctx context.Context, chatID int64) *chat.Widget {
	b.mu.Lock()
	w, ok := b.widgets[chatID]
	if !ok {
		w = chat.NewWidget(chatID, b.sessions, b.chatSvc)
		b.widgets[chatID] = w
	}
	b.mu.Unlock()
	w.Bootstrap(ctx)
	return w
}

// ActiveWidgets implements web.WidgetCounter.
func (b *Bot) ActiveWidgets() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.widgets)
}

func (b *Bot) dropWidget(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.widgets, chatID)
	delete(b.flows, chatID)
}

func (b *Bot) flow(chatID int64) *flow {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flows[chatID]
}

func (b *Bot) setFlow(chatID int64, f *flow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f == nil {
		delete(b.flows, chatID)
		return
	}
	b.flows[chatID] = f
}

func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("failed to send message")
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.s.Send(msg); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("failed to send message")
	}
}

// sendTyping mirrors the widget's typing indicator in the chat UI.
func (b *Bot) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.s.Request(action); err != nil {
		logrus.WithError(err).Debug("failed to send chat action")
	}
}

// BroadcastEventsDigest sends the upcoming-events digest to every
// subscribed chat. Wired to the cron scheduler.
func (b *Bot) BroadcastEventsDigest(ctx context.Context) error {
	if b.subs == nil {
		return nil
	}
	subs, err := b.subs.LoadAll()
	if err != nil {
		return fmt.Errorf("load subscribers: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}
	events, err := b.contentSvc.Events(ctx)
	if err != nil {
		return fmt.Errorf("fetch events for digest: %w", err)
	}
	if len(events) == 0 {
		return nil
	}
	text := renderEventsDigest(events, time.Now())
	for _, s := range subs {
		b.sendText(s.ChatID, text)
	}
	logrus.WithField("subscribers", len(subs)).Info("events digest broadcast")
	return nil
}
