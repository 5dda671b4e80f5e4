package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"innoportal/internal/booking"
	"innoportal/internal/chat"
	"innoportal/internal/chatbot"
	"innoportal/internal/digest"
	"innoportal/internal/session"
	"innoportal/internal/storage"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		// commands abort any in-progress wizard
		b.setFlow(chatID, nil)
		b.handleCommand(ctx, msg)
		return
	}

	if f := b.flow(chatID); f != nil {
		b.continueFlow(ctx, msg, f)
		return
	}

	b.handleChat(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		b.sendText(chatID, helpText)
	case "blog":
		b.showPosts(ctx, chatID)
	case "events":
		b.showEvents(ctx, chatID)
	case "videos":
		b.showVideos(ctx, chatID)
	case "partners":
		b.showPartners(ctx, chatID)
	case "book":
		b.showWeekView(ctx, chatID, 0, 0)
	case "mybooking":
		b.showBooking(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case "cancelbooking":
		id := strings.TrimSpace(msg.CommandArguments())
		if id == "" {
			b.sendText(chatID, "Usage: /cancelbooking <booking reference>")
			return
		}
		b.startCancel(ctx, chatID, id)
	case "contact":
		b.startEnquiry(chatID)
	case "guestpost":
		b.startGuestPost(chatID)
	case "theme":
		b.toggleTheme(chatID)
	case "subscribe":
		b.subscribe(chatID)
	case "unsubscribe":
		b.unsubscribe(chatID)
	case "reset":
		b.dropWidget(chatID)
		b.sendText(chatID, "Chat reset. Your conversation history stays safe on our side — just send a message to continue.")
	default:
		b.sendText(chatID, "I don't know that command. Try /help.")
	}
}

// handleChat routes plain text (and attachments) through the support
// chat widget.
func (b *Bot) handleChat(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	w := b.widget(ctx, chatID)

	if w.NeedsContactInfo() {
		b.startContactGate(chatID)
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	files := b.collectFiles(msg)
	if text == "" && len(files) == 0 {
		b.sendText(chatID, "Send me a text message describing your idea.")
		return
	}

	b.sendTyping(chatID)
	reply, err := w.Send(ctx, text, files)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrSendInFlight):
			b.sendText(chatID, "One moment — I'm still working on your previous message.")
		case errors.Is(err, chat.ErrContactRequired), errors.Is(err, chat.ErrNoSession):
			b.startContactGate(chatID)
		default:
			logrus.WithError(err).WithField("chat_id", chatID).Error("chat send rejected")
		}
		return
	}

	b.sendText(chatID, reply.Text)
	b.record(chatID, w, text, reply)

	if analysis := w.Analysis(); analysis != nil && b.analysisChanged(chatID, analysis) {
		b.sendText(chatID, renderNovelty(analysis))
	}
}

func (b *Bot) record(chatID int64, w *chat.Widget, userText string, reply chat.UIMessage) {
	if b.recorder == nil {
		return
	}
	ev := storage.Event{
		Timestamp:   time.Now().UTC(),
		ChatID:      chatID,
		SessionID:   w.SessionID(),
		UserMessage: userText,
		BotResponse: reply.Text,
	}
	if a := w.Analysis(); a != nil {
		score := a.Score
		ev.NoveltyScore = &score
	}
	if err := b.recorder.AppendInteraction(ev); err != nil {
		logrus.WithError(err).Warn("failed to record interaction")
	}
}

// analysisChanged tracks the last seen analysis per chat so a fresh
// result is announced exactly once.
func (b *Bot) analysisChanged(chatID int64, analysis *chatbot.NoveltyAnalysis) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seenAnalyses == nil {
		b.seenAnalyses = make(map[int64]*chatbot.NoveltyAnalysis)
	}
	if b.seenAnalyses[chatID] == analysis {
		return false
	}
	b.seenAnalyses[chatID] = analysis
	return true
}

// collectFiles downloads Telegram attachments so they can be forwarded
// to the backend as multipart uploads.
func (b *Bot) collectFiles(msg *tgbotapi.Message) []chatbot.FileUpload {
	var files []chatbot.FileUpload
	if msg.Document != nil {
		if data, err := b.downloadFile(msg.Document.FileID); err != nil {
			logrus.WithError(err).Warn("failed to download document")
		} else {
			files = append(files, chatbot.FileUpload{
				Filename: msg.Document.FileName,
				MimeType: msg.Document.MimeType,
				Data:     data,
			})
		}
	}
	if len(msg.Photo) > 0 {
		// largest rendition is last
		photo := msg.Photo[len(msg.Photo)-1]
		if data, err := b.downloadFile(photo.FileID); err != nil {
			logrus.WithError(err).Warn("failed to download photo")
		} else {
			files = append(files, chatbot.FileUpload{
				Filename: "photo.jpg",
				MimeType: "image/jpeg",
				Data:     data,
			})
		}
	}
	return files
}

func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (b *Bot) toggleTheme(chatID int64) {
	current := b.sessions.Theme(chatID)
	next := session.ThemeCompact
	if current == session.ThemeCompact {
		next = session.ThemeFull
	}
	if err := b.sessions.SetTheme(chatID, next); err != nil {
		logrus.WithError(err).Warn("failed to store theme preference")
	}
	b.sendText(chatID, fmt.Sprintf("Theme set to %s.", next))
}

func (b *Bot) subscribe(chatID int64) {
	if b.subs == nil {
		b.sendText(chatID, "Digests are not enabled on this bot.")
		return
	}
	if err := b.subs.Upsert(digest.Subscriber{ChatID: chatID, SubscribedAt: time.Now().UTC()}); err != nil {
		logrus.WithError(err).Warn("failed to store subscription")
		b.sendText(chatID, "Sorry, something went wrong. Please try again.")
		return
	}
	b.sendText(chatID, "✅ Subscribed — you'll get a digest of upcoming events.")
}

func (b *Bot) unsubscribe(chatID int64) {
	if b.subs == nil {
		return
	}
	if err := b.subs.Remove(chatID); err != nil {
		logrus.WithError(err).Warn("failed to remove subscription")
		b.sendText(chatID, "Sorry, something went wrong. Please try again.")
		return
	}
	b.sendText(chatID, "You won't receive event digests anymore.")
}

// --- informational pages ---

func (b *Bot) showPosts(ctx context.Context, chatID int64) {
	posts, err := b.contentSvc.Posts(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to fetch posts")
		b.sendText(chatID, "The blog is unavailable right now, please try again later.")
		return
	}
	b.sendText(chatID, renderPosts(posts, b.sessions.Theme(chatID)))
}

func (b *Bot) showEvents(ctx context.Context, chatID int64) {
	events, err := b.contentSvc.Events(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to fetch events")
		b.sendText(chatID, "Events are unavailable right now, please try again later.")
		return
	}
	b.sendText(chatID, renderEvents(events, b.sessions.Theme(chatID)))
}

func (b *Bot) showVideos(ctx context.Context, chatID int64) {
	videos, err := b.contentSvc.Videos(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to fetch videos")
		b.sendText(chatID, "The video gallery is unavailable right now, please try again later.")
		return
	}
	b.sendText(chatID, renderVideos(videos, b.sessions.Theme(chatID)))
}

func (b *Bot) showPartners(ctx context.Context, chatID int64) {
	partners, err := b.contentSvc.Partners(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to fetch partners")
		b.sendText(chatID, "Partners are unavailable right now, please try again later.")
		return
	}
	b.sendText(chatID, renderPartners(partners, b.sessions.Theme(chatID)))
}

func (b *Bot) showBooking(ctx context.Context, chatID int64, id string) {
	if id == "" {
		b.sendText(chatID, "Usage: /mybooking <booking reference>")
		return
	}
	booked, err := b.bookingSvc.Get(ctx, id)
	if err != nil {
		b.sendText(chatID, "I couldn't find a booking with that reference.")
		return
	}
	b.sendText(chatID, renderBooking(booked))
}

// --- booking calendar callbacks ---

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// always answer so the client stops its spinner
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		logrus.WithError(err).Debug("failed to answer callback")
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	parts := strings.Split(cb.Data, ":")
	if len(parts) < 2 || parts[0] != "bk" {
		return
	}

	switch parts[1] {
	case "w": // week view: bk:w:<offset>
		offset := parseInt(parts, 2)
		b.showWeekView(ctx, chatID, offset, cb.Message.MessageID)
	case "dv": // date view: bk:dv
		b.showDateView(ctx, chatID, cb.Message.MessageID)
	case "d": // day slots: bk:d:<yyyy-mm-dd>
		if len(parts) < 3 {
			return
		}
		b.showDaySlots(ctx, chatID, parts[2])
	case "s": // slot pick: bk:s:<slotID>:<yyyy-mm-dd>
		if len(parts) < 4 {
			return
		}
		b.pickSlot(ctx, chatID, parts[2], parts[3])
	}
}

func (b *Bot) showWeekView(ctx context.Context, chatID int64, offset, editMessageID int) {
	start, end := booking.WeekWindow(weekAnchor(offset))
	slots, err := b.bookingSvc.Slots(ctx, start, end)
	if err != nil {
		logrus.WithError(err).Warn("failed to fetch week slots")
		b.sendText(chatID, "Slots are unavailable right now, please try again later.")
		return
	}

	now := time.Now()
	var rows [][]tgbotapi.InlineKeyboardButton
	for d := 0; d < 7; d++ {
		day := start.AddDate(0, 0, d)
		key := day.Format("2006-01-02")
		if !booking.Selectable(key, now) {
			continue
		}
		available := 0
		for _, s := range booking.SlotsOn(slots, key) {
			if s.Available {
				available++
			}
		}
		if available == 0 {
			continue
		}
		label := fmt.Sprintf("%s · %d slot(s)", day.Format("Mon Jan 2"), available)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "bk:d:"+key)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« week", fmt.Sprintf("bk:w:%d", offset-1)),
		tgbotapi.NewInlineKeyboardButtonData("week »", fmt.Sprintf("bk:w:%d", offset+1)),
		tgbotapi.NewInlineKeyboardButtonData("date view", "bk:dv"),
	))

	text := fmt.Sprintf("Consultation slots, week of %s:", start.Format("Jan 2"))
	if len(rows) == 1 {
		text = fmt.Sprintf("No bookable slots in the week of %s.", start.Format("Jan 2"))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if editMessageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, editMessageID, text, kb)
		if _, err := b.s.Send(edit); err != nil {
			logrus.WithError(err).Debug("failed to edit week view")
		}
		return
	}
	b.sendWithKeyboard(chatID, text, kb)
}

func (b *Bot) showDateView(ctx context.Context, chatID int64, editMessageID int) {
	start, end := booking.DateWindow(time.Now())
	slots, err := b.bookingSvc.Slots(ctx, start, end)
	if err != nil {
		logrus.WithError(err).Warn("failed to fetch date-view slots")
		b.sendText(chatID, "Slots are unavailable right now, please try again later.")
		return
	}

	groups := booking.GroupByDay(slots)
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, g := range groups {
		available := 0
		for _, s := range g.Slots {
			if s.Available {
				available++
			}
		}
		if available == 0 {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%s · %d slot(s)", g.Day, available), "bk:d:"+g.Day)))
		if len(rows) == 10 {
			break
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("week view", "bk:w:0")))

	text := "Next available days:"
	if len(rows) == 1 {
		text = "No bookable slots in the next 60 days."
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if editMessageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, editMessageID, text, kb)
		if _, err := b.s.Send(edit); err != nil {
			logrus.WithError(err).Debug("failed to edit date view")
		}
		return
	}
	b.sendWithKeyboard(chatID, text, kb)
}

func (b *Bot) showDaySlots(ctx context.Context, chatID int64, day string) {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		return
	}
	if !booking.Selectable(day, time.Now()) {
		b.sendText(chatID, "That day is no longer bookable.")
		return
	}
	slots, err := b.bookingSvc.Slots(ctx, d, d)
	if err != nil {
		logrus.WithError(err).Warn("failed to fetch day slots")
		b.sendText(chatID, "Slots are unavailable right now, please try again later.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range booking.SlotsOn(slots, day) {
		if !s.Available {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%s – %s", s.StartTime, s.EndTime),
			fmt.Sprintf("bk:s:%s:%s", s.ID, day))))
	}
	if len(rows) == 0 {
		b.sendText(chatID, "No free slots left on "+day+".")
		return
	}
	b.sendWithKeyboard(chatID, "Pick a time on "+day+":", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) pickSlot(ctx context.Context, chatID int64, slotID, day string) {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		return
	}
	slots, err := b.bookingSvc.Slots(ctx, d, d)
	if err != nil {
		logrus.WithError(err).Warn("failed to re-fetch slot")
		b.sendText(chatID, "Slots are unavailable right now, please try again later.")
		return
	}
	for _, s := range booking.SlotsOn(slots, day) {
		if s.ID == slotID {
			if !s.Available {
				break
			}
			label := fmt.Sprintf("%s %s–%s", day, s.StartTime, s.EndTime)
			b.startBookingForm(chatID, slotID, label)
			return
		}
	}
	b.sendText(chatID, "That slot was just taken — pick another one with /book.")
}

func parseInt(parts []string, idx int) int {
	if idx >= len(parts) {
		return 0
	}
	var n int
	_, _ = fmt.Sscanf(parts[idx], "%d", &n)
	return n
}

const helpText = `Welcome to the innovation desk!

Just send me a message to chat about your idea — I can assess how novel it is.

Commands:
/blog – latest articles
/events – upcoming events
/videos – video gallery
/partners – our partners
/book – book a consultation
/mybooking <ref> – view a booking
/cancelbooking <ref> – cancel a booking
/contact – send the team an enquiry
/guestpost – pitch a blog post
/subscribe – events digest
/theme – toggle compact lists
/reset – reset this chat`
