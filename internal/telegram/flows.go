package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"innoportal/internal/booking"
	"innoportal/internal/chat"
	"innoportal/internal/contact"
	"innoportal/internal/content"
)

type flowKind int

const (
	flowContactGate flowKind = iota
	flowBooking
	flowEnquiry
	flowGuestPost
	flowCancel
)

// flow is the per-chat wizard state for multi-step inputs. At most one
// flow is active per chat; any command aborts it.
type flow struct {
	kind flowKind
	step int

	// contact gate
	name  string
	email string

	// booking
	form      booking.Form
	slotLabel string

	// enquiry
	enquiry contact.Form

	// guest post
	submission content.Submission

	// cancellation
	bookingID   string
	storedEmail string
}

// continueFlow feeds one user message into the active wizard.
func (b *Bot) continueFlow(ctx context.Context, msg *tgbotapi.Message, f *flow) {
	switch f.kind {
	case flowContactGate:
		b.continueContactGate(ctx, msg, f)
	case flowBooking:
		b.continueBooking(ctx, msg, f)
	case flowEnquiry:
		b.continueEnquiry(ctx, msg, f)
	case flowGuestPost:
		b.continueGuestPost(ctx, msg, f)
	case flowCancel:
		b.continueCancel(ctx, msg, f)
	}
}

// startContactGate opens the mandatory contact-info form in front of
// the chat.
func (b *Bot) startContactGate(chatID int64) {
	b.setFlow(chatID, &flow{kind: flowContactGate})
	b.sendText(chatID, "Before we chat I need a few details. What's your name?")
}

func (b *Bot) continueContactGate(ctx context.Context, msg *tgbotapi.Message, f *flow) {
	chatID := msg.Chat.ID
	switch f.step {
	case 0:
		name, err := chat.ValidateName(msg.Text)
		if err != nil {
			b.sendText(chatID, err.(*chat.FieldError).Message+" — what's your name?")
			return
		}
		f.name = name
		f.step = 1
		b.setFlow(chatID, f)
		b.sendText(chatID, fmt.Sprintf("Thanks %s! What's your email address?", name))
	case 1:
		email, err := chat.ValidateEmail(msg.Text)
		if err != nil {
			b.sendText(chatID, err.(*chat.FieldError).Message+" — please enter your email.")
			return
		}
		f.email = email
		f.step = 2
		b.setFlow(chatID, f)
		b.sendText(chatID, "And a mobile number I can keep on file?")
	case 2:
		mobile, err := chat.ValidateMobile(msg.Text)
		if err != nil {
			b.sendText(chatID, err.(*chat.FieldError).Message+" — please enter your mobile number.")
			return
		}
		b.setFlow(chatID, nil)
		w := b.widget(ctx, chatID)
		welcome, err := w.SubmitContactInfo(ctx, f.name, f.email, mobile)
		if err != nil {
			logrus.WithError(err).WithField("chat_id", chatID).Error("contact submit failed")
			b.sendText(chatID, "Something went wrong on my side, please try again.")
			return
		}
		b.sendText(chatID, welcome.Text)
	}
}

func (b *Bot) startBookingForm(chatID int64, slotID, slotLabel string) {
	f := &flow{kind: flowBooking, slotLabel: slotLabel}
	f.form.SlotID = slotID
	b.setFlow(chatID, f)
	b.sendText(chatID, fmt.Sprintf("Booking %s.\nWhat's your full name?", slotLabel))
}

func (b *Bot) continueBooking(ctx context.Context, msg *tgbotapi.Message, f *flow) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	switch f.step {
	case 0:
		f.form.Name = text
		if fe := f.form.ValidateField("name"); fe != nil {
			b.sendText(chatID, fe.Message+"\nWhat's your full name?")
			return
		}
		f.step = 1
		b.setFlow(chatID, f)
		b.sendText(chatID, "Your email address?")
	case 1:
		f.form.Email = text
		if fe := f.form.ValidateField("email"); fe != nil {
			b.sendText(chatID, fe.Message+"\nYour email address?")
			return
		}
		f.step = 2
		b.setFlow(chatID, f)
		b.sendText(chatID, "A phone number we can reach you on?")
	case 2:
		f.form.Phone = text
		if fe := f.form.ValidateField("phone"); fe != nil {
			b.sendText(chatID, fe.Message+"\nYour phone number?")
			return
		}
		f.step = 3
		b.setFlow(chatID, f)
		b.sendText(chatID, "Anything we should know beforehand? (optional, send - to skip)")
	case 3:
		if text != "-" {
			f.form.Message = text
			if fe := f.form.ValidateField("message"); fe != nil {
				b.sendText(chatID, fe.Message+"\nTry a shorter note, or send - to skip.")
				return
			}
		}
		b.setFlow(chatID, nil)
		booked, err := b.bookingSvc.Book(ctx, f.form)
		if err != nil {
			logrus.WithError(err).WithField("chat_id", chatID).Warn("booking failed")
			b.sendText(chatID, "Sorry, that slot could not be booked: "+err.Error())
			return
		}
		b.sendText(chatID, fmt.Sprintf(
			"✅ Booked %s.\nYour booking reference is %s — keep it to view or cancel the booking (/mybooking, /cancelbooking).",
			f.slotLabel, booked.ID))
	}
}

func (b *Bot) startEnquiry(chatID int64) {
	b.setFlow(chatID, &flow{kind: flowEnquiry})
	b.sendText(chatID, "I'll pass your enquiry to the team. What's your name?")
}

func (b *Bot) continueEnquiry(ctx context.Context, msg *tgbotapi.Message, f *flow) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	switch f.step {
	case 0:
		name, err := chat.ValidateName(text)
		if err != nil {
			b.sendText(chatID, err.(*chat.FieldError).Message+" — what's your name?")
			return
		}
		f.enquiry.Name = name
		f.step = 1
		b.setFlow(chatID, f)
		b.sendText(chatID, "Your email address?")
	case 1:
		email, err := chat.ValidateEmail(text)
		if err != nil {
			b.sendText(chatID, err.(*chat.FieldError).Message+" — please enter your email.")
			return
		}
		f.enquiry.Email = email
		f.step = 2
		b.setFlow(chatID, f)
		b.sendText(chatID, "What is your enquiry about? (a short subject line)")
	case 2:
		if text == "" {
			b.sendText(chatID, "Please send a short subject line.")
			return
		}
		f.enquiry.Subject = text
		f.step = 3
		b.setFlow(chatID, f)
		b.sendText(chatID, "Tell me the details. You can attach a document to this message if it helps.")
	case 3:
		body := text
		if body == "" {
			body = msg.Caption
		}
		if body == "" && msg.Document == nil {
			b.sendText(chatID, "Please describe your enquiry.")
			return
		}
		f.enquiry.Message = body
		var attachment *contact.Attachment
		if msg.Document != nil {
			data, err := b.downloadFile(msg.Document.FileID)
			if err != nil {
				logrus.WithError(err).Warn("failed to download enquiry attachment")
			} else {
				attachment = &contact.Attachment{
					Filename: msg.Document.FileName,
					MimeType: msg.Document.MimeType,
					Data:     data,
				}
			}
		}
		b.setFlow(chatID, nil)
		if err := b.contactSvc.Submit(ctx, f.enquiry, attachment); err != nil {
			logrus.WithError(err).WithField("chat_id", chatID).Warn("enquiry submit failed")
			b.sendText(chatID, "Sorry, I couldn't submit your enquiry: "+err.Error())
			return
		}
		b.sendText(chatID, "✅ Thanks! Your enquiry has been sent — the team will get back to you by email.")
	}
}

func (b *Bot) startGuestPost(chatID int64) {
	b.setFlow(chatID, &flow{kind: flowGuestPost})
	b.sendText(chatID, "Pitch us a guest post! What's the working title?")
}

func (b *Bot) continueGuestPost(ctx context.Context, msg *tgbotapi.Message, f *flow) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		b.sendText(chatID, "Please answer in text.")
		return
	}
	switch f.step {
	case 0:
		f.submission.Title = text
		f.step = 1
		b.setFlow(chatID, f)
		b.sendText(chatID, "Who should we credit as the author?")
	case 1:
		f.submission.Author = text
		f.step = 2
		b.setFlow(chatID, f)
		b.sendText(chatID, "An email address for editorial feedback?")
	case 2:
		email, err := chat.ValidateEmail(text)
		if err != nil {
			b.sendText(chatID, err.(*chat.FieldError).Message+" — please enter your email.")
			return
		}
		f.submission.Email = email
		f.step = 3
		b.setFlow(chatID, f)
		b.sendText(chatID, "Send the draft or an outline.")
	case 3:
		f.submission.Content = text
		b.setFlow(chatID, nil)
		if err := b.contentSvc.SubmitPost(ctx, f.submission); err != nil {
			logrus.WithError(err).WithField("chat_id", chatID).Warn("guest post submit failed")
			b.sendText(chatID, "Sorry, the submission didn't go through: "+err.Error())
			return
		}
		b.sendText(chatID, "✅ Submission received — our editors will review it and reply by email.")
	}
}

func (b *Bot) startCancel(ctx context.Context, chatID int64, bookingID string) {
	booked, err := b.bookingSvc.Get(ctx, bookingID)
	if err != nil {
		b.sendText(chatID, "I couldn't find a booking with that reference. Double-check the id from your confirmation.")
		return
	}
	b.setFlow(chatID, &flow{kind: flowCancel, bookingID: booked.ID, storedEmail: booked.Email})
	b.sendText(chatID, "To confirm the cancellation, please re-enter the email address used for the booking (it must match exactly).")
}

func (b *Bot) continueCancel(ctx context.Context, msg *tgbotapi.Message, f *flow) {
	chatID := msg.Chat.ID
	entered := msg.Text // deliberately not normalized: the match is exact
	if !booking.ConfirmCancel(entered, f.storedEmail) {
		b.setFlow(chatID, nil)
		b.sendText(chatID, "That email doesn't match the booking exactly, so I haven't cancelled anything. Run /cancelbooking again to retry.")
		return
	}
	b.setFlow(chatID, nil)
	if err := b.bookingSvc.Cancel(ctx, f.bookingID, entered); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Warn("cancel failed")
		b.sendText(chatID, "Sorry, the cancellation didn't go through: "+err.Error())
		return
	}
	b.sendText(chatID, "✅ Your consultation has been cancelled.")
}

// weekAnchor returns the reference time for a week view offset in
// whole weeks from the current week.
func weekAnchor(offset int) time.Time {
	return time.Now().AddDate(0, 0, offset*7)
}
