package telegram

import (
	"fmt"
	"strings"
	"time"

	"innoportal/internal/booking"
	"innoportal/internal/chatbot"
	"innoportal/internal/content"
	"innoportal/internal/session"
)

const compactLimit = 5

func renderPosts(posts []content.Post, theme string) string {
	if len(posts) == 0 {
		return "No articles published yet."
	}
	var sb strings.Builder
	sb.WriteString("📝 Latest from the blog:\n")
	for i, p := range posts {
		if theme == session.ThemeCompact && i == compactLimit {
			sb.WriteString(fmt.Sprintf("\n…and %d more.", len(posts)-compactLimit))
			break
		}
		sb.WriteString(fmt.Sprintf("\n• %s", p.Title))
		if theme != session.ThemeCompact {
			if p.Author != "" {
				sb.WriteString(fmt.Sprintf(" — %s", p.Author))
			}
			if p.Excerpt != "" {
				sb.WriteString("\n  " + p.Excerpt)
			}
		}
	}
	return sb.String()
}

func renderEvents(events []content.Event, theme string) string {
	if len(events) == 0 {
		return "No upcoming events right now."
	}
	var sb strings.Builder
	sb.WriteString("📅 Upcoming events:\n")
	for i, e := range events {
		if theme == session.ThemeCompact && i == compactLimit {
			sb.WriteString(fmt.Sprintf("\n…and %d more.", len(events)-compactLimit))
			break
		}
		sb.WriteString(fmt.Sprintf("\n• %s — %s", e.Title, eventDay(e.Date)))
		if theme != session.ThemeCompact && e.Location != "" {
			sb.WriteString(" @ " + e.Location)
		}
	}
	return sb.String()
}

func renderVideos(videos []content.Video, theme string) string {
	if len(videos) == 0 {
		return "The video gallery is empty right now."
	}
	var sb strings.Builder
	sb.WriteString("🎬 Video gallery:\n")
	for i, v := range videos {
		if theme == session.ThemeCompact && i == compactLimit {
			sb.WriteString(fmt.Sprintf("\n…and %d more.", len(videos)-compactLimit))
			break
		}
		sb.WriteString(fmt.Sprintf("\n• %s\n  %s", v.Title, v.URL))
	}
	return sb.String()
}

func renderPartners(partners []content.Partner, theme string) string {
	if len(partners) == 0 {
		return "No partners listed yet."
	}
	var sb strings.Builder
	sb.WriteString("🤝 Our partners:\n")
	for i, p := range partners {
		if theme == session.ThemeCompact && i == compactLimit {
			sb.WriteString(fmt.Sprintf("\n…and %d more.", len(partners)-compactLimit))
			break
		}
		sb.WriteString("\n• " + p.Name)
		if theme != session.ThemeCompact && p.Website != "" {
			sb.WriteString(" — " + p.Website)
		}
	}
	return sb.String()
}

func renderBooking(b *booking.Booking) string {
	var sb strings.Builder
	sb.WriteString("Your consultation booking:\n")
	sb.WriteString(fmt.Sprintf("Reference: %s\n", b.ID))
	if day := booking.CalendarDay(b.Slot.Date); day != "" {
		sb.WriteString(fmt.Sprintf("When: %s %s–%s\n", day, b.Slot.StartTime, b.Slot.EndTime))
	}
	sb.WriteString(fmt.Sprintf("Name: %s\nStatus: %s", b.Name, b.Status))
	return sb.String()
}

func renderNovelty(a *chatbot.NoveltyAnalysis) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💡 Novelty assessment: %.0f/100 (confidence %.0f%%)\n\n%s",
		a.Score, a.Confidence*100, a.Analysis))
	if len(a.SimilarIdeas) > 0 {
		sb.WriteString("\n\nSimilar prior ideas:")
		for _, s := range a.SimilarIdeas {
			sb.WriteString(fmt.Sprintf("\n• %s (%.0f%% similar)", s.Title, s.Similarity*100))
		}
	}
	return sb.String()
}

func renderEventsDigest(events []content.Event, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Events digest for %s:\n", now.Format("Jan 2")))
	count := 0
	for _, e := range events {
		sb.WriteString(fmt.Sprintf("\n• %s — %s", e.Title, eventDay(e.Date)))
		if e.Location != "" {
			sb.WriteString(" @ " + e.Location)
		}
		count++
		if count == 10 {
			break
		}
	}
	sb.WriteString("\n\nBook a consultation with /book. Unsubscribe with /unsubscribe.")
	return sb.String()
}

// eventDay renders the calendar-day portion of a stored event date.
func eventDay(stored string) string {
	if len(stored) >= 10 {
		return stored[:10]
	}
	return stored
}
