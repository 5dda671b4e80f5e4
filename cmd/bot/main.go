package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"innoportal/internal/api"
	"innoportal/internal/booking"
	"innoportal/internal/chatbot"
	"innoportal/internal/config"
	"innoportal/internal/contact"
	"innoportal/internal/content"
	"innoportal/internal/digest"
	"innoportal/internal/scheduler"
	"innoportal/internal/session"
	"innoportal/internal/storage"
	"innoportal/internal/telegram"
	"innoportal/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	client := api.NewClient(
		api.ResolveBaseURL(cfg.APIBaseURL),
		time.Duration(cfg.APITimeoutSeconds)*time.Second,
	)

	sessions, err := session.NewFileStore(cfg.SessionFilePath)
	if err != nil {
		log.Fatalf("failed to init session store: %v", err)
	}

	recorder, err := storage.NewFileRecorder(cfg.InteractionLogPath)
	if err != nil {
		log.Fatalf("failed to init interaction recorder: %v", err)
	}

	subs, err := digest.NewFileRepository(cfg.SubscriptionsFilePath)
	if err != nil {
		log.Fatalf("failed to init subscriptions repo: %v", err)
	}

	bot, err := telegram.New(cfg.TelegramBotToken, telegram.Deps{
		Sessions:    sessions,
		Chatbot:     chatbot.NewService(client),
		Booking:     booking.NewService(client),
		Content:     content.NewService(client),
		Contact:     contact.NewService(client),
		Recorder:    recorder,
		Subscribers: subs,
		AdminChatID: cfg.AdminChatID,
	})
	if err != nil {
		log.Fatalf("failed to init telegram bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New()
	sched.SetDigestFunction(bot.BroadcastEventsDigest)
	if err := sched.Start(cfg.DigestCronSpec); err != nil {
		log.Printf("failed to start digest scheduler: %v", err)
	}
	defer sched.Stop()

	if cfg.StatusPort > 0 {
		srv := web.NewServer(cfg.StatusPort, recorder, bot)
		go func() {
			if err := srv.Start(); err != nil {
				logrus.WithError(err).Error("status server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	bot.Start(ctx)
}
