package chatbot

import (
	"context"
	"fmt"
	"strconv"

	"innoportal/internal/api"
)

// Backend is the chatbot surface the chat widget depends on.
type Backend interface {
	GetConversation(ctx context.Context, sessionID string) (*Conversation, error)
	UpsertConversation(ctx context.Context, sessionID string, info ContactInfo) (*Conversation, error)
	SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error)
}

// FileUpload is a chat attachment to forward to the backend.
type FileUpload struct {
	Filename string
	MimeType string
	Data     []byte
}

// SendRequest carries one chat turn. AnalyzeNovelty signals that the
// conversation has enough turns for the backend to attempt scoring.
type SendRequest struct {
	SessionID      string
	Message        string
	AnalyzeNovelty bool
	Contact        ContactInfo
	Files          []FileUpload
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

func (s *Service) GetConversation(ctx context.Context, sessionID string) (*Conversation, error) {
	var conv Conversation
	if err := s.client.Get(ctx, "/chatbot/conversation/"+sessionID, &conv); err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

func (s *Service) UpsertConversation(ctx context.Context, sessionID string, info ContactInfo) (*Conversation, error) {
	body := map[string]string{
		"sessionId": sessionID,
		"name":      info.Name,
		"email":     info.Email,
		"mobile":    info.Mobile,
	}
	var conv Conversation
	if err := s.client.Post(ctx, "/chatbot/conversation", body, &conv); err != nil {
		return nil, fmt.Errorf("upsert conversation: %w", err)
	}
	return &conv, nil
}

// SendMessage posts one chat turn, as JSON when there are no files and
// as multipart/form-data otherwise.
func (s *Service) SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error) {
	var resp SendResponse
	if len(req.Files) == 0 {
		body := map[string]interface{}{
			"sessionId":      req.SessionID,
			"message":        req.Message,
			"analyzeNovelty": req.AnalyzeNovelty,
			"name":           req.Contact.Name,
			"email":          req.Contact.Email,
			"mobile":         req.Contact.Mobile,
		}
		if err := s.client.Post(ctx, "/chatbot/message", body, &resp); err != nil {
			return nil, fmt.Errorf("send message: %w", err)
		}
		return &resp, nil
	}

	fields := map[string]string{
		"sessionId":      req.SessionID,
		"message":        req.Message,
		"analyzeNovelty": strconv.FormatBool(req.AnalyzeNovelty),
		"name":           req.Contact.Name,
		"email":          req.Contact.Email,
		"mobile":         req.Contact.Mobile,
	}
	uploads := make([]api.Upload, 0, len(req.Files))
	for _, f := range req.Files {
		uploads = append(uploads, api.Upload{
			Field:    "files",
			Filename: f.Filename,
			MimeType: f.MimeType,
			Data:     f.Data,
		})
	}
	if err := s.client.PostMultipart(ctx, "/chatbot/message", fields, uploads, &resp); err != nil {
		return nil, fmt.Errorf("send message with files: %w", err)
	}
	return &resp, nil
}
