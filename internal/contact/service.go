package contact

import (
	"context"
	"fmt"

	"innoportal/internal/api"
)

// Form is a contact/enquiry submission. Attachment is optional; when
// present the request goes out as multipart/form-data.
type Form struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// Record is the stored enquiry as returned by the admin endpoints.
type Record struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Submit posts the enquiry; the contact endpoint always takes
// multipart form data so file uploads and plain submissions share one
// path.
func (s *Service) Submit(ctx context.Context, form Form, attachment *Attachment) error {
	fields := map[string]string{
		"name":    form.Name,
		"email":   form.Email,
		"subject": form.Subject,
		"message": form.Message,
	}
	var files []api.Upload
	if attachment != nil {
		files = append(files, api.Upload{
			Field:    "attachment",
			Filename: attachment.Filename,
			MimeType: attachment.MimeType,
			Data:     attachment.Data,
		})
	}
	if err := s.client.PostMultipart(ctx, "/contact", fields, files, nil); err != nil {
		return fmt.Errorf("submit contact form: %w", err)
	}
	return nil
}

// List and Update are admin operations.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := s.client.Get(ctx, "/contact", &records); err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := s.client.Get(ctx, "/contact/"+id, &rec); err != nil {
		return nil, fmt.Errorf("get enquiry: %w", err)
	}
	return &rec, nil
}

func (s *Service) Update(ctx context.Context, id string, status string) (*Record, error) {
	var rec Record
	if err := s.client.Put(ctx, "/contact/"+id, map[string]string{"status": status}, &rec); err != nil {
		return nil, fmt.Errorf("update enquiry: %w", err)
	}
	return &rec, nil
}
