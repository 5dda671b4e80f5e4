package booking

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"innoportal/internal/api"
)

// Booking is the backend record created by a successful submission.
type Booking struct {
	ID      string `json:"_id"`
	Slot    Slot   `json:"slot"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status"`
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Slots fetches bookable windows for an explicit date range, both
// bounds inclusive.
func (s *Service) Slots(ctx context.Context, start, end time.Time) ([]Slot, error) {
	q := url.Values{}
	q.Set("startDate", start.Format("2006-01-02"))
	q.Set("endDate", end.Format("2006-01-02"))
	var slots []Slot
	if err := s.client.Get(ctx, "/consultation/slots?"+q.Encode(), &slots); err != nil {
		return nil, fmt.Errorf("fetch slots: %w", err)
	}
	return slots, nil
}

func (s *Service) Book(ctx context.Context, form Form) (*Booking, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid booking form: %s", errs[0].Message)
	}
	var b Booking
	if err := s.client.Post(ctx, "/consultation/book", form, &b); err != nil {
		return nil, fmt.Errorf("book consultation: %w", err)
	}
	return &b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	if err := s.client.Get(ctx, "/consultation/bookings/"+id, &b); err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// Cancel re-sends the booking email as the confirmation token. The
// case-sensitive match is enforced client-side via ConfirmCancel
// before calling this.
func (s *Service) Cancel(ctx context.Context, id, email string) error {
	body := map[string]string{"email": email}
	if err := s.client.Post(ctx, "/consultation/bookings/"+id+"/cancel", body, nil); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	return nil
}
