package content

import (
	"context"
	"fmt"

	"innoportal/internal/api"
)

type Post struct {
	ID          string `json:"_id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt"`
	Body        string `json:"content"`
	Author      string `json:"author"`
	PublishedAt string `json:"publishedAt"`
}

type Event struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type Partner struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

type Video struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

// Submission is a guest blog post proposal.
type Submission struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Email   string `json:"email"`
	Content string `json:"content"`
}

// Service wraps the informational-page resources: blog, events,
// partners and the video gallery.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Posts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := s.client.Get(ctx, "/blog", &posts); err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	return posts, nil
}

// Post resolves a single post by slug or identifier.
func (s *Service) Post(ctx context.Context, slugOrID string) (*Post, error) {
	var post Post
	if err := s.client.Get(ctx, "/blog/"+slugOrID, &post); err != nil {
		return nil, fmt.Errorf("fetch post: %w", err)
	}
	return &post, nil
}

func (s *Service) SubmitPost(ctx context.Context, sub Submission) error {
	if err := s.client.Post(ctx, "/blog/submissions", sub, nil); err != nil {
		return fmt.Errorf("submit post: %w", err)
	}
	return nil
}

func (s *Service) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := s.client.Get(ctx, "/event", &events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	return events, nil
}

func (s *Service) Partners(ctx context.Context) ([]Partner, error) {
	var partners []Partner
	if err := s.client.Get(ctx, "/partner", &partners); err != nil {
		return nil, fmt.Errorf("fetch partners: %w", err)
	}
	return partners, nil
}

func (s *Service) Partner(ctx context.Context, slug string) (*Partner, error) {
	var partner Partner
	if err := s.client.Get(ctx, "/partner/"+slug, &partner); err != nil {
		return nil, fmt.Errorf("fetch partner: %w", err)
	}
	return &partner, nil
}

func (s *Service) Videos(ctx context.Context) ([]Video, error) {
	var videos []Video
	if err := s.client.Get(ctx, "/video", &videos); err != nil {
		return nil, fmt.Errorf("fetch videos: %w", err)
	}
	return videos, nil
}
