package digest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Subscriber is a chat that receives the scheduled events digest.
type Subscriber struct {
	ChatID       int64     `json:"chat_id"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

type Repository interface {
	LoadAll() ([]Subscriber, error)
	Upsert(sub Subscriber) error
	Remove(chatID int64) error
}

type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileRepository{path: path}, nil
}

func (r *FileRepository) LoadAll() ([]Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	var subs []Subscriber
	dec := json.NewDecoder(f)
	if err := dec.Decode(&subs); err != nil {
		if err == io.EOF {
			return []Subscriber{}, nil
		}
		// empty or malformed -> start fresh
		return []Subscriber{}, nil
	}
	return subs, nil
}

func (r *FileRepository) Upsert(sub Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs, _ := r.loadUnlocked()
	updated := false
	for i, s := range subs {
		if s.ChatID == sub.ChatID {
			subs[i] = sub
			updated = true
			break
		}
	}
	if !updated {
		subs = append(subs, sub)
	}
	return r.saveUnlocked(subs)
}

func (r *FileRepository) Remove(chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs, _ := r.loadUnlocked()
	var out []Subscriber
	for _, s := range subs {
		if s.ChatID != chatID {
			out = append(out, s)
		}
	}
	return r.saveUnlocked(out)
}

func (r *FileRepository) loadUnlocked() ([]Subscriber, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	var subs []Subscriber
	dec := json.NewDecoder(f)
	if err := dec.Decode(&subs); err != nil {
		return []Subscriber{}, nil
	}
	return subs, nil
}

func (r *FileRepository) saveUnlocked(subs []Subscriber) error {
	f, err := os.OpenFile(r.path, os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(subs)
}
