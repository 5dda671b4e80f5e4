package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Theme values for content rendering.
const (
	ThemeFull    = "full"
	ThemeCompact = "compact"
)

// Record is the persisted per-chat state: exactly the session
// identifier and the theme preference, nothing else.
type Record struct {
	SessionID string    `json:"sessionId"`
	Theme     string    `json:"theme,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileStore persists chat records as a single JSON file. A stored
// session identifier is never regenerated, only created when absent.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileStore{path: path}, nil
}

// GetOrCreate returns the stored session identifier for the chat,
// generating and persisting one only if none exists yet.
func (s *FileStore) GetOrCreate(chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.loadUnlocked()
	key := strconv.FormatInt(chatID, 10)
	if rec, ok := records[key]; ok && rec.SessionID != "" {
		return rec.SessionID, nil
	}
	rec := records[key]
	rec.SessionID = newSessionID()
	rec.CreatedAt = time.Now().UTC()
	records[key] = rec
	if err := s.saveUnlocked(records); err != nil {
		return "", err
	}
	return rec.SessionID, nil
}

// Theme returns the stored rendering preference, defaulting to full.
func (s *FileStore) Theme(chatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.loadUnlocked()[strconv.FormatInt(chatID, 10)]
	if rec.Theme == "" {
		return ThemeFull
	}
	return rec.Theme
}

func (s *FileStore) SetTheme(chatID int64, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.loadUnlocked()
	key := strconv.FormatInt(chatID, 10)
	rec := records[key]
	rec.Theme = theme
	records[key] = rec
	return s.saveUnlocked(records)
}

// Count reports how many chats have a stored session.
func (s *FileStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loadUnlocked())
}

func (s *FileStore) loadUnlocked() map[string]Record {
	records := map[string]Record{}
	f, err := os.Open(s.path)
	if err != nil {
		return records
	}
	defer f.Close()
	// empty or malformed -> start fresh
	_ = json.NewDecoder(f).Decode(&records)
	return records
}

func (s *FileStore) saveUnlocked(records map[string]Record) error {
	f, err := os.OpenFile(s.path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open for write: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func newSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("chat_%d_%s", time.Now().UnixMilli(), suffix)
}
