package chatbot

// Role values used by the backend conversation records.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ContactInfo is the mandatory visitor data collected before chatting.
type ContactInfo struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

func (c ContactInfo) Empty() bool {
	return c.Name == "" && c.Email == "" && c.Mobile == ""
}

// Attachment describes one file stored with a message.
type Attachment struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
}

// Message is one ordered entry in a conversation.
type Message struct {
	ID          string       `json:"_id"`
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Timestamp   string       `json:"timestamp"`
	Attachments []Attachment `json:"files,omitempty"`
}

// SimilarIdea is one prior idea referenced by a novelty analysis.
type SimilarIdea struct {
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// NoveltyAnalysis is the backend-computed originality assessment for a
// conversation. It is never computed or amended client-side.
type NoveltyAnalysis struct {
	Score        float64       `json:"score"`
	Confidence   float64       `json:"confidence"`
	Analysis     string        `json:"analysis"`
	SimilarIdeas []SimilarIdea `json:"similarIdeas"`
}

// Valid checks the shape received at the API boundary.
func (n *NoveltyAnalysis) Valid() bool {
	return n != nil && n.Score >= 0 && n.Score <= 100
}

// Conversation is the backend-owned aggregate keyed by session id.
type Conversation struct {
	SessionID       string           `json:"sessionId"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Mobile          string           `json:"mobile"`
	Messages        []Message        `json:"messages"`
	NoveltyAnalysis *NoveltyAnalysis `json:"noveltyAnalysis,omitempty"`
}

func (c *Conversation) Contact() ContactInfo {
	return ContactInfo{Name: c.Name, Email: c.Email, Mobile: c.Mobile}
}

// SendResponse is the payload returned by the message endpoint: the
// stored copy of the user message, the assistant reply, and optionally
// a fresh novelty analysis.
type SendResponse struct {
	UserMessage      Message          `json:"userMessage"`
	AssistantMessage Message          `json:"assistantMessage"`
	NoveltyAnalysis  *NoveltyAnalysis `json:"noveltyAnalysis,omitempty"`
}
