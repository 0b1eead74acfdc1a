package chat

import (
	"strings"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTitle is the title of a chat before its first user message.
const DefaultTitle = "New Chat"

// TitleMaxLength caps auto-derived chat titles.
const TitleMaxLength = 50

// FileRef describes a file attached to a message. Only metadata travels
// through the chat store; file bytes go straight to the webhook call.
type FileRef struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Size      int64  `json:"size"`
}

// Message is a single chat message. Immutable once appended to a chat.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // RoleUser or RoleAssistant
	Content   string    `json:"content"`
	Files     []FileRef `json:"files,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat is a conversation. The store mutates it only by appending messages,
// clearing, or deleting the whole chat.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the sidebar projection of a chat.
type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DeriveTitle builds a chat title from the first user message: the first
// six whitespace-separated words, truncated to 47 runes plus "..." when
// the result exceeds 50. Empty input falls back to DefaultTitle.
func DeriveTitle(content string) string {
	words := strings.Fields(strings.TrimSpace(content))
	if len(words) > 6 {
		words = words[:6]
	}
	title := strings.Join(words, " ")

	if len([]rune(title)) > TitleMaxLength {
		title = string([]rune(title)[:TitleMaxLength-3]) + "..."
	}
	if title == "" {
		return DefaultTitle
	}
	return title
}
