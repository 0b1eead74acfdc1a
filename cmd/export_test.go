package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/chat"
)

func TestTranscript(t *testing.T) {
	c := &chat.Chat{
		ID:    "chat-1",
		Title: "sorting a slice",
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: "how do I sort a slice?", Timestamp: time.Now()},
			{
				Role:    chat.RoleAssistant,
				Content: "Use slices.Sort:\n\n```go\nslices.Sort(xs)\n```",
			},
		},
	}

	got := Transcript(c)

	if !strings.HasPrefix(got, "# sorting a slice\n") {
		t.Errorf("missing title heading: %q", got)
	}
	if !strings.Contains(got, "## You\n\nhow do I sort a slice?") {
		t.Errorf("missing user section: %q", got)
	}
	if !strings.Contains(got, "## Assistant\n\nUse slices.Sort") {
		t.Errorf("missing assistant section: %q", got)
	}
	if !strings.Contains(got, "```go") {
		t.Errorf("code fence lost: %q", got)
	}
}

func TestTranscriptListsAttachments(t *testing.T) {
	c := &chat.Chat{
		Title: "New Chat",
		Messages: []chat.Message{
			{
				Role:    chat.RoleUser,
				Content: "summarize this",
				Files:   []chat.FileRef{{Name: "report.pdf", MediaType: "application/pdf", Size: 2048}},
			},
		},
	}

	got := Transcript(c)
	if !strings.Contains(got, "> attached: report.pdf (application/pdf, 2048 bytes)") {
		t.Errorf("missing attachment line: %q", got)
	}
}
