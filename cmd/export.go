package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/atelierhq/atelier/internal/chat"
	"github.com/atelierhq/atelier/internal/config"
)

// runExport renders a chat transcript to the terminal. Without a chat ID the
// active chat is exported. --raw prints the markdown without styling.
func runExport(args []string) error {
	var (
		chatID string
		raw    bool
	)
	for _, arg := range args {
		switch {
		case arg == "--raw":
			raw = true
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		case chatID != "":
			return fmt.Errorf("too many arguments")
		default:
			chatID = arg
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	logger := slog.Default()

	a, err := setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer a.Close()

	if chatID == "" {
		chatID, err = a.ChatStore.Active(ctx)
		if err != nil {
			return fmt.Errorf("resolving active chat: %w", err)
		}
	}

	c, err := a.ChatStore.Get(ctx, chatID)
	if err != nil {
		return fmt.Errorf("loading chat %s: %w", chatID, err)
	}

	markdown := Transcript(c)
	if raw {
		fmt.Print(markdown)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	styled, err := renderer.Render(markdown)
	if err != nil {
		return fmt.Errorf("rendering transcript: %w", err)
	}

	fmt.Fprint(os.Stdout, styled)
	return nil
}

// Transcript flattens a chat into a markdown document: title heading, then
// each message under a role heading with attachments listed.
func Transcript(c *chat.Chat) string {
	var b strings.Builder
	b.WriteString("# " + c.Title + "\n\n")

	for _, m := range c.Messages {
		switch m.Role {
		case chat.RoleUser:
			b.WriteString("## You\n\n")
		case chat.RoleAssistant:
			b.WriteString("## Assistant\n\n")
		default:
			b.WriteString("## " + m.Role + "\n\n")
		}

		b.WriteString(m.Content)
		b.WriteString("\n\n")

		for _, f := range m.Files {
			fmt.Fprintf(&b, "> attached: %s (%s, %d bytes)\n", f.Name, f.MediaType, f.Size)
		}
		if len(m.Files) > 0 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
