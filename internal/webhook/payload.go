package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
)

// payload is the JSON request body for turns without attachments.
type payload struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
	ChatID      string    `json:"chatId"`
}

// encodeBody builds the request body. Plain turns encode as JSON;
// attachments switch the body to multipart with the same fields spread
// over form values.
func (c *Client) encodeBody(chatID string, messages []Message, files []Attachment) ([]byte, string, error) {
	if len(files) == 0 {
		raw, err := json.Marshal(payload{
			Model:       c.cfg.Model,
			Messages:    messages,
			MaxTokens:   c.cfg.MaxTokens,
			Temperature: c.cfg.Temperature,
			Stream:      false,
			ChatID:      chatID,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode webhook payload: %w", err)
		}
		return raw, "application/json", nil
	}
	return c.encodeMultipart(chatID, messages, files)
}

func (c *Client) encodeMultipart(chatID string, messages []Message, files []Attachment) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"model":       c.cfg.Model,
		"max_tokens":  strconv.Itoa(c.cfg.MaxTokens),
		"temperature": strconv.FormatFloat(c.cfg.Temperature, 'f', -1, 64),
		"stream":      "false",
		"chatId":      chatID,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	rawMessages, err := json.Marshal(messages)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode messages: %w", err)
	}
	if err := w.WriteField("messages", string(rawMessages)); err != nil {
		return nil, "", fmt.Errorf("failed to write messages field: %w", err)
	}

	for i, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file_%d"; filename="%s"`, i, escapeQuotes(f.Name)))
		contentType := f.MediaType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %d: %w", i, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part %d: %w", i, err)
		}

		meta, err := json.Marshal(map[string]any{
			"name": f.Name,
			"type": f.MediaType,
			"size": len(f.Data),
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode file metadata %d: %w", i, err)
		}
		if err := w.WriteField(fmt.Sprintf("file_%d_metadata", i), string(meta)); err != nil {
			return nil, "", fmt.Errorf("failed to write file metadata %d: %w", i, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// parseResponse extracts the reply text. Webhook backends answer in a
// handful of shapes, probed in order: OpenAI-style choices, then
// content, message, and response fields.
func parseResponse(raw []byte) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", ErrEmptyResponse
	}

	var body struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Content  string `json:"content"`
		Message  string `json:"message"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("webhook returned invalid JSON: %w", err)
	}

	switch {
	case len(body.Choices) > 0 && body.Choices[0].Message.Content != "":
		return body.Choices[0].Message.Content, nil
	case body.Content != "":
		return body.Content, nil
	case body.Message != "":
		return body.Message, nil
	case body.Response != "":
		return body.Response, nil
	}
	return "", ErrUnknownResponse
}
