package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{
		URL:         url,
		APIKey:      "secret-key",
		Model:       "test-model",
		MaxTokens:   512,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https ok", "https://example.com/webhook", false},
		{"http ok", "http://localhost:8080/hook", false},
		{"empty", "", true},
		{"no scheme", "example.com/webhook", true},
		{"bad scheme", "ftp://example.com", true},
		{"scheme only", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Config{URL: tt.url}.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_SendJSONPayload(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		_, _ = w.Write([]byte(`{"content":"the reply"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	reply, err := c.Send(context.Background(), "chat-1", []Message{
		{Role: "user", Content: "hello"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "the reply", reply)

	assert.Equal(t, "test-model", got["model"])
	assert.Equal(t, float64(512), got["max_tokens"])
	assert.Equal(t, 0.7, got["temperature"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, "chat-1", got["chatId"])

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	first, ok := messages[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "hello", first["content"])
}

func TestClient_SendMultipartWithFiles(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "test-model", r.FormValue("model"))
		assert.Equal(t, "false", r.FormValue("stream"))
		assert.Equal(t, "chat-2", r.FormValue("chatId"))

		var messages []Message
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("messages")), &messages))
		require.Len(t, messages, 1)
		assert.Equal(t, "see attachment", messages[0].Content)

		file, header, err := r.FormFile("file_0")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "report.txt", header.Filename)
		assert.Equal(t, "file contents", string(data))

		var meta map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("file_0_metadata")), &meta))
		assert.Equal(t, "report.txt", meta["name"])
		assert.Equal(t, "text/plain", meta["type"])
		assert.Equal(t, float64(len("file contents")), meta["size"])

		_, _ = w.Write([]byte(`{"response":"got it"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	reply, err := c.Send(context.Background(), "chat-2", []Message{
		{Role: "user", Content: "see attachment"},
	}, []Attachment{
		{Name: "report.txt", MediaType: "text/plain", Data: []byte("file contents")},
	})
	require.NoError(t, err)
	assert.Equal(t, "got it", reply)
}

func TestClient_ResponseFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai choices", `{"choices":[{"message":{"content":"from choices"}}]}`, "from choices"},
		{"content field", `{"content":"from content"}`, "from content"},
		{"message field", `{"message":"from message"}`, "from message"},
		{"response field", `{"response":"from response"}`, "from response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			reply, err := c.Send(context.Background(), "chat-3", nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply)
		})
	}
}

func TestClient_UnknownResponseFormat(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Send(context.Background(), "chat-4", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownResponse)
}

func TestClient_EmptyResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Send(context.Background(), "chat-5", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"content":"third time lucky"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	reply, err := c.Send(context.Background(), "chat-6", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", reply)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Send(context.Background(), "chat-7", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "still broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Send(context.Background(), "chat-8", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ContextCancelStopsRetries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, srv.URL)
	_, err := c.Send(ctx, "chat-9", nil, nil)
	assert.Error(t, err)
}

func TestClient_NoAuthHeaderWithoutKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, Model: "m"})
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "chat-10", nil, nil)
	require.NoError(t, err)
}

func TestClient_LimiterThrottlesSends(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	}))
	defer srv.Close()

	// One token up front, then one every 100ms: the second send must wait.
	c, err := New(Config{
		URL:     srv.URL,
		Model:   "m",
		Limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	})
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Now()
	_, err = c.Send(ctx, "chat-11", nil, nil)
	require.NoError(t, err)
	_, err = c.Send(ctx, "chat-11", nil, nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_LimiterHonorsContextCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	}))
	defer srv.Close()

	// Empty bucket with a slow refill; a canceled context must not wait it out.
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, limiter.Allow())

	c, err := New(Config{URL: srv.URL, Model: "m", Limiter: limiter})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Send(ctx, "chat-12", nil, nil)
	assert.Error(t, err)
}
