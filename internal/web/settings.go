package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/storage"
	"github.com/atelierhq/atelier/internal/webhook"
)

// settingsKey is the storage key holding the serialized settings.
const settingsKey = "settings"

// Webhook calls are throttled client-side so a burst of sends cannot
// hammer the upstream endpoint.
const (
	webhookRate  = rate.Limit(1)
	webhookBurst = 3
)

// ErrWebhookNotConfigured is returned when a message is sent before a
// webhook URL has been set.
var ErrWebhookNotConfigured = errors.New("webhook url not configured")

// settingsManager holds the runtime-updatable settings and the webhook
// client derived from them. The client is rebuilt on every settings update
// so changes take effect without a restart.
type settingsManager struct {
	mu       sync.RWMutex
	store    storage.Store
	logger   *slog.Logger
	settings config.Settings
	client   *webhook.Client
}

// newSettingsManager restores persisted settings from the backing store,
// falling back to defaults when nothing is stored or the payload is
// unreadable. A missing or invalid webhook URL is not fatal; sending
// messages fails until one is configured.
func newSettingsManager(store storage.Store, defaults config.Settings, logger *slog.Logger) *settingsManager {
	m := &settingsManager{
		store:    store,
		logger:   logger,
		settings: defaults,
	}

	if store != nil {
		raw, err := store.Get(settingsKey)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			logger.Warn("failed to load settings, using defaults", "error", err)
		default:
			var s config.Settings
			if err := json.Unmarshal([]byte(raw), &s); err != nil {
				logger.Warn("failed to parse stored settings, using defaults", "error", err)
			} else if err := s.Validate(); err != nil {
				logger.Warn("stored settings invalid, using defaults", "error", err)
			} else {
				m.settings = s
			}
		}
	}

	m.client = m.buildClient(m.settings)
	return m
}

// buildClient returns a webhook client for the given settings, or nil when
// no webhook URL is configured.
func (m *settingsManager) buildClient(s config.Settings) *webhook.Client {
	if s.WebhookURL == "" {
		return nil
	}
	client, err := webhook.New(webhook.Config{
		URL:         s.WebhookURL,
		APIKey:      s.APIKey,
		Model:       s.ModelName,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		Limiter:     rate.NewLimiter(webhookRate, webhookBurst),
		Logger:      m.logger,
	})
	if err != nil {
		m.logger.Warn("failed to build webhook client", "error", err)
		return nil
	}
	return client
}

// Settings returns a copy of the current settings.
func (m *settingsManager) Settings() config.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Client returns the current webhook client, or ErrWebhookNotConfigured.
func (m *settingsManager) Client() (*webhook.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil, ErrWebhookNotConfigured
	}
	return m.client, nil
}

// Update validates, persists, and applies new settings.
func (m *settingsManager) Update(s config.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		raw, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encoding settings: %w", err)
		}
		if err := m.store.Set(settingsKey, string(raw)); err != nil {
			return fmt.Errorf("persisting settings: %w", err)
		}
	}

	m.settings = s
	m.client = m.buildClient(s)
	return nil
}

// settingsHandler exposes the settings over HTTP.
type settingsHandler struct {
	manager *settingsManager
	logger  *slog.Logger
}

// get returns the current settings.
func (h *settingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Settings(), h.logger)
}

// put replaces the settings.
func (h *settingsHandler) put(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var s config.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	if err := h.manager.Update(s); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_settings", err.Error(), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.manager.Settings(), h.logger)
}
