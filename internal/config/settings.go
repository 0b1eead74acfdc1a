package config

import "fmt"

// Settings is the runtime-updatable subset of the configuration,
// exposed through the settings endpoint and persisted between runs.
type Settings struct {
	WebhookURL      string  `json:"webhookUrl"`
	APIKey          string  `json:"apiKey"`
	ModelName       string  `json:"modelName"`
	MaxTokens       int     `json:"maxTokens"`
	Temperature     float64 `json:"temperature"`
	EnableStreaming bool    `json:"enableStreaming"`
}

// Validate checks the settings the same way startup validation does.
func (s Settings) Validate() error {
	if s.WebhookURL != "" {
		if err := validateWebhookURL(s.WebhookURL); err != nil {
			return err
		}
	}
	if s.ModelName == "" {
		return fmt.Errorf("%w: modelName cannot be empty", ErrInvalidModelName)
	}
	if s.Temperature < 0.0 || s.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, s.Temperature)
	}
	if s.MaxTokens < 1 || s.MaxTokens > 1000000 {
		return fmt.Errorf("%w: must be between 1 and 1,000,000, got %d", ErrInvalidMaxTokens, s.MaxTokens)
	}
	return nil
}

// Settings projects the runtime-updatable fields out of the full
// configuration.
func (c *Config) Settings() Settings {
	return Settings{
		WebhookURL:      c.WebhookURL,
		APIKey:          c.APIKey,
		ModelName:       c.ModelName,
		MaxTokens:       c.MaxTokens,
		Temperature:     c.Temperature,
		EnableStreaming: c.EnableStreaming,
	}
}

// ApplySettings copies runtime settings back into the configuration.
func (c *Config) ApplySettings(s Settings) {
	c.WebhookURL = s.WebhookURL
	c.APIKey = s.APIKey
	c.ModelName = s.ModelName
	c.MaxTokens = s.MaxTokens
	c.Temperature = s.Temperature
	c.EnableStreaming = s.EnableStreaming
}
