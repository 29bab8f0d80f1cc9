package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"habit-tracker/internal/config"
)

// Client sends messages through the Telegram Bot API. The bot token is
// injected at construction and never read from the environment here.
type Client struct {
	token  string
	apiURL string
	http   *http.Client
}

// NewClient creates a new Telegram gateway client
func NewClient(cfg *config.TelegramConfig) *Client {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}

	return &Client{
		token:  cfg.BotToken,
		apiURL: strings.TrimRight(apiURL, "/"),
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage delivers text to the chat identified by chatID
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if c.token == "" {
		return fmt.Errorf("telegram bot token is not configured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiURL, c.token)

	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call telegram API: %w", err)
	}
	defer resp.Body.Close()

	var body sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}

	if !body.OK {
		return fmt.Errorf("telegram API rejected message: %s", body.Description)
	}

	return nil
}
