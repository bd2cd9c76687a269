package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Client talks to the Bot API. It implements ports.Notifier and ports.Editor.
type Client struct {
	token     string
	baseURL   string
	parseMode string
	http      *http.Client
	logger    *slog.Logger
}

// DefaultParseMode matches the Markdown flavour of domain.Reply texts.
const DefaultParseMode = "Markdown"

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API server (tests, local Bot API).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithParseMode overrides the formatting mode of sent texts. An empty mode
// sends plain text.
func WithParseMode(mode string) ClientOption {
	return func(c *Client) {
		c.parseMode = mode
	}
}

// WithClientLogger configures a logger for the Client.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the bot identified by token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:     token,
		baseURL:   DefaultBaseURL,
		parseMode: DefaultParseMode,
		// Long polling holds requests open; callers bound them with ctx.
		http:   &http.Client{Timeout: 90 * time.Second},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

// call posts payload as JSON to method and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: encode %s: %w", method, err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL embeds the token; strip it from the error.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return fmt.Errorf("telegram: %s: request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("telegram: %s: decode response (status %d): %w", method, resp.StatusCode, err)
	}
	if !ar.OK {
		c.logger.Debug("bot api call rejected", "method", method, "code", ar.ErrorCode, "description", ar.Description)
		return &APIError{Method: method, Code: ar.ErrorCode, Description: ar.Description}
	}
	if out != nil {
		if err := json.Unmarshal(ar.Result, out); err != nil {
			return fmt.Errorf("telegram: %s: decode result: %w", method, err)
		}
	}
	return nil
}

type sendMessage struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int                   `json:"message_id,omitempty"`
	Text        string                `json:"text,omitempty"`
	Photo       string                `json:"photo,omitempty"`
	Caption     string                `json:"caption,omitempty"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// Send implements ports.Notifier. Replies with a photo are sent with the
// text as caption.
func (c *Client) Send(ctx context.Context, chatID int64, reply *domain.Reply) (domain.Receipt, error) {
	kb, err := markup(reply.Keyboard)
	if err != nil {
		return domain.Receipt{}, err
	}
	msg := sendMessage{ChatID: chatID, ParseMode: c.parseMode, ReplyMarkup: kb}
	method := "sendMessage"
	if reply.Photo != "" {
		method = "sendPhoto"
		msg.Photo, msg.Caption = reply.Photo, reply.Text
	} else {
		msg.Text = reply.Text
	}

	var sent Message
	if err := c.call(ctx, method, msg, &sent); err != nil {
		return domain.Receipt{}, err
	}
	return domain.Receipt{MessageID: sent.MessageID}, nil
}

// Edit implements ports.Editor. Photos cannot be edited into text messages,
// so replies carrying one are rejected and the caller sends instead.
func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, reply *domain.Reply) (domain.Receipt, error) {
	if reply.Photo != "" {
		return domain.Receipt{}, fmt.Errorf("telegram: cannot edit message %d into a photo", messageID)
	}
	kb, err := markup(reply.Keyboard)
	if err != nil {
		return domain.Receipt{}, err
	}
	msg := sendMessage{ChatID: chatID, MessageID: messageID, Text: reply.Text, ParseMode: c.parseMode, ReplyMarkup: kb}
	if err := c.call(ctx, "editMessageText", msg, nil); err != nil {
		return domain.Receipt{}, err
	}
	return domain.Receipt{MessageID: messageID}, nil
}

// AnswerCallback acknowledges a button tap so the client stops its spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]string{"callback_query_id": callbackID}, nil)
}

// GetMe returns the bot account.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := c.call(ctx, "getMe", struct{}{}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SetWebhook registers url as the update endpoint. secret is echoed back
// by Telegram in the X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(ctx context.Context, endpoint, secret string) error {
	payload := map[string]any{
		"url":             endpoint,
		"allowed_updates": []string{"message", "callback_query"},
	}
	if secret != "" {
		payload["secret_token"] = secret
	}
	return c.call(ctx, "setWebhook", payload, nil)
}

// DeleteWebhook switches the bot back to getUpdates delivery.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{}, nil)
}
