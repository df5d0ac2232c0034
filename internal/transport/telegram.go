// Package transport talks to the Telegram Bot API: an outbound message
// client and an inbound long-polling update loop.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mvoronin/jobscout/internal/model"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// pollRetryDelay is how long the poller backs off after a failed getUpdates
// call before trying again.
const pollRetryDelay = 5 * time.Second

// Ensure Client implements model.Sender.
var _ model.Sender = (*Client)(nil)

// Client sends and edits messages through the Bot API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a Bot API client for the given token.
func NewClient(baseURL, token string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Bot API wire types.

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type sendMessageRequest struct {
	ChatID                int64       `json:"chat_id"`
	Text                  string      `json:"text"`
	ParseMode             string      `json:"parse_mode"`
	DisableWebPagePreview bool        `json:"disable_web_page_preview"`
	ReplyMarkup           interface{} `json:"reply_markup,omitempty"`
}

type editMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	MessageID             int64  `json:"message_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type replyKeyboard struct {
	Keyboard        [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard"`
}

type keyboardButton struct {
	Text string `json:"text"`
}

type removeKeyboard struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

type message struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	Text string `json:"text"`
}

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

// Send delivers one HTML message, returning the Telegram message id.
func (c *Client) Send(ctx context.Context, userID int64, text string, opts model.SendOptions) (int64, error) {
	req := sendMessageRequest{
		ChatID:                userID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}
	switch {
	case len(opts.Keyboard) > 0:
		req.ReplyMarkup = buildKeyboard(opts.Keyboard)
	case opts.RemoveKeyboard:
		req.ReplyMarkup = removeKeyboard{RemoveKeyboard: true}
	}

	result, err := c.call(ctx, "sendMessage", req)
	if err != nil {
		return 0, err
	}

	var msg message
	if err := json.Unmarshal(result, &msg); err != nil {
		return 0, fmt.Errorf("decode sendMessage result: %w", err)
	}
	return msg.MessageID, nil
}

// Edit replaces the text of a previously sent message.
func (c *Client) Edit(ctx context.Context, userID, messageID int64, text string) error {
	req := editMessageRequest{
		ChatID:                userID,
		MessageID:             messageID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}
	_, err := c.call(ctx, "editMessageText", req)
	return err
}

// call posts one Bot API method and returns the raw result payload.
func (c *Client) call(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !api.OK {
		return nil, fmt.Errorf("%s failed: %s (status %d)", method, api.Description, resp.StatusCode)
	}
	return api.Result, nil
}

func buildKeyboard(rows [][]string) replyKeyboard {
	kb := replyKeyboard{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
	for _, row := range rows {
		buttons := make([]keyboardButton, len(row))
		for i, label := range row {
			buttons[i] = keyboardButton{Text: label}
		}
		kb.Keyboard = append(kb.Keyboard, buttons)
	}
	return kb
}

// Handler consumes one inbound text message.
type Handler func(ctx context.Context, userID int64, text string)

// Poller pulls updates with getUpdates long polling and dispatches text
// messages sequentially, preserving per-user order.
type Poller struct {
	client     *Client
	timeout    time.Duration
	handler    Handler
	logger     *slog.Logger
	retryDelay time.Duration

	offset int64
}

// NewPoller returns a poller dispatching to handler. timeout is the
// long-poll hold time passed to getUpdates.
func NewPoller(client *Client, timeout time.Duration, handler Handler, logger *slog.Logger) *Poller {
	return &Poller{
		client:     client,
		timeout:    timeout,
		handler:    handler,
		logger:     logger,
		retryDelay: pollRetryDelay,
	}
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout"`
}

// Run polls until ctx is cancelled. A failed getUpdates call is logged and
// retried after a short delay; it never terminates the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("starting telegram poller", "timeout", p.timeout.String())

	for {
		if ctx.Err() != nil {
			p.logger.Info("shutting down telegram poller")
			return nil
		}

		updates, err := p.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("shutting down telegram poller")
				return nil
			}
			p.logger.Error("polling updates", "error", err)
			select {
			case <-ctx.Done():
				p.logger.Info("shutting down telegram poller")
				return nil
			case <-time.After(p.retryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= p.offset {
				p.offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			p.handler(ctx, u.Message.Chat.ID, u.Message.Text)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) ([]update, error) {
	req := getUpdatesRequest{
		Offset:  p.offset,
		Timeout: int(p.timeout.Seconds()),
	}
	result, err := p.client.call(ctx, "getUpdates", req)
	if err != nil {
		return nil, err
	}

	var updates []update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}
