package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// APIError is a non-ok response from the Bot API
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// Client is a minimal Bot API client covering the methods the giveaway needs
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a Bot API client for the given bot token
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 65 * time.Second, // above the long-poll timeout
		},
		baseURL: defaultBaseURL,
		token:   token,
	}
}

// NewClientWithBaseURL creates a client pointed at a non-default API server
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

type apiResponse struct {
	Ok          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// call POSTs a JSON body to a Bot API method and decodes the result into out
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var body io.Reader
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode %s params: %w", method, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp.Body, method, out)
}

func decodeResponse(r io.Reader, method string, out any) error {
	var apiResp apiResponse
	if err := json.NewDecoder(r).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if !apiResp.Ok {
		return &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
	}

	if out != nil {
		if err := json.Unmarshal(apiResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for new updates past the given offset
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := map[string]any{
		"offset":          offset,
		"timeout":         timeout,
		"allowed_updates": []string{"message", "callback_query", "pre_checkout_query"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// GetChatMember returns a user's membership record for a chat
func (c *Client) GetChatMember(ctx context.Context, chatID string, userID int64) (*ChatMember, error) {
	params := map[string]any{
		"chat_id": chatID,
		"user_id": userID,
	}

	var member ChatMember
	if err := c.call(ctx, "getChatMember", params, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMyStarBalance returns the bot's current star balance
func (c *Client) GetMyStarBalance(ctx context.Context) (int64, error) {
	var amount StarAmount
	if err := c.call(ctx, "getMyStarBalance", nil, &amount); err != nil {
		return 0, err
	}
	return amount.Amount, nil
}

// SendGift sends the gift identified by giftID to a user
func (c *Client) SendGift(ctx context.Context, userID int64, giftID, text string) error {
	params := map[string]any{
		"user_id": userID,
		"gift_id": giftID,
	}
	if text != "" {
		params["text"] = text
	}

	return c.call(ctx, "sendGift", params, nil)
}

// SendMessage sends a text message, optionally with an inline keyboard
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) (*Message, error) {
	params := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		params["reply_markup"] = markup
	}

	var msg Message
	if err := c.call(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageText replaces the text of a previously sent message
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	params := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		params["reply_markup"] = markup
	}

	err := c.call(ctx, "editMessageText", params, nil)
	if apiErr, ok := err.(*APIError); ok && isNotModified(apiErr) {
		// Re-rendering identical content is not a failure
		return nil
	}
	return err
}

// EditMessageCaption replaces the caption of a previously sent media message
func (c *Client) EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string, markup *InlineKeyboardMarkup) error {
	params := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"caption":    caption,
		"parse_mode": "HTML",
	}
	if markup != nil {
		params["reply_markup"] = markup
	}

	err := c.call(ctx, "editMessageCaption", params, nil)
	if apiErr, ok := err.(*APIError); ok && isNotModified(apiErr) {
		return nil
	}
	return err
}

// SendInvoice sends a Telegram Stars invoice (currency XTR) to a chat
func (c *Client) SendInvoice(ctx context.Context, chatID int64, title, description, payload string, prices []LabeledPrice) error {
	params := map[string]any{
		"chat_id":     chatID,
		"title":       title,
		"description": description,
		"payload":     payload,
		"currency":    "XTR",
		"prices":      prices,
	}

	return c.call(ctx, "sendInvoice", params, nil)
}

// AnswerPreCheckoutQuery confirms or rejects a payment before it is charged
func (c *Client) AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage string) error {
	params := map[string]any{
		"pre_checkout_query_id": queryID,
		"ok":                    ok,
	}
	if errorMessage != "" {
		params["error_message"] = errorMessage
	}

	return c.call(ctx, "answerPreCheckoutQuery", params, nil)
}

// AnswerCallbackQuery acknowledges a button press, optionally with an alert
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error {
	params := map[string]any{
		"callback_query_id": callbackID,
	}
	if text != "" {
		params["text"] = text
		params["show_alert"] = showAlert
	}

	return c.call(ctx, "answerCallbackQuery", params, nil)
}

// SendDocument uploads a file as a document with a caption
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, content []byte, caption string) error {
	fields := map[string]string{
		"chat_id": fmt.Sprintf("%d", chatID),
	}
	if caption != "" {
		fields["caption"] = caption
	}

	return c.upload(ctx, "sendDocument", "document", filename, content, fields, nil)
}

// SendPhoto uploads a photo with a caption and an optional inline keyboard
func (c *Client) SendPhoto(ctx context.Context, chatID int64, filename string, content []byte, caption string, markup *InlineKeyboardMarkup) error {
	fields := map[string]string{
		"chat_id":    fmt.Sprintf("%d", chatID),
		"parse_mode": "HTML",
	}
	if caption != "" {
		fields["caption"] = caption
	}

	return c.upload(ctx, "sendPhoto", "photo", filename, content, fields, markup)
}

// upload POSTs a multipart body with one attached file to a Bot API method
func (c *Client) upload(ctx context.Context, method, fileField, filename string, content []byte, fields map[string]string, markup *InlineKeyboardMarkup) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write %s field: %w", name, err)
		}
	}
	if markup != nil {
		encoded, err := json.Marshal(markup)
		if err != nil {
			return fmt.Errorf("failed to encode reply markup: %w", err)
		}
		if err := writer.WriteField("reply_markup", string(encoded)); err != nil {
			return fmt.Errorf("failed to write reply_markup field: %w", err)
		}
	}

	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", fileField, err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to write %s content: %w", fileField, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp.Body, method, nil)
}

func isNotModified(err *APIError) bool {
	return err.Code == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(err.Description), "message is not modified")
}
