package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotFound marks a message or channel that no longer resolves; the
// board synchronizer treats it as a signal to drop the board reference.
var ErrNotFound = errors.New("discord: resource not found")

// Client is a minimal REST client for the platform operations this bot
// needs: channel messages and command registration.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) CreateMessage(ctx context.Context, channelID string, payload MessagePayload) (Message, error) {
	var msg Message
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/channels/%s/messages", channelID), payload, &msg)
	if err != nil {
		return Message{}, err
	}
	if msg.ChannelID == "" {
		msg.ChannelID = channelID
	}
	return msg, nil
}

func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, payload MessagePayload) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID), payload, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID), nil, nil)
}

// RegisterCommands bulk-overwrites the application's slash commands,
// guild-scoped when guildID is non-empty.
func (c *Client) RegisterCommands(ctx context.Context, appID, guildID string, commands []CommandDef) error {
	path := fmt.Sprintf("/applications/%s/commands", appID)
	if guildID != "" {
		path = fmt.Sprintf("/applications/%s/guilds/%s/commands", appID, guildID)
	}
	return c.do(ctx, http.MethodPut, path, commands, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("discord: %s %s returned %d: %s", method, path, resp.StatusCode, detail)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
