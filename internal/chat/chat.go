package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChannelOpener requests a collaboration channel for a matched pair. It is
// called once, after the selection transaction has committed, and is strictly
// best-effort: a failure never unwinds the decision.
type ChannelOpener interface {
	OpenChannel(ctx context.Context, ownerId, providerId, auctionId string) (string, error)
}

// Client talks to the external chat service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type openChannelReq struct {
	PartyA  string `json:"partyA"`
	PartyB  string `json:"partyB"`
	Context string `json:"context"`
}

type openChannelResp struct {
	ChannelId string `json:"channelId"`
}

func (c *Client) OpenChannel(ctx context.Context, ownerId, providerId, auctionId string) (string, error) {
	body, err := json.Marshal(openChannelReq{PartyA: ownerId, PartyB: providerId, Context: auctionId})
	if err != nil {
		return "", fmt.Errorf("chat.Client.OpenChannel: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/channels", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat.Client.OpenChannel: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat.Client.OpenChannel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("chat.Client.OpenChannel: unexpected status %d", resp.StatusCode)
	}

	var out openChannelResp
	err = json.NewDecoder(resp.Body).Decode(&out)
	if err != nil {
		return "", fmt.Errorf("chat.Client.OpenChannel: %w", err)
	}

	return out.ChannelId, nil
}

// Noop satisfies ChannelOpener when no chat service is configured.
type Noop struct{}

func (Noop) OpenChannel(ctx context.Context, ownerId, providerId, auctionId string) (string, error) {
	return "", nil
}
