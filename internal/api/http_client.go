package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// replyKeys are tried in order; the first non-empty string wins.
var replyKeys = []string{"reply", "response", "message"}

type httpClient struct {
	base   string
	token  string
	client *http.Client
	logger *slog.Logger
}

func (c *httpClient) Name() string {
	return fmt.Sprintf("Travel API (%s)", c.base)
}

func (c *httpClient) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatReply{}, fmt.Errorf("%w: message cannot be empty", ErrValidation)
	}
	body, err := c.post(ctx, chatPath, req)
	if err != nil {
		return ChatReply{}, err
	}
	if !gjson.ValidBytes(body) {
		return ChatReply{}, fmt.Errorf("chat API returned malformed JSON")
	}
	reply := ChatReply{Intent: gjson.GetBytes(body, "intent").String()}
	for _, key := range replyKeys {
		field := gjson.GetBytes(body, key)
		if field.Type == gjson.String && strings.TrimSpace(field.String()) != "" {
			reply.Text = field.String()
			return reply, nil
		}
	}
	c.logger.Warn("chat response carried no reply text", "session_id", req.SessionID, "body_bytes", len(body))
	reply.Text = FallbackReply
	reply.Fallback = true
	return reply, nil
}

func (c *httpClient) GeneratePlan(ctx context.Context, req PlanRequest) (Plan, error) {
	req = req.Normalize(now())
	if err := req.Validate(); err != nil {
		return Plan{}, err
	}
	body, err := c.post(ctx, plannerPath, req)
	if err != nil {
		return Plan{}, err
	}
	return decodePlan(body, req)
}

func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("travel API error: %s (%s)", resp.Status, detail)
	}
	return body, nil
}
