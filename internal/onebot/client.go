package onebot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"mutevote/internal/domain"
	"mutevote/internal/metrics"
	"mutevote/internal/platform/retry"

	"github.com/sony/gobreaker"
)

// Reaction emoji ids as the backend knows them. The approve ballot is the
// check-mark emoji, the reject ballot is the question-mark emoji, which lives
// in a different emoji namespace (hence the distinct type).
const (
	emojiApproveID   = "424" // ✅
	emojiApproveType = "1"
	emojiRejectID    = "10068" // ❓
	emojiRejectType  = "2"
)

const announcePostAttempts = 2

// APIError is a non-zero retcode returned by the backend.
type APIError struct {
	Retcode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned retcode %d", e.Retcode)
}

type envelope struct {
	Retcode int             `json:"retcode"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the OneBot HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

var _ domain.ActionClient = (*Client)(nil)
var _ domain.TallyClient = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: newBreaker("onebot"),
	}
}

// PostAnnouncement posts a text message into a group and returns the id of
// the created message. Transient transport failures are retried once; a
// backend rejection (non-zero retcode) is permanent.
func (c *Client) PostAnnouncement(ctx context.Context, roomID, text string) (string, error) {
	groupID, err := strconv.ParseInt(roomID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid room id %q: %w", roomID, err)
	}

	payload := map[string]any{
		"group_id": groupID,
		"message": []map[string]any{
			{"type": "text", "data": map[string]string{"text": text}},
		},
	}

	policy := retry.Policy{
		MaxAttempts:    announcePostAttempts,
		InitialBackoff: 200 * time.Millisecond,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.WarnContext(ctx, "Retrying announcement post", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}

	data, err := retry.Do(ctx, policy, classifyBackendError, func() ([]byte, error) {
		return c.post(ctx, "send_group_msg", payload)
	})
	if err != nil {
		return "", err
	}

	var result struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode send_group_msg response: %w", err)
	}
	if result.MessageID == 0 {
		return "", fmt.Errorf("backend returned no message id")
	}

	return strconv.FormatInt(result.MessageID, 10), nil
}

// CountReaction returns the number of users who attached the given ballot
// reaction to a message.
func (c *Client) CountReaction(ctx context.Context, messageID string, kind domain.ReactionKind) (int, error) {
	msgID, err := strconv.ParseInt(messageID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid message id %q: %w", messageID, err)
	}

	emojiID, emojiType := emojiApproveID, emojiApproveType
	if kind == domain.ReactionReject {
		emojiID, emojiType = emojiRejectID, emojiRejectType
	}

	payload := map[string]any{
		"message_id": msgID,
		"emojiId":    emojiID,
		"emojiType":  emojiType,
	}

	data, err := c.post(ctx, "fetch_emoji_like", payload)
	if err != nil {
		return 0, err
	}

	var result struct {
		EmojiLikesList []json.RawMessage `json:"emojiLikesList"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("failed to decode fetch_emoji_like response: %w", err)
	}

	return len(result.EmojiLikesList), nil
}

// MuteUser applies a temporary mute. The backend takes the duration in
// seconds.
func (c *Client) MuteUser(ctx context.Context, roomID, userID string, minutes int) error {
	groupID, err := strconv.ParseInt(roomID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid room id %q: %w", roomID, err)
	}
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	payload := map[string]any{
		"group_id": groupID,
		"user_id":  uid,
		"duration": minutes * 60,
	}

	_, err = c.post(ctx, "set_group_ban", payload)
	return err
}

// Ping checks backend reachability, used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.post(ctx, "get_status", map[string]any{})
	return err
}

// post sends one API call through the circuit breaker and unwraps the
// response envelope. A non-zero retcode is returned as *APIError.
func (c *Client) post(ctx context.Context, operation string, payload any) ([]byte, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		return c.doPost(ctx, operation, payload)
	})
	metrics.BackendRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(operation, "error").Inc()
		return nil, err
	}
	metrics.BackendRequestsTotal.WithLabelValues(operation, "ok").Inc()
	return result.([]byte), nil
}

func (c *Client) doPost(ctx context.Context, operation string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+operation, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", operation, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	if env.Retcode != 0 {
		return nil, &APIError{Retcode: env.Retcode}
	}

	return []byte(env.Data), nil
}
