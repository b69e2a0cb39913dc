package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/domain/command"
	"moodbot/internal/core/port"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const vkAPIBase = "https://api.vk.com/method"
const vkAPIVersion = "5.199"

// VK polls the group long-poll server and dispatches incoming messages and
// keyboard callback events through the command registry.
type VK struct {
	registry port.CommandRegistry
	timeout  time.Duration
	token    string
	groupID  int64
	client   *http.Client
	l        *zerolog.Logger
}

func NewVK(registry port.CommandRegistry, timeout time.Duration, token string, groupID int64) *VK {
	logger := log.With().Str("handler", "vk").Logger()
	return &VK{
		registry: registry,
		timeout:  timeout,
		token:    token,
		groupID:  groupID,
		client:   &http.Client{Timeout: 40 * time.Second},
		l:        &logger,
	}
}

type vkLongPollServer struct {
	Key    string `json:"key"`
	Server string `json:"server"`
	TS     string `json:"ts"`
}

type vkLongPollResponse struct {
	TS      string          `json:"ts"`
	Failed  int             `json:"failed"`
	Updates []vkUpdate      `json:"updates"`
	Error   json.RawMessage `json:"error"`
}

type vkUpdate struct {
	Type   string          `json:"type"`
	Object json.RawMessage `json:"object"`
}

type vkMessage struct {
	ID           int    `json:"conversation_message_id"`
	PeerID       int64  `json:"peer_id"`
	FromID       int64  `json:"from_id"`
	Text         string `json:"text"`
	Payload      string `json:"payload"`
	ReplyMessage *struct {
		FromID int64  `json:"from_id"`
		Text   string `json:"text"`
	} `json:"reply_message"`
}

type vkMessageNew struct {
	Message vkMessage `json:"message"`
}

type vkMessageEvent struct {
	UserID  int64           `json:"user_id"`
	PeerID  int64           `json:"peer_id"`
	EventID string          `json:"event_id"`
	Payload json.RawMessage `json:"payload"`
}

// Start runs the long-poll loop until the context is cancelled.
func (h *VK) Start(ctx context.Context) error {
	server, err := h.getLongPollServer(ctx)
	if err != nil {
		return fmt.Errorf("getting long poll server: %w", err)
	}

	h.l.Info().Int64("groupId", h.groupID).Msg("vk long poll started")

	ts := server.TS
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp, err := h.poll(ctx, server, ts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			h.l.Err(err).Msg("long poll request failed, retrying")
			time.Sleep(3 * time.Second)
			continue
		}

		if resp.Failed != 0 {
			// key expired or history outdated, renegotiate
			server, err = h.getLongPollServer(ctx)
			if err != nil {
				h.l.Err(err).Msg("failed to refresh long poll server")
				time.Sleep(3 * time.Second)
				continue
			}
			ts = server.TS
			continue
		}

		ts = resp.TS
		for _, update := range resp.Updates {
			h.handleUpdate(update)
		}
	}
}

func (h *VK) handleUpdate(update vkUpdate) {
	switch update.Type {
	case "message_new":
		var event vkMessageNew
		if err := json.Unmarshal(update.Object, &event); err != nil {
			h.l.Err(err).Msg("failed to decode message_new")
			return
		}
		h.handleMessage(event.Message)
	case "message_event":
		var event vkMessageEvent
		if err := json.Unmarshal(update.Object, &event); err != nil {
			h.l.Err(err).Msg("failed to decode message_event")
			return
		}
		h.handleCallback(event)
	}
}

func (h *VK) handleMessage(m vkMessage) {
	text := m.Text

	// keyboard text buttons echo their command through the payload
	if text == "" && m.Payload != "" {
		text = commandFromPayload([]byte(m.Payload))
	}

	handler, pattern, err := h.registry.Match(text)
	if err != nil {
		return
	}

	message := &domain.Message{
		Platform:    domain.PlatformVK,
		ID:          m.ID,
		ChatID:      m.PeerID,
		SenderID:    m.FromID,
		SenderName:  h.userName(m.FromID),
		Text:        command.ParseArgs(text, pattern),
		BotIdentity: strconv.FormatInt(-h.groupID, 10),
	}
	if m.ReplyMessage != nil {
		message.ReplyText = m.ReplyMessage.Text
		message.ReplySenderID = strconv.FormatInt(m.ReplyMessage.FromID, 10)
		if m.ReplyMessage.FromID > 0 {
			message.ReplySenderName = h.userName(m.ReplyMessage.FromID)
		}
	}

	h.dispatch(handler, pattern, message)
}

func (h *VK) handleCallback(event vkMessageEvent) {
	text := commandFromPayload(event.Payload)
	if text == "" {
		return
	}

	h.answerCallback(event)

	handler, pattern, err := h.registry.Match(text)
	if err != nil {
		return
	}

	message := &domain.Message{
		Platform:    domain.PlatformVK,
		ChatID:      event.PeerID,
		SenderID:    event.UserID,
		SenderName:  h.userName(event.UserID),
		Text:        command.ParseArgs(text, pattern),
		BotIdentity: strconv.FormatInt(-h.groupID, 10),
	}

	h.dispatch(handler, pattern, message)
}

func (h *VK) dispatch(handler port.Command, pattern string, message *domain.Message) {
	reqID, _ := uuid.NewV4()
	logger := h.l.With().Str("requestId", reqID.String()).Str("command", pattern).Logger()
	logger.Debug().Int64("senderId", message.SenderID).Msg("dispatching command")

	go func() {
		if err := handler.Respond(context.Background(), h.timeout, message); err != nil {
			logger.Err(err).Msg("failed to respond to command")
		}
	}()
}

func (h *VK) answerCallback(event vkMessageEvent) {
	params := url.Values{}
	params.Set("event_id", event.EventID)
	params.Set("user_id", strconv.FormatInt(event.UserID, 10))
	params.Set("peer_id", strconv.FormatInt(event.PeerID, 10))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := h.call(ctx, "messages.sendMessageEventAnswer", params); err != nil {
		h.l.Err(err).Msg("failed to answer message event")
	}
}

// userName resolves a display name via users.get. Group senders and lookup
// failures fall back to an empty name.
func (h *VK) userName(userID int64) string {
	if userID <= 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	params := url.Values{}
	params.Set("user_ids", strconv.FormatInt(userID, 10))

	body, err := h.call(ctx, "users.get", params)
	if err != nil {
		h.l.Err(err).Int64("userId", userID).Msg("failed to resolve user name")
		return ""
	}

	var resp struct {
		Response []struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Response) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Response[0].FirstName + " " + resp.Response[0].LastName)
}

func (h *VK) getLongPollServer(ctx context.Context) (*vkLongPollServer, error) {
	params := url.Values{}
	params.Set("group_id", strconv.FormatInt(h.groupID, 10))

	body, err := h.call(ctx, "groups.getLongPollServer", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Response *vkLongPollServer `json:"response"`
		Error    *struct {
			Code    int    `json:"error_code"`
			Message string `json:"error_msg"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding long poll server response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("vk api error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Response == nil {
		return nil, fmt.Errorf("empty long poll server response")
	}
	return resp.Response, nil
}

func (h *VK) poll(ctx context.Context, server *vkLongPollServer, ts string) (*vkLongPollResponse, error) {
	pollURL := fmt.Sprintf("%s?act=a_check&key=%s&ts=%s&wait=25", server.Server, server.Key, ts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pollURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var poll vkLongPollResponse
	if err := json.Unmarshal(body, &poll); err != nil {
		return nil, fmt.Errorf("decoding long poll response: %w", err)
	}
	return &poll, nil
}

func (h *VK) call(ctx context.Context, method string, params url.Values) ([]byte, error) {
	params.Set("access_token", h.token)
	params.Set("v", vkAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		vkAPIBase+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", method, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func commandFromPayload(payload []byte) string {
	var p struct {
		Cmd string `json:"cmd"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return ""
	}
	return p.Cmd
}
