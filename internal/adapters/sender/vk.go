package sender

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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const vkAPIBase = "https://api.vk.com/method"
const vkAPIVersion = "5.199"

// VKSender talks to the VK messages API directly over HTTP.
type VKSender struct {
	token  string
	client *http.Client
	l      *zerolog.Logger
}

func NewVKSender(token string) *VKSender {
	logger := log.With().Str("sender", "vk").Logger()
	return &VKSender{
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
		l:      &logger,
	}
}

type vkError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

type vkSendResponse struct {
	Response int      `json:"response"`
	Error    *vkError `json:"error"`
}

func (s *VKSender) SendReply(ctx context.Context, message *domain.Message, text string, kbd *domain.Keyboard) (int, error) {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(message.ChatID, 10))
	params.Set("message", text)
	params.Set("random_id", strconv.FormatInt(time.Now().UnixNano()&0x7FFFFFFF, 10))
	if message.ID != 0 {
		params.Set("reply_to", strconv.Itoa(message.ID))
	}
	if kbd != nil {
		encoded, err := json.Marshal(toVKKeyboard(kbd))
		if err != nil {
			return 0, fmt.Errorf("encoding keyboard: %w", err)
		}
		params.Set("keyboard", string(encoded))
	}

	body, err := s.call(ctx, "messages.send", params)
	if err != nil {
		return 0, err
	}

	var resp vkSendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decoding messages.send response: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("vk api error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	return resp.Response, nil
}

func (s *VKSender) SendTyping(ctx context.Context, message *domain.Message) {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(message.ChatID, 10))
	params.Set("type", "typing")

	if _, err := s.call(ctx, "messages.setActivity", params); err != nil {
		s.l.Err(err).Int64("chatId", message.ChatID).Msg("error sending typing activity")
	}
}

func (s *VKSender) NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error {
	s.l.Err(err).Int64("chatId", message.ChatID).Msg("command failed")
	_, sendErr := s.SendReply(ctx, message,
		viper.GetString("bot.system_emoji")+" Чет пошло не так. Попробуйте позже.", nil)
	if sendErr != nil {
		s.l.Err(sendErr).Msg("failed to notify user about error")
	}
	return err
}

func (s *VKSender) call(ctx context.Context, method string, params url.Values) ([]byte, error) {
	params.Set("access_token", s.token)
	params.Set("v", vkAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		vkAPIBase+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.RemoteCallError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", method, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", method, err)
	}
	return body, nil
}

type vkKeyboard struct {
	Inline  bool         `json:"inline"`
	Buttons [][]vkButton `json:"buttons"`
}

type vkButton struct {
	Action vkButtonAction `json:"action"`
}

type vkButtonAction struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// toVKKeyboard maps the platform-neutral keyboard onto a VK inline keyboard;
// the button's command text travels inside the callback payload.
func toVKKeyboard(kbd *domain.Keyboard) vkKeyboard {
	rows := make([][]vkButton, 0, len(kbd.Rows))
	for _, row := range kbd.Rows {
		buttons := make([]vkButton, 0, len(row))
		for _, b := range row {
			payload, _ := json.Marshal(map[string]string{"cmd": b.Command})
			buttons = append(buttons, vkButton{Action: vkButtonAction{
				Type:    "callback",
				Label:   b.Label,
				Payload: string(payload),
			}})
		}
		rows = append(rows, buttons)
	}
	return vkKeyboard{Inline: true, Buttons: rows}
}
