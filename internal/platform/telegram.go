package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/crosspost-cli/crosspost/internal/logutil"
	"github.com/crosspost-cli/crosspost/internal/media"
	"github.com/crosspost-cli/crosspost/internal/retry"
)

const (
	telegramName           = "telegram"
	defaultTelegramBaseURL = "https://api.telegram.org"
)

// TelegramConfig holds the Bot API settings for a chat.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string
}

// Telegram posts to a chat through the Bot API.
type Telegram struct {
	cfg    TelegramConfig
	policy retry.Policy
	client *http.Client
	video  *http.Client
	log    *log.Logger
}

// NewTelegram creates the Telegram adapter.
func NewTelegram(cfg TelegramConfig, policy retry.Policy) *Telegram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTelegramBaseURL
	}
	return &Telegram{
		cfg:    cfg,
		policy: policy,
		client: &http.Client{Timeout: requestTimeout},
		video:  &http.Client{Timeout: videoUploadTimeout},
		log:    logutil.Platform(telegramName),
	}
}

// Name returns the registry key.
func (t *Telegram) Name() string { return telegramName }

// IsConfigured reports whether the bot token and chat ID are set.
func (t *Telegram) IsConfigured() bool {
	return t.cfg.BotToken != "" && t.cfg.ChatID != ""
}

// ValidateConfig calls getMe to confirm the bot token is live.
func (t *Telegram) ValidateConfig(ctx context.Context) bool {
	if !t.IsConfigured() {
		t.log.Error("not configured, missing bot token or chat ID")
		return false
	}

	var reply struct {
		OK     bool `json:"ok"`
		Result struct {
			Username string `json:"username"`
		} `json:"result"`
	}
	if err := getJSON(ctx, t.client, t.method("getMe"), nil, &reply); err != nil {
		t.log.Error("configuration validation failed", "error", err)
		return false
	}
	if !reply.OK {
		t.log.Error("configuration validation failed", "error", "getMe returned ok=false")
		return false
	}

	t.log.Info("configuration validated", "bot", reply.Result.Username)
	return true
}

// Post publishes content to the configured chat.
func (t *Telegram) Post(ctx context.Context, content PostContent) Response {
	if !t.IsConfigured() {
		return failure("Telegram not configured")
	}

	resp, err := retry.Do(ctx, t.policy, telegramName, func(ctx context.Context) (Response, error) {
		switch len(content.Media) {
		case 0:
			return t.sendMessage(ctx, content.Text)
		case 1:
			return t.sendSingleMedia(ctx, content)
		default:
			return t.sendMediaGroup(ctx, content)
		}
	})
	if err != nil {
		return failure(err.Error())
	}
	return resp
}

type telegramMessage struct {
	MessageID int64 `json:"message_id"`
}

func (t *Telegram) sendMessage(ctx context.Context, text string) (Response, error) {
	payload := map[string]string{
		"chat_id":    t.cfg.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	var reply struct {
		OK          bool            `json:"ok"`
		Result      telegramMessage `json:"result"`
		Description string          `json:"description"`
	}
	if err := postJSON(ctx, t.client, t.method("sendMessage"), nil, payload, &reply); err != nil {
		return Response{}, err
	}
	if !reply.OK {
		return Response{}, fmt.Errorf("sendMessage failed: %s", reply.Description)
	}

	postID := strconv.FormatInt(reply.Result.MessageID, 10)
	t.log.Info("text message sent", "message_id", postID)
	return Response{Success: true, Data: reply.Result, PostID: postID}, nil
}

func (t *Telegram) sendSingleMedia(ctx context.Context, content PostContent) (Response, error) {
	m := content.Media[0]

	fields := map[string]string{"chat_id": t.cfg.ChatID}
	if content.Text != "" {
		fields["caption"] = content.Text
		fields["parse_mode"] = "HTML"
	}

	method, fieldName, client := "sendPhoto", "photo", t.client
	if m.Kind == media.KindVideo {
		method, fieldName, client = "sendVideo", "video", t.video
	}

	var reply struct {
		OK          bool            `json:"ok"`
		Result      telegramMessage `json:"result"`
		Description string          `json:"description"`
	}
	err := postMultipart(ctx, client, t.method(method), fields, []formFile{{field: fieldName, file: m}}, &reply)
	if err != nil {
		return Response{}, err
	}
	if !reply.OK {
		return Response{}, fmt.Errorf("%s failed: %s", method, reply.Description)
	}

	postID := strconv.FormatInt(reply.Result.MessageID, 10)
	t.log.Info("single media sent", "message_id", postID)
	return Response{Success: true, Data: reply.Result, PostID: postID}, nil
}

// sendMediaGroup batches all items into one request. Each file becomes a
// distinct multipart part referenced by attach:// name; Telegram shows a
// caption only on the first item of a group.
func (t *Telegram) sendMediaGroup(ctx context.Context, content PostContent) (Response, error) {
	type inputMedia struct {
		Type      string `json:"type"`
		Media     string `json:"media"`
		Caption   string `json:"caption,omitempty"`
		ParseMode string `json:"parse_mode,omitempty"`
	}

	fields := map[string]string{"chat_id": t.cfg.ChatID}
	files := make([]formFile, 0, len(content.Media))
	descriptors := make([]inputMedia, 0, len(content.Media))

	client := t.client
	for i, m := range content.Media {
		fieldName := fmt.Sprintf("file_%d", i)
		files = append(files, formFile{field: fieldName, file: m})

		mediaType := "photo"
		if m.Kind == media.KindVideo {
			mediaType = "video"
			client = t.video
		}

		descriptor := inputMedia{Type: mediaType, Media: "attach://" + fieldName}
		if i == 0 && content.Text != "" {
			descriptor.Caption = content.Text
			descriptor.ParseMode = "HTML"
		}
		descriptors = append(descriptors, descriptor)
	}

	mediaJSON, err := json.Marshal(descriptors)
	if err != nil {
		return Response{}, fmt.Errorf("marshal media descriptors: %w", err)
	}
	fields["media"] = string(mediaJSON)

	var reply struct {
		OK          bool              `json:"ok"`
		Result      []telegramMessage `json:"result"`
		Description string            `json:"description"`
	}
	if err := postMultipart(ctx, client, t.method("sendMediaGroup"), fields, files, &reply); err != nil {
		return Response{}, err
	}
	if !reply.OK {
		return Response{}, fmt.Errorf("sendMediaGroup failed: %s", reply.Description)
	}
	if len(reply.Result) == 0 {
		return Response{}, fmt.Errorf("sendMediaGroup returned no messages")
	}

	postID := strconv.FormatInt(reply.Result[0].MessageID, 10)
	t.log.Info("media group sent", "messages", len(reply.Result), "first_message_id", postID)
	return Response{Success: true, Data: reply.Result, PostID: postID}, nil
}

func (t *Telegram) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.cfg.BaseURL, t.cfg.BotToken, name)
}
