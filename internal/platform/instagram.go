package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/crosspost-cli/crosspost/internal/logutil"
	"github.com/crosspost-cli/crosspost/internal/media"
	"github.com/crosspost-cli/crosspost/internal/retry"
)

const (
	instagramName           = "instagram"
	defaultInstagramBaseURL = "https://graph.facebook.com"
	defaultInstagramVersion = "v18.0"
)

// InstagramConfig holds the Graph API settings for a business account.
// MediaBaseURL is the public base under which local media files are
// reachable; the Graph API only ingests media from public URLs.
type InstagramConfig struct {
	AccessToken  string
	AccountID    string
	BaseURL      string
	APIVersion   string
	MediaBaseURL string
}

// Instagram posts to an Instagram business account through the two-phase
// container/publish Graph API flow.
type Instagram struct {
	cfg    InstagramConfig
	policy retry.Policy
	client *http.Client
	log    *log.Logger
}

// NewInstagram creates the Instagram adapter.
func NewInstagram(cfg InstagramConfig, policy retry.Policy) *Instagram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultInstagramBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultInstagramVersion
	}
	return &Instagram{
		cfg:    cfg,
		policy: policy,
		client: &http.Client{Timeout: requestTimeout},
		log:    logutil.Platform(instagramName),
	}
}

// Name returns the registry key.
func (ig *Instagram) Name() string { return instagramName }

// IsConfigured reports whether the access token and account ID are set.
func (ig *Instagram) IsConfigured() bool {
	return ig.cfg.AccessToken != "" && ig.cfg.AccountID != ""
}

// ValidateConfig reads the account's id and username.
func (ig *Instagram) ValidateConfig(ctx context.Context) bool {
	if !ig.IsConfigured() {
		ig.log.Error("not configured, missing access token or account ID")
		return false
	}

	reqURL := fmt.Sprintf("%s/%s/%s?fields=id,username&access_token=%s",
		ig.cfg.BaseURL, ig.cfg.APIVersion, ig.cfg.AccountID, url.QueryEscape(ig.cfg.AccessToken))

	var account struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := getJSON(ctx, ig.client, reqURL, nil, &account); err != nil {
		ig.log.Error("configuration validation failed", "error", err)
		return false
	}

	ig.log.Info("configuration validated", "username", account.Username)
	return true
}

// Post publishes content. Instagram rejects text-only posts.
func (ig *Instagram) Post(ctx context.Context, content PostContent) Response {
	if !ig.IsConfigured() {
		return failure("Instagram not configured")
	}
	if len(content.Media) == 0 {
		return failure("Instagram requires at least one media file")
	}

	resp, err := retry.Do(ctx, ig.policy, instagramName, func(ctx context.Context) (Response, error) {
		if len(content.Media) == 1 {
			return ig.postSingleMedia(ctx, content)
		}
		return ig.postCarousel(ctx, content)
	})
	if err != nil {
		return failure(err.Error())
	}
	return resp
}

func (ig *Instagram) postSingleMedia(ctx context.Context, content PostContent) (Response, error) {
	containerID, err := ig.createContainer(ctx, content.Media[0], content.Text)
	if err != nil {
		return Response{}, err
	}

	resp, err := ig.publishContainer(ctx, containerID)
	if err != nil {
		return Response{}, err
	}

	ig.log.Info("single media post successful", "post_id", resp.PostID)
	return resp, nil
}

// postCarousel creates a child container per item, one parent carousel
// container referencing the children, then publishes the parent. A
// failing step aborts; already-created child containers are left behind
// as platform-side drafts.
func (ig *Instagram) postCarousel(ctx context.Context, content PostContent) (Response, error) {
	children := make([]string, 0, len(content.Media))
	for _, m := range content.Media {
		containerID, err := ig.createContainer(ctx, m, "")
		if err != nil {
			return Response{}, err
		}
		children = append(children, containerID)
	}

	payload := map[string]string{
		"media_type":   "CAROUSEL",
		"children":     strings.Join(children, ","),
		"access_token": ig.cfg.AccessToken,
	}
	if content.Text != "" {
		payload["caption"] = content.Text
	}

	var carousel struct {
		ID string `json:"id"`
	}
	if err := postJSON(ctx, ig.client, ig.endpoint("media"), nil, payload, &carousel); err != nil {
		return Response{}, fmt.Errorf("create carousel container: %w", err)
	}
	if carousel.ID == "" {
		return Response{}, fmt.Errorf("no container ID returned for carousel")
	}

	resp, err := ig.publishContainer(ctx, carousel.ID)
	if err != nil {
		return Response{}, err
	}

	ig.log.Info("carousel post successful", "post_id", resp.PostID, "items", len(children))
	return resp, nil
}

func (ig *Instagram) createContainer(ctx context.Context, m media.File, caption string) (string, error) {
	payload := map[string]string{
		"access_token": ig.cfg.AccessToken,
	}
	if m.Kind == media.KindVideo {
		payload["media_type"] = "VIDEO"
		payload["video_url"] = ig.mediaURL(m)
	} else {
		payload["media_type"] = "IMAGE"
		payload["image_url"] = ig.mediaURL(m)
	}
	if caption != "" {
		payload["caption"] = caption
	}

	var container struct {
		ID string `json:"id"`
	}
	if err := postJSON(ctx, ig.client, ig.endpoint("media"), nil, payload, &container); err != nil {
		return "", fmt.Errorf("create media container: %w", err)
	}
	if container.ID == "" {
		return "", fmt.Errorf("no container ID returned for %s", m.Name())
	}
	return container.ID, nil
}

func (ig *Instagram) publishContainer(ctx context.Context, containerID string) (Response, error) {
	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": ig.cfg.AccessToken,
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := postJSON(ctx, ig.client, ig.endpoint("media_publish"), nil, payload, &result); err != nil {
		return Response{}, fmt.Errorf("publish container: %w", err)
	}

	return Response{Success: true, Data: result, PostID: result.ID}, nil
}

// mediaURL maps a local file onto the configured public media base.
// Serving the file there is the deployment's responsibility.
func (ig *Instagram) mediaURL(m media.File) string {
	return strings.TrimRight(ig.cfg.MediaBaseURL, "/") + "/" + m.Name()
}

func (ig *Instagram) endpoint(suffix string) string {
	return fmt.Sprintf("%s/%s/%s/%s", ig.cfg.BaseURL, ig.cfg.APIVersion, ig.cfg.AccountID, suffix)
}
