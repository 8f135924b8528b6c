package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/crosspost-cli/crosspost/internal/logutil"
	"github.com/crosspost-cli/crosspost/internal/media"
	"github.com/crosspost-cli/crosspost/internal/retry"
)

const (
	facebookName           = "facebook"
	defaultFacebookBaseURL = "https://graph.facebook.com"
	defaultFacebookVersion = "v18.0"
)

// FacebookConfig holds the Graph API settings for a page.
type FacebookConfig struct {
	AccessToken string
	PageID      string
	BaseURL     string
	APIVersion  string
}

// Facebook posts to a Facebook page via the Graph API.
type Facebook struct {
	cfg    FacebookConfig
	policy retry.Policy
	client *http.Client
	video  *http.Client
	log    *log.Logger
}

// NewFacebook creates the Facebook adapter.
func NewFacebook(cfg FacebookConfig, policy retry.Policy) *Facebook {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultFacebookBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultFacebookVersion
	}
	return &Facebook{
		cfg:    cfg,
		policy: policy,
		client: &http.Client{Timeout: requestTimeout},
		video:  &http.Client{Timeout: videoUploadTimeout},
		log:    logutil.Platform(facebookName),
	}
}

// Name returns the registry key.
func (f *Facebook) Name() string { return facebookName }

// IsConfigured reports whether the access token and page ID are set.
func (f *Facebook) IsConfigured() bool {
	return f.cfg.AccessToken != "" && f.cfg.PageID != ""
}

// ValidateConfig performs an authenticated "who am I" read.
func (f *Facebook) ValidateConfig(ctx context.Context) bool {
	if !f.IsConfigured() {
		f.log.Error("not configured, missing access token or page ID")
		return false
	}

	reqURL := fmt.Sprintf("%s/%s/me?access_token=%s",
		f.cfg.BaseURL, f.cfg.APIVersion, url.QueryEscape(f.cfg.AccessToken))
	if err := getJSON(ctx, f.client, reqURL, nil, nil); err != nil {
		f.log.Error("configuration validation failed", "error", err)
		return false
	}

	f.log.Info("configuration validated")
	return true
}

// Post publishes content to the page feed. Facebook cannot mix images
// and videos in one post, nor attach more than one video.
func (f *Facebook) Post(ctx context.Context, content PostContent) Response {
	if !f.IsConfigured() {
		return failure("Facebook not configured")
	}

	images, videos := 0, 0
	for _, m := range content.Media {
		if m.Kind == media.KindVideo {
			videos++
		} else {
			images++
		}
	}
	if videos > 0 && images > 0 {
		return failure("Facebook does not support mixing images and videos in the same post")
	}
	if videos > 1 {
		return failure("Facebook does not support multiple videos in the same post")
	}

	resp, err := retry.Do(ctx, f.policy, facebookName, func(ctx context.Context) (Response, error) {
		switch len(content.Media) {
		case 0:
			return f.postText(ctx, content.Text)
		case 1:
			return f.postSingleMedia(ctx, content)
		default:
			return f.postMultipleImages(ctx, content)
		}
	})
	if err != nil {
		return failure(err.Error())
	}
	return resp
}

type facebookPostResult struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

func (r facebookPostResult) postID() string {
	if r.PostID != "" {
		return r.PostID
	}
	return r.ID
}

func (f *Facebook) postText(ctx context.Context, text string) (Response, error) {
	payload := map[string]string{
		"message":      text,
		"access_token": f.cfg.AccessToken,
	}

	var result facebookPostResult
	if err := postJSON(ctx, f.client, f.endpoint("feed"), nil, payload, &result); err != nil {
		return Response{}, err
	}

	f.log.Info("text post successful", "post_id", result.postID())
	return Response{Success: true, Data: result, PostID: result.postID()}, nil
}

func (f *Facebook) postSingleMedia(ctx context.Context, content PostContent) (Response, error) {
	m := content.Media[0]

	fields := map[string]string{"access_token": f.cfg.AccessToken}
	if content.Text != "" {
		fields["message"] = content.Text
	}

	endpoint, client := "photos", f.client
	if m.Kind == media.KindVideo {
		endpoint, client = "videos", f.video
	}

	var result facebookPostResult
	err := postMultipart(ctx, client, f.endpoint(endpoint), fields, []formFile{{field: "source", file: m}}, &result)
	if err != nil {
		return Response{}, err
	}

	f.log.Info("single media post successful", "post_id", result.postID())
	return Response{Success: true, Data: result, PostID: result.postID()}, nil
}

// postMultipleImages uploads each image unpublished, then creates one
// feed item referencing every upload.
func (f *Facebook) postMultipleImages(ctx context.Context, content PostContent) (Response, error) {
	type attachedMedia struct {
		MediaFBID string `json:"media_fbid"`
	}
	attached := make([]attachedMedia, 0, len(content.Media))

	for _, m := range content.Media {
		fields := map[string]string{
			"access_token": f.cfg.AccessToken,
			"published":    "false",
		}

		var result facebookPostResult
		err := postMultipart(ctx, f.client, f.endpoint("photos"), fields, []formFile{{field: "source", file: m}}, &result)
		if err != nil {
			return Response{}, fmt.Errorf("upload %s: %w", m.Name(), err)
		}
		attached = append(attached, attachedMedia{MediaFBID: result.ID})
	}

	attachedJSON, err := json.Marshal(attached)
	if err != nil {
		return Response{}, fmt.Errorf("marshal attached media: %w", err)
	}

	payload := map[string]string{
		"access_token":   f.cfg.AccessToken,
		"attached_media": string(attachedJSON),
	}
	if content.Text != "" {
		payload["message"] = content.Text
	}

	var result facebookPostResult
	if err := postJSON(ctx, f.client, f.endpoint("feed"), nil, payload, &result); err != nil {
		return Response{}, err
	}

	f.log.Info("multi image post successful", "post_id", result.postID(), "images", len(attached))
	return Response{Success: true, Data: result, PostID: result.postID()}, nil
}

func (f *Facebook) endpoint(suffix string) string {
	return fmt.Sprintf("%s/%s/%s/%s", f.cfg.BaseURL, f.cfg.APIVersion, f.cfg.PageID, suffix)
}
