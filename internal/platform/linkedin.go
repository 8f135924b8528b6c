package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/crosspost-cli/crosspost/internal/logutil"
	"github.com/crosspost-cli/crosspost/internal/media"
	"github.com/crosspost-cli/crosspost/internal/retry"
)

const (
	linkedinName           = "linkedin"
	defaultLinkedInBaseURL = "https://api.linkedin.com/v2"

	restliProtocolVersion = "2.0.0"
)

// LinkedInConfig holds the UGC API settings for a member.
type LinkedInConfig struct {
	AccessToken string
	PersonID    string
	BaseURL     string
}

// LinkedIn posts member shares through the three-phase asset flow:
// register an upload slot, upload the bytes, then compose one share
// referencing every asset.
type LinkedIn struct {
	cfg    LinkedInConfig
	policy retry.Policy
	client *http.Client
	video  *http.Client
	log    *log.Logger
}

// NewLinkedIn creates the LinkedIn adapter.
func NewLinkedIn(cfg LinkedInConfig, policy retry.Policy) *LinkedIn {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultLinkedInBaseURL
	}
	return &LinkedIn{
		cfg:    cfg,
		policy: policy,
		client: &http.Client{Timeout: requestTimeout},
		video:  &http.Client{Timeout: videoUploadTimeout},
		log:    logutil.Platform(linkedinName),
	}
}

// Name returns the registry key.
func (li *LinkedIn) Name() string { return linkedinName }

// IsConfigured reports whether the access token and person ID are set.
func (li *LinkedIn) IsConfigured() bool {
	return li.cfg.AccessToken != "" && li.cfg.PersonID != ""
}

// ValidateConfig reads the member profile.
func (li *LinkedIn) ValidateConfig(ctx context.Context) bool {
	if !li.IsConfigured() {
		li.log.Error("not configured, missing access token or person ID")
		return false
	}

	reqURL := li.cfg.BaseURL + "/people/~:(id,firstName,lastName)"
	if err := getJSON(ctx, li.client, reqURL, li.headers(), nil); err != nil {
		li.log.Error("configuration validation failed", "error", err)
		return false
	}

	li.log.Info("configuration validated")
	return true
}

// Post publishes a share. Text-only skips the asset phases entirely;
// with media, every register and upload must succeed before the single
// compose call. Registered-but-uncomposed assets are left behind on the
// platform when a later phase fails.
func (li *LinkedIn) Post(ctx context.Context, content PostContent) Response {
	if !li.IsConfigured() {
		return failure("LinkedIn not configured")
	}

	resp, err := retry.Do(ctx, li.policy, linkedinName, func(ctx context.Context) (Response, error) {
		assets := make([]string, 0, len(content.Media))
		for _, m := range content.Media {
			asset, uploadURL, err := li.registerUpload(ctx, m)
			if err != nil {
				return Response{}, fmt.Errorf("register %s: %w", m.Name(), err)
			}
			if err := li.uploadMedia(ctx, m, uploadURL); err != nil {
				return Response{}, fmt.Errorf("upload %s: %w", m.Name(), err)
			}
			assets = append(assets, asset)
		}
		return li.createShare(ctx, content, assets)
	})
	if err != nil {
		return failure(err.Error())
	}
	return resp
}

const (
	recipeImage = "urn:li:digitalmediaRecipe:feedshare-image"
	recipeVideo = "urn:li:digitalmediaRecipe:feedshare-video"

	uploadMechanismKey = "com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"
)

type registerUploadRequest struct {
	RegisterUploadRequest struct {
		Recipes              []string              `json:"recipes"`
		Owner                string                `json:"owner"`
		ServiceRelationships []serviceRelationship `json:"serviceRelationships"`
	} `json:"registerUploadRequest"`
}

type serviceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type registerUploadResponse struct {
	Value struct {
		Asset           string `json:"asset"`
		UploadMechanism map[string]struct {
			UploadURL string `json:"uploadUrl"`
		} `json:"uploadMechanism"`
	} `json:"value"`
}

// registerUpload declares the asset and receives the upload slot.
func (li *LinkedIn) registerUpload(ctx context.Context, m media.File) (asset, uploadURL string, err error) {
	recipe := recipeImage
	if m.Kind == media.KindVideo {
		recipe = recipeVideo
	}

	var payload registerUploadRequest
	payload.RegisterUploadRequest.Recipes = []string{recipe}
	payload.RegisterUploadRequest.Owner = li.author()
	payload.RegisterUploadRequest.ServiceRelationships = []serviceRelationship{
		{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
	}

	var reply registerUploadResponse
	reqURL := li.cfg.BaseURL + "/assets?action=registerUpload"
	if err := postJSON(ctx, li.client, reqURL, li.headers(), payload, &reply); err != nil {
		return "", "", err
	}

	mechanism, ok := reply.Value.UploadMechanism[uploadMechanismKey]
	if !ok || mechanism.UploadURL == "" {
		return "", "", fmt.Errorf("no upload URL in register response")
	}
	if reply.Value.Asset == "" {
		return "", "", fmt.Errorf("no asset URN in register response")
	}
	return reply.Value.Asset, mechanism.UploadURL, nil
}

// uploadMedia transfers the raw bytes to the slot's URL.
func (li *LinkedIn) uploadMedia(ctx context.Context, m media.File, uploadURL string) error {
	data, err := readFile(m.Path)
	if err != nil {
		return err
	}

	contentType := m.MIME
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	client := li.client
	if m.Kind == media.KindVideo {
		client = li.video
	}
	return putBytes(ctx, client, uploadURL, contentType, data, map[string]string{
		"Authorization": "Bearer " + li.cfg.AccessToken,
	})
}

type shareText struct {
	Text string `json:"text"`
}

type shareMedia struct {
	Status      string    `json:"status"`
	Description shareText `json:"description"`
	Media       string    `json:"media"`
	Title       shareText `json:"title"`
}

type shareContent struct {
	ShareCommentary    shareText    `json:"shareCommentary"`
	ShareMediaCategory string       `json:"shareMediaCategory"`
	Media              []shareMedia `json:"media,omitempty"`
}

type ugcPostRequest struct {
	Author          string `json:"author"`
	LifecycleState  string `json:"lifecycleState"`
	SpecificContent struct {
		ShareContent shareContent `json:"com.linkedin.ugc.ShareContent"`
	} `json:"specificContent"`
	Visibility struct {
		MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
	} `json:"visibility"`
}

// createShare issues the one compose call; single and multi media differ
// only in the media list length and the declared category.
func (li *LinkedIn) createShare(ctx context.Context, content PostContent, assets []string) (Response, error) {
	items := make([]shareMedia, 0, len(assets))
	for i, asset := range assets {
		title := "Media Post"
		if len(assets) > 1 {
			title = fmt.Sprintf("Media %d", i+1)
		}
		items = append(items, shareMedia{
			Status:      "READY",
			Description: shareText{Text: content.Text},
			Media:       asset,
			Title:       shareText{Text: title},
		})
	}

	var payload ugcPostRequest
	payload.Author = li.author()
	payload.LifecycleState = "PUBLISHED"
	payload.SpecificContent.ShareContent = shareContent{
		ShareCommentary:    shareText{Text: content.Text},
		ShareMediaCategory: shareCategory(content.Media),
		Media:              items,
	}
	payload.Visibility.MemberNetworkVisibility = "PUBLIC"

	var result struct {
		ID string `json:"id"`
	}
	if err := postJSON(ctx, li.client, li.cfg.BaseURL+"/ugcPosts", li.headers(), payload, &result); err != nil {
		return Response{}, fmt.Errorf("create share: %w", err)
	}

	li.log.Info("share created", "post_id", result.ID, "media", len(assets))
	return Response{Success: true, Data: result, PostID: result.ID}, nil
}

// shareCategory maps the media set onto the declared share category.
func shareCategory(files []media.File) string {
	if len(files) == 0 {
		return "NONE"
	}
	for _, f := range files {
		if f.Kind == media.KindVideo {
			return "VIDEO"
		}
	}
	return "IMAGE"
}

func (li *LinkedIn) author() string {
	return "urn:li:person:" + li.cfg.PersonID
}

func (li *LinkedIn) headers() map[string]string {
	return map[string]string{
		"Authorization":             "Bearer " + li.cfg.AccessToken,
		"X-Restli-Protocol-Version": restliProtocolVersion,
	}
}
