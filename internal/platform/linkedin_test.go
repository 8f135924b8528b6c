package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosspost-cli/crosspost/internal/media"
)

func newTestLinkedIn(baseURL string) *LinkedIn {
	return NewLinkedIn(LinkedInConfig{
		AccessToken: "li-token",
		PersonID:    "AbCdEf",
		BaseURL:     baseURL,
	}, oneShot())
}

// linkedInShare is the subset of the compose payload the tests inspect.
type linkedInShare struct {
	Author          string `json:"author"`
	LifecycleState  string `json:"lifecycleState"`
	SpecificContent struct {
		ShareContent struct {
			ShareCommentary struct {
				Text string `json:"text"`
			} `json:"shareCommentary"`
			ShareMediaCategory string `json:"shareMediaCategory"`
			Media              []struct {
				Status string `json:"status"`
				Media  string `json:"media"`
				Title  struct {
					Text string `json:"text"`
				} `json:"title"`
			} `json:"media"`
		} `json:"com.linkedin.ugc.ShareContent"`
	} `json:"specificContent"`
	Visibility struct {
		MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
	} `json:"visibility"`
}

func assertRestliHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer li-token", r.Header.Get("Authorization"))
	assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
}

// muxServer starts a test server whose handlers may reference its own URL.
func muxServer(t *testing.T, register func(mux *http.ServeMux, serverURL func() string)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewUnstartedServer(mux)
	register(mux, func() string { return server.URL })
	server.Start()
	t.Cleanup(server.Close)
	return server
}

func TestLinkedInPostNotConfigured(t *testing.T) {
	server, calls := countingServer(t, nil)
	li := NewLinkedIn(LinkedInConfig{BaseURL: server.URL}, oneShot())

	resp := li.Post(context.Background(), PostContent{Text: "hi"})

	assert.False(t, resp.Success)
	assert.Equal(t, "LinkedIn not configured", resp.Error)
	assert.Zero(t, calls.Load())
}

func TestLinkedInPostTextOnly(t *testing.T) {
	server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ugcPosts", r.URL.Path)
		assertRestliHeaders(t, r)

		var share linkedInShare
		require.NoError(t, json.NewDecoder(r.Body).Decode(&share))
		assert.Equal(t, "urn:li:person:AbCdEf", share.Author)
		assert.Equal(t, "PUBLISHED", share.LifecycleState)
		assert.Equal(t, "hello network", share.SpecificContent.ShareContent.ShareCommentary.Text)
		assert.Equal(t, "NONE", share.SpecificContent.ShareContent.ShareMediaCategory)
		assert.Empty(t, share.SpecificContent.ShareContent.Media)
		assert.Equal(t, "PUBLIC", share.Visibility.MemberNetworkVisibility)

		fmt.Fprint(w, `{"id":"urn:li:share:1"}`)
	})

	li := newTestLinkedIn(server.URL)
	resp := li.Post(context.Background(), PostContent{Text: "hello network"})

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "urn:li:share:1", resp.PostID)
	assert.Equal(t, int64(1), calls.Load(), "text-only must skip the asset phases")
}

func TestLinkedInPostSingleImage(t *testing.T) {
	var uploadedBytes []byte
	server := muxServer(t, func(mux *http.ServeMux, serverURL func() string) {
		mux.HandleFunc("/assets", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "registerUpload", r.URL.Query().Get("action"))
			assertRestliHeaders(t, r)

			var payload struct {
				RegisterUploadRequest struct {
					Recipes              []string `json:"recipes"`
					Owner                string   `json:"owner"`
					ServiceRelationships []struct {
						RelationshipType string `json:"relationshipType"`
						Identifier       string `json:"identifier"`
					} `json:"serviceRelationships"`
				} `json:"registerUploadRequest"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, []string{"urn:li:digitalmediaRecipe:feedshare-image"}, payload.RegisterUploadRequest.Recipes)
			assert.Equal(t, "urn:li:person:AbCdEf", payload.RegisterUploadRequest.Owner)
			require.Len(t, payload.RegisterUploadRequest.ServiceRelationships, 1)
			assert.Equal(t, "OWNER", payload.RegisterUploadRequest.ServiceRelationships[0].RelationshipType)
			assert.Equal(t, "urn:li:userGeneratedContent", payload.RegisterUploadRequest.ServiceRelationships[0].Identifier)

			fmt.Fprintf(w, `{"value":{"asset":"urn:li:digitalmediaAsset:1","uploadMechanism":{"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest":{"uploadUrl":"%s/upload/1"}}}}`, serverURL())
		})
		mux.HandleFunc("/upload/1", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			assert.Equal(t, "Bearer li-token", r.Header.Get("Authorization"))
			uploadedBytes, _ = io.ReadAll(r.Body)
		})
		mux.HandleFunc("/ugcPosts", func(w http.ResponseWriter, r *http.Request) {
			var share linkedInShare
			require.NoError(t, json.NewDecoder(r.Body).Decode(&share))
			assert.Equal(t, "IMAGE", share.SpecificContent.ShareContent.ShareMediaCategory)
			require.Len(t, share.SpecificContent.ShareContent.Media, 1)
			assert.Equal(t, "READY", share.SpecificContent.ShareContent.Media[0].Status)
			assert.Equal(t, "urn:li:digitalmediaAsset:1", share.SpecificContent.ShareContent.Media[0].Media)
			assert.Equal(t, "Media Post", share.SpecificContent.ShareContent.Media[0].Title.Text)

			fmt.Fprint(w, `{"id":"urn:li:share:2"}`)
		})
	})

	li := newTestLinkedIn(server.URL)
	content := PostContent{Text: "with image", Media: []media.File{tempImage(t, "pic.png")}}
	resp := li.Post(context.Background(), content)

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "urn:li:share:2", resp.PostID)
	assert.Equal(t, pngHeader, uploadedBytes)
}

func TestLinkedInPostMultipleMedia(t *testing.T) {
	var registered int
	server := muxServer(t, func(mux *http.ServeMux, serverURL func() string) {
		mux.HandleFunc("/assets", func(w http.ResponseWriter, r *http.Request) {
			registered++
			fmt.Fprintf(w, `{"value":{"asset":"urn:li:digitalmediaAsset:%d","uploadMechanism":{"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest":{"uploadUrl":"%s/upload"}}}}`, registered, serverURL())
		})
		mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {})
		mux.HandleFunc("/ugcPosts", func(w http.ResponseWriter, r *http.Request) {
			var share linkedInShare
			require.NoError(t, json.NewDecoder(r.Body).Decode(&share))
			assert.Equal(t, "VIDEO", share.SpecificContent.ShareContent.ShareMediaCategory, "any video in the set makes the share a VIDEO share")
			require.Len(t, share.SpecificContent.ShareContent.Media, 2)
			assert.Equal(t, "urn:li:digitalmediaAsset:1", share.SpecificContent.ShareContent.Media[0].Media)
			assert.Equal(t, "Media 1", share.SpecificContent.ShareContent.Media[0].Title.Text)
			assert.Equal(t, "Media 2", share.SpecificContent.ShareContent.Media[1].Title.Text)

			fmt.Fprint(w, `{"id":"urn:li:share:3"}`)
		})
	})

	li := newTestLinkedIn(server.URL)
	content := PostContent{
		Text:  "mixed share",
		Media: []media.File{tempImage(t, "a.png"), tempVideo(t, "b.mp4")},
	}
	resp := li.Post(context.Background(), content)

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "urn:li:share:3", resp.PostID)
	assert.Equal(t, 2, registered)
}

func TestLinkedInRegisterFailureSkipsCompose(t *testing.T) {
	var composed bool
	server := muxServer(t, func(mux *http.ServeMux, _ func() string) {
		mux.HandleFunc("/assets", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"quota exceeded"}`, http.StatusTooManyRequests)
		})
		mux.HandleFunc("/ugcPosts", func(w http.ResponseWriter, r *http.Request) {
			composed = true
		})
	})

	li := newTestLinkedIn(server.URL)
	resp := li.Post(context.Background(), PostContent{Media: []media.File{tempImage(t, "a.png")}})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "register a.png")
	assert.False(t, composed, "a failed register must abort before compose")
}

func TestLinkedInValidateConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			assertRestliHeaders(t, r)
			fmt.Fprint(w, `{"id":"AbCdEf"}`)
		})
		assert.True(t, newTestLinkedIn(server.URL).ValidateConfig(context.Background()))
	})

	t.Run("unconfigured skips network", func(t *testing.T) {
		server, calls := countingServer(t, nil)
		li := NewLinkedIn(LinkedInConfig{BaseURL: server.URL}, oneShot())
		assert.False(t, li.ValidateConfig(context.Background()))
		assert.Zero(t, calls.Load())
	})
}
