// Package platform implements the posting adapters for the supported
// social networks behind one capability interface.
package platform

import (
	"context"
	"time"

	"github.com/crosspost-cli/crosspost/internal/media"
)

const (
	requestTimeout = 30 * time.Second

	// Video uploads may run for minutes; they get their own transport.
	videoUploadTimeout = 5 * time.Minute
)

// PostContent is the normalized payload shared by every adapter.
type PostContent struct {
	Text  string
	Media []media.File
	Kind  media.ContentKind
}

// Response is the uniform result of an adapter operation. Adapters never
// let a raw transport error escape Post; everything is normalized here.
type Response struct {
	Success bool
	Data    any
	Error   string
	PostID  string
}

// Platform is the capability set each adapter implements. Adapters are
// stateless across calls; each owns only its configuration slice.
type Platform interface {
	// Name returns the platform's registry key.
	Name() string

	// IsConfigured reports whether all mandatory configuration fields
	// are present. No network call.
	IsConfigured() bool

	// ValidateConfig performs one lightweight authenticated read to
	// confirm the credential is live. Never returns an error; failures
	// are logged and reported as false.
	ValidateConfig(ctx context.Context) bool

	// Post publishes the content and reports the outcome.
	Post(ctx context.Context, content PostContent) Response
}

func failure(msg string) Response {
	return Response{Success: false, Error: msg}
}
