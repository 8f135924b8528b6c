package platform

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crosspost-cli/crosspost/internal/media"
	"github.com/crosspost-cli/crosspost/internal/retry"
)

// oneShot is the retry policy used in adapter tests: a single attempt
// keeps failure-path assertions exact.
func oneShot() retry.Policy {
	return retry.Policy{MaxAttempts: 1}
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// tempMedia writes a small file and classifies it.
func tempMedia(t *testing.T, name string, data []byte) media.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	file, err := media.Classify(path)
	require.NoError(t, err)
	return file
}

func tempImage(t *testing.T, name string) media.File {
	return tempMedia(t, name, pngHeader)
}

func tempVideo(t *testing.T, name string) media.File {
	return tempMedia(t, name, []byte("fake video bytes"))
}

// countingServer wraps a handler and counts requests.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if handler != nil {
			handler(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}
