// Package media classifies local files into typed media descriptors and
// screens them against per-platform size ceilings before any adapter
// touches them.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// Kind is the media category resolved from a file.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

// ContentKind describes a whole post's content.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentVideo ContentKind = "video"
	ContentMixed ContentKind = "mixed"
)

// File is an immutable descriptor for a classified media file.
type File struct {
	Path string
	Kind Kind
	MIME string
	Size int64
}

// Name returns the base file name.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

var (
	imageExts    = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}}
	videoExts    = map[string]struct{}{".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {}}
	documentExts = map[string]struct{}{".pdf": {}, ".doc": {}, ".docx": {}, ".txt": {}}
)

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// limits maps platform -> kind -> maximum byte size.
var limits = map[string]map[Kind]int64{
	"facebook": {
		KindImage: 4 * 1024 * 1024,
		KindVideo: 1024 * 1024 * 1024,
	},
	"instagram": {
		KindImage: 8 * 1024 * 1024,
		KindVideo: 100 * 1024 * 1024,
	},
	"telegram": {
		KindImage:    10 * 1024 * 1024,
		KindVideo:    50 * 1024 * 1024,
		KindDocument: 50 * 1024 * 1024,
	},
	"linkedin": {
		KindImage: 20 * 1024 * 1024,
		KindVideo: 200 * 1024 * 1024,
	},
}

// Limit returns the byte ceiling for a media kind on a platform. The
// second return is false when the platform imposes no limit for the kind.
func Limit(platform string, kind Kind) (int64, bool) {
	kinds, ok := limits[strings.ToLower(platform)]
	if !ok {
		return 0, false
	}
	limit, ok := kinds[kind]
	return limit, ok
}

// KindForPath resolves the media kind from the file extension.
func KindForPath(path string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExts[ext]; ok {
		return KindImage, true
	}
	if _, ok := videoExts[ext]; ok {
		return KindVideo, true
	}
	if _, ok := documentExts[ext]; ok {
		return KindDocument, true
	}
	return "", false
}

// Classify stats a file and resolves its kind, MIME type, and size.
func Classify(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}

	kind, ok := KindForPath(path)
	if !ok {
		return File{}, fmt.Errorf("unsupported file type: %s", filepath.Base(path))
	}

	return File{
		Path: path,
		Kind: kind,
		MIME: detectMIME(path),
		Size: info.Size(),
	}, nil
}

// detectMIME sniffs the file header and falls back to the extension
// table, then to application/octet-stream.
func detectMIME(path string) string {
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		head := make([]byte, 262)
		n, _ := io.ReadFull(f, head)
		if t, err := filetype.Match(head[:n]); err == nil && t != types.Unknown {
			return t.MIME.Value
		}
	}
	if mime, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// ValidationResult collects the outcome of a batch validation.
type ValidationResult struct {
	Valid   []File
	Invalid []string
	Errors  []string
}

// OK reports whether every file passed validation.
func (r ValidationResult) OK() bool {
	return len(r.Invalid) == 0
}

// ValidateFiles screens a batch of paths against a platform's size
// ceilings. Invalid entries never abort the batch; the caller decides
// whether any invalid file fails the whole post.
func ValidateFiles(paths []string, platform string) ValidationResult {
	var result ValidationResult

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			result.Invalid = append(result.Invalid, path)
			result.Errors = append(result.Errors, fmt.Sprintf("file not found: %s", path))
			continue
		}

		file, err := Classify(path)
		if err != nil {
			result.Invalid = append(result.Invalid, path)
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		if limit, ok := Limit(platform, file.Kind); ok && file.Size > limit {
			result.Invalid = append(result.Invalid, path)
			result.Errors = append(result.Errors, fmt.Sprintf(
				"file too large: %s (%s) exceeds %s %s limit (%s)",
				file.Name(), humanize.IBytes(uint64(file.Size)),
				platform, file.Kind, humanize.IBytes(uint64(limit))))
			continue
		}

		result.Valid = append(result.Valid, file)
	}

	return result
}

// Prepare classifies every path, in order. Any failure aborts.
func Prepare(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, path := range paths {
		file, err := Classify(path)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// ClassifyContent derives the post's content kind from its media set.
func ClassifyContent(files []File) ContentKind {
	if len(files) == 0 {
		return ContentText
	}

	hasImages, hasVideos := false, false
	for _, f := range files {
		switch f.Kind {
		case KindImage:
			hasImages = true
		case KindVideo:
			hasVideos = true
		}
	}

	switch {
	case hasImages && hasVideos:
		return ContentMixed
	case hasVideos:
		return ContentVideo
	default:
		return ContentImage
	}
}
