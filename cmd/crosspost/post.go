package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crosspost-cli/crosspost/internal/app"
	"github.com/crosspost-cli/crosspost/internal/config"
	"github.com/crosspost-cli/crosspost/internal/history"
	"github.com/crosspost-cli/crosspost/internal/logutil"
	"github.com/crosspost-cli/crosspost/internal/media"
	"github.com/crosspost-cli/crosspost/internal/platform"
)

var (
	postPlatforms string
	postContent   string
	postMedia     []string
	postDryRun    bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create and publish a post",
	Long: `Publish text and optional media to one or more platforms.

Examples:
  crosspost post --platforms telegram --content "hello world"
  crosspost post --platforms facebook,linkedin --content "release" --media shot.png
  crosspost post --platforms all --content "ship it" --dry-run`,
	RunE: runPost,
}

func init() {
	postCmd.Flags().StringVarP(&postPlatforms, "platforms", "p", "", `Comma-separated platforms (facebook,instagram,telegram,linkedin) or "all"`)
	postCmd.Flags().StringVarP(&postContent, "content", "c", "", "Post text")
	postCmd.Flags().StringSliceVarP(&postMedia, "media", "m", nil, "Media file paths (images/videos)")
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Show what would be posted without posting")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry := app.NewRegistry(cfg)

	targets, err := resolvePlatforms(postPlatforms, registry.Names())
	if err != nil {
		return err
	}

	text := sanitizeText(postContent)
	if text == "" && len(postMedia) == 0 {
		return errors.New("no content specified, use --content or --media")
	}

	// Any invalid media file aborts the whole post, for every platform.
	for _, name := range targets {
		if result := media.ValidateFiles(postMedia, name); !result.OK() {
			return fmt.Errorf("invalid media files: %s", strings.Join(result.Errors, ", "))
		}
	}

	files, err := media.Prepare(postMedia)
	if err != nil {
		return fmt.Errorf("prepare media: %w", err)
	}

	content := platform.PostContent{
		Text:  text,
		Media: files,
		Kind:  media.ClassifyContent(files),
	}

	if postDryRun {
		fmt.Printf("[dry-run] would post %s content to %s\n", content.Kind, strings.Join(targets, ", "))
		if text != "" {
			fmt.Printf("[dry-run] text: %q\n", text)
		}
		for _, f := range files {
			fmt.Printf("[dry-run] media: %s (%s, %s)\n", f.Path, f.Kind, f.MIME)
		}
		return nil
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer application.Close()

	report := application.Publisher.Publish(ctx, targets, content)

	for _, name := range report.Order {
		resp := report.Results[name]
		if resp.Success {
			fmt.Printf("  ok %s", name)
			if resp.PostID != "" {
				fmt.Printf(" (post id %s)", resp.PostID)
			}
			fmt.Println()
		} else {
			fmt.Printf("  failed %s: %s\n", name, resp.Error)
		}

		if _, err := application.History.Add(ctx, history.Record{
			Platform:    name,
			Success:     resp.Success,
			PostID:      resp.PostID,
			Error:       resp.Error,
			ContentKind: string(content.Kind),
		}); err != nil {
			logutil.Default().Warn("failed to record post", "platform", name, "error", err)
		}
	}

	fmt.Printf("\n%d/%d platforms succeeded\n", report.Succeeded, report.Total())

	if report.AllFailed() {
		return errors.New("all platforms failed")
	}
	return nil
}

// resolvePlatforms expands "all" and validates each requested name.
func resolvePlatforms(flag string, known []string) ([]string, error) {
	if flag == "" {
		return nil, errors.New("no platforms specified, use --platforms")
	}
	if strings.EqualFold(strings.TrimSpace(flag), "all") {
		return known, nil
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, name := range known {
		knownSet[name] = struct{}{}
	}

	var targets []string
	seen := map[string]struct{}{}
	for _, raw := range strings.Split(flag, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, ok := knownSet[name]; !ok {
			return nil, fmt.Errorf("invalid platform %q, valid platforms: %s", name, strings.Join(known, ", "))
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		targets = append(targets, name)
	}

	if len(targets) == 0 {
		return nil, errors.New("no platforms specified, use --platforms")
	}
	return targets, nil
}

// sanitizeText collapses runs of whitespace and trims the ends.
func sanitizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
