// Package publisher fans one post out to the requested platforms and
// aggregates the per-platform outcomes.
package publisher

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/crosspost-cli/crosspost/internal/logutil"
	"github.com/crosspost-cli/crosspost/internal/platform"
)

// Report collects every platform's outcome for one post request.
type Report struct {
	// Results is keyed by platform name, in no particular order;
	// Order preserves the caller's platform sequence.
	Results map[string]platform.Response
	Order   []string

	Succeeded int
	Failed    int
}

// Total returns the number of platforms attempted.
func (r *Report) Total() int { return r.Succeeded + r.Failed }

// AllSucceeded reports full success.
func (r *Report) AllSucceeded() bool { return r.Failed == 0 && r.Succeeded > 0 }

// AllFailed reports total failure.
func (r *Report) AllFailed() bool { return r.Succeeded == 0 && r.Failed > 0 }

// Publisher posts to platforms sequentially, in caller order, so log
// output stays ordered and backoff delays never overlap.
type Publisher struct {
	registry *platform.Registry
	log      *log.Logger
}

// New creates a publisher over a registry.
func New(registry *platform.Registry) *Publisher {
	return &Publisher{registry: registry, log: logutil.Default()}
}

// Publish posts content to each named platform. One platform's failure
// never stops the remaining platforms; the report always covers every
// requested name.
func (p *Publisher) Publish(ctx context.Context, names []string, content platform.PostContent) *Report {
	report := &Report{Results: make(map[string]platform.Response, len(names))}

	for _, name := range names {
		report.Order = append(report.Order, name)

		adapter := p.registry.Get(name)
		if adapter == nil {
			report.record(name, platform.Response{Error: fmt.Sprintf("platform %s not found", name)})
			continue
		}
		if !adapter.IsConfigured() {
			report.record(name, platform.Response{Error: fmt.Sprintf("platform %s is not configured", name)})
			continue
		}

		p.log.Info("posting", "platform", name, "kind", content.Kind)
		report.record(name, adapter.Post(ctx, content))
	}

	p.log.Info("post run completed",
		"succeeded", report.Succeeded, "failed", report.Failed, "total", report.Total())
	return report
}

func (r *Report) record(name string, resp platform.Response) {
	r.Results[name] = resp
	if resp.Success {
		r.Succeeded++
	} else {
		r.Failed++
	}
}
