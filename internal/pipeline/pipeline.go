// Package pipeline runs one fetch, merge and print pass.
package pipeline

import (
	"context"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/good-yellow-bee/wtc/internal/icinga"
	"github.com/good-yellow-bee/wtc/internal/models"
	"github.com/good-yellow-bee/wtc/internal/report"
	"github.com/good-yellow-bee/wtc/pkg/config"
)

// Fetcher loads the notifications of a list of instances.
type Fetcher interface {
	FetchAll(ctx context.Context, instances []string) ([][]*models.Notification, error)
}

// Pipeline wires a fetcher to a printer.
type Pipeline struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	fetcher  func(opts *config.Options) Fetcher
}

// New creates a pipeline writing to out. newFetcher builds the fetcher for
// an options snapshot so a reloaded config takes effect on the next pass.
func New(out io.Writer, newFetcher func(opts *config.Options) Fetcher) *Pipeline {
	return &Pipeline{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		fetcher:  newFetcher,
	}
}

// WithRenderer overrides the color renderer.
func (p *Pipeline) WithRenderer(r *lipgloss.Renderer) *Pipeline {
	p.renderer = r
	return p
}

// Run fetches every instance in opts, merges the results and prints them.
// It returns the number of notifications printed.
func (p *Pipeline) Run(ctx context.Context, opts *config.Options) (int, error) {
	lists, err := p.fetcher(opts).FetchAll(ctx, opts.Instances)
	if err != nil {
		return 0, err
	}

	printer := report.NewPrinter(p.out, report.PrinterConfig{
		Filter:      opts.FilterRE,
		Limit:       opts.Limit,
		DisableURLs: opts.DisableURLs,
		Format:      report.Format(opts.Output),
		Renderer:    p.renderer,
	})
	return printer.Print(report.Merge(lists...))
}

// IcingaFetcher returns a fetcher factory backed by icinga.Client. password
// is used unless the options snapshot sets its own, possibly empty.
func IcingaFetcher(password string, logger *log.Logger) func(opts *config.Options) Fetcher {
	return func(opts *config.Options) Fetcher {
		pw := password
		if opts.PasswordSet {
			pw = opts.Password
		}
		return icinga.NewClient(icinga.Config{
			User:     opts.User,
			Password: pw,
			Lookback: opts.Lookback,
			Timeout:  opts.Timeout,
		}, logger)
	}
}
