// Package plugin wires the quote provider, the snapshot cache and the
// renderer into one menu-bar refresh.
package plugin

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"marketbar/internal/config"
	"marketbar/internal/gate"
	"marketbar/internal/httpx"
	"marketbar/internal/logging"
	"marketbar/internal/provider"
	"marketbar/internal/provider/cache"
	"marketbar/internal/provider/wsj"
	"marketbar/internal/render"
	"marketbar/internal/store"
)

// Runner performs one refresh: fetch (or load) a snapshot, render it and
// write the lines to Out.
type Runner struct {
	Provider provider.Provider
	Renderer render.Renderer
	Symbols  []string
	Out      io.Writer
	Logger   zerolog.Logger
}

// Run writes nothing unless the whole snapshot renders.
func (r *Runner) Run(ctx context.Context) error {
	snap, err := r.Provider.Fetch(ctx, r.Symbols)
	if err != nil {
		return err
	}
	lines, err := r.Renderer.Render(snap, r.Symbols)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	r.Logger.Debug().
		Bool("cached", snap.Cached).
		Int("lines", len(lines)).
		Msg("rendered")

	if _, err := io.WriteString(r.Out, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Options are the knobs that do not come from the config file.
type Options struct {
	Out     io.Writer
	Logger  zerolog.Logger
	Refresh bool
	// HTTPClient replaces the default transport, mainly for tests.
	HTTPClient wsj.HTTPClient
	Now        func() time.Time
}

// New builds a Runner from cfg.
func New(cfg config.Config, opts Options) (*Runner, error) {
	loc, err := time.LoadLocation(cfg.Hours.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	cachePath := cfg.CacheFile
	if cachePath == "" {
		if cachePath, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = httpx.New(time.Duration(cfg.Feed.RequestTimeoutSec) * time.Second)
	}
	clientOpts := []wsj.QuoteClientOption{
		wsj.WithHTTPClient(hc),
		wsj.WithBaseURL(strings.TrimRight(cfg.Feed.BaseURL, "/")),
	}
	if cfg.Feed.EntitlementToken != "" {
		clientOpts = append(clientOpts, wsj.WithCredentials(cfg.Feed.EntitlementToken, cfg.Feed.CKey))
	}
	client := wsj.NewQuoteClient(clientOpts...)

	p := &cache.Provider{
		P:     client,
		Store: &store.File{Path: cachePath},
		Policy: gate.Policy{
			ClosedUntil: cfg.Hours.ClosedUntil,
			ClosedFrom:  cfg.Hours.ClosedFrom,
			MaxAge:      cfg.Hours.MaxCacheAge,
			Location:    loc,
		},
		Refresh: opts.Refresh,
		Now:     opts.Now,
		Logger:  logging.Component(opts.Logger, "cache"),
	}

	style := render.Style{
		FontSize:    cfg.Display.FontSize,
		Font:        cfg.Display.Font,
		UpColor:     cfg.Display.UpColor,
		DownColor:   cfg.Display.DownColor,
		StalePrefix: cfg.Display.StalePrefix,
		ShowRange:   cfg.Display.ShowRange,
		LinkBase:    cfg.Display.LinkBase,
	}
	if h := cfg.Display.Headline; h != nil {
		style.Headline = &render.HeadlineColors{From: h.From, Until: h.Until, Up: h.Up, Down: h.Down, Location: loc}
	}

	return &Runner{
		Provider: p,
		Renderer: render.Renderer{Style: style, Now: opts.Now},
		Symbols:  cfg.Symbols,
		Out:      opts.Out,
		Logger:   logging.Component(opts.Logger, "plugin"),
	}, nil
}
