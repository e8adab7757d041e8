// Package core wires the extraction pipeline: classify the source, run the
// matching extractor, optionally persist, optionally resolve against the
// target platform.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"tracklift/internal/browser"
	"tracklift/internal/extract"
	httpserver "tracklift/internal/http"
	"tracklift/internal/resolve"
	"tracklift/internal/store"
	"tracklift/pkg/platform"
	"tracklift/pkg/track"
)

// ErrUnknownSource is returned when the source is neither a playlist URL on
// a supported platform nor a readable playlist file.
var ErrUnknownSource = errors.New("source is not a supported playlist URL or file")

type Orchestrator struct {
	config         *Config
	factory        browser.Factory
	extractMetrics extract.Recorder
	resolveMetrics resolve.Recorder
	out            io.Writer
	logger         *zap.Logger
}

// NewOrchestrator wires the pipeline. metrics may be nil when no metrics
// listener is configured; out receives one resolved link per line.
func NewOrchestrator(config *Config, factory browser.Factory, metrics *httpserver.Metrics, out io.Writer, logger *zap.Logger) *Orchestrator {
	o := &Orchestrator{
		config:  config,
		factory: factory,
		out:     out,
		logger:  logger,
	}
	if metrics != nil {
		o.extractMetrics = metrics
		o.resolveMetrics = metrics
	}
	return o
}

// Run executes the pipeline for one source. Whole-playlist failures
// propagate; the caller turns them into a non-zero exit.
func (o *Orchestrator) Run(ctx context.Context, source string) error {
	tracks, err := o.acquire(ctx, source)
	if err != nil {
		return err
	}

	o.logger.Info("Playlist acquired", zap.Int("tracks", len(tracks)))

	if o.config.Output.SavePath != "" {
		if err := store.SavePlaylist(o.config.Output.SavePath, tracks); err != nil {
			return err
		}
		o.logger.Info("Playlist saved", zap.String("path", o.config.Output.SavePath))
	}

	if o.config.Resolve.Target == "" {
		return nil
	}

	links, err := o.resolveLinks(ctx, tracks)
	if err != nil {
		return err
	}

	for _, link := range links {
		if _, err := fmt.Fprintln(o.out, link); err != nil {
			return fmt.Errorf("failed to write resolved link: %w", err)
		}
	}

	o.logger.Info("Resolution complete",
		zap.Int("resolved", len(links)),
		zap.Int("unmatched", len(tracks)-len(links)))

	return nil
}

// acquire turns the source argument into a track sequence: URLs on supported
// platforms are scraped, anything else is treated as a saved playlist file.
func (o *Orchestrator) acquire(ctx context.Context, source string) ([]track.Track, error) {
	if !strings.Contains(source, "://") {
		return store.LoadPlaylist(source)
	}

	p := platform.FromURL(source)
	extractor, err := extract.ForPlatform(p, extract.Config{
		WaitTimeout:    o.config.Extract.WaitTimeout,
		StalePassLimit: o.config.Extract.StalePassLimit,
		MaxPasses:      o.config.Extract.MaxPasses,
		SeenCapacity:   o.config.Extract.SeenCapacity,
	}, o.extractMetrics, o.logger.Named("extract"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	session, err := o.factory.Open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("opening playlist page: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			o.logger.Warn("Failed to close playlist session", zap.Error(err))
		}
	}()

	return extractor.Extract(ctx, session)
}

func (o *Orchestrator) resolveLinks(ctx context.Context, tracks []track.Track) ([]string, error) {
	target, err := platform.Parse(o.config.Resolve.Target)
	if err != nil {
		return nil, err
	}

	policy, err := resolve.ParseMatchPolicy(o.config.Resolve.MatchPolicy)
	if err != nil {
		return nil, err
	}

	opts := []resolve.Option{resolve.WithTimeout(o.config.Resolve.Timeout)}

	if o.config.Resolve.CachePath != "" {
		cache, err := store.OpenLinkCache(o.config.Resolve.CachePath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				o.logger.Warn("Failed to close link cache", zap.Error(err))
			}
		}()
		opts = append(opts, resolve.WithCache(cache))
	}

	if o.resolveMetrics != nil {
		opts = append(opts, resolve.WithMetrics(o.resolveMetrics))
	}

	resolver, err := resolve.New(o.factory, target, policy, o.logger.Named("resolve"), opts...)
	if err != nil {
		return nil, err
	}

	return resolver.Resolve(ctx, tracks)
}
