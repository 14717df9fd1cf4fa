// Package process wires the adapters to the engines: syncing the archive
// from the upstream API and replaying it through the rating engines.
package process

import (
	"context"
	"fmt"
	"sync"

	"github.com/CarlColglazier/frc-elo/internal/adapters/outbound/tba"
	"github.com/CarlColglazier/frc-elo/internal/core/history"
	"github.com/CarlColglazier/frc-elo/internal/core/store"
	"github.com/CarlColglazier/frc-elo/internal/frc"
	"github.com/CarlColglazier/frc-elo/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// syncWorkers caps concurrent year fetches. The API rate limiter is the
// real throttle; this just keeps memory bounded.
const syncWorkers = 8

type SyncConfig struct {
	Store       *store.Store
	Client      *tba.Client
	History     *history.History
	HistoryPath string
	StartYear   int
	EndYear     int
}

// Sync fetches every year's event list and each event's matches, then
// writes the archive and the last-modified cache. Network and parse
// problems soft-fail per URL; only store failures abort.
func Sync(ctx context.Context, cfg SyncConfig) error {
	var (
		mu      sync.Mutex
		events  []frc.Event
		matches []frc.Match
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(syncWorkers)

	for year := cfg.StartYear; year <= cfg.EndYear; year++ {
		year := year
		g.Go(func() error {
			yearEvents, yearMatches := cfg.syncYear(ctx, year)
			if len(yearEvents) == 0 {
				return nil
			}
			mu.Lock()
			events = append(events, yearEvents...)
			matches = append(matches, yearMatches...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	telemetry.Infof("sync: storing %d events, %d matches", len(events), len(matches))
	for _, e := range events {
		if err := cfg.Store.UpsertEvent(e); err != nil {
			return fmt.Errorf("store event %s: %w", e.ID, err)
		}
	}
	for _, m := range matches {
		if err := cfg.Store.UpsertMatch(m); err != nil {
			return fmt.Errorf("store match %s: %w", m.ID, err)
		}
	}

	if err := cfg.History.Write(cfg.HistoryPath); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// syncYear fetches one season. Every failure path returns what was
// collected so far; a bad year never takes the rest of the sync down.
func (cfg SyncConfig) syncYear(ctx context.Context, year int) ([]frc.Event, []frc.Match) {
	url := fmt.Sprintf("events/%d", year)
	resp, err := cfg.Client.Get(ctx, url, cfg.History.Get(url))
	if err != nil {
		telemetry.Warnf("sync: %s: %v", url, err)
		return nil, nil
	}
	if !resp.OK() {
		if !resp.NotModified() {
			telemetry.Warnf("sync: %s: status %d", url, resp.Status)
		}
		return nil, nil
	}
	cfg.History.Set(url, resp.LastModified)

	eventJSON, err := tba.ParseEvents(resp.Body)
	if err != nil {
		telemetry.Warnf("sync: %s: %v", url, err)
		return nil, nil
	}

	var events []frc.Event
	var matches []frc.Match
	for _, ej := range eventJSON {
		events = append(events, ej.Event())
		matches = append(matches, cfg.syncEventMatches(ctx, ej.Key)...)
	}
	telemetry.Infof("sync: %d: %d events, %d matches", year, len(events), len(matches))
	return events, matches
}

func (cfg SyncConfig) syncEventMatches(ctx context.Context, eventKey string) []frc.Match {
	url := fmt.Sprintf("event/%s/matches/simple", eventKey)
	resp, err := cfg.Client.Get(ctx, url, cfg.History.Get(url))
	if err != nil {
		telemetry.Warnf("sync: %s: %v", url, err)
		return nil
	}
	if !resp.OK() {
		return nil
	}
	cfg.History.Set(url, resp.LastModified)

	matchJSON, err := tba.ParseMatches(resp.Body)
	if err != nil {
		telemetry.Warnf("sync: %s: %v", url, err)
		return nil
	}

	var matches []frc.Match
	for _, mj := range matchJSON {
		if m, ok := mj.Match(); ok {
			matches = append(matches, m)
		}
	}
	return matches
}
