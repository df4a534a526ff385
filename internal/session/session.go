// Package session drives a single invocation: open history, fetch, extract,
// compare, persist and report.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethpandaops/pagespeed-history/internal/aggregate"
	"github.com/ethpandaops/pagespeed-history/internal/config"
	"github.com/ethpandaops/pagespeed-history/internal/history"
	"github.com/ethpandaops/pagespeed-history/internal/metrics"
	"github.com/ethpandaops/pagespeed-history/internal/pagespeed"
	"github.com/ethpandaops/pagespeed-history/internal/report"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Command names accepted by Run.
const (
	CommandGetAnalytics = "get-analytics"
	CommandShowHistory  = "show-history"
)

// ErrUnknownCommand is returned by Run for any other command. History is not touched.
var ErrUnknownCommand = errors.New("unknown command")

// Summary describes what a session did.
type Summary struct {
	Command   string
	Requested int
	Recorded  int
	Failed    int
	Persisted bool
}

// Session runs one command against the history file.
type Session struct {
	opts     config.Options
	fetcher  pagespeed.Fetcher
	reporter report.Reporter
	log      logrus.FieldLogger
	now      func() time.Time
}

// New creates a session. opts is copied and not modified.
func New(log logrus.FieldLogger, opts config.Options, fetcher pagespeed.Fetcher, reporter report.Reporter) *Session {
	return &Session{
		opts:     opts,
		fetcher:  fetcher,
		reporter: reporter,
		log: log.WithFields(logrus.Fields{
			"component": "session",
			"session":   uuid.NewString(),
		}),
		now: time.Now,
	}
}

// Run executes command. Per-URL and history failures are reported and do not
// produce an error; only an unknown command does.
func (s *Session) Run(ctx context.Context, command string) (Summary, error) {
	if s.opts.MainThreadTasks {
		s.log.Debug("--mtt is reserved and has no effect")
	}

	switch command {
	case CommandGetAnalytics:
		return s.getAnalytics(ctx), nil
	case CommandShowHistory:
		return s.showHistory(), nil
	default:
		err := fmt.Errorf("%w: %q", ErrUnknownCommand, command)
		s.reporter.Error("Unknown command!", err)
		return Summary{Command: command}, err
	}
}

func (s *Session) getAnalytics(ctx context.Context) Summary {
	summary := Summary{Command: CommandGetAnalytics, Requested: len(s.opts.URLs)}

	if len(s.opts.URLs) == 0 {
		s.reporter.Warn("no --url given, nothing to analyze")
		return summary
	}

	store, corrupt := s.openHistory(s.opts.ResetHistory)

	records := s.collect(ctx)
	summary.Recorded = len(records)
	summary.Failed = summary.Requested - summary.Recorded

	for _, r := range records {
		store.Append(r.Site, r)
	}
	s.reportWarnings(store)

	if corrupt {
		s.moveAside(store.Path(), "corrupt")
	}

	if err := store.Persist(); err != nil {
		s.log.WithError(err).Debug("failed to persist history")
		s.reportHistoryError(err)
	} else {
		summary.Persisted = true
	}

	if s.opts.Compare {
		s.reporter.BatchComparison(records)
	} else {
		s.reporter.Batch(records)
	}

	s.log.WithFields(logrus.Fields{
		"requested": summary.Requested,
		"recorded":  summary.Recorded,
		"failed":    summary.Failed,
		"persisted": summary.Persisted,
	}).Info("analytics session complete")

	return summary
}

func (s *Session) showHistory() Summary {
	summary := Summary{Command: CommandShowHistory}

	if s.opts.ResetHistory {
		s.reporter.Warn("--reset-history only applies to get-analytics and was ignored")
	}

	store, _ := s.openHistory(false)

	sites := s.opts.URLs
	if len(sites) == 0 {
		sites = store.Sites()
	}
	summary.Requested = len(sites)

	if s.opts.Compare {
		groups := make([]aggregate.Group, 0, len(sites))
		for _, site := range sites {
			if !store.Has(site) {
				s.reporter.Warn(fmt.Sprintf("no history recorded for %s", site))
			}
			groups = append(groups, aggregate.Group{Site: site, Records: store.Records(site)})
		}
		s.reporter.HistoryComparison(aggregate.BatchCompare(groups))

		return summary
	}

	for _, site := range sites {
		if !store.Has(site) {
			s.reporter.Warn(fmt.Sprintf("no history recorded for %s", site))
			continue
		}

		records := store.Records(site)
		if len(records) == 0 {
			s.reporter.Warn(fmt.Sprintf("history for %s has no readable records", site))
			continue
		}

		s.reporter.SiteHistory(site, records)
		summary.Recorded += len(records)
	}

	return summary
}

// openHistory loads the history file, creating it when missing. An unreadable
// file is reported and replaced by an empty in-memory store; corrupt is then true.
func (s *Session) openHistory(reset bool) (store *history.Store, corrupt bool) {
	path := s.opts.HistoryFile

	if reset {
		if moved := s.moveAside(path, "reset"); moved != "" {
			s.reporter.Warn(fmt.Sprintf("history reset, previous history kept at %s", moved))
		}
		return s.initialize(path), false
	}

	store, err := history.Load(s.log, path)
	switch {
	case err == nil:
		s.reportWarnings(store)
		return store, false
	case errors.Is(err, history.ErrNotFound):
		return s.initialize(path), false
	default:
		s.log.WithError(err).Debug("failed to load history")
		s.reportHistoryError(err)
		return history.New(s.log, path), true
	}
}

func (s *Session) initialize(path string) *history.Store {
	store, err := history.Initialize(s.log, path)
	if err != nil {
		s.log.WithError(err).Debug("failed to create history")
		s.reportHistoryError(err)
		return history.New(s.log, path)
	}

	return store
}

// moveAside keeps an existing history file under a new name. It returns the
// new path, or "" when there was nothing to move or the move failed.
func (s *Session) moveAside(path, label string) string {
	moved, err := history.MoveAside(path, label)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.reporter.Warn(fmt.Sprintf("could not keep a copy of the previous history: %v", err))
		}
		return ""
	}

	if label == "corrupt" {
		s.reporter.Warn(fmt.Sprintf("the unreadable history was moved to %s", moved))
	}

	return moved
}

func (s *Session) reportWarnings(store *history.Store) {
	for _, w := range store.Warnings() {
		s.reporter.Warn(w)
	}
}

func (s *Session) reportHistoryError(err error) {
	s.reporter.Error("There was an ERROR parsing or writing history", err)
	s.reporter.Warn("This session may be unsaved and history may be corrupt.")
	s.reporter.Warn("Run this session again, or rerun with --reset-history to start with a fresh history.")
}

// fetchResult is the outcome of one fetch in a batch.
type fetchResult struct {
	url      string
	issuedAt time.Time
	payload  *pagespeed.Payload
	err      error
}

// collect fetches every URL concurrently, waits for the whole batch and
// extracts records in request order. Failed URLs are reported and omitted.
func (s *Session) collect(ctx context.Context) []metrics.Record {
	results := s.fetchAll(ctx)

	records := make([]metrics.Record, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			s.log.WithError(res.err).WithField("url", res.url).Debug("fetch failed")
			s.reporter.Error(fmt.Sprintf("There was an ERROR getting performance data for %s", res.url), res.err)
			continue
		}

		r, err := metrics.Extract(res.url, s.opts.Strategy, res.payload, res.issuedAt)
		if err != nil {
			s.log.WithError(err).WithField("url", res.url).Debug("extraction failed")
			s.reporter.Warn(fmt.Sprintf("no performance data returned for %s", res.url))
			continue
		}

		records = append(records, *r)
	}

	return records
}

func (s *Session) fetchAll(ctx context.Context) []fetchResult {
	results := make([]fetchResult, len(s.opts.URLs))

	// Issue times are strictly increasing so repeated URLs get distinct timestamps.
	var last time.Time
	for i, url := range s.opts.URLs {
		issued := s.now().Truncate(time.Millisecond)
		if !issued.After(last) {
			issued = last.Add(time.Millisecond)
		}
		last = issued
		results[i] = fetchResult{url: url, issuedAt: issued}
	}

	var g errgroup.Group
	for i := range results {
		res := &results[i]
		g.Go(func() error {
			payload, err := s.fetcher.Fetch(ctx, res.url, s.opts.APIKey, s.opts.Strategy)
			res.payload, res.err = payload, err
			return nil
		})
	}
	_ = g.Wait()

	return results
}
