package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cloudeng.io/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/klabast/wb-services/holiday-lookup/internal/holiday"
)

// Dataset is one loaded source held in memory
type Dataset struct {
	Source   holiday.Source
	Records  []holiday.Record
	LoadedAt time.Time
	Elapsed  time.Duration
}

// SourceStatus summarizes a configured source
type SourceStatus struct {
	Name     string     `json:"name"`
	Title    string     `json:"title"`
	Encoding string     `json:"encoding"`
	Loaded   bool       `json:"loaded"`
	Records  int        `json:"records"`
	Years    []int      `json:"years,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

// Store keeps the datasets of all configured sources. Datasets are replaced
// as a whole and never modified after they are stored.
type Store struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]holiday.Source
	sets    map[string]*Dataset // GUARDED_BY(mu)

	names  holiday.WeekdayNames
	client *http.Client
	group  singleflight.Group
}

// NewStore creates a store for the given sources
func NewStore(sources []holiday.Source, names holiday.WeekdayNames, client *http.Client) *Store {
	s := &Store{
		sources: make(map[string]holiday.Source, len(sources)),
		sets:    make(map[string]*Dataset, len(sources)),
		names:   names,
		client:  client,
	}
	for _, src := range sources {
		if _, dup := s.sources[src.Name]; !dup {
			s.order = append(s.order, src.Name)
		}
		s.sources[src.Name] = src
	}
	return s
}

// Source returns the configuration of a named source
func (s *Store) Source(name string) (holiday.Source, bool) {
	src, ok := s.sources[name]
	return src, ok
}

// Names returns the weekday table used for normalization and lookups
func (s *Store) Names() holiday.WeekdayNames {
	return s.names
}

// Get returns the current dataset of a source
func (s *Store) Get(name string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.sets[name]
	return ds, ok
}

// Put stores ds, replacing any previous dataset of the same source
func (s *Store) Put(ds *Dataset) {
	s.mu.Lock()
	s.sets[ds.Source.Name] = ds
	s.mu.Unlock()
}

// Load fetches, parses and stores one source. On failure the previous
// dataset, if any, stays in place.
func (s *Store) Load(ctx context.Context, name string) (*Dataset, error) {
	src, ok := s.Source(name)
	if !ok {
		return nil, fmt.Errorf("%s: %q", ErrUnknownSource, name)
	}

	start := time.Now()
	records, err := holiday.LoadSource(ctx, s.client, src, s.names)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Source:   src,
		Records:  records,
		LoadedAt: time.Now(),
		Elapsed:  time.Since(start),
	}
	s.Put(ds)

	Logger.WithFields(logrus.Fields{
		"source":  src.Name,
		"records": len(records),
		"elapsed": ds.Elapsed.Round(time.Millisecond),
	}).Info("✅ Dataset loaded")
	return ds, nil
}

// LoadAll loads every source concurrently. Sources that fail are logged and
// reported together; the others are still stored.
func (s *Store) LoadAll(ctx context.Context) error {
	var (
		g    errgroup.Group
		errs errors.M
	)
	for _, name := range s.order {
		g.Go(func() error {
			if _, err := s.Load(ctx, name); err != nil {
				Logger.WithField("source", name).Warnf("⚠️  Failed to load dataset: %v", err)
				errs.Append(fmt.Errorf("%s: %w", name, err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs.Err()
}

// Refresh reloads a source. Concurrent refreshes of the same source share
// a single download, which runs to completion even if ctx is canceled.
func (s *Store) Refresh(ctx context.Context, name string) (*Dataset, error) {
	// the shared download outlives any single caller's context
	shared := context.WithoutCancel(ctx)
	v, err, joined := s.group.Do(name, func() (any, error) {
		return s.Load(shared, name)
	})
	if err != nil {
		return nil, err
	}
	if joined {
		Logger.WithField("source", name).Debug("Refresh shared with a concurrent request")
	}
	return v.(*Dataset), nil
}

// Loaded reports how many sources currently hold a dataset
func (s *Store) Loaded() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets)
}

// List returns the status of every configured source in configuration order
func (s *Store) List() []SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SourceStatus, 0, len(s.order))
	for _, name := range s.order {
		src := s.sources[name]
		st := SourceStatus{
			Name:     src.Name,
			Title:    src.Title,
			Encoding: src.Encoding,
		}
		if ds, ok := s.sets[name]; ok {
			loadedAt := ds.LoadedAt
			st.Loaded = true
			st.Records = len(ds.Records)
			st.Years = holiday.Years(ds.Records)
			st.LoadedAt = &loadedAt
		}
		out = append(out, st)
	}
	return out
}
