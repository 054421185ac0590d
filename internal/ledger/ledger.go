package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	apperrors "go-easyapply-automation/internal/errors"
	"go-easyapply-automation/internal/models"

	"go.uber.org/zap"
)

const FileName = "applied_jobs.json"

type entry struct {
	Company   string         `json:"company"`
	Title     string         `json:"title,omitempty"`
	Outcome   models.Outcome `json:"outcome"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sink observes records after they are appended. Sink failures never fail Record.
type Sink interface {
	Name() string
	Publish(ctx context.Context, rec models.ApplicationRecord) error
}

// Ledger is the durable record of postings already acted on. It owns the
// applied count; callers query it and never mutate it directly.
type Ledger struct {
	mu       sync.Mutex
	filePath string
	entries  map[string]entry
	dirty    bool
	now      func() time.Time
	sinks    []Sink
	logger   *zap.Logger
}

type Option func(*Ledger)

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithSinks(sinks ...Sink) Option {
	return func(l *Ledger) { l.sinks = append(l.sinks, sinks...) }
}

// Open loads the ledger from dir. A missing or corrupt store yields an empty ledger.
func Open(dir string, logger *zap.Logger, opts ...Option) *Ledger {
	logger = logger.Named("ledger")
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn("failed to create ledger directory", zap.String("dir", dir), zap.Error(err))
	}
	l := &Ledger{
		filePath: filepath.Join(dir, FileName),
		entries:  make(map[string]entry),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.load()
	return l
}

// AddSink registers a record observer after construction.
func (l *Ledger) AddSink(s Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

func (l *Ledger) Path() string {
	return l.filePath
}

func (l *Ledger) HasRecord(jobID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, exists := l.entries[jobID]
	return exists
}

// AppliedCountToday counts Applied records stamped on the current local day.
func (l *Ledger) AppliedCountToday() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	y, m, d := l.now().Date()
	count := 0
	for _, e := range l.entries {
		if e.Outcome != models.OutcomeApplied {
			continue
		}
		ey, em, ed := e.Timestamp.In(l.now().Location()).Date()
		if ey == y && em == m && ed == d {
			count++
		}
	}
	return count
}

// Record appends rec and persists the ledger. Recording an existing JobID is
// a no-op. A persistence failure is returned as a PersistenceError; the record
// stays in memory and Flush retries it.
func (l *Ledger) Record(ctx context.Context, rec models.ApplicationRecord) error {
	l.mu.Lock()
	if _, exists := l.entries[rec.JobID]; exists {
		l.mu.Unlock()
		l.logger.Warn("job already recorded, ignoring duplicate",
			zap.String("job_id", rec.JobID),
			zap.String("outcome", string(rec.Outcome)))
		return nil
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = l.now()
	}
	l.entries[rec.JobID] = entry{
		Company:   rec.Company,
		Title:     rec.Title,
		Outcome:   rec.Outcome,
		Timestamp: rec.Timestamp,
	}
	l.dirty = true
	err := l.saveWithRetry()
	sinks := append([]Sink(nil), l.sinks...)
	l.mu.Unlock()

	for _, s := range sinks {
		if serr := s.Publish(ctx, rec); serr != nil {
			l.logger.Warn("record sink failed",
				zap.String("sink", s.Name()),
				zap.String("job_id", rec.JobID),
				zap.Error(serr))
		}
	}
	return err
}

// Flush persists any records a previous save failed to write.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.dirty {
		return nil
	}
	return l.saveWithRetry()
}

// Snapshot returns all records ordered by timestamp.
func (l *Ledger) Snapshot() []models.ApplicationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]models.ApplicationRecord, 0, len(l.entries))
	for id, e := range l.entries {
		records = append(records, models.ApplicationRecord{
			JobID:     id,
			Company:   e.Company,
			Title:     e.Title,
			Outcome:   e.Outcome,
			Timestamp: e.Timestamp,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].JobID < records[j].JobID
		}
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records
}

// load reads the store into memory; failures leave the ledger empty.
func (l *Ledger) load() {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("failed to read ledger, starting empty", zap.String("path", l.filePath), zap.Error(err))
		}
		return
	}

	var entries map[string]entry
	if err := json.Unmarshal(data, &entries); err != nil {
		l.logger.Warn("failed to parse ledger, starting empty", zap.String("path", l.filePath), zap.Error(err))
		return
	}
	for id, e := range entries {
		if id != "" {
			l.entries[id] = e
		}
	}
	l.logger.Info("loaded ledger", zap.Int("records", len(l.entries)), zap.String("path", l.filePath))
}

// saveWithRetry is called with mu held.
func (l *Ledger) saveWithRetry() error {
	err := l.save()
	if err != nil {
		l.logger.Warn("failed to save ledger, retrying once", zap.Error(err))
		err = l.save()
	}
	if err != nil {
		l.logger.Error("failed to save ledger", zap.String("path", l.filePath), zap.Error(err))
		return apperrors.Persistence("save ledger", err)
	}
	l.dirty = false
	return nil
}

// save writes to a temp file in the same directory and renames it over the
// store, so a crash leaves either the old or the new file.
func (l *Ledger) save() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.filePath), ".applied_jobs-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, l.filePath); err != nil {
		os.Remove(tmpName)
		return err
	}
	l.logger.Debug("saved ledger", zap.Int("records", len(l.entries)))
	return nil
}
