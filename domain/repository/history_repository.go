package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/pyama86/YASE/domain/entity"
)

// HistoryRepository keeps the escalation history in memory and mirrors it to
// a JSON file: an object of "<issueKey>:<level>" to an ISO-8601 timestamp.
// The file is written synchronously after every change. When a save fails the
// in-memory state stays authoritative for the rest of the run.
type HistoryRepository struct {
	path    string
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewHistoryRepository(path string) *HistoryRepository {
	r := &HistoryRepository{
		path:    path,
		entries: map[string]time.Time{},
		now:     time.Now,
	}
	if err := r.load(); err != nil {
		// 壊れたファイルでも起動は止めない
		slog.Warn("Failed to load escalation history, starting empty",
			slog.String("path", path), slog.Any("err", err))
		r.entries = map[string]time.Time{}
	}
	return r
}

func (r *HistoryRepository) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read history file error: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal history file error: %w", err)
	}

	entries := make(map[string]time.Time, len(raw))
	for key, value := range raw {
		if _, _, err := entity.ParseHistoryKey(key); err != nil {
			return err
		}
		ts, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return fmt.Errorf("parse history timestamp error for %s: %w", key, err)
		}
		entries[key] = ts
	}
	r.entries = entries
	return nil
}

func (r *HistoryRepository) save() error {
	raw := make(map[string]string, len(r.entries))
	for key, ts := range r.entries {
		raw[key] = ts.Format(time.RFC3339)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history error: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("write history file error: %w", err)
	}
	return nil
}

func (r *HistoryRepository) WasRecentlyEscalated(_ context.Context, issueKey string, level int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts, ok := r.entries[entity.HistoryKey(issueKey, level)]
	if !ok {
		return false, nil
	}
	return r.now().Sub(ts) < window, nil
}

func (r *HistoryRepository) RecordEscalation(_ context.Context, issueKey string, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[entity.HistoryKey(issueKey, level)] = r.now()
	if err := r.save(); err != nil {
		slog.Error("Failed to persist escalation history",
			slog.String("path", r.path), slog.Any("err", err))
	}
	return nil
}

func (r *HistoryRepository) FirstEscalatedAt(_ context.Context, issueKey string) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first *time.Time
	for key, ts := range r.entries {
		k, _, err := entity.ParseHistoryKey(key)
		if err != nil || k != issueKey {
			continue
		}
		if first == nil || ts.Before(*first) {
			t := ts
			first = &t
		}
	}
	return first, nil
}

func (r *HistoryRepository) DaysSinceFirstEscalation(ctx context.Context, issueKey string) (*int, error) {
	first, err := r.FirstEscalatedAt(ctx, issueKey)
	if err != nil || first == nil {
		return nil, err
	}
	days := int(r.now().Sub(*first).Hours() / 24)
	return &days, nil
}

func (r *HistoryRepository) DeleteIssue(_ context.Context, issueKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.entries {
		k, _, err := entity.ParseHistoryKey(key)
		if err == nil && k == issueKey {
			delete(r.entries, key)
		}
	}
	return r.save()
}

func (r *HistoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = map[string]time.Time{}
	return r.save()
}
