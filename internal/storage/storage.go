package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/hamedasgari20/covered-call-strategy/internal/backtest"
)

// JSONStorage keeps the run history in a single JSON file, written
// atomically via a temp file and rename.
type JSONStorage struct {
	mu       sync.RWMutex
	filepath string
	data     *storeData
}

type storeData struct {
	Runs        map[string]*backtest.Result `json:"runs"`
	LastUpdated time.Time                   `json:"last_updated"`
}

// NewJSONStorage creates a store backed by the given file, loading any
// existing history.
func NewJSONStorage(filepath string) (*JSONStorage, error) {
	s := &JSONStorage{
		filepath: filepath,
		data:     &storeData{Runs: make(map[string]*backtest.Result)},
	}

	if _, err := os.Stat(filepath); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("loading run history: %w", err)
		}
	}

	return s, nil
}

// Load reads the history file from disk.
func (s *JSONStorage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filepath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, s.data); err != nil {
		return err
	}
	if s.data.Runs == nil {
		s.data.Runs = make(map[string]*backtest.Result)
	}
	return nil
}

// Save writes the history file to disk atomically.
func (s *JSONStorage) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *JSONStorage) saveLocked() error {
	s.data.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := s.filepath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpFile, s.filepath)
}

// SaveRun stores one completed run and persists immediately.
func (s *JSONStorage) SaveRun(res *backtest.Result) error {
	if res == nil || res.RunID == "" {
		return fmt.Errorf("result must have a run ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Runs[res.RunID] = res
	return s.saveLocked()
}

// GetRun returns the stored run with the given ID.
func (s *JSONStorage) GetRun(id string) (*backtest.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.data.Runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return res, nil
}

// ListRuns returns summaries of all stored runs, newest first.
func (s *JSONStorage) ListRuns() []RunInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]RunInfo, 0, len(s.data.Runs))
	for _, res := range s.data.Runs {
		infos = append(infos, RunInfo{
			ID:                res.RunID,
			CreatedAt:         res.CreatedAt,
			Steps:             res.Summary.Steps,
			CoveredCallReturn: res.Summary.CoveredCall.TotalReturn,
			BaselineReturn:    res.Summary.Baseline.TotalReturn,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.After(infos[j].CreatedAt) })
	return infos
}
