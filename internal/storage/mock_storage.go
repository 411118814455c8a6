package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hamedasgari20/covered-call-strategy/internal/backtest"
)

// MockStorage is an in-memory Interface implementation for tests.
type MockStorage struct {
	mu   sync.RWMutex
	runs map[string]*backtest.Result

	// Error injection for failure-path tests.
	SaveRunErr error
	LoadErr    error
	SaveErr    error
}

// Ensure MockStorage implements Interface.
var _ Interface = (*MockStorage)(nil)

// NewMockStorage creates an empty in-memory store.
func NewMockStorage() *MockStorage {
	return &MockStorage{runs: make(map[string]*backtest.Result)}
}

// SaveRun stores the run in memory.
func (m *MockStorage) SaveRun(res *backtest.Result) error {
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[res.RunID] = res
	return nil
}

// GetRun returns the stored run with the given ID.
func (m *MockStorage) GetRun(id string) (*backtest.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return res, nil
}

// ListRuns returns summaries of all stored runs, newest first.
func (m *MockStorage) ListRuns() []RunInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]RunInfo, 0, len(m.runs))
	for _, res := range m.runs {
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

// Load is a no-op for the in-memory store.
func (m *MockStorage) Load() error { return m.LoadErr }

// Save is a no-op for the in-memory store.
func (m *MockStorage) Save() error { return m.SaveErr }
