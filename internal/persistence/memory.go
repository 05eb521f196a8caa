package persistence

import (
	"context"
	"sync"

	"github.com/chemverify/chemverify/internal/hashchain"
	"github.com/chemverify/chemverify/internal/model"
)

// MemoryStore is an in-memory Store with no durable persistence.
type MemoryStore struct {
	mu       sync.Mutex
	order    []string
	runs     map[string]model.Run
	claims   map[string][]model.ExtractedClaim
	findings map[string][]model.ValidationFinding
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:     make(map[string]model.Run),
		claims:   make(map[string][]model.ExtractedClaim),
		findings: make(map[string][]model.ValidationFinding),
	}
}

// SaveRun stores run, claims and findings verbatim, keyed by run id.
func (m *MemoryStore) SaveRun(_ context.Context, run model.Run, claims []model.ExtractedClaim, findings []model.ValidationFinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.runs[run.ID]; !exists {
		m.order = append(m.order, run.ID)
	}
	m.runs[run.ID] = run
	m.claims[run.ID] = claims
	m.findings[run.ID] = findings
	return nil
}

// GetRun retrieves a previously saved run by id.
func (m *MemoryStore) GetRun(_ context.Context, id string) (model.Run, []model.ExtractedClaim, []model.ValidationFinding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return model.Run{}, nil, nil, ErrNotFound{ID: id}
	}
	return run, m.claims[id], m.findings[id], nil
}

// LatestHash returns the current hash of the most recently saved run, or
// hashchain.GenesisHash if the store is empty.
func (m *MemoryStore) LatestHash(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) == 0 {
		return hashchain.GenesisHash, nil
	}
	return m.runs[m.order[len(m.order)-1]].CurrentHash, nil
}

var _ Store = (*MemoryStore)(nil)
