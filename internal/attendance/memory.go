package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger keeps records in process memory for local runs and tests.
type MemoryLedger struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (m *MemoryLedger) Insert(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now().UTC()
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *MemoryLedger) List(_ context.Context, f Filter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Record{}
	skipped := 0
	for i := len(m.records) - 1; i >= 0 && len(out) < f.Limit; i-- {
		if f.RollNumber != "" && m.records[i].RollNumber != f.RollNumber {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, m.records[i])
	}
	return out, nil
}

// Len reports how many records were appended.
func (m *MemoryLedger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
