package store

import (
	"context"
	"sync"
	"time"

	"github.com/hyperifyio/carrierscope/internal/domain"
)

// Memory is an in-process Repository. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu       sync.RWMutex
	carriers map[string]CarrierRecord
	latest   *Snapshot
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{carriers: make(map[string]CarrierRecord), now: func() time.Time { return time.Now().UTC() }}
}

func (m *Memory) UpsertCarrier(_ context.Context, p domain.CarrierProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.carriers[p.MCNumber]
	rec.Profile = p
	rec.UpdatedAt = m.now()
	m.carriers[p.MCNumber] = rec
	return nil
}

func (m *Memory) GetCarrier(_ context.Context, mcNumber string) (CarrierRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.carriers[mcNumber]
	if !ok {
		return CarrierRecord{}, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (m *Memory) UpdateSafety(_ context.Context, dotNumber string, s domain.SafetyProfile) error {
	return m.updateByDOT(dotNumber, func(rec *CarrierRecord) {
		s := s
		rec.Safety = &s
	})
}

func (m *Memory) UpdateInsurance(_ context.Context, dotNumber string, policies []domain.InsurancePolicy) error {
	return m.updateByDOT(dotNumber, func(rec *CarrierRecord) {
		rec.Insurance = append([]domain.InsurancePolicy(nil), policies...)
	})
}

func (m *Memory) updateByDOT(dotNumber string, apply func(*CarrierRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for mc, rec := range m.carriers {
		if rec.Profile.DOTNumber != dotNumber {
			continue
		}
		apply(&rec)
		rec.UpdatedAt = m.now()
		m.carriers[mc] = rec
		found = true
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) SaveRegister(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Entries = append([]domain.RegisterEntry{}, s.Entries...)
	m.latest = &s
	return nil
}

func (m *Memory) LatestRegister(_ context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return Snapshot{}, ErrNotFound
	}
	s := *m.latest
	s.Entries = append([]domain.RegisterEntry{}, s.Entries...)
	return s, nil
}

func copyRecord(rec CarrierRecord) CarrierRecord {
	if rec.Safety != nil {
		s := *rec.Safety
		rec.Safety = &s
	}
	if rec.Insurance != nil {
		rec.Insurance = append([]domain.InsurancePolicy(nil), rec.Insurance...)
	}
	return rec
}
