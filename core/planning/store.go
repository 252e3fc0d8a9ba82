package planning

import (
	"sort"
	"sync"

	"github.com/kilianp07/evstation/core/events"
	"github.com/kilianp07/evstation/core/model"
)

// Store keeps the latest capacity report per vehicle type.
type Store interface {
	Put(events.ReportEvent)
	Latest(vt model.VehicleType) (events.ReportEvent, bool)
	List() []events.ReportEvent
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[model.VehicleType]events.ReportEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[model.VehicleType]events.ReportEvent{}}
}

// Put replaces the report of ev's vehicle type unless a newer one is stored.
func (s *MemoryStore) Put(ev events.ReportEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.data[ev.VehicleType]; ok && cur.Time.After(ev.Time) {
		return
	}
	s.data[ev.VehicleType] = ev
}

func (s *MemoryStore) Latest(vt model.VehicleType) (events.ReportEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.data[vt]
	return ev, ok
}

// List returns the stored reports ordered by vehicle type.
func (s *MemoryStore) List() []events.ReportEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]events.ReportEvent, 0, len(s.data))
	for _, ev := range s.data {
		res = append(res, ev)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].VehicleType < res[j].VehicleType })
	return res
}
