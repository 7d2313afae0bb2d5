package schedule

import "sync"

// Manager holds the schedule currently in effect. The API mutates it at
// runtime and the scheduler re-reads it on every tick, so access is
// guarded rather than copied around.
type Manager struct {
	mu      sync.RWMutex
	current Schedule
}

// NewManager seeds a manager with the configured schedule.
func NewManager(initial Schedule) *Manager {
	return &Manager{current: initial}
}

// Current returns the schedule in effect.
func (m *Manager) Current() Schedule {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update validates and installs a new schedule.
func (m *Manager) Update(s Schedule) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}
