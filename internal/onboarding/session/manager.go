// internal/onboarding/session/manager.go
package session

import (
	"sync"
	"time"

	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/common/metrics"
)

// Manager owns the live onboarding sessions, one per applicant. Each
// application has exactly one editor; the mutex only guards the map against
// concurrent HTTP requests for different applicants.
type Manager struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	maxFileBytes int64
	ttl          time.Duration
	now          func() time.Time
}

// NewManager creates a session manager. ttl bounds how long an abandoned
// session is kept before Sweep discards it.
func NewManager(maxFileBytes int64, ttl time.Duration) *Manager {
	return &Manager{
		sessions:     make(map[string]*Session),
		maxFileBytes: maxFileBytes,
		ttl:          ttl,
		now:          time.Now,
	}
}

// GetOrCreate returns the applicant's session, creating an empty application
// at step 1 on first use.
func (m *Manager) GetOrCreate(applicantID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[applicantID]; ok {
		s.UpdatedAt = m.now()
		return s
	}

	s := &Session{
		ApplicantID: applicantID,
		Application: NewWithLimit(m.maxFileBytes),
		CreatedAt:   m.now(),
		UpdatedAt:   m.now(),
	}
	m.sessions[applicantID] = s
	metrics.ActiveSessions.Inc()
	return s
}

// Get returns the applicant's session or a SESSION_NOT_FOUND error.
func (m *Manager) Get(applicantID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[applicantID]
	if !ok {
		return nil, errors.NewSessionNotFoundError(applicantID)
	}
	s.UpdatedAt = m.now()
	return s, nil
}

// Discard removes the applicant's session. Called after a successful
// submission or an explicit abandon.
func (m *Manager) Discard(applicantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[applicantID]; ok {
		delete(m.sessions, applicantID)
		metrics.ActiveSessions.Dec()
	}
}

// Sweep discards sessions idle past the TTL and returns how many were
// dropped. Entered data is lost, matching the no-partial-persistence rule.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	dropped := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			metrics.ActiveSessions.Dec()
			dropped++
		}
	}
	return dropped
}
