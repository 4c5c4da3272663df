package telephony

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CallStatus mirrors the carrier's call lifecycle vocabulary.
type CallStatus string

const (
	StatusQueued     CallStatus = "queued"
	StatusRinging    CallStatus = "ringing"
	StatusInProgress CallStatus = "in-progress"
	StatusCompleted  CallStatus = "completed"
	StatusBusy       CallStatus = "busy"
	StatusFailed     CallStatus = "failed"
	StatusNoAnswer   CallStatus = "no-answer"
	StatusCanceled   CallStatus = "canceled"
)

// Terminal reports whether the status ends the call lifecycle.
func (s CallStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusBusy, StatusFailed, StatusNoAnswer, StatusCanceled:
		return true
	}
	return false
}

// knownStatuses guards against the carrier introducing vocabulary we have
// never mapped; unknown events are dropped, not stored.
var knownStatuses = map[CallStatus]bool{
	StatusQueued: true, StatusRinging: true, StatusInProgress: true,
	StatusCompleted: true, StatusBusy: true, StatusFailed: true,
	StatusNoAnswer: true, StatusCanceled: true,
}

// CallLogEntry is the persistent record of one outbound call.
type CallLogEntry struct {
	ID              string     `json:"id"`
	CallSID         string     `json:"call_sid"`
	ContactID       string     `json:"contact_id,omitempty"`
	ToNumber        string     `json:"to_number"`
	FromNumber      string     `json:"from_number"`
	Status          CallStatus `json:"status"`
	PresetID        string     `json:"preset_id,omitempty"`
	Note            string     `json:"note,omitempty"`
	DurationSeconds int        `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
}

// CallLogStore persists call log entries. Production uses Postgres; tests and
// database-less development use the in-memory implementation.
type CallLogStore interface {
	Create(ctx context.Context, entry *CallLogEntry) error
	GetByCallSID(ctx context.Context, callSID string) (*CallLogEntry, error)
	Update(ctx context.Context, entry *CallLogEntry) error
	List(ctx context.Context, limit int) ([]*CallLogEntry, error)
}

// StatusLogger applies carrier status callbacks to the call log. Updates are
// serialized so events apply in arrival order.
type StatusLogger struct {
	mu    sync.Mutex
	store CallLogStore
	log   *zap.Logger
}

// NewStatusLogger creates a status logger over the given store.
func NewStatusLogger(store CallLogStore, log *zap.Logger) *StatusLogger {
	return &StatusLogger{store: store, log: log}
}

// OnStatusEvent records one status callback. Unknown call SIDs, unknown
// statuses, duplicate deliveries, and events arriving after a terminal status
// are all dropped without error; the webhook must not make the carrier retry.
func (l *StatusLogger) OnStatusEvent(ctx context.Context, callSID string, status CallStatus, durationSeconds int) error {
	if !knownStatuses[status] {
		l.log.Warn("dropping unknown call status",
			zap.String("call_sid", callSID), zap.String("status", string(status)))
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.store.GetByCallSID(ctx, callSID)
	if err == ErrCallNotFound {
		l.log.Warn("status event for unknown call", zap.String("call_sid", callSID))
		return nil
	}
	if err != nil {
		return err
	}

	if entry.ClosedAt != nil {
		l.log.Debug("status event after terminal status dropped",
			zap.String("call_sid", callSID), zap.String("status", string(status)))
		return nil
	}
	if entry.Status == status {
		return nil
	}

	entry.Status = status
	entry.UpdatedAt = time.Now().UTC()
	if durationSeconds > 0 {
		entry.DurationSeconds = durationSeconds
	}
	if status.Terminal() {
		closed := entry.UpdatedAt
		entry.ClosedAt = &closed
	}

	if err := l.store.Update(ctx, entry); err != nil {
		return err
	}
	l.log.Info("call status updated",
		zap.String("call_sid", callSID),
		zap.String("status", string(status)),
		zap.Bool("terminal", status.Terminal()))
	return nil
}

// MemoryCallLogStore is a mutex-guarded in-memory CallLogStore.
type MemoryCallLogStore struct {
	mu      sync.RWMutex
	bySID   map[string]*CallLogEntry
	ordered []string
}

// NewMemoryCallLogStore creates an empty in-memory call log.
func NewMemoryCallLogStore() *MemoryCallLogStore {
	return &MemoryCallLogStore{bySID: make(map[string]*CallLogEntry)}
}

func (s *MemoryCallLogStore) Create(_ context.Context, entry *CallLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *entry
	s.bySID[entry.CallSID] = &c
	s.ordered = append(s.ordered, entry.CallSID)
	return nil
}

func (s *MemoryCallLogStore) GetByCallSID(_ context.Context, callSID string) (*CallLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.bySID[callSID]
	if !ok {
		return nil, ErrCallNotFound
	}
	c := *entry
	return &c, nil
}

func (s *MemoryCallLogStore) Update(_ context.Context, entry *CallLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bySID[entry.CallSID]; !ok {
		return ErrCallNotFound
	}
	c := *entry
	s.bySID[entry.CallSID] = &c
	return nil
}

func (s *MemoryCallLogStore) List(_ context.Context, limit int) ([]*CallLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*CallLogEntry, 0, len(s.ordered))
	for i := len(s.ordered) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		c := *s.bySID[s.ordered[i]]
		out = append(out, &c)
	}
	return out, nil
}
