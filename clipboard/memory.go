package clipboard

import (
	"context"
	"sync"
)

// Memory is an in-process Adapter for tests and headless environments.
// Set replaces the snapshot as if the user copied something; FailReads makes
// subsequent reads error, simulating a flaky platform clipboard.
type Memory struct {
	mu       sync.Mutex
	snap     Snapshot
	readErr  error
	writeErr error
	writes   []string
}

// NewMemory creates an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// Set replaces the current snapshot.
func (m *Memory) Set(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
}

// SetText replaces the snapshot with a text payload.
func (m *Memory) SetText(text string) {
	m.Set(Snapshot{Text: text})
}

// FailReads makes Read return err until called again with nil.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes Write return err until called again with nil.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Writes returns all texts written through the adapter, oldest first.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *Memory) Read(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return Snapshot{}, m.readErr
	}
	return m.snap, nil
}

func (m *Memory) Write(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.snap = Snapshot{Text: text}
	m.writes = append(m.writes, text)
	return nil
}
