package fsm

import "github.com/enetx/g"

// Sync wraps the machine for use from multiple goroutines. The machine must
// not be used directly afterwards.
func (m *Machine[K, A, C, M]) Sync() *SyncMachine[K, A, C, M] {
	return &SyncMachine[K, A, C, M]{m: m}
}

// Do is the thread-safe version of Machine.Do.
// Handlers and interpreters run under the lock and must not call back into
// the same SyncMachine.
func (sm *SyncMachine[K, A, C, M]) Do(action A) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.Do(action)
}

// CurrentKey is the thread-safe version of Machine.CurrentKey.
func (sm *SyncMachine[K, A, C, M]) CurrentKey() g.Option[K] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.CurrentKey()
}

// CurrentNode is the thread-safe version of Machine.CurrentNode.
func (sm *SyncMachine[K, A, C, M]) CurrentNode() g.Option[*Node[K, A, C, M]] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.CurrentNode()
}

// State returns the shared context. Reading or mutating it outside of
// handlers is not synchronized by the SyncMachine.
func (sm *SyncMachine[K, A, C, M]) State() C {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.State()
}

// Nodes is the thread-safe version of Machine.Nodes.
func (sm *SyncMachine[K, A, C, M]) Nodes() g.Map[K, *Node[K, A, C, M]] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.Nodes()
}

// SetNodes is the thread-safe version of Machine.SetNodes.
func (sm *SyncMachine[K, A, C, M]) SetNodes(nodes g.Map[K, *Node[K, A, C, M]]) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.SetNodes(nodes)
}

// SetCurrentKey is the thread-safe version of Machine.SetCurrentKey.
// WARNING: it bypasses every handler. For standard operation, use Do.
func (sm *SyncMachine[K, A, C, M]) SetCurrentKey(key g.Option[K]) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.SetCurrentKey(key)
}

// Reset is the thread-safe version of Machine.Reset.
func (sm *SyncMachine[K, A, C, M]) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.Reset()
}

// History is the thread-safe version of Machine.History.
func (sm *SyncMachine[K, A, C, M]) History() g.Slice[g.Option[K]] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.History()
}

// ToDOT is the thread-safe version of Machine.ToDOT.
func (sm *SyncMachine[K, A, C, M]) ToDOT() g.String {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.ToDOT()
}

// ToMermaid is the thread-safe version of Machine.ToMermaid.
func (sm *SyncMachine[K, A, C, M]) ToMermaid() g.String {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.ToMermaid()
}
