package play

import "sync"

// Registry tracks the live runs by session ID so position updates, answer
// submissions and the WebSocket stream land on the same engine.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]*Run)}
}

// Get returns the run for a session, if one is live.
func (r *Registry) Get(sessionID string) (*Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[sessionID]
	return run, ok
}

// Put registers a run, replacing and closing any previous run for the same
// session (a restarted play screen supersedes the old one).
func (r *Registry) Put(run *Run) {
	r.mu.Lock()
	prev := r.runs[run.SessionID]
	r.runs[run.SessionID] = run
	r.mu.Unlock()

	if prev != nil && prev != run {
		prev.Close()
	}
}

// Remove unregisters and returns the run so the caller can tear it down.
func (r *Registry) Remove(sessionID string) (*Run, bool) {
	r.mu.Lock()
	run, ok := r.runs[sessionID]
	delete(r.runs, sessionID)
	r.mu.Unlock()
	return run, ok
}

// Close tears down every live run.
func (r *Registry) Close() {
	r.mu.Lock()
	runs := make([]*Run, 0, len(r.runs))
	for id, run := range r.runs {
		runs = append(runs, run)
		delete(r.runs, id)
	}
	r.mu.Unlock()

	for _, run := range runs {
		run.Close()
	}
}
