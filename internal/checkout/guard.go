package checkout

import "sync"

// inflight admits one checkout per actor at a time.
type inflight struct {
	mu     sync.Mutex
	actors map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{actors: make(map[string]struct{})}
}

func (g *inflight) acquire(actorID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.actors[actorID]; busy {
		return false
	}
	g.actors[actorID] = struct{}{}
	return true
}

func (g *inflight) release(actorID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.actors, actorID)
}
