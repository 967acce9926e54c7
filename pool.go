package mdext

import (
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps engines; each holds its own rule instances and hash store.
	MaxPoolSize = 8
)

// EnginePool manages Engine instances for parallel parsing.
// Every engine has its own dispatcher, so each worker parses independently.
// Engines are cloned from a prototype lazily on first acquire.
type EnginePool struct {
	size    int
	proto   *Engine
	sem     chan *Engine
	mu      sync.Mutex
	created int
	closed  bool
}

// NewEnginePool creates a pool with capacity for n engines built with opts.
// The options are applied once, so configuration errors surface here.
func NewEnginePool(n int, opts ...Option) (*EnginePool, error) {
	if n < 1 {
		n = 1
	}

	proto, err := NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	return &EnginePool{
		size:  n,
		proto: proto,
		sem:   make(chan *Engine, n),
	}, nil
}

// Acquire gets an engine from the pool, creating one if needed.
// Blocks if all engines are in use. Returns nil once the pool is closed.
func (p *EnginePool) Acquire() *Engine {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	select {
	case e := <-p.sem:
		p.mu.Unlock()
		return e
	default:
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()
		return p.proto.clone()
	}
	p.mu.Unlock()

	e, ok := <-p.sem
	if !ok {
		return nil
	}
	return e
}

// Release returns an engine to the pool. Engines released after Close are
// dropped.
func (p *EnginePool) Release(e *Engine) {
	if e == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	// At most size engines exist, so the buffer never fills; the default
	// case only guards engines that did not come from this pool.
	select {
	case p.sem <- e:
	default:
	}
}

// Close stops handing out engines and drops the idle ones. Engines hold no
// external resources, so Close never fails; it returns an error to match
// io.Closer.
func (p *EnginePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.sem)
	for range p.sem {
	}
	return nil
}

// Size returns the pool capacity.
func (p *EnginePool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// Parsing is CPU bound: one engine per available CPU (GOMAXPROCS is
	// adjusted by automaxprocs in containers).
	return min(max(runtime.GOMAXPROCS(0), MinPoolSize), MaxPoolSize)
}
