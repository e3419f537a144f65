package engine

import (
	"sync"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/lanepool"
	"github.com/mpcnet-protocol/mpcnet-go/pkg/log"
	"github.com/mpcnet-protocol/mpcnet-go/pkg/transport"
)

// Default worker-pool sizes.
const (
	// DefaultNetWorkers bounds the network pool. Network closures
	// spend their time blocked on peers, so a small fixed pool is
	// enough and keeps per-peer connection pressure predictable.
	DefaultNetWorkers = 8

	// DefaultCPUWorkers of 0 sizes the compute pool to the ambient
	// available parallelism.
	DefaultCPUWorkers = 0
)

// Engine dispatches protocol closures onto a bounded network pool and
// a compute pool, sourcing one lane per network closure from its lane
// pool. The engine is stateless beyond the two pools and the lane
// rotation; construct it once per protocol session.
type Engine struct {
	id      int
	lanes   *lanepool.Pool[transport.Network]
	netPool *workerPool
	cpuPool *workerPool

	closeOnce sync.Once
}

// New builds an engine for the given party id. netWorkers <= 0 uses
// DefaultNetWorkers; cpuWorkers <= 0 uses the ambient parallelism.
// nets[i] becomes the lane at rotation slot i.
func New(id, netWorkers, cpuWorkers int, nets []transport.Network) *Engine {
	if netWorkers <= 0 {
		netWorkers = DefaultNetWorkers
	}
	return &Engine{
		id:      id,
		lanes:   lanepool.New(nets),
		netPool: newWorkerPool(netWorkers),
		cpuPool: newWorkerPool(cpuWorkers),
	}
}

// ID returns the party id this engine runs for.
func (e *Engine) ID() int { return e.id }

// Lanes exposes the engine's lane pool, for callers that need to grow
// or shrink the rotation between protocol phases.
func (e *Engine) Lanes() *lanepool.Pool[transport.Network] { return e.lanes }

// SetLogger configures lane event logging on the engine's pool.
// Pass nil to disable.
func (e *Engine) SetLogger(logger log.Logger) {
	e.lanes.SetLogger(logger)
}

// Close stops both worker pools once queued work has drained. Spawning
// or joining after Close panics. Close does not touch the transports;
// their lifetime belongs to whoever established them.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.netPool.close()
		e.cpuPool.close()
	})
}

// SpawnNet acquires one lane, runs f against it on the network pool,
// releases the lane, and delivers f's value through the returned
// Handle. f runs exactly once. A panic in f is captured into the
// Handle; the lane is then left out of rotation because its
// connections may carry half-written frames.
func SpawnNet[T any](e *Engine, f func(transport.Network) T) *Handle[T] {
	slot, lane := e.lanes.Acquire()
	h := newHandle[T]()
	e.netPool.submit(func() {
		res := runTask(func() T { return f(lane) })
		if res.err == nil {
			e.lanes.Release(slot, lane)
		}
		h.complete(res)
	})
	return h
}

// SpawnCPU runs f on the compute pool with no lane involvement and
// delivers its value through the returned Handle.
func SpawnCPU[T any](e *Engine, f func() T) *Handle[T] {
	h := newHandle[T]()
	e.cpuPool.submit(func() {
		h.complete(runTask(f))
	})
	return h
}

// InstallNet acquires one lane and runs f against it on the network
// pool, blocking until f completes. The calling goroutine executes
// other queued network-pool work while it waits. A panic in f
// propagates to the caller and the lane stays out of rotation.
func InstallNet[T any](e *Engine, f func(transport.Network) T) T {
	slot, lane := e.lanes.Acquire()
	res := installOn(e.netPool, func() T { return f(lane) })
	if res.err != nil {
		panic(res.err)
	}
	e.lanes.Release(slot, lane)
	return res.value
}

// InstallCPU runs f on the compute pool, blocking until it completes.
// The calling goroutine executes other queued compute-pool work while
// it waits. A panic in f propagates to the caller.
func InstallCPU[T any](e *Engine, f func() T) T {
	res := installOn(e.cpuPool, f)
	if res.err != nil {
		panic(res.err)
	}
	return res.value
}

// installOn runs f as a single pool task and helps until it finishes.
func installOn[T any](p *workerPool, f func() T) result[T] {
	var res result[T]
	done := make(chan struct{})
	p.submit(func() {
		defer close(done)
		res = runTask(f)
	})
	p.waitHelping(done)
	return res
}
