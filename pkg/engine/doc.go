// Package engine dispatches MPC protocol work onto two worker pools: a
// small bounded pool for network-bound closures and a pool sized to the
// available parallelism for compute-bound closures.
//
// Network closures each run against one lane acquired from the engine's
// lane pool and released when the closure finishes. Asynchronous spawns
// return a Handle; synchronous installs and K-way fan-out joins block
// the calling goroutine, which helps execute queued pool work while it
// waits, so nested fan-outs never deadlock at the worker level.
//
// Acquiring more concurrently-needed lanes than the pool holds still
// deadlocks: a Join5Net on a 3-lane pool waits forever, because none of
// the five lanes can be released until all five closures finish.
//
// A panic inside an asynchronously spawned closure is captured and
// delivered through the Handle as an error. A panic inside a
// synchronous Install or Join propagates to the calling goroutine, and
// the lanes held by that fan-out are deliberately not returned to the
// rotation: their connections may carry half-written frames, so the
// pool permanently shrinks instead of recirculating a poisoned lane.
package engine
