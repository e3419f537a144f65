package engine

import "github.com/mpcnet-protocol/mpcnet-go/pkg/transport"

// The JoinK_Net fan-outs below acquire K lanes with K sequential pool
// acquires before running anything. Results come back in argument
// order. All variants share one generic balanced split (parallelDo)
// instead of hand-unrolled nesting per arity; K is bounded at 8, the
// protocol's practical fan-out width.

// heldLane is one lane checked out for the duration of a fan-out.
type heldLane struct {
	slot int
	lane transport.Network
}

// acquireLanes checks out k lanes in ticket order.
func (e *Engine) acquireLanes(k int) []heldLane {
	held := make([]heldLane, k)
	for i := range held {
		slot, lane := e.lanes.Acquire()
		held[i] = heldLane{slot: slot, lane: lane}
	}
	return held
}

// finishNetFanOut releases every held lane, in any order, unless a
// closure panicked: then the first captured panic is re-raised on the
// caller and the lanes stay out of rotation, since their connections
// may carry half-written frames.
func (e *Engine) finishNetFanOut(held []heldLane, errs ...error) {
	for _, err := range errs {
		if err != nil {
			panic(err)
		}
	}
	for _, h := range held {
		e.lanes.Release(h.slot, h.lane)
	}
}

// finishCPUFanOut re-raises the first captured panic, if any.
func finishCPUFanOut(errs ...error) {
	for _, err := range errs {
		if err != nil {
			panic(err)
		}
	}
}

// Join2Net runs both closures in parallel, each against its own lane,
// and returns their results in argument order.
func Join2Net[R0, R1 any](e *Engine, f0 func(transport.Network) R0, f1 func(transport.Network) R1) (R0, R1) {
	held := e.acquireLanes(2)
	var r0 result[R0]
	var r1 result[R1]
	e.netPool.parallelDo([]func(){
		func() { r0 = runTask(func() R0 { return f0(held[0].lane) }) },
		func() { r1 = runTask(func() R1 { return f1(held[1].lane) }) },
	})
	e.finishNetFanOut(held, r0.err, r1.err)
	return r0.value, r1.value
}

// Join3Net runs three closures in parallel, each against its own lane.
func Join3Net[R0, R1, R2 any](e *Engine, f0 func(transport.Network) R0, f1 func(transport.Network) R1, f2 func(transport.Network) R2) (R0, R1, R2) {
	held := e.acquireLanes(3)
	var r0 result[R0]
	var r1 result[R1]
	var r2 result[R2]
	e.netPool.parallelDo([]func(){
		func() { r0 = runTask(func() R0 { return f0(held[0].lane) }) },
		func() { r1 = runTask(func() R1 { return f1(held[1].lane) }) },
		func() { r2 = runTask(func() R2 { return f2(held[2].lane) }) },
	})
	e.finishNetFanOut(held, r0.err, r1.err, r2.err)
	return r0.value, r1.value, r2.value
}

// Join4Net runs four closures in parallel, each against its own lane.
func Join4Net[R0, R1, R2, R3 any](e *Engine, f0 func(transport.Network) R0, f1 func(transport.Network) R1, f2 func(transport.Network) R2, f3 func(transport.Network) R3) (R0, R1, R2, R3) {
	held := e.acquireLanes(4)
	var r0 result[R0]
	var r1 result[R1]
	var r2 result[R2]
	var r3 result[R3]
	e.netPool.parallelDo([]func(){
		func() { r0 = runTask(func() R0 { return f0(held[0].lane) }) },
		func() { r1 = runTask(func() R1 { return f1(held[1].lane) }) },
		func() { r2 = runTask(func() R2 { return f2(held[2].lane) }) },
		func() { r3 = runTask(func() R3 { return f3(held[3].lane) }) },
	})
	e.finishNetFanOut(held, r0.err, r1.err, r2.err, r3.err)
	return r0.value, r1.value, r2.value, r3.value
}

// Join5Net runs five closures in parallel, each against its own lane.
func Join5Net[R0, R1, R2, R3, R4 any](e *Engine, f0 func(transport.Network) R0, f1 func(transport.Network) R1, f2 func(transport.Network) R2, f3 func(transport.Network) R3, f4 func(transport.Network) R4) (R0, R1, R2, R3, R4) {
	held := e.acquireLanes(5)
	var r0 result[R0]
	var r1 result[R1]
	var r2 result[R2]
	var r3 result[R3]
	var r4 result[R4]
	e.netPool.parallelDo([]func(){
		func() { r0 = runTask(func() R0 { return f0(held[0].lane) }) },
		func() { r1 = runTask(func() R1 { return f1(held[1].lane) }) },
		func() { r2 = runTask(func() R2 { return f2(held[2].lane) }) },
		func() { r3 = runTask(func() R3 { return f3(held[3].lane) }) },
		func() { r4 = runTask(func() R4 { return f4(held[4].lane) }) },
	})
	e.finishNetFanOut(held, r0.err, r1.err, r2.err, r3.err, r4.err)
	return r0.value, r1.value, r2.value, r3.value, r4.value
}

// Join6Net runs six closures in parallel, each against its own lane.
func Join6Net[R0, R1, R2, R3, R4, R5 any](e *Engine, f0 func(transport.Network) R0, f1 func(transport.Network) R1, f2 func(transport.Network) R2, f3 func(transport.Network) R3, f4 func(transport.Network) R4, f5 func(transport.Network) R5) (R0, R1, R2, R3, R4, R5) {
	held := e.acquireLanes(6)
	var r0 result[R0]
	var r1 result[R1]
	var r2 result[R2]
	var r3 result[R3]
	var r4 result[R4]
	var r5 result[R5]
	e.netPool.parallelDo([]func(){
		func() { r0 = runTask(func() R0 { return f0(held[0].lane) }) },
		func() { r1 = runTask(func() R1 { return f1(held[1].lane) }) },
		func() { r2 = runTask(func() R2 { return f2(held[2].lane) }) },
		func() { r3 = runTask(func() R3 { return f3(held[3].lane) }) },
		func() { r4 = runTask(func() R4 { return f4(held[4].lane) }) },
		func() { r5 = runTask(func() R5 { return f5(held[5].lane) }) },
	})
	e.finishNetFanOut(held, r0.err, r1.err, r2.err, r3.err, r4.err, r5.err)
	return r0.value, r1.value, r2.value, r3.value, r4.value, r5.value
}

// Join7Net runs seven closures in parallel, each against its own lane.
func Join7Net[R0, R1, R2, R3, R4, R5, R6 any](e *Engine, f0 func(transport.Network) R0, f1 func(transport.Network) R1, f2 func(transport.Network) R2, f3 func(transport.Network) R3, f4 func(transport.Network) R4, f5 func(transport.Network) R5, f6 func(transport.Network) R6) (R0, R1, R2, R3, R4, R5, R6) {
	held := e.acquireLanes(7)
	var r0 result[R0]
	var r1 result[R1]
	var r2 result[R2]
	var r3 result[R3]
	var r4 result[R4]
	var r5 result[R5]
	var r6 result[R6]
	e.netPool.parallelDo([]func(){
		func() { r0 = runTask(func() R0 { return f0(held[0].lane) }) },
		func() { r1 = runTask(func() R1 { return f1(held[1].lane) }) },
		func() { r2 = runTask(func() R2 { return f2(held[2].lane) }) },
		func() { r3 = runTask(func() R3 { return f3(held[3].lane) }) },
		func() { r4 = runTask(func() R4 { return f4(held[4].lane) }) },
		func() { r5 = runTask(func() R5 { return f5(held[5].lane) }) },
		func() { r6 = runTask(func() R6 { return f6(held[6].lane) }) },
	})
	e.finishNetFanOut(held, r0.err, r1.err, r2.err, r3.err, r4.err, r5.err, r6.err)
	return r0.value, r1.value, r2.value, r3.value, r4.value, r5.value, r6.value
}

// Join8Net runs eight closures in parallel, each against its own lane.
func Join8Net[R0, R1, R2, R3, R4, R5, R6, R7 any](e *Engine, f0 func(transport.Network) R0, f1 func(transport.Network) R1, f2 func(transport.Network) R2, f3 func(transport.Network) R3, f4 func(transport.Network) R4, f5 func(transport.Network) R5, f6 func(transport.Network) R6, f7 func(transport.Network) R7) (R0, R1, R2, R3, R4, R5, R6, R7) {
	held := e.acquireLanes(8)
	var r0 result[R0]
	var r1 result[R1]
	var r2 result[R2]
	var r3 result[R3]
	var r4 result[R4]
	var r5 result[R5]
	var r6 result[R6]
	var r7 result[R7]
	e.netPool.parallelDo([]func(){
		func() { r0 = runTask(func() R0 { return f0(held[0].lane) }) },
		func() { r1 = runTask(func() R1 { return f1(held[1].lane) }) },
		func() { r2 = runTask(func() R2 { return f2(held[2].lane) }) },
		func() { r3 = runTask(func() R3 { return f3(held[3].lane) }) },
		func() { r4 = runTask(func() R4 { return f4(held[4].lane) }) },
		func() { r5 = runTask(func() R5 { return f5(held[5].lane) }) },
		func() { r6 = runTask(func() R6 { return f6(held[6].lane) }) },
		func() { r7 = runTask(func() R7 { return f7(held[7].lane) }) },
	})
	e.finishNetFanOut(held, r0.err, r1.err, r2.err, r3.err, r4.err, r5.err, r6.err, r7.err)
	return r0.value, r1.value, r2.value, r3.value, r4.value, r5.value, r6.value, r7.value
}

// Join2CPU runs both closures in parallel on the compute pool.
func Join2CPU[R0, R1 any](e *Engine, f0 func() R0, f1 func() R1) (R0, R1) {
	var r0 result[R0]
	var r1 result[R1]
	e.cpuPool.parallelDo([]func(){
		func() { r0 = runTask(f0) },
		func() { r1 = runTask(f1) },
	})
	finishCPUFanOut(r0.err, r1.err)
	return r0.value, r1.value
}

// Join3CPU runs three closures in parallel on the compute pool.
func Join3CPU[R0, R1, R2 any](e *Engine, f0 func() R0, f1 func() R1, f2 func() R2) (R0, R1, R2) {
	var r0 result[R0]
	var r1 result[R1]
	var r2 result[R2]
	e.cpuPool.parallelDo([]func(){
		func() { r0 = runTask(f0) },
		func() { r1 = runTask(f1) },
		func() { r2 = runTask(f2) },
	})
	finishCPUFanOut(r0.err, r1.err, r2.err)
	return r0.value, r1.value, r2.value
}

// Join4CPU runs four closures in parallel on the compute pool.
func Join4CPU[R0, R1, R2, R3 any](e *Engine, f0 func() R0, f1 func() R1, f2 func() R2, f3 func() R3) (R0, R1, R2, R3) {
	var r0 result[R0]
	var r1 result[R1]
	var r2 result[R2]
	var r3 result[R3]
	e.cpuPool.parallelDo([]func(){
		func() { r0 = runTask(f0) },
		func() { r1 = runTask(f1) },
		func() { r2 = runTask(f2) },
		func() { r3 = runTask(f3) },
	})
	finishCPUFanOut(r0.err, r1.err, r2.err, r3.err)
	return r0.value, r1.value, r2.value, r3.value
}

// Join5CPU runs five closures in parallel on the compute pool.
func Join5CPU[R0, R1, R2, R3, R4 any](e *Engine, f0 func() R0, f1 func() R1, f2 func() R2, f3 func() R3, f4 func() R4) (R0, R1, R2, R3, R4) {
	var r0 result[R0]
	var r1 result[R1]
	var r2 result[R2]
	var r3 result[R3]
	var r4 result[R4]
	e.cpuPool.parallelDo([]func(){
		func() { r0 = runTask(f0) },
		func() { r1 = runTask(f1) },
		func() { r2 = runTask(f2) },
		func() { r3 = runTask(f3) },
		func() { r4 = runTask(f4) },
	})
	finishCPUFanOut(r0.err, r1.err, r2.err, r3.err, r4.err)
	return r0.value, r1.value, r2.value, r3.value, r4.value
}
