package engine

import "runtime"

// workerPool runs submitted thunks on a fixed number of worker
// goroutines. Submission never blocks: an internal pump buffers tasks
// between the submit side and the workers. Goroutines that must wait
// for pool work to finish call waitHelping, which executes queued
// tasks itself instead of idling - that keeps nested fan-outs from
// exhausting the worker budget.
type workerPool struct {
	in    chan func()
	tasks chan func()
}

// newWorkerPool starts a pool with the given number of workers.
// workers <= 0 means the ambient available parallelism.
func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &workerPool{
		in:    make(chan func()),
		tasks: make(chan func()),
	}
	go p.pump()
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// pump moves tasks from the submit side to the workers through an
// unbounded queue, so submit never blocks on a saturated pool.
func (p *workerPool) pump() {
	var queue []func()
	for {
		var out chan func()
		var next func()
		if len(queue) > 0 {
			out = p.tasks
			next = queue[0]
		}
		select {
		case t, ok := <-p.in:
			if !ok {
				for _, t := range queue {
					p.tasks <- t
				}
				close(p.tasks)
				return
			}
			queue = append(queue, t)
		case out <- next:
			queue = queue[1:]
		}
	}
}

func (p *workerPool) worker() {
	for t := range p.tasks {
		t()
	}
}

// submit enqueues a task. Tasks must not panic; callers wrap closures
// so panics are captured as results.
func (p *workerPool) submit(t func()) {
	p.in <- t
}

// waitHelping blocks until done is closed, executing queued pool tasks
// while waiting.
func (p *workerPool) waitHelping(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case t, ok := <-p.tasks:
			if !ok {
				<-done
				return
			}
			t()
		}
	}
}

// close stops the pool once queued tasks have drained. Submitting
// after close panics.
func (p *workerPool) close() {
	close(p.in)
}

// parallelDo executes all thunks as a structured fan-out: a balanced
// recursive split that offloads one half and runs the other on the
// current goroutine, bounding the pool task count at O(len(fs)).
// It returns when every thunk has finished.
func (p *workerPool) parallelDo(fs []func()) {
	switch len(fs) {
	case 0:
		return
	case 1:
		fs[0]()
	default:
		mid := len(fs) / 2
		done := make(chan struct{})
		rest := fs[mid:]
		p.submit(func() {
			defer close(done)
			p.parallelDo(rest)
		})
		p.parallelDo(fs[:mid])
		p.waitHelping(done)
	}
}
