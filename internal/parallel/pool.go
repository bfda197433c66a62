package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines that run render tasks.
//
// Every worker owns a buffered queue. Tasks are dealt round-robin onto the
// queues; a worker whose queue is empty steals from its neighbours before
// blocking, so a few slow spans (points deep inside the set run to MaxIter)
// do not leave the other workers idle.
//
// Thread safety: WorkerPool is safe for concurrent use. Several ExecuteAll
// calls may share one pool; each waits only for its own tasks.
type WorkerPool struct {
	workers int

	// queues holds one task queue per worker.
	queues []chan func()

	// done is closed by Close to stop the workers.
	done chan struct{}

	// wg tracks worker goroutines.
	wg sync.WaitGroup

	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// A few queued tasks per worker hide the hand-off latency.
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

// worker runs tasks from its own queue, stealing when it runs dry.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(own)
			return

		case task := <-own:
			run(task)

		default:
			if stolen := p.steal(id); stolen != nil {
				run(stolen)
				continue
			}

			select {
			case <-p.done:
				p.drain(own)
				return
			case task := <-own:
				run(task)
			}
		}
	}
}

func run(task func()) {
	if task != nil {
		task()
	}
}

// drain runs whatever is left in queue without blocking.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case task := <-queue:
			run(task)
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue, or returns nil.
func (p *WorkerPool) steal(self int) func() {
	for i := 1; i < p.workers; i++ {
		victim := (self + i) % p.workers
		select {
		case task := <-p.queues[victim]:
			return task
		default:
		}
	}
	return nil
}

// ExecuteAll runs every task on the pool and returns once all of them have
// finished. It is the join point of a render.
//
// If the pool has been closed, ExecuteAll runs the tasks on the calling
// goroutine instead, so the barrier semantics hold either way.
func (p *WorkerPool) ExecuteAll(tasks []func()) {
	if len(tasks) == 0 {
		return
	}
	if !p.running.Load() {
		for _, task := range tasks {
			run(task)
		}
		return
	}

	var pending sync.WaitGroup
	pending.Add(len(tasks))

	for i, task := range tasks {
		wrapped := func() {
			defer pending.Done()
			run(task)
		}

		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			// Closed while submitting; finish the rest here.
			wrapped()
		}
	}

	pending.Wait()
}

// Close stops the workers after they drain their queues.
// Close is safe to call multiple times, but must not race with ExecuteAll.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()

	for _, q := range p.queues {
		p.drain(q)
	}
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork returns an approximate count of tasks waiting in the queues.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.queues {
		total += len(q)
	}
	return total
}
