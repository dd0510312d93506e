// CPU worker pool used to fan broad-phase work out across cores
package compute

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-logr/logr"
)

// ErrPoolClosed is returned by Submit once Close has been called.
var ErrPoolClosed = errors.New("compute: pool closed")

// Pool is a fixed set of long-lived workers draining one FIFO task queue.
// All state is guarded by mu. work wakes idle workers, idle wakes Drain callers.
type Pool struct {
	mu      sync.Mutex
	work    *sync.Cond
	idle    *sync.Cond
	tasks   []func()
	running int
	closed  bool

	size int
	wg   sync.WaitGroup
	log  logr.Logger
}

// NewPool starts size workers. size <= 0 means one worker per CPU.
func NewPool(size int, log logr.Logger) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size: size,
		log:  log,
	}
	p.work = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(i)
	}
	p.log.V(1).Info("Compute: worker pool started", "workers", size)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit queues a task. It never blocks on task execution.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.tasks = append(p.tasks, task)
	p.mu.Unlock()

	p.work.Signal()
	return nil
}

// Drain blocks until the queue is empty and no task is running.
func (p *Pool) Drain() {
	p.mu.Lock()
	for len(p.tasks) > 0 || p.running > 0 {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Close stops accepting tasks, lets queued and in-flight tasks finish and joins every worker.
// Calling Close more than once is a no-op.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.work.Broadcast()
	p.wg.Wait()
	p.log.V(1).Info("Compute: worker pool stopped", "workers", p.size)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.tasks) == 0 && !p.closed {
			p.work.Wait()
		}
		if len(p.tasks) == 0 && p.closed {
			p.mu.Unlock()
			return
		}
		task := p.tasks[0]
		p.tasks[0] = nil
		p.tasks = p.tasks[1:]
		p.running++
		p.mu.Unlock()

		p.run(id, task)

		p.mu.Lock()
		p.running--
		if len(p.tasks) == 0 && p.running == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}
}

func (p *Pool) run(id int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error(fmt.Errorf("task panic: %v", r), "Compute: task failed", "worker", id)
		}
	}()
	task()
}
