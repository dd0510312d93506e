package compute

import "sync"

// Batch tracks a group of tasks submitted to a shared Pool so one caller can wait
// for exactly its own work, not for everything else queued on the pool.
type Batch struct {
	pool    *Pool
	mu      sync.Mutex
	done    *sync.Cond
	pending int
}

func (p *Pool) NewBatch() *Batch {
	b := &Batch{pool: p}
	b.done = sync.NewCond(&b.mu)
	return b
}

// Go submits task as part of the batch. If the pool refuses it the error is
// returned and the task is not counted.
func (b *Batch) Go(task func()) error {
	if task == nil {
		return nil
	}
	b.mu.Lock()
	b.pending++
	b.mu.Unlock()

	err := b.pool.Submit(func() {
		defer b.finish()
		task()
	})
	if err != nil {
		b.finish()
	}
	return err
}

// Wait blocks until every accepted task has returned (or panicked).
func (b *Batch) Wait() {
	b.mu.Lock()
	for b.pending > 0 {
		b.done.Wait()
	}
	b.mu.Unlock()
}

func (b *Batch) finish() {
	b.mu.Lock()
	b.pending--
	if b.pending == 0 {
		b.done.Broadcast()
	}
	b.mu.Unlock()
}
