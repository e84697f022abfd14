package parallel

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrWorkerPanic is returned when a task panics inside a worker.
var ErrWorkerPanic = errors.New("parallel: worker panic")

// Pool is a fixed-size worker pool for batch task execution.
//
// Workers are started once and reused across batches, so per-batch dispatch
// cost is a channel send rather than a goroutine spawn. The job channel is
// buffered at 3x the worker count to keep submitters from blocking on a busy
// pool. Run must not be called from inside a task: a nested batch on the same
// pool can starve itself of workers.
type Pool struct {
	size      int
	jobs      chan poolJob
	closeOnce sync.Once
}

type poolJob struct {
	fn    func() error
	batch *batch
}

// batch tracks one Run call. Only the first failure is kept.
type batch struct {
	wg   sync.WaitGroup
	once sync.Once
	err  error
}

func (b *batch) fail(err error) {
	b.once.Do(func() { b.err = err })
}

// NewPool starts size workers. Sizes below 1 are raised to 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{size: size, jobs: make(chan poolJob, size*3)}
	for i := 0; i < size; i++ {
		go func() {
			for job := range p.jobs {
				job.run()
			}
		}()
	}
	return p
}

func (j poolJob) run() {
	defer j.batch.wg.Done()
	if err := guard(j.fn)(); err != nil {
		j.batch.fail(err)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Run executes tasks on the pool and blocks until every task has returned.
// Nil tasks are skipped. If any task fails or panics the batch fails with the
// first error observed; results written by the other tasks must be discarded.
func (p *Pool) Run(tasks ...func() error) error {
	b := &batch{}
	for _, task := range tasks {
		if task == nil {
			continue
		}
		b.wg.Add(1)
		p.jobs <- poolJob{fn: task, batch: b}
	}
	b.wg.Wait()
	return b.err
}

// Close stops the workers. Calling Run after Close panics.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.jobs) })
}

// Map applies fn to every chunk on the pool and returns the results in chunk
// order, regardless of completion order. A failing chunk fails the whole
// batch and no partial results are returned.
func Map[C, R any](p *Pool, chunks []C, fn func(C) (R, error)) ([]R, error) {
	results := make([]R, len(chunks))
	tasks := make([]func() error, len(chunks))
	for i, c := range chunks {
		tasks[i] = func() error {
			r, err := fn(c)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			results[i] = r
			return nil
		}
	}
	if err := p.Run(tasks...); err != nil {
		return nil, err
	}
	return results, nil
}

// Nested runs background on a fresh single-worker group while foreground
// runs in the calling goroutine, then waits for both. Each nested call adds
// at most one live worker, so recursion to depth d holds at most 2^d workers.
// The background error takes precedence.
func Nested(background, foreground func() error) error {
	var g errgroup.Group
	g.SetLimit(1)
	g.Go(guard(background))
	ferr := guard(foreground)()
	if err := g.Wait(); err != nil {
		return err
	}
	return ferr
}

// guard converts a panic in fn into an ErrWorkerPanic error.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
			}
		}()
		return fn()
	}
}
