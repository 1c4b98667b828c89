package worker

import (
	"context"
	"digest/digest/utils/logging"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("summarization queue is full")
	ErrPoolStopped = errors.New("summarization pool is stopped")
)

// Job asks for the article at URL to be summarized into record SummaryID.
type Job struct {
	SummaryID int
	URL       string
}

type Processor interface {
	Process(ctx context.Context, job Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job Job) error

func (f ProcessorFunc) Process(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// Task is the handle for a submitted job.
type Task struct {
	ID          uuid.UUID
	Job         Job
	SubmittedAt time.Time

	done chan struct{}
	err  error
}

// Done is closed once the job has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err reports the job's error. Only meaningful after Done is closed.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

type Options struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	Metrics    *Metrics
}

// Pool runs jobs on a fixed number of goroutines fed by a bounded queue.
type Pool struct {
	processor Processor
	opts      Options
	queue     chan *Task
	wg        sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewPool(processor Processor, opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		processor: processor,
		opts:      opts,
		queue:     make(chan *Task, opts.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.started = true
	logging.AppLogger.Info("summary workers started", zap.Int("workers", p.opts.Workers), zap.Int("queue_size", p.opts.QueueSize))
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) (*Task, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return nil, ErrPoolStopped
	}

	task := &Task{
		ID:          uuid.New(),
		Job:         job,
		SubmittedAt: time.Now(),
		done:        make(chan struct{}),
	}
	select {
	case p.queue <- task:
		p.opts.Metrics.queued()
		return task, nil
	default:
		p.opts.Metrics.observe(outcomeRejected, 0)
		return nil, ErrQueueFull
	}
}

// Stop refuses new jobs and waits for queued ones to finish. When ctx ends
// first, running jobs are cancelled and Stop returns ctx's error once the
// workers have exited.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.queue)
	started := p.started
	p.mu.Unlock()

	if !started {
		for task := range p.queue {
			p.opts.Metrics.dequeued()
			task.err = ErrPoolStopped
			close(task.done)
		}
	}

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.cancel()
		logging.AppLogger.Info("summary workers stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-finished
		logging.AppLogger.Warn("summary workers cancelled", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.queue {
		p.opts.Metrics.dequeued()
		p.run(task)
	}
	logging.AppLogger.Debug("summary worker exited", zap.Int("worker", id))
}

func (p *Pool) run(task *Task) {
	defer close(task.done)

	ctx := p.ctx
	if p.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			task.err = errors.New("summarization panicked")
			logging.ErrorLogger.Error("summary job panicked", zap.Int("summary_id", task.Job.SummaryID), zap.Any("panic", r))
			p.opts.Metrics.observe(outcomeFailed, time.Since(start))
		}
	}()

	task.err = p.processor.Process(ctx, task.Job)
	elapsed := time.Since(start)
	if task.err != nil {
		p.opts.Metrics.observe(outcomeFailed, elapsed)
		logging.ErrorLogger.Error("summary job failed",
			zap.String("task_id", task.ID.String()),
			zap.Int("summary_id", task.Job.SummaryID),
			zap.String("url", task.Job.URL),
			zap.Error(task.err),
		)
		return
	}
	p.opts.Metrics.observe(outcomeSucceeded, elapsed)
	logging.AppLogger.Info("summary job done",
		zap.String("task_id", task.ID.String()),
		zap.Int("summary_id", task.Job.SummaryID),
		zap.Duration("elapsed", elapsed),
	)
}
