package calendarsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"restobook/pkg/logger"
	"restobook/pkg/model"
)

// ErrQueueFull is reported when a job is dropped because the queue is at capacity.
var ErrQueueFull = errors.New("calendar sync queue full")

type Result struct {
	Job     Job
	EventID string
	Err     error
}

type DispatcherOption func(*Dispatcher)

// WithJobTimeout bounds each calendar round trip. Default 10s.
func WithJobTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) { disp.jobTimeout = d }
}

// WithResultHook observes every result after it is logged.
func WithResultHook(hook func(Result)) DispatcherOption {
	return func(disp *Dispatcher) { disp.hook = hook }
}

// Dispatcher queues reservation changes and applies them on one worker
// goroutine, so events for the same reservation are applied in order.
// It satisfies service.Notifier.
type Dispatcher struct {
	applier    *Applier
	log        *logger.Logger
	jobTimeout time.Duration
	hook       func(Result)

	jobs    chan Job
	results chan Result

	mu      sync.RWMutex
	closed  bool
	workers sync.WaitGroup
}

func NewDispatcher(applier *Applier, queueSize int, log *logger.Logger, opts ...DispatcherOption) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}

	d := &Dispatcher{
		applier:    applier,
		log:        log,
		jobTimeout: 10 * time.Second,
		jobs:       make(chan Job, queueSize),
		results:    make(chan Result, queueSize),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.workers.Add(2)
	go d.work()
	go d.report()

	return d
}

func (d *Dispatcher) ReservationCreated(ctx context.Context, r *model.Reservation) {
	d.enqueue(Job{Kind: JobCreated, Reservation: r.Clone()})
}

func (d *Dispatcher) ReservationModified(ctx context.Context, before, after *model.Reservation) {
	job := Job{Kind: JobModified, Reservation: after.Clone()}
	if job.Reservation.CalendarEventID == "" && before != nil {
		job.Reservation.CalendarEventID = before.CalendarEventID
	}
	d.enqueue(job)
}

func (d *Dispatcher) ReservationCancelled(ctx context.Context, r *model.Reservation) {
	d.enqueue(Job{Kind: JobCancelled, Reservation: r.Clone()})
}

// enqueue never blocks the booking path; a full queue drops the job.
func (d *Dispatcher) enqueue(job Job) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("Calendar sync job after shutdown dropped", "kind", job.Kind, "reservation_id", job.Reservation.ID)
		return
	}

	select {
	case d.jobs <- job:
	default:
		d.results <- Result{Job: job, Err: ErrQueueFull}
	}
}

func (d *Dispatcher) work() {
	defer d.workers.Done()
	defer close(d.results)

	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
		eventID, err := d.applier.Apply(ctx, job)
		cancel()
		d.results <- Result{Job: job, EventID: eventID, Err: err}
	}
}

func (d *Dispatcher) report() {
	defer d.workers.Done()

	for res := range d.results {
		if res.Err != nil {
			d.log.Warn("Calendar sync failed",
				"kind", res.Job.Kind,
				"reservation_id", res.Job.Reservation.ID,
				"phone", res.Job.Reservation.Phone,
				"date", res.Job.Reservation.Date,
				"event_id", res.EventID,
				"error", res.Err,
			)
		} else {
			d.log.Info("Calendar synced",
				"kind", res.Job.Kind,
				"reservation_id", res.Job.Reservation.ID,
				"event_id", res.EventID,
			)
		}
		if d.hook != nil {
			d.hook(res)
		}
	}
}

// Close stops accepting jobs and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
