// ABOUTME: One-shot reminder scheduler with a single background driver loop
// ABOUTME: Fires due reminders in fire-at order and hands them to a Delivery

package reminder

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrStopped is returned when scheduling on a stopped scheduler.
var ErrStopped = errors.New("scheduler stopped")

// Reminder is a one-shot job: deliver Message once FireAt has passed.
type Reminder struct {
	ID        string
	Message   string
	FireAt    time.Time
	CreatedAt time.Time

	seq uint64
}

// Delivery performs the action for a due reminder.
type Delivery interface {
	Deliver(ctx context.Context, r Reminder) error
}

// DeliveryFunc adapts a function to the Delivery interface.
type DeliveryFunc func(ctx context.Context, r Reminder) error

// Deliver calls f.
func (f DeliveryFunc) Deliver(ctx context.Context, r Reminder) error {
	return f(ctx, r)
}

// Config holds the dependencies for the scheduler.
type Config struct {
	Delivery Delivery
	Logger   *slog.Logger
	Now      func() time.Time // defaults to time.Now
}

// Scheduler holds pending reminders in a min-heap and fires them from one
// goroutine. Schedule is safe to call from any goroutine.
type Scheduler struct {
	delivery Delivery
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	queue   jobQueue
	nextSeq uint64
	stopped bool

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler. Call Start to begin firing.
func NewScheduler(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		delivery: cfg.Delivery,
		logger:   logger,
		now:      now,
		wake:     make(chan struct{}, 1),
	}
}

// Start launches the driver loop. It stops when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Info("reminder scheduler started")
}

// Stop halts the driver loop and waits for it to exit. Reminders still
// pending are dropped. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	dropped := len(s.queue)
	s.queue = nil
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("reminder scheduler stopped", "dropped", dropped)
}

// Schedule enqueues message to fire at fireAt.
func (s *Scheduler) Schedule(fireAt time.Time, message string) (Reminder, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return Reminder{}, ErrStopped
	}

	r := &Reminder{
		ID:        uuid.New().String(),
		Message:   message,
		FireAt:    fireAt,
		CreatedAt: s.now(),
		seq:       s.nextSeq,
	}
	s.nextSeq++

	heap.Push(&s.queue, r)
	isHead := s.queue.peek() == r
	pending := len(s.queue)
	s.mu.Unlock()

	if isHead {
		s.signal()
	}

	s.logger.Debug("reminder scheduled",
		"reminder_id", r.ID,
		"fire_at", r.FireAt,
		"pending", pending,
	)
	return *r, nil
}

// ScheduleAfter enqueues message to fire delay from now.
func (s *Scheduler) ScheduleAfter(message string, delay time.Duration) (Reminder, error) {
	return s.Schedule(s.now().Add(delay), message)
}

// Pending returns the number of reminders waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// signal wakes the driver loop without blocking.
func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// loop sleeps until the earliest reminder is due, fires every due reminder,
// and repeats. A new earlier reminder interrupts the sleep via wake.
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		for _, r := range s.popDue() {
			s.fire(ctx, r)
		}

		wait, ok := s.untilNext()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		var timerC <-chan time.Time
		if ok {
			timer.Reset(wait)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		case <-timerC:
		}
	}
}

// popDue removes and returns all reminders whose fire-at has passed, in order.
func (s *Scheduler) popDue() []*Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var due []*Reminder
	for {
		head := s.queue.peek()
		if head == nil || head.FireAt.After(now) {
			return due
		}
		due = append(due, heap.Pop(&s.queue).(*Reminder))
	}
}

// untilNext returns how long until the earliest reminder is due.
// ok is false when nothing is pending.
func (s *Scheduler) untilNext() (wait time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	head := s.queue.peek()
	if head == nil {
		return 0, false
	}
	wait = head.FireAt.Sub(s.now())
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

// fire delivers a reminder. Failures are logged; the caller that scheduled
// the reminder has already been answered.
func (s *Scheduler) fire(ctx context.Context, r *Reminder) {
	if s.delivery == nil {
		s.logger.Warn("reminder fired with no delivery configured", "reminder_id", r.ID)
		return
	}
	if err := s.delivery.Deliver(ctx, *r); err != nil {
		s.logger.Error("reminder delivery failed",
			"reminder_id", r.ID,
			"error", err,
		)
		return
	}
	s.logger.Info("reminder fired",
		"reminder_id", r.ID,
		"fire_at", r.FireAt,
		"late_by", s.now().Sub(r.FireAt),
	)
}
