package notifications

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Leader gates the dispatch trigger when multiple service instances run.
// Acquire returns false when another instance holds the trigger; the release
// function must be called once the run completes.
type Leader interface {
	Acquire(ctx context.Context) (bool, func(), error)
}

// SingleInstanceLeader always wins. Used when the service runs alone.
type SingleInstanceLeader struct{}

func (SingleInstanceLeader) Acquire(context.Context) (bool, func(), error) {
	return true, func() {}, nil
}

// Scheduler fires the dispatcher once per calendar day at a fixed hour.
// An explicit loop rather than a cron dependency: the next trigger time is
// computed from the clock, and on each firing leadership is acquired before
// the run so redundant instances stay quiet.
type Scheduler struct {
	dispatcher *Dispatcher
	leader     Leader
	hour       int
	nowFunc    func() time.Time
	log        zerolog.Logger
}

type SchedulerOption func(*Scheduler)

func WithSchedulerNowFunc(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.nowFunc = now
	}
}

func WithSchedulerLogger(log zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.log = log
	}
}

func NewScheduler(dispatcher *Dispatcher, leader Leader, hour int, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		dispatcher: dispatcher,
		leader:     leader,
		hour:       hour,
		nowFunc:    time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// NextTrigger returns the first instant after now at which the daily trigger
// fires: today at the configured hour, or the same hour tomorrow if that has
// already passed.
func NextTrigger(now time.Time, hour int) time.Time {
	year, month, day := now.Date()
	trigger := time.Date(year, month, day, hour, 0, 0, 0, now.Location())
	if !trigger.After(now) {
		trigger = trigger.AddDate(0, 0, 1)
	}
	return trigger
}

// Start runs the scheduler loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		next := NextTrigger(s.nowFunc(), s.hour)
		s.log.Info().Time("next", next).Msg("dispatch trigger scheduled")

		timer := time.NewTimer(next.Sub(s.nowFunc()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.fire(ctx)
	}
}

// fire runs one dispatch under leadership.
func (s *Scheduler) fire(ctx context.Context) {
	acquired, release, err := s.leader.Acquire(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("leader acquisition failed, skipping dispatch run")
		return
	}
	if !acquired {
		s.log.Info().Msg("another instance holds the dispatch trigger")
		return
	}
	defer release()

	if err := s.dispatcher.Run(ctx, s.nowFunc()); err != nil {
		s.log.Error().Err(err).Msg("dispatch run failed")
	}
}
