package application

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

const DefaultPollInterval = 30 * time.Second

// CycleFunc is one call, parse and render pass.
type CycleFunc func(ctx context.Context) error

// Poller repeats a cycle until the context is cancelled. In single-shot mode
// the cycle error is returned; when looping it is logged and the next cycle
// starts after the interval.
type Poller struct {
	Clock    ports.Clock
	Interval time.Duration
	Logger   logrus.FieldLogger
	// Refresh runs before every cycle.
	Refresh func()
	// Sleeping is told the number of the cycle that just ended.
	Sleeping func(cycle int, interval time.Duration)
}

func (p Poller) Run(ctx context.Context, loop bool, cycle CycleFunc) error {
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			p.enter(domain.PollExit)
			return err
		}
		if p.Refresh != nil {
			p.Refresh()
		}

		p.enter(domain.PollCycle)
		err := cycle(ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), !loop:
			p.enter(domain.PollExit)
			return err
		default:
			p.logger().WithError(err).Error("Cycle failed")
		}

		if !loop {
			p.enter(domain.PollExit)
			return nil
		}
		if err := ctx.Err(); err != nil {
			p.enter(domain.PollExit)
			return err
		}

		p.enter(domain.PollSleeping)
		if p.Sleeping != nil {
			p.Sleeping(n, p.interval())
		}
		if err := p.clock().Sleep(ctx, p.interval()); err != nil {
			p.enter(domain.PollExit)
			return err
		}
	}
}

func (p Poller) enter(state domain.PollState) {
	EnterState(p.logger(), state)
}

// EnterState records a state change at debug level.
func EnterState(logger logrus.FieldLogger, state domain.PollState) {
	logger.Debugf("poll state %s", state)
}

func (p Poller) interval() time.Duration {
	if p.Interval <= 0 {
		return DefaultPollInterval
	}
	return p.Interval
}

func (p Poller) clock() ports.Clock {
	if p.Clock == nil {
		return ports.SystemClock{}
	}
	return p.Clock
}

func (p Poller) logger() logrus.FieldLogger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}
