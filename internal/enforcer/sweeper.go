// Package enforcer runs the background sweep that turns overdue
// auto-enforce tasks into enforcement episodes.
package enforcer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carecircle/carecircle-api/internal/clock"
	"github.com/carecircle/carecircle-api/internal/lifecycle"
	"github.com/carecircle/carecircle-api/internal/mailer"
	"github.com/carecircle/carecircle-api/internal/store"
)

// AutoEnforceChannel marks episodes started by the sweeper rather than an
// operator.
const AutoEnforceChannel = "auto"

type Sweeper struct {
	store    *store.TaskStore
	mailer   mailer.Mailer
	clock    clock.Clock
	interval time.Duration
	log      *logrus.Logger
}

func NewSweeper(s *store.TaskStore, m mailer.Mailer, clk clock.Clock, interval time.Duration, log *logrus.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{store: s, mailer: m, clock: clk, interval: interval, log: log}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(); err != nil {
				s.log.WithError(err).Error("enforcement sweep failed")
			} else if n > 0 {
				s.log.WithField("enforced", n).Info("enforcement sweep applied")
			}
		}
	}
}

// SweepOnce enforces every unacknowledged overdue task that opted into
// auto-enforcement and is not already in an episode. Returns how many
// tasks were newly enforced.
func (s *Sweeper) SweepOnce() (int, error) {
	tasks, err := s.store.List(store.ListFilter{})
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	enforced := 0
	for _, t := range tasks {
		if !t.AutoEnforce || t.EnforcedAt != nil || t.AckAt != nil {
			continue
		}
		if lifecycle.Derive(t, now) != lifecycle.StateOverdue {
			continue
		}

		if _, err := s.store.Enforce(t.ID, AutoEnforceChannel); err != nil {
			s.log.WithError(err).WithField("task", t.ID).Error("auto-enforce failed")
			continue
		}
		enforced++

		subject := fmt.Sprintf("Task overdue: %s", t.Title)
		body := fmt.Sprintf("Task %q is overdue and the %s action was applied.", t.Title, t.AutoAction)
		if err := s.mailer.SendAlert(subject, body); err != nil && !errors.Is(err, mailer.ErrUnconfigured) {
			if recErr := s.store.RecordEnforceError(t.ID, err.Error()); recErr != nil {
				s.log.WithError(recErr).WithField("task", t.ID).Error("recording enforce error failed")
			}
		}
	}
	return enforced, nil
}
