// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package claims runs the monthly vesting claim loop: at every trigger it
// claims the vested tokens of each recipient on their behalf, then re-arms
// itself one calendar month later.
package claims

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/alexwelcing/tokenops/metrics"
	"github.com/alexwelcing/tokenops/vesting"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// DefaultCursor is the store key of the claim schedule.
const DefaultCursor = "claims"

// Errors returned by the scheduler.
var (
	// ErrScheduleFault halts the loop: the next trigger could not be
	// computed or persisted.
	ErrScheduleFault = errors.New("claims: schedule fault")

	// ErrStaleSchedule is returned on start when the next trigger lies more
	// than one cycle in the past.
	ErrStaleSchedule = errors.New("claims: next trigger is more than one cycle in the past")

	// ErrClaimSkipped marks a recipient with nothing to claim. Informational.
	ErrClaimSkipped = errors.New("claims: nothing to claim")
)

// Ledger is the vesting vault as seen by the scheduler.
// *vesting.ContractLedger implements it.
type Ledger interface {
	Claimable(ctx context.Context, recipient common.Address) (*big.Int, error)
	Claim(ctx context.Context, auth *bind.TransactOpts, recipient common.Address) (common.Hash, error)
}

// Cursor persists the next trigger across restarts. *store.Store implements it.
type Cursor interface {
	NextTrigger(name string) (time.Time, bool, error)
	SetNextTrigger(name string, t time.Time) error
}

// Config configures a Scheduler.
type Config struct {
	// Name keys the persisted cursor. Defaults to DefaultCursor.
	Name string

	// Start is the first trigger, used when nothing was persisted yet.
	Start time.Time

	// Recipients are claimed for in this order every cycle.
	Recipients []vesting.Recipient

	// Claimer signs the claim transactions.
	Claimer *bind.TransactOpts
}

// Result is the outcome of one recipient in one cycle.
type Result struct {
	Recipient common.Address
	Amount    *big.Int
	TxHash    common.Hash
	Err       error // ErrClaimSkipped when there was nothing to claim
}

// Report summarizes a cycle.
type Report struct {
	Fired   time.Time
	Next    time.Time
	Results []Result
}

// Counts returns the number of claimed, skipped and failed recipients.
func (r *Report) Counts() (claimed, skipped, failed int) {
	for _, res := range r.Results {
		switch {
		case res.Err == nil:
			claimed++
		case errors.Is(res.Err, ErrClaimSkipped):
			skipped++
		default:
			failed++
		}
	}
	return claimed, skipped, failed
}

// Scheduler is the recurring claim loop. It is not safe for concurrent use;
// one process runs one loop.
type Scheduler struct {
	cfg    Config
	ledger Ledger
	cursor Cursor
	clock  Clock
	log    log.Logger

	next time.Time
}

// New creates a scheduler. A nil cursor keeps the schedule in memory only; a
// nil clock uses the wall clock.
func New(cfg Config, ledger Ledger, cursor Cursor, clock Clock) *Scheduler {
	if cfg.Name == "" {
		cfg.Name = DefaultCursor
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		cfg:    cfg,
		ledger: ledger,
		cursor: cursor,
		clock:  clock,
		log:    log.New("module", "claims"),
		next:   cfg.Start.UTC(),
	}
}

// NextTrigger returns the instant of the next cycle.
func (s *Scheduler) NextTrigger() time.Time {
	return s.next
}

// Resume loads the next trigger from the cursor, falling back to the
// configured start. A trigger that is past due by less than one cycle is
// kept and fires immediately; an older one is refused.
func (s *Scheduler) Resume() error {
	next, source := s.cfg.Start.UTC(), "config"
	if s.cursor != nil {
		stored, ok, err := s.cursor.NextTrigger(s.cfg.Name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrScheduleFault, err)
		}
		if ok {
			next, source = stored, "cursor"
		}
	}
	if next.IsZero() {
		return fmt.Errorf("%w: no start instant configured", ErrScheduleFault)
	}
	now := s.clock.Now()
	if err := s.checkStale(next, now, source); err != nil {
		return err
	}
	s.next = next
	metrics.NextTrigger(next)
	s.log.Info("Claim schedule loaded", "next", next, "source", source, "until", next.Sub(now))
	return nil
}

// checkStale refuses a trigger that lies more than one cycle before now.
func (s *Scheduler) checkStale(next, now time.Time, source string) error {
	if !nextCycle(next).Before(now) {
		return nil
	}
	s.log.Error("Refusing stale claim schedule", "next", next, "source", source, "now", now.UTC())
	return fmt.Errorf("%w: %s", ErrStaleSchedule, next.Format(time.RFC3339))
}

// Run resumes the schedule and loops forever: wait for the trigger, run a
// cycle, repeat. Every firing is checked against the stale limit again, so a
// suspended host or a clock jump halts the loop instead of replaying the
// missed cycles back to back. It returns on context cancellation, a stale
// trigger or a schedule fault.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Resume(); err != nil {
		return err
	}
	for {
		err := s.ScheduleAt(ctx, s.next, func(ctx context.Context) error {
			if err := s.checkStale(s.next, s.clock.Now(), "timer"); err != nil {
				return err
			}
			_, err := s.RunCycle(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
}

// ScheduleAt runs work at target. Waits longer than MaxTimerDelay are made of
// intermediate no-op wake-ups of MaxTimerDelay each. A target that is already
// past runs work immediately; the negative remaining time is logged.
func (s *Scheduler) ScheduleAt(ctx context.Context, target time.Time, work func(context.Context) error) error {
	for {
		until := target.Sub(s.clock.Now())
		if until <= 0 {
			s.log.Warn("Claim trigger is past due", "target", target, "until", until)
			return work(ctx)
		}
		wait := until
		if wait > MaxTimerDelay {
			wait = MaxTimerDelay
		}
		s.log.Debug("Claim timer armed", "target", target, "until", until, "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(wait):
		}
		if wait < until {
			metrics.TimerRearmed()
			continue
		}
		return work(ctx)
	}
}

// RunCycle advances the next trigger by one month, then claims for every
// recipient in table order and persists the new trigger. The trigger is
// advanced before any ledger call so call latency never shifts the schedule.
// Recipient failures are logged and reported, never returned.
func (s *Scheduler) RunCycle(ctx context.Context) (*Report, error) {
	fired := s.next
	next := nextCycle(fired)
	if !next.After(fired) {
		return nil, fmt.Errorf("%w: cannot advance %s", ErrScheduleFault, fired)
	}
	s.next = next
	s.log.Info("Claim cycle started", "fired", fired, "next", next, "until", next.Sub(s.clock.Now()))

	report := &Report{Fired: fired, Next: next}
	for _, r := range s.cfg.Recipients {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Results = append(report.Results, s.claim(ctx, r))
	}
	if s.cursor != nil {
		if err := s.cursor.SetNextTrigger(s.cfg.Name, next); err != nil {
			s.log.Error("Failed to persist claim schedule", "next", next, "err", err)
			return report, fmt.Errorf("%w: %w", ErrScheduleFault, err)
		}
	}
	metrics.NextTrigger(next)

	claimed, skipped, failed := report.Counts()
	s.log.Info("Claim cycle finished", "claimed", claimed, "skipped", skipped, "failed", failed, "next", next)
	return report, nil
}

func (s *Scheduler) claim(ctx context.Context, r vesting.Recipient) Result {
	res := Result{Recipient: r.Address}
	amount, err := s.ledger.Claimable(ctx, r.Address)
	if err != nil {
		s.log.Error("Failed to query claimable amount", "recipient", r.Address, "category", r.Category, "err", err)
		metrics.ClaimFailed()
		res.Err = err
		return res
	}
	if amount == nil || amount.Sign() == 0 {
		s.log.Info("Nothing to claim", "recipient", r.Address, "category", r.Category)
		metrics.ClaimSkipped()
		res.Err = ErrClaimSkipped
		return res
	}
	res.Amount = amount
	res.TxHash, err = s.ledger.Claim(ctx, s.cfg.Claimer, r.Address)
	if err != nil {
		s.log.Error("Claim failed", "recipient", r.Address, "amount", amount, "tx", res.TxHash, "err", err)
		metrics.ClaimFailed()
		res.Err = err
		return res
	}
	s.log.Info("Claimed vested tokens", "recipient", r.Address, "category", r.Category, "amount", amount, "tx", res.TxHash)
	metrics.ClaimSubmitted()
	return res
}
