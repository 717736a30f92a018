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

package claims

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/alexwelcing/tokenops/store"
	"github.com/alexwelcing/tokenops/vesting"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

// manualClock fires every timer immediately, moving its time forward by the
// requested delay and recording it.
type manualClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stuckClock never fires.
type stuckClock struct{ now time.Time }

func (c stuckClock) Now() time.Time                       { return c.now }
func (c stuckClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

type fakeVault struct {
	clock     *manualClock
	latency   time.Duration
	claimable map[common.Address]*big.Int
	queryErr  map[common.Address]error
	claimErr  map[common.Address]error

	queried []common.Address
	claimed []common.Address
}

func newFakeVault(clock *manualClock) *fakeVault {
	return &fakeVault{
		clock:     clock,
		claimable: make(map[common.Address]*big.Int),
		queryErr:  make(map[common.Address]error),
		claimErr:  make(map[common.Address]error),
	}
}

func (v *fakeVault) Claimable(ctx context.Context, recipient common.Address) (*big.Int, error) {
	v.clock.Advance(v.latency)
	v.queried = append(v.queried, recipient)
	if err := v.queryErr[recipient]; err != nil {
		return nil, err
	}
	if amount, ok := v.claimable[recipient]; ok {
		return amount, nil
	}
	return new(big.Int), nil
}

func (v *fakeVault) Claim(ctx context.Context, auth *bind.TransactOpts, recipient common.Address) (common.Hash, error) {
	v.clock.Advance(v.latency)
	if err := v.claimErr[recipient]; err != nil {
		return common.Hash{}, err
	}
	v.claimed = append(v.claimed, recipient)
	v.claimable[recipient] = new(big.Int)
	return common.BytesToHash(recipient.Bytes()), nil
}

type failingCursor struct{}

func (failingCursor) NextTrigger(string) (time.Time, bool, error) { return time.Time{}, false, nil }
func (failingCursor) SetNextTrigger(string, time.Time) error {
	return errors.New("disk full")
}

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol = common.HexToAddress("0x00000000000000000000000000000000000ca201")
)

func recipients(addrs ...common.Address) []vesting.Recipient {
	out := make([]vesting.Recipient, len(addrs))
	for i, addr := range addrs {
		out[i] = vesting.Recipient{Address: addr, Category: "team"}
	}
	return out
}

func captureLogs(s *Scheduler) *[]*log.Record {
	var records []*log.Record
	logger := log.New()
	logger.SetHandler(log.FuncHandler(func(r *log.Record) error {
		records = append(records, r)
		return nil
	}))
	s.log = logger
	return &records
}

func ctxValue(r *log.Record, key string) (interface{}, bool) {
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		if r.Ctx[i] == key {
			return r.Ctx[i+1], true
		}
	}
	return nil, false
}

func TestScheduleAtSplitsLongDelays(t *testing.T) {
	now := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(now)
	s := New(Config{Start: now}, nil, nil, clock)

	target := now.Add(time.Duration(1<<31) * time.Millisecond)
	runs := 0
	err := s.ScheduleAt(context.Background(), target, func(context.Context) error {
		runs++
		require.Equal(t, target, clock.Now())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, runs)
	require.Equal(t, []time.Duration{MaxTimerDelay, time.Millisecond}, clock.waits)
}

func TestScheduleAtMonthDelay(t *testing.T) {
	now := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(now)
	s := New(Config{Start: now}, nil, nil, clock)

	target := nextCycle(now)
	require.NoError(t, s.ScheduleAt(context.Background(), target, func(context.Context) error { return nil }))
	require.Equal(t, []time.Duration{MaxTimerDelay, target.Sub(now) - MaxTimerDelay}, clock.waits)

	var total time.Duration
	for _, w := range clock.waits {
		require.LessOrEqual(t, w, MaxTimerDelay)
		total += w
	}
	require.Equal(t, target.Sub(now), total)
}

func TestScheduleAtShortDelay(t *testing.T) {
	now := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(now)
	s := New(Config{Start: now}, nil, nil, clock)

	target := now.Add(10 * 24 * time.Hour)
	require.NoError(t, s.ScheduleAt(context.Background(), target, func(context.Context) error { return nil }))
	require.Equal(t, []time.Duration{10 * 24 * time.Hour}, clock.waits)
}

func TestScheduleAtPastDue(t *testing.T) {
	now := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(now)
	s := New(Config{Start: now}, nil, nil, clock)
	records := captureLogs(s)

	ran := false
	err := s.ScheduleAt(context.Background(), now.Add(-time.Hour), func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran)
	require.Empty(t, clock.waits)

	var found bool
	for _, r := range *records {
		if r.Msg != "Claim trigger is past due" {
			continue
		}
		until, ok := ctxValue(r, "until")
		require.True(t, ok)
		require.Equal(t, -time.Hour, until)
		found = true
	}
	require.True(t, found)
}

func TestScheduleAtCancelled(t *testing.T) {
	now := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	s := New(Config{Start: now}, nil, nil, stuckClock{now: now})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.ScheduleAt(ctx, now.Add(time.Hour), func(context.Context) error {
		t.Fatal("work ran after cancellation")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunCycleAdvancesByCalendarMonth(t *testing.T) {
	start := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(start)
	vault := newFakeVault(clock)
	vault.latency = 10 * time.Minute
	vault.claimable[alice] = big.NewInt(100)
	vault.claimable[bob] = big.NewInt(200)

	s := New(Config{Start: start, Recipients: recipients(alice, bob)}, vault, nil, clock)
	report, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, start, report.Fired)
	require.Equal(t, time.Date(2022, 4, 2, 8, 41, 0, 0, time.UTC), report.Next)
	require.Equal(t, report.Next, s.NextTrigger())

	// Ledger latency must not shift the schedule.
	require.True(t, clock.Now().After(start.Add(30*time.Minute)))
	report, err = s.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, time.Date(2022, 5, 2, 8, 41, 0, 0, time.UTC), report.Next)
}

func TestRunCycleMonthEndNormalizes(t *testing.T) {
	start := time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC)
	clock := newManualClock(start)
	s := New(Config{Start: start}, newFakeVault(clock), nil, clock)

	report, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, time.Date(2022, 3, 3, 0, 0, 0, 0, time.UTC), report.Next)
}

func TestRunCycleSkipsZeroClaims(t *testing.T) {
	start := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(start)
	vault := newFakeVault(clock)
	s := New(Config{Start: start, Recipients: recipients(alice, bob)}, vault, nil, clock)

	for i := 0; i < 2; i++ {
		report, err := s.RunCycle(context.Background())
		require.NoError(t, err)
		claimed, skipped, failed := report.Counts()
		require.Equal(t, 0, claimed)
		require.Equal(t, 2, skipped)
		require.Equal(t, 0, failed)
		for _, res := range report.Results {
			require.ErrorIs(t, res.Err, ErrClaimSkipped)
		}
	}
	require.Empty(t, vault.claimed)
	require.Equal(t, []common.Address{alice, bob, alice, bob}, vault.queried)
}

func TestRunCycleContinuesPastFailures(t *testing.T) {
	start := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(start)
	vault := newFakeVault(clock)
	queryErr := errors.New("rpc unavailable")
	claimErr := errors.New("execution reverted")
	vault.queryErr[alice] = queryErr
	vault.claimable[bob] = big.NewInt(5)
	vault.claimErr[bob] = claimErr
	vault.claimable[carol] = big.NewInt(7)

	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	s := New(Config{Start: start, Recipients: recipients(alice, bob, carol)}, vault, db, clock)
	report, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	require.ErrorIs(t, report.Results[0].Err, queryErr)
	require.ErrorIs(t, report.Results[1].Err, claimErr)
	require.NoError(t, report.Results[2].Err)
	require.Equal(t, big.NewInt(7), report.Results[2].Amount)
	require.Equal(t, []common.Address{carol}, vault.claimed)

	next, ok, err := db.NextTrigger(DefaultCursor)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, report.Next, next)
}

func TestRunCycleCursorFailureIsFatal(t *testing.T) {
	start := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(start)
	s := New(Config{Start: start, Recipients: recipients(alice)}, newFakeVault(clock), failingCursor{}, clock)

	_, err := s.RunCycle(context.Background())
	require.ErrorIs(t, err, ErrScheduleFault)
}

func TestResumePrefersPersistedCursor(t *testing.T) {
	start := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	persisted := time.Date(2022, 7, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(time.Date(2022, 6, 20, 0, 0, 0, 0, time.UTC))

	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.SetNextTrigger("team", persisted))

	s := New(Config{Name: "team", Start: start}, newFakeVault(clock), db, clock)
	require.NoError(t, s.Resume())
	require.Equal(t, persisted, s.NextTrigger())
}

func TestResumeRefusesStaleSchedule(t *testing.T) {
	start := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(time.Date(2022, 4, 3, 0, 0, 0, 0, time.UTC))
	s := New(Config{Start: start}, newFakeVault(clock), nil, clock)

	require.ErrorIs(t, s.Resume(), ErrStaleSchedule)
}

func TestResumeRequiresStart(t *testing.T) {
	clock := newManualClock(time.Date(2022, 4, 3, 0, 0, 0, 0, time.UTC))
	s := New(Config{}, newFakeVault(clock), nil, clock)

	require.ErrorIs(t, s.Resume(), ErrScheduleFault)
}

func TestRunCatchesUpAndHaltsOnFault(t *testing.T) {
	start := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := newManualClock(start.Add(48 * time.Hour))
	vault := newFakeVault(clock)
	vault.claimable[alice] = big.NewInt(1)

	s := New(Config{Start: start, Recipients: recipients(alice)}, vault, failingCursor{}, clock)
	err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrScheduleFault)

	// The missed trigger fired at once, without arming a timer.
	require.Empty(t, clock.waits)
	require.Equal(t, []common.Address{alice}, vault.claimed)
}

// jumpClock moves forward by jump the first time a timer is armed, as if the
// host had been suspended.
type jumpClock struct {
	manualClock
	jump   time.Duration
	jumped bool
}

func (c *jumpClock) After(d time.Duration) <-chan time.Time {
	if !c.jumped {
		c.jumped = true
		c.Advance(c.jump)
	}
	return c.manualClock.After(d)
}

func TestRunRefusesToReplayAfterClockJump(t *testing.T) {
	start := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	clock := &jumpClock{manualClock: manualClock{now: start.Add(-24 * time.Hour)}, jump: 4 * 31 * 24 * time.Hour}
	vault := newFakeVault(&clock.manualClock)
	vault.claimable[alice] = big.NewInt(1)
	vault.claimable[bob] = big.NewInt(2)

	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	s := New(Config{Start: start, Recipients: recipients(alice, bob)}, vault, db, clock)
	err = s.Run(context.Background())
	require.ErrorIs(t, err, ErrStaleSchedule)
	require.Empty(t, vault.queried)
	require.Empty(t, vault.claimed)

	// The cursor was never advanced, so a restart refuses as well.
	_, ok, err := db.NextTrigger(DefaultCursor)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, start, s.NextTrigger())
}

func TestRunStopsOnCancel(t *testing.T) {
	start := time.Date(2022, 3, 2, 8, 41, 0, 0, time.UTC)
	s := New(Config{Start: start}, nil, nil, stuckClock{now: start.Add(-time.Hour)})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, s.Run(ctx), context.DeadlineExceeded)
}
