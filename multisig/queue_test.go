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

package multisig

import (
	"context"
	"testing"
	"time"

	"github.com/alexwelcing/tokenops/store"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *Coordinator, *store.Store) {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	coord, _ := newTestCoordinator()
	q := NewQueue(coord, s)
	q.now = func() time.Time { return time.Date(2022, time.March, 2, 8, 41, 0, 0, time.UTC) }
	return q, coord, s
}

func TestQueueHandshake(t *testing.T) {
	ctx := context.Background()
	q, _, s := newTestQueue(t)

	first, err := q.Propose(ctx, signer(ownerA), gameToken, nil, pauseCall, "pause token")
	require.NoError(t, err)
	second, err := q.Propose(ctx, signer(ownerA), gameNFT, nil, pauseCall, "pause nft")
	require.NoError(t, err)

	awaiting, err := q.Awaiting()
	require.NoError(t, err)
	require.Len(t, awaiting, 2)
	require.Equal(t, first.ID, awaiting[0].ID)
	require.Equal(t, "pause token", awaiting[0].Note)

	results, err := q.ConfirmAwaiting(ctx, signer(ownerB))
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
		require.True(t, r.Outcome.Executed)
	}

	got, err := s.Proposal(q.coord.Wallet(), second.ID)
	require.NoError(t, err)
	require.Equal(t, store.StateExecuted, got.State)
	require.Equal(t, ownerB, got.Confirmer)

	awaiting, err = q.Awaiting()
	require.NoError(t, err)
	require.Empty(t, awaiting)
}

func TestQueueSkipsOwnProposals(t *testing.T) {
	ctx := context.Background()
	q, _, _ := newTestQueue(t)

	_, err := q.Propose(ctx, signer(ownerA), gameToken, nil, pauseCall, "")
	require.NoError(t, err)

	results, err := q.ConfirmAwaiting(ctx, signer(ownerA))
	require.NoError(t, err)
	require.Empty(t, results)

	awaiting, err := q.Awaiting()
	require.NoError(t, err)
	require.Len(t, awaiting, 1)
}

func TestQueueReconcilesExecutedElsewhere(t *testing.T) {
	ctx := context.Background()
	q, coord, _ := newTestQueue(t)

	p, err := q.Propose(ctx, signer(ownerA), gameToken, nil, pauseCall, "")
	require.NoError(t, err)

	// A third owner confirms outside the queue.
	_, err = coord.Confirm(ctx, signer(ownerC), p.ID)
	require.NoError(t, err)

	results, err := q.ConfirmAwaiting(ctx, signer(ownerB))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, ErrAlreadyExecuted)

	awaiting, err := q.Awaiting()
	require.NoError(t, err)
	require.Empty(t, awaiting)
}

func TestQueueRecordsInnerFailure(t *testing.T) {
	ctx := context.Background()
	q, _, s := newTestQueue(t)
	q.coord.ledger.(*fakeLedger).failing[gameNFT] = true

	p, err := q.Propose(ctx, signer(ownerA), gameNFT, nil, unpauseCall, "")
	require.NoError(t, err)
	_, err = q.ConfirmAwaiting(ctx, signer(ownerB))
	require.NoError(t, err)

	got, err := s.Proposal(q.coord.Wallet(), p.ID)
	require.NoError(t, err)
	require.Equal(t, store.StateExecutionFailed, got.State)
}

func TestQueueRetriesFailedProposals(t *testing.T) {
	ctx := context.Background()
	q, _, s := newTestQueue(t)
	ledger := q.coord.ledger.(*fakeLedger)
	ledger.failing[gameNFT] = true

	p, err := q.Propose(ctx, signer(ownerA), gameNFT, nil, unpauseCall, "unpause nft")
	require.NoError(t, err)
	_, err = q.ConfirmAwaiting(ctx, signer(ownerB))
	require.NoError(t, err)

	results, err := q.RetryFailed(ctx, signer(ownerB))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Outcome.InnerCallFailed)

	got, err := s.Proposal(q.coord.Wallet(), p.ID)
	require.NoError(t, err)
	require.Equal(t, store.StateExecutionFailed, got.State)

	ledger.failing[gameNFT] = false
	results, err = q.RetryFailed(ctx, signer(ownerB))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Outcome.Executed)

	got, err = s.Proposal(q.coord.Wallet(), p.ID)
	require.NoError(t, err)
	require.Equal(t, store.StateExecuted, got.State)
}

func TestQueueWithdraw(t *testing.T) {
	ctx := context.Background()
	q, _, s := newTestQueue(t)

	p, err := q.Propose(ctx, signer(ownerA), gameToken, nil, pauseCall, "pause token")
	require.NoError(t, err)

	_, err = q.Withdraw(ctx, signer(ownerA), p.ID)
	require.NoError(t, err)

	got, err := s.Proposal(q.coord.Wallet(), p.ID)
	require.NoError(t, err)
	require.Equal(t, store.StateRevoked, got.State)

	awaiting, err := q.Awaiting()
	require.NoError(t, err)
	require.Empty(t, awaiting)

	_, err = q.Withdraw(ctx, signer(ownerA), p.ID)
	require.ErrorIs(t, err, ErrRevocationRejected)

	_, err = q.Withdraw(ctx, signer(ownerA), 99)
	require.ErrorIs(t, err, store.ErrNotFound)
}
