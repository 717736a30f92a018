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
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/alexwelcing/tokenops/store"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// ProposalStore persists queued proposals. *store.Store implements it.
type ProposalStore interface {
	PutProposal(p *store.Proposal) error
	Proposal(wallet common.Address, id uint64) (*store.Proposal, error)
	Proposals(wallet common.Address, state store.ProposalState) ([]*store.Proposal, error)
}

// Queue is the durable hand-off between the submitting owner and the
// confirming owner. The submitter records every proposal it creates; the
// confirmer drains the awaiting ones in id order.
type Queue struct {
	coord *Coordinator
	store ProposalStore
	now   func() time.Time
	log   log.Logger
}

// NewQueue creates a queue for the coordinator's wallet.
func NewQueue(coord *Coordinator, s ProposalStore) *Queue {
	return &Queue{
		coord: coord,
		store: s,
		now:   time.Now,
		log:   log.New("module", "queue", "wallet", coord.Wallet()),
	}
}

// Propose submits a call through the wallet and records it as awaiting
// confirmation. Note is a free-form operator label.
func (q *Queue) Propose(ctx context.Context, auth *bind.TransactOpts, destination common.Address, value *big.Int, data []byte, note string) (*store.Proposal, error) {
	if value == nil {
		value = new(big.Int)
	}
	sub, err := q.coord.Submit(ctx, auth, destination, value, data)
	if err != nil {
		return nil, err
	}
	now := uint64(q.now().Unix())
	p := &store.Proposal{
		Wallet:      q.coord.Wallet(),
		ID:          sub.ID,
		Destination: destination,
		Value:       new(big.Int).Set(value),
		Data:        data,
		Note:        note,
		Submitter:   sub.Submitter,
		SubmitTx:    sub.TxHash,
		State:       store.StateAwaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := q.store.PutProposal(p); err != nil {
		// The proposal exists on the ledger; only the hand-off record is lost.
		q.log.Error("Failed to queue proposal", "id", sub.ID, "err", err)
		return p, fmt.Errorf("queue proposal %d: %w", sub.ID, err)
	}
	q.log.Info("Proposal queued", "id", sub.ID, "note", note)
	return p, nil
}

// Awaiting lists proposals waiting for a confirmation.
func (q *Queue) Awaiting() ([]*store.Proposal, error) {
	return q.store.Proposals(q.coord.Wallet(), store.StateAwaiting)
}

// ConfirmResult pairs a queued proposal with its confirmation attempt.
type ConfirmResult struct {
	Proposal *store.Proposal
	Outcome  *Outcome
	Err      error
}

// ConfirmAwaiting confirms every awaiting proposal with the confirmer's
// credentials. A failed confirmation is recorded in its result and does not
// stop the remaining ones.
func (q *Queue) ConfirmAwaiting(ctx context.Context, auth *bind.TransactOpts) ([]ConfirmResult, error) {
	if auth == nil {
		return nil, fmt.Errorf("%w: no confirmer credentials", ErrConfirmationRejected)
	}
	awaiting, err := q.Awaiting()
	if err != nil {
		return nil, err
	}
	results := make([]ConfirmResult, 0, len(awaiting))
	for _, p := range awaiting {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if p.Submitter == auth.From {
			q.log.Warn("Skipping own proposal", "id", p.ID, "owner", auth.From)
			continue
		}
		out, err := q.coord.Confirm(ctx, auth, p.ID)
		results = append(results, ConfirmResult{Proposal: p, Outcome: out, Err: err})
		if err != nil {
			q.reconcile(ctx, p, err)
			continue
		}
		p.Confirmer = auth.From
		p.ConfirmTx = out.TxHash
		switch {
		case out.Executed:
			p.State = store.StateExecuted
		case out.InnerCallFailed:
			p.State = store.StateExecutionFailed
		default:
			// quorum above two; leave it for the next owner
		}
		q.save(p)
	}
	return results, nil
}

// RetryFailed executes again every proposal whose call failed when the
// quorum was reached. The signer must be one of the confirming owners.
func (q *Queue) RetryFailed(ctx context.Context, auth *bind.TransactOpts) ([]ConfirmResult, error) {
	failed, err := q.store.Proposals(q.coord.Wallet(), store.StateExecutionFailed)
	if err != nil {
		return nil, err
	}
	results := make([]ConfirmResult, 0, len(failed))
	for _, p := range failed {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		out, err := q.coord.Execute(ctx, auth, p.ID)
		results = append(results, ConfirmResult{Proposal: p, Outcome: out, Err: err})
		if err != nil {
			q.reconcile(ctx, p, err)
			continue
		}
		if out.Executed {
			p.State = store.StateExecuted
			q.save(p)
		}
	}
	return results, nil
}

// Withdraw revokes the submitter's confirmation of a queued proposal, so the
// confirming owner no longer picks it up.
func (q *Queue) Withdraw(ctx context.Context, auth *bind.TransactOpts, id uint64) (*store.Proposal, error) {
	p, err := q.store.Proposal(q.coord.Wallet(), id)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	if p.State != store.StateAwaiting {
		return nil, fmt.Errorf("%w: proposal %d is %s", ErrRevocationRejected, id, p.State)
	}
	if _, err := q.coord.Revoke(ctx, auth, id); err != nil {
		return nil, err
	}
	p.State = store.StateRevoked
	q.save(p)
	q.log.Info("Proposal withdrawn", "id", id)
	return p, nil
}

// reconcile marks a proposal executed when the confirmation was refused
// because another owner already executed it.
func (q *Queue) reconcile(ctx context.Context, p *store.Proposal, cause error) {
	if !errors.Is(cause, ErrAlreadyExecuted) {
		q.log.Error("Proposal confirmation failed", "id", p.ID, "err", cause)
		return
	}
	tx, err := q.coord.Transaction(ctx, p.ID)
	if err != nil || !tx.Executed {
		return
	}
	p.State = store.StateExecuted
	q.save(p)
}

func (q *Queue) save(p *store.Proposal) {
	p.UpdatedAt = uint64(q.now().Unix())
	if err := q.store.PutProposal(p); err != nil {
		q.log.Error("Failed to update proposal", "id", p.ID, "state", p.State, "err", err)
	}
}
