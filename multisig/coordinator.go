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
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/alexwelcing/tokenops/metrics"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"
)

// Errors returned by the coordinator. Ledger failures are wrapped so that both
// the sentinel and the underlying cause match errors.Is.
var (
	ErrSubmissionRejected   = errors.New("multisig: submission rejected")
	ErrConfirmationRejected = errors.New("multisig: confirmation rejected")
	ErrQueryFailed          = errors.New("multisig: ledger query failed")
	ErrNoTransactions       = errors.New("multisig: wallet has no transactions")
	ErrUnknownTransaction   = errors.New("multisig: unknown transaction id")
	ErrAlreadyExecuted      = errors.New("multisig: transaction already executed")
	ErrAlreadyConfirmed     = errors.New("multisig: owner already confirmed")
	ErrNoMatch              = errors.New("multisig: no matching pending transaction")
	ErrExecutionRejected    = errors.New("multisig: execution rejected")
	ErrRevocationRejected   = errors.New("multisig: revocation rejected")
	ErrNotConfirmed         = errors.New("multisig: owner has not confirmed")
	ErrBelowQuorum          = errors.New("multisig: quorum not reached")
)

const executedCacheSize = 1024

// Submission identifies a proposal created by Submit.
type Submission struct {
	ID        uint64         `json:"id"`
	TxHash    common.Hash    `json:"tx_hash"`
	Submitter common.Address `json:"submitter"`
}

// Outcome is the result of a confirmation.
type Outcome struct {
	ID        uint64         `json:"id"`
	TxHash    common.Hash    `json:"tx_hash"`
	Confirmer common.Address `json:"confirmer"`

	// Executed is set when this confirmation reached the quorum and the
	// wallet executed the proposed call.
	Executed bool `json:"executed"`

	// InnerCallFailed is set when the quorum was reached but the wallet
	// reported that the proposed call reverted. The confirmation itself
	// stands and the transaction stays unexecuted.
	InnerCallFailed bool `json:"inner_call_failed"`
}

// Coordinator drives the submit/confirm handshake against one wallet.
type Coordinator struct {
	ledger   Ledger
	executed *lru.Cache // id → *PendingTransaction, immutable once executed
	log      log.Logger
}

// NewCoordinator creates a coordinator for the wallet behind ledger.
func NewCoordinator(ledger Ledger) *Coordinator {
	cache, err := lru.New(executedCacheSize)
	if err != nil {
		panic(err)
	}
	return &Coordinator{
		ledger:   ledger,
		executed: cache,
		log:      log.New("module", "multisig", "wallet", ledger.Address()),
	}
}

// Wallet returns the address of the coordinated wallet.
func (c *Coordinator) Wallet() common.Address {
	return c.ledger.Address()
}

// ──────────────────────────────────────────────
//  Submission
// ──────────────────────────────────────────────

// Submit proposes a call to destination through the wallet, signed by one of
// the wallet owners, and waits for it to be mined. The returned id is read
// from the Submission event of the receipt, so it is the id of this proposal
// even when other owners submit concurrently. Nothing is retried.
func (c *Coordinator) Submit(ctx context.Context, auth *bind.TransactOpts, destination common.Address, value *big.Int, data []byte) (sub *Submission, err error) {
	defer func() { metrics.MultisigSubmitted(err) }()

	if auth == nil {
		return nil, fmt.Errorf("%w: no submitter credentials", ErrSubmissionRejected)
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %v", ErrSubmissionRejected, value)
	}
	receipt, err := c.ledger.SubmitTransaction(ctx, auth, destination, value, data)
	if err != nil {
		c.log.Error("Multisig submission failed", "submitter", auth.From, "destination", destination, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionRejected, err)
	}
	ev, ok := receipt.find(EventSubmission, -1)
	if !ok {
		return nil, fmt.Errorf("%w: receipt %s has no Submission event", ErrSubmissionRejected, receipt.TxHash.Hex())
	}
	c.log.Info("Multisig transaction submitted", "id", ev.TransactionID, "submitter", auth.From,
		"destination", destination, "value", value, "tx", receipt.TxHash.Hex())

	return &Submission{ID: ev.TransactionID, TxHash: receipt.TxHash, Submitter: auth.From}, nil
}

// DeriveLatestTransactionID returns the id of the most recently created
// wallet transaction, computed as the pending+executed count minus one.
//
// The result is only the caller's own submission if no other owner submitted
// in between; nothing correlates it with a particular proposal. Prefer the id
// returned by Submit, or FindPending.
func (c *Coordinator) DeriveLatestTransactionID(ctx context.Context) (uint64, error) {
	count, err := c.ledger.TransactionCount(ctx, true, true)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if count == 0 {
		return 0, ErrNoTransactions
	}
	return count - 1, nil
}

// ──────────────────────────────────────────────
//  Confirmation
// ──────────────────────────────────────────────

// Confirm adds the confirmation of a second owner to transaction id. When the
// quorum is reached the wallet executes the call in the same ledger
// transaction; the outcome reports whether it did and whether the inner call
// failed.
func (c *Coordinator) Confirm(ctx context.Context, auth *bind.TransactOpts, id uint64) (out *Outcome, err error) {
	defer func() { metrics.MultisigConfirmed(err) }()

	if auth == nil {
		return nil, fmt.Errorf("%w: no confirmer credentials", ErrConfirmationRejected)
	}
	if err := c.checkConfirmable(ctx, id, auth.From); err != nil {
		return nil, err
	}
	receipt, err := c.ledger.ConfirmTransaction(ctx, auth, id)
	if err != nil {
		c.log.Error("Multisig confirmation failed", "id", id, "confirmer", auth.From, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrConfirmationRejected, err)
	}
	out = c.outcome(ctx, id, auth.From, receipt)
	switch {
	case out.Executed:
		c.log.Info("Multisig transaction executed", "id", id, "confirmer", auth.From, "tx", receipt.TxHash.Hex())
	case out.InnerCallFailed:
		c.log.Warn("Multisig inner call failed", "id", id, "confirmer", auth.From, "tx", receipt.TxHash.Hex())
	default:
		c.log.Info("Multisig transaction confirmed", "id", id, "confirmer", auth.From, "tx", receipt.TxHash.Hex())
	}
	return out, nil
}

// outcome builds the result of a transaction that may have executed id. The
// executed flag is read back from the wallet record; the Execution event is
// only used when that read fails.
func (c *Coordinator) outcome(ctx context.Context, id uint64, signer common.Address, receipt *Receipt) *Outcome {
	out := &Outcome{ID: id, TxHash: receipt.TxHash, Confirmer: signer}
	_, out.InnerCallFailed = receipt.find(EventExecutionFailure, int64(id))
	tx, err := c.ledger.Transaction(ctx, id)
	if err != nil {
		c.log.Warn("Failed to read back wallet transaction", "id", id, "err", err)
		_, out.Executed = receipt.find(EventExecution, int64(id))
		return out
	}
	out.Executed = tx.Executed
	if tx.Executed {
		out.InnerCallFailed = false
	}
	return out
}

// checkConfirmable rejects ids that do not exist, are executed, or were
// already confirmed by owner, before any transaction is signed.
func (c *Coordinator) checkConfirmable(ctx context.Context, id uint64, owner common.Address) error {
	tx, err := c.Transaction(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUnknownTransaction) {
			return fmt.Errorf("%w: %w: %d", ErrConfirmationRejected, ErrUnknownTransaction, id)
		}
		return err
	}
	if tx.Executed {
		return fmt.Errorf("%w: %w: %d", ErrConfirmationRejected, ErrAlreadyExecuted, id)
	}
	confirmed, err := c.ledger.IsConfirmedBy(ctx, id, owner)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if confirmed {
		return fmt.Errorf("%w: %w: %s on %d", ErrConfirmationRejected, ErrAlreadyConfirmed, owner.Hex(), id)
	}
	return nil
}

// ──────────────────────────────────────────────
//  Recovery
// ──────────────────────────────────────────────

// Execute retries the call of a transaction that reached the quorum but whose
// call failed. The signer must be an owner that confirmed it.
func (c *Coordinator) Execute(ctx context.Context, auth *bind.TransactOpts, id uint64) (out *Outcome, err error) {
	defer func() { metrics.MultisigExecuted(err) }()

	if auth == nil {
		return nil, fmt.Errorf("%w: no owner credentials", ErrExecutionRejected)
	}
	tx, err := c.signedBy(ctx, id, auth.From, ErrExecutionRejected)
	if err != nil {
		return nil, err
	}
	if tx.Status != StatusConfirmed {
		return nil, fmt.Errorf("%w: %w: %d has %d of %d", ErrExecutionRejected, ErrBelowQuorum, id, tx.Confirmations, tx.Required)
	}
	receipt, err := c.ledger.ExecuteTransaction(ctx, auth, id)
	if err != nil {
		c.log.Error("Multisig execution failed", "id", id, "owner", auth.From, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrExecutionRejected, err)
	}
	out = c.outcome(ctx, id, auth.From, receipt)
	if out.Executed {
		c.log.Info("Multisig transaction executed", "id", id, "owner", auth.From, "tx", receipt.TxHash.Hex())
	} else {
		c.log.Warn("Multisig inner call failed again", "id", id, "owner", auth.From, "tx", receipt.TxHash.Hex())
	}
	return out, nil
}

// Revoke withdraws the signer's confirmation of an unexecuted transaction.
func (c *Coordinator) Revoke(ctx context.Context, auth *bind.TransactOpts, id uint64) (hash common.Hash, err error) {
	defer func() { metrics.MultisigRevoked(err) }()

	if auth == nil {
		return common.Hash{}, fmt.Errorf("%w: no owner credentials", ErrRevocationRejected)
	}
	if _, err := c.signedBy(ctx, id, auth.From, ErrRevocationRejected); err != nil {
		return common.Hash{}, err
	}
	receipt, err := c.ledger.RevokeConfirmation(ctx, auth, id)
	if err != nil {
		c.log.Error("Multisig revocation failed", "id", id, "owner", auth.From, "err", err)
		return common.Hash{}, fmt.Errorf("%w: %w", ErrRevocationRejected, err)
	}
	c.log.Info("Multisig confirmation revoked", "id", id, "owner", auth.From, "tx", receipt.TxHash.Hex())
	return receipt.TxHash, nil
}

// signedBy loads id and checks it is unexecuted and confirmed by owner.
// Refusals wrap reject.
func (c *Coordinator) signedBy(ctx context.Context, id uint64, owner common.Address, reject error) (*PendingTransaction, error) {
	tx, err := c.Transaction(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUnknownTransaction) {
			return nil, fmt.Errorf("%w: %w", reject, err)
		}
		return nil, err
	}
	if tx.Executed {
		return nil, fmt.Errorf("%w: %w: %d", reject, ErrAlreadyExecuted, id)
	}
	confirmed, err := c.ledger.IsConfirmedBy(ctx, id, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if !confirmed {
		return nil, fmt.Errorf("%w: %w: %s on %d", reject, ErrNotConfirmed, owner.Hex(), id)
	}
	return tx, nil
}

// ──────────────────────────────────────────────
//  Reads
// ──────────────────────────────────────────────

// Transaction returns the wallet record of id with its confirmation count
// and status. Executed records are served from cache.
func (c *Coordinator) Transaction(ctx context.Context, id uint64) (*PendingTransaction, error) {
	if cached, ok := c.executed.Get(id); ok {
		return cached.(*PendingTransaction), nil
	}
	count, err := c.ledger.TransactionCount(ctx, true, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if id >= count {
		return nil, fmt.Errorf("%w: %d (count %d)", ErrUnknownTransaction, id, count)
	}
	required, err := c.ledger.Required(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return c.load(ctx, id, required)
}

// scanRange returns the transaction count and the quorum, read once for a
// scan over every id.
func (c *Coordinator) scanRange(ctx context.Context) (count, required uint64, err error) {
	if count, err = c.ledger.TransactionCount(ctx, true, true); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if required, err = c.ledger.Required(ctx); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return count, required, nil
}

func (c *Coordinator) load(ctx context.Context, id, required uint64) (*PendingTransaction, error) {
	tx, err := c.ledger.Transaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if tx.Confirmations, err = c.ledger.ConfirmationCount(ctx, id); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	tx.Required = required
	tx.Status = statusOf(tx.Executed, tx.Confirmations, tx.Required)
	if tx.Executed {
		c.executed.Add(id, tx)
	}
	return tx, nil
}

// Pending returns every unexecuted wallet transaction in id order.
func (c *Coordinator) Pending(ctx context.Context) ([]*PendingTransaction, error) {
	count, required, err := c.scanRange(ctx)
	if err != nil {
		return nil, err
	}
	var pending []*PendingTransaction
	for id := uint64(0); id < count; id++ {
		if _, ok := c.executed.Get(id); ok {
			continue
		}
		tx, err := c.load(ctx, id, required)
		if err != nil {
			return nil, err
		}
		if !tx.Executed {
			pending = append(pending, tx)
		}
	}
	return pending, nil
}

// FindPending returns the newest unexecuted transaction proposing exactly
// (destination, value, data) that still holds a confirmation. It lets a confirmer locate a proposal by its
// content instead of trusting the latest id.
func (c *Coordinator) FindPending(ctx context.Context, destination common.Address, value *big.Int, data []byte) (*PendingTransaction, error) {
	if value == nil {
		value = new(big.Int)
	}
	count, required, err := c.scanRange(ctx)
	if err != nil {
		return nil, err
	}
	for id := count; id > 0; id-- {
		if _, ok := c.executed.Get(id - 1); ok {
			continue
		}
		tx, err := c.load(ctx, id-1, required)
		if err != nil {
			return nil, err
		}
		if tx.Executed || tx.Confirmations == 0 || tx.Destination != destination || !bytes.Equal(tx.Data, data) {
			continue
		}
		if tx.Value != nil && tx.Value.Cmp(value) == 0 {
			return tx, nil
		}
	}
	return nil, ErrNoMatch
}

// Quorum returns the wallet owners and the confirmation threshold.
func (c *Coordinator) Quorum(ctx context.Context) ([]common.Address, uint64, error) {
	owners, err := c.ledger.Owners(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	required, err := c.ledger.Required(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return owners, required, nil
}
