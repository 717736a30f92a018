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
	"encoding/binary"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var errFakeRevert = errors.New("execution reverted")

type fakeTx struct {
	destination common.Address
	value       *big.Int
	data        []byte
	executed    bool
	confirmedBy map[common.Address]bool
}

// fakeLedger is an in-memory MultiSigWallet with the same quorum rules as
// the deployed contract: submit implies the submitter's confirmation, the
// call executes when the quorum is reached, a failed inner call leaves the
// transaction unexecuted.
type fakeLedger struct {
	mu       sync.Mutex
	address  common.Address
	owners   []common.Address
	required uint64
	txs      []*fakeTx
	failing  map[common.Address]bool
	queryErr error
	sent     uint64

	requiredReads int
}

func newFakeLedger(required uint64, owners ...common.Address) *fakeLedger {
	return &fakeLedger{
		address:  common.HexToAddress("0x5200000000000000000000000000000000000011"),
		owners:   owners,
		required: required,
		failing:  make(map[common.Address]bool),
	}
}

func (f *fakeLedger) isOwner(a common.Address) bool {
	for _, o := range f.owners {
		if o == a {
			return true
		}
	}
	return false
}

func (f *fakeLedger) receipt() *Receipt {
	f.sent++
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], f.sent)
	return &Receipt{TxHash: crypto.Keccak256Hash(nonce[:]), Block: f.sent}
}

func (f *fakeLedger) Address() common.Address { return f.address }

func (f *fakeLedger) SubmitTransaction(_ context.Context, auth *bind.TransactOpts, destination common.Address, value *big.Int, data []byte) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isOwner(auth.From) || destination == (common.Address{}) {
		return nil, errFakeRevert
	}
	id := uint64(len(f.txs))
	f.txs = append(f.txs, &fakeTx{
		destination: destination,
		value:       new(big.Int).Set(value),
		data:        append([]byte{}, data...),
		confirmedBy: make(map[common.Address]bool),
	})
	r := f.receipt()
	r.Events = append(r.Events, Event{Kind: EventSubmission, TransactionID: id})
	f.confirmLocked(id, auth.From, r)
	return r, nil
}

func (f *fakeLedger) ConfirmTransaction(_ context.Context, auth *bind.TransactOpts, id uint64) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isOwner(auth.From) || id >= uint64(len(f.txs)) || f.txs[id].confirmedBy[auth.From] {
		return nil, errFakeRevert
	}
	r := f.receipt()
	f.confirmLocked(id, auth.From, r)
	return r, nil
}

func (f *fakeLedger) ExecuteTransaction(_ context.Context, auth *bind.TransactOpts, id uint64) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isOwner(auth.From) || id >= uint64(len(f.txs)) || !f.txs[id].confirmedBy[auth.From] || f.txs[id].executed {
		return nil, errFakeRevert
	}
	r := f.receipt()
	f.executeLocked(id, r)
	return r, nil
}

func (f *fakeLedger) RevokeConfirmation(_ context.Context, auth *bind.TransactOpts, id uint64) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isOwner(auth.From) || id >= uint64(len(f.txs)) || !f.txs[id].confirmedBy[auth.From] || f.txs[id].executed {
		return nil, errFakeRevert
	}
	delete(f.txs[id].confirmedBy, auth.From)
	r := f.receipt()
	r.Events = append(r.Events, Event{Kind: EventRevocation, TransactionID: id, Sender: auth.From})
	return r, nil
}

func (f *fakeLedger) confirmLocked(id uint64, owner common.Address, r *Receipt) {
	tx := f.txs[id]
	tx.confirmedBy[owner] = true
	r.Events = append(r.Events, Event{Kind: EventConfirmation, TransactionID: id, Sender: owner})
	f.executeLocked(id, r)
}

func (f *fakeLedger) executeLocked(id uint64, r *Receipt) {
	tx := f.txs[id]
	if tx.executed || uint64(len(tx.confirmedBy)) < f.required {
		return
	}
	if f.failing[tx.destination] {
		r.Events = append(r.Events, Event{Kind: EventExecutionFailure, TransactionID: id})
		return
	}
	tx.executed = true
	r.Events = append(r.Events, Event{Kind: EventExecution, TransactionID: id})
}

func (f *fakeLedger) TransactionCount(_ context.Context, pending, executed bool) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return 0, f.queryErr
	}
	var n uint64
	for _, tx := range f.txs {
		if (pending && !tx.executed) || (executed && tx.executed) {
			n++
		}
	}
	return n, nil
}

func (f *fakeLedger) Transaction(_ context.Context, id uint64) (*PendingTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if id >= uint64(len(f.txs)) {
		return &PendingTransaction{ID: id, Value: new(big.Int)}, nil
	}
	tx := f.txs[id]
	return &PendingTransaction{
		ID:          id,
		Destination: tx.destination,
		Value:       new(big.Int).Set(tx.value),
		Data:        append([]byte{}, tx.data...),
		Executed:    tx.executed,
	}, nil
}

func (f *fakeLedger) ConfirmationCount(_ context.Context, id uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id >= uint64(len(f.txs)) {
		return 0, nil
	}
	return uint64(len(f.txs[id].confirmedBy)), nil
}

func (f *fakeLedger) IsConfirmedBy(_ context.Context, id uint64, owner common.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id >= uint64(len(f.txs)) {
		return false, nil
	}
	return f.txs[id].confirmedBy[owner], nil
}

func (f *fakeLedger) Required(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requiredReads++
	return f.required, nil
}

func (f *fakeLedger) Owners(context.Context) ([]common.Address, error) {
	return append([]common.Address{}, f.owners...), nil
}
