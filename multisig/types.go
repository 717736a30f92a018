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

// Package multisig coordinates privileged calls through the 2-of-N
// MultiSigWallet: one owner submits an encoded call, a second owner confirms
// it, and the wallet executes the call once the quorum is met.
package multisig

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Status is the lifecycle of a wallet transaction as observed off-chain.
// Transitions only move forward.
type Status uint8

const (
	StatusSubmitted Status = iota // below quorum
	StatusConfirmed               // quorum reached, inner call not executed
	StatusExecuted                // inner call executed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusSubmitted:
		return "submitted"
	case StatusConfirmed:
		return "confirmed"
	case StatusExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// statusOf derives the status from the ledger's executed flag and the
// confirmation count against the wallet quorum.
func statusOf(executed bool, confirmations, required uint64) Status {
	switch {
	case executed:
		return StatusExecuted
	case required > 0 && confirmations >= required:
		return StatusConfirmed
	default:
		return StatusSubmitted
	}
}

// PendingTransaction is the wallet's record of a proposed call.
type PendingTransaction struct {
	ID            uint64         `json:"id"`
	Destination   common.Address `json:"destination"`
	Value         *big.Int       `json:"value"`
	Data          []byte         `json:"data"`
	Executed      bool           `json:"executed"`
	Confirmations uint64         `json:"confirmations"`
	Required      uint64         `json:"required"`
	Status        Status         `json:"status"`
}

// EventKind enumerates the wallet events the coordinator reacts to.
type EventKind uint8

const (
	EventSubmission EventKind = iota
	EventConfirmation
	EventRevocation
	EventExecution
	EventExecutionFailure
)

// Event is a wallet event found in a mined receipt.
type Event struct {
	Kind          EventKind
	TransactionID uint64
	Sender        common.Address // Confirmation and Revocation only
}

// Receipt is the mined result of a wallet transaction.
type Receipt struct {
	TxHash common.Hash
	Block  uint64
	Events []Event
}

// find returns the first event of kind for id. An id of -1 matches any.
func (r *Receipt) find(kind EventKind, id int64) (Event, bool) {
	for _, ev := range r.Events {
		if ev.Kind == kind && (id < 0 || ev.TransactionID == uint64(id)) {
			return ev, true
		}
	}
	return Event{}, false
}
