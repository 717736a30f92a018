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

// Package multisig provides high-level Go bindings for the MultiSigWallet
// contract. Every privileged change on the game contracts (minting, pausing,
// vesting grants, bridge configuration) is proposed and confirmed through it.
package multisig

import (
	"errors"
	"math/big"
	"strings"

	"github.com/alexwelcing/tokenops/contracts/multisig/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Event names emitted by the wallet.
const (
	EventSubmission       = "Submission"
	EventConfirmation     = "Confirmation"
	EventRevocation       = "Revocation"
	EventExecution        = "Execution"
	EventExecutionFailure = "ExecutionFailure"
)

// ErrUnknownEvent is returned when a log does not belong to the wallet ABI.
var ErrUnknownEvent = errors.New("multisig: log is not a wallet event")

// MultiSigWallet is a high-level wrapper around the on-chain MultiSigWallet
// contract. Transaction options are passed per call because submitter and
// confirmer sign with different owner keys.
type MultiSigWallet struct {
	abi      abi.ABI
	address  common.Address
	contract *bind.BoundContract
}

// NewMultiSigWallet connects to an already-deployed MultiSigWallet contract.
// A nil backend yields a wallet that can only encode calls and parse logs.
func NewMultiSigWallet(addr common.Address, backend bind.ContractBackend) (*MultiSigWallet, error) {
	parsed, err := abi.JSON(strings.NewReader(contract.MultiSigWalletABI))
	if err != nil {
		return nil, err
	}
	return &MultiSigWallet{
		abi:      parsed,
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
	}, nil
}

// Address returns the wallet contract address.
func (w *MultiSigWallet) Address() common.Address {
	return w.address
}

// ABI returns the parsed wallet ABI.
func (w *MultiSigWallet) ABI() abi.ABI {
	return w.abi
}

// ──────────────────────────────────────────────
//  Write methods
// ──────────────────────────────────────────────

// SubmitTransaction proposes a call to destination and adds the sender's
// confirmation in the same ledger transaction.
func (w *MultiSigWallet) SubmitTransaction(opts *bind.TransactOpts, destination common.Address, value *big.Int, data []byte) (*types.Transaction, error) {
	if value == nil {
		value = new(big.Int)
	}
	return w.contract.Transact(opts, "submitTransaction", destination, value, data)
}

// ConfirmTransaction adds the sender's confirmation. Once the wallet quorum is
// reached the wallet executes the proposed call in the same ledger transaction.
func (w *MultiSigWallet) ConfirmTransaction(opts *bind.TransactOpts, transactionID *big.Int) (*types.Transaction, error) {
	return w.contract.Transact(opts, "confirmTransaction", transactionID)
}

// RevokeConfirmation withdraws the sender's confirmation of an unexecuted transaction.
func (w *MultiSigWallet) RevokeConfirmation(opts *bind.TransactOpts, transactionID *big.Int) (*types.Transaction, error) {
	return w.contract.Transact(opts, "revokeConfirmation", transactionID)
}

// ExecuteTransaction retries execution of a confirmed transaction whose inner call failed.
func (w *MultiSigWallet) ExecuteTransaction(opts *bind.TransactOpts, transactionID *big.Int) (*types.Transaction, error) {
	return w.contract.Transact(opts, "executeTransaction", transactionID)
}

// ──────────────────────────────────────────────
//  Read methods
// ──────────────────────────────────────────────

// TransactionInfo holds the on-chain record of a proposed call.
type TransactionInfo struct {
	Destination common.Address
	Value       *big.Int
	Data        []byte
	Executed    bool
}

// Transactions reads the record stored under transactionID.
func (w *MultiSigWallet) Transactions(opts *bind.CallOpts, transactionID *big.Int) (*TransactionInfo, error) {
	var out []interface{}
	err := w.contract.Call(opts, &out, "transactions", transactionID)
	if err != nil {
		return nil, err
	}
	return &TransactionInfo{
		Destination: out[0].(common.Address),
		Value:       out[1].(*big.Int),
		Data:        out[2].([]byte),
		Executed:    out[3].(bool),
	}, nil
}

// GetTransactionCount returns the number of transactions matching the filters.
func (w *MultiSigWallet) GetTransactionCount(opts *bind.CallOpts, pending, executed bool) (*big.Int, error) {
	var out []interface{}
	err := w.contract.Call(opts, &out, "getTransactionCount", pending, executed)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// GetConfirmationCount returns how many owners confirmed transactionID.
func (w *MultiSigWallet) GetConfirmationCount(opts *bind.CallOpts, transactionID *big.Int) (*big.Int, error) {
	var out []interface{}
	err := w.contract.Call(opts, &out, "getConfirmationCount", transactionID)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// Confirmations reports whether owner has confirmed transactionID.
func (w *MultiSigWallet) Confirmations(opts *bind.CallOpts, transactionID *big.Int, owner common.Address) (bool, error) {
	var out []interface{}
	err := w.contract.Call(opts, &out, "confirmations", transactionID, owner)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// Required returns the confirmation quorum.
func (w *MultiSigWallet) Required(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := w.contract.Call(opts, &out, "required")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// GetOwners returns the wallet owners.
func (w *MultiSigWallet) GetOwners(opts *bind.CallOpts) ([]common.Address, error) {
	var out []interface{}
	err := w.contract.Call(opts, &out, "getOwners")
	if err != nil {
		return nil, err
	}
	return out[0].([]common.Address), nil
}

// ──────────────────────────────────────────────
//  Events
// ──────────────────────────────────────────────

// WalletEvent is a decoded wallet log. Sender is only set for Confirmation
// and Revocation.
type WalletEvent struct {
	Name          string
	TransactionId *big.Int
	Sender        common.Address
}

// ParseEvent decodes a log emitted by the wallet.
func (w *MultiSigWallet) ParseEvent(log types.Log) (*WalletEvent, error) {
	if log.Address != w.address || len(log.Topics) == 0 {
		return nil, ErrUnknownEvent
	}
	for name, event := range w.abi.Events {
		if event.ID != log.Topics[0] {
			continue
		}
		out := &WalletEvent{Name: name}
		if err := w.contract.UnpackLog(out, name, log); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrUnknownEvent
}

// ParseReceipt decodes every wallet event contained in receipt, in log order.
// Logs emitted by other contracts (the called destination) are skipped.
func (w *MultiSigWallet) ParseReceipt(receipt *types.Receipt) ([]*WalletEvent, error) {
	var events []*WalletEvent
	for _, l := range receipt.Logs {
		ev, err := w.ParseEvent(*l)
		if errors.Is(err, ErrUnknownEvent) {
			continue
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
