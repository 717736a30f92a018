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

	msbind "github.com/alexwelcing/tokenops/contracts/multisig"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrReverted is returned when a mined transaction has a failed status.
var ErrReverted = errors.New("multisig: transaction reverted")

// Ledger is the wallet as seen by the coordinator. Write methods return once
// the transaction is mined.
type Ledger interface {
	// Address returns the wallet address.
	Address() common.Address

	SubmitTransaction(ctx context.Context, auth *bind.TransactOpts, destination common.Address, value *big.Int, data []byte) (*Receipt, error)
	ConfirmTransaction(ctx context.Context, auth *bind.TransactOpts, id uint64) (*Receipt, error)
	// ExecuteTransaction retries the call of a transaction that reached the
	// quorum but whose call failed.
	ExecuteTransaction(ctx context.Context, auth *bind.TransactOpts, id uint64) (*Receipt, error)
	RevokeConfirmation(ctx context.Context, auth *bind.TransactOpts, id uint64) (*Receipt, error)

	// TransactionCount counts transactions matching the filters.
	TransactionCount(ctx context.Context, pending, executed bool) (uint64, error)
	// Transaction reads the record of id. Confirmations, Required and Status
	// are left zero; the coordinator fills them.
	Transaction(ctx context.Context, id uint64) (*PendingTransaction, error)
	ConfirmationCount(ctx context.Context, id uint64) (uint64, error)
	IsConfirmedBy(ctx context.Context, id uint64, owner common.Address) (bool, error)
	Required(ctx context.Context) (uint64, error)
	Owners(ctx context.Context) ([]common.Address, error)
}

// ContractLedger implements Ledger over the MultiSigWallet binding.
type ContractLedger struct {
	wallet  *msbind.MultiSigWallet
	backend bind.DeployBackend
}

// NewContractLedger wires the binding to a backend used to wait for receipts.
// An *ethclient.Client satisfies both.
func NewContractLedger(wallet *msbind.MultiSigWallet, backend bind.DeployBackend) *ContractLedger {
	return &ContractLedger{wallet: wallet, backend: backend}
}

func (l *ContractLedger) Address() common.Address { return l.wallet.Address() }

func (l *ContractLedger) SubmitTransaction(ctx context.Context, auth *bind.TransactOpts, destination common.Address, value *big.Int, data []byte) (*Receipt, error) {
	tx, err := l.wallet.SubmitTransaction(withContext(ctx, auth), destination, value, data)
	if err != nil {
		return nil, err
	}
	return l.wait(ctx, tx)
}

func (l *ContractLedger) ConfirmTransaction(ctx context.Context, auth *bind.TransactOpts, id uint64) (*Receipt, error) {
	tx, err := l.wallet.ConfirmTransaction(withContext(ctx, auth), new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return l.wait(ctx, tx)
}

func (l *ContractLedger) ExecuteTransaction(ctx context.Context, auth *bind.TransactOpts, id uint64) (*Receipt, error) {
	tx, err := l.wallet.ExecuteTransaction(withContext(ctx, auth), new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return l.wait(ctx, tx)
}

func (l *ContractLedger) RevokeConfirmation(ctx context.Context, auth *bind.TransactOpts, id uint64) (*Receipt, error) {
	tx, err := l.wallet.RevokeConfirmation(withContext(ctx, auth), new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return l.wait(ctx, tx)
}

func (l *ContractLedger) TransactionCount(ctx context.Context, pending, executed bool) (uint64, error) {
	count, err := l.wallet.GetTransactionCount(callOpts(ctx), pending, executed)
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

func (l *ContractLedger) Transaction(ctx context.Context, id uint64) (*PendingTransaction, error) {
	info, err := l.wallet.Transactions(callOpts(ctx), new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return &PendingTransaction{
		ID:          id,
		Destination: info.Destination,
		Value:       info.Value,
		Data:        info.Data,
		Executed:    info.Executed,
	}, nil
}

func (l *ContractLedger) ConfirmationCount(ctx context.Context, id uint64) (uint64, error) {
	count, err := l.wallet.GetConfirmationCount(callOpts(ctx), new(big.Int).SetUint64(id))
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

func (l *ContractLedger) IsConfirmedBy(ctx context.Context, id uint64, owner common.Address) (bool, error) {
	return l.wallet.Confirmations(callOpts(ctx), new(big.Int).SetUint64(id), owner)
}

func (l *ContractLedger) Required(ctx context.Context) (uint64, error) {
	required, err := l.wallet.Required(callOpts(ctx))
	if err != nil {
		return 0, err
	}
	return required.Uint64(), nil
}

func (l *ContractLedger) Owners(ctx context.Context) ([]common.Address, error) {
	return l.wallet.GetOwners(callOpts(ctx))
}

// wait blocks until tx is mined and decodes the wallet events of its receipt.
func (l *ContractLedger) wait(ctx context.Context, tx *types.Transaction) (*Receipt, error) {
	receipt, err := bind.WaitMined(ctx, l.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrReverted, tx.Hash().Hex())
	}
	walletEvents, err := l.wallet.ParseReceipt(receipt)
	if err != nil {
		return nil, fmt.Errorf("decoding receipt %s: %w", tx.Hash().Hex(), err)
	}
	out := &Receipt{TxHash: receipt.TxHash}
	if receipt.BlockNumber != nil {
		out.Block = receipt.BlockNumber.Uint64()
	}
	for _, ev := range walletEvents {
		kind, ok := eventKinds[ev.Name]
		if !ok {
			continue
		}
		out.Events = append(out.Events, Event{
			Kind:          kind,
			TransactionID: ev.TransactionId.Uint64(),
			Sender:        ev.Sender,
		})
	}
	return out, nil
}

var eventKinds = map[string]EventKind{
	msbind.EventSubmission:       EventSubmission,
	msbind.EventConfirmation:     EventConfirmation,
	msbind.EventRevocation:       EventRevocation,
	msbind.EventExecution:        EventExecution,
	msbind.EventExecutionFailure: EventExecutionFailure,
}

// withContext returns a copy of auth bound to ctx.
func withContext(ctx context.Context, auth *bind.TransactOpts) *bind.TransactOpts {
	opts := *auth
	opts.Context = ctx
	return &opts
}

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}
