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

// Package chaintest provides an in-memory contract backend that serves canned
// call results and receipts, for testing bindings without a node.
package chaintest

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ChainID is the chain id transactions are signed for.
var ChainID = big.NewInt(1337)

// ErrNoResult is returned by CallContract for a method without a canned result.
var ErrNoResult = errors.New("chaintest: execution reverted")

// Backend implements bind.ContractBackend and bind.DeployBackend.
type Backend struct {
	mu      sync.Mutex
	results map[string][]byte
	sent    []*types.Transaction

	// Receipt builds the receipt of a sent transaction. When nil every
	// transaction succeeds without logs.
	Receipt func(tx *types.Transaction) *types.Receipt
}

// NewBackend returns an empty backend.
func NewBackend() *Backend {
	return &Backend{results: make(map[string][]byte)}
}

// SetResult makes calls to method return outputs.
func (b *Backend) SetResult(method abi.Method, outputs ...interface{}) error {
	packed, err := method.Outputs.Pack(outputs...)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[string(method.ID)] = packed
	return nil
}

// Sent returns the transactions sent so far.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction{}, b.sent...)
}

func (b *Backend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *Backend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if len(call.Data) < 4 {
		return nil, ErrNoResult
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out, ok := b.results[string(call.Data[:4])]
	if !ok {
		return nil, ErrNoResult
	}
	return out, nil
}

func (b *Backend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (b *Backend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *Backend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.sent)), nil
}

func (b *Backend) SuggestGasPrice(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (b *Backend) SuggestGasTipCap(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (b *Backend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) { return 100000, nil }

func (b *Backend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, tx)
	return nil
}

func (b *Backend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (b *Backend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("chaintest: subscriptions not supported")
}

func (b *Backend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	var tx *types.Transaction
	for _, sent := range b.sent {
		if sent.Hash() == hash {
			tx = sent
		}
	}
	build := b.Receipt
	b.mu.Unlock()

	if tx == nil {
		return nil, ethereum.NotFound
	}
	if build == nil {
		return Success(tx), nil
	}
	return build(tx), nil
}

// Success is a successful receipt of tx without logs.
func Success(tx *types.Transaction) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(1),
	}
}

// Transactor returns signing options for a fresh key with the gas fields
// filled in, so no estimation round trips are needed.
func Transactor() (*bind.TransactOpts, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, ChainID)
	if err != nil {
		return nil, err
	}
	auth.GasPrice = big.NewInt(1)
	auth.GasLimit = 300000
	return auth, nil
}
