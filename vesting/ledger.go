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

package vesting

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	vestingbind "github.com/alexwelcing/tokenops/contracts/vesting"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrClaimReverted is returned when a mined claim transaction failed.
var ErrClaimReverted = errors.New("vesting: claim reverted")

// ContractLedger exposes the claim side of the vault to the claim scheduler.
type ContractLedger struct {
	vault   *vestingbind.VestingVault
	backend bind.DeployBackend
}

// NewContractLedger wires the vault binding to a backend used to wait for receipts.
func NewContractLedger(vault *vestingbind.VestingVault, backend bind.DeployBackend) *ContractLedger {
	return &ContractLedger{vault: vault, backend: backend}
}

// Claimable returns the amount recipient can claim right now, in base units.
func (l *ContractLedger) Claimable(ctx context.Context, recipient common.Address) (*big.Int, error) {
	_, amount, err := l.vault.CalculateGrantClaim(&bind.CallOpts{Context: ctx}, recipient)
	return amount, err
}

// Claim sends claimVestedTokens(recipient) signed by auth and waits for it.
func (l *ContractLedger) Claim(ctx context.Context, auth *bind.TransactOpts, recipient common.Address) (common.Hash, error) {
	if auth == nil {
		return common.Hash{}, errors.New("vesting: no claimer credentials")
	}
	opts := *auth
	opts.Context = ctx
	tx, err := l.vault.ClaimVestedTokens(&opts, recipient)
	if err != nil {
		return common.Hash{}, err
	}
	receipt, err := bind.WaitMined(ctx, l.backend, tx)
	if err != nil {
		return tx.Hash(), fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), fmt.Errorf("%w: %s", ErrClaimReverted, tx.Hash().Hex())
	}
	return tx.Hash(), nil
}
