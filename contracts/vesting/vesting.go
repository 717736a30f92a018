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

// Package vesting provides Go bindings for the VestingVault contract that
// holds team, advisor and ecosystem allocations of the game token.
package vesting

import (
	"math/big"
	"strings"

	"github.com/alexwelcing/tokenops/contracts/vesting/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// VestingVault is a high-level wrapper around the on-chain VestingVault contract.
type VestingVault struct {
	abi      abi.ABI
	address  common.Address
	contract *bind.BoundContract
}

// NewVestingVault connects to an already-deployed VestingVault contract.
func NewVestingVault(addr common.Address, backend bind.ContractBackend) (*VestingVault, error) {
	parsed, err := abi.JSON(strings.NewReader(contract.VestingVaultABI))
	if err != nil {
		return nil, err
	}
	return &VestingVault{
		abi:      parsed,
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
	}, nil
}

// Address returns the vault contract address.
func (v *VestingVault) Address() common.Address {
	return v.address
}

// ABI returns the parsed vault ABI.
func (v *VestingVault) ABI() abi.ABI {
	return v.abi
}

// ──────────────────────────────────────────────
//  Calldata
// ──────────────────────────────────────────────

// PackAddTokenGrant encodes an addTokenGrant call. The vault only accepts it
// from its owner, so it is always routed through the multisig.
func (v *VestingVault) PackAddTokenGrant(recipient common.Address, startTime, amount *big.Int, durationInMonths, cliffInMonths uint16) ([]byte, error) {
	return v.abi.Pack("addTokenGrant", recipient, startTime, amount, durationInMonths, cliffInMonths)
}

// PackRemoveTokenGrant encodes a removeTokenGrant call.
func (v *VestingVault) PackRemoveTokenGrant(recipient common.Address) ([]byte, error) {
	return v.abi.Pack("removeTokenGrant", recipient)
}

// ──────────────────────────────────────────────
//  Write methods
// ──────────────────────────────────────────────

// ClaimVestedTokens releases the vested, unclaimed part of recipient's grant to
// the recipient. Any account may send it.
func (v *VestingVault) ClaimVestedTokens(opts *bind.TransactOpts, recipient common.Address) (*types.Transaction, error) {
	return v.contract.Transact(opts, "claimVestedTokens", recipient)
}

// ──────────────────────────────────────────────
//  Read methods
// ──────────────────────────────────────────────

// CalculateGrantClaim returns the number of months and the amount currently
// claimable by recipient.
func (v *VestingVault) CalculateGrantClaim(opts *bind.CallOpts, recipient common.Address) (uint16, *big.Int, error) {
	var out []interface{}
	err := v.contract.Call(opts, &out, "calculateGrantClaim", recipient)
	if err != nil {
		return 0, nil, err
	}
	return out[0].(uint16), out[1].(*big.Int), nil
}

// Grant holds the on-chain vesting record of one recipient.
type Grant struct {
	StartTime       *big.Int
	Amount          *big.Int
	VestingDuration uint16
	VestingCliff    uint16
	MonthsClaimed   uint16
	TotalClaimed    *big.Int
}

// TokenGrants reads the grant of recipient. A zero Amount means no grant exists.
func (v *VestingVault) TokenGrants(opts *bind.CallOpts, recipient common.Address) (*Grant, error) {
	var out []interface{}
	err := v.contract.Call(opts, &out, "tokenGrants", recipient)
	if err != nil {
		return nil, err
	}
	return &Grant{
		StartTime:       out[0].(*big.Int),
		Amount:          out[1].(*big.Int),
		VestingDuration: out[2].(uint16),
		VestingCliff:    out[3].(uint16),
		MonthsClaimed:   out[4].(uint16),
		TotalClaimed:    out[5].(*big.Int),
	}, nil
}
