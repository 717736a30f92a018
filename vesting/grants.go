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
	"fmt"
	"math/big"
	"time"

	vestingbind "github.com/alexwelcing/tokenops/contracts/vesting"
	"github.com/alexwelcing/tokenops/store"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Grant is one planned addTokenGrant call.
type Grant struct {
	Recipient common.Address
	Category  Category
	Amount    *big.Int // base units
	StartTime time.Time
	Data      []byte // encoded addTokenGrant
}

// PlanGrants encodes one addTokenGrant per recipient, in table order, all
// starting at start.
func PlanGrants(t *Table, vault *vestingbind.VestingVault, start time.Time, decimals int32) ([]Grant, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	startTime := big.NewInt(start.Unix())
	grants := make([]Grant, 0, len(t.Recipients))
	for _, r := range t.Recipients {
		c, _ := t.Category(r.Category)
		amount, err := ToBaseUnits(r.Allocation, decimals)
		if err != nil {
			return nil, fmt.Errorf("grant for %s: %w", r.Address.Hex(), err)
		}
		data, err := vault.PackAddTokenGrant(r.Address, startTime, amount, c.VestingDurationInMonths, c.CliffInMonths)
		if err != nil {
			return nil, fmt.Errorf("grant for %s: %w", r.Address.Hex(), err)
		}
		grants = append(grants, Grant{
			Recipient: r.Address,
			Category:  c,
			Amount:    amount,
			StartTime: start.UTC(),
			Data:      data,
		})
	}
	return grants, nil
}

// GrantReader reads existing grants from the vault.
type GrantReader interface {
	TokenGrants(opts *bind.CallOpts, recipient common.Address) (*vestingbind.Grant, error)
}

// WithoutExisting drops planned grants whose recipient already holds a grant
// in the vault, which would make the vault revert the whole call.
func WithoutExisting(ctx context.Context, reader GrantReader, grants []Grant) ([]Grant, error) {
	out := grants[:0:0]
	for _, g := range grants {
		existing, err := reader.TokenGrants(&bind.CallOpts{Context: ctx}, g.Recipient)
		if err != nil {
			return nil, fmt.Errorf("read grant of %s: %w", g.Recipient.Hex(), err)
		}
		if existing.Amount != nil && existing.Amount.Sign() > 0 {
			log.Info("Grant already exists", "recipient", g.Recipient, "amount", existing.Amount)
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

// Proposer submits a call through the multisig and records it for the
// confirming owner. *multisig.Queue implements it.
type Proposer interface {
	Propose(ctx context.Context, auth *bind.TransactOpts, destination common.Address, value *big.Int, data []byte, note string) (*store.Proposal, error)
}

// SubmitGrants proposes every grant to the vault through the multisig, in
// order. It stops at the first rejected submission and returns the proposals
// created so far.
func SubmitGrants(ctx context.Context, proposer Proposer, vault common.Address, auth *bind.TransactOpts, grants []Grant) ([]*store.Proposal, error) {
	proposals := make([]*store.Proposal, 0, len(grants))
	for _, g := range grants {
		note := fmt.Sprintf("grant %s %s", g.Category.Name, g.Recipient.Hex())
		p, err := proposer.Propose(ctx, auth, vault, nil, g.Data, note)
		if err != nil {
			return proposals, fmt.Errorf("grant for %s: %w", g.Recipient.Hex(), err)
		}
		log.Info("Grant proposed", "id", p.ID, "recipient", g.Recipient, "category", g.Category.Name, "amount", g.Amount)
		proposals = append(proposals, p)
	}
	return proposals, nil
}
