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

// Package vesting holds the static vesting allocation tables of the game
// token and turns them into vault grants submitted through the multisig.
package vesting

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// DefaultDecimals is the number of decimals of the game token.
const DefaultDecimals int32 = 18

// Errors for table validation and amount conversion.
var (
	ErrUnknownCategory    = errors.New("vesting: unknown category")
	ErrDuplicateCategory  = errors.New("vesting: duplicate category")
	ErrDuplicateRecipient = errors.New("vesting: duplicate recipient")
	ErrZeroRecipient      = errors.New("vesting: zero recipient address")
	ErrInvalidSchedule    = errors.New("vesting: invalid cliff or duration")
	ErrOverAllocated      = errors.New("vesting: category over-allocated")
	ErrNegativeAmount     = errors.New("vesting: amount must be positive")
	ErrFractionalAmount   = errors.New("vesting: amount has more decimals than the token")
)

// Category is a vesting class shared by several recipients.
type Category struct {
	Name                    string          `toml:"name"`
	CliffInMonths           uint16          `toml:"cliff_months"`
	VestingDurationInMonths uint16          `toml:"duration_months"`
	TotalAllocation         decimal.Decimal `toml:"total_allocation"`
}

// Recipient is one beneficiary of a category. Allocation is in whole tokens.
type Recipient struct {
	Address    common.Address  `toml:"address"`
	Category   string          `toml:"category"`
	Allocation decimal.Decimal `toml:"allocation"`
}

// Table is the immutable allocation table. Recipients are processed in
// declaration order everywhere.
type Table struct {
	Categories []Category  `toml:"categories"`
	Recipients []Recipient `toml:"recipients"`
}

// Category returns the category named name.
func (t *Table) Category(name string) (Category, bool) {
	for _, c := range t.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Validate checks the schedule of every category, that every recipient
// belongs to a known category, and that no category hands out more than its
// total allocation.
func (t *Table) Validate() error {
	allocated := make(map[string]decimal.Decimal, len(t.Categories))
	for _, c := range t.Categories {
		if _, dup := allocated[c.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateCategory, c.Name)
		}
		if c.VestingDurationInMonths == 0 || c.CliffInMonths > c.VestingDurationInMonths {
			return fmt.Errorf("%w: %q cliff %d duration %d", ErrInvalidSchedule, c.Name, c.CliffInMonths, c.VestingDurationInMonths)
		}
		if c.TotalAllocation.IsNegative() {
			return fmt.Errorf("%w: %q total %s", ErrNegativeAmount, c.Name, c.TotalAllocation)
		}
		allocated[c.Name] = decimal.Zero
	}
	seen := make(map[common.Address]bool, len(t.Recipients))
	for _, r := range t.Recipients {
		if r.Address == (common.Address{}) {
			return ErrZeroRecipient
		}
		if seen[r.Address] {
			return fmt.Errorf("%w: %s", ErrDuplicateRecipient, r.Address.Hex())
		}
		seen[r.Address] = true

		sum, ok := allocated[r.Category]
		if !ok {
			return fmt.Errorf("%w: %q for %s", ErrUnknownCategory, r.Category, r.Address.Hex())
		}
		if !r.Allocation.IsPositive() {
			return fmt.Errorf("%w: %s", ErrNegativeAmount, r.Address.Hex())
		}
		allocated[r.Category] = sum.Add(r.Allocation)
	}
	for _, c := range t.Categories {
		if allocated[c.Name].GreaterThan(c.TotalAllocation) {
			return fmt.Errorf("%w: %q allocates %s of %s", ErrOverAllocated, c.Name, allocated[c.Name], c.TotalAllocation)
		}
	}
	return nil
}

// ToBaseUnits converts a token amount into base units for a token with the
// given decimals. Amounts finer than one base unit are rejected.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	shifted := amount.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s", ErrFractionalAmount, amount)
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits converts base units into a token amount.
func FromBaseUnits(amount *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(amount, -decimals)
}
