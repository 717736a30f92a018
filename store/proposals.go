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

package store

import (
	"encoding/binary"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/go-faster/errors"
)

// ProposalState is the handshake state of a queued multisig proposal.
type ProposalState string

const (
	// StateAwaiting proposals were submitted and wait for a second owner.
	StateAwaiting ProposalState = "awaiting_confirmation"
	// StateExecuted proposals reached quorum and their call succeeded.
	StateExecuted ProposalState = "executed"
	// StateExecutionFailed proposals reached quorum but the wallet reported
	// that the inner call failed.
	StateExecutionFailed ProposalState = "execution_failed"
	// StateRevoked proposals were withdrawn by their submitter.
	StateRevoked ProposalState = "revoked"
)

// Proposal is a multisig transaction handed from the submitting owner to the
// confirming owner.
type Proposal struct {
	Wallet      common.Address
	ID          uint64
	Destination common.Address
	Value       *big.Int
	Data        []byte
	Note        string
	Submitter   common.Address
	SubmitTx    common.Hash
	Confirmer   common.Address
	ConfirmTx   common.Hash
	State       ProposalState
	CreatedAt   uint64 // unix seconds
	UpdatedAt   uint64 // unix seconds
}

// Created returns the creation instant.
func (p *Proposal) Created() time.Time {
	return time.Unix(int64(p.CreatedAt), 0).UTC()
}

var proposalPrefix = []byte("proposal/")

// proposalKey is prefix ++ wallet ++ big-endian id so scans return proposals
// of one wallet in id order.
func proposalKey(wallet common.Address, id uint64) []byte {
	key := make([]byte, 0, len(proposalPrefix)+common.AddressLength+8)
	key = append(key, proposalPrefix...)
	key = append(key, wallet.Bytes()...)
	return binary.BigEndian.AppendUint64(key, id)
}

func walletPrefix(wallet common.Address) []byte {
	return append(append([]byte{}, proposalPrefix...), wallet.Bytes()...)
}

// PutProposal inserts or replaces a proposal.
func (s *Store) PutProposal(p *Proposal) error {
	raw, err := rlp.EncodeToBytes(p)
	if err != nil {
		return errors.Wrap(err, "encode proposal")
	}
	if err := s.put(proposalKey(p.Wallet, p.ID), raw); err != nil {
		return errors.Wrapf(err, "write proposal %d", p.ID)
	}
	return nil
}

// Proposal returns the proposal id of wallet, or ErrNotFound.
func (s *Store) Proposal(wallet common.Address, id uint64) (*Proposal, error) {
	raw, err := s.get(proposalKey(wallet, id))
	if err != nil {
		return nil, err
	}
	p := new(Proposal)
	if err := rlp.DecodeBytes(raw, p); err != nil {
		return nil, errors.Wrapf(err, "decode proposal %d", id)
	}
	return p, nil
}

// Proposals returns the proposals of wallet in id order. An empty state
// returns every proposal.
func (s *Store) Proposals(wallet common.Address, state ProposalState) ([]*Proposal, error) {
	var out []*Proposal
	err := s.scan(walletPrefix(wallet), func(raw []byte) error {
		p := new(Proposal)
		if err := rlp.DecodeBytes(raw, p); err != nil {
			return errors.Wrap(err, "decode proposal")
		}
		if state == "" || p.State == state {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}
