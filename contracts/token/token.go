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

// Package token encodes administrative calls on the game token, the NFT
// collection and the bridge endpoints. The encoded calldata is opaque to the
// multisig coordinator, which only forwards it.
package token

import (
	"errors"
	"math/big"
	"strings"

	"github.com/alexwelcing/tokenops/contracts/token/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Errors returned by the encoders.
var (
	ErrNegativeAmount = errors.New("token: amount cannot be negative")
	ErrZeroAddress    = errors.New("token: zero address")
	ErrUnknownTarget  = errors.New("token: unknown pausable target")
)

var (
	tokenABI  = mustParse(contract.GameTokenABI)
	nftABI    = mustParse(contract.GameNFTABI)
	bridgeABI = mustParse(contract.BridgeABI)
)

func mustParse(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Target names a pausable admin contract.
type Target string

const (
	TargetToken Target = "token"
	TargetNFT   Target = "nft"
)

// Mint encodes token.mint(to, amount). Amount is in base units.
func Mint(to common.Address, amount *big.Int) ([]byte, error) {
	if to == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	return tokenABI.Pack("mint", to, amount)
}

// SafeMint encodes nft.safeMint(to, uri).
func SafeMint(to common.Address, uri string) ([]byte, error) {
	if to == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	return nftABI.Pack("safeMint", to, uri)
}

// SetBaseURI encodes nft.setBaseURI(uri).
func SetBaseURI(uri string) ([]byte, error) {
	return nftABI.Pack("setBaseURI", uri)
}

// Pause encodes pause() on the given target.
func Pause(target Target) ([]byte, error) {
	return packPausable(target, "pause")
}

// Unpause encodes unpause() on the given target.
func Unpause(target Target) ([]byte, error) {
	return packPausable(target, "unpause")
}

// TransferOwnership encodes transferOwnership(newOwner) on the given target.
func TransferOwnership(target Target, newOwner common.Address) ([]byte, error) {
	if newOwner == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	return packPausable(target, "transferOwnership", newOwner)
}

func packPausable(target Target, method string, args ...interface{}) ([]byte, error) {
	switch target {
	case TargetToken:
		return tokenABI.Pack(method, args...)
	case TargetNFT:
		return nftABI.Pack(method, args...)
	default:
		return nil, ErrUnknownTarget
	}
}

// TrustedRemotePath builds the trusted-remote path: the remote endpoint
// address followed by the local endpoint address.
func TrustedRemotePath(remote, local common.Address) []byte {
	path := make([]byte, 0, 2*common.AddressLength)
	path = append(path, remote.Bytes()...)
	return append(path, local.Bytes()...)
}

// SetTrustedRemote encodes bridge.setTrustedRemote(remoteChainID, remote ++ local).
func SetTrustedRemote(remoteChainID uint16, remote, local common.Address) ([]byte, error) {
	if remote == (common.Address{}) || local == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	return bridgeABI.Pack("setTrustedRemote", remoteChainID, TrustedRemotePath(remote, local))
}

// SetMinDstGas encodes bridge.setMinDstGas(dstChainID, packetType, minGas).
func SetMinDstGas(dstChainID, packetType uint16, minGas *big.Int) ([]byte, error) {
	if minGas.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	return bridgeABI.Pack("setMinDstGas", dstChainID, packetType, minGas)
}
