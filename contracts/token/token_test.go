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

package token

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var (
	alice  = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	remote = common.HexToAddress("0x1111111111111111111111111111111111111111")
	local  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestMint(t *testing.T) {
	data, err := Mint(alice, big.NewInt(5000))
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256([]byte("mint(address,uint256)"))[:4], data[:4])

	args, err := tokenABI.Methods["mint"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, alice, args[0].(common.Address))
	require.Equal(t, int64(5000), args[1].(*big.Int).Int64())
}

func TestMintRejectsBadInput(t *testing.T) {
	_, err := Mint(common.Address{}, big.NewInt(1))
	require.ErrorIs(t, err, ErrZeroAddress)
	_, err = Mint(alice, big.NewInt(-1))
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestPauseTargets(t *testing.T) {
	pause := crypto.Keccak256([]byte("pause()"))[:4]
	for _, target := range []Target{TargetToken, TargetNFT} {
		data, err := Pause(target)
		require.NoError(t, err)
		require.Equal(t, pause, data)
	}
	_, err := Unpause(Target("bridge"))
	require.ErrorIs(t, err, ErrUnknownTarget)
}

func TestSetTrustedRemote(t *testing.T) {
	path := TrustedRemotePath(remote, local)
	require.Len(t, path, 40)
	require.Equal(t, remote.Bytes(), path[:20])
	require.Equal(t, local.Bytes(), path[20:])

	data, err := SetTrustedRemote(106, remote, local)
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256([]byte("setTrustedRemote(uint16,bytes)"))[:4], data[:4])

	args, err := bridgeABI.Methods["setTrustedRemote"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, uint16(106), args[0].(uint16))
	require.Equal(t, path, args[1].([]byte))
}

func TestSafeMint(t *testing.T) {
	data, err := SafeMint(alice, "ipfs://bafy/7.json")
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256([]byte("safeMint(address,string)"))[:4], data[:4])

	args, err := nftABI.Methods["safeMint"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, alice, args[0].(common.Address))
	require.Equal(t, "ipfs://bafy/7.json", args[1].(string))

	_, err = SafeMint(common.Address{}, "ipfs://bafy/7.json")
	require.ErrorIs(t, err, ErrZeroAddress)
}

func TestSetBaseURI(t *testing.T) {
	data, err := SetBaseURI("https://assets.example.org/nft/")
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256([]byte("setBaseURI(string)"))[:4], data[:4])

	args, err := nftABI.Methods["setBaseURI"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, "https://assets.example.org/nft/", args[0].(string))
}

func TestTransferOwnership(t *testing.T) {
	selector := crypto.Keccak256([]byte("transferOwnership(address)"))[:4]
	for _, target := range []Target{TargetToken, TargetNFT} {
		data, err := TransferOwnership(target, alice)
		require.NoError(t, err)
		require.Equal(t, selector, data[:4])
		require.Equal(t, alice, common.BytesToAddress(data[4:]))
	}

	_, err := TransferOwnership(TargetToken, common.Address{})
	require.ErrorIs(t, err, ErrZeroAddress)
	_, err = TransferOwnership(Target("bridge"), alice)
	require.ErrorIs(t, err, ErrUnknownTarget)
}

func TestSetMinDstGas(t *testing.T) {
	data, err := SetMinDstGas(106, 1, big.NewInt(200000))
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256([]byte("setMinDstGas(uint16,uint16,uint256)"))[:4], data[:4])

	args, err := bridgeABI.Methods["setMinDstGas"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, uint16(106), args[0].(uint16))
	require.Equal(t, uint16(1), args[1].(uint16))
	require.Equal(t, int64(200000), args[2].(*big.Int).Int64())

	_, err = SetMinDstGas(106, 1, big.NewInt(-1))
	require.ErrorIs(t, err, ErrNegativeAmount)
}
