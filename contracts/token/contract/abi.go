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

// Package contract contains the ABIs of the game token, the game NFT
// collection and the cross-chain bridge endpoints. Only the administrative
// surface driven through the multisig is listed.
package contract

// GameTokenABI is the admin ABI of the ERC20 game token.
const GameTokenABI = `[
	{
		"constant": false,
		"inputs": [
			{"name": "to",     "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "mint",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{"constant": false, "inputs": [], "name": "pause",   "outputs": [], "payable": false, "type": "function"},
	{"constant": false, "inputs": [], "name": "unpause", "outputs": [], "payable": false, "type": "function"},
	{
		"constant": false,
		"inputs": [{"name": "newOwner", "type": "address"}],
		"name": "transferOwnership",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "paused",
		"outputs": [{"name": "", "type": "bool"}],
		"payable": false,
		"type": "function"
	}
]`

// GameNFTABI is the admin ABI of the ERC721 game collection.
const GameNFTABI = `[
	{
		"constant": false,
		"inputs": [
			{"name": "to",  "type": "address"},
			{"name": "uri", "type": "string"}
		],
		"name": "safeMint",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "baseURI_", "type": "string"}],
		"name": "setBaseURI",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{"constant": false, "inputs": [], "name": "pause",   "outputs": [], "payable": false, "type": "function"},
	{"constant": false, "inputs": [], "name": "unpause", "outputs": [], "payable": false, "type": "function"},
	{
		"constant": false,
		"inputs": [{"name": "newOwner", "type": "address"}],
		"name": "transferOwnership",
		"outputs": [],
		"payable": false,
		"type": "function"
	}
]`

// BridgeABI is the admin ABI shared by the OFT and ONFT bridge endpoints.
const BridgeABI = `[
	{
		"constant": false,
		"inputs": [
			{"name": "_srcChainId", "type": "uint16"},
			{"name": "_path",       "type": "bytes"}
		],
		"name": "setTrustedRemote",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "_dstChainId",  "type": "uint16"},
			{"name": "_packetType",  "type": "uint16"},
			{"name": "_minGas",      "type": "uint256"}
		],
		"name": "setMinDstGas",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [
			{"name": "_srcChainId",  "type": "uint16"},
			{"name": "_srcAddress",  "type": "bytes"}
		],
		"name": "isTrustedRemote",
		"outputs": [{"name": "", "type": "bool"}],
		"payable": false,
		"type": "function"
	}
]`
