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

// Package contract contains the ABI of the VestingVault contract.
package contract

// VestingVaultABI is the ABI of the VestingVault contract.
const VestingVaultABI = `[
	{
		"constant": false,
		"inputs": [
			{"name": "_recipient",               "type": "address"},
			{"name": "_startTime",               "type": "uint256"},
			{"name": "_amount",                  "type": "uint256"},
			{"name": "_vestingDurationInMonths", "type": "uint16"},
			{"name": "_vestingCliffInMonths",    "type": "uint16"}
		],
		"name": "addTokenGrant",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "_recipient", "type": "address"}],
		"name": "removeTokenGrant",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "_recipient", "type": "address"}],
		"name": "claimVestedTokens",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "_recipient", "type": "address"}],
		"name": "calculateGrantClaim",
		"outputs": [
			{"name": "", "type": "uint16"},
			{"name": "", "type": "uint256"}
		],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "", "type": "address"}],
		"name": "tokenGrants",
		"outputs": [
			{"name": "startTime",       "type": "uint256"},
			{"name": "amount",          "type": "uint256"},
			{"name": "vestingDuration", "type": "uint16"},
			{"name": "vestingCliff",    "type": "uint16"},
			{"name": "monthsClaimed",   "type": "uint16"},
			{"name": "totalClaimed",    "type": "uint256"}
		],
		"payable": false,
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": false, "name": "recipient", "type": "address"}
		],
		"name": "GrantAdded",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": false, "name": "recipient",    "type": "address"},
			{"indexed": false, "name": "amountClaimed", "type": "uint256"}
		],
		"name": "GrantTokensClaimed",
		"type": "event"
	}
]`
