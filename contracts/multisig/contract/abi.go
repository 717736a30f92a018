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

// Package contract contains the ABI of the MultiSigWallet contract that gates
// every privileged call on the game contracts.
package contract

// MultiSigWalletABI is the ABI of the MultiSigWallet contract.
const MultiSigWalletABI = `[
	{
		"constant": false,
		"inputs": [
			{"name": "destination", "type": "address"},
			{"name": "value",       "type": "uint256"},
			{"name": "data",        "type": "bytes"}
		],
		"name": "submitTransaction",
		"outputs": [{"name": "transactionId", "type": "uint256"}],
		"payable": false,
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "transactionId", "type": "uint256"}],
		"name": "confirmTransaction",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "transactionId", "type": "uint256"}],
		"name": "revokeConfirmation",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "transactionId", "type": "uint256"}],
		"name": "executeTransaction",
		"outputs": [],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [
			{"name": "pending",  "type": "bool"},
			{"name": "executed", "type": "bool"}
		],
		"name": "getTransactionCount",
		"outputs": [{"name": "count", "type": "uint256"}],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "", "type": "uint256"}],
		"name": "transactions",
		"outputs": [
			{"name": "destination", "type": "address"},
			{"name": "value",       "type": "uint256"},
			{"name": "data",        "type": "bytes"},
			{"name": "executed",    "type": "bool"}
		],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "transactionId", "type": "uint256"}],
		"name": "getConfirmationCount",
		"outputs": [{"name": "count", "type": "uint256"}],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [
			{"name": "", "type": "uint256"},
			{"name": "", "type": "address"}
		],
		"name": "confirmations",
		"outputs": [{"name": "", "type": "bool"}],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "required",
		"outputs": [{"name": "", "type": "uint256"}],
		"payable": false,
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "getOwners",
		"outputs": [{"name": "", "type": "address[]"}],
		"payable": false,
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "sender",        "type": "address"},
			{"indexed": true, "name": "transactionId", "type": "uint256"}
		],
		"name": "Confirmation",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "sender",        "type": "address"},
			{"indexed": true, "name": "transactionId", "type": "uint256"}
		],
		"name": "Revocation",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [{"indexed": true, "name": "transactionId", "type": "uint256"}],
		"name": "Submission",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [{"indexed": true, "name": "transactionId", "type": "uint256"}],
		"name": "Execution",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [{"indexed": true, "name": "transactionId", "type": "uint256"}],
		"name": "ExecutionFailure",
		"type": "event"
	}
]`
