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

// Package config loads the operator configuration: a TOML file whose
// secrets and endpoints can be overridden from the environment.
package config

import (
	"math/big"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alexwelcing/tokenops/store"
	"github.com/alexwelcing/tokenops/vesting"
	"github.com/caarlos0/env/v6"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-faster/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOKENOPS_"

// Errors returned by Validate and Transactor.
var (
	ErrMissingRPC      = errors.New("config: network rpc endpoint not set")
	ErrMissingChainID  = errors.New("config: network chain id not set")
	ErrMissingContract = errors.New("config: contract address not set")
	ErrMissingAccount  = errors.New("config: account keystore not set")
	ErrMissingStart    = errors.New("config: claims start not set")
)

type Network struct {
	RPC     string `toml:"rpc" env:"RPC"`
	ChainID int64  `toml:"chain_id" env:"CHAIN_ID"`
}

// Contracts holds the deployed addresses the operator drives.
type Contracts struct {
	Multisig common.Address `toml:"multisig"`
	Vesting  common.Address `toml:"vesting"`
	Token    common.Address `toml:"token"`
	NFT      common.Address `toml:"nft"`
	Bridge   common.Address `toml:"bridge"`
}

// Account is an encrypted keystore file and its password.
type Account struct {
	Keystore string `toml:"keystore" env:"KEYSTORE"`
	Password string `toml:"password" env:"PASSWORD"`
}

// Accounts are the three roles. Submitter and confirmer must be distinct
// owners of the multisig wallet.
type Accounts struct {
	Submitter Account `toml:"submitter" envPrefix:"SUBMITTER_"`
	Confirmer Account `toml:"confirmer" envPrefix:"CONFIRMER_"`
	Claimer   Account `toml:"claimer" envPrefix:"CLAIMER_"`
}

type Token struct {
	Decimals int32 `toml:"decimals"`
}

// Claims configures the monthly claim loop.
type Claims struct {
	Start  time.Time `toml:"start"`
	Cursor string    `toml:"cursor"`
}

type Store struct {
	Dir string `toml:"dir" env:"DATA_DIR"`
}

// Config is the whole operator configuration.
type Config struct {
	Network   Network       `toml:"network"`
	Contracts Contracts     `toml:"contracts"`
	Accounts  Accounts      `toml:"accounts"`
	Token     Token         `toml:"token"`
	Claims    Claims        `toml:"claims"`
	Vesting   vesting.Table `toml:"vesting"`
	Store     Store         `toml:"store"`
}

// Default returns the configuration used for anything the file leaves out.
func Default() *Config {
	return &Config{
		Network: Network{RPC: "http://localhost:9650/ext/bc/C/rpc"},
		Token:   Token{Decimals: vesting.DefaultDecimals},
		Claims:  Claims{Cursor: "claims"},
		Store:   Store{Dir: "tokenops-data"},
	}
}

// Load reads the TOML file at path over the defaults and applies the
// environment overrides. An empty path loads the defaults and environment
// only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	}
	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(err, "environment")
	}
	return cfg, nil
}

// Validate checks the settings every command needs and the vesting table.
// Role specific settings are checked where they are used.
func (c *Config) Validate() error {
	if c.Network.RPC == "" {
		return ErrMissingRPC
	}
	if c.Network.ChainID <= 0 {
		return ErrMissingChainID
	}
	if c.Contracts.Multisig == (common.Address{}) {
		return errors.Wrap(ErrMissingContract, "multisig")
	}
	if err := c.Vesting.Validate(); err != nil {
		return errors.Wrap(err, "vesting")
	}
	return nil
}

// ChainID returns the configured chain id.
func (c *Config) ChainID() *big.Int {
	return big.NewInt(c.Network.ChainID)
}

// OpenStore opens the durable store under the configured directory.
func (c *Config) OpenStore() (*store.Store, error) {
	return store.Open(c.Store.Dir)
}

// Transactor unlocks the account's keystore file and returns signing
// options bound to chainID.
func (a Account) Transactor(chainID *big.Int) (*bind.TransactOpts, error) {
	if a.Keystore == "" {
		return nil, ErrMissingAccount
	}
	f, err := os.Open(a.Keystore)
	if err != nil {
		return nil, errors.Wrap(err, "open keystore")
	}
	defer f.Close()

	auth, err := bind.NewTransactorWithChainID(f, a.Password, chainID)
	if err != nil {
		return nil, errors.Wrapf(err, "unlock %s", a.Keystore)
	}
	return auth, nil
}
