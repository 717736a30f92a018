// Copyright 2018 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"time"

	"github.com/alexwelcing/tokenops/claims"
	vestingbind "github.com/alexwelcing/tokenops/contracts/vesting"
	"github.com/alexwelcing/tokenops/vesting"
	"github.com/ethereum/go-ethereum/log"
	"github.com/go-faster/errors"
	cli "gopkg.in/urfave/cli.v1"
)

func claimsCmd(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireContract("vesting", e.cfg.Contracts.Vesting); err != nil {
		return err
	}
	vault, err := vestingbind.NewVestingVault(e.cfg.Contracts.Vesting, e.client)
	if err != nil {
		return err
	}
	ledger := vesting.NewContractLedger(vault, e.client)

	if ctx.Bool(checkFlag.Name) {
		for _, r := range e.cfg.Vesting.Recipients {
			amount, err := ledger.Claimable(e.ctx, r.Address)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\n", r.Address.Hex(), r.Category, vesting.FromBaseUnits(amount, e.cfg.Token.Decimals))
		}
		return nil
	}

	auth, err := e.cfg.Accounts.Claimer.Transactor(e.cfg.ChainID())
	if err != nil {
		return errors.Wrap(err, "claimer")
	}
	db, err := e.store()
	if err != nil {
		return err
	}
	sched := claims.New(claims.Config{
		Name:       e.cfg.Claims.Cursor,
		Start:      e.cfg.Claims.Start,
		Recipients: e.cfg.Vesting.Recipients,
		Claimer:    auth,
	}, ledger, db, nil)

	log.Info("Claim loop starting", "vault", vault.Address(), "recipients", len(e.cfg.Vesting.Recipients), "claimer", auth.From)
	err = sched.Run(e.ctx)
	if e.ctx.Err() != nil && errors.Is(err, e.ctx.Err()) {
		log.Info("Claim loop stopped")
		return nil
	}
	return err
}

func infoCmd(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	owners, required, err := e.coord.Quorum(e.ctx)
	if err != nil {
		return err
	}
	log.Info("Multisig wallet", "address", e.coord.Wallet(), "owners", len(owners), "required", required)
	for _, o := range owners {
		fmt.Printf("owner\t%s\n", o.Hex())
	}
	if latest, err := e.coord.DeriveLatestTransactionID(e.ctx); err == nil {
		fmt.Printf("latest\t%d\n", latest)
	}
	fmt.Printf("token\t%s\nnft\t%s\nvesting\t%s\nbridge\t%s\n",
		e.cfg.Contracts.Token.Hex(), e.cfg.Contracts.NFT.Hex(), e.cfg.Contracts.Vesting.Hex(), e.cfg.Contracts.Bridge.Hex())

	db, err := e.store()
	if err != nil {
		return err
	}
	next, ok, err := db.NextTrigger(e.cfg.Claims.Cursor)
	if err != nil {
		return err
	}
	if !ok {
		next = e.cfg.Claims.Start
	}
	if !next.IsZero() {
		fmt.Printf("next claim\t%s\t(in %s)\n", next.UTC().Format(time.RFC3339), time.Until(next).Round(time.Second))
	}
	return nil
}
