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
	"math/big"
	"strconv"

	"github.com/alexwelcing/tokenops/multisig"
	"github.com/alexwelcing/tokenops/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/go-faster/errors"
	cli "gopkg.in/urfave/cli.v1"
)

// propose submits a multisig transaction from the submitter account and
// queues it for the confirmer. Unless --force is given an identical pending
// transaction is reported instead of submitting a duplicate.
func propose(ctx *cli.Context, e *environment, destination common.Address, value *big.Int, data []byte) error {
	if !ctx.Bool(forceFlag.Name) {
		p, err := e.coord.FindPending(e.ctx, destination, value, data)
		switch {
		case err == nil:
			log.Warn("Identical transaction already pending, not submitting", "id", p.ID, "confirmations", p.Confirmations, "required", p.Required)
			fmt.Println(p.ID)
			return nil
		case !errors.Is(err, multisig.ErrNoMatch):
			return err
		}
	}
	auth, err := e.cfg.Accounts.Submitter.Transactor(e.cfg.ChainID())
	if err != nil {
		return errors.Wrap(err, "submitter")
	}
	queue, err := e.queue()
	if err != nil {
		return err
	}
	p, err := queue.Propose(e.ctx, auth, destination, value, data, ctx.String(noteFlag.Name))
	if err != nil {
		return err
	}
	log.Info("Proposal awaiting confirmation", "id", p.ID, "destination", p.Destination, "tx", p.SubmitTx)
	fmt.Println(p.ID)
	return nil
}

func submitCmd(ctx *cli.Context) error {
	if !common.IsHexAddress(ctx.String(toFlag.Name)) {
		return errors.New("--to must be a hex address")
	}
	value, ok := new(big.Int).SetString(ctx.String(valueFlag.Name), 10)
	if !ok || value.Sign() < 0 {
		return errors.Errorf("invalid --value %q", ctx.String(valueFlag.Name))
	}
	var data []byte
	if s := ctx.String(dataFlag.Name); s != "" {
		var err error
		if data, err = hexutil.Decode(s); err != nil {
			return errors.Wrap(err, "--data")
		}
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	return propose(ctx, e, common.HexToAddress(ctx.String(toFlag.Name)), value, data)
}

func confirmCmd(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	auth, err := e.cfg.Accounts.Confirmer.Transactor(e.cfg.ChainID())
	if err != nil {
		return errors.Wrap(err, "confirmer")
	}
	if ctx.IsSet(idFlag.Name) {
		id, err := strconv.ParseUint(ctx.String(idFlag.Name), 10, 64)
		if err != nil {
			return errors.Wrap(err, "--id")
		}
		out, err := e.coord.Confirm(e.ctx, auth, id)
		if err != nil {
			return err
		}
		printOutcome(out)
		return nil
	}

	queue, err := e.queue()
	if err != nil {
		return err
	}
	results, err := queue.ConfirmAwaiting(e.ctx, auth)
	if err != nil {
		return err
	}
	return printResults(results, "confirmations")
}

func executeCmd(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	auth, err := e.cfg.Accounts.Confirmer.Transactor(e.cfg.ChainID())
	if err != nil {
		return errors.Wrap(err, "confirmer")
	}
	if ctx.IsSet(idFlag.Name) {
		id, err := strconv.ParseUint(ctx.String(idFlag.Name), 10, 64)
		if err != nil {
			return errors.Wrap(err, "--id")
		}
		out, err := e.coord.Execute(e.ctx, auth, id)
		if err != nil {
			return err
		}
		printOutcome(out)
		return nil
	}

	queue, err := e.queue()
	if err != nil {
		return err
	}
	results, err := queue.RetryFailed(e.ctx, auth)
	if err != nil {
		return err
	}
	return printResults(results, "executions")
}

func revokeCmd(ctx *cli.Context) error {
	if !ctx.IsSet(idFlag.Name) {
		return errors.New("--id is required")
	}
	id, err := strconv.ParseUint(ctx.String(idFlag.Name), 10, 64)
	if err != nil {
		return errors.Wrap(err, "--id")
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	auth, err := e.cfg.Accounts.Submitter.Transactor(e.cfg.ChainID())
	if err != nil {
		return errors.Wrap(err, "submitter")
	}
	queue, err := e.queue()
	if err != nil {
		return err
	}
	p, err := queue.Withdraw(e.ctx, auth, id)
	if err != nil {
		return err
	}
	fmt.Printf("%d\t%s\n", p.ID, p.State)
	return nil
}

func printResults(results []multisig.ConfirmResult, what string) error {
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("%d\terror\t%v\n", res.Proposal.ID, res.Err)
			continue
		}
		printOutcome(res.Outcome)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d %s failed", failed, len(results), what)
	}
	return nil
}

func printOutcome(out *multisig.Outcome) {
	state := "confirmed"
	switch {
	case out.Executed:
		state = "executed"
	case out.InnerCallFailed:
		state = "execution_failed"
	}
	fmt.Printf("%d\t%s\t%s\n", out.ID, state, out.TxHash.Hex())
}

func statusCmd(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("usage: tokenops status <id>")
	}
	id, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
	if err != nil {
		return errors.Wrap(err, "id")
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	tx, err := e.coord.Transaction(e.ctx, id)
	if err != nil {
		return err
	}
	printTransaction(tx)
	return nil
}

func latestCmd(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	id, err := e.coord.DeriveLatestTransactionID(e.ctx)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func pendingCmd(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	txs, err := e.coord.Pending(e.ctx)
	if err != nil {
		return err
	}
	for _, tx := range txs {
		printTransaction(tx)
	}
	return nil
}

func printTransaction(tx *multisig.PendingTransaction) {
	fmt.Printf("%d\t%s\t%d/%d\t%s\t%s\t%s\n",
		tx.ID, tx.Status, tx.Confirmations, tx.Required,
		tx.Destination.Hex(), tx.Value, hexutil.Encode(tx.Data))
}

func queueCmd(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	db, err := e.store()
	if err != nil {
		return err
	}
	state := store.StateAwaiting
	if ctx.Bool(allFlag.Name) {
		state = ""
	}
	proposals, err := db.Proposals(e.coord.Wallet(), state)
	if err != nil {
		return err
	}
	for _, p := range proposals {
		fmt.Printf("%d\t%s\t%s\t%s\t%s\n", p.ID, p.State, p.Created().Format("2006-01-02 15:04:05"), p.Destination.Hex(), p.Note)
	}
	return nil
}
