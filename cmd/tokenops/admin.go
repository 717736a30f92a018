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
	"time"

	"github.com/alexwelcing/tokenops/contracts/token"
	vestingbind "github.com/alexwelcing/tokenops/contracts/vesting"
	"github.com/alexwelcing/tokenops/vesting"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	cli "gopkg.in/urfave/cli.v1"
)

func requireContract(name string, addr common.Address) error {
	if addr == (common.Address{}) {
		return errors.Errorf("contracts.%s is not configured", name)
	}
	return nil
}

func mintCmd(ctx *cli.Context) error {
	if !common.IsHexAddress(ctx.String(toFlag.Name)) {
		return errors.New("--to must be a hex address")
	}
	amount, err := decimal.NewFromString(ctx.String(amountFlag.Name))
	if err != nil {
		return errors.Wrap(err, "--amount")
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireContract("token", e.cfg.Contracts.Token); err != nil {
		return err
	}
	base, err := vesting.ToBaseUnits(amount, e.cfg.Token.Decimals)
	if err != nil {
		return err
	}
	data, err := token.Mint(common.HexToAddress(ctx.String(toFlag.Name)), base)
	if err != nil {
		return err
	}
	log.Info("Proposing mint", "to", ctx.String(toFlag.Name), "amount", amount, "base", base)
	return propose(ctx, e, e.cfg.Contracts.Token, nil, data)
}

func pauseCmd(ctx *cli.Context) error {
	return pausable(ctx, token.Pause)
}

func unpauseCmd(ctx *cli.Context) error {
	return pausable(ctx, token.Unpause)
}

func pausable(ctx *cli.Context, encode func(token.Target) ([]byte, error)) error {
	target := token.Target(ctx.String(targetFlag.Name))
	data, err := encode(target)
	if err != nil {
		return err
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	dest, err := targetContract(e, target)
	if err != nil {
		return err
	}
	return propose(ctx, e, dest, nil, data)
}

func targetContract(e *environment, target token.Target) (common.Address, error) {
	dest := e.cfg.Contracts.Token
	if target == token.TargetNFT {
		dest = e.cfg.Contracts.NFT
	}
	return dest, requireContract(string(target), dest)
}

func transferOwnershipCmd(ctx *cli.Context) error {
	if !common.IsHexAddress(ctx.String(toFlag.Name)) {
		return errors.New("--to must be a hex address")
	}
	target := token.Target(ctx.String(targetFlag.Name))
	owner := common.HexToAddress(ctx.String(toFlag.Name))
	data, err := token.TransferOwnership(target, owner)
	if err != nil {
		return err
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	dest, err := targetContract(e, target)
	if err != nil {
		return err
	}
	log.Warn("Proposing ownership transfer", "target", target, "contract", dest, "owner", owner)
	return propose(ctx, e, dest, nil, data)
}

func safeMintCmd(ctx *cli.Context) error {
	if !common.IsHexAddress(ctx.String(toFlag.Name)) {
		return errors.New("--to must be a hex address")
	}
	data, err := token.SafeMint(common.HexToAddress(ctx.String(toFlag.Name)), ctx.String(uriFlag.Name))
	if err != nil {
		return err
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireContract("nft", e.cfg.Contracts.NFT); err != nil {
		return err
	}
	log.Info("Proposing NFT mint", "to", ctx.String(toFlag.Name), "uri", ctx.String(uriFlag.Name))
	return propose(ctx, e, e.cfg.Contracts.NFT, nil, data)
}

func setBaseURICmd(ctx *cli.Context) error {
	uri := ctx.String(uriFlag.Name)
	if uri == "" {
		return errors.New("--uri is required")
	}
	data, err := token.SetBaseURI(uri)
	if err != nil {
		return err
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireContract("nft", e.cfg.Contracts.NFT); err != nil {
		return err
	}
	log.Info("Proposing NFT base URI", "uri", uri)
	return propose(ctx, e, e.cfg.Contracts.NFT, nil, data)
}

func trustRemoteCmd(ctx *cli.Context) error {
	chain := ctx.Uint(remoteChainFlag.Name)
	if chain == 0 || chain > 0xffff {
		return errors.Errorf("invalid --%s %d", remoteChainFlag.Name, chain)
	}
	if !common.IsHexAddress(ctx.String(remoteAddrFlag.Name)) {
		return errors.Errorf("--%s must be a hex address", remoteAddrFlag.Name)
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireContract("bridge", e.cfg.Contracts.Bridge); err != nil {
		return err
	}
	remote := common.HexToAddress(ctx.String(remoteAddrFlag.Name))
	data, err := token.SetTrustedRemote(uint16(chain), remote, e.cfg.Contracts.Bridge)
	if err != nil {
		return err
	}
	log.Info("Proposing trusted remote", "chain", chain, "path", hexutil.Encode(token.TrustedRemotePath(remote, e.cfg.Contracts.Bridge)))
	return propose(ctx, e, e.cfg.Contracts.Bridge, nil, data)
}

func minDstGasCmd(ctx *cli.Context) error {
	chain := ctx.Uint(remoteChainFlag.Name)
	if chain == 0 || chain > 0xffff {
		return errors.Errorf("invalid --%s %d", remoteChainFlag.Name, chain)
	}
	packet := ctx.Uint(packetTypeFlag.Name)
	if packet > 0xffff {
		return errors.Errorf("invalid --%s %d", packetTypeFlag.Name, packet)
	}
	gas, ok := new(big.Int).SetString(ctx.String(gasFlag.Name), 10)
	if !ok {
		return errors.Errorf("invalid --%s %q", gasFlag.Name, ctx.String(gasFlag.Name))
	}
	data, err := token.SetMinDstGas(uint16(chain), uint16(packet), gas)
	if err != nil {
		return err
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireContract("bridge", e.cfg.Contracts.Bridge); err != nil {
		return err
	}
	log.Info("Proposing minimum destination gas", "chain", chain, "packet", packet, "gas", gas)
	return propose(ctx, e, e.cfg.Contracts.Bridge, nil, data)
}

func grantCmd(ctx *cli.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireContract("vesting", e.cfg.Contracts.Vesting); err != nil {
		return err
	}
	start := e.cfg.Claims.Start
	if s := ctx.String(startFlag.Name); s != "" {
		if start, err = time.Parse(time.RFC3339, s); err != nil {
			return errors.Wrap(err, "--start")
		}
	}
	if start.IsZero() {
		return errors.New("no vesting start: set claims.start or --start")
	}
	vault, err := vestingbind.NewVestingVault(e.cfg.Contracts.Vesting, e.client)
	if err != nil {
		return err
	}
	grants, err := vesting.PlanGrants(&e.cfg.Vesting, vault, start, e.cfg.Token.Decimals)
	if err != nil {
		return err
	}
	if grants, err = vesting.WithoutExisting(e.ctx, vault, grants); err != nil {
		return err
	}
	if ctx.Bool(dryRunFlag.Name) || len(grants) == 0 {
		for _, g := range grants {
			fmt.Printf("%s\t%s\t%s\t%d/%d\t%s\n", g.Recipient.Hex(), g.Category.Name,
				vesting.FromBaseUnits(g.Amount, e.cfg.Token.Decimals), g.Category.CliffInMonths,
				g.Category.VestingDurationInMonths, hexutil.Encode(g.Data))
		}
		log.Info("Grant plan", "grants", len(grants), "start", start.UTC())
		return nil
	}

	auth, err := e.cfg.Accounts.Submitter.Transactor(e.cfg.ChainID())
	if err != nil {
		return errors.Wrap(err, "submitter")
	}
	queue, err := e.queue()
	if err != nil {
		return err
	}
	proposals, err := vesting.SubmitGrants(e.ctx, queue, vault.Address(), auth, grants)
	for _, p := range proposals {
		fmt.Println(p.ID)
	}
	return err
}

func revokeGrantCmd(ctx *cli.Context) error {
	if !common.IsHexAddress(ctx.String(toFlag.Name)) {
		return errors.New("--to must be the recipient's hex address")
	}
	recipient := common.HexToAddress(ctx.String(toFlag.Name))
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
	grant, err := vault.TokenGrants(&bind.CallOpts{Context: e.ctx}, recipient)
	if err != nil {
		return errors.Wrap(err, "read grant")
	}
	if grant.Amount.Sign() == 0 {
		return errors.Errorf("%s has no vesting grant", recipient.Hex())
	}
	data, err := vault.PackRemoveTokenGrant(recipient)
	if err != nil {
		return err
	}
	log.Warn("Proposing grant removal", "recipient", recipient,
		"amount", vesting.FromBaseUnits(grant.Amount, e.cfg.Token.Decimals),
		"claimed", vesting.FromBaseUnits(grant.TotalClaimed, e.cfg.Token.Decimals))
	return propose(ctx, e, vault.Address(), nil, data)
}
