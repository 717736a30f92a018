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

// tokenops drives the game's deployed contracts through the team multisig
// wallet and runs the monthly vesting claim loop.
//
// Usage:
//   tokenops --config <file> <command> [arguments...]
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexwelcing/tokenops/config"
	msbind "github.com/alexwelcing/tokenops/contracts/multisig"
	"github.com/alexwelcing/tokenops/multisig"
	"github.com/alexwelcing/tokenops/store"
	"github.com/avast/retry-go"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	app = cli.NewApp()

	// Global flags
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
		Value: "tokenops.toml",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9010)",
	}

	// Command flags
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "Destination address",
	}
	valueFlag = cli.StringFlag{
		Name:  "value",
		Usage: "Native value in wei",
		Value: "0",
	}
	dataFlag = cli.StringFlag{
		Name:  "data",
		Usage: "Hex encoded call data",
	}
	noteFlag = cli.StringFlag{
		Name:  "note",
		Usage: "Free text kept with the queued proposal",
	}
	forceFlag = cli.BoolFlag{
		Name:  "force",
		Usage: "Submit even if an identical transaction is already pending",
	}
	idFlag = cli.StringFlag{
		Name:  "id",
		Usage: "Multisig transaction id (default: every queued proposal)",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "Token amount in whole tokens (decimals allowed)",
	}
	targetFlag = cli.StringFlag{
		Name:  "target",
		Usage: "Contract to act on: token or nft",
		Value: "token",
	}
	remoteChainFlag = cli.UintFlag{
		Name:  "remote.chain",
		Usage: "Bridge chain id of the remote endpoint",
	}
	remoteAddrFlag = cli.StringFlag{
		Name:  "remote.addr",
		Usage: "Bridge contract address on the remote chain",
	}
	startFlag = cli.StringFlag{
		Name:  "start",
		Usage: "Vesting start instant, RFC 3339 (default: claims.start from the config)",
	}
	dryRunFlag = cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Print what would be submitted and exit",
	}
	allFlag = cli.BoolFlag{
		Name:  "all",
		Usage: "Include executed proposals",
	}
	checkFlag = cli.BoolFlag{
		Name:  "check",
		Usage: "Print the claimable amount of every recipient and exit",
	}
	uriFlag = cli.StringFlag{
		Name:  "uri",
		Usage: "Token metadata URI",
	}
	packetTypeFlag = cli.UintFlag{
		Name:  "packet-type",
		Usage: "Bridge packet type the gas floor applies to",
	}
	gasFlag = cli.StringFlag{
		Name:  "gas",
		Usage: "Minimum destination gas",
	}
)

func init() {
	app.Name = "tokenops"
	app.Usage = "Multisig and vesting operations for the game token"
	app.Version = "0.2.0"
	app.Flags = []cli.Flag{
		configFlag,
		verbosityFlag,
		metricsAddrFlag,
	}
	app.Before = before
	app.Commands = []cli.Command{
		{
			Name:   "submit",
			Usage:  "Submit a raw transaction to the multisig wallet",
			Action: submitCmd,
			Flags:  []cli.Flag{toFlag, valueFlag, dataFlag, noteFlag, forceFlag},
		},
		{
			Name:   "confirm",
			Usage:  "Confirm a multisig transaction, or every proposal awaiting confirmation",
			Action: confirmCmd,
			Flags:  []cli.Flag{idFlag},
		},
		{
			Name:      "status",
			Usage:     "Show the state of a multisig transaction",
			ArgsUsage: "<id>",
			Action:    statusCmd,
		},
		{
			Name:   "latest",
			Usage:  "Print the id of the most recently submitted multisig transaction",
			Action: latestCmd,
		},
		{
			Name:   "pending",
			Usage:  "List unexecuted multisig transactions",
			Action: pendingCmd,
		},
		{
			Name:   "queue",
			Usage:  "List locally queued proposals",
			Action: queueCmd,
			Flags:  []cli.Flag{allFlag},
		},
		{
			Name:   "mint",
			Usage:  "Propose minting game tokens",
			Action: mintCmd,
			Flags:  []cli.Flag{toFlag, amountFlag, noteFlag, forceFlag},
		},
		{
			Name:   "pause",
			Usage:  "Propose pausing the token or the NFT",
			Action: pauseCmd,
			Flags:  []cli.Flag{targetFlag, noteFlag, forceFlag},
		},
		{
			Name:   "unpause",
			Usage:  "Propose unpausing the token or the NFT",
			Action: unpauseCmd,
			Flags:  []cli.Flag{targetFlag, noteFlag, forceFlag},
		},
		{
			Name:   "trust-remote",
			Usage:  "Propose trusting a remote bridge endpoint",
			Action: trustRemoteCmd,
			Flags:  []cli.Flag{remoteChainFlag, remoteAddrFlag, noteFlag, forceFlag},
		},
		{
			Name:   "min-dst-gas",
			Usage:  "Propose a minimum destination gas for a bridge packet type",
			Action: minDstGasCmd,
			Flags:  []cli.Flag{remoteChainFlag, packetTypeFlag, gasFlag, noteFlag, forceFlag},
		},
		{
			Name:   "transfer-ownership",
			Usage:  "Propose handing the token or the NFT to a new owner",
			Action: transferOwnershipCmd,
			Flags:  []cli.Flag{targetFlag, toFlag, noteFlag, forceFlag},
		},
		{
			Name:   "safe-mint",
			Usage:  "Propose minting an NFT",
			Action: safeMintCmd,
			Flags:  []cli.Flag{toFlag, uriFlag, noteFlag, forceFlag},
		},
		{
			Name:   "set-base-uri",
			Usage:  "Propose a new NFT base URI",
			Action: setBaseURICmd,
			Flags:  []cli.Flag{uriFlag, noteFlag, forceFlag},
		},
		{
			Name:   "grant",
			Usage:  "Propose a vesting grant for every recipient of the vesting table",
			Action: grantCmd,
			Flags:  []cli.Flag{startFlag, dryRunFlag},
		},
		{
			Name:   "revoke-grant",
			Usage:  "Propose removing the vesting grant of a recipient",
			Action: revokeGrantCmd,
			Flags:  []cli.Flag{toFlag, noteFlag, forceFlag},
		},
		{
			Name:   "claims",
			Usage:  "Run the monthly vesting claim loop",
			Action: claimsCmd,
			Flags:  []cli.Flag{checkFlag},
		},
		{
			Name:   "info",
			Usage:  "Print wallet, contract and schedule information",
			Action: infoCmd,
		},
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func before(ctx *cli.Context) error {
	lvl := log.Lvl(ctx.GlobalInt(verbosityFlag.Name))
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat(true))))

	if addr := ctx.GlobalString(metricsAddrFlag.Name); addr != "" {
		go func() {
			log.Info("Starting metrics server", "addr", addr)
			if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
				log.Error("Metrics server failed", "err", err)
			}
		}()
	}
	return nil
}

// environment is everything a command needs once the config is loaded and
// the node is reachable.
type environment struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	client *ethclient.Client
	coord  *multisig.Coordinator
	db     *store.Store
}

func setup(ctx *cli.Context) (*environment, error) {
	cfg, err := config.Load(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	e := &environment{ctx: c, cancel: cancel, cfg: cfg}

	if e.client, err = dial(c, cfg); err != nil {
		e.close()
		return nil, err
	}
	wallet, err := msbind.NewMultiSigWallet(cfg.Contracts.Multisig, e.client)
	if err != nil {
		e.close()
		return nil, err
	}
	e.coord = multisig.NewCoordinator(multisig.NewContractLedger(wallet, e.client))
	return e, nil
}

// dial connects to the node and checks it serves the configured chain. The
// chain id lookup is retried since nodes are often still starting when the
// operator runs.
func dial(ctx context.Context, cfg *config.Config) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.Network.RPC)
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}
	var id = cfg.ChainID()
	err = retry.Do(
		func() error {
			got, err := client.ChainID(ctx)
			if err != nil {
				return err
			}
			id = got
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("Chain id lookup failed", "rpc", cfg.Network.RPC, "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "chain id")
	}
	if id.Cmp(cfg.ChainID()) != 0 {
		client.Close()
		return nil, errors.Errorf("node serves chain %v, config expects %v", id, cfg.ChainID())
	}
	log.Debug("Connected to node", "rpc", cfg.Network.RPC, "chain", id)
	return client, nil
}

func (e *environment) store() (*store.Store, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := e.cfg.OpenStore()
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *environment) queue() (*multisig.Queue, error) {
	db, err := e.store()
	if err != nil {
		return nil, err
	}
	return multisig.NewQueue(e.coord, db), nil
}

func (e *environment) close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			log.Warn("Failed to close store", "err", err)
		}
	}
	if e.client != nil {
		e.client.Close()
	}
	e.cancel()
}
