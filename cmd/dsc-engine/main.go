package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mcdexio/dsc-engine/api"
	"github.com/mcdexio/dsc-engine/bank"
	"github.com/mcdexio/dsc-engine/common/config"
	cerrors "github.com/mcdexio/dsc-engine/common/errors"
	"github.com/mcdexio/dsc-engine/common/logging"
	database "github.com/mcdexio/dsc-engine/database/db"
	"github.com/mcdexio/dsc-engine/database/db/dscdb"
	"github.com/mcdexio/dsc-engine/engine"
	"github.com/mcdexio/dsc-engine/feed"
)

// Config is parsed from flags and environment.
//
// Collateral entries have the form token=source where source is either an
// aggregator address (requires --eth-rpc), "price:2006.41" for a fixed feed
// or "url:https://..." for an HTTP JSON provider.
type Config struct {
	Listen     string   `arg:"--listen,env:DSC_API_LISTEN" default:":9487" help:"query API listen address"`
	DBArgs     string   `arg:"--db,env:DB_ARGS" help:"postgres DSN; empty runs on the in-memory store"`
	EthRPC     string   `arg:"--eth-rpc,env:ETH_RPC_URL" help:"ethereum RPC endpoint for aggregator feeds"`
	Custody    string   `arg:"--custody,env:DSC_CUSTODY" default:"0x0000000000000000000000000000000000000d5c" help:"engine custody account"`
	Collateral []string `arg:"--collateral,env:DSC_COLLATERAL" help:"collateral registrations, token=source"`
}

func main() {
	name := "dsc-engine"
	// Initialize logger.
	logging.Initialize(name)
	defer logging.Finalize()

	logger := logging.NewLoggerTag(name)

	// Setup panic handler.
	cerrors.Initialize(logger)
	defer cerrors.Catch()

	args := new(Config)
	arg.MustParse(args)
	logger.Info("%s service started.", name)
	logger.Info("using config %+v", args)

	backgroundCtx, stop := context.WithCancel(context.Background())
	go WaitExitSignal(stop, logger)
	group, ctx := errgroup.WithContext(backgroundCtx)

	var store engine.Store
	if args.DBArgs != "" {
		config.SetString("DB_ARGS", args.DBArgs)
		database.Initialize()
		defer database.Finalize()
		dbStore := dscdb.New(database.GetDB())
		if err := dbStore.Migrate(); err != nil {
			logger.Error("migrate fail: %s", err)
			os.Exit(-3)
		}
		store = dbStore
	} else {
		logger.Warn("DB_ARGS empty, running on the in-memory store")
		store = engine.NewMemoryStore()
	}

	custody := common.HexToAddress(args.Custody)
	assets, feeds, tokens, err := buildCollateral(args, logger)
	if err != nil {
		logger.Error("collateral config fail: %s", err)
		os.Exit(-3)
	}

	eng, err := engine.New(engine.Config{
		Custody:          custody,
		CollateralTokens: assets,
		PriceFeeds:       feeds,
		Tokens:           tokens,
		DSC:              bank.NewDSC(custody),
		Store:            store,
		Logger:           logger.CloneLogger(),
	})
	if err != nil {
		logger.Error("engine fail: %s", err)
		os.Exit(-3)
	}

	server := api.NewQueryServer(ctx, logger.CloneLogger(), eng, args.Listen)
	group.Go(func() error {
		return server.Run()
	})

	if err := group.Wait(); err != nil {
		logger.Critical("service stopped: %s", err)
	}
}

// buildCollateral turns the token=source entries into parallel registration
// lists for the engine.
func buildCollateral(args *Config, logger logging.Logger) (
	[]common.Address, []engine.PriceFeed, []engine.Token, error) {
	var client *ethclient.Client
	if args.EthRPC != "" {
		var err error
		client, err = ethclient.Dial(args.EthRPC)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("dial %s: %w", args.EthRPC, err)
		}
	}

	var (
		assets []common.Address
		feeds  []engine.PriceFeed
		tokens []engine.Token
	)
	for _, entry := range args.Collateral {
		pair := strings.SplitN(entry, "=", 2)
		if len(pair) != 2 || !common.IsHexAddress(pair[0]) {
			return nil, nil, nil, fmt.Errorf("malformed collateral entry %q", entry)
		}
		asset := common.HexToAddress(pair[0])
		source := pair[1]

		var (
			priceFeed engine.PriceFeed
			err       error
		)
		switch {
		case strings.HasPrefix(source, "price:"):
			price, perr := decimal.NewFromString(strings.TrimPrefix(source, "price:"))
			if perr != nil {
				return nil, nil, nil, fmt.Errorf("malformed price in %q: %w", entry, perr)
			}
			priceFeed = feed.NewFixed(price.Shift(8).Truncate(0).BigInt())
		case strings.HasPrefix(source, "url:"):
			priceFeed, err = feed.NewHTTP(strings.TrimPrefix(source, "url:"), logger.CloneLogger())
		case common.IsHexAddress(source):
			if client == nil {
				return nil, nil, nil, fmt.Errorf("aggregator feed %q requires --eth-rpc", entry)
			}
			priceFeed, err = feed.NewChainlink(client, common.HexToAddress(source), logger.CloneLogger())
		default:
			return nil, nil, nil, fmt.Errorf("unknown feed source in %q", entry)
		}
		if err != nil {
			return nil, nil, nil, err
		}

		assets = append(assets, asset)
		feeds = append(feeds, priceFeed)
		tokens = append(tokens, bank.NewLedger(asset.Hex()))
	}
	return assets, feeds, tokens, nil
}

// WaitExitSignal cancels the service context on SIGTERM/SIGINT.
func WaitExitSignal(ctxStop context.CancelFunc, logger logging.Logger) {
	var exitSignal = make(chan os.Signal, 1)
	signal.Notify(exitSignal, syscall.SIGTERM)
	signal.Notify(exitSignal, syscall.SIGINT)

	sig := <-exitSignal
	logger.Info("caught sig: %+v, Stopping...", sig)
	ctxStop()
}
