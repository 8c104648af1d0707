// internal/app/runner.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TokenRevolution/FCOtoken/internal/amm"
	"github.com/TokenRevolution/FCOtoken/internal/config"
	"github.com/TokenRevolution/FCOtoken/internal/events"
	"github.com/TokenRevolution/FCOtoken/internal/ledger"
	"github.com/TokenRevolution/FCOtoken/internal/metrics"
	"github.com/TokenRevolution/FCOtoken/internal/storage"
	"github.com/TokenRevolution/FCOtoken/internal/storage/models"
	"github.com/TokenRevolution/FCOtoken/internal/storage/postgres"
	"github.com/TokenRevolution/FCOtoken/internal/token"
)

// Runner wires the ledger, the fee engine, the market-maker simulator and
// the observability stack, then serves until a shutdown signal.
type Runner struct {
	logger     *zap.Logger
	cfg        *config.Config
	bus        *events.Bus
	collector  *metrics.Collector
	ledger     *ledger.Ledger
	fund       *ledger.Fund
	market     *amm.Sim
	token      *token.Token
	store      storage.Storage
	shutdownCh chan os.Signal
}

// NewRunner assembles the engine from configuration.
func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	bus := events.NewBus(logger, cfg.EventBuffer)
	collector := metrics.NewCollector()
	book := ledger.New(logger)
	fund := ledger.NewFund()

	market := amm.NewSim(ledger.Address(cfg.PairAddress), fund, cfg.PoolFeeBps, logger)

	tok, err := token.New(token.Config{
		Owner:   ledger.Address(cfg.Owner),
		Holding: ledger.Address(cfg.HoldingAddress),
		Params: token.Params{
			BurnFeeBps:          cfg.BurnFeeBps,
			BuyLiquidityFeeBps:  cfg.BuyLiquidityFeeBps,
			SellLiquidityFeeBps: cfg.SellLiquidityFeeBps,
			MaxBuyAmount:        cfg.MaxBuyAmount,
			MaxSellAmount:       cfg.MaxSellAmount,
			OwnerFeeExempt:      cfg.OwnerFeeExempt,
		},
		Ledger:  book,
		Fund:    fund,
		Market:  market,
		Bus:     bus,
		Metrics: collector,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build token engine: %w", err)
	}

	return &Runner{
		logger:     logger,
		cfg:        cfg,
		bus:        bus,
		collector:  collector,
		ledger:     book,
		fund:       fund,
		market:     market,
		token:      tok,
		shutdownCh: make(chan os.Signal, 1),
	}, nil
}

// Token exposes the engine, for the administrative surface.
func (r *Runner) Token() *token.Token {
	return r.token
}

// Initialize seeds the genesis state: the initial supply is minted to the
// owner and the market pool is funded from it.
func (r *Runner) Initialize() error {
	owner := ledger.Address(r.cfg.Owner)
	if err := r.token.Mint(owner, owner, r.cfg.InitialSupply); err != nil {
		return fmt.Errorf("mint initial supply: %w", err)
	}

	if r.cfg.PoolTokenReserve > 0 {
		if r.cfg.PoolTokenReserve > r.cfg.InitialSupply {
			return fmt.Errorf("pool_token_reserve exceeds initial supply")
		}
		if err := r.ledger.Transfer(owner, ledger.Address(r.cfg.PairAddress), r.cfg.PoolTokenReserve); err != nil {
			return fmt.Errorf("seed pool token side: %w", err)
		}
		r.market.SeedPool(r.cfg.PoolTokenReserve, r.cfg.PoolRefReserve)
	}

	r.logger.Info("Genesis state initialized",
		zap.Uint64("initial_supply", r.cfg.InitialSupply),
		zap.Uint64("pool_token_reserve", r.cfg.PoolTokenReserve),
		zap.Uint64("pool_ref_reserve", r.cfg.PoolRefReserve))
	return nil
}

// connectStorage dials postgres with exponential backoff; a cold database
// container is the common case on first start.
func (r *Runner) connectStorage(ctx context.Context) (storage.Storage, error) {
	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = time.Second
	backoffPolicy.MaxInterval = 30 * time.Second

	notify := func(err error, duration time.Duration) {
		r.logger.Info("Retrying storage connection", zap.Error(err), zap.Duration("backoff", duration))
	}

	operation := func() (storage.Storage, error) {
		return postgres.NewStorage(r.cfg.PostgresURL, r.logger)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(5),
		backoff.WithNotify(notify))
}

// subscribeRecorders persists transfer and distribution events.
func (r *Runner) subscribeRecorders() {
	r.bus.SubscribeFunc(events.TransferIntercepted, func(ctx context.Context, ev events.Event) error {
		e, ok := ev.(events.TransferInterceptedEvent)
		if !ok {
			return nil
		}
		return r.store.SaveTransfer(ctx, &models.TransferRecord{
			FromAddress: string(e.From),
			ToAddress:   string(e.To),
			Direction:   e.Direction,
			Requested:   e.Requested,
			Delivered:   e.Delivered,
			FeesTaken:   e.FeesTaken,
			FeeExempt:   e.FeeExempt,
		})
	})
	r.bus.SubscribeFunc(events.FeesDistributed, func(ctx context.Context, ev events.Event) error {
		e, ok := ev.(events.FeesDistributedEvent)
		if !ok {
			return nil
		}
		return r.store.SaveDistribution(ctx, &models.DistributionRecord{
			Recipient: string(e.Recipient),
			Deposit:   e.Deposit,
			Payout:    e.Payout,
		})
	})
}

// Run starts the metrics endpoint and serves until a signal arrives.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sig := <-r.shutdownCh
		r.logger.Info("Signal received: " + sig.String())
		cancel()
	}()

	if r.cfg.PostgresURL != "" {
		store, err := r.connectStorage(runCtx)
		if err != nil {
			return fmt.Errorf("storage connection failed: %w", err)
		}
		if err := store.RunMigrations(); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		r.store = store
		r.subscribeRecorders()
	}

	if err := r.Initialize(); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(runCtx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.collector.Registry(), promhttp.HandlerOpts{}))
	if r.store != nil {
		newHistoryAPI(r.store, r.logger).register(mux)
	}
	metricsServer := &http.Server{
		Addr:    r.cfg.MetricsAddr,
		Handler: mux,
	}
	g.Go(func() error {
		r.logger.Info("Serving metrics", zap.String("addr", r.cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	busCtx, busCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer busCancel()
	if busErr := r.bus.Shutdown(busCtx); busErr != nil {
		r.logger.Warn("Event bus shutdown incomplete", zap.Error(busErr))
	}
	return err
}

// Shutdown flushes the logger.
func (r *Runner) Shutdown() {
	r.logger.Info("Shutting down")
	if err := r.logger.Sync(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
	}
}
