package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/polybot/updown-trader/internal/api"
	"github.com/polybot/updown-trader/internal/app"
	"github.com/polybot/updown-trader/internal/builder"
	"github.com/polybot/updown-trader/internal/config"
	"github.com/polybot/updown-trader/internal/discovery"
	"github.com/polybot/updown-trader/internal/execution"
	"github.com/polybot/updown-trader/internal/feed"
	"github.com/polybot/updown-trader/internal/notify"
	"github.com/polybot/updown-trader/internal/portfolio"
	"github.com/polybot/updown-trader/internal/risk"
	"github.com/polybot/updown-trader/internal/signer"
	"github.com/polybot/updown-trader/internal/store"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		log.Printf("warning: config file: %v, using defaults", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Printf("updown-trader starting (trading_mode=%s dry_run=%t)", cfg.TradingMode, cfg.DryRun)

	st, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	var sgn signer.OrderSigner
	if pk := strings.TrimSpace(cfg.PrivateKey); pk != "" {
		ecdsaSigner, err := signer.NewECDSASigner(pk)
		if err != nil {
			log.Fatalf("signer: %v", err)
		}
		sgn = ecdsaSigner
		log.Printf("signing as %s", ecdsaSigner.Address())
	} else {
		log.Println("no private key configured: orders will be simulated")
	}

	feedClient := feed.NewClient(cfg.Endpoints.PriceFeedBase)
	ingest := feed.NewIngester(feedClient, st, cfg.AssetPairs)

	gammaClient := discovery.NewGammaClient(cfg.Endpoints.GammaBase)
	clobClient := discovery.NewCLOBClient(cfg.Endpoints.CLOBBase)
	disc := discovery.NewDiscoverer(gammaClient, clobClient, st, cfg.AssetPrefixes)

	execClient := execution.NewClient(cfg.Endpoints.ExecutionBase, sgn)
	exec := execution.NewModule(st, execClient)

	gate := risk.NewGate(st, cfg.Trading.MaxConsecutiveLosses, cfg.Trading.LossCooldown)
	pm := portfolio.NewManager(st, disc, exec, gate, cfg.Trading.TakeProfitPct, cfg.Trading.StopLossPct)

	reload := config.NewHotReloader(st, cfg.Trading, cfg.ConfigCacheTTL)
	a := app.New(cfg, st, ingest, disc, gate, exec, pm, reload)

	if cfg.Telegram.Enabled {
		notifier := notify.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		gate.SetNotifier(notifier)
		pm.SetNotifier(notifier)
		a.SetNotifier(notifier)
	}

	var volumeTracker *builder.VolumeTracker
	if cfg.Builder.Enabled {
		builderClient := builder.NewClient(cfg.Endpoints.DataAPIBase)
		volumeTracker = builder.NewVolumeTracker(builderClient, cfg.Builder.BuilderID, cfg.Builder.SyncInterval)
		log.Println("builder volume tracking enabled")
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		var builderProvider api.BuilderProvider
		if volumeTracker != nil {
			builderProvider = volumeTracker
		}
		apiServer = api.NewServer(cfg.API.Addr, st, gate, a, builderProvider)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if apiServer != nil {
		if err := apiServer.Start(ctx); err != nil {
			log.Fatalf("api server: %v", err)
		}
	}
	if volumeTracker != nil {
		go func() {
			if err := volumeTracker.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("builder tracker: %v", err)
			}
		}()
	}

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- a.Run(ctx) }()

	select {
	case <-sigCh:
		log.Println("shutdown signal received")
		cancel()
		<-runErrCh
	case err := <-runErrCh:
		if err != nil {
			log.Printf("app: run: %v", err)
		}
	}

	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = apiServer.Shutdown(shutdownCtx)
	}

	log.Println("session complete")
}
