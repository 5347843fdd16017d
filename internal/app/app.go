package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxcross/internal/adapters/bangkok"
	"fxcross/internal/adapters/cache"
	"fxcross/internal/adapters/tinkoff"
	"fxcross/internal/api"
	"fxcross/internal/bot"
	"fxcross/internal/config"
	"fxcross/internal/convert"
	"fxcross/internal/domain"
	httpserver "fxcross/internal/platform/http"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

// Run wires the application components and blocks until shutdown.
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}

	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	if appCfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if appCfg.Bangkok.Token == "" {
		logrus.Warn("Bank API token is empty, bank leg will fail authentication")
	}
	if appCfg.Tinkoff.Token == "" {
		logrus.Warn("Brokerage API token is empty, brokerage leg will fail authentication")
	}

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Base HTTP client with an explicit request timeout
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// Family catalogue cache
	familyCache, err := cache.NewFamilyCache(time.Duration(appCfg.Cache.FamilyTTLSeconds) * time.Second)
	if err != nil {
		return err
	}
	defer familyCache.Close()

	// External clients and leg sources
	bangkokClient := bangkok.NewClient(baseHTTPClient, appCfg.Bangkok.BaseURL, appCfg.Bangkok.Token)
	thbSource := bangkok.NewSource(bangkokClient, familyCache, appCfg.Bangkok.Family)

	tinkoffClient := tinkoff.NewClient(baseHTTPClient, appCfg.Tinkoff.BaseURL, appCfg.Tinkoff.Token)

	// Auth probe: a bad brokerage token degrades the leg instead of
	// crashing, but it is worth knowing at startup.
	probeCtx, probeCancel := context.WithTimeout(ctx, httpTimeout)
	if probeErr := tinkoffClient.Probe(probeCtx); probeErr != nil {
		if errors.Is(probeErr, domain.ErrBadAuth) {
			logrus.Error("Brokerage auth probe failed, check TOKEN_TINK")
		} else {
			logrus.WithError(probeErr).Warn("Brokerage auth probe failed")
		}
	} else {
		logrus.Info("✅ Brokerage auth probe successful")
	}
	probeCancel()

	// An explicitly configured ticker wins over the static FIGI
	figiCtx, figiCancel := context.WithTimeout(ctx, httpTimeout)
	figi := tinkoff.ResolveFigi(figiCtx, tinkoffClient, appCfg.Tinkoff.Ticker, appCfg.Tinkoff.Figi)
	figiCancel()
	rubSource := tinkoff.NewSource(tinkoffClient, figi)

	// Convertor core
	commissions := convert.Commissions{
		BrokerPct:    appCfg.Commissions.BrokerPct,
		WirePct:      appCfg.Commissions.WirePct,
		ReceivingPct: appCfg.Commissions.ReceivingPct,
	}
	threshold := time.Duration(appCfg.Staleness.ThresholdSeconds) * time.Second
	convertor := convert.NewConvertor(thbSource, rubSource, commissions, threshold)

	// Optional cache warm-up
	if appCfg.Warmup.IntervalSeconds > 0 {
		warmup := convert.NewWarmup(convertor, time.Duration(appCfg.Warmup.IntervalSeconds)*time.Second)
		defer func() {
			if shutDownErr := warmup.Shutdown(); shutDownErr != nil {
				logrus.Errorf("Warm-up shutdown error: %v", shutDownErr)
			}
		}()
		if startErr := warmup.Start(ctx); startErr != nil {
			logrus.WithError(startErr).Error("Failed to start warm-up scheduler")
			return startErr
		}
		logrus.Info("✅ Warm-up scheduler activation successful")
	}

	// Telegram bot
	chatBot, err := bot.New(appCfg.Telegram, convertor, thbSource, tinkoffClient)
	if err != nil {
		logrus.WithError(err).Error("Failed to create telegram bot")
		return err
	}

	var processUpdate func(u tele.Update)
	if appCfg.Telegram.UseWebhook {
		if appCfg.Telegram.WebhookURL == "" {
			return fmt.Errorf("webhook mode requires WEBHOOK_URL")
		}
		if whErr := chatBot.RegisterWebhook(appCfg.Telegram.WebhookURL); whErr != nil {
			logrus.WithError(whErr).Error("Failed to register telegram webhook")
			return whErr
		}
		processUpdate = chatBot.ProcessUpdate
		logrus.Info("✅ Telegram bot running in webhook mode")
	} else {
		go chatBot.Start()
		defer chatBot.Stop()
		logrus.Info("Telegram bot long polling started")
	}

	// Handlers and router
	handler := api.NewHandler(convertor, appCfg.Telegram.Token, processUpdate)
	router := api.NewRouter(handler)

	logrus.Info("Starting http server")
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}
