package logger_test

import (
	"errors"

	"github.com/wonny/aegis/momentum/pkg/config"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Backtest started")
	log.Warnf("%d months with fewer than %d eligible tickers", 3, 20)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	stageLog := log.WithStage("s1").WithFields(map[string]interface{}{
		"ticker":   "AAPL",
		"field":    "price",
		"original": 60.0,
	})
	stageLog.Info("outlier replaced")

	log.WithError(errors.New("duplicate key")).Error("integrity check failed")
}
