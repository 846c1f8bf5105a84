package config_test

import (
	"fmt"

	"github.com/wonny/aegis/momentum/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Prices: %s\n", cfg.Data.PricesPath)
	fmt.Printf("Results: %s\n", cfg.Data.ResultsDir)
}
