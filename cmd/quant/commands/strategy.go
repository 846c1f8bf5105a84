package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/aegis/momentum/internal/strategyconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "전략 설정 검증/출력",
	Long: `전략 YAML 파일을 검증하거나 기본값이 채워진 최종 설정을 출력합니다.

Example:
  go run ./cmd/quant config validate --config config/strategy/momentum_top20.yaml
  go run ./cmd/quant config show`,
}

var strategyPath string

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "전략 YAML 검증",
	RunE:  runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "최종 전략 설정 출력 (YAML)",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd, configShowCmd)

	configCmd.PersistentFlags().StringVar(&strategyPath, "config", "", "strategy YAML (empty = built-in defaults)")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	strategy, err := readStrategy()
	if err != nil {
		var verr strategyconfig.ValidationError
		if errors.As(err, &verr) {
			PrintError(fmt.Sprintf("%s: %s", verr.Field, verr.Message))
		}
		return err
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return err
	}

	PrintHeader("Strategy Config")
	PrintKeyValue("Strategy", fmt.Sprintf("%s v%s", strategy.Meta.StrategyID, strategy.Meta.Version))
	PrintKeyValue("Hash", hash)
	PrintKeyValue("Window (months)", strategy.Signals.WindowMonths)
	PrintKeyValue("Top K", strategy.Selection.TopK)
	PrintKeyValue("Notional", usd(strategy.BacktestConfig().Notional()))

	warnings := strategyconfig.Warn(strategy)
	for _, w := range warnings {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	PrintSuccess("Config is valid")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	strategy, err := readStrategy()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(strategy)
}

func readStrategy() (*strategyconfig.Config, error) {
	if strategyPath == "" {
		return strategyconfig.Default(), nil
	}
	strategy, _, err := strategyconfig.Load(strategyPath)
	return strategy, err
}
