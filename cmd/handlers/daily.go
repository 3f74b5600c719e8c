package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pivotnote/internal/config"
	"pivotnote/internal/core"
	"pivotnote/internal/intelligence"
	"pivotnote/internal/logger"
	"pivotnote/internal/pipeline"
	"pivotnote/internal/trends"
)

// NewDailyCmd creates the daily pipeline command.
func NewDailyCmd() *cobra.Command {
	dailyCmd := &cobra.Command{
		Use:   "daily [signals-file]",
		Short: "Run the daily trend-to-script pipeline",
		Long: `Run the full daily pipeline over a collected-signals JSON file:
intelligence grids for both regions, assembled 60-second scripts, extracted
YouTube metadata, and one persisted record for the publish date.

Examples:
  pivotnote daily signals.json
  pivotnote daily signals.json --date 2025-07-14
  pivotnote daily signals.json --mode manual              # print the prompt
  pivotnote daily signals.json --mode manual --paste out.json`,
		Args: cobra.ExactArgs(1),
		Run:  dailyRunFunc,
	}

	dailyCmd.Flags().String("date", "", "Publish date (YYYY-MM-DD, default today)")
	dailyCmd.Flags().String("mode", "", "Override pipeline mode: auto or manual")
	dailyCmd.Flags().String("tier", "", "Override model tier: fast or quality")
	dailyCmd.Flags().String("paste", "", "Path to operator-pasted analysis JSON (manual mode)")

	return dailyCmd
}

func dailyRunFunc(cmd *cobra.Command, args []string) {
	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		viper.Set("pipeline.mode", mode)
	}
	if tier, _ := cmd.Flags().GetString("tier"); tier != "" {
		viper.Set("pipeline.model_tier", tier)
	}
	pasteFile, _ := cmd.Flags().GetString("paste")

	if err := runDaily(args[0], date, pasteFile); err != nil {
		logger.Error("Daily run failed", err, "date", date)
		os.Exit(1)
	}
}

func runDaily(signalsFile, date, pasteFile string) error {
	ctx := context.Background()

	signals, report, err := trends.LoadFile(signalsFile)
	if err != nil {
		return err
	}
	logger.Info("Loaded trend signals", "file", signalsFile,
		"valid", report.Valid, "invalid", report.Invalid)
	if len(signals) == 0 {
		return fmt.Errorf("no valid signals in %s", signalsFile)
	}

	env, cleanup, err := buildEnv(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	// Manual mode with no pasted response: render the prompt and stop.
	if env.cfg.Mode() == config.ModeManual && pasteFile == "" {
		gen := intelligence.NewGenerator(nil, env.prompts, env.cfg.Tier())
		prompt, err := gen.Prompt(signals, date)
		if err != nil {
			return err
		}
		fmt.Println(prompt)
		fmt.Fprintln(os.Stderr, "\nRun the prompt, save the JSON response, then resume with --paste <file>.")
		return nil
	}

	if err := env.withLLM(ctx); err != nil {
		return err
	}

	var result *pipeline.DailyResult
	if pasteFile != "" {
		pasted, err := os.ReadFile(pasteFile)
		if err != nil {
			return fmt.Errorf("failed to read pasted response: %w", err)
		}
		result, err = env.pipe.RunDailyManual(ctx, string(pasted), signals, date)
		if err != nil {
			return err
		}
	} else {
		result, err = env.pipe.RunDaily(ctx, signals, date)
		if errors.Is(err, pipeline.ErrFallbackRequired) {
			prompt, perr := env.pipe.ManualPrompt(signals, date)
			if perr != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Provider quota exhausted. Run this prompt manually and resume with --mode manual --paste <file>:")
			fmt.Println(prompt)
			return err
		}
		if err != nil {
			return err
		}
	}

	printDailyResult(result, date)
	return nil
}

func printDailyResult(result *pipeline.DailyResult, date string) {
	fmt.Printf("Daily record for %s: %s\n", date, result.Record.ProductionStatus)
	for _, region := range []core.Region{core.RegionIndia, core.RegionUSA} {
		content, ok := result.Record.Regions[region]
		if !ok {
			if err, failed := result.Failed[region]; failed {
				fmt.Printf("  %s: FAILED (%v)\n", region.Display(), err)
			}
			continue
		}
		fmt.Printf("  %s: %q (%d hashtags, hook %q)\n", region.Display(),
			content.Metadata.Title, len(content.Metadata.Hashtags), content.Metadata.Hook)
	}
	fmt.Printf("  entities: %d\n", len(result.Record.Entities))
}
