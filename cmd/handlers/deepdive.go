package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pivotnote/internal/core"
	"pivotnote/internal/logger"
	"pivotnote/internal/trends"
)

// NewDeepDiveCmd creates the single-keyword deep dive command.
func NewDeepDiveCmd() *cobra.Command {
	deepDiveCmd := &cobra.Command{
		Use:   "deepdive [signals-file]",
		Short: "Research one trend in depth and script a 120-second video",
		Long: `Deep dive on a single keyword: strategic-clash research, a flowing
120-130 word script, and YouTube metadata, persisted in needs_finetuning
status until finalized.

Examples:
  pivotnote deepdive signals.json --keyword "UPI Credit"
  pivotnote deepdive signals.json                 # highest-volume breakout
  pivotnote deepdive --list
  pivotnote deepdive --list --status finalized
  pivotnote deepdive --finalize 6b9f...`,
		Args: cobra.MaximumNArgs(1),
		Run:  deepDiveRunFunc,
	}

	deepDiveCmd.Flags().String("keyword", "", "Keyword to research (default: top breakout signal)")
	deepDiveCmd.Flags().String("region", "", "Restrict keyword selection to one region")
	deepDiveCmd.Flags().String("finalize", "", "Promote a deep dive record to finalized by id")
	deepDiveCmd.Flags().Bool("list", false, "List deep dive records")
	deepDiveCmd.Flags().String("status", "", "Filter --list by status")

	return deepDiveCmd
}

func deepDiveRunFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if id, _ := cmd.Flags().GetString("finalize"); id != "" {
		if err := handleFinalize(ctx, id); err != nil {
			logger.Error("Failed to finalize deep dive", err, "id", id)
			os.Exit(1)
		}
		fmt.Printf("Deep dive %s finalized.\n", id)
		return
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		status, _ := cmd.Flags().GetString("status")
		if err := handleListDeepDives(ctx, status); err != nil {
			logger.Error("Failed to list deep dives", err)
			os.Exit(1)
		}
		return
	}

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "a signals file is required to start a deep dive")
		os.Exit(1)
	}
	keyword, _ := cmd.Flags().GetString("keyword")
	region, _ := cmd.Flags().GetString("region")
	if err := runDeepDive(ctx, args[0], keyword, region); err != nil {
		logger.Error("Deep dive failed", err, "keyword", keyword)
		os.Exit(1)
	}
}

func runDeepDive(ctx context.Context, signalsFile, keyword, region string) error {
	signals, report, err := trends.LoadFile(signalsFile)
	if err != nil {
		return err
	}
	logger.Info("Loaded trend signals", "file", signalsFile,
		"valid", report.Valid, "invalid", report.Invalid)

	if region != "" {
		signals = trends.FilterRegion(signals, core.Region(region))
	}
	signal, err := selectSignal(signals, keyword)
	if err != nil {
		return err
	}

	env, cleanup, err := buildEnv(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := env.pipe.RunDeepDive(ctx, *signal)
	if err != nil {
		return err
	}

	fmt.Printf("Deep dive %s (%s, %s): %s\n", record.ID, record.Keyword,
		record.Region.Display(), record.Status)
	fmt.Printf("  title: %q\n", record.Metadata.Title)
	fmt.Printf("  script: %d words\n", len(strings.Fields(record.Script)))
	fmt.Printf("Review the script, then run: pivotnote deepdive --finalize %s\n", record.ID)
	return nil
}

// selectSignal picks the requested keyword, or the highest-volume breakout
// signal when no keyword is given.
func selectSignal(signals []core.TrendSignal, keyword string) (*core.TrendSignal, error) {
	if keyword != "" {
		for i := range signals {
			if strings.EqualFold(signals[i].Keyword, keyword) {
				return &signals[i], nil
			}
		}
		return nil, fmt.Errorf("keyword %q not found in signals", keyword)
	}

	var candidates []core.TrendSignal
	for _, sig := range signals {
		if sig.Velocity == "breakout" || sig.Velocity == "spike" {
			candidates = append(candidates, sig)
		}
	}
	if len(candidates) == 0 {
		candidates = signals
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no signals to deep dive on")
	}
	trends.SortByVolume(candidates)
	return &candidates[0], nil
}

func handleFinalize(ctx context.Context, id string) error {
	env, cleanup, err := buildEnv(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	return env.store.UpdateDeepDiveStatus(id, core.DeepDiveFinalized)
}

func handleListDeepDives(ctx context.Context, status string) error {
	env, cleanup, err := buildEnv(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := env.store.ListDeepDives(status)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No deep dive records.")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%s  %-18s %-6s %-16s %s\n", r.ID, r.Keyword,
			r.Region, r.Status, r.CreatedAt.Format("2006-01-02"))
	}
	return nil
}
