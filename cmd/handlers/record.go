package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pivotnote/internal/core"
	"pivotnote/internal/logger"
)

// NewRecordCmd creates the daily record inspection command.
func NewRecordCmd() *cobra.Command {
	recordCmd := &cobra.Command{
		Use:   "record [publish-date]",
		Short: "Inspect or complete a persisted daily record",
		Long: `Show the persisted daily content record for a publish date, or move it
between draft and completed. Completion is refused while any YouTube
metadata field is still empty.

Examples:
  pivotnote record 2025-07-14
  pivotnote record 2025-07-14 --json
  pivotnote record 2025-07-14 --complete`,
		Args: cobra.MaximumNArgs(1),
		Run:  recordRunFunc,
	}

	recordCmd.Flags().Bool("json", false, "Print the full record as JSON")
	recordCmd.Flags().Bool("complete", false, "Mark the record completed")

	return recordCmd
}

func recordRunFunc(cmd *cobra.Command, args []string) {
	date := time.Now().Format("2006-01-02")
	if len(args) == 1 {
		date = args[0]
	}

	env, cleanup, err := buildEnv(context.Background(), false)
	if err != nil {
		logger.Error("Failed to open store", err)
		os.Exit(1)
	}
	defer cleanup()

	if complete, _ := cmd.Flags().GetBool("complete"); complete {
		if err := env.store.UpdateProductionStatus(date, core.StatusCompleted); err != nil {
			logger.Error("Failed to complete record", err, "date", date)
			os.Exit(1)
		}
		fmt.Printf("Record for %s marked completed.\n", date)
		return
	}

	record, err := env.store.GetDailyContent(date)
	if err != nil {
		logger.Error("Failed to load record", err, "date", date)
		os.Exit(1)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			logger.Error("Failed to encode record", err, "date", date)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("Record for %s: %s\n", record.PublishDate, record.ProductionStatus)
	for _, region := range []core.Region{core.RegionIndia, core.RegionUSA} {
		content, ok := record.Regions[region]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %q\n", region.Display(), content.Metadata.Title)
		fmt.Printf("    hook: %q\n", content.Metadata.Hook)
		fmt.Printf("    hashtags: %v\n", content.Metadata.Hashtags)
	}
	fmt.Printf("  entities: %d\n", len(record.Entities))
	if record.CompletedAt != nil {
		fmt.Printf("  completed at: %s\n", record.CompletedAt.Format(time.RFC3339))
	}
}
