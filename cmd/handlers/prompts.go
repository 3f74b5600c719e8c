package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pivotnote/internal/logger"
	"pivotnote/internal/prompts"
)

// NewPromptsCmd creates the prompt template management command.
func NewPromptsCmd() *cobra.Command {
	promptsCmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage prompt templates",
		Long: `Inspect and edit the prompt templates driving analysis, assembly and
deep dives. Every update backs up the previous version; old versions stay
retrievable by number.

Examples:
  pivotnote prompts list
  pivotnote prompts show analysis
  pivotnote prompts show analysis --version 2
  pivotnote prompts update analysis new_analysis.txt`,
	}

	promptsCmd.AddCommand(newPromptsListCmd())
	promptsCmd.AddCommand(newPromptsShowCmd())
	promptsCmd.AddCommand(newPromptsUpdateCmd())

	return promptsCmd
}

func newPromptsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List template names and version counts",
		Run: func(cmd *cobra.Command, args []string) {
			env, cleanup, err := buildEnv(context.Background(), false)
			if err != nil {
				logger.Error("Failed to open prompt store", err)
				os.Exit(1)
			}
			defer cleanup()

			for _, name := range prompts.TemplateNames() {
				versions, err := env.prompts.Versions(name)
				if err != nil {
					logger.Error("Failed to read template versions", err, "template", name)
					os.Exit(1)
				}
				fmt.Printf("%-20s v%d\n", name, versions)
			}
		},
	}
}

func newPromptsShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a template, optionally a historical version",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env, cleanup, err := buildEnv(context.Background(), false)
			if err != nil {
				logger.Error("Failed to open prompt store", err)
				os.Exit(1)
			}
			defer cleanup()

			version, _ := cmd.Flags().GetInt("version")
			var text string
			if version > 0 {
				text, err = env.prompts.GetVersion(args[0], version)
			} else {
				text, err = env.prompts.Get(args[0])
			}
			if err != nil {
				logger.Error("Failed to read template", err, "template", args[0])
				os.Exit(1)
			}
			fmt.Println(text)
		},
	}
	showCmd.Flags().Int("version", 0, "Version number to show (default: active)")
	return showCmd
}

func newPromptsUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [name] [file]",
		Short: "Replace a template with the contents of a file",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			env, cleanup, err := buildEnv(context.Background(), false)
			if err != nil {
				logger.Error("Failed to open prompt store", err)
				os.Exit(1)
			}
			defer cleanup()

			text, err := os.ReadFile(args[1])
			if err != nil {
				logger.Error("Failed to read template file", err, "file", args[1])
				os.Exit(1)
			}
			version, err := env.prompts.Update(args[0], string(text))
			if err != nil {
				logger.Error("Failed to update template", err, "template", args[0])
				os.Exit(1)
			}
			fmt.Printf("Template %s updated to v%d (previous version backed up).\n", args[0], version)
		},
	}
}
