package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curator",
		Short: "Apparel product image classification and curation tool",
		Long: `Curator classifies crawled apparel product images with a vision LLM and
picks the best image for each slot: worn shots and product shots per color,
representative detail shots, and size/material info images.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newReportCmd())

	return cmd
}
