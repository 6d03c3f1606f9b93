package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"OpportunityValidator/internal/app"
	"OpportunityValidator/internal/config"
	"OpportunityValidator/internal/logging"
)

type cli struct {
	apiKey string
	model  string

	cfg         config.Config
	application *app.Application
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	rootCmd := &cobra.Command{
		Use:           "opportunityvalidator",
		Short:         "Validate, score and rank business opportunities with an LLM agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.application == nil {
				return nil
			}
			return c.application.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.apiKey, "api-key", "", "agent API key (defaults to ANTHROPIC_API_KEY or OPENAI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&c.model, "model", "", "model override (defaults to VALIDATION_MODEL)")

	rootCmd.AddCommand(
		c.newValidateCmd(),
		c.newBatchCmd(),
		c.newCompareCmd(),
		c.newRecommendCmd(),
		c.newServeCmd(),
		c.newDemoCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) init(ctx context.Context) error {
	c.cfg = config.Load().WithAgentOverrides(c.apiKey, c.model)
	logger := logging.New(c.cfg.Logging.Level)

	application, err := app.New(ctx, c.cfg, logger)
	if err != nil {
		return err
	}
	c.application = application
	return nil
}
