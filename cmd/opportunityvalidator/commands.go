package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/infrastructure/filestore"
	"OpportunityValidator/pkg/report"
)

func (c *cli) newValidateCmd() *cobra.Command {
	var (
		opp        domain.Opportunity
		file       string
		aspiration string
		workaround string
		focus      []string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Research and score a single opportunity",
		Long: `Research and score one opportunity, then save the result under
<storage root>/opportunities/<name>/validation_result.json.

Example: opportunityvalidator validate --name "ENM Calendar API" --icp "People in ENM relationships" \
  --problem "Coordinating schedules across partners" --focus "Do they pay for calendar apps?"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file != "" {
				opps, err := readOpportunities(file)
				if err != nil {
					return err
				}
				if len(opps) != 1 {
					return fmt.Errorf("%w: %s holds %d opportunities, use batch", domain.ErrInvalidInput, file, len(opps))
				}
				opp = opps[0]
			}
			if aspiration != "" {
				opp.Aspiration = domain.StringPtr(aspiration)
			}
			if workaround != "" {
				opp.Workaround = domain.StringPtr(workaround)
			}

			validator, err := c.application.Validator()
			if err != nil {
				return err
			}
			result, err := validator.ValidateOpportunity(cmd.Context(), opp, focus)
			if err != nil {
				return err
			}

			report.Result(os.Stdout, result)
			c.printSaved(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file describing the opportunity")
	cmd.Flags().StringVar(&opp.Name, "name", "", "opportunity name")
	cmd.Flags().StringVar(&opp.Description, "description", "", "one-line description")
	cmd.Flags().StringVar(&opp.ICP, "icp", "", "ideal customer profile")
	cmd.Flags().StringVar(&opp.Problem, "problem", "", "problem statement")
	cmd.Flags().StringVar(&aspiration, "aspiration", "", "what the customer wants to become")
	cmd.Flags().StringVar(&workaround, "workaround", "", "how the customer copes today")
	cmd.Flags().StringSliceVar(&opp.Communities, "community", nil, "known community (repeatable)")
	cmd.Flags().StringArrayVar(&focus, "focus", nil, "research focus question (repeatable)")

	return cmd
}

func (c *cli) newBatchCmd() *cobra.Command {
	var sequential bool

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Validate every opportunity listed in a YAML or JSON file",
		Long: `Validate several opportunities. By default the agent receives one combined
request and runs an isolated sub-agent per opportunity; --sequential validates
them one at a time so a failure only affects its own record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opps, err := readOpportunities(args[0])
			if err != nil {
				return err
			}

			validator, err := c.application.Validator()
			if err != nil {
				return err
			}
			results, err := validator.ValidateOpportunities(cmd.Context(), opps, !sequential)
			if err != nil {
				return err
			}

			for _, res := range results {
				report.Result(os.Stdout, res)
			}
			fmt.Printf("\nDetailed results saved to %s\n", c.resultsDir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&sequential, "sequential", false, "validate one opportunity per agent call")

	return cmd
}

func (c *cli) newCompareCmd() *cobra.Command {
	var (
		withAgent   bool
		fromHistory bool
		xlsxPath    string
	)

	cmd := &cobra.Command{
		Use:   "compare [names...]",
		Short: "Rank persisted results (all of them when no names are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.application.LoadResults(cmd.Context(), args, fromHistory)
			if err != nil {
				return err
			}

			comparer, err := c.application.Comparer(withAgent)
			if err != nil {
				return err
			}
			comparison, err := comparer.CompareOpportunities(cmd.Context(), results)
			if err != nil {
				return err
			}

			report.Comparison(os.Stdout, comparison)

			if xlsxPath != "" {
				if err := c.application.Exporter().ExportComparison(xlsxPath, comparison, results); err != nil {
					return err
				}
				fmt.Printf("\nComparison exported to %s\n", xlsxPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withAgent, "agent", false, "ask the agent for qualitative summaries")
	cmd.Flags().BoolVar(&fromHistory, "history", false, "read results from the Postgres history")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also export the comparison to this .xlsx file")

	return cmd
}

func (c *cli) newRecommendCmd() *cobra.Command {
	var (
		withAgent   bool
		fromHistory bool
	)

	cmd := &cobra.Command{
		Use:   "recommend [names...]",
		Short: "Pick the persisted opportunity to pursue next",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.application.LoadResults(cmd.Context(), args, fromHistory)
			if err != nil {
				return err
			}

			comparer, err := c.application.Comparer(withAgent)
			if err != nil {
				return err
			}
			best, err := comparer.RecommendNext(cmd.Context(), results)
			if err != nil {
				return err
			}

			printRecommended(best)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withAgent, "agent", false, "ask the agent for qualitative summaries")
	cmd.Flags().BoolVar(&fromHistory, "history", false, "read results from the Postgres history")

	return cmd
}

func (c *cli) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve persisted results over a read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.application.Serve(cmd.Context())
		},
	}
}

func (c *cli) printSaved(result domain.ValidationResult) {
	fmt.Printf("Saved to %s\n", c.application.ResultPath(result.Opportunity.Name))
}

func (c *cli) resultsDir() string {
	return filepath.Join(c.cfg.Storage.Root, filestore.RootDir) + string(filepath.Separator)
}

func printRecommended(best domain.ValidationResult) {
	fmt.Printf("\nRECOMMENDED: %s\n", best.Opportunity.Name)
	fmt.Printf("   Score: %d/%d\n", best.Score.TotalScore, domain.MaxTotalScore)
	fmt.Printf("   Efficiency: %.2f\n", best.Score.EfficiencyScore)
	if best.Score.NextAction != "" {
		fmt.Printf("   Action: %s\n", best.Score.NextAction)
	}
}
