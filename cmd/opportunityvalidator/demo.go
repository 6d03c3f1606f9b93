package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/pkg/report"
)

var demoOpportunities = []domain.Opportunity{
	{
		Name:        "ESL Teacher Feedback Tool",
		Description: "Automated tool for VIPKid teachers to manage and respond to student feedback",
		ICP:         "Online ESL teachers on VIPKid platform",
		Problem:     "Managing and responding to student feedback is time-consuming and repetitive",
		Communities: []string{"r/VIPKid", "VIPKid Teachers Facebook Group"},
	},
	{
		Name:        "ENM Calendar API",
		Description: "Shared calendar system for polyamorous relationships",
		ICP:         "People in ethical non-monogamous relationships",
		Problem:     "Coordinating schedules across multiple partners is complex and prone to conflicts",
		Communities: []string{"r/polyamory", "r/nonmonogamy"},
	},
	{
		Name:        "AI Song Generator",
		Description: "Generate custom songs from text prompts for content creators",
		ICP:         "YouTube creators and social media influencers",
		Problem:     "Creating original music for content is expensive and time-consuming",
	},
}

func (c *cli) newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Validate three sample opportunities, compare them and recommend one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			banner("OPPORTUNITY VALIDATOR - QUICK START")

			validator, err := c.application.Validator()
			if err != nil {
				return err
			}
			fmt.Printf("\nLoaded %d opportunities to validate\n", len(demoOpportunities))

			banner("STEP 1: PARALLEL VALIDATION")
			results, err := validator.ValidateOpportunities(cmd.Context(), demoOpportunities, true)
			if err != nil {
				return err
			}

			banner("STEP 2: COMPARISON & RECOMMENDATION")
			comparison, err := validator.CompareOpportunities(cmd.Context(), results)
			if err != nil {
				return err
			}
			report.Comparison(os.Stdout, comparison)

			best, err := validator.RecommendNext(cmd.Context(), results)
			if err != nil {
				return err
			}

			banner("NEXT STEPS")
			printRecommended(best)
			fmt.Printf("\nDetailed results saved to %s\n", c.resultsDir())
			return nil
		},
	}
}

func banner(title string) {
	line := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n%s\n%s\n", line, title, line)
}
