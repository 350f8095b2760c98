package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/gridiron-service/internal/export"
	"github.com/preston-bernstein/gridiron-service/internal/league"
	"github.com/preston-bernstein/gridiron-service/internal/schedule"
	"github.com/preston-bernstein/gridiron-service/internal/timeutil"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leaguectl",
		Short: "Operate the simulated football league",
	}
	rootCmd.SetOut(out)

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate and validate regular-season schedules",
	}
	var leagueFile string
	scheduleCmd.PersistentFlags().StringVar(&leagueFile, "league", "", "Path to a league yaml file (default: built-in league)")

	var (
		outputFile string
		seed       string
		opening    string
	)
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a seeded schedule and write it as xlsx",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.OutOrStdout(), leagueFile, seed, opening, outputFile)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output Excel file path")
	generateCmd.Flags().StringVar(&seed, "seed", "", "Schedule seed (default: current time)")
	generateCmd.Flags().StringVar(&opening, "opening", "", "Opening day as YYYY-MM-DD (default: today)")

	validateCmd := &cobra.Command{
		Use:          "validate <schedule.xlsx>",
		Short:        "Check a schedule workbook against the league's structural rules",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), leagueFile, args[0])
		},
	}
	scheduleCmd.AddCommand(generateCmd, validateCmd)

	var (
		baseURL string
		secret  string
		timeout time.Duration
	)
	tickCmd := &cobra.Command{
		Use:          "tick",
		Short:        "Advance the league by one step",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("TICK_SECRET")
			}
			return runTick(cmd.Context(), cmd.OutOrStdout(), baseURL, secret, timeout)
		},
	}
	tickCmd.Flags().StringVar(&baseURL, "url", "http://localhost:4000", "Service base URL")
	tickCmd.Flags().StringVar(&secret, "secret", "", "Tick secret (default: $TICK_SECRET)")
	tickCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(scheduleCmd, tickCmd)
	return rootCmd
}

func loadLeague(path string) (*league.League, error) {
	if path == "" {
		return league.Default(), nil
	}
	lg, err := league.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading league: %w", err)
	}
	return lg, nil
}

func runGenerate(out io.Writer, leagueFile, seed, opening, outputPath string) error {
	lg, err := loadLeague(leagueFile)
	if err != nil {
		return err
	}
	if seed == "" {
		seed = time.Now().UTC().Format(time.RFC3339Nano)
	}
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if opening != "" {
		day, err = timeutil.ParseDate(opening)
		if err != nil {
			return fmt.Errorf("invalid opening date %q: %w", opening, err)
		}
	}

	s, err := schedule.Generate(lg.Teams(), seed)
	if err != nil {
		return fmt.Errorf("generating schedule: %w", err)
	}
	if err := export.Save(outputPath, s, lg.Teams(), day); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d games over %d weeks to %s (seed %s)\n", s.GameCount(), len(s.Weeks), outputPath, seed)
	return nil
}

func runValidate(out io.Writer, leagueFile, path string) error {
	lg, err := loadLeague(leagueFile)
	if err != nil {
		return err
	}
	s, err := export.Open(path)
	if err != nil {
		return err
	}
	if err := schedule.Validate(lg.Teams(), s); err != nil {
		return fmt.Errorf("schedule invalid: %w", err)
	}
	fmt.Fprintf(out, "%s is valid: %d games\n", path, s.GameCount())
	return nil
}
