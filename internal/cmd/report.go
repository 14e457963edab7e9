package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fidde/scorecard/internal/api"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build one scorecard grid and print it",
	Long: `Runs the same pipeline as GET /msapi/scorecard once and prints the grid.
Without --frequency or --lag the scorecard matrix is built.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("frequency", "", "deployment frequency grid bucketed by week or month")
	reportCmd.Flags().Lookup("frequency").NoOptDefVal = "week"
	reportCmd.Flags().String("lag", "", "environment lag grid as duration or days")
	reportCmd.Flags().Lookup("lag").NoOptDefVal = "duration"
	reportCmd.Flags().Int64("domain", 0, "restrict to a domain and its subdomains")
	reportCmd.Flags().Int64("appid", 0, "restrict to one application id")
	reportCmd.Flags().String("appname", "", "restrict to one application name")
	reportCmd.Flags().String("format", "json", "output format (json/yaml)")
}

func runReport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "yaml" {
		return fmt.Errorf("invalid format: %s (valid: json, yaml)", format)
	}

	req, err := api.ParseReportRequest(reportQuery(cmd))
	if err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := newEngine(store, cfg, logger, nil)
	if err != nil {
		return err
	}

	grid, err := engine.Build(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(grid)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(grid)
}

// reportQuery renders the set flags as scorecard query parameters.
func reportQuery(cmd *cobra.Command) url.Values {
	q := url.Values{}
	flags := cmd.Flags()
	for _, name := range []string{"frequency", "lag", "appname"} {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			q.Set(name, v)
		}
	}
	for _, name := range []string{"domain", "appid"} {
		if flags.Changed(name) {
			v, _ := flags.GetInt64(name)
			q.Set(name, strconv.FormatInt(v, 10))
		}
	}
	return q
}
