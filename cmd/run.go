package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/pipeline"
)

var (
	runSources     []string
	runMaxURLs     int
	runConcurrency int
	runOutput      string
	runFormat      string
	runNotion      bool
	runSalesforce  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lead generation pipeline",
	Long: "Discovers source pages (or uses --source), extracts companies, analyzes and reviews each one, " +
		"and exports the records. SIGINT stops admitting new work; finished records are still exported.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if runOutput != "" {
			cfg.Output.Path = runOutput
		}
		if runFormat != "" {
			cfg.Output.Format = runFormat
		}

		env, err := initEnv(ctx, exportTargets{Notion: runNotion, Salesforce: runSalesforce})
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, pipeline.Options{
			Sources:     runSources,
			MaxURLs:     runMaxURLs,
			Concurrency: runConcurrency,
		})
		if result != nil {
			if perr := printResult(os.Stdout, result); perr != nil {
				zap.L().Warn("failed to print result", zap.Error(perr))
			}
		}
		if err != nil {
			return eris.Wrap(err, "run")
		}
		return nil
	},
}

// printResult writes the run id, status and summary as indented JSON.
func printResult(w io.Writer, result *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func init() {
	runCmd.Flags().StringSliceVar(&runSources, "source", nil, "source page URL (repeatable); skips source discovery")
	runCmd.Flags().IntVar(&runMaxURLs, "max-urls", 0, "max source pages to process (default from config)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "records analyzed in parallel (default from config)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output file path (default from config)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format: csv or xlsx (default from config)")
	runCmd.Flags().BoolVar(&runNotion, "notion", false, "push successful leads to the Notion lead database")
	runCmd.Flags().BoolVar(&runSalesforce, "salesforce", false, "push successful leads to Salesforce")
	rootCmd.AddCommand(runCmd)
}
