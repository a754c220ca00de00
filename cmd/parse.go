package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/extract"
)

var parseCmd = &cobra.Command{
	Use:   "parse {companies|urls|analysis} FILE",
	Short: "Parse saved generated text without calling any provider",
	Long: "Runs the text extractor or the analysis field parser over a file (\"-\" reads stdin) " +
		"and prints the parsed result as JSON.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"companies", "urls", "analysis"},
	RunE: func(cmd *cobra.Command, args []string) error {
		in := io.Reader(os.Stdin)
		if args[1] != "-" {
			f, err := os.Open(args[1])
			if err != nil {
				return eris.Wrap(err, "parse: open input")
			}
			defer f.Close() //nolint:errcheck
			in = f
		}
		return parseInput(args[0], in, cmd.OutOrStdout())
	},
}

// parseInput parses r according to kind and writes indented JSON to w.
func parseInput(kind string, r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return eris.Wrap(err, "parse: read input")
	}
	text := string(data)

	var out any
	switch kind {
	case "companies":
		out = extract.NewTextExtractor().ExtractCompanies(text)
	case "urls":
		out = extract.NewTextExtractor().ExtractURLs(text)
	case "analysis":
		out = extract.ParseAnalysis(text)
	default:
		return eris.Errorf("parse: unknown kind %q (want companies, urls or analysis)", kind)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(out), "parse: encode output")
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
