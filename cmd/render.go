package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/deed-cli/internal/report"
)

var renderCmd = &cobra.Command{
	Use:   "render <response.json|->",
	Short: "Render a saved analysis service response without uploading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("render"); err != nil {
			return err
		}

		printer, err := newPrinter(cmd.OutOrStdout(), cfg)
		if err != nil {
			return err
		}

		body, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		rep, err := report.Decode(body)
		if err != nil {
			return err
		}
		return printer.Report(rep)
	},
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, eris.Wrap(err, "render: read stdin")
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "render: read %s", path)
	}
	return b, nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
