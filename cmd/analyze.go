package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/deed-cli/internal/cli"
	"github.com/sells-group/deed-cli/internal/notify"
	"github.com/sells-group/deed-cli/internal/surface"
	"github.com/sells-group/deed-cli/pkg/deedapi"
)

var analyzeContentType string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.pdf>",
	Short: "Upload a deed PDF for analysis and print the cited report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		printer, err := newPrinter(cmd.OutOrStdout(), cfg)
		if err != nil {
			return err
		}

		doc, err := readDocument(args[0], analyzeContentType)
		if err != nil {
			return err
		}

		spinner := cli.StartSpinner(cmd.ErrOrStderr(), "")
		defer spinner.Stop()

		// The spinner must be gone before a notification line is printed.
		base, flush := newNotifier(cmd.ErrOrStderr(), cfg)
		defer flush()
		notifier := notify.Func(func(kind notify.Kind, title, message string) {
			spinner.Stop()
			base.Notify(kind, title, message)
		})

		upload := surface.NewUpload(newClient(cfg), notifier,
			surface.WithStatusFunc(spinner.Describe),
			surface.WithStateFunc(func(from, to surface.State) {
				zap.L().Debug("upload state",
					zap.String("file", doc.Name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			}),
		)

		rep, err := upload.Select(ctx, doc)
		if err != nil {
			return err
		}
		return printer.Report(rep)
	},
}

// readDocument loads path for upload. The content type is sniffed from the
// file bytes unless contentType overrides it.
func readDocument(path, contentType string) (deedapi.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return deedapi.Document{}, eris.Wrapf(err, "analyze: read %s", path)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return deedapi.Document{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeContentType, "content-type", "", "declared content type (default sniffed from the file)")
	rootCmd.AddCommand(analyzeCmd)
}
