package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/deed-cli/internal/calculator"
	"github.com/sells-group/deed-cli/internal/cli"
	"github.com/sells-group/deed-cli/internal/notify"
	"github.com/sells-group/deed-cli/internal/surface"
)

// flagName maps a wire field name to its command-line flag.
func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// newCalculatorCmd builds a command with one string flag per form field.
// Percent fields take percent values, as typed in the form.
func newCalculatorCmd(calc *calculator.Calculator, short string) *cobra.Command {
	values := make(map[string]*string, len(calc.Fields))
	var check bool

	cmd := &cobra.Command{
		Use:   string(calc.Kind),
		Short: short,
		Long:  calc.Title,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := cfg.Validate("calculate"); err != nil {
				return err
			}

			printer, err := newPrinter(cmd.OutOrStdout(), cfg)
			if err != nil {
				return err
			}

			var opts []surface.CalculatorOption
			if check {
				opts = append(opts, surface.WithValidation())
			}

			spinner := cli.StartSpinner(cmd.ErrOrStderr(), "")
			defer spinner.Stop()

			base, flush := newNotifier(cmd.ErrOrStderr(), cfg)
			defer flush()
			notifier := notify.Func(func(kind notify.Kind, title, message string) {
				spinner.Stop()
				base.Notify(kind, title, message)
			})
			opts = append(opts, surface.WithCalculatorStatusFunc(spinner.Describe))
			form := surface.NewCalculator(calc, newClient(cfg), notifier, opts...)

			for _, f := range calc.Fields {
				if err := form.Set(f.Name, *values[f.Name]); err != nil {
					return err
				}
			}

			res, err := form.Submit(ctx)
			spinner.Stop()
			if err != nil {
				return err
			}
			zap.L().Debug("calculation complete",
				zap.String("calculator", string(calc.Kind)),
				zap.Float64("value", res.Value),
			)
			return printer.Result(res)
		},
	}

	for _, f := range calc.Fields {
		values[f.Name] = cmd.Flags().String(flagName(f.Name), "", f.Label)
	}
	cmd.Flags().BoolVar(&check, "check", false, "validate entries against the form limits before sending")

	return cmd
}

var (
	reverseCmd = newCalculatorCmd(&calculator.ReverseMortgage, "Compute the initial principal limit of a reverse mortgage")
	viagerCmd  = newCalculatorCmd(&calculator.Viager, "Compute the annual annuity of a viager sale")
)

func init() {
	rootCmd.AddCommand(reverseCmd, viagerCmd)
}
