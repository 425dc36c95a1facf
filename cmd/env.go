package main

import (
	"io"

	"go.uber.org/zap"

	"github.com/sells-group/deed-cli/internal/cli"
	"github.com/sells-group/deed-cli/internal/config"
	"github.com/sells-group/deed-cli/internal/cost"
	"github.com/sells-group/deed-cli/internal/locale"
	"github.com/sells-group/deed-cli/internal/notify"
	"github.com/sells-group/deed-cli/pkg/deedapi"
)

// newPrinter builds the output printer from the --output flag and config.
func newPrinter(w io.Writer, c *config.Config) (*cli.Printer, error) {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	numbers, err := locale.New(c.Render.Locale)
	if err != nil {
		return nil, err
	}

	opts := []cli.PrinterOption{
		cli.WithLocale(numbers),
		cli.WithCost(cost.NewCalculator(pricingRates(c.Pricing))),
	}
	if !c.Render.Color {
		opts = append(opts, cli.WithPlain())
	}
	return cli.NewPrinter(w, format, opts...), nil
}

// pricingRates overlays configured model pricing on the defaults.
func pricingRates(p config.PricingConfig) cost.Rates {
	rates := cost.DefaultRates()
	for model, mp := range p.Anthropic {
		rates.Anthropic[model] = cost.ModelRate{Input: mp.Input, Output: mp.Output}
	}
	return rates
}

// newNotifier sends notifications to the terminal and, when configured, to
// a webhook. The returned func flushes pending webhook deliveries.
func newNotifier(w io.Writer, c *config.Config) (notify.Notifier, func()) {
	term := cli.NewTerminal(w)
	if c.Notify.WebhookURL == "" {
		return term, func() {}
	}
	hook := notify.NewWebhook(c.Notify.WebhookURL)
	flush := func() {
		if err := hook.Close(); err != nil {
			zap.L().Warn("flush webhook notifications", zap.Error(err))
		}
	}
	return notify.Multi(term, hook), flush
}

// newClient builds the analysis service client.
func newClient(c *config.Config) deedapi.Client {
	var opts []deedapi.Option
	if t := c.API.Timeout(); t > 0 {
		opts = append(opts, deedapi.WithTimeout(t))
	}
	zap.L().Debug("deed api client",
		zap.String("base_url", c.API.BaseURL),
		zap.Duration("timeout", c.API.Timeout()),
	)
	return deedapi.NewClient(c.API.BaseURL, opts...)
}
