package surface

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/deed-cli/internal/apperr"
	"github.com/sells-group/deed-cli/internal/calculator"
	"github.com/sells-group/deed-cli/internal/notify"
)

// CalculatorOption configures a Calculator surface.
type CalculatorOption func(*Calculator)

// WithValidation checks entries against the form's UI domain before
// submitting. Off by default; the service validates on its own.
func WithValidation() CalculatorOption {
	return func(c *Calculator) {
		c.validate = true
	}
}

// WithCalculatorStatusFunc receives the status text while a calculation
// runs, and the empty string once it resolves.
func WithCalculatorStatusFunc(fn func(status string)) CalculatorOption {
	return func(c *Calculator) {
		c.onStatus = fn
	}
}

// Calculator is the surface for one calculator form.
type Calculator struct {
	calc     *calculator.Calculator
	client   Calculating
	notifier notify.Notifier
	validate bool
	onStatus func(string)
	inflight *semaphore.Weighted

	mu          sync.Mutex
	input       *calculator.Input
	result      *calculator.Result
	calculating bool
	status      string
}

// notice is a notification held back until the request is no longer in
// flight.
type notice struct {
	kind    notify.Kind
	title   string
	message string
}

// NewCalculator creates a surface with an empty form for calc.
func NewCalculator(calc *calculator.Calculator, client Calculating, notifier notify.Notifier, opts ...CalculatorOption) *Calculator {
	if notifier == nil {
		notifier = notify.Discard
	}
	c := &Calculator{
		calc:     calc,
		client:   client,
		notifier: notifier,
		inflight: semaphore.NewWeighted(1),
		input:    calculator.NewInput(calc),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores a raw entry. Entries cannot change while a calculation is in
// progress.
func (c *Calculator) Set(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calculating {
		return apperr.New(apperr.KindBusy, "surface: "+string(c.calc.Kind), nil)
	}
	return c.input.Set(field, value)
}

// Get returns the raw entry for field.
func (c *Calculator) Get(field string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.Get(field)
}

// Submit normalizes the form, sends it and replaces the current result with
// the response. On failure the previous result is left untouched. The
// outcome is notified after the form is released.
func (c *Calculator) Submit(ctx context.Context) (*calculator.Result, error) {
	res, n, err := c.submit(ctx)
	if n != nil {
		c.notifier.Notify(n.kind, n.title, n.message)
	}
	return res, err
}

func (c *Calculator) submit(ctx context.Context) (*calculator.Result, *notice, error) {
	op := "surface: " + string(c.calc.Kind)

	if !c.inflight.TryAcquire(1) {
		return nil, nil, apperr.New(apperr.KindBusy, op, nil)
	}
	defer c.inflight.Release(1)

	c.mu.Lock()
	if c.validate {
		if err := c.input.Validate(); err != nil {
			c.mu.Unlock()
			return nil, &notice{notify.KindError, titleError, msgCalcInvalid + err.Error()}, err
		}
	}
	fields := c.input.Normalize()
	c.calculating = true
	c.mu.Unlock()
	c.setStatus(StatusCalculating)

	defer func() {
		c.mu.Lock()
		c.calculating = false
		c.mu.Unlock()
		c.setStatus("")
	}()

	res, err := c.client.Calculate(ctx, c.calc, fields)
	if err != nil {
		kind := apperr.KindOf(err)
		zap.L().Warn("surface: calculation failed",
			zap.String("calculator", string(c.calc.Kind)),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		msg := msgCalcFailed
		if kind == apperr.KindMalformedResponse {
			msg = msgCalcMalformed
		}
		return nil, &notice{notify.KindError, titleError, msg}, err
	}

	c.mu.Lock()
	c.result = res
	c.mu.Unlock()

	zap.L().Info("surface: calculation complete",
		zap.String("calculator", string(c.calc.Kind)),
		zap.String("key", res.Key),
		zap.Float64("value", res.Value),
	)
	return res, &notice{notify.KindSuccess, titleCalcSuccess, c.calc.SuccessMessage}, nil
}

// Result returns the latest result, or nil before the first success.
func (c *Calculator) Result() *calculator.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// InProgress reports whether a calculation is in flight.
func (c *Calculator) InProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calculating
}

// Status returns the current status text.
func (c *Calculator) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Calculator) setStatus(s string) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()

	if c.onStatus != nil {
		c.onStatus(s)
	}
}
