package cli

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const spinnerTick = 100 * time.Millisecond

// Spinner is an indeterminate progress indicator whose description follows
// the status text of a running operation.
type Spinner struct {
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartSpinner draws a spinner on w and keeps it animating until Stop.
func StartSpinner(w io.Writer, description string) *Spinner {
	s := &Spinner{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionClearOnFinish(),
		),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.bar.Add(1); err != nil {
				zap.L().Debug("cli: advance spinner", zap.Error(err))
			}
		}
	}
}

// Describe replaces the text shown next to the spinner.
func (s *Spinner) Describe(status string) {
	s.bar.Describe(status)
}

// Stop halts the animation and clears the spinner line. It is safe to call
// more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
		if err := s.bar.Finish(); err != nil {
			zap.L().Debug("cli: finish spinner", zap.Error(err))
		}
	})
}
