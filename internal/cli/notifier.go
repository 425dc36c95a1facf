package cli

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/deed-cli/internal/notify"
)

// Terminal prints notifications as single styled lines.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal creates a Terminal notifier writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Notify implements notify.Notifier.
func (t *Terminal) Notify(kind notify.Kind, title, message string) {
	line := title
	if message != "" {
		line += " " + message
	}

	switch kind {
	case notify.KindSuccess:
		line = FormatSuccess(line)
	case notify.KindError:
		line = FormatError(line)
	default:
		line = FormatInfo(line)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintln(t.w, line); err != nil {
		zap.L().Warn("cli: write notification", zap.Error(err))
	}
}
