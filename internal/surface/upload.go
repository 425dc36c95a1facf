package surface

import (
	"context"
	"mime"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/deed-cli/internal/apperr"
	"github.com/sells-group/deed-cli/internal/notify"
	"github.com/sells-group/deed-cli/internal/report"
	"github.com/sells-group/deed-cli/pkg/deedapi"
)

// State is a step of the upload flow.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateAwaitingAnalysis
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploading:
		return "uploading"
	case StateAwaitingAnalysis:
		return "awaiting_analysis"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UploadOption configures an Upload surface.
type UploadOption func(*Upload)

// WithStatusFunc receives every status text change, including the empty
// string when the status is cleared.
func WithStatusFunc(fn func(status string)) UploadOption {
	return func(u *Upload) {
		u.onStatus = fn
	}
}

// WithStateFunc receives every state transition.
func WithStateFunc(fn func(from, to State)) UploadOption {
	return func(u *Upload) {
		u.onState = fn
	}
}

// Upload drives the document upload and analysis flow:
//
//	Idle -> Uploading -> AwaitingAnalysis -> Complete
//	Idle -> Uploading -> AwaitingAnalysis -> Failed -> Idle
//
// A Complete surface accepts a new selection; the previous report stays
// available until the new one resolves.
type Upload struct {
	analyzer Analyzer
	notifier notify.Notifier
	onStatus func(string)
	onState  func(from, to State)
	inflight *semaphore.Weighted

	mu     sync.Mutex
	state  State
	status string
	report *report.Report
}

// NewUpload creates an idle upload surface.
func NewUpload(analyzer Analyzer, notifier notify.Notifier, opts ...UploadOption) *Upload {
	if notifier == nil {
		notifier = notify.Discard
	}
	u := &Upload{
		analyzer: analyzer,
		notifier: notifier,
		inflight: semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Select submits doc for analysis and blocks until it resolves. Non-PDF
// documents are rejected without a request and without a state change.
// While a request is in flight further selections fail with apperr.KindBusy.
func (u *Upload) Select(ctx context.Context, doc deedapi.Document) (*report.Report, error) {
	const op = "surface: upload"

	if !isPDF(doc.ContentType) {
		u.notifier.Notify(notify.KindError, titleInvalidFormat, msgInvalidFormat)
		zap.L().Info("surface: rejected non-pdf upload",
			zap.String("file", doc.Name),
			zap.String("content_type", doc.ContentType),
		)
		return nil, apperr.New(apperr.KindInvalidFileType, op,
			eris.Errorf("surface: %s has type %q, want %s", doc.Name, doc.ContentType, deedapi.PDFContentType))
	}

	if !u.inflight.TryAcquire(1) {
		return nil, apperr.New(apperr.KindBusy, op, nil)
	}
	defer u.inflight.Release(1)

	u.transition(StateUploading)
	u.setStatus(StatusSending)

	u.transition(StateAwaitingAnalysis)
	u.setStatus(StatusAnalyzing)

	rep, err := u.analyzer.Extract(ctx, doc)
	if err != nil {
		u.fail(doc, err)
		return nil, err
	}

	u.mu.Lock()
	u.report = rep
	u.mu.Unlock()

	u.transition(StateComplete)
	u.setStatus(StatusDone)
	u.notifier.Notify(notify.KindSuccess, titleUploadSuccess, msgUploadSuccess)
	zap.L().Info("surface: analysis complete",
		zap.String("file", doc.Name),
		zap.String("model", rep.ModelUsed),
		zap.Int("segments", len(rep.Segments)),
		zap.Int("input_tokens", rep.Usage.InputTokens),
		zap.Int("output_tokens", rep.Usage.OutputTokens),
	)
	return rep, nil
}

func (u *Upload) fail(doc deedapi.Document, err error) {
	kind := apperr.KindOf(err)
	zap.L().Warn("surface: analysis failed",
		zap.String("file", doc.Name),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)

	u.transition(StateFailed)
	u.setStatus("")

	msg := msgUploadFailed
	if kind == apperr.KindMalformedResponse {
		msg = msgUploadMalformed
	}
	u.notifier.Notify(notify.KindError, titleError, msg)

	u.transition(StateIdle)
}

// State returns the current state.
func (u *Upload) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Status returns the current status text.
func (u *Upload) Status() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

// Report returns the most recent successful analysis, or nil.
func (u *Upload) Report() *report.Report {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.report
}

// Busy reports whether a request is in flight; the surface's input is
// disabled meanwhile.
func (u *Upload) Busy() bool {
	if u.inflight.TryAcquire(1) {
		u.inflight.Release(1)
		return false
	}
	return true
}

func (u *Upload) transition(to State) {
	u.mu.Lock()
	from := u.state
	u.state = to
	u.mu.Unlock()

	if u.onState != nil {
		u.onState(from, to)
	}
}

func (u *Upload) setStatus(s string) {
	u.mu.Lock()
	u.status = s
	u.mu.Unlock()

	if u.onStatus != nil {
		u.onStatus(s)
	}
}

func isPDF(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == deedapi.PDFContentType
}
