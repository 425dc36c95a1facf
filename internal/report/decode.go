package report

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/deed-cli/internal/apperr"
)

const decodeOp = "report: decode"

// wireReport mirrors the extraction service body with pointer fields so that
// absent keys can be told apart from zero values.
type wireReport struct {
	Success   *bool          `json:"success"`
	Content   *[]wireSegment `json:"content"`
	ModelUsed *string        `json:"model_used"`
	Usage     *wireUsage     `json:"usage"`
	Error     *string        `json:"error"`
}

type wireSegment struct {
	Text      *string    `json:"text"`
	Citations []Citation `json:"citations"`
	Type      string     `json:"type"`
}

type wireUsage struct {
	InputTokens  *int `json:"input_tokens"`
	OutputTokens *int `json:"output_tokens"`
}

// Decode parses an extraction service body into a Report.
//
// A body that is not JSON, or lacks content, model_used or usage, fails with
// apperr.KindMalformedResponse. A body of the form {"error": "..."} is the
// service reporting its own failure and fails with apperr.KindRequestFailed.
func Decode(body []byte) (*Report, error) {
	var w wireReport
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, apperr.New(apperr.KindMalformedResponse, decodeOp, eris.Wrap(err, "report: unmarshal"))
	}

	if w.Error != nil {
		return nil, apperr.New(apperr.KindRequestFailed, decodeOp, eris.Errorf("report: service error: %s", *w.Error))
	}

	if w.Content == nil {
		return nil, malformed("missing content")
	}
	if w.ModelUsed == nil {
		return nil, malformed("missing model_used")
	}
	if w.Usage == nil || w.Usage.InputTokens == nil || w.Usage.OutputTokens == nil {
		return nil, malformed("missing usage token counts")
	}

	segments := make([]Segment, 0, len(*w.Content))
	for i, ws := range *w.Content {
		if ws.Text == nil {
			// Non-text blocks may legitimately carry no text; they render as nothing.
			if ws.Type == "" || ws.Type == "text" {
				return nil, malformed("content[%d]: missing text", i)
			}
			segments = append(segments, Segment{Citations: ws.Citations, Kind: ws.Type})
			continue
		}
		segments = append(segments, Segment{
			Text:      *ws.Text,
			Citations: ws.Citations,
			Kind:      ws.Type,
		})
	}

	r := &Report{
		Segments:  segments,
		ModelUsed: *w.ModelUsed,
		Usage: Usage{
			InputTokens:  *w.Usage.InputTokens,
			OutputTokens: *w.Usage.OutputTokens,
		},
	}
	if w.Success != nil {
		r.Success = *w.Success
	}
	return r, nil
}

func malformed(format string, args ...any) error {
	return apperr.New(apperr.KindMalformedResponse, decodeOp, eris.Errorf("report: "+format, args...))
}
