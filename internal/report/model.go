// Package report holds the document-analysis result model and the renderer
// that turns it into display blocks.
package report

// Citation is one quoted excerpt attributed to a page range of a source
// document. StartPage <= EndPage is expected but not guaranteed.
type Citation struct {
	CitedText     string `json:"cited_text" yaml:"cited_text"`
	DocumentIndex int    `json:"document_index" yaml:"document_index"`
	DocumentTitle string `json:"document_title" yaml:"document_title"`
	StartPage     int    `json:"start_page_number" yaml:"start_page_number"`
	EndPage       int    `json:"end_page_number" yaml:"end_page_number"`
	Kind          string `json:"type" yaml:"type"`
}

// Segment is one unit of model output text. A nil Citations slice means the
// service sent no citation list.
type Segment struct {
	Text      string     `json:"text" yaml:"text"`
	Citations []Citation `json:"citations" yaml:"citations"`
	Kind      string     `json:"type" yaml:"type"`
}

// Usage tracks token consumption for one analysis.
type Usage struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
}

// Report is the parsed analysis for a single uploaded document. Segments are
// in reading order.
type Report struct {
	Success   bool      `json:"success" yaml:"success"`
	Segments  []Segment `json:"content" yaml:"content"`
	ModelUsed string    `json:"model_used" yaml:"model_used"`
	Usage     Usage     `json:"usage" yaml:"usage"`
}
