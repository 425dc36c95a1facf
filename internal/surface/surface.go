// Package surface implements the interactive surfaces of the client: the
// document upload surface and one surface per calculator. Each surface owns
// its state exclusively and allows a single request in flight.
package surface

import (
	"context"

	"github.com/sells-group/deed-cli/internal/calculator"
	"github.com/sells-group/deed-cli/internal/report"
	"github.com/sells-group/deed-cli/pkg/deedapi"
)

// Analyzer uploads a document for analysis.
type Analyzer interface {
	Extract(ctx context.Context, doc deedapi.Document) (*report.Report, error)
}

// Calculating submits normalized calculator fields.
type Calculating interface {
	Calculate(ctx context.Context, calc *calculator.Calculator, fields []calculator.WireField) (*calculator.Result, error)
}

// User-facing notification texts.
const (
	titleInvalidFormat = "Formato inválido"
	msgInvalidFormat   = "Por favor, selecione apenas arquivos PDF."

	titleUploadSuccess = "Sucesso!"
	msgUploadSuccess   = "Documento processado com sucesso"
	titleError         = "Erro"
	msgUploadFailed    = "Falha ao processar documento. Tente novamente."
	msgUploadMalformed = "Resposta inválida do serviço de análise. Tente novamente."

	titleCalcSuccess = "Cálculo concluído!"
	msgCalcFailed    = "Falha no cálculo. Verifique os dados inseridos."
	msgCalcMalformed = "Resposta inválida do serviço de cálculo. Tente novamente."
	msgCalcInvalid   = "Dados inválidos: "
)

// Status texts. They are cosmetic and do not map one-to-one to upload states.
const (
	StatusSending     = "Enviando documento..."
	StatusAnalyzing   = "Analisando com IA..."
	StatusDone        = "Análise concluída!"
	StatusCalculating = "Calculando..."
)
