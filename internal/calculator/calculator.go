// Package calculator models the reverse-mortgage and viager calculator forms:
// their fields, the percent-to-fraction wire normalization, and the decoding
// of the single numeric result each calculation returns.
package calculator

import (
	"sort"
)

// Kind identifies a calculator.
type Kind string

const (
	KindReverse Kind = "reverse"
	KindViager  Kind = "viager"
)

// Field describes one form input. Min and Max bound the UI domain; a nil Max
// means unbounded. Convert, when set, maps the raw entry to its wire value.
type Field struct {
	Name    string
	Label   string
	Percent bool
	Integer bool
	Min     float64
	Max     *float64
	Convert func(string) string
}

// Calculator describes one calculation form and its service endpoint.
type Calculator struct {
	Kind           Kind
	Title          string
	Endpoint       string
	Fields         []Field
	ResultKey      string
	ResultLabel    string
	SuccessMessage string
}

func bound(v float64) *float64 { return &v }

// ReverseMortgage is the reverse-mortgage (hipoteca reversa) form.
var ReverseMortgage = Calculator{
	Kind:     KindReverse,
	Title:    "Calculadora Hipoteca Reversa",
	Endpoint: "/api/mortgage/reverse",
	Fields: []Field{
		{Name: "property_value", Label: "Valor Avaliado do Imóvel (R$)", Min: 1},
		{Name: "age", Label: "Idade do Mutuário", Integer: true, Min: 62, Max: bound(110)},
		{Name: "expected_interest_rate", Label: "Taxa de Juros Esperada (%)", Percent: true, Min: 0, Max: bound(15), Convert: ExpectedInterestRate},
		{Name: "program_cap", Label: "Limite Máximo do Programa (R$)", Min: 1},
	},
	ResultKey:      "initial_principal_limit",
	ResultLabel:    "Limite Principal Inicial",
	SuccessMessage: "Resultado da Hipoteca Reversa calculado com sucesso",
}

// Viager is the viager (renda vitalícia) form.
var Viager = Calculator{
	Kind:     KindViager,
	Title:    "Calculadora Viager (Renda Vitalícia)",
	Endpoint: "/api/mortgage/viager",
	Fields: []Field{
		{Name: "property_value", Label: "Valor do Imóvel (R$)", Min: 1},
		{Name: "annual_rent", Label: "Renda Anual Esperada (R$)", Min: 1},
		{Name: "age", Label: "Idade do Vendedor", Integer: true, Min: 60, Max: bound(110)},
		{Name: "discount_rate", Label: "Taxa de Desconto (%)", Percent: true, Min: 0, Max: bound(100), Convert: DiscountRate},
		{Name: "upfront_payment", Label: "Pagamento Inicial (%)", Percent: true, Min: 0, Max: bound(100), Convert: UpfrontPayment},
	},
	ResultKey:      "annual_annuity",
	ResultLabel:    "Anuidade",
	SuccessMessage: "Resultado do Viager calculado com sucesso",
}

var registry = map[Kind]*Calculator{
	KindReverse: &ReverseMortgage,
	KindViager:  &Viager,
}

// Lookup returns the calculator registered under name.
func Lookup(name string) (*Calculator, bool) {
	c, ok := registry[Kind(name)]
	return c, ok
}

// Names returns the registered calculator names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

// Field returns the field with the given wire name.
func (c *Calculator) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
