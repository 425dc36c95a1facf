package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/deed-cli/internal/calculator"
	"github.com/sells-group/deed-cli/internal/locale"
	"github.com/sells-group/deed-cli/internal/report"
)

func serveRequest(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := newRouter(locale.MustNew(locale.Default), nil)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	rr := serveRequest(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

const serviceResponse = `{
	"success": true,
	"content": [
		{"text": "  ##   Partes  ", "type": "text"},
		{"text": "", "type": "text"},
		{"text": "Vendedor: João", "type": "text", "citations": [
			{"cited_text": "João da Silva", "document_index": 0, "document_title": "Escritura",
			 "start_page_number": 9, "end_page_number": 7, "type": "page_location"}
		]}
	],
	"model_used": "claude-sonnet-4-20250514",
	"usage": {"input_tokens": 12345, "output_tokens": 678}
}`

func TestRenderEndpoint(t *testing.T) {
	t.Parallel()

	rr := serveRequest(t, http.MethodPost, "/render", serviceResponse)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got report.Rendered
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Blocks, 2)
	assert.Equal(t, report.Block{Kind: report.BlockHeading, Text: "Partes"}, got.Blocks[0])
	require.Len(t, got.Blocks[1].Citations, 1)
	assert.Equal(t, "Pág. 9-7", got.Blocks[1].Citations[0].PageLabel)
	require.NotNil(t, got.Footer)
	assert.Equal(t, "12.345", got.Footer.InputTokens)
}

func TestRenderEndpoint_LocaleOverride(t *testing.T) {
	t.Parallel()

	rr := serveRequest(t, http.MethodPost, "/render?locale=en-US", serviceResponse)
	require.Equal(t, http.StatusOK, rr.Code)

	var got report.Rendered
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "12,345", got.Footer.InputTokens)

	rr = serveRequest(t, http.MethodPost, "/render?locale=!!", serviceResponse)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRenderEndpoint_Malformed(t *testing.T) {
	t.Parallel()

	rr := serveRequest(t, http.MethodPost, "/render", `{"content": "nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "malformed_response", body["kind"])

	rr = serveRequest(t, http.MethodPost, "/render", `{"error": "quota exceeded"}`)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "request_failed", body["kind"])
}

func TestCalculatorsEndpoint(t *testing.T) {
	t.Parallel()

	rr := serveRequest(t, http.MethodGet, "/calculators", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got []struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Fields   []struct {
			Name    string `json:"name"`
			Percent bool   `json:"percent"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "reverse", got[0].Name)
	assert.Equal(t, "/api/mortgage/reverse", got[0].Endpoint)
	assert.Len(t, got[0].Fields, 4)
	assert.Equal(t, "viager", got[1].Name)
	assert.Len(t, got[1].Fields, 5)
}

func TestNormalizeEndpoint_Viager(t *testing.T) {
	t.Parallel()

	rr := serveRequest(t, http.MethodPost, "/calculators/viager/normalize",
		`{"property_value": "1000000", "annual_rent": 36000, "age": "70", "discount_rate": "5", "upfront_payment": "20"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got struct {
		Calculator string                 `json:"calculator"`
		Fields     []calculator.WireField `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "viager", got.Calculator)
	assert.Equal(t, []calculator.WireField{
		{Name: "property_value", Value: "1000000"},
		{Name: "annual_rent", Value: "36000"},
		{Name: "age", Value: "70"},
		{Name: "discount_rate", Value: "0.05"},
		{Name: "upfront_payment", Value: "0.2"},
	}, got.Fields)
}

func TestNormalizeEndpoint_Errors(t *testing.T) {
	t.Parallel()

	rr := serveRequest(t, http.MethodPost, "/calculators/hipoteca/normalize", `{}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serveRequest(t, http.MethodPost, "/calculators/reverse/normalize", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serveRequest(t, http.MethodPost, "/calculators/reverse/normalize", `{"renda": "1"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serveRequest(t, http.MethodPost, "/calculators/reverse/normalize", `{"age": true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNormalizeEndpoint_Check(t *testing.T) {
	t.Parallel()

	body := `{"property_value": "1000000", "age": "50", "expected_interest_rate": "5", "program_cap": "1200000"}`

	rr := serveRequest(t, http.MethodPost, "/calculators/reverse/normalize", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serveRequest(t, http.MethodPost, "/calculators/reverse/normalize?check=true", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "age must be at least 62")
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	h := newRouter(locale.MustNew(locale.Default), nil)
	req := httptest.NewRequest(http.MethodOptions, "/render", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	h := newRouter(locale.MustNew(locale.Default), rate.NewLimiter(rate.Every(time.Hour), 2))

	codes := make([]int, 0, 3)
	for range 3 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	assert.Nil(t, newLimiter(0, 10))
	l := newLimiter(5, 10)
	require.NotNil(t, l)
	assert.Equal(t, 10, l.Burst())
}
