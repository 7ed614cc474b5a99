package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"financial-audit-service/pkg/errors"
	"financial-audit-service/pkg/logger"
)

const extractionPrompt = `You are a forensic financial document reader.
Extract structured records from these three documents with absolute precision:
1. User Registry (master list of users and associated account numbers/IDs)
2. Daily Earnings (the 'Debit' column is the amount each user owes)
3. Bank Statement (incoming credits with date, exact time in 24h HH:mm and reference)

Extract facts only. Do NOT aggregate, match or compute balances.
For every statement credit include the account reference, the amount, the date,
the EXACT TIME (HH:mm) and the transaction reference. When the statement line
explicitly names a registry user or account ID, set userId to that ID;
otherwise leave userId empty.

Respond with a single JSON object:
{"registry":[{"userId","userName","phoneNumber"}],
 "debits":[{"userId","amount"}],
 "credits":[{"accountRef","userId","amount","date","time","transactionRef"}]}`

// GeminiConfig holds configuration for the document-understanding client
type GeminiConfig struct {
	// APIKey authenticates against the service; injected explicitly, never
	// read from ambient globals
	APIKey string

	// Model names the generative model used for extraction
	Model string

	// BaseURL is the API endpoint prefix; overridable for testing
	BaseURL string

	// Timeout bounds the single outstanding extraction call
	Timeout time.Duration
}

// DefaultGeminiConfig returns a default client configuration
func DefaultGeminiConfig() *GeminiConfig {
	return &GeminiConfig{
		Model:   "gemini-3-flash-preview",
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		Timeout: 2 * time.Minute,
	}
}

// Validate validates the client configuration
func (c *GeminiConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "api_key", nil, nil)
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "model", nil, nil)
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "base_url", nil, nil)
	}
	if c.Timeout <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "timeout", c.Timeout.String(), nil)
	}
	return nil
}

// GeminiExtractor extracts structured records by sending the three PDFs
// to a generative document-understanding API in a single call.
type GeminiExtractor struct {
	config *GeminiConfig
	client *http.Client
	log    logger.Logger
}

// NewGeminiExtractor creates a new extractor client
func NewGeminiExtractor(config *GeminiConfig) (*GeminiExtractor, error) {
	if config == nil {
		config = DefaultGeminiConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &GeminiExtractor{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		log:    logger.GetGlobalLogger().WithComponent("extractor"),
	}, nil
}

// Wire types for the generateContent API

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Extract performs the single outstanding extraction call. The call is
// never retried here; rate-limit, credential and malformed-output
// failures surface as distinct typed errors.
func (g *GeminiExtractor) Extract(ctx context.Context, docs *Documents) (*ExtractionResult, error) {
	if err := docs.Validate(); err != nil {
		return nil, errors.ExtractionError(errors.CodeSchemaViolation, err.Error(), err)
	}

	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: "application/pdf", Data: base64.StdEncoding.EncodeToString(docs.Registry)}},
				{InlineData: &inlineData{MimeType: "application/pdf", Data: base64.StdEncoding.EncodeToString(docs.Earnings)}},
				{InlineData: &inlineData{MimeType: "application/pdf", Data: base64.StdEncoding.EncodeToString(docs.Statement)}},
				{Text: extractionPrompt},
			},
		}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "encoding extraction request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(g.config.BaseURL, "/"), g.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "building extraction request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.config.APIKey)

	g.log.WithField("model", g.config.Model).Info("Requesting document extraction")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.ExtractionError(errors.CodeServiceUnavailable, err.Error(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExtractionError(errors.CodeServiceUnavailable, "reading response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(resp.StatusCode, respBody)
	}

	result, err := decodeExtraction(respBody)
	if err != nil {
		return nil, err
	}

	if err := result.Validate(); err != nil {
		return nil, errors.ExtractionError(errors.CodeSchemaViolation, err.Error(), err)
	}

	g.log.WithFields(logger.Fields{
		"registry_entries": len(result.Registry),
		"debit_entries":    len(result.Debits),
		"credit_entries":   len(result.Credits),
	}).Info("Extraction complete")

	return result, nil
}

func classifyHTTPError(status int, body []byte) error {
	detail := fmt.Sprintf("HTTP %d", status)

	switch {
	case status == http.StatusTooManyRequests:
		return errors.ExtractionError(errors.CodeQuotaExceeded, detail, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.ExtractionError(errors.CodeInvalidCredentials, detail, nil)
	case status >= 500:
		return errors.ExtractionError(errors.CodeServiceUnavailable, detail, nil)
	default:
		return errors.ExtractionError(errors.CodeMalformedOutput, fmt.Sprintf("%s: %s", detail, truncate(string(body), 200)), nil)
	}
}

func decodeExtraction(body []byte) (*ExtractionResult, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.ExtractionError(errors.CodeMalformedOutput, "response is not valid JSON", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.ExtractionError(errors.CodeMalformedOutput, "response contains no candidates", nil)
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	var result ExtractionResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, errors.ExtractionError(errors.CodeMalformedOutput, "candidate text is not a record bundle", err)
	}

	return &result, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
