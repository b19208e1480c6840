// =============================================================================
// Tally Bridge - Mapping Suggestion
// =============================================================================
//
// A suggested mapping is a convenience input, never a trusted one: whatever a
// suggester returns is just an editable starting point that goes through the
// same validation as a hand-entered mapping. Any suggestion failure resolves
// to a blank mapping; a partially built suggestion is never applied.
//
// =============================================================================

package mapping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tallybridge/internal/schema"
)

// =============================================================================
// CAPABILITY INTERFACE
// =============================================================================

// Suggester proposes an initial mapping for a set of report headers.
type Suggester interface {
	Suggest(ctx context.Context, headers []string) (schema.Mapping, error)
}

// CollaboratorError wraps any failure of an external suggestion collaborator.
type CollaboratorError struct {
	Provider string
	Err      error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("suggestion collaborator %s failed: %v", e.Provider, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// SuggestOrBlank runs the suggester and degrades any failure to a blank
// mapping. The returned mapping always has all twelve fields present.
func SuggestOrBlank(ctx context.Context, s Suggester, headers []string) (schema.Mapping, error) {
	suggested, err := s.Suggest(ctx, headers)
	if err != nil {
		return schema.NewBlankMapping(), err
	}

	// Fill in any fields the suggester omitted so the mapping stays total.
	m := schema.NewBlankMapping()
	for _, field := range schema.AllFields {
		m[field] = suggested[field]
	}
	return m, nil
}

// =============================================================================
// HEURISTIC SUGGESTER
// =============================================================================

// headerSynonyms maps normalized marketplace header spellings to canonical
// fields. Normalization lowercases and strips everything but letters and
// digits, so "Invoice No.", "invoice_no" and "InvoiceNo" all match.
var headerSynonyms = map[string]schema.Field{
	"date":           schema.FieldDate,
	"orderdate":      schema.FieldDate,
	"invoicedate":    schema.FieldDate,
	"transactiondate": schema.FieldDate,
	"invoiceno":      schema.FieldInvoiceNo,
	"invoicenumber":  schema.FieldInvoiceNo,
	"orderid":        schema.FieldInvoiceNo,
	"orderno":        schema.FieldInvoiceNo,
	"customername":   schema.FieldCustomerName,
	"buyername":      schema.FieldCustomerName,
	"name":           schema.FieldCustomerName,
	"state":          schema.FieldState,
	"shipstate":      schema.FieldState,
	"deliverystate":  schema.FieldState,
	"taxablevalue":   schema.FieldTaxableValue,
	"taxableamount":  schema.FieldTaxableValue,
	"netamount":      schema.FieldTaxableValue,
	"igst":           schema.FieldIGST,
	"igstamount":     schema.FieldIGST,
	"cgst":           schema.FieldCGST,
	"cgstamount":     schema.FieldCGST,
	"sgst":           schema.FieldSGST,
	"sgstamount":     schema.FieldSGST,
	"totalamount":    schema.FieldTotalAmount,
	"invoiceamount":  schema.FieldTotalAmount,
	"grandtotal":     schema.FieldTotalAmount,
	"gstrate":        schema.FieldGSTRate,
	"taxrate":        schema.FieldGSTRate,
	"rate":           schema.FieldGSTRate,
	"productname":    schema.FieldProductName,
	"itemname":       schema.FieldProductName,
	"item":           schema.FieldProductName,
	"description":    schema.FieldProductName,
	"quantity":       schema.FieldQuantity,
	"qty":            schema.FieldQuantity,
	"units":          schema.FieldQuantity,
}

// HeuristicSuggester matches headers against a synonym table. It needs no
// network and never fails; it simply leaves unrecognized fields unmapped.
type HeuristicSuggester struct{}

// Suggest maps each canonical field to the first header whose normalized form
// is a known synonym. Header order decides ties; a header is claimed at most
// once so the suggestion never violates the uniqueness invariant.
func (HeuristicSuggester) Suggest(_ context.Context, headers []string) (schema.Mapping, error) {
	m := schema.NewBlankMapping()

	for _, header := range headers {
		field, ok := headerSynonyms[normalizeHeader(header)]
		if !ok {
			continue
		}
		if m[field] == "" {
			m[field] = header
		}
	}

	return m, nil
}

// normalizeHeader lowercases and strips everything but letters and digits.
func normalizeHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// =============================================================================
// HTTP SUGGESTER
// =============================================================================

// HTTPSuggester posts the header list to a remote guessing service and decodes
// the suggested mapping from its JSON response.
//
// Request body:  {"headers": ["Order Date", "Qty", ...]}
// Response body: {"mapping": {"date": "Order Date", "quantity": "Qty", ...}}
type HTTPSuggester struct {
	// Endpoint is the URL the header list is posted to.
	Endpoint string

	// APIKey, when non-empty, is sent as a bearer token.
	APIKey string

	// Timeout bounds the whole call. Zero means 30 seconds.
	Timeout time.Duration

	// Client allows tests to substitute a transport. Nil means a fresh
	// client with the configured timeout.
	Client *http.Client
}

type suggestRequest struct {
	Headers []string `json:"headers"`
}

type suggestResponse struct {
	Mapping map[string]string `json:"mapping"`
}

// Suggest calls the remote service. Every failure path (transport error,
// non-2xx status, undecodable body, unknown field keys) returns a
// CollaboratorError so the caller can degrade to a blank mapping.
func (s *HTTPSuggester) Suggest(ctx context.Context, headers []string) (schema.Mapping, error) {
	body, err := json.Marshal(suggestRequest{Headers: headers})
	if err != nil {
		return nil, &CollaboratorError{Provider: s.Endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &CollaboratorError{Provider: s.Endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	client := s.Client
	if client == nil {
		timeout := s.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &CollaboratorError{Provider: s.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CollaboratorError{
			Provider: s.Endpoint,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var decoded suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &CollaboratorError{Provider: s.Endpoint, Err: err}
	}

	m := schema.NewBlankMapping()
	for key, header := range decoded.Mapping {
		field, ok := schema.ParseField(key)
		if !ok {
			return nil, &CollaboratorError{
				Provider: s.Endpoint,
				Err:      fmt.Errorf("unknown field %q in response", key),
			}
		}
		m[field] = header
	}

	return m, nil
}
