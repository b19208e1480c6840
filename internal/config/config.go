// =============================================================================
// Tally Bridge - Configuration Module
// =============================================================================
//
// This module loads the application configuration and the user-maintained
// mapping files. Two YAML file kinds exist:
//   1. App config (config.yaml): output locations, company name, ledger
//      renames, suggestion service settings.
//   2. Mapping files: canonical field -> report column header, one entry per
//      canonical field.
//
// All configurations get defaults applied and are validated on load.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tallybridge/internal/schema"
)

// =============================================================================
// APPLICATION CONFIGURATION
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// OutputDir is where generated voucher XML documents are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where report files are moved after a successful
	// conversion, when archival is requested. Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// CompanyName fills SVCURRENTCOMPANY in the exported document.
	// Default: "Ecommerce Sales"
	CompanyName string `yaml:"company_name"`

	// OutputNameFormat names the generated document. Placeholders:
	//   {uuid}      - a random UUID
	//   {timestamp} - generation time as YYYYMMDD_HHMMSS
	// Default: "vouchers_{timestamp}_{uuid}.xml"
	OutputNameFormat string `yaml:"output_name_format"`

	// MappingFile is the default mapping file used when the convert command
	// is not given one explicitly.
	MappingFile string `yaml:"mapping_file"`

	// LedgerOverrides renames derived ledgers at export time, keyed by the
	// ledger's default name, e.g. "Sales @ 18%": "My Custom Sales".
	LedgerOverrides map[string]string `yaml:"ledger_overrides"`

	// Suggestion configures the optional remote mapping-guessing service.
	Suggestion SuggestionConfig `yaml:"suggestion"`
}

// SuggestionConfig configures the optional remote suggester. When disabled
// or unreachable, suggestion falls back to the built-in heuristic matcher.
type SuggestionConfig struct {
	// Endpoint is the URL headers are posted to. Empty disables the remote
	// suggester.
	Endpoint string `yaml:"endpoint"`

	// APIKeyEnv names the environment variable holding the bearer token.
	// Default: "TALLYBRIDGE_SUGGEST_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// TimeoutSeconds bounds the whole suggestion call. Default: 30
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Load reads the application configuration. A missing file is not an error:
// the command-line tool runs fine on defaults alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.CompanyName == "" {
		cfg.CompanyName = "Ecommerce Sales"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "vouchers_{timestamp}_{uuid}.xml"
	}
	if cfg.Suggestion.APIKeyEnv == "" {
		cfg.Suggestion.APIKeyEnv = "TALLYBRIDGE_SUGGEST_API_KEY"
	}
	if cfg.Suggestion.TimeoutSeconds == 0 {
		cfg.Suggestion.TimeoutSeconds = 30
	}
}

// =============================================================================
// MAPPING FILES
// =============================================================================

// mappingDoc is the YAML shape of a mapping file. Every canonical field has
// an entry; an empty value means the field is unmapped.
type mappingDoc struct {
	Date         string `yaml:"date"`
	InvoiceNo    string `yaml:"invoiceNo"`
	CustomerName string `yaml:"customerName"`
	State        string `yaml:"state"`
	TaxableValue string `yaml:"taxableValue"`
	IGST         string `yaml:"igst"`
	CGST         string `yaml:"cgst"`
	SGST         string `yaml:"sgst"`
	TotalAmount  string `yaml:"totalAmount"`
	GSTRate      string `yaml:"gstRate"`
	ProductName  string `yaml:"productName"`
	Quantity     string `yaml:"quantity"`
}

// LoadMapping reads a mapping file. Keys outside the canonical field set are
// rejected so a typo like "invoice_no" fails loudly instead of silently
// leaving the field unmapped.
func LoadMapping(path string) (schema.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}

	m := schema.NewBlankMapping()
	for key, header := range raw {
		field, ok := schema.ParseField(key)
		if !ok {
			return nil, fmt.Errorf("unknown field %q in mapping file", key)
		}
		m[field] = header
	}

	return m, nil
}

// SaveMapping writes a mapping file with every canonical field present, in
// schema order, so the user can fill in the blanks by hand.
func SaveMapping(path string, m schema.Mapping) error {
	doc := mappingDoc{
		Date:         m[schema.FieldDate],
		InvoiceNo:    m[schema.FieldInvoiceNo],
		CustomerName: m[schema.FieldCustomerName],
		State:        m[schema.FieldState],
		TaxableValue: m[schema.FieldTaxableValue],
		IGST:         m[schema.FieldIGST],
		CGST:         m[schema.FieldCGST],
		SGST:         m[schema.FieldSGST],
		TotalAmount:  m[schema.FieldTotalAmount],
		GSTRate:      m[schema.FieldGSTRate],
		ProductName:  m[schema.FieldProductName],
		Quantity:     m[schema.FieldQuantity],
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file: %w", err)
	}
	return nil
}
