package config

import (
	"strings"
	"testing"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
)

func validConfiguration() *Configuration {
	return &Configuration{
		Output: OutputConfig{Format: constants.OutputFormatPretty},
		Engine: EngineConfig{
			CurrencyScale:       2,
			RoundingMode:        constants.RoundingHalfUp,
			DaysInYear:          365,
			DefaultLocale:       "en",
			DefaultDateFormat:   "yyyy-MM-dd",
			DisbursementCharges: constants.DisbursementChargesDeduct,
		},
		Charges: []ChargeConfig{
			{ID: 3, Name: "Processing fee", ChargeTimeType: 1, ChargeCalculationType: 2},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Configuration)
		wantError string
	}{
		{
			name:   "Valid configuration",
			mutate: func(c *Configuration) {},
		},
		{
			name:      "Unknown output format",
			mutate:    func(c *Configuration) { c.Output.Format = "xml" },
			wantError: "output",
		},
		{
			name:      "Unknown rounding mode",
			mutate:    func(c *Configuration) { c.Engine.RoundingMode = "ceiling" },
			wantError: "rounding mode",
		},
		{
			name:      "Negative currency scale",
			mutate:    func(c *Configuration) { c.Engine.CurrencyScale = -1 },
			wantError: "currency scale",
		},
		{
			name:      "Negative daysInYear",
			mutate:    func(c *Configuration) { c.Engine.DaysInYear = -5 },
			wantError: "daysInYear",
		},
		{
			name:      "Unknown disbursement charge mode",
			mutate:    func(c *Configuration) { c.Engine.DisbursementCharges = "later" },
			wantError: "disbursement charge mode",
		},
		{
			name:      "Unsupported charge time type",
			mutate:    func(c *Configuration) { c.Charges[0].ChargeTimeType = 5 },
			wantError: "chargeTimeType",
		},
		{
			name:      "Unsupported charge calculation type",
			mutate:    func(c *Configuration) { c.Charges[0].ChargeCalculationType = 9 },
			wantError: "chargeCalculationType",
		},
		{
			name: "Duplicate charge id",
			mutate: func(c *Configuration) {
				c.Charges = append(c.Charges, ChargeConfig{ID: 3, ChargeTimeType: 8, ChargeCalculationType: 1})
			},
			wantError: "duplicate",
		},
		{
			name:      "Charge without id",
			mutate:    func(c *Configuration) { c.Charges[0].ID = 0 },
			wantError: "id must be greater than zero",
		},
		{
			name:      "Negative cache ttl",
			mutate:    func(c *Configuration) { c.Server.Cache.TTL = -1 },
			wantError: "ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfiguration()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantError)
			}
		})
	}
}

func TestToLoansOptions(t *testing.T) {
	engine := EngineConfig{CurrencyScale: 3, RoundingMode: constants.RoundingHalfEven, DaysInYear: 360}

	opts, err := engine.ToLoansOptions()
	if err != nil {
		t.Fatalf("ToLoansOptions() error = %v", err)
	}
	if opts.Rounder.Scale != 3 || opts.Rounder.Mode != constants.RoundingHalfEven {
		t.Errorf("Unexpected rounder %+v", opts.Rounder)
	}
	if opts.DaysInYear != 360 {
		t.Errorf("Expected daysInYear 360, got %d", opts.DaysInYear)
	}
	if opts.DisbursementCharges != constants.DisbursementChargesDeduct {
		t.Errorf("Expected empty disbursement mode to default to deduct, got %s", opts.DisbursementCharges)
	}
}

func TestCatalog(t *testing.T) {
	c := validConfiguration()
	c.Charges = append(c.Charges, ChargeConfig{ID: 7, Name: "Service fee", ChargeTimeType: 8, ChargeCalculationType: 4})

	catalog, err := c.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("Expected 2 catalog entries, got %d", len(catalog))
	}

	processing := catalog[3]
	if processing.TimeType != loans.ChargeAtDisbursement || processing.CalculationType != loans.ChargePercentOfAmount {
		t.Errorf("Unexpected processing fee definition %+v", processing)
	}
	service := catalog[7]
	if service.TimeType != loans.ChargeInstallmentFee || service.CalculationType != loans.ChargePercentOfInterest {
		t.Errorf("Unexpected service fee definition %+v", service)
	}

	empty := &Configuration{}
	catalog, err = empty.Catalog()
	if err != nil || catalog != nil {
		t.Errorf("Expected nil catalog without charges, got %v, %v", catalog, err)
	}
}

func TestCalculatorOptions(t *testing.T) {
	config, err := LoadConfiguration("testdata/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	opts, err := config.CalculatorOptions()
	if err != nil {
		t.Fatalf("CalculatorOptions() error = %v", err)
	}
	if opts.DefaultLocale != "fr" || opts.DefaultDateFormat != "dd/MM/yyyy" {
		t.Errorf("Unexpected request defaults %s %s", opts.DefaultLocale, opts.DefaultDateFormat)
	}
	if opts.Engine.DisbursementCharges != constants.DisbursementChargesFirstPeriod {
		t.Errorf("Expected firstPeriod disbursement mode, got %s", opts.Engine.DisbursementCharges)
	}
	if opts.Engine.DaysInYear != 360 {
		t.Errorf("Expected daysInYear 360, got %d", opts.Engine.DaysInYear)
	}
	if len(opts.Catalog) != 2 {
		t.Errorf("Expected 2 catalog entries, got %d", len(opts.Catalog))
	}

	c := validConfiguration()
	c.Engine.RoundingMode = "up"
	if _, err := c.CalculatorOptions(); err == nil {
		t.Errorf("CalculatorOptions() expected error for bad rounding mode")
	}
}
