package config

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/internal/calculator"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/iwvelando/loan-schedule/pkg/validation"
)

// Validate checks the settings that cannot be defaulted and returns the
// first problem found.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if _, err := c.Engine.ToLoansOptions(); err != nil {
		return err
	}
	if _, err := c.Catalog(); err != nil {
		return err
	}
	if c.Server.Cache.TTL < 0 {
		return fmt.Errorf("server.cache.ttl must not be negative, got %d", c.Server.Cache.TTL)
	}
	return nil
}

// ToLoansOptions converts the engine section into generator options.
func (e EngineConfig) ToLoansOptions() (loans.Options, error) {
	rounder, err := mathutil.NewRounder(e.CurrencyScale, e.RoundingMode)
	if err != nil {
		return loans.Options{}, fmt.Errorf("engine: %w", err)
	}
	if e.DaysInYear < 0 {
		return loans.Options{}, fmt.Errorf("engine: daysInYear must not be negative, got %d", e.DaysInYear)
	}

	mode := e.DisbursementCharges
	if mode == "" {
		mode = constants.DisbursementChargesDeduct
	}
	if err := validation.ValidateDisbursementChargeMode(mode); err != nil {
		return loans.Options{}, fmt.Errorf("engine: %w", err)
	}

	return loans.Options{
		Rounder:             rounder,
		DaysInYear:          e.DaysInYear,
		DisbursementCharges: mode,
	}, nil
}

// ToChargeDefinition resolves the configured codes into a catalog entry.
func (c ChargeConfig) ToChargeDefinition() (loans.ChargeDefinition, error) {
	if c.ID <= 0 {
		return loans.ChargeDefinition{}, fmt.Errorf("charge %q: id must be greater than zero, got %d", c.Name, c.ID)
	}
	timeType, ok := loans.ChargeTimeTypeFromCode(c.ChargeTimeType)
	if !ok {
		return loans.ChargeDefinition{}, fmt.Errorf("charge %d: unsupported chargeTimeType %d", c.ID, c.ChargeTimeType)
	}
	calcType, ok := loans.ChargeCalculationTypeFromCode(c.ChargeCalculationType)
	if !ok {
		return loans.ChargeDefinition{}, fmt.Errorf("charge %d: unsupported chargeCalculationType %d", c.ID, c.ChargeCalculationType)
	}
	return loans.ChargeDefinition{
		ID:              c.ID,
		Name:            c.Name,
		TimeType:        timeType,
		CalculationType: calcType,
	}, nil
}

// Catalog builds the charge catalog. Duplicate ids are rejected.
func (c *Configuration) Catalog() (loans.ChargeCatalog, error) {
	if len(c.Charges) == 0 {
		return nil, nil
	}
	catalog := make(loans.ChargeCatalog, len(c.Charges))
	for _, charge := range c.Charges {
		def, err := charge.ToChargeDefinition()
		if err != nil {
			return nil, fmt.Errorf("charges: %w", err)
		}
		if _, dup := catalog[def.ID]; dup {
			return nil, fmt.Errorf("charges: duplicate charge id %d", def.ID)
		}
		catalog[def.ID] = def
	}
	return catalog, nil
}

// CalculatorOptions assembles everything the calculator pipeline needs.
func (c *Configuration) CalculatorOptions() (calculator.Options, error) {
	engine, err := c.Engine.ToLoansOptions()
	if err != nil {
		return calculator.Options{}, err
	}
	catalog, err := c.Catalog()
	if err != nil {
		return calculator.Options{}, err
	}
	return calculator.Options{
		Engine:            engine,
		DefaultLocale:     c.Engine.DefaultLocale,
		DefaultDateFormat: c.Engine.DefaultDateFormat,
		Catalog:           catalog,
	}, nil
}
