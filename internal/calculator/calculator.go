// Package calculator runs the loan schedule pipeline: unsupported-parameter
// gate, field normalization, validation, tax resolution, amortization and
// charge apportionment.
package calculator

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/params"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"go.uber.org/zap"
)

// Options configures a Calculator.
type Options struct {
	Engine            loans.Options
	DefaultLocale     string
	DefaultDateFormat string
	Catalog           loans.ChargeCatalog
}

// DefaultOptions returns the engine defaults with an empty charge catalog.
func DefaultOptions() Options {
	return Options{
		Engine:            loans.DefaultOptions(),
		DefaultLocale:     constants.DefaultLocale,
		DefaultDateFormat: constants.DefaultDateFormat,
	}
}

// Calculator is stateless between calls and safe for concurrent use.
type Calculator struct {
	logger            *zap.Logger
	defaultLocale     string
	defaultDateFormat string
	validator         *validation.Validator
	generator         *loans.AmortizationScheduleGenerator
}

// New builds a Calculator.
func New(logger *zap.Logger, opts Options) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = constants.DefaultLocale
	}
	if opts.DefaultDateFormat == "" {
		opts.DefaultDateFormat = constants.DefaultDateFormat
	}
	generator := loans.NewAmortizationScheduleGenerator(logger, opts.Engine)
	return &Calculator{
		logger:            logger,
		defaultLocale:     opts.DefaultLocale,
		defaultDateFormat: opts.DefaultDateFormat,
		validator:         validation.NewValidator(opts.Catalog, generator.Options().Rounder),
		generator:         generator,
	}
}

// CalculateSchedule computes a repayment schedule from a request bag.
//
// Errors wrap apierrors.ErrMalformedInput for unreadable or unknown
// parameters, apierrors.ErrValidationFailed for rule violations (all of
// them, in rule order) and apierrors.ErrInternalInvariant for defects.
func (c *Calculator) CalculateSchedule(bag params.Bag) (*loans.Schedule, error) {
	const op = "calculator.CalculateSchedule"

	if err := params.CheckSupported("", bag, params.ScheduleParameters); err != nil {
		c.logger.Debug("rejected unsupported parameters", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	p, err := params.ParserForBag(bag, c.defaultLocale, c.defaultDateFormat)
	if err != nil {
		return nil, err
	}
	c.logger.Debug(fmt.Sprintf("reading request with locale %s and date format %q", p.Locale(), p.DateFormat()),
		zap.String("op", op),
	)
	fields, err := params.NormalizeSchedule(bag, p)
	if err != nil {
		return nil, err
	}
	req, err := c.validator.ValidateSchedule(fields)
	if err != nil {
		c.logger.Debug(fmt.Sprintf("request failed %d validation rule(s)", len(apierrors.FieldErrors(err))),
			zap.String("op", op),
		)
		return nil, err
	}

	taxes := loans.ResolveAdjustedPrincipal(req.Principal, req.Taxes, c.generator.Options().Rounder)
	if !taxes.TotalTax.IsZero() {
		c.logger.Debug(fmt.Sprintf("capitalizing %s of taxes into principal %s", taxes.TotalTax, taxes.RequestedPrincipal),
			zap.String("op", op),
		)
	}

	schedule, err := c.generator.GenerateSchedule(req.WithPrincipal(taxes.AdjustedPrincipal))
	if err != nil {
		c.logger.Error("schedule generation failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	schedule, err = c.generator.Apportion(schedule, taxes, req.Charges)
	if err != nil {
		c.logger.Error("charge apportionment failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}

	c.logger.Debug(fmt.Sprintf("computed %d periods, total repayment %s", len(schedule.Periods), schedule.Totals.Repayment),
		zap.String("op", op),
	)
	return schedule, nil
}

// CalculateTax resolves the tax-adjusted principal without building a
// schedule.
func (c *Calculator) CalculateTax(bag params.Bag) (*loans.TaxResolution, error) {
	const op = "calculator.CalculateTax"

	if err := params.CheckSupported("", bag, params.TaxParameters); err != nil {
		c.logger.Debug("rejected unsupported parameters", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	p, err := params.ParserForBag(bag, c.defaultLocale, c.defaultDateFormat)
	if err != nil {
		return nil, err
	}
	c.logger.Debug(fmt.Sprintf("reading request with locale %s", p.Locale()), zap.String("op", op))
	fields, err := params.NormalizeTax(bag, p)
	if err != nil {
		return nil, err
	}
	req, err := c.validator.ValidateTax(fields)
	if err != nil {
		return nil, err
	}

	res := loans.ResolveAdjustedPrincipal(req.Principal, req.Taxes, c.generator.Options().Rounder)
	c.logger.Debug(fmt.Sprintf("adjusted principal %s from %s", res.AdjustedPrincipal, res.RequestedPrincipal),
		zap.String("op", op),
	)
	return &res, nil
}

// Calculate dispatches on mode (schedule or tax).
func (c *Calculator) Calculate(mode string, bag params.Bag) (interface{}, error) {
	switch mode {
	case constants.ModeSchedule:
		return c.CalculateSchedule(bag)
	case constants.ModeTax:
		return c.CalculateTax(bag)
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}
