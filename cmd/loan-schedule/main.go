package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/loan-schedule/internal/calculator"
	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/logging"
	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"github.com/iwvelando/loan-schedule/pkg/params"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"go.uber.org/zap"
)

// loadConfiguration falls back to defaults only when the default config file
// is absent; an explicitly named file must exist.
func loadConfiguration(path string) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(path)
	if err == nil {
		return conf, nil
	}
	if path == constants.DefaultConfigFile {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default()
		}
	}
	return nil, err
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	requestLocation := flag.String("request", "", "path to the request parameters (YAML or JSON)")
	mode := flag.String("mode", constants.ModeSchedule, "operation: schedule, tax")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := loadConfiguration(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(2)
	}

	logger, err := logging.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(2)
	}

	code := run(logger, conf, *requestLocation, *mode, *outputFormatFlag)
	_ = logger.Sync()
	os.Exit(code)
}

// run performs one calculation and returns the process exit code: 0 on
// success, 1 when the request was rejected, 2 for setup or internal errors.
func run(logger *zap.Logger, conf *config.Configuration, requestLocation, mode, outputFormatFlag string) int {
	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if outputFormatFlag != "" {
		outputFormat = outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	conf.Output.Format = outputFormat

	if err := conf.Validate(); err != nil {
		logger.Error("invalid configuration", zap.String("op", "main"), zap.Error(err))
		return 2
	}
	if err := validation.ValidateMode(mode); err != nil {
		logger.Error(err.Error(), zap.String("op", "main"))
		return 2
	}
	if requestLocation == "" {
		logger.Error("no request file given, use -request", zap.String("op", "main"))
		return 2
	}

	opts, err := conf.CalculatorOptions()
	if err != nil {
		logger.Error("invalid engine configuration", zap.String("op", "main"), zap.Error(err))
		return 2
	}
	calc := calculator.New(logger, opts)

	data, err := os.ReadFile(requestLocation)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to read request at %s", requestLocation),
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 2
	}

	stderr := output.NewWriter(os.Stderr, opts.Engine.Rounder.Scale)
	bag, err := params.DecodeYAML(data)
	if err != nil {
		stderr.Errors(err)
		return 1
	}

	result, err := calc.Calculate(mode, bag)
	if err != nil {
		stderr.Errors(err)
		if apierrors.IsClientError(err) {
			return 1
		}
		return 2
	}

	if err := output.NewWriter(os.Stdout, opts.Engine.Rounder.Scale).Write(outputFormat, result); err != nil {
		logger.Error("failed to write result", zap.String("op", "main"), zap.Error(err))
		return 2
	}
	return 0
}
