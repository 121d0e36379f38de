// Package cmd provides the Cobra CLI command structure for pwcombo.
//
// This package defines the root command and all CLI flags for the password
// combination generator. It handles flag and config parsing, logging setup,
// signal handling, the size guard, generation and output.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/otuschhoff/pwcombo"
	"github.com/otuschhoff/pwcombo/pkg/config"
	"github.com/otuschhoff/pwcombo/pkg/output"
	"github.com/otuschhoff/pwcombo/pkg/stat"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// version is set at build time with -ldflags "-X .../cmd.version=1.2.3".
var version = ""

var (
	// Input options
	password   string
	configFile string

	// Output options
	outputFile    string
	summaryFormat string
	noHeader      bool
	maxResultsStr string

	// Logging options
	verbose bool
	logFile string

	// Resolved per run in PersistentPreRunE
	cfg       config.Config
	logger    = zap.NewNop()
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands.
// It expands a password into all case variants and their permutations and
// writes the sorted, deduplicated result to a file.
var rootCmd = &cobra.Command{
	Use:   "pwcombo --password PASSWORD",
	Short: "Generate password case combinations and permutations",
	Long: `pwcombo toggles the case of every letter of a password independently,
permutes the characters of each case variant, and writes the deduplicated
result to a file, sorted, one password per line.

The result grows as 2^letters * n!, so inputs whose estimated result exceeds
--max-results are refused before any work is done.

Examples:
  pwcombo --password ab1
  pwcombo --password Secret1 --output_file combos.txt --summary table
  pwcombo --password abcdefghijk --max-results 0
  pwcombo --config pwcombo.yaml --password ab1 -v`,
	Args:              cobra.NoArgs,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runGenerate,
}

// init sets up all CLI flags for the root command.
// Flags are organized into three groups: input options, output options, and logging options.
func init() {
	rootCmd.Version = resolveVersion()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Input flags
	rootCmd.Flags().StringVar(&password, "password", "",
		"Password to generate combinations and permutations for")
	rootCmd.Flags().StringVar(&configFile, "config", "",
		"YAML config file (flags override its values)")
	_ = rootCmd.MarkFlagRequired("password")

	// Output flags
	rootCmd.Flags().StringVarP(&outputFile, "output_file", "o", config.DefaultOutputFile,
		"Output file for generated passwords")
	rootCmd.Flags().StringVar(&summaryFormat, "summary", output.FormatText,
		"Summary format: text, table, json")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false,
		"Hide the summary table header")
	rootCmd.Flags().StringVar(&maxResultsStr, "max-results", "10M",
		"Refuse passwords whose estimated result exceeds this count (e.g., 500, 10K, 2M; 0 disables)")

	// Logging flags
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.Flags().StringVar(&logFile, "logfile", config.DefaultLogFile,
		"Log file path")
}

// Execute adds all child commands to the root command and executes it.
func Execute() error {
	return rootCmd.Execute()
}

// setup resolves the configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = loadConfig(cmd)
	if err != nil {
		return err
	}

	l, closer, err := newLogger(cfg.LogFile, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger, logCloser = l, closer
	return nil
}

// teardown flushes and closes the logger.
func teardown() {
	_ = logger.Sync()
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// loadConfig builds the run configuration from defaults, the optional config
// file, and explicitly set flags, in that order of precedence.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c := config.Default()
	if configFile != "" {
		var err error
		if c, err = config.Load(configFile); err != nil {
			return c, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output_file") {
		c.OutputFile = outputFile
	}
	if flags.Changed("logfile") {
		c.LogFile = logFile
	}
	if flags.Changed("summary") {
		c.Summary = summaryFormat
	}
	if flags.Changed("no-header") {
		c.NoHeader = noHeader
	}
	if flags.Changed("verbose") {
		c.Verbose = verbose
	}
	if flags.Changed("max-results") {
		n, err := parseCount(maxResultsStr)
		if err != nil {
			return c, fmt.Errorf("invalid --max-results: %w", err)
		}
		c.MaxResults = n
	}

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// newLogger builds a zap logger that writes JSON lines to a rotating log file
// and human-readable lines to stderr.
func newLogger(path string, verbose bool) (*zap.Logger, io.Closer, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1, // megabytes
		MaxBackups: 3,
	}
	// Surface an unwritable log path now rather than on the first entry.
	if _, err := rotator.Write(nil); err != nil {
		return nil, nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	)
	return zap.New(core), rotator, nil
}

// runGenerate executes a single generation run, stopping early on SIGINT or
// SIGTERM.
func runGenerate(cmd *cobra.Command, args []string) error {
	defer teardown()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, logger, cfg, password, cmd.OutOrStdout())
}

// run executes one generation and treats cancellation as a clean exit.
func run(ctx context.Context, logger *zap.Logger, c config.Config, pw string, out io.Writer) error {
	err := execute(ctx, logger, c, pw, out)
	if errors.Is(err, context.Canceled) {
		logger.Info("Cancelled by user")
		fmt.Fprintln(out, "Cancelled by user")
		return nil
	}
	return err
}

// execute validates the password, applies the size guard, generates the
// result set, writes it, and prints the summary to out. Stage counts for the
// summary come from pkg/stat so the pipeline runs only through Generate.
func execute(ctx context.Context, logger *zap.Logger, c config.Config, pw string, out io.Writer) error {
	start := time.Now()

	if err := pwcombo.ValidatePassword(pw); err != nil {
		logger.Error("Password cannot be empty")
		return err
	}

	over, estimate := stat.Exceeds(pw, c.MaxResults)
	logger.Debug("Estimated result size", zap.String("estimate", estimate.String()))
	if over {
		logger.Error("Password too long to expand",
			zap.String("estimate", estimate.String()),
			zap.Uint64("maxResults", c.MaxResults))
		return fmt.Errorf("%w: estimated %s passwords exceeds --max-results %d",
			pwcombo.ErrTooLarge, estimate, c.MaxResults)
	}

	variants := stat.VariantCount(pw)
	uniqueVariants := stat.UniqueVariantCount(pw)
	logger.Debug("Generated case combinations",
		zap.String("count", variants.String()),
		zap.String("unique", uniqueVariants.String()))

	passwords, err := pwcombo.Generate(ctx, pw)
	if err != nil {
		return err
	}
	logger.Debug("Generated unique permutations", zap.Int("count", passwords.Len()))

	logger.Info("Saving passwords",
		zap.Int("count", passwords.Len()),
		zap.String("path", c.OutputFile))
	n, err := output.NewWriter(c.WriterConfig()).SaveContext(ctx, passwords, c.OutputFile)
	if errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		if errors.Is(err, output.ErrPermissionDenied) {
			logger.Error("Cannot write to output file", zap.String("path", c.OutputFile), zap.Error(err))
		} else {
			logger.Error("Error writing to output file", zap.String("path", c.OutputFile), zap.Error(err))
		}
		return err
	}
	logger.Info("Successfully wrote passwords", zap.String("path", c.OutputFile))

	results := &stat.Results{
		PasswordLength: len([]rune(pw)),
		Letters:        stat.Analyze(pw).Letters,
		Variants:       int(variants.Int64()),
		UniqueVariants: int(uniqueVariants.Int64()),
		Estimated:      estimate.String(),
		Passwords:      n,
		OutputFile:     c.OutputFile,
		Elapsed:        time.Since(start),
	}
	if fi, err := os.Stat(c.OutputFile); err == nil {
		results.BytesWritten = fi.Size()
	}

	fmt.Fprint(out, output.NewFormatter(c.Summary, c.NoHeader).Format(results))
	return nil
}

// resolveVersion returns the linker-provided version, then the main module
// version from the build info, then "0.0.0".
func resolveVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return strings.TrimPrefix(v, "v")
		}
	}
	return "0.0.0"
}

// parseCount parses count strings with decimal unit multipliers.
// Supported units: K (thousand), M (million), G (billion), T (trillion).
// Examples: "500", "10K", "2.5M"
func parseCount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	multiplier := uint64(1)

	// Find where digits end
	i := 0
	for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
		i++
	}

	numPart := s[:i]
	unitPart := strings.ToUpper(strings.TrimSpace(s[i:]))

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, err
	}

	switch unitPart {
	case "":
		multiplier = 1
	case "K":
		multiplier = 1_000
	case "M":
		multiplier = 1_000_000
	case "G":
		multiplier = 1_000_000_000
	case "T":
		multiplier = 1_000_000_000_000
	default:
		return 0, fmt.Errorf("unknown count unit: %s", unitPart)
	}

	total := num * float64(multiplier)
	// float64(math.MaxUint64) rounds up to 2^64, which is already out of range.
	if total >= float64(math.MaxUint64) {
		return 0, fmt.Errorf("count out of range: %s", s)
	}
	if num != 0 && total < 1 {
		return 0, fmt.Errorf("count rounds to zero: %s (use 0 to disable)", s)
	}
	return uint64(total), nil
}

// isDigit returns true if the byte is a digit (0-9).
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
