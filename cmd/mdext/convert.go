package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alnah/go-mdext"
	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/fileutil"
	"github.com/alnah/go-mdext/internal/yamlutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrReadInput        = errors.New("failed to read input")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrInvalidSetting   = errors.New("invalid --set value")
	ErrConversionFailed = errors.New("conversion failed")
)

// stdioPath stands for stdin as input and stdout as output.
const stdioPath = "-"

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positional []string, flags *convertFlags, env *Environment, logger *slog.Logger) error {
	warnUnknownEnvVars(env.Stderr, env.Environ())
	applyEnvConfig(loadEnvConfig(env), &flags.common, &flags.output, &flags.workers)

	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if len(positional) == 0 {
		return ErrNoInput
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(positional))
	}
	input := positional[0]

	cfg, err := buildConfig(flags.common)
	if err != nil {
		return err
	}
	opts := engineOptions(cfg, flags, logger)

	if input == stdioPath {
		return convertStdin(ctx, env, flags.output, opts)
	}

	files, err := discoverFiles(input, flags.output)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, input)
	}
	if flags.output == stdioPath && len(files) > 1 {
		return fmt.Errorf("%w: output to stdout needs a single input file", ErrUsage)
	}

	poolSize := min(mdext.ResolvePoolSize(flags.workers), len(files))
	pool, err := mdext.NewEnginePool(poolSize, opts...)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Debug("converting", slog.Int("files", len(files)), slog.Int("workers", poolSize))
	results := convertBatch(ctx, &poolAdapter{pool: pool}, files, env.Stdout, logger)
	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return results[0].Err
	}
	return fmt.Errorf("%w: %d of %d files", ErrConversionFailed, failed, len(results))
}

// engineOptions turns the loaded config and convert flags into engine options.
func engineOptions(cfg *config.Registry, flags *convertFlags, logger *slog.Logger) []mdext.Option {
	opts := []mdext.Option{mdext.WithConfig(cfg), mdext.WithLogger(logger)}
	if len(flags.skip) > 0 {
		opts = append(opts, mdext.WithSkipFilters(flags.skip...))
	}
	if flags.metadataOnly {
		opts = append(opts, mdext.WithSpecialGamut("filter:MetaData:extract"))
	}
	if flags.noHighlight {
		opts = append(opts, mdext.WithSetting(config.KeyHighlightCode, false))
	}
	return opts
}

// buildConfig loads the config file named by the flags, then applies each
// --set override as a one-line YAML document, so "+key=value" merges.
func buildConfig(common commonFlags) (*config.Registry, error) {
	cfg := config.Default()
	if common.config != "" {
		loaded, err := config.Load(common.config)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	for _, kv := range common.sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q (want key=value)", ErrInvalidSetting, kv)
		}
		if err := cfg.LoadBytes([]byte(strings.TrimSpace(key) + ": " + value)); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSetting, kv, err)
		}
	}
	return cfg, nil
}

// convertStdin parses stdin and writes the body to output, or stdout.
func convertStdin(ctx context.Context, env *Environment, output string, opts []mdext.Option) error {
	source, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
	}
	engine, err := mdext.NewEngine(opts...)
	if err != nil {
		return err
	}
	content, err := engine.ParseString(ctx, string(source))
	if err != nil {
		return err
	}

	if output == "" || output == stdioPath {
		if _, err := io.WriteString(env.Stdout, content.Body()); err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
		}
		return nil
	}
	return writeOutput(output, content.Body())
}

// writeOutput writes body to path, creating parent directories.
func writeOutput(path, body string) error {
	// HTML files are meant to be readable.
	if err := fileutil.WriteFileAtomic(path, []byte(body), filePermissions, dirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// runConfigCommand prints the effective configuration.
func runConfigCommand(args []string, env *Environment) error {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if flags.help {
		printConfigUsage(env.Stdout)
		return nil
	}
	applyEnvConfig(loadEnvConfig(env), &flags.common, nil, nil)

	cfg, err := buildConfig(flags.common)
	if err != nil {
		return err
	}
	data, err := yamlutil.MarshalOrdered(cfg.Ordered())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if _, err := env.Stdout.Write(data); err != nil {
		return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
	}
	return nil
}
