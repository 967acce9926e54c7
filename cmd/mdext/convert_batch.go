package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-mdext"
	"github.com/alnah/go-mdext/internal/logfields"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ErrEngineInit is reported for files left over when no engine is available.
var ErrEngineInit = errors.New("failed to initialize parsing engine")

// Parser is the part of the engine the batch needs.
type Parser interface {
	ParseString(ctx context.Context, source string) (*mdext.Content, error)
}

// Compile-time interface implementation check.
var _ Parser = (*mdext.Engine)(nil)

// Pool abstracts engine pool operations for testability.
type Pool interface {
	Acquire() Parser
	Release(Parser)
	Size() int
}

// poolAdapter exposes an *mdext.EnginePool as a Pool.
type poolAdapter struct {
	pool *mdext.EnginePool
}

func (a *poolAdapter) Acquire() Parser {
	engine := a.pool.Acquire()
	if engine == nil {
		return nil
	}
	return engine
}

func (a *poolAdapter) Release(p Parser) {
	engine, ok := p.(*mdext.Engine)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected parser type %T", p))
	}
	a.pool.Release(engine)
}

func (a *poolAdapter) Size() int { return a.pool.Size() }

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently using the engine pool. A file
// whose output path is "-" is written to stdout.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, stdout io.Writer, logger *slog.Logger) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	concurrency := min(pool.Size(), len(files))
	results := make([]ConversionResult, len(files))
	done := make(chan struct{})
	jobs := make(chan int, len(files))

	for w := range concurrency {
		go func() {
			defer func() { done <- struct{}{} }()

			parser := pool.Acquire()
			if parser == nil {
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ErrEngineInit,
					}
				}
				return
			}
			defer pool.Release(parser)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, parser, files[idx], stdout)
				logger.Debug("converted",
					logfields.Worker(w),
					logfields.Document(files[idx].InputPath),
					logfields.DurationMS(float64(results[idx].Duration.Microseconds())/1000))
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	for range concurrency {
		<-done
	}
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, parser Parser, f FileToConvert, stdout io.Writer) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	finish := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	source, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return finish(fmt.Errorf("%w: %v", ErrReadInput, err))
	}

	content, err := parser.ParseString(ctx, string(source))
	if err != nil {
		return finish(err)
	}

	if f.OutputPath == stdioPath {
		if _, err := io.WriteString(stdout, content.Body()); err != nil {
			return finish(fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err))
		}
		return finish(nil)
	}
	return finish(writeOutput(f.OutputPath, content.Body()))
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults reports each result on stderr, keeping stdout free for
// converted documents. It returns the number of failures.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}
		if quiet || r.OutputPath == stdioPath {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stderr, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stderr, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stderr, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
