// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns dump files on disk into save files. It wraps the
// pure sram conversion with file reading, the size-mismatch policy, atomic
// output writes and per-file status lines.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/pdiddy/sram-convert/internal/sram"
	"github.com/pdiddy/sram-convert/pkg/types"
)

// Confirmer decides whether a dump with an unexpected size is converted
// anyway. The CLI asks on the terminal; unattended callers pass a fixed
// answer.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

var (
	// AlwaysConfirm accepts every size mismatch.
	AlwaysConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return true, nil })

	// NeverConfirm rejects every size mismatch.
	NeverConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return false, nil })
)

// Recorder receives the outcome of every conversion attempt.
type Recorder interface {
	Record(ctx context.Context, result types.ConversionResult) error
}

// Options controls ConvertFile and ConvertBatch.
type Options struct {
	types.ConversionConfig

	// Markers is the detection table. Nil means sram.DefaultMarkers.
	Markers sram.MarkerTable

	// Confirmer is consulted on a size mismatch when Force is not set.
	// Nil fails closed.
	Confirmer Confirmer

	// Recorder, when set, is handed every result. Recording errors are
	// logged and never fail the conversion.
	Recorder Recorder

	Logger *zerolog.Logger
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Request names one dump to convert. An empty Output derives the save path
// from Input.
type Request struct {
	Input  string
	Output string
}

// OutputPath returns the explicit output, or Input with its extension
// replaced by ext.
func (r Request) OutputPath(ext string) string {
	if r.Output != "" {
		return r.Output
	}
	return sram.DeriveOutputName(r.Input, ext)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Declined  int
	Failed    int
	Results   []types.ConversionResult
}

// Total returns the total number of dumps processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Declined + r.Failed
}

// HasFailures reports whether any dump failed or was declined.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Declined > 0
}

// ConvertFile reads the dump at req.Input, converts it and writes the save
// file. The output is created only after extraction succeeds and is written
// through a temporary file and rename, so a failed run leaves nothing
// behind. One status line is written to w. The returned result carries the
// status even when err is non-nil.
func ConvertFile(ctx context.Context, req Request, opts Options, w io.Writer) (types.ConversionResult, error) {
	log := opts.logger().With().Str("input", req.Input).Logger()
	result := types.ConversionResult{Input: req.Input}

	if err := ctx.Err(); err != nil {
		return finish(ctx, opts, result, err, w)
	}

	data, err := os.ReadFile(req.Input)
	if err != nil {
		return finish(ctx, opts, result, fmt.Errorf("%w: %w", sram.ErrFileNotFound, err), w)
	}
	log.Debug().Int("size", len(data)).Msg("read dump")

	force := opts.Force
	if size := sram.ValidateSize(data); !size.Exact() && !force {
		log.Warn().Int("size", size.Actual).Int("want", sram.DumpSize).Msg("unexpected dump size")
		confirmer := opts.Confirmer
		if confirmer == nil {
			confirmer = NeverConfirm
		}
		prompt := fmt.Sprintf("%s is %d bytes, expected %d (128 KB). This may not be a DreamDumper64 SRAM dump. Continue anyway?",
			req.Input, size.Actual, sram.DumpSize)
		ok, err := confirmer.Confirm(prompt)
		if err != nil {
			result.InputSize = size.Actual
			result.SizeCheck = size.Check()
			return finish(ctx, opts, result, fmt.Errorf("confirming size mismatch: %w", err), w)
		}
		force = ok
	}

	converted, err := sram.Convert(data, sram.Options{Force: force, Markers: opts.Markers})
	converted.Input = req.Input
	if err != nil {
		return finish(ctx, opts, converted, err, w)
	}
	result = converted

	ext := opts.OutputExt
	if ext == "" {
		ext = types.DefaultOutputExt
	}
	out := req.OutputPath(ext)
	result.Output = out

	if sameFile(req.Input, out) {
		return finish(ctx, opts, result, fmt.Errorf("%w: output %s would overwrite the input dump", sram.ErrWriteFailure, out), w)
	}

	if opts.SkipExisting {
		if _, err := os.Stat(out); err == nil {
			result.Status = types.ConversionSkipped
			return finish(ctx, opts, result, nil, w)
		}
	}

	if err := writeAtomic(out, result.Region); err != nil {
		return finish(ctx, opts, result, err, w)
	}
	log.Debug().Str("output", out).Float64("fill_ratio", result.FillRatio).Str("game", result.Game).Msg("wrote save")

	return finish(ctx, opts, result, nil, w)
}

// finish sets the final status, prints the status line and hands the result
// to the recorder.
func finish(ctx context.Context, opts Options, result types.ConversionResult, err error, w io.Writer) (types.ConversionResult, error) {
	if result.ConvertedAt.IsZero() {
		result.ConvertedAt = time.Now().UTC()
	}

	switch {
	case err == nil && result.Status == types.ConversionSkipped:
		fmt.Fprintf(w, "skipped:   %s (%s already exists)\n", result.Input, result.Output)
	case err == nil:
		result.Status = types.ConversionDone
		if result.Game != "" {
			fmt.Fprintf(w, "converted: %s -> %s (%s)\n", result.Input, result.Output, result.Game)
		} else {
			fmt.Fprintf(w, "converted: %s -> %s\n", result.Input, result.Output)
		}
	case errors.Is(err, sram.ErrSizeMismatch):
		result.Status = types.ConversionDeclined
		result.Region = nil
		result.Error = err.Error()
		fmt.Fprintf(w, "declined:  %s (%v)\n", result.Input, err)
	default:
		result.Status = types.ConversionFailed
		result.Region = nil
		result.Error = err.Error()
		fmt.Fprintf(w, "failed:    %s (%v)\n", result.Input, err)
	}

	if opts.Recorder != nil {
		if recErr := opts.Recorder.Record(context.WithoutCancel(ctx), result); recErr != nil {
			opts.logger().Error().Err(recErr).Str("input", result.Input).Msg("recording conversion")
		}
	}
	return result, err
}

// ConvertBatch converts each request in order, printing per-file status to
// w followed by a summary. It stops early when ctx is cancelled.
func ConvertBatch(ctx context.Context, reqs []Request, opts Options, w io.Writer) BatchResult {
	var batch BatchResult
	for _, req := range reqs {
		if ctx.Err() != nil {
			break
		}
		result, _ := ConvertFile(ctx, req, opts, w)
		batch.Results = append(batch.Results, result)
		switch result.Status {
		case types.ConversionDone:
			batch.Converted++
		case types.ConversionSkipped:
			batch.Skipped++
		case types.ConversionDeclined:
			batch.Declined++
		default:
			batch.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d declined, %d failed (total: %d)\n",
		batch.Converted, batch.Skipped, batch.Declined, batch.Failed, batch.Total())
	return batch
}

// ConvertPaths builds requests with derived output names and delegates to
// ConvertBatch.
func ConvertPaths(ctx context.Context, paths []string, opts Options, w io.Writer) BatchResult {
	reqs := make([]Request, len(paths))
	for i, p := range paths {
		reqs[i] = Request{Input: p}
	}
	return ConvertBatch(ctx, reqs, opts, w)
}

// writeAtomic writes data to a temporary file and renames it over path, so
// readers never see a partial save.
func writeAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", sram.ErrWriteFailure, path, err)
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
