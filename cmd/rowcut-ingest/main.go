// Command rowcut-ingest drives a RowParser over a file or stdin and
// reports throughput. It is an ambient CLI front end, not part of the
// core described in spec.md — a demonstration of both InputCursor
// backends and the optional compressed-input transforms.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/schollz/progressbar/v3"

	"github.com/Doomsbay/rowcut"
	"github.com/Doomsbay/rowcut/internal/cpufeature"
)

func main() {
	var (
		delimiter = flag.String("delimiter", ",", "field delimiter")
		quote     = flag.String("quote", `"`, "quote character")
		lz4Flag   = flag.Bool("lz4", false, "input is lz4-compressed")
		gzipFlag  = flag.Bool("gzip", false, "input is gzip-compressed")
		dump      = flag.Bool("dump", false, "write decoded CSV to stdout instead of just counting")
		quiet     = flag.Bool("quiet", false, "suppress the progress bar")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	log.Info("cpu features", "detected", cpufeature.Detect())

	if err := run(log, flag.Arg(0), *delimiter, *quote, *lz4Flag, *gzipFlag, *dump, *quiet); err != nil {
		log.Error("ingest failed", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, path, delimiter, quote string, useLZ4, useGzip, dump, quiet bool) error {
	opts := []rowcut.Option{
		rowcut.WithDelimiter(delimiter[0]),
		rowcut.WithQuote(quote[0]),
		rowcut.WithYieldIncompleteRow(true),
	}

	parser, size, closeFile, err := openParser(path, useLZ4, useGzip, opts)
	if err != nil {
		return err
	}
	defer parser.Close()
	defer closeFile()

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = newProgressBar(size)
	}

	var writer *rowcut.Writer
	if dump {
		writer = rowcut.NewWriter(os.Stdout)
		defer writer.Flush()
	}

	start := time.Now()
	var rows, cells int64
	var lastConsumed int64
	for parser.ReadRow() {
		row := parser.Row()
		rows++
		cells += int64(row.Len())
		if writer != nil {
			if err := writer.WriteRow(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
		if bar != nil {
			consumed := parser.BytesConsumed()
			_ = bar.Add64(consumed - lastConsumed)
			lastConsumed = consumed
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	elapsed := time.Since(start)
	log.Info("ingest complete",
		"rows", rows,
		"cells", cells,
		"bytes", parser.BytesConsumed(),
		"elapsed", elapsed,
		"rows_per_sec", float64(rows)/elapsed.Seconds())
	return nil
}

// openParser opens path (or stdin if path is empty) and wires any
// requested decompression transform ahead of a BufferedCursor. Plain,
// uncompressed regular files use the faster MappedCursor path instead.
// The returned closeFile func releases any *os.File opened along the
// way (the mmap path closes its file itself and returns a no-op).
func openParser(path string, useLZ4, useGzip bool, opts []rowcut.Option) (parser *rowcut.RowParser, size int64, closeFile func(), err error) {
	noop := func() {}
	if path == "" {
		return rowcut.OpenReader(decompress(os.Stdin, useLZ4, useGzip), opts...), 0, noop, nil
	}

	if !useLZ4 && !useGzip {
		if info, statErr := os.Stat(path); statErr == nil && info.Mode().IsRegular() {
			p, openErr := rowcut.Open(path, opts...)
			if openErr == nil {
				return p, info.Size(), noop, nil
			}
			// Fall through to the buffered path (e.g. ErrMmapUnsupported).
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, noop, err
	}
	var fileSize int64
	if info, statErr := f.Stat(); statErr == nil {
		fileSize = info.Size()
	}
	return rowcut.OpenReader(decompress(f, useLZ4, useGzip), opts...), fileSize, func() { f.Close() }, nil
}

// decompress wraps r in an lz4 or pgzip reader per the requested flag.
// At most one of useLZ4/useGzip is expected to be set.
func decompress(r io.Reader, useLZ4, useGzip bool) io.Reader {
	switch {
	case useLZ4:
		return lz4.NewReader(r)
	case useGzip:
		gz, err := pgzip.NewReader(r)
		if err != nil {
			// Surfacing this as a read error keeps decompress's signature
			// simple; the first BufferedCursor.Fill call will observe it
			// and collapse it into end-of-input per the permissive policy.
			return errReader{err}
		}
		return gz
	default:
		return r
	}
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

func newProgressBar(size int64) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(250 * time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
	}
	if size > 0 {
		opts = append(opts, progressbar.OptionSetPredictTime(true))
		return progressbar.NewOptions64(size, opts...)
	}
	opts = append(opts, progressbar.OptionSpinnerType(14))
	return progressbar.NewOptions64(-1, opts...)
}
