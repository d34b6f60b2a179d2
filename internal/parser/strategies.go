package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// standardStrategy is a strict RFC 4180 read. Short rows are padded, rows
// wider than the header are an error. Bare \r line endings count as breaks.
type standardStrategy struct{}

func (standardStrategy) Name() string { return "standard" }

func (standardStrategy) Parse(src Source, opt Options) (*Records, error) {
	delim := delimiterFor(src.Path, opt)
	r := csv.NewReader(bytes.NewReader(normalizeLineEndings(stripBOM(src.Data))))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoColumns
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	out := &Records{Header: header, Delimiter: delim}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(rec))
		}
		out.Rows = append(out.Rows, rec)
	}
	return out, nil
}

// skipBadLinesStrategy tolerates malformed lines by dropping them.
type skipBadLinesStrategy struct{}

func (skipBadLinesStrategy) Name() string { return "skip-bad-lines" }

func (skipBadLinesStrategy) Parse(src Source, opt Options) (*Records, error) {
	delim := delimiterFor(src.Path, opt)
	return permissiveParse(stripBOM(src.Data), lineSplitter{delim: delim, quote: true, escape: '\\'}, false)
}

// pythonStyleStrategy decodes the input as UTF-8 (dropping a BOM and
// replacing invalid bytes), ignores quoting and honours backslash escapes.
type pythonStyleStrategy struct{}

func (pythonStyleStrategy) Name() string { return "python-style" }

func (pythonStyleStrategy) Parse(src Source, opt Options) (*Records, error) {
	dec := transform.NewReader(bytes.NewReader(src.Data), unicode.UTF8BOM.NewDecoder())
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode utf-8: %w", err)
	}
	delim := delimiterFor(src.Path, opt)
	return permissiveParse(data, lineSplitter{delim: delim, escape: '\\'}, false)
}

// autoDetectStrategy sniffs the delimiter from the content itself. It is the
// last resort: a readable header with no usable data line still loads as an
// empty table.
type autoDetectStrategy struct{}

func (autoDetectStrategy) Name() string { return "auto-detect" }

func (autoDetectStrategy) Parse(src Source, _ Options) (*Records, error) {
	data := stripBOM(src.Data)
	lines := physicalLines(data)
	if len(lines) == 0 {
		return nil, ErrNoColumns
	}
	delim := sniffDelimiter(lines)
	return permissiveParse(data, lineSplitter{delim: delim, quote: true}, true)
}

// permissiveParse reads line by line, skipping lines that fail to tokenize or
// carry more fields than the header. Unless keepEmpty is set it fails when
// every data line was dropped.
func permissiveParse(data []byte, sp lineSplitter, keepEmpty bool) (*Records, error) {
	lines := physicalLines(data)
	if len(lines) == 0 {
		return nil, ErrNoColumns
	}
	header, err := sp.split(lines[0])
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	out := &Records{Header: header, Delimiter: sp.delim}
	for _, l := range lines[1:] {
		f, err := sp.split(l)
		if err != nil || len(f) > len(header) {
			out.Skipped++
			continue
		}
		out.Rows = append(out.Rows, f)
	}
	if len(out.Rows) == 0 && out.Skipped > 0 && !keepEmpty {
		return nil, fmt.Errorf("all %d data lines malformed", out.Skipped)
	}
	return out, nil
}
