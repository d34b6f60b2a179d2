package parser

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidateDelimiters are the separators auto-detection chooses from, in
// tie-break order.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, utf8BOM)
}

// delimiterFor returns the forced delimiter, or one picked from the extension.
func delimiterFor(path string, opt Options) rune {
	if opt.Delimiter != 0 {
		return opt.Delimiter
	}
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ParseDelimiter maps a config value onto a rune; "" means auto.
func ParseDelimiter(s string) rune {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return ','
	case ";", "semicolon":
		return ';'
	case "\t", "tab", `\t`:
		return '\t'
	case "|", "pipe":
		return '|'
	default:
		return 0
	}
}

// DelimiterName renders a delimiter for logs and reports.
func DelimiterName(r rune) string {
	switch r {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	case 0:
		return "auto"
	default:
		return string(r)
	}
}

// sniffDelimiter picks the candidate whose field count is largest on the
// header and most consistent across the first sample lines.
func sniffDelimiter(lines []string) rune {
	const sample = 20
	if len(lines) > sample {
		lines = lines[:sample]
	}
	best, bestScore, bestWidth := ',', -1, 0
	for _, d := range candidateDelimiters {
		sp := lineSplitter{delim: d, quote: true}
		header, err := sp.split(lines[0])
		if err != nil || len(header) < 2 {
			continue
		}
		score := 0
		for _, l := range lines[1:] {
			f, err := sp.split(l)
			if err == nil && len(f) == len(header) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && len(header) > bestWidth) {
			best, bestScore, bestWidth = d, score, len(header)
		}
	}
	return best
}

var errUnterminatedQuote = errors.New("unterminated quoted field")

// lineSplitter tokenizes a single physical line. Quoted fields may contain
// the delimiter and doubled quotes; the escape rune, when set, makes the
// following rune literal.
type lineSplitter struct {
	delim  rune
	quote  bool
	escape rune
}

func (s lineSplitter) split(line string) ([]string, error) {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
		escaped  bool
		atStart  = true
	)
	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case s.escape != 0 && r == s.escape:
			escaped = true
		case s.quote && inQuotes && r == '"':
			if i+1 < len(rs) && rs[i+1] == '"' {
				cur.WriteRune('"')
				i++
			} else {
				inQuotes = false
			}
		case inQuotes:
			cur.WriteRune(r)
		case s.quote && atStart && r == '"':
			inQuotes = true
		case r == s.delim:
			fields = append(fields, cur.String())
			cur.Reset()
			atStart = true
			continue
		default:
			cur.WriteRune(r)
		}
		atStart = false
	}
	if inQuotes {
		return nil, errUnterminatedQuote
	}
	fields = append(fields, cur.String())
	return fields, nil
}

// normalizeLineEndings turns \r\n and lone \r into \n.
func normalizeLineEndings(b []byte) []byte {
	if bytes.IndexByte(b, '\r') < 0 {
		return b
	}
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
}

// physicalLines splits text into lines, dropping blank ones.
func physicalLines(b []byte) []string {
	var out []string
	for _, l := range strings.Split(string(normalizeLineEndings(b)), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
