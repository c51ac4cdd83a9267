package movies

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// HeaderLines is the number of preamble lines in a locations.list dump.
const HeaderLines = 14

const maxLineLength = 1 << 20

// Record is one data line of the locations file.
type Record struct {
	Line     int
	Title    string
	Location string
}

// Year returns the release year encoded in the title, if any.
func (r *Record) Year() (string, bool) {
	return YearFromTitle(r.Title)
}

// YearFromTitle returns the four characters following the first " (" in
// title. The second result is false when there is no " (", fewer than four
// characters follow it, or they are not all digits. A disambiguation tag after
// the year, as in "(2014/I)", is ignored.
func YearFromTitle(title string) (string, bool) {
	i := strings.Index(title, " (")
	if i < 0 {
		return "", false
	}
	rest := title[i+2:]
	if len(rest) < 4 {
		return "", false
	}
	year := rest[:4]
	for i := 0; i < len(year); i++ {
		if year[i] < '0' || year[i] > '9' {
			return "", false
		}
	}
	return year, true
}

// StripTitle truncates title at the first " (".
func StripTitle(title string) string {
	if i := strings.Index(title, " ("); i >= 0 {
		return title[:i]
	}
	return title
}

// Scanner reads records from a tab separated locations file. Runs of tabs
// count as a single separator and only the first two columns are kept.
type Scanner struct {
	lines      *bufio.Scanner
	skip       int
	lineNo     int
	nextRecord *Record
	err        error
}

func NewScanner(r io.Reader, headerLines int) (*Scanner, error) {
	br := bufio.NewReader(r)
	if err := skipBOM(br); err != nil {
		return nil, err
	}
	s := bufio.NewScanner(br)
	s.Buffer(make([]byte, 64*1024), maxLineLength)
	return &Scanner{lines: s, skip: headerLines}, nil
}

var BOM = [3]byte{0xef, 0xbb, 0xbf}

func skipBOM(br *bufio.Reader) error {
	xs, err := br.Peek(3)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if xs[0] == BOM[0] && xs[1] == BOM[1] && xs[2] == BOM[2] {
		br.Discard(3)
	}
	return nil
}

// Scan advances to the next well-formed record. Lines without both a title
// and a location are skipped.
func (s *Scanner) Scan() bool {
	for s.lines.Scan() {
		s.lineNo++
		if s.lineNo <= s.skip {
			continue
		}
		if r, ok := parseLine(s.lines.Text()); ok {
			r.Line = s.lineNo
			s.nextRecord = r
			return true
		}
	}
	s.err = s.lines.Err()
	return false
}

func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) Record() *Record {
	return s.nextRecord
}

func parseLine(line string) (*Record, bool) {
	line = strings.TrimSpace(line)
	xs := strings.FieldsFunc(line, func(r rune) bool { return r == '\t' })
	if len(xs) < 2 {
		return nil, false
	}
	return &Record{Title: xs[0], Location: xs[1]}, true
}
