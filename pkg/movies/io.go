package movies

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

type Handler func(*Record) error

type Filter func(*Record) bool

// FilterYear keeps records whose title carries exactly the given year.
func FilterYear(year string) Filter {
	return func(r *Record) bool {
		y, ok := r.Year()
		return ok && y == year
	}
}

// Source describes a locations file on disk.
type Source struct {
	Path        string
	HeaderLines int
	// Charset is a WHATWG encoding label such as "utf-8" or "latin1".
	// Empty means UTF-8.
	Charset string
}

// Open returns a reader over the file contents decoded to UTF-8.
func (s Source) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s for reading: %w", s.Path, err)
	}
	if s.Charset == "" || strings.EqualFold(s.Charset, "utf-8") || strings.EqualFold(s.Charset, "utf8") {
		return f, nil
	}
	enc, err := htmlindex.Get(s.Charset)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unsupported charset %q: %w", s.Charset, err)
	}
	return struct {
		io.Reader
		io.Closer
	}{enc.NewDecoder().Reader(f), f}, nil
}

// Process reads records from r and calls the handler for each record
// accepted by all filters.
func Process(r io.Reader, headerLines int, handler Handler, filters ...Filter) error {
	s, err := NewScanner(r, headerLines)
	if err != nil {
		return fmt.Errorf("error reading locations: %w", err)
	}
	for s.Scan() {
		rec := s.Record()
		if wanted := applyFilters(rec, filters); !wanted {
			continue
		}
		if err := handler(rec); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("error parsing locations: %w", err)
	}
	return nil
}

// ProcessFile is Process over the file described by src.
func ProcessFile(src Source, handler Handler, filters ...Filter) error {
	rc, err := src.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := Process(rc, src.HeaderLines, handler, filters...); err != nil {
		return fmt.Errorf("%s: %w", src.Path, err)
	}
	return nil
}

func applyFilters(r *Record, filters []Filter) bool {
	for _, f := range filters {
		if !f(r) {
			return false
		}
	}
	return true
}
