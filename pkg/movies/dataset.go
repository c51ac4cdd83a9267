package movies

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/oliuba/web-map/pkg/geo"
)

// Location is a filming location of one title in the requested year.
type Location struct {
	Title       string
	Location    string
	Year        string
	Country     string
	Coordinates geo.Coordinates
}

// Geocoder resolves a place name. The second result is false when the place
// could not be resolved for any reason.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (geo.Coordinates, bool)
}

// Country returns the most general part of a comma separated location.
func Country(location string) string {
	if i := strings.LastIndex(location, ", "); i >= 0 {
		return location[i+2:]
	}
	return location
}

// LoadFile builds the dataset for year from the file described by src.
func LoadFile(ctx context.Context, src Source, year string, gc Geocoder) ([]Location, error) {
	var rows []Record
	if err := ProcessFile(src, collect(&rows), FilterYear(year)); err != nil {
		return nil, err
	}
	return build(ctx, rows, year, gc)
}

// Load builds the dataset for year from r. Rows are kept in file order.
// Rows whose location cannot be geocoded are dropped.
func Load(ctx context.Context, r io.Reader, headerLines int, year string, gc Geocoder) ([]Location, error) {
	var rows []Record
	if err := Process(r, headerLines, collect(&rows), FilterYear(year)); err != nil {
		return nil, err
	}
	return build(ctx, rows, year, gc)
}

func collect(rows *[]Record) Handler {
	return func(r *Record) error {
		*rows = append(*rows, *r)
		return nil
	}
}

func build(ctx context.Context, rows []Record, year string, gc Geocoder) ([]Location, error) {
	slog.Info("Selected records for year", "year", year, "records", len(rows))
	rows = stripTitles(rows)
	rows = dedupe(rows)
	slog.Info("Removed duplicate locations", "records", len(rows))
	locs, err := geocodeAll(ctx, withCountries(rows, year), gc)
	if err != nil {
		return nil, err
	}
	slog.Info("Geocoded locations", "resolved", len(locs), "dropped", len(rows)-len(locs))
	return locs, nil
}

func stripTitles(rows []Record) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		r.Title = StripTitle(r.Title)
		out[i] = r
	}
	return out
}

type titleLocation struct {
	title, location string
}

func dedupe(rows []Record) []Record {
	seen := make(map[titleLocation]struct{}, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		k := titleLocation{r.Title, r.Location}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func withCountries(rows []Record, year string) []Location {
	locs := make([]Location, len(rows))
	for i, r := range rows {
		locs[i] = Location{
			Title:    r.Title,
			Location: r.Location,
			Year:     year,
			Country:  Country(r.Location),
		}
	}
	return locs
}

type lookup struct {
	c  geo.Coordinates
	ok bool
}

// geocodeAll resolves each distinct place once, in row order, and drops the
// rows that could not be resolved.
func geocodeAll(ctx context.Context, locs []Location, gc Geocoder) ([]Location, error) {
	done := make(map[string]lookup)
	out := locs[:0:0]
	for _, l := range locs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("geocoding interrupted: %w", err)
		}
		res, seen := done[l.Location]
		if !seen {
			res.c, res.ok = gc.Geocode(ctx, l.Location)
			// a lookup cut short by cancellation looks like a miss
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("geocoding interrupted: %w", err)
			}
			done[l.Location] = res
		}
		if !res.ok {
			slog.Debug("Dropping location that could not be geocoded", "title", l.Title, "location", l.Location)
			continue
		}
		l.Coordinates = res.c
		out = append(out, l)
	}
	return out, nil
}
