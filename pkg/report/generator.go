// Package report ties the pipeline together: load the dataset for a year,
// rank it twice, render the map and write the artifacts.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oliuba/web-map/pkg/geo"
	"github.com/oliuba/web-map/pkg/movies"
	"github.com/oliuba/web-map/pkg/rank"
	"github.com/oliuba/web-map/pkg/waypoints"
	"github.com/oliuba/web-map/pkg/webmap"
)

var ErrEmptyYear = errors.New("year must not be empty")

// Uploader stores a finished artifact remotely and returns where it went.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

type Request struct {
	Year     string
	Location geo.Coordinates
	Country  string
}

type Result struct {
	MapPath   string
	GPXPath   string
	Closest   []rank.Entry
	InCountry []rank.Entry
	// Published lists bucket/key locations of uploaded artifacts.
	Published []string
}

type Generator struct {
	Source   movies.Source
	Geocoder movies.Geocoder
	// Limit caps each overlay; zero means rank.DefaultLimit.
	Limit  int
	OutDir string
	GPX    bool
	// Publisher is optional; nil skips uploading.
	Publisher Uploader
	// MapOptions are applied to every map built.
	MapOptions []webmap.Option
}

func (g *Generator) limit() int {
	if g.Limit > 0 {
		return g.Limit
	}
	return rank.DefaultLimit
}

// Generate runs one report. On error no artifact is left in OutDir.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Year == "" {
		return nil, ErrEmptyYear
	}
	locs, err := movies.LoadFile(ctx, g.Source, req.Year, g.Geocoder)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Closest:   rank.ClosestTo(req.Location, locs, g.limit()),
		InCountry: rank.ByCountry(req.Country, locs, g.limit()),
	}
	slog.Info("Ranked locations", "closest", len(res.Closest), "country", req.Country, "in_country", len(res.InCountry))

	countryOverlay := webmap.CountryOverlayName(req.Country)
	opts := append([]webmap.Option{webmap.WithTitle(fmt.Sprintf("%s movie locations", req.Year))}, g.MapOptions...)
	m := webmap.New(opts...)
	m.AddOverlay(webmap.ClosestOverlayName, webmap.Green, res.Closest)
	m.AddOverlay(countryOverlay, webmap.Red, res.InCountry)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var written []string
	cleanup := func() {
		for _, p := range written {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				slog.Warn("Error removing partial output", "path", p, "error", err)
			}
		}
	}

	res.MapPath = filepath.Join(g.OutDir, webmap.FileName(req.Year, req.Country))
	if err := writeFile(res.MapPath, m.Render); err != nil {
		return nil, err
	}
	written = append(written, res.MapPath)
	slog.Info("Saved map", "path", res.MapPath)

	if g.GPX {
		res.GPXPath = filepath.Join(g.OutDir, waypoints.FileName(req.Year, req.Country))
		err := writeFile(res.GPXPath, func(w io.Writer) error {
			return waypoints.Write(w,
				waypoints.Group{Name: webmap.ClosestOverlayName, Entries: res.Closest},
				waypoints.Group{Name: countryOverlay, Entries: res.InCountry},
			)
		})
		if err != nil {
			cleanup()
			return nil, err
		}
		written = append(written, res.GPXPath)
		slog.Info("Saved waypoints", "path", res.GPXPath)
	}

	if g.Publisher != nil {
		for _, p := range written {
			loc, err := g.Publisher.Upload(ctx, p)
			if err != nil {
				cleanup()
				return nil, fmt.Errorf("error publishing %s: %w", p, err)
			}
			res.Published = append(res.Published, loc)
		}
	}
	return res, nil
}
