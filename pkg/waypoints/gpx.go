// Package waypoints exports ranked movie locations as GPX waypoints so they
// can be loaded onto a GPS device or route planner.
package waypoints

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/twpayne/go-gpx"

	"github.com/oliuba/web-map/pkg/rank"
	"github.com/oliuba/web-map/pkg/webmap"
)

const Creator = "movie-map"

// FileName is the name waypoints for year and country are saved under.
func FileName(year, country string) string {
	return fmt.Sprintf("%s_%s_movies.gpx", webmap.SafeName(year), webmap.SafeName(country))
}

// Group is a set of entries sharing a description, usually an overlay name.
type Group struct {
	Name    string
	Entries []rank.Entry
}

// Build converts groups to a GPX document, one waypoint per entry in order.
func Build(groups ...Group) *gpx.GPX {
	g := &gpx.GPX{
		Version: "1.1",
		Creator: Creator,
	}
	for _, grp := range groups {
		for _, e := range grp.Entries {
			g.Wpt = append(g.Wpt, &gpx.WptType{
				Lat:  e.Coordinates.Lat,
				Lon:  e.Coordinates.Lon,
				Name: e.Title,
				Desc: grp.Name,
			})
		}
	}
	return g
}

// Write writes the groups as an indented GPX document.
func Write(w io.Writer, groups ...Group) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if err := Build(groups...).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("error writing GPX: %w", err)
	}
	return nil
}
