package webmap

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/fofanov/go-osgb"

	"github.com/oliuba/web-map/pkg/geo"
)

// Rough extent of the Ordnance Survey National Grid.
const (
	gridMinLat = 49.8
	gridMaxLat = 60.95
	gridMinLon = -8.7
	gridMaxLon = 1.85
)

// gridReferencer converts coordinates inside Great Britain to OS grid
// references such as "TQ 30268 79640".
type gridReferencer struct {
	once  sync.Once
	trans osgb.CoordinateTransformer
}

func (g *gridReferencer) transformer() osgb.CoordinateTransformer {
	g.once.Do(func() {
		trans, err := osgb.NewOSTN15Transformer()
		if err != nil {
			slog.Warn("OS grid references disabled", "error", err)
			return
		}
		g.trans = trans
	})
	return g.trans
}

// Reference returns the grid reference for c, or "" when c is outside the
// grid.
func (g *gridReferencer) Reference(c geo.Coordinates) string {
	if c.Lat < gridMinLat || c.Lat > gridMaxLat || c.Lon < gridMinLon || c.Lon > gridMaxLon {
		return ""
	}
	trans := g.transformer()
	if trans == nil {
		return ""
	}
	ng, err := trans.ToNationalGrid(osgb.NewETRS89Coord(c.Lon, c.Lat, 0))
	if err != nil {
		return ""
	}
	return formatGridRef(ng.Easting, ng.Northing)
}

// formatGridRef renders a full easting/northing as two grid letters and
// five-digit offsets within the 100 km square.
func formatGridRef(easting, northing float64) string {
	if easting < 0 || northing < 0 || easting >= 700000 || northing >= 1300000 {
		return ""
	}
	e100k := int(math.Floor(easting / 100000))
	n100k := int(math.Floor(northing / 100000))
	l1 := (19 - n100k) - (19-n100k)%5 + (e100k+10)/5
	l2 := (19-n100k)*5%25 + e100k%5
	// there is no I in the grid alphabet
	if l1 > 7 {
		l1++
	}
	if l2 > 7 {
		l2++
	}
	e := int(math.Floor(easting)) % 100000
	n := int(math.Floor(northing)) % 100000
	return fmt.Sprintf("%c%c %05d %05d", 'A'+l1, 'A'+l2, e, n)
}
