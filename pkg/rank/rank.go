package rank

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/oliuba/web-map/pkg/geo"
	"github.com/oliuba/web-map/pkg/movies"
)

// DefaultLimit is the number of entries shown per overlay.
const DefaultLimit = 10

const (
	// Half-size of the box indexed around each point on the unit sphere.
	pointTolerance = 1e-12
	// Extra search radius so that ties with the k-th neighbour are not lost
	// to rounding.
	searchSlack = 1e-9
)

// Entry is a title and where it was filmed.
type Entry struct {
	Title       string
	Coordinates geo.Coordinates
}

type indexedLocation struct {
	pos   int
	point rtreego.Point
}

func (l *indexedLocation) Bounds() *rtreego.Rect {
	return l.point.ToRect(pointTolerance)
}

func unitPoint(c geo.Coordinates) rtreego.Point {
	v := c.UnitVector()
	return rtreego.Point{v[0], v[1], v[2]}
}

func chord(p, q rtreego.Point) float64 {
	var s float64
	for i := range p {
		d := p[i] - q[i]
		s += d * d
	}
	return math.Sqrt(s)
}

// ClosestTo returns up to limit locations ordered by increasing great-circle
// distance from ref. Locations at equal distance keep their dataset order.
func ClosestTo(ref geo.Coordinates, locs []movies.Location, limit int) []Entry {
	if limit <= 0 || len(locs) == 0 {
		return nil
	}
	objs := make([]rtreego.Spatial, len(locs))
	for i, l := range locs {
		objs[i] = &indexedLocation{pos: i, point: unitPoint(l.Coordinates)}
	}
	rt := rtreego.NewTree(3, 25, 50, objs...)

	// Straight-line distance through the sphere orders points the same way
	// as great-circle distance, so the k nearest in the index bound the
	// search radius for the exact ranking below.
	q := unitPoint(ref)
	k := limit
	if k > len(locs) {
		k = len(locs)
	}
	var radius float64
	for _, s := range rt.NearestNeighbors(k, q) {
		if l, ok := s.(*indexedLocation); ok {
			if d := chord(q, l.point); d > radius {
				radius = d
			}
		}
	}

	type candidate struct {
		pos  int
		dist float64
	}
	var candidates []candidate
	for _, s := range rt.SearchIntersect(q.ToRect(radius + searchSlack)) {
		l := s.(*indexedLocation)
		candidates = append(candidates, candidate{l.pos, geo.Distance(locs[l.pos].Coordinates, ref)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].pos < candidates[j].pos
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	entries := make([]Entry, len(candidates))
	for i, c := range candidates {
		entries[i] = entryOf(locs[c.pos])
	}
	return entries
}

// ByCountry returns up to limit locations whose country is exactly country,
// in dataset order.
func ByCountry(country string, locs []movies.Location, limit int) []Entry {
	var entries []Entry
	for _, l := range locs {
		if len(entries) >= limit {
			break
		}
		if l.Country == country {
			entries = append(entries, entryOf(l))
		}
	}
	return entries
}

func entryOf(l movies.Location) Entry {
	return Entry{Title: l.Title, Coordinates: l.Coordinates}
}
