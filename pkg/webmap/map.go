// Package webmap renders movie locations as a self-contained Leaflet web map
// with one toggleable layer per overlay.
package webmap

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/oliuba/web-map/pkg/geo"
	"github.com/oliuba/web-map/pkg/rank"
)

const (
	ClosestOverlayName = "Closest movie locations"

	Green = "green"
	Red   = "red"
)

// CountryOverlayName names the overlay listing titles filmed in country.
func CountryOverlayName(country string) string {
	return country + " movie locations"
}

// FileName is the name a map for year and country is saved under.
func FileName(year, country string) string {
	return fmt.Sprintf("%s_%s_movies_map.html", SafeName(year), SafeName(country))
}

var unsafeChars = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// SafeName makes free-text input usable as part of a single file name.
func SafeName(s string) string {
	return unsafeChars.Replace(s)
}

type Marker struct {
	Title    string
	Position geo.Coordinates
	// GridRef is the OS National Grid reference, empty outside Great Britain.
	GridRef string
}

type Overlay struct {
	Name    string
	Color   string
	Markers []Marker
}

type Map struct {
	Title    string
	Center   geo.Coordinates
	Zoom     int
	Overlays []Overlay

	grid *gridReferencer
}

type Option func(*Map)

func WithTitle(title string) Option {
	return func(m *Map) {
		m.Title = title
	}
}

// WithoutGridReferences skips OS grid reference lookups for markers.
func WithoutGridReferences() Option {
	return func(m *Map) {
		m.grid = nil
	}
}

// New returns an empty map showing the whole world.
func New(opts ...Option) *Map {
	m := &Map{
		Title: "Movie locations",
		Zoom:  1,
		grid:  &gridReferencer{},
	}
	for _, f := range opts {
		f(m)
	}
	return m
}

// AddOverlay appends a named layer with one marker per entry, in order.
func (m *Map) AddOverlay(name, color string, entries []rank.Entry) {
	o := Overlay{Name: name, Color: color, Markers: make([]Marker, 0, len(entries))}
	for _, e := range entries {
		mk := Marker{Title: e.Title, Position: e.Coordinates}
		if m.grid != nil {
			mk.GridRef = m.grid.Reference(e.Coordinates)
		}
		o.Markers = append(o.Markers, mk)
	}
	m.Overlays = append(m.Overlays, o)
}

type overlayView struct {
	Name     string                     `json:"name"`
	Color    string                     `json:"color"`
	Features *geojson.FeatureCollection `json:"features"`
}

type pageView struct {
	Title    string
	Center   [2]float64
	Zoom     int
	Overlays []overlayView
}

func (o Overlay) featureCollection() *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(o.Markers))}
	for _, mk := range o.Markers {
		props := map[string]interface{}{"title": mk.Title}
		if mk.GridRef != "" {
			props["gridref"] = mk.GridRef
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{mk.Position.Lon, mk.Position.Lat}),
			Properties: props,
		})
	}
	return fc
}

// Render writes the map as a standalone HTML document.
func (m *Map) Render(w io.Writer) error {
	view := pageView{
		Title:    m.Title,
		Center:   [2]float64{m.Center.Lat, m.Center.Lon},
		Zoom:     m.Zoom,
		Overlays: make([]overlayView, 0, len(m.Overlays)),
	}
	for _, o := range m.Overlays {
		view.Overlays = append(view.Overlays, overlayView{
			Name:     o.Name,
			Color:    o.Color,
			Features: o.featureCollection(),
		})
	}
	if err := page.Execute(w, view); err != nil {
		return fmt.Errorf("error rendering map: %w", err)
	}
	return nil
}

var page = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { height: 100%; width: 100%; margin: 0; padding: 0; }
</style>
</head>
<body>
<div id="map"></div>
<script>
(function () {
  var map = L.map("map", {center: {{.Center}}, zoom: {{.Zoom}}});
  var base = L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
    maxZoom: 19,
    attribution: "&copy; OpenStreetMap contributors"
  }).addTo(map);
  var control = L.control.layers({"OpenStreetMap": base}, {}, {collapsed: false}).addTo(map);
  var overlays = {{.Overlays}};

  function popup(props) {
    var el = document.createElement("div");
    var title = document.createElement("b");
    title.textContent = props.title;
    el.appendChild(title);
    if (props.gridref) {
      var ref = document.createElement("div");
      ref.textContent = "OS grid " + props.gridref;
      el.appendChild(ref);
    }
    return el;
  }

  overlays.forEach(function (o) {
    var icon = new L.Icon({
      iconUrl: "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-2x-" + o.color + ".png",
      shadowUrl: "https://unpkg.com/leaflet@1.9.4/dist/images/marker-shadow.png",
      iconSize: [25, 41],
      iconAnchor: [12, 41],
      popupAnchor: [1, -34],
      shadowSize: [41, 41]
    });
    var layer = L.geoJSON(o.features, {
      pointToLayer: function (feature, latlng) {
        return L.marker(latlng, {icon: icon});
      },
      onEachFeature: function (feature, marker) {
        marker.bindPopup(popup(feature.properties));
      }
    }).addTo(map);
    control.addOverlay(layer, o.name);
  });
})();
</script>
</body>
</html>
`))
