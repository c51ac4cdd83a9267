package webmap

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliuba/web-map/pkg/geo"
	"github.com/oliuba/web-map/pkg/rank"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "2000_Ukraine_movies_map.html", FileName("2000", "Ukraine"))
	assert.Equal(t, "1994_New Zealand_movies_map.html", FileName("1994", "New Zealand"))
	assert.Equal(t, "2000_.._.._etc_movies_map.html", FileName("2000", "../../etc"))
	assert.Equal(t, "2000_a_b_movies_map.html", FileName("2000", `a\b`))
}

func TestCountryOverlayName(t *testing.T) {
	assert.Equal(t, "USA movie locations", CountryOverlayName("USA"))
}

func TestAddOverlay(t *testing.T) {
	m := New(WithoutGridReferences())
	m.AddOverlay(ClosestOverlayName, Green, []rank.Entry{
		{Title: "A", Coordinates: geo.Coordinates{Lat: 1, Lon: 2}},
		{Title: "B", Coordinates: geo.Coordinates{Lat: 3, Lon: 4}},
	})
	m.AddOverlay(CountryOverlayName("Ukraine"), Red, nil)

	require.Len(t, m.Overlays, 2)
	assert.Equal(t, Overlay{
		Name:  ClosestOverlayName,
		Color: Green,
		Markers: []Marker{
			{Title: "A", Position: geo.Coordinates{Lat: 1, Lon: 2}},
			{Title: "B", Position: geo.Coordinates{Lat: 3, Lon: 4}},
		},
	}, m.Overlays[0])
	assert.Equal(t, "Ukraine movie locations", m.Overlays[1].Name)
	assert.Empty(t, m.Overlays[1].Markers)
}

func TestFeatureCollection(t *testing.T) {
	o := Overlay{Markers: []Marker{
		{Title: "Big Ben", Position: geo.Coordinates{Lat: 51.5007, Lon: -0.1246}, GridRef: "TQ 30268 79640"},
		{Title: "Lviv", Position: geo.Coordinates{Lat: 49.84, Lon: 24.03}},
	}}
	data, err := json.Marshal(o.featureCollection())
	require.NoError(t, err)

	var got struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]string `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "FeatureCollection", got.Type)
	require.Len(t, got.Features, 2)
	assert.Equal(t, "Point", got.Features[0].Geometry.Type)
	// GeoJSON positions are longitude first
	assert.Equal(t, []float64{-0.1246, 51.5007}, got.Features[0].Geometry.Coordinates)
	assert.Equal(t, map[string]string{"title": "Big Ben", "gridref": "TQ 30268 79640"}, got.Features[0].Properties)
	assert.Equal(t, map[string]string{"title": "Lviv"}, got.Features[1].Properties)
}

func TestEmptyFeatureCollection(t *testing.T) {
	data, err := json.Marshal(Overlay{}.featureCollection())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"features":[]`)
}

func TestRender(t *testing.T) {
	m := New(WithTitle("2000 <movies>"), WithoutGridReferences())
	m.AddOverlay(ClosestOverlayName, Green, []rank.Entry{
		{Title: `</script><script>alert("x")</script>`, Coordinates: geo.Coordinates{Lat: 1, Lon: 2}},
	})
	m.AddOverlay(CountryOverlayName("Ukraine"), Red, []rank.Entry{
		{Title: "Kyiv", Coordinates: geo.Coordinates{Lat: 50.45, Lon: 30.52}},
	})

	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf))
	html := buf.String()

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>2000 &lt;movies&gt;</title>")
	assert.Contains(t, html, "leaflet.js")
	assert.Contains(t, html, "tile.openstreetmap.org")
	assert.Contains(t, html, "L.control.layers")
	assert.Contains(t, html, ClosestOverlayName)
	assert.Contains(t, html, "Ukraine movie locations")
	assert.Contains(t, html, `"green"`)
	assert.Contains(t, html, `"red"`)
	assert.Contains(t, html, "Kyiv")
	assert.Contains(t, html, "center: [0,0]")
	assert.Equal(t, 2, strings.Count(html, "</script>"), "titles must not close the script element")
}

func TestFormatGridRef(t *testing.T) {
	tests := []struct {
		name     string
		easting  float64
		northing float64
		want     string
	}{
		{"london", 530268.4, 179640.9, "TQ 30268 79640"},
		{"edinburgh", 325900, 673900, "NT 25900 73900"},
		{"false origin", 0, 0, "SV 00000 00000"},
		{"off grid", -1, 100, ""},
		{"too far north", 100, 1300000, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatGridRef(tt.easting, tt.northing))
		})
	}
}

func TestGridReference(t *testing.T) {
	g := &gridReferencer{}

	ref := g.Reference(geo.Coordinates{Lat: 51.5007, Lon: -0.1246})
	require.NotEmpty(t, ref)
	assert.True(t, strings.HasPrefix(ref, "TQ "), ref)

	assert.Empty(t, g.Reference(geo.Coordinates{Lat: 49.84, Lon: 24.03}))
	assert.Empty(t, g.Reference(geo.Coordinates{Lat: 40.71, Lon: -74.0}))
}

func TestAddOverlayWithGridReferences(t *testing.T) {
	m := New()
	m.AddOverlay("UK", Red, []rank.Entry{
		{Title: "Edinburgh", Coordinates: geo.Coordinates{Lat: 55.9533, Lon: -3.1883}},
		{Title: "Kyiv", Coordinates: geo.Coordinates{Lat: 50.45, Lon: 30.52}},
	})
	require.Len(t, m.Overlays[0].Markers, 2)
	assert.True(t, strings.HasPrefix(m.Overlays[0].Markers[0].GridRef, "NT "), m.Overlays[0].Markers[0].GridRef)
	assert.Empty(t, m.Overlays[0].Markers[1].GridRef)
}
