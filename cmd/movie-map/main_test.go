package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliuba/web-map/internal/prompt"
	"github.com/oliuba/web-map/pkg/geo"
)

const dataset = `CRC: 0x5D97BF3E  File: locations.list  Date: Fri Jun 23 00:00:00 2017

Copyright 1990-2017 The Internet Movie Database, Inc.  All rights reserved.

http://www.imdb.com

locations.list

Please refer to the notes at the top of the file.

=============
LOCATIONS LIST
==============

"Lviv Stories" (2000)	Lviv, Ukraine
Old One (1999)	Lviv, Ukraine
`

func setup(t *testing.T) (dir string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Lviv, Ukraine" {
			_, _ = io.WriteString(w, "[]")
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{{"lat": "49.84", "lon": "24.03"}})
	}))
	t.Cleanup(server.Close)

	dir = t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile("locations.list", []byte(dataset), 0o644))
	t.Setenv("MOVIEMAP_GEOCODER_URL", server.URL+"/search")
	return dir
}

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"movie-map"}, args...))
	return out.String(), err
}

func TestRunInteractive(t *testing.T) {
	dir := setup(t)

	out, err := runApp(t, "2000\n49.83826, 24.02324\nUkraine\n")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, prompt.YearQuestion+prompt.LocationQuestion+prompt.CountryQuestion))
	assert.True(t, strings.HasSuffix(out, "Map generation is finished. Please have a look at 2000_Ukraine_movies_map.html\n"), out)

	html, err := os.ReadFile(filepath.Join(dir, "2000_Ukraine_movies_map.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Lviv Stories")
	assert.NotContains(t, string(html), "Old One")
}

func TestRunFlags(t *testing.T) {
	dir := setup(t)
	outDir := filepath.Join(dir, "maps")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	out, err := runApp(t, "", "-y", "2000", "-l", "49.83826,24.02324", "-c", "Ukraine", "-o", outDir, "--gpx")
	require.NoError(t, err)
	assert.NotContains(t, out, prompt.YearQuestion)
	assert.FileExists(t, filepath.Join(outDir, "2000_Ukraine_movies_map.html"))
	assert.FileExists(t, filepath.Join(outDir, "2000_Ukraine_movies.gpx"))
}

func TestRunMalformedLocation(t *testing.T) {
	dir := setup(t)

	_, err := runApp(t, "2000\nsomewhere\nUkraine\n")
	require.ErrorIs(t, err, geo.ErrInvalidCoordinates)

	_, err = os.Stat(filepath.Join(dir, "2000_Ukraine_movies_map.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunMissingDataset(t *testing.T) {
	setup(t)

	_, err := runApp(t, "", "-d", "missing.list", "-y", "2000", "-l", "0, 0", "-c", "Ukraine")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunPublishNeedsCredentials(t *testing.T) {
	setup(t)

	_, err := runApp(t, "", "--publish-bucket", "movies", "-y", "2000", "-l", "0, 0", "-c", "Ukraine")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish.endpoint is required")
}

// chdir changes the working directory for the duration of the test,
// like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}
