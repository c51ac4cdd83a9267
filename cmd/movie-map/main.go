package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/oliuba/web-map/internal/config"
	"github.com/oliuba/web-map/internal/logging"
	"github.com/oliuba/web-map/internal/prompt"
	"github.com/oliuba/web-map/pkg/geo"
	"github.com/oliuba/web-map/pkg/geocode"
	"github.com/oliuba/web-map/pkg/movies"
	"github.com/oliuba/web-map/pkg/publish"
	"github.com/oliuba/web-map/pkg/report"
)

func main() {
	log.SetFlags(0)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newApp().RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "movie-map",
		Usage: "Build a web map of movie filming locations for a year",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Read configuration from `FILE` instead of movie-map.yaml",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the locations list",
			},
			&cli.StringFlag{
				Name:    "year",
				Aliases: []string{"y"},
				Usage:   "Release year to map; asked for when not given",
			},
			&cli.StringFlag{
				Name:    "location",
				Aliases: []string{"l"},
				Usage:   "Your location as \"lat, long\"; asked for when not given",
			},
			&cli.StringFlag{
				Name:    "country",
				Aliases: []string{"c"},
				Usage:   "Country to map; asked for when not given",
			},
			&cli.StringFlag{
				Name:    "out-dir",
				Aliases: []string{"o"},
				Usage:   "Directory to save the map in",
			},
			&cli.BoolFlag{
				Name:  "gpx",
				Usage: "Also save the markers as GPX waypoints",
			},
			&cli.StringFlag{
				Name:  "publish-bucket",
				Usage: "Upload the results to `BUCKET` on the configured MinIO endpoint",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "One of debug, info, warn, error",
			},
		},
		Action: run,
	}
}

// flagKeys maps command line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"data":           "data.path",
	"out-dir":        "output.dir",
	"publish-bucket": "publish.bucket",
	"log-level":      "log.level",
}

func overrides(c *cli.Context) []config.Option {
	var opts []config.Option
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			opts = append(opts, config.Override(key, c.String(flag)))
		}
	}
	if c.IsSet("gpx") {
		opts = append(opts, config.Override("output.gpx", c.Bool("gpx")))
	}
	return opts
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), overrides(c)...)
	if err != nil {
		return err
	}
	logging.Setup(c.App.ErrWriter, cfg.Log.Level, cfg.Log.Format)

	asker := prompt.New(c.App.Reader, c.App.Writer)
	year, err := asker.AskIfEmpty(c.String("year"), prompt.YearQuestion)
	if err != nil {
		return err
	}
	location, err := asker.AskIfEmpty(c.String("location"), prompt.LocationQuestion)
	if err != nil {
		return err
	}
	country, err := asker.AskIfEmpty(c.String("country"), prompt.CountryQuestion)
	if err != nil {
		return err
	}
	ref, err := geo.ParseCoordinates(location)
	if err != nil {
		return err
	}
	slog.Info("Generating map", "year", year, "location", ref, "country", country)

	gen := &report.Generator{
		Source: movies.Source{
			Path:        cfg.Data.Path,
			HeaderLines: cfg.Data.HeaderLines,
			Charset:     cfg.Data.Charset,
		},
		Geocoder: geocode.New(
			geocode.WithURL(cfg.Geocoder.URL),
			geocode.WithUserAgent(cfg.Geocoder.UserAgent),
			geocode.WithInterval(cfg.Geocoder.MinInterval),
			geocode.WithHTTPClient(&http.Client{Timeout: cfg.Geocoder.Timeout}),
		),
		Limit:  cfg.Ranking.Limit,
		OutDir: cfg.Output.Dir,
		GPX:    cfg.Output.GPX,
	}
	if cfg.Publish.Enabled() {
		p, err := publish.New(publish.Config{
			Endpoint:  cfg.Publish.Endpoint,
			AccessKey: cfg.Publish.AccessKey,
			SecretKey: cfg.Publish.SecretKey,
			UseSSL:    cfg.Publish.UseSSL,
			Bucket:    cfg.Publish.Bucket,
		})
		if err != nil {
			return err
		}
		gen.Publisher = p
	}

	res, err := gen.Generate(c.Context, report.Request{Year: year, Location: ref, Country: country})
	if err != nil {
		return err
	}
	for _, loc := range res.Published {
		fmt.Fprintf(c.App.Writer, "Uploaded %s\n", loc)
	}
	fmt.Fprintf(c.App.Writer, "Map generation is finished. Please have a look at %s\n", res.MapPath)
	return nil
}
