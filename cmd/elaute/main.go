package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "elaute",
		Usage: "Query the e-laute source catalogue from the terminal",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:    "source",
				Usage:   "Catalogue document URL or file path",
				Sources: cli.EnvVars("CATALOGUE_SOURCE"),
			},
			&cli.StringFlag{
				Name:    "records-path",
				Usage:   "Path of the record collection in the document",
				Sources: cli.EnvVars("CATALOGUE_RECORDS_PATH"),
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "Fetch retries",
				Value: 0,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level := slog.LevelWarn
			if c.Bool("debug") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return ctx, nil
		},
		Commands: []*cli.Command{
			SearchCommand(),
			OptionsCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
