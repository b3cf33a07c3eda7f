// Package command builds the inari CLI, a terminal front-end over the same
// API client as the web server.
package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"inari-web/internal/apiclient"
	"inari-web/internal/hashtag"
	"inari-web/internal/models"
	"inari-web/internal/timeline"
)

// ClientFactory builds the API client from the global flags
type ClientFactory func(c *cli.Context) (apiclient.Client, error)

// DefaultClientFactory returns the mock with --mock and an HTTP client otherwise
func DefaultClientFactory(c *cli.Context) (apiclient.Client, error) {
	if c.Bool("mock") {
		return apiclient.NewMockClient(), nil
	}
	if c.String("api") == "" {
		return nil, errors.New("--api is required without --mock")
	}
	return apiclient.NewHTTPClient(c.String("api"), c.Duration("timeout")), nil
}

// NewApp wires the commands; out receives everything printed
func NewApp(out io.Writer, newClient ClientFactory) *cli.App {
	if newClient == nil {
		newClient = DefaultClientFactory
	}

	withClient := func(run func(ctx context.Context, c *cli.Context, client apiclient.Client) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			ctx := c.Context
			if token := c.String("token"); token != "" {
				ctx = apiclient.WithToken(ctx, token)
			}
			return run(ctx, c, client)
		}
	}

	return &cli.App{
		Name:      "inari",
		Usage:     "browse and edit the photo library",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "base url of the Inari API",
				EnvVars: []string{"API_BASE_URL"},
				Value:   "http://localhost:8090/api",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "bearer token sent to the API",
				EnvVars: []string{"INARI_TOKEN"},
			},
			&cli.BoolFlag{
				Name:    "mock",
				Usage:   "use the in-memory development fixtures",
				EnvVars: []string{"API_MOCK"},
			},
			&cli.StringFlag{
				Name:    "tz",
				Usage:   "timezone used to display dates",
				EnvVars: []string{"DISPLAY_TIMEZONE"},
				Value:   "UTC",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "per request timeout",
				EnvVars: []string{"API_TIMEOUT"},
				Value:   time.Second,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print raw JSON",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "collections",
				Aliases: []string{"lsc"},
				Usage:   "list collections",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: string(models.CollectionTypeTimelineMonth)},
				},
				Action: withClient(func(ctx context.Context, c *cli.Context, client apiclient.Client) error {
					collectionType := models.CollectionType(c.String("type"))
					if !collectionType.Valid() {
						return fmt.Errorf("unknown collection type: %s", collectionType)
					}
					cols, err := client.ListCollections(ctx, collectionType)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out, cols)
					}
					tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
					for _, col := range cols {
						fmt.Fprintf(tw, "%s\t%s\t%d\n", col.ID, col.Title, col.MediaCount)
					}
					return tw.Flush()
				}),
			},
			{
				Name:      "collection",
				Usage:     "show a collection grouped by day",
				ArgsUsage: "<id>",
				Action: withClient(func(ctx context.Context, c *cli.Context, client apiclient.Client) error {
					id, err := requireArg(c, 0, "collection id")
					if err != nil {
						return err
					}
					detail, err := client.CollectionDetail(ctx, id)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out, detail)
					}
					loc, err := time.LoadLocation(c.String("tz"))
					if err != nil {
						return fmt.Errorf("invalid --tz: %w", err)
					}
					fmt.Fprintf(out, "%s (%d)\n", detail.CollectionMeta.Title, detail.CollectionMeta.MediaCount)
					for _, day := range timeline.GroupByDay(detail.Media, loc) {
						fmt.Fprintf(out, "\n%s (%d)\n", day.CollectionMeta.Title, day.CollectionMeta.MediaCount)
						for _, m := range day.Media {
							fmt.Fprintf(out, "  %s  %s  %s\n", m.ID, m.Taken().In(loc).Format("15:04:05"), m.TrimmedCaption())
						}
					}
					return nil
				}),
			},
			{
				Name:      "media",
				Usage:     "show a single media item",
				ArgsUsage: "<id>",
				Action: withClient(func(ctx context.Context, c *cli.Context, client apiclient.Client) error {
					id, err := requireArg(c, 0, "media id")
					if err != nil {
						return err
					}
					detail, err := client.MediaDetail(ctx, id)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out, detail)
					}
					loc, err := time.LoadLocation(c.String("tz"))
					if err != nil {
						return fmt.Errorf("invalid --tz: %w", err)
					}
					printMedia(out, detail.Media, loc)
					return nil
				}),
			},
			{
				Name:      "caption",
				Usage:     "replace the caption of a media item",
				ArgsUsage: "<id> <caption>",
				Action: withClient(func(ctx context.Context, c *cli.Context, client apiclient.Client) error {
					id, err := requireArg(c, 0, "media id")
					if err != nil {
						return err
					}
					caption := strings.Join(c.Args().Tail(), " ")
					if err := client.UpdateCaption(ctx, id, caption); err != nil {
						return err
					}
					fmt.Fprintln(out, "caption updated")
					return nil
				}),
			},
			{
				Name:      "hashtag",
				Usage:     "add a hashtag to a media item",
				ArgsUsage: "<id> <hashtag>",
				Action: withClient(func(ctx context.Context, c *cli.Context, client apiclient.Client) error {
					id, err := requireArg(c, 0, "media id")
					if err != nil {
						return err
					}
					tag := hashtag.Sanitize(strings.Join(c.Args().Tail(), ""))
					if tag == "" {
						return errors.New("hashtag is empty after removing symbols")
					}
					if err := client.AddHashtag(ctx, id, tag); err != nil {
						return err
					}
					fmt.Fprintf(out, "added #%s\n", tag)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "delete a media item",
				ArgsUsage: "<id>",
				Action: withClient(func(ctx context.Context, c *cli.Context, client apiclient.Client) error {
					id, err := requireArg(c, 0, "media id")
					if err != nil {
						return err
					}
					if err := client.DeleteMedia(ctx, id); err != nil {
						return err
					}
					fmt.Fprintln(out, "deleted", id)
					return nil
				}),
			},
			thumbnailCommand(out),
		},
	}
}

func requireArg(c *cli.Context, n int, name string) (string, error) {
	v := c.Args().Get(n)
	if v == "" {
		return "", fmt.Errorf("missing %s", name)
	}
	return v, nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMedia(out io.Writer, m models.Media, loc *time.Location) {
	fmt.Fprintln(out, m.ID)
	if taken := m.Taken(); !taken.IsZero() {
		fmt.Fprintln(out, models.FormatDisplayDate(taken.In(loc)))
	}
	if caption := m.TrimmedCaption(); caption != "" {
		fmt.Fprintln(out, caption)
	}
	if location := models.FormatLocation(m); location != "" {
		fmt.Fprintln(out, location)
	}
	for _, col := range m.Collections {
		fmt.Fprintf(out, "  %s  %s (%s)\n", col.ID, col.Title, col.Type.Label())
	}
}
