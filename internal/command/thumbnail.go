package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"inari-web/internal/config"
	"inari-web/internal/storage"
	"inari-web/internal/thumbnails"
)

// thumbnailCommand fetches a key through the configured storage provider,
// the same path GET /thumbnails/*key takes. Useful to check bucket or filer
// settings before starting the server.
func thumbnailCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "thumbnail",
		Usage:     "fetch a thumbnail from the configured storage",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Usage: "override STORAGE_PROVIDER"},
			&cli.StringFlag{Name: "preset", Usage: "small, medium or large"},
			&cli.IntFlag{Name: "width"},
			&cli.IntFlag{Name: "height"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the image to this file"},
		},
		Action: func(c *cli.Context) error {
			key, err := requireArg(c, 0, "thumbnail key")
			if err != nil {
				return err
			}

			cfg, err := config.LoadStorage()
			if err != nil {
				return err
			}
			if p := c.String("provider"); p != "" {
				cfg.Provider = p
			}

			store, err := storage.NewStorage(cfg)
			if err != nil {
				return err
			}

			opts := thumbnails.Options{Width: c.Int("width"), Height: c.Int("height")}
			if preset := c.String("preset"); preset != "" {
				if err := thumbnails.ApplyPreset(&opts, preset); err != nil {
					return err
				}
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			res, err := thumbnails.NewService(store, cfg.URLTTL, nil).Fetch(c.Context, key, opts)
			if err != nil {
				return err
			}
			if res.RedirectURL != "" {
				fmt.Fprintln(out, res.RedirectURL)
				return nil
			}
			defer res.Body.Close()

			dst := c.String("out")
			if dst == "" {
				n, err := io.Copy(io.Discard, res.Body)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %d bytes\n", res.ContentType, n)
				return nil
			}

			f, err := os.Create(dst)
			if err != nil {
				return err
			}
			defer f.Close()
			n, err := io.Copy(f, res.Body)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %d bytes to %s\n", n, dst)
			return nil
		},
	}
}
