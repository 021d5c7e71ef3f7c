package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/example/planedit/internal/api"
	"github.com/example/planedit/internal/layers"
	"github.com/example/planedit/internal/ui"
)

// reviewCmd opens a floor plan read-only. The argument is either a bare
// page code or a shared viewer URL, whose hide_layers parameter is
// honored.
type reviewCmd struct {
	target string
	*root
	fs *flag.FlagSet
}

func (c *reviewCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseReviewCmd(args []string, r *root) (*reviewCmd, error) {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	c := &reviewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		if r.config.Page == "" {
			return nil, &UsageError{of: c}
		}
		c.target = r.config.Page
		return c, nil
	}
	c.target = fs.Arg(0)
	return c, nil
}

// splitTarget extracts the page code and hidden layer titles from the
// command argument. A shared URL also overrides the server base when
// none was configured.
func (c *reviewCmd) splitTarget() (code string, hidden []string, err error) {
	if !strings.Contains(c.target, "://") {
		return c.target, nil, nil
	}
	u, err := url.Parse(c.target)
	if err != nil {
		return "", nil, fmt.Errorf("parse page URL: %w", err)
	}
	code = path.Base(strings.TrimRight(u.Path, "/"))
	hidden, err = layers.DecodeURL(c.target)
	if err != nil {
		return "", nil, err
	}
	if c.config.ServerURL == "" {
		c.config.ServerURL = u.Scheme + "://" + u.Host
	}
	return code, hidden, nil
}

func (c *reviewCmd) Run() error {
	code, hidden, err := c.splitTarget()
	if err != nil {
		return err
	}
	if err := c.requireServer(); err != nil {
		return err
	}

	client := api.NewClient(c.config.ServerURL,
		api.WithLogger(api.NewLogger(c.config.LogLevel)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	page, err := client.GetPage(ctx, code)
	cancel()
	if err != nil {
		return fmt.Errorf("load page %s: %w", code, err)
	}

	app, err := ui.New(c.config, client, page, ui.WithHiddenLayers(hidden))
	if err != nil {
		return err
	}
	runUIFn(app)
	return nil
}
