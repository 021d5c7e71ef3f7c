package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/example/planedit/internal/api"
	"github.com/example/planedit/internal/ui"
)

// runUIFn is swapped in tests so command plumbing can be exercised
// without a display server.
var runUIFn = func(a *ui.App) { a.Run() }

// editCmd opens one floor plan in the authenticated editor.
type editCmd struct {
	page string
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		if r.config.Page == "" {
			return nil, &UsageError{of: e}
		}
		e.page = r.config.Page
		return e, nil
	}
	e.page = fs.Arg(0)
	return e, nil
}

func (e *editCmd) Run() error {
	if err := e.requireServer(); err != nil {
		return err
	}
	if e.config.Token == "" {
		return errors.New("editing requires a token; pass -token or set PLANEDIT_TOKEN")
	}

	client := api.NewClient(e.config.ServerURL,
		api.WithToken(e.config.Token),
		api.WithLogger(api.NewLogger(e.config.LogLevel)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	page, err := client.GetPage(ctx, e.page)
	cancel()
	if err != nil {
		return fmt.Errorf("load page %s: %w", e.page, err)
	}

	app, err := ui.New(e.config, client, page, ui.WithAuthenticated(true))
	if err != nil {
		return err
	}
	runUIFn(app)
	return nil
}
