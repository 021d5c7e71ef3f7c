package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/example/planedit/internal/api"
)

// pingCmd checks server availability the same way the in-app status
// indicator does.
type pingCmd struct {
	*root
	fs *flag.FlagSet
}

func (p *pingCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parsePingCmd(args []string, r *root) (*pingCmd, error) {
	fs := flag.NewFlagSet("ping", flag.ExitOnError)
	p := &pingCmd{root: r, fs: fs}
	fs.Usage = usageFunc(p)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pingCmd) Run() error {
	if err := p.requireServer(); err != nil {
		return err
	}
	client := api.NewClient(p.config.ServerURL,
		api.WithLogger(api.NewLogger(p.config.LogLevel)),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	start := time.Now()
	if err := pingFn(ctx, client); err != nil {
		return fmt.Errorf("ping %s: %w", p.config.ServerURL, err)
	}
	fmt.Printf("%s is up (%s)\n", p.config.ServerURL, time.Since(start).Round(time.Millisecond))
	return nil
}

var pingFn = func(ctx context.Context, c *api.Client) error { return c.Ping(ctx) }
