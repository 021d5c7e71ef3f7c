package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/example/planedit/internal/api"
	"github.com/example/planedit/internal/pdfgen"
)

// pdfCmd generates the project PDF from the command line and polls
// until the file is downloadable.
type pdfCmd struct {
	title   string
	wait    bool
	timeout time.Duration
	*root
	fs *flag.FlagSet
}

func (p *pdfCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parsePDFCmd(args []string, r *root) (*pdfCmd, error) {
	fs := flag.NewFlagSet("pdf", flag.ExitOnError)
	p := &pdfCmd{root: r, fs: fs}
	fs.StringVar(&p.title, "title", "", "project title printed on the PDF")
	fs.BoolVar(&p.wait, "wait", true, "poll until the PDF file is ready")
	fs.DurationVar(&p.timeout, "timeout", 5*time.Minute, "give up waiting after this long")
	fs.Usage = usageFunc(p)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pdfCmd) Run() error {
	if err := p.requireServer(); err != nil {
		return err
	}

	client := api.NewClient(p.config.ServerURL,
		api.WithToken(p.config.Token),
		api.WithLogger(api.NewLogger(p.config.LogLevel)),
	)
	gen := pdfgen.NewController(client)

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	info, err := gen.Generate(ctx, p.title)
	if err != nil {
		return fmt.Errorf("generate pdf: %w", err)
	}
	if p.wait {
		if err := gen.WaitReady(ctx, info.Original); err != nil {
			return fmt.Errorf("wait for pdf: %w", err)
		}
	}
	fmt.Println(info.Original)
	if info.Reviewed != "" {
		fmt.Println(info.Reviewed)
	}
	return nil
}
