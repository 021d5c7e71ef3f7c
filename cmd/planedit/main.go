package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/example/planedit/internal/config"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs      *flag.FlagSet
	program string
	config  *config.Config

	server   string
	project  string
	token    string
	logLevel string
	theme    string

	pdfAlerts        bool
	saveAlerts       bool
	connectionAlerts bool
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:      flag.NewFlagSet("planedit", flag.ExitOnError),
		program: "planedit",
		config:  cfg,
	}
	r.fs.StringVar(&r.server, "server", "", "infoplan server base URL")
	r.fs.StringVar(&r.project, "project", "", "project UUID")
	r.fs.StringVar(&r.token, "token", "", "editor bearer token")
	r.fs.StringVar(&r.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	r.fs.StringVar(&r.theme, "theme", "", "color theme name from the config file")
	r.fs.BoolVar(&r.pdfAlerts, "notify-pdf", cfg.Notify.PDFReady, "show a desktop notification when a generated PDF is ready")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.SaveFailed, "show a desktop notification when a save fails")
	r.fs.BoolVar(&r.connectionAlerts, "notify-connection", cfg.Notify.Connection, "show a desktop notification when the server connection flips")
	r.fs.Usage = usageFunc(r)
	return r
}

// resolve folds the CLI flags over environment and config file values.
// Precedence: CLI > Env > Config.
func (r *root) resolve() {
	pick := func(flagVal, envName, cfgVal string) string {
		if flagVal != "" {
			return flagVal
		}
		if v := os.Getenv(envName); v != "" {
			return v
		}
		return cfgVal
	}
	r.config.ServerURL = pick(r.server, "PLANEDIT_SERVER", r.config.ServerURL)
	r.config.Project = pick(r.project, "PLANEDIT_PROJECT", r.config.Project)
	r.config.Token = pick(r.token, "PLANEDIT_TOKEN", r.config.Token)
	r.config.LogLevel = pick(r.logLevel, "PLANEDIT_LOG_LEVEL", r.config.LogLevel)
	r.config.Theme = pick(r.theme, "PLANEDIT_THEME", r.config.Theme)
	r.config.Notify.PDFReady = r.pdfAlerts
	r.config.Notify.SaveFailed = r.saveAlerts
	r.config.Notify.Connection = r.connectionAlerts
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.resolve()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "review":
		cmd, err = parseReviewCmd(subArgs, r)
	case "pdf":
		cmd, err = parsePDFCmd(subArgs, r)
	case "ping":
		cmd, err = parsePingCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// requireServer is the shared precondition of every networked command.
func (r *root) requireServer() error {
	if strings.TrimSpace(r.config.ServerURL) == "" {
		return errors.New("no server URL configured; pass -server or set PLANEDIT_SERVER")
	}
	return nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
