package main

import (
	"context"
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/example/planedit/internal/api"
	"github.com/example/planedit/internal/config"
)

func testRoot() *root {
	return &root{config: config.New(), program: "planedit"}
}

func TestEditRequiresServer(t *testing.T) {
	r := testRoot()
	cmd, err := parseEditCmd([]string{"L2"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err == nil {
		t.Fatal("expected error without a server URL")
	} else if !strings.Contains(err.Error(), "no server URL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEditRequiresToken(t *testing.T) {
	r := testRoot()
	r.config.ServerURL = "https://plans.example.com"
	cmd, err := parseEditCmd([]string{"L2"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err == nil {
		t.Fatal("expected error without a token")
	} else if !strings.Contains(err.Error(), "token") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEditNoPageIsUsageError(t *testing.T) {
	r := testRoot()
	if _, err := parseEditCmd(nil, r); err == nil {
		t.Fatal("expected usage error")
	} else {
		var uerr *UsageError
		if !errors.As(err, &uerr) {
			t.Fatalf("expected UsageError, got %v", err)
		}
	}
}

func TestEditPageFromConfig(t *testing.T) {
	r := testRoot()
	r.config.Page = "L3"
	cmd, err := parseEditCmd(nil, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.page != "L3" {
		t.Fatalf("page = %q, want L3", cmd.page)
	}
}

func TestReviewSplitTarget(t *testing.T) {
	r := testRoot()
	cmd, err := parseReviewCmd([]string{"https://plans.example.com/viewer/page/L2/?hide_layers=evac+exits"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	code, hidden, err := cmd.splitTarget()
	if err != nil {
		t.Fatalf("splitTarget: %v", err)
	}
	if code != "L2" {
		t.Errorf("code = %q, want L2", code)
	}
	if len(hidden) != 2 || hidden[0] != "evac" || hidden[1] != "exits" {
		t.Errorf("hidden = %v, want [evac exits]", hidden)
	}
	if r.config.ServerURL != "https://plans.example.com" {
		t.Errorf("server = %q, want URL host", r.config.ServerURL)
	}
}

func TestReviewBareCode(t *testing.T) {
	r := testRoot()
	cmd, err := parseReviewCmd([]string{"L5"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	code, hidden, err := cmd.splitTarget()
	if err != nil {
		t.Fatalf("splitTarget: %v", err)
	}
	if code != "L5" || hidden != nil {
		t.Errorf("got %q %v, want L5 with no hidden layers", code, hidden)
	}
}

func TestPingWrapsError(t *testing.T) {
	original := pingFn
	sentinel := errors.New("refused")
	pingFn = func(context.Context, *api.Client) error { return sentinel }
	t.Cleanup(func() { pingFn = original })

	r := testRoot()
	r.config.ServerURL = "https://plans.example.com"
	cmd, err := parsePingCmd(nil, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err == nil {
		t.Fatal("expected error")
	} else {
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
		if !strings.Contains(err.Error(), "plans.example.com") {
			t.Fatalf("expected server in error, got %v", err)
		}
	}
}

func TestRootUnknownCommand(t *testing.T) {
	r := testRoot()
	r.fs = flag.NewFlagSet("planedit", flag.ContinueOnError)
	if err := r.Run([]string{"bogus"}); err == nil {
		t.Fatal("expected usage error")
	} else {
		var uerr *UsageError
		if !errors.As(err, &uerr) {
			t.Fatalf("expected UsageError, got %v", err)
		}
	}
}
