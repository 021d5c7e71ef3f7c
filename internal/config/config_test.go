package config

import (
	"slices"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
server_url = https://plans.example.com
project = 7b6f3a3e-43a8-4f2c-9a55-0e8b7c1b2d3f
page = A2
token = abc123
log_level = debug
theme = my_custom_theme
scale_factors = 100 150 200

[notify]
pdf_ready = true
save_failed = false
connection = true

[theme.my_custom_theme]
Background = #111111
Foreground = #FFFFFF
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.ServerURL != "https://plans.example.com" {
		t.Errorf("Unexpected server_url: %q", cfg.ServerURL)
	}
	if cfg.Project != "7b6f3a3e-43a8-4f2c-9a55-0e8b7c1b2d3f" || cfg.Page != "A2" {
		t.Errorf("Unexpected project/page: %q %q", cfg.Project, cfg.Page)
	}
	if cfg.Token != "abc123" || cfg.LogLevel != "debug" {
		t.Errorf("Unexpected token/log_level: %q %q", cfg.Token, cfg.LogLevel)
	}
	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if !slices.Equal(cfg.ScaleFactors, []int{100, 150, 200}) {
		t.Errorf("Unexpected scale_factors: %v", cfg.ScaleFactors)
	}

	if !cfg.Notify.PDFReady {
		t.Error("Expected notify.pdf_ready to be true")
	}
	if cfg.Notify.SaveFailed {
		t.Error("Expected notify.save_failed to be false")
	}
	if !cfg.Notify.Connection {
		t.Error("Expected notify.connection to be true")
	}

	theme, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}

	if theme.Background.R != 0x11 || theme.Background.G != 0x11 || theme.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", theme.Background)
	}
}

func TestParseRejectsBadScaleFactors(t *testing.T) {
	_, err := Parse(strings.NewReader("scale_factors = 100 abc"))
	if err == nil {
		t.Fatal("expected error for non-numeric scale factor")
	}
}

func TestCircular(t *testing.T) {
	input := `server_url = https://plans.example.com
project = 7b6f3a3e-43a8-4f2c-9a55-0e8b7c1b2d3f
page = B1
token = xyz
log_level = warn
theme = dark
scale_factors = 100 125 150

[notify]
pdf_ready = true
save_failed = true
connection = false

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare relevant fields
	if cfg.ServerURL != cfg2.ServerURL {
		t.Errorf("ServerURL mismatch: %q vs %q", cfg.ServerURL, cfg2.ServerURL)
	}
	if cfg.Project != cfg2.Project || cfg.Page != cfg2.Page || cfg.Token != cfg2.Token {
		t.Errorf("Context mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Theme != cfg2.Theme || cfg.LogLevel != cfg2.LogLevel {
		t.Errorf("Theme/log mismatch: %q/%q vs %q/%q", cfg.Theme, cfg.LogLevel, cfg2.Theme, cfg2.LogLevel)
	}
	if !slices.Equal(cfg.ScaleFactors, cfg2.ScaleFactors) {
		t.Errorf("ScaleFactors mismatch: %v vs %v", cfg.ScaleFactors, cfg2.ScaleFactors)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	// Check theme persistence
	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if t1.Background != t2.Background {
		t.Errorf("Theme background mismatch: %v vs %v", t1.Background, t2.Background)
	}
}
