package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesListedKeysOnly(t *testing.T) {
	in := strings.NewReader(`# night palette
Name: Night
Background: #101010
MarkerSelected: #00FF00AA
NotAKey: #123456
`)
	th, err := Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "Night" {
		t.Fatalf("name = %q", th.Name)
	}
	if th.Background != (color.RGBA{16, 16, 16, 255}) {
		t.Fatalf("background = %v", th.Background)
	}
	if th.MarkerSelected != (color.RGBA{0, 255, 0, 170}) {
		t.Fatalf("selected = %v", th.MarkerSelected)
	}
	// Unlisted keys keep the default.
	if th.Foreground != Default().Foreground {
		t.Fatalf("foreground = %v", th.Foreground)
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Background: red")); err == nil {
		t.Fatal("expected error for non-hex color")
	}
	if _, err := Parse(strings.NewReader("Background: #1234")); err == nil {
		t.Fatal("expected error for short hex")
	}
}

func TestLoaderLoadsFilePathAndConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "night.theme")
	if err := os.WriteFile(path, []byte("Name: Night\nBackground: #202020\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	th, err := (&Loader{}).Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "Night" {
		t.Fatalf("name = %q", th.Name)
	}

	l := &Loader{ConfigDir: dir, SystemDir: filepath.Join(dir, "missing")}
	th, err = l.Load("night")
	if err != nil {
		t.Fatal(err)
	}
	if th.Background != (color.RGBA{32, 32, 32, 255}) {
		t.Fatalf("background = %v", th.Background)
	}

	if _, err := l.Load("nosuch"); err == nil {
		t.Fatal("expected error for unknown theme name")
	}
}
