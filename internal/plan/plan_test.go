package plan

import (
	"reflect"
	"testing"
)

func TestNormalizeRotation(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 0},
		{359, 359},
		{360, 0},
		{725, 5},
		{-90, 270},
		{-360, 0},
		{-725, 355},
	}
	for _, c := range cases {
		if got := NormalizeRotation(c.in); got != c.want {
			t.Errorf("NormalizeRotation(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRotateFullTurnIsIdentity(t *testing.T) {
	m := Marker{Position: Position{Rotation: 37}}
	for _, delta := range []int{90, 180, 45, 45} {
		m.Rotate(delta)
	}
	if m.Position.Rotation != 37 {
		t.Fatalf("rotation after full turn = %d, want 37", m.Position.Rotation)
	}
}

func TestParseSideText(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Exit A;\nExit B;\n", []string{"Exit A", "Exit B"}},
		{"Exit A;\nExit B;", []string{"Exit A", "Exit B"}},
		{"Exit A;\nExit B", []string{"Exit A", "Exit B"}},
		{"Exit A;", []string{"Exit A"}},
		{"", []string{}},
		{";\n", []string{}},
	}
	for _, c := range cases {
		if got := ParseSideText(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("ParseSideText(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestFormatSideTextRoundTrip(t *testing.T) {
	lines := []string{"Выход A", "Лифт", "Exit B"}
	if got := ParseSideText(FormatSideText(lines)); !reflect.DeepEqual(got, lines) {
		t.Fatalf("round trip = %#v, want %#v", got, lines)
	}
	if FormatSideText(nil) != "" {
		t.Fatal("empty side should format to empty buffer")
	}
}

func TestSideVariables(t *testing.T) {
	m := Marker{Infoplan: []Side{{Number: 1, Variables: []string{"a"}}, {Number: 2, Variables: []string{"b", "c"}}}}
	if got := m.SideVariables(2); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("SideVariables(2) = %#v", got)
	}
	if m.SideVariables(3) != nil {
		t.Fatal("missing side should be nil")
	}
}
