package wrongness

import (
	"testing"

	"github.com/google/uuid"

	"github.com/example/planedit/internal/api"
)

func TestRegisterAndSync(t *testing.T) {
	marker := uuid.New()
	r := NewRegistry()
	r.Register(marker, "Exit A", false)
	r.Register(marker, "Exit B", true)

	r.Sync(api.VariableSync{
		MarkerSummary: api.MarkerSummary{Marker: marker},
		Variable:      api.Variable{Key: "Exit A", Wrong: true},
	})
	if wrong, known := r.Status(marker, "Exit A"); !known || !wrong {
		t.Fatalf("Exit A = %v %v", wrong, known)
	}

	// Echo for a key never rendered must not invent an entry.
	r.Sync(api.VariableSync{
		MarkerSummary: api.MarkerSummary{Marker: marker},
		Variable:      api.Variable{Key: "ghost", Wrong: true},
	})
	if _, known := r.Status(marker, "ghost"); known {
		t.Fatal("ghost key appeared via sync")
	}
}

func TestDataKeepsRegistrationOrder(t *testing.T) {
	marker := uuid.New()
	r := NewRegistry()
	for _, key := range []string{"c", "a", "b"} {
		r.Register(marker, key, false)
	}
	data := r.Data(marker)
	if len(data) != 3 || data[0].Key != "c" || data[1].Key != "a" || data[2].Key != "b" {
		t.Fatalf("data = %v", data)
	}
	if r.Data(uuid.New()) != nil {
		t.Fatal("unknown marker should yield nil")
	}
}

func TestDrop(t *testing.T) {
	marker := uuid.New()
	r := NewRegistry()
	r.Register(marker, "k", true)
	r.Drop(marker)
	if _, known := r.Status(marker, "k"); known {
		t.Fatal("dropped marker still known")
	}
}
