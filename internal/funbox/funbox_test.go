package funbox

import (
	"testing"

	"github.com/verte-zerg/typebest/internal/model"
)

func TestCanGetPbWithoutModifiers(t *testing.T) {
	for _, value := range []string{"", "none"} {
		if !CanGetPb(model.Result{Funbox: value}) {
			t.Fatalf("expected %q to allow a personal best", value)
		}
	}
}

func TestCanGetPbDisqualifyingModifierDominates(t *testing.T) {
	r := Default()
	if r.CanGetPb("nospace") {
		t.Fatalf("expected nospace to disqualify")
	}
	if r.CanGetPb("mirror#nospace") {
		t.Fatalf("expected nospace to disqualify a combined funbox")
	}
	if r.CanGetPb("nospace#mirror") {
		t.Fatalf("expected order not to matter")
	}
	if !r.CanGetPb("mirror#choo_choo") {
		t.Fatalf("expected qualifying combination to pass")
	}
}

func TestCanGetPbIgnoresUnknownModifiers(t *testing.T) {
	r := Default()
	if !r.CanGetPb("not_a_real_funbox") {
		t.Fatalf("expected unknown modifier to be ignored")
	}
	if r.CanGetPb("not_a_real_funbox#tap_mode") {
		t.Fatalf("expected tap_mode to still disqualify")
	}
}

func TestWithOverrides(t *testing.T) {
	base := Default()
	r := base.WithOverrides(map[string]bool{
		"mirror":    false,
		"brand_new": false,
		"  ":        false,
		"capitals":  true,
	})
	if r.CanGetPb("mirror") {
		t.Fatalf("expected override to disqualify mirror")
	}
	if !base.CanGetPb("mirror") {
		t.Fatalf("expected base registry to be unchanged")
	}
	if r.CanGetPb("brand_new") {
		t.Fatalf("expected new modifier to be registered")
	}
	if !r.CanGetPb("capitals") {
		t.Fatalf("expected capitals to be allowed by override")
	}
	if _, ok := r.Lookup(""); ok {
		t.Fatalf("expected blank override name to be skipped")
	}
}

func TestListSorted(t *testing.T) {
	list := New([]Funbox{{Name: "b"}, {Name: "a", CanGetPb: true}, {Name: "c"}}).List()
	if len(list) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(list))
	}
	if list[0].Name != "a" || list[1].Name != "b" || list[2].Name != "c" {
		t.Fatalf("unexpected order: %+v", list)
	}
}
