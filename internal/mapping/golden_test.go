package mapping

import (
	"testing"

	"github.com/rogpeppe/go-internal/txtar"

	"shrinker/internal/classfile"
	"shrinker/internal/lens"
	"shrinker/internal/symbol"
)

// goldenFixture is a txtar archive: a "want" file holding the exact
// mapping text Format must produce for the zero-rename case (spec.md
// §8's "zero-rule compilation idempotence" — with nothing renamed,
// every class header reads original -> original). Using txtar instead
// of a bare string keeps the fixture self-describing the way the
// teacher's pack uses it for other golden-file comparisons, and
// leaves room to add more named sections (a "rules" file, a second
// "want" variant) without changing the test's shape.
const goldenFixture = `
-- want --
com.example.Holder -> com.example.Holder:
    int get() -> get
`

// TestFormat_GoldenZeroRename compares Format's output for an
// unrenamed program against the embedded golden fixture, parsed with
// go-internal/txtar the way the pack's golden-file tests load
// expected output as named archive sections rather than bare strings.
func TestFormat_GoldenZeroRename(t *testing.T) {
	archive := txtar.Parse([]byte(goldenFixture))
	var want []byte
	for _, f := range archive.Files {
		if f.Name == "want" {
			want = f.Data
		}
	}
	if want == nil {
		t.Fatal("golden fixture missing a \"want\" section")
	}

	pool := symbol.NewPool()
	holder := pool.Intern("Lcom/example/Holder;")
	intT := pool.Intern("I")

	getRef := symbol.MethodReference{
		Holder:    holder,
		Signature: symbol.MethodSignature{Name: "get", Params: nil, Return: intT},
	}
	class := &classfile.ClassDefinition{
		Type:    holder,
		Methods: []*classfile.MethodDefinition{{Ref: getRef}},
	}

	got := Format([]*classfile.ClassDefinition{class}, lens.NewStack())
	if got != string(want) {
		t.Errorf("Format output did not match golden fixture:\n got: %q\nwant: %q", got, string(want))
	}
}
