package ir

import "testing"

func TestGraphWalkSkipsRemoved(t *testing.T) {
	g := NewGraph()
	keep := g.NewInstruction(OpReturnVoid)
	drop := g.NewInstruction(OpReturnVoid)
	drop.Removed = true
	g.Entry.AddInstruction(keep)
	g.Entry.AddInstruction(drop)

	var seen []*Instruction
	g.Walk(func(instr *Instruction) { seen = append(seen, instr) })

	if len(seen) != 1 || seen[0] != keep {
		t.Fatalf("expected Walk to visit only the live instruction, got %v", seen)
	}
}

func TestGraphIsEmpty(t *testing.T) {
	g := NewGraph()
	if !g.IsEmpty() {
		t.Fatalf("a freshly built graph with no instructions must be empty")
	}

	instr := g.NewInstruction(OpReturnVoid)
	g.Entry.AddInstruction(instr)
	if g.IsEmpty() {
		t.Fatalf("a graph with a live instruction must not be empty")
	}

	instr.Removed = true
	if !g.IsEmpty() {
		t.Fatalf("a graph whose only instruction was removed must be empty again")
	}
}

func TestBlockCompactDropsRemoved(t *testing.T) {
	g := NewGraph()
	a := g.NewInstruction(OpReturnVoid)
	b := g.NewInstruction(OpReturnVoid)
	g.Entry.AddInstruction(a)
	g.Entry.AddInstruction(b)
	b.Removed = true

	g.Entry.Compact()

	if len(g.Entry.Instructions) != 1 || g.Entry.Instructions[0] != a {
		t.Fatalf("expected Compact to leave only the live instruction, got %v", g.Entry.Instructions)
	}
}

func TestBlockAddSuccessorWiresBothEdges(t *testing.T) {
	g := NewGraph()
	next := g.NewBlock()
	g.Entry.AddSuccessor(next)

	if len(g.Entry.Successors) != 1 || g.Entry.Successors[0] != next {
		t.Fatalf("expected entry to have next as its successor")
	}
	if len(next.Predecessors) != 1 || next.Predecessors[0] != g.Entry {
		t.Fatalf("expected next to record entry as its predecessor")
	}
}
