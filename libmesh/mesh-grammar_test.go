package libmesh

import (
	"errors"
	"testing"

	"github.com/forest-structures/go4mesh/go4mesh"
)

func TestParseMeshExprPeriodic(t *testing.T) {
	conn, err := ParseMeshExpr(
		"trees 1; glue 0:0 - 0:1; glue 0:2 - 0:3; corner 0:0 0:1 0:2 0:3")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Reclaim()

	want := NewPeriodic()
	defer want.Reclaim()

	if !conn.IsValid() {
		t.Fatal("parsed mesh invalid")
	}
	if conn.NumVertices != 0 {
		t.Errorf("mesh expressions carry no geometry, got %d vertices", conn.NumVertices)
	}
	if !eqIdx(conn.TreeToTree, want.TreeToTree) || !eqI8(conn.TreeToFace, want.TreeToFace) {
		t.Errorf("face tables differ from the periodic fixture:\n%v %v\n%v %v",
			conn.TreeToTree, conn.TreeToFace, want.TreeToTree, want.TreeToFace)
	}
	if !eqIdx(conn.TreeToCorner, want.TreeToCorner) ||
		!eqIdx(conn.CttOffset, want.CttOffset) ||
		!eqIdx(conn.CornerToTree, want.CornerToTree) ||
		!eqI8(conn.CornerToCorner, want.CornerToCorner) {
		t.Error("corner tables differ from the periodic fixture")
	}
}

func TestParseMeshExprTwist(t *testing.T) {
	conn, err := ParseMeshExpr("trees 2; glue 0:1 ~ 1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Reclaim()

	_, ft, ok := conn.FindFaceTransform(0, 1)
	if !ok {
		t.Fatal("glued face resolves as boundary")
	}
	if ft.Orientation != 1 || !ft.Reverse {
		t.Errorf("'~' gluing yields orientation %d", ft.Orientation)
	}

	// The unglued faces stay outer boundary.
	if _, _, ok := conn.FindFaceTransform(0, 0); ok {
		t.Error("unglued face is not a boundary")
	}
}

func TestParseMeshExprUngluedDefaults(t *testing.T) {
	conn, err := ParseMeshExpr("trees 3")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Reclaim()

	if !conn.IsValid() || conn.NumTrees != 3 || conn.NumCorners != 0 {
		t.Fatalf("bare tree declaration: %d trees, %d corners", conn.NumTrees, conn.NumCorners)
	}
	for i := go4mesh.TopIdx(0); i < 3; i++ {
		for f := 0; f < go4mesh.NumFaces; f++ {
			if _, _, ok := conn.FindFaceTransform(i, f); ok {
				t.Errorf("tree %d face %d glued by default", i, f)
			}
		}
	}
}

func TestParseMeshExprCornerClasses(t *testing.T) {
	// Three trees meeting like the corner fixture, members listed out of
	// order and with a duplicate; the class canonicalizes regardless.
	conn, err := ParseMeshExpr(
		"trees 3;" +
			"glue 0:0 - 1:1; glue 0:2 - 1:3;" +
			"glue 1:0 - 2:1; glue 1:2 - 2:3;" +
			"corner 2:3 0:0 1:2 1:1 0:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Reclaim()

	if conn.NumCorners != 1 || conn.NumCornerEntries() != 4 {
		t.Fatalf("C=%d N=%d", conn.NumCorners, conn.NumCornerEntries())
	}

	ci := conn.FindCornerTransform(0, 0)
	want := []go4mesh.CornerNeighbor{
		{Tree: 1, Corner: 1},
		{Tree: 1, Corner: 2},
		{Tree: 2, Corner: 3},
	}
	if len(ci.Neighbors) != len(want) {
		t.Fatalf("neighbors %+v", ci.Neighbors)
	}
	for i, nbr := range ci.Neighbors {
		if nbr != want[i] {
			t.Errorf("neighbor %d: %+v, want %+v", i, nbr, want[i])
		}
	}
}

func TestParseMeshExprErrors(t *testing.T) {
	cases := []struct {
		expr    string
		wantErr error
	}{
		{"", go4mesh.ErrBadMeshExpr},                                // no trees declared
		{"glue 0:0 - 0:1", go4mesh.ErrBadMeshExpr},                  // glue before trees
		{"trees 1; trees 2", go4mesh.ErrBadMeshExpr},                // trees declared twice
		{"trees 0", go4mesh.ErrBadMeshExpr},                         // empty forest
		{"trees 1; glue 0:0 - 1:1", go4mesh.ErrBadTreeRef},          // tree out of range
		{"trees 1; glue 0:0 - 0:4", go4mesh.ErrBadTreeRef},          // face out of range
		{"trees 1; glue 0:0 - 0:0", go4mesh.ErrBadMeshExpr},         // face glued to itself
		{"trees 2; glue 0:0 - 1:0; glue 0:0 - 1:1", go4mesh.ErrBadMeshExpr}, // double glue
		{"trees 1; corner 0:0", go4mesh.ErrBadMeshExpr},             // syntax: class needs two refs
		{"trees 1; corner 0:0 0:0", go4mesh.ErrBadMeshExpr},         // class collapses below two members
		{"trees 2; corner 0:0 1:0; corner 0:0 1:1", go4mesh.ErrBadMeshExpr}, // pair in two classes
		{"trees 1; corner 0:0 0:7", go4mesh.ErrBadTreeRef},          // corner out of range
		{"trees; glue", go4mesh.ErrBadMeshExpr},                     // syntax error
		{"squares 3", go4mesh.ErrBadMeshExpr},                       // unknown statement
	}
	for _, tc := range cases {
		conn, err := ParseMeshExpr(tc.expr)
		if conn != nil || !errors.Is(err, tc.wantErr) {
			t.Errorf("%q: got (%v, %v), want %v", tc.expr, conn, err, tc.wantErr)
		}
	}
}
