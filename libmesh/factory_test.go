package libmesh

import (
	"testing"

	"github.com/forest-structures/go4mesh/go4mesh"
)

type fixture struct {
	name  string
	build func() *Connectivity
}

var allFixtures = []fixture{
	{"unitsquare", NewUnitSquare},
	{"periodic", NewPeriodic},
	{"rotwrap", NewRotWrap},
	{"corner", NewCorner},
	{"moebius", NewMoebius},
	{"star", NewStar},
}

func TestFactoryOutputsAreValid(t *testing.T) {
	for _, fix := range allFixtures {
		conn := fix.build()
		if !conn.IsValid() {
			t.Errorf("%s: invalid", fix.name)
		}
		conn.Reclaim()
	}
}

func TestFactoryCounts(t *testing.T) {
	cases := []struct {
		fixture
		V, T, C, N go4mesh.TopIdx
	}{
		{fixture{"unitsquare", NewUnitSquare}, 4, 1, 0, 0},
		{fixture{"periodic", NewPeriodic}, 4, 1, 1, 4},
		{fixture{"rotwrap", NewRotWrap}, 4, 1, 1, 2},
		{fixture{"corner", NewCorner}, 8, 3, 1, 4},
		{fixture{"moebius", NewMoebius}, 10, 5, 0, 0},
		{fixture{"star", NewStar}, 13, 6, 1, 6},
	}
	for _, tc := range cases {
		conn := tc.build()
		if conn.NumVertices != tc.V || conn.NumTrees != tc.T ||
			conn.NumCorners != tc.C || conn.NumCornerEntries() != tc.N {
			t.Errorf("%s: got V=%d T=%d C=%d N=%d, want V=%d T=%d C=%d N=%d",
				tc.name, conn.NumVertices, conn.NumTrees, conn.NumCorners, conn.NumCornerEntries(),
				tc.V, tc.T, tc.C, tc.N)
		}
		conn.Reclaim()
	}
}

func TestFactoryOutputsAreIndependent(t *testing.T) {
	a := NewPeriodic()
	b := NewPeriodic()
	a.TreeToFace[0] = 0
	if b.TreeToFace[0] != 1 {
		t.Error("fixtures share storage")
	}
	a.Reclaim()
	b.Reclaim()
}
