package libmesh

import (
	"errors"
	"testing"

	"github.com/forest-structures/go4mesh/go4mesh"
)

func TestNewConnectivityRejectsBadSizes(t *testing.T) {
	cases := []struct {
		V, T, C, N go4mesh.TopIdx
		wantErr    error
	}{
		{-1, 1, 0, 0, go4mesh.ErrInvalidArgument},
		{0, 0, 0, 0, go4mesh.ErrInvalidArgument},
		{0, -3, 0, 0, go4mesh.ErrInvalidArgument},
		{0, 1, -1, 0, go4mesh.ErrInvalidArgument},
		{0, 1, 0, -1, go4mesh.ErrInvalidArgument},
		{0, 1, 0, 4, go4mesh.ErrInvalidArgument}, // corner entries without corners
		{go4mesh.MaxTopIdx / 2, go4mesh.MaxTopIdx / 4, 0, 0, go4mesh.ErrOutOfMemory},
	}
	for _, tc := range cases {
		conn, err := NewConnectivity(tc.V, tc.T, tc.C, tc.N)
		if conn != nil || !errors.Is(err, tc.wantErr) {
			t.Errorf("NewConnectivity(%d,%d,%d,%d): got (%v, %v), want %v",
				tc.V, tc.T, tc.C, tc.N, conn, err, tc.wantErr)
		}
	}
}

func TestNewConnectivityShapes(t *testing.T) {
	conn, err := NewConnectivity(4, 2, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Reclaim()

	if len(conn.Vertices) != 12 || len(conn.TreeToVertex) != 8 {
		t.Errorf("vertex arrays sized %d / %d", len(conn.Vertices), len(conn.TreeToVertex))
	}
	if len(conn.TreeToTree) != 8 || len(conn.TreeToFace) != 8 {
		t.Errorf("face arrays sized %d / %d", len(conn.TreeToTree), len(conn.TreeToFace))
	}
	if len(conn.TreeToCorner) != 8 || len(conn.CttOffset) != 2 {
		t.Errorf("corner arrays sized %d / %d", len(conn.TreeToCorner), len(conn.CttOffset))
	}
	if conn.NumCornerEntries() != 3 {
		t.Errorf("NumCornerEntries() = %d", conn.NumCornerEntries())
	}

	// V == 0 must drop the vertex arrays entirely.
	bare, err := NewConnectivity(0, 1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer bare.Reclaim()
	if bare.Vertices != nil || bare.TreeToVertex != nil {
		t.Error("vertexless store still carries vertex arrays")
	}
}

func TestIsValidCatchesMutations(t *testing.T) {
	mutations := []struct {
		desc   string
		mutate func(conn *Connectivity)
	}{
		{"tree index out of range", func(conn *Connectivity) {
			conn.TreeToTree[1] = 7
		}},
		{"negative tree index", func(conn *Connectivity) {
			conn.TreeToTree[0] = -1
		}},
		{"face code out of range", func(conn *Connectivity) {
			conn.TreeToFace[2] = 8
		}},
		{"boundary with nonzero orientation", func(conn *Connectivity) {
			// Make face 0 an outer boundary, but with orientation 1.
			conn.TreeToTree[0] = 0
			conn.TreeToFace[0] = 4
			conn.TreeToTree[1] = 0
			conn.TreeToFace[1] = 1
		}},
		{"asymmetric gluing", func(conn *Connectivity) {
			conn.TreeToFace[0] = 3 // face 0 claims face 3, which still claims face 2
		}},
		{"orientation mismatch", func(conn *Connectivity) {
			conn.TreeToFace[0] = 5 // one side claims reversed, the other aligned
		}},
		{"vertex index out of range", func(conn *Connectivity) {
			conn.TreeToVertex[3] = 99
		}},
		{"ctt offset not starting at 0", func(conn *Connectivity) {
			conn.CttOffset[0] = 1
		}},
		{"ctt offset not covering all entries", func(conn *Connectivity) {
			conn.CttOffset[1] = 3
		}},
		{"corner entry without back reference", func(conn *Connectivity) {
			conn.TreeToCorner[0] = -1
		}},
		{"corner reference out of range", func(conn *Connectivity) {
			conn.TreeToCorner[0] = 5
		}},
		{"corner entry tree out of range", func(conn *Connectivity) {
			conn.CornerToTree[0] = 3
		}},
	}

	for _, mut := range mutations {
		conn := NewPeriodic()
		if !conn.IsValid() {
			t.Fatalf("%s: fixture invalid before mutation", mut.desc)
		}
		mut.mutate(conn)
		if conn.IsValid() {
			t.Errorf("%s: store still valid after mutation", mut.desc)
		}
		conn.Reclaim()
	}
}

func TestIsValidNeverReturnsPartialCornerState(t *testing.T) {
	conn := NewStar()
	defer conn.Reclaim()

	// Dropping one tree's explicit reference breaks the back-link check.
	conn.TreeToCorner[4*2+0] = -1
	if conn.IsValid() {
		t.Error("store valid with a corner entry its tree does not own")
	}
}

func TestIsEqual(t *testing.T) {
	a := NewCorner()
	b := NewCorner()
	defer a.Reclaim()
	defer b.Reclaim()

	if !a.IsEqual(b) || !b.IsEqual(a) {
		t.Fatal("identical fixtures are not equal")
	}
	if !a.IsEqual(a) {
		t.Fatal("store not equal to itself")
	}

	b.Vertices[0] += 0.5
	if a.IsEqual(b) {
		t.Error("vertex change not detected")
	}
	b.Vertices[0] = a.Vertices[0]

	b.TreeToFace[5]++
	if a.IsEqual(b) {
		t.Error("face code change not detected")
	}
	b.TreeToFace[5]--

	if a.IsEqual(NewPeriodic()) {
		t.Error("fixtures with different counts compare equal")
	}

	var null *Connectivity
	if a.IsEqual(nil) || null.IsEqual(a) {
		t.Error("nil comparison")
	}
	if !null.IsEqual(nil) {
		t.Error("nil != nil")
	}
}
