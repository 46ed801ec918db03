package libmesh

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/forest-structures/go4mesh/go4mesh"
)

// Connectivity holds the inter-tree topology of a quadtree macro-mesh as
// flat parallel arrays in z-ordering.
//
// The arrays TreeTo* are allocated [0][0]..[0][3]..[NumTrees-1][3].
// TreeToFace values are 0..7 where ttf % 4 gives the neighbor face number
// and ttf / 4 the gluing orientation.  A tree listing itself on the same
// face marks an outer boundary; listing itself on another face is a
// self-periodic wrap.
//
// Corners are only stored when their identification does not follow from
// face gluings alone.  Otherwise the TreeToCorner entry is -1 and the
// corner is ignored; -1 is not an error.  For logical corner c the
// identified (tree, corner) pairs sit at CornerToTree/CornerToCorner
// [CttOffset[c]]..[CttOffset[c+1]-1].
//
// A Connectivity is shape-immutable once populated and from then on safe to
// share across any number of goroutines without locking.
type Connectivity struct {
	NumVertices go4mesh.TopIdx
	NumTrees    go4mesh.TopIdx
	NumCorners  go4mesh.TopIdx

	Vertices     []float64        // 3 * NumVertices, nil iff NumVertices == 0
	TreeToVertex []go4mesh.TopIdx // 4 * NumTrees, nil iff NumVertices == 0

	TreeToTree []go4mesh.TopIdx // 4 * NumTrees
	TreeToFace []int8           // 4 * NumTrees

	TreeToCorner   []go4mesh.TopIdx // 4 * NumTrees, -1 sentinel; nil iff NumCorners == 0
	CttOffset      []go4mesh.TopIdx // NumCorners + 1; nil iff NumCorners == 0
	CornerToTree   []go4mesh.TopIdx
	CornerToCorner []int8
}

// NewConnectivity allocates a fully sized but unpopulated Connectivity.
// numCtt is the total entry count of the corner tables and is only
// meaningful when numCorners > 0.
func NewConnectivity(numVertices, numTrees, numCorners, numCtt go4mesh.TopIdx) (*Connectivity, error) {
	if numVertices < 0 || numTrees < 1 || numCorners < 0 || numCtt < 0 {
		return nil, errors.Wrapf(go4mesh.ErrInvalidArgument,
			"connectivity sizes V=%d T=%d C=%d N=%d", numVertices, numTrees, numCorners, numCtt)
	}
	if numCorners == 0 && numCtt != 0 {
		return nil, errors.Wrap(go4mesh.ErrInvalidArgument, "corner entries without corners")
	}
	total := 3*int64(numVertices) + 9*int64(numTrees) + int64(numCorners) + 2*int64(numCtt)
	if total > go4mesh.MaxTopIdx {
		return nil, errors.Wrapf(go4mesh.ErrOutOfMemory, "%d total elements", total)
	}

	conn := connPool.Get().(*Connectivity)
	conn.NumVertices = numVertices
	conn.NumTrees = numTrees
	conn.NumCorners = numCorners

	T4 := 4 * int(numTrees)
	if numVertices > 0 {
		conn.Vertices = sizedF64(conn.Vertices, 3*int(numVertices))
		conn.TreeToVertex = sizedIdx(conn.TreeToVertex, T4)
	} else {
		conn.Vertices = nil
		conn.TreeToVertex = nil
	}
	conn.TreeToTree = sizedIdx(conn.TreeToTree, T4)
	conn.TreeToFace = sizedI8(conn.TreeToFace, T4)
	if numCorners > 0 {
		conn.TreeToCorner = sizedIdx(conn.TreeToCorner, T4)
		conn.CttOffset = sizedIdx(conn.CttOffset, int(numCorners)+1)
		conn.CornerToTree = sizedIdx(conn.CornerToTree, int(numCtt))
		conn.CornerToCorner = sizedI8(conn.CornerToCorner, int(numCtt))
	} else {
		conn.TreeToCorner = nil
		conn.CttOffset = nil
		conn.CornerToTree = nil
		conn.CornerToCorner = nil
	}
	return conn, nil
}

// NumCornerEntries returns the total entry count of the corner tables.
func (conn *Connectivity) NumCornerEntries() go4mesh.TopIdx {
	return go4mesh.TopIdx(len(conn.CornerToTree))
}

// Reclaim recycles this instance into a pool for reuse.
// Caller asserts that no more references to this instance will persist.
func (conn *Connectivity) Reclaim() {
	if conn != nil {
		connPool.Put(conn)
	}
}

var connPool = sync.Pool{
	New: func() interface{} {
		return &Connectivity{}
	},
}

func sizedIdx(buf []go4mesh.TopIdx, n int) []go4mesh.TopIdx {
	if cap(buf) < n {
		return make([]go4mesh.TopIdx, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

func sizedI8(buf []int8, n int) []int8 {
	if cap(buf) < n {
		return make([]int8, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

func sizedF64(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// IsValid runs the full invariant set over the store.  It terminates on any
// bounds-safe input without crashing, never mutates, and runs in O(T+C+N).
func (conn *Connectivity) IsValid() bool {
	if conn == nil || conn.NumVertices < 0 || conn.NumTrees < 1 || conn.NumCorners < 0 {
		return false
	}
	V := int(conn.NumVertices)
	T := int(conn.NumTrees)
	C := int(conn.NumCorners)
	N := len(conn.CornerToTree)
	T4 := 4 * T

	if V > 0 {
		if len(conn.Vertices) != 3*V || len(conn.TreeToVertex) != T4 {
			return false
		}
	} else if conn.Vertices != nil || conn.TreeToVertex != nil {
		return false
	}
	if len(conn.TreeToTree) != T4 || len(conn.TreeToFace) != T4 {
		return false
	}

	if V > 0 {
		for _, vi := range conn.TreeToVertex {
			if vi < 0 || int(vi) >= V {
				return false
			}
		}
	}

	for i := 0; i < T; i++ {
		for f := 0; f < go4mesh.NumFaces; f++ {
			j := conn.TreeToTree[4*i+f]
			if j < 0 || int(j) >= T {
				return false
			}
			code := conn.TreeToFace[4*i+f]
			if code < 0 || code >= 2*go4mesh.NumFaces {
				return false
			}
			g := int(code) % go4mesh.NumFaces
			orient := int(code) / go4mesh.NumFaces

			if int(j) == i && g == f {
				// Outer boundary entries carry orientation 0.
				if orient != 0 {
					return false
				}
				continue
			}

			// The paired face must map straight back.
			back := conn.TreeToTree[4*int(j)+g]
			backCode := conn.TreeToFace[4*int(j)+g]
			if int(back) != i || int(backCode)%go4mesh.NumFaces != f ||
				int(backCode)/go4mesh.NumFaces != orient {
				return false
			}
		}
	}

	if C == 0 {
		return conn.TreeToCorner == nil && conn.CttOffset == nil &&
			conn.CornerToTree == nil && conn.CornerToCorner == nil
	}

	if len(conn.TreeToCorner) != T4 || len(conn.CttOffset) != C+1 ||
		len(conn.CornerToCorner) != N {
		return false
	}
	if conn.CttOffset[0] != 0 || int(conn.CttOffset[C]) != N {
		return false
	}
	for c := 0; c < C; c++ {
		if conn.CttOffset[c] > conn.CttOffset[c+1] {
			return false
		}
	}

	// Each corner table entry must be owned back by its (tree, corner).
	listed := make([]bool, T4)
	for c := 0; c < C; c++ {
		for n := conn.CttOffset[c]; n < conn.CttOffset[c+1]; n++ {
			t := conn.CornerToTree[n]
			k := conn.CornerToCorner[n]
			if t < 0 || int(t) >= T || k < 0 || k >= go4mesh.NumChildren {
				return false
			}
			at := 4*int(t) + int(k)
			if int(conn.TreeToCorner[at]) != c {
				return false
			}
			listed[at] = true
		}
	}

	// Conversely, every explicit corner reference must be listed by its
	// corner's table.
	for at, c := range conn.TreeToCorner {
		if c == -1 {
			continue
		}
		if c < 0 || int(c) >= C || !listed[at] {
			return false
		}
	}

	return true
}

// IsEqual performs a deep structural comparison of counts and array
// contents.
func (conn *Connectivity) IsEqual(other *Connectivity) bool {
	if conn == nil || other == nil {
		return conn == other
	}
	if conn.NumVertices != other.NumVertices ||
		conn.NumTrees != other.NumTrees ||
		conn.NumCorners != other.NumCorners {
		return false
	}
	return eqF64(conn.Vertices, other.Vertices) &&
		eqIdx(conn.TreeToVertex, other.TreeToVertex) &&
		eqIdx(conn.TreeToTree, other.TreeToTree) &&
		eqI8(conn.TreeToFace, other.TreeToFace) &&
		eqIdx(conn.TreeToCorner, other.TreeToCorner) &&
		eqIdx(conn.CttOffset, other.CttOffset) &&
		eqIdx(conn.CornerToTree, other.CornerToTree) &&
		eqI8(conn.CornerToCorner, other.CornerToCorner)
}

func eqIdx(a, b []go4mesh.TopIdx) bool {
	if len(a) != len(b) {
		return false
	}
	for i, ai := range a {
		if ai != b[i] {
			return false
		}
	}
	return true
}

func eqI8(a, b []int8) bool {
	if len(a) != len(b) {
		return false
	}
	for i, ai := range a {
		if ai != b[i] {
			return false
		}
	}
	return true
}

func eqF64(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, ai := range a {
		if ai != b[i] {
			return false
		}
	}
	return true
}

// WriteAsString writes a one-line summary of the store's shape.
func (conn *Connectivity) WriteAsString(out io.Writer) {
	fmt.Fprintf(out, "connectivity: %d trees, %d vertices, %d corners, %d corner entries\n",
		conn.NumTrees, conn.NumVertices, conn.NumCorners, conn.NumCornerEntries())
}
