package libmesh

import (
	"math"

	"github.com/forest-structures/go4mesh/go4mesh"
)

// The factory constructors below build the canonical topologies.  Each
// output independently satisfies IsValid and doubles as a hand-verifiable
// fixture for the transform engines: periodic and rotwrap exercise
// self-referential gluings, corner / moebius / star exercise multi-tree
// explicit corners and non-orientable gluing.

func fill(dst []go4mesh.TopIdx, src []go4mesh.TopIdx) {
	copy(dst, src)
}

func fill8(dst []int8, src []int8) {
	copy(dst, src)
}

// NewUnitSquare builds a single unglued tree over the unit square.
func NewUnitSquare() *Connectivity {
	conn, _ := NewConnectivity(4, 1, 0, 0)
	copy(conn.Vertices, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		1, 1, 0,
	})
	fill(conn.TreeToVertex, []go4mesh.TopIdx{0, 1, 2, 3})
	fill(conn.TreeToTree, []go4mesh.TopIdx{0, 0, 0, 0})
	fill8(conn.TreeToFace, []int8{0, 1, 2, 3})
	return conn
}

// NewPeriodic builds an all-periodic 1x1 torus.  Every face wraps onto the
// opposite face of the same tree with aligned axes; all four local corners
// identify into one logical corner.
func NewPeriodic() *Connectivity {
	conn, _ := NewConnectivity(4, 1, 1, 4)
	copy(conn.Vertices, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		1, 1, 0,
	})
	fill(conn.TreeToVertex, []go4mesh.TopIdx{0, 1, 2, 3})
	fill(conn.TreeToTree, []go4mesh.TopIdx{0, 0, 0, 0})
	fill8(conn.TreeToFace, []int8{1, 0, 3, 2})
	fill(conn.TreeToCorner, []go4mesh.TopIdx{0, 0, 0, 0})
	fill(conn.CttOffset, []go4mesh.TopIdx{0, 4})
	fill(conn.CornerToTree, []go4mesh.TopIdx{0, 0, 0, 0})
	fill8(conn.CornerToCorner, []int8{0, 1, 2, 3})
	return conn
}

// NewRotWrap builds a rotated 1x1 wrap: the x faces glue onto the y faces
// with aligned traversal, so every transform permutes the in-face axis
// while keeping orientation 0.  Local corners 1 and 2 identify into the
// single explicit corner; corners 0 and 3 are fixed points.
func NewRotWrap() *Connectivity {
	conn, _ := NewConnectivity(4, 1, 1, 2)
	copy(conn.Vertices, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		1, 1, 0,
	})
	fill(conn.TreeToVertex, []go4mesh.TopIdx{0, 1, 2, 3})
	fill(conn.TreeToTree, []go4mesh.TopIdx{0, 0, 0, 0})
	fill8(conn.TreeToFace, []int8{2, 3, 0, 1})
	fill(conn.TreeToCorner, []go4mesh.TopIdx{-1, 0, 0, -1})
	fill(conn.CttOffset, []go4mesh.TopIdx{0, 2})
	fill(conn.CornerToTree, []go4mesh.TopIdx{0, 0})
	fill8(conn.CornerToCorner, []int8{1, 2})
	return conn
}

// NewCorner builds a three-tree mesh around a corner: a 2x2 block
//
//	B A
//	C B
//
// whose two B cells are the same tree.  The center corner is therefore
// touched four times by three trees and its table carries four entries,
// so a corner query from any of them yields the other three.
func NewCorner() *Connectivity {
	conn, _ := NewConnectivity(8, 3, 1, 4)
	copy(conn.Vertices, []float64{
		-1, -1, 0,
		0, -1, 0,
		-1, 0, 0,
		0, 0, 0,
		1, 0, 0,
		-1, 1, 0,
		0, 1, 0,
		1, 1, 0,
	})
	fill(conn.TreeToVertex, []go4mesh.TopIdx{
		3, 4, 6, 7, // A: upper right
		2, 3, 5, 6, // B: upper left image
		0, 1, 2, 3, // C: lower left
	})
	fill(conn.TreeToTree, []go4mesh.TopIdx{
		1, 0, 1, 0,
		2, 0, 2, 0,
		2, 1, 2, 1,
	})
	fill8(conn.TreeToFace, []int8{
		1, 1, 3, 3,
		1, 0, 3, 2,
		0, 0, 2, 2,
	})
	fill(conn.TreeToCorner, []go4mesh.TopIdx{
		0, -1, -1, -1,
		-1, 0, 0, -1,
		-1, -1, -1, 0,
	})
	fill(conn.CttOffset, []go4mesh.TopIdx{0, 4})
	fill(conn.CornerToTree, []go4mesh.TopIdx{0, 1, 1, 2})
	fill8(conn.CornerToCorner, []int8{0, 1, 2, 3})
	return conn
}

// NewMoebius builds a five-tree moebius band: a ring of trees glued left
// to right, with the closing gluing reversed.
func NewMoebius() *Connectivity {
	conn, _ := NewConnectivity(10, 5, 0, 0)
	for i := 0; i < 5; i++ {
		conn.Vertices[6*i+0] = float64(i)
		conn.Vertices[6*i+3] = float64(i)
		conn.Vertices[6*i+4] = 1
	}
	fill(conn.TreeToVertex, []go4mesh.TopIdx{
		0, 2, 1, 3,
		2, 4, 3, 5,
		4, 6, 5, 7,
		6, 8, 7, 9,
		8, 1, 9, 0, // the twist swaps the closing column
	})
	fill(conn.TreeToTree, []go4mesh.TopIdx{
		4, 1, 0, 0,
		0, 2, 1, 1,
		1, 3, 2, 2,
		2, 4, 3, 3,
		3, 0, 4, 4,
	})
	fill8(conn.TreeToFace, []int8{
		5, 0, 2, 3,
		1, 0, 2, 3,
		1, 0, 2, 3,
		1, 0, 2, 3,
		1, 4, 2, 3,
	})
	return conn
}

// NewStar builds six trees arranged around one explicitly stored center
// corner.  Consecutive trees glue across the faces touching their corner
// 0; everything else is outer boundary.  Trees two apart share the center
// without being face neighbors, which is what makes the corner hard.
func NewStar() *Connectivity {
	conn, _ := NewConnectivity(13, 6, 1, 6)

	// Center, six ring vertices, six outer corners.
	for i := 0; i < 6; i++ {
		a := float64(i) * math.Pi / 3
		conn.Vertices[3*(1+i)+0] = math.Cos(a)
		conn.Vertices[3*(1+i)+1] = math.Sin(a)
		b := a - math.Pi/6
		conn.Vertices[3*(7+i)+0] = math.Sqrt2 * math.Cos(b)
		conn.Vertices[3*(7+i)+1] = math.Sqrt2 * math.Sin(b)
	}

	for i := 0; i < 6; i++ {
		next := go4mesh.TopIdx((i + 1) % 6)
		prev := go4mesh.TopIdx((i + 5) % 6)

		conn.TreeToVertex[4*i+0] = 0
		conn.TreeToVertex[4*i+1] = 1 + prev
		conn.TreeToVertex[4*i+2] = go4mesh.TopIdx(1 + i)
		conn.TreeToVertex[4*i+3] = go4mesh.TopIdx(7 + i)

		conn.TreeToTree[4*i+0] = next
		conn.TreeToTree[4*i+1] = go4mesh.TopIdx(i)
		conn.TreeToTree[4*i+2] = prev
		conn.TreeToTree[4*i+3] = go4mesh.TopIdx(i)
		fill8(conn.TreeToFace[4*i:4*i+4], []int8{2, 1, 0, 3})

		conn.TreeToCorner[4*i+0] = 0
		conn.TreeToCorner[4*i+1] = -1
		conn.TreeToCorner[4*i+2] = -1
		conn.TreeToCorner[4*i+3] = -1

		conn.CornerToTree[i] = go4mesh.TopIdx(i)
		conn.CornerToCorner[i] = 0
	}
	fill(conn.CttOffset, []go4mesh.TopIdx{0, 6})
	return conn
}
