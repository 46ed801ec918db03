package go4mesh

import (
	"io"
)

const (

	// Dim is the spatial dimension of the macro-mesh.
	Dim = 2

	// NumFaces is the number of faces of a single tree.
	NumFaces = 2 * Dim

	// NumChildren is the number of quadrant children of a tree, which also
	// equals its number of corners.
	NumChildren = 1 << Dim

	// MaxTopIdx is the largest addressable tree, vertex, or corner index.
	MaxTopIdx = 1<<31 - 1
)

// TopIdx indexes trees, vertices, and corners of a macro-mesh.
type TopIdx int32

// Faces are numbered in z-order: -x +x -y +y.
// Corners are numbered in z-order wrt yx: 00 01 10 11.
//
// A tree_to_face entry packs the neighbor's face number with the gluing
// orientation as orientation*NumFaces + face.  Orientation 0 means the
// glued faces' in-face axes run in the same z-order direction, 1 means
// they run opposite.

// FaceCorners lists the two corners of each face, in tangent order.
var FaceCorners = [NumFaces][2]int8{
	{0, 2}, // -x
	{1, 3}, // +x
	{0, 1}, // -y
	{2, 3}, // +y
}

// FaceDual stores each face number as seen from the face neighbor's system
// on an axis-aligned gluing.
var FaceDual = [NumFaces]int8{1, 0, 3, 2}

// CornerFaces lists the two faces touching each corner.
var CornerFaces = [NumChildren][2]int8{
	{0, 2},
	{1, 2},
	{0, 3},
	{1, 3},
}

// FaceTransform describes how in-face coordinates on one tree map into the
// local frame of its face neighbor.  Instances are produced fresh per query
// and never retained.
type FaceTransform struct {
	OriginFace  int8 // face number on the querying tree
	TargetFace  int8 // face number in the neighbor's system
	Orientation int8 // 0: aligned in z-order, 1: reversed

	// Axis sequences: [0] is the in-face (tangent) axis, [1] the normal.
	OriginAxes [Dim]int8
	TargetAxes [Dim]int8

	// Reverse is set when the tangent axis runs opposite in the neighbor.
	Reverse bool

	// FaceChild encodes which half of the neighbor face a hanging child
	// resolves to; consumed by the refinement layer.
	FaceChild int8
}

// Inverse returns the transform as seen from the neighbor tree.
func (ft FaceTransform) Inverse() FaceTransform {
	inv := FaceTransform{
		OriginFace:  ft.TargetFace,
		TargetFace:  ft.OriginFace,
		Orientation: ft.Orientation,
		OriginAxes:  ft.TargetAxes,
		TargetAxes:  ft.OriginAxes,
		Reverse:     ft.Reverse,
	}
	inv.FaceChild = 2*(ft.TargetFace&1) + (ft.OriginFace & 1)
	return inv
}

// CornerNeighbor identifies one other (tree, corner) pair explicitly
// identified with a queried corner.
type CornerNeighbor struct {
	Tree   TopIdx
	Corner int8
}

// CornerInfo is the result of a corner transform query.  Neighbors appear
// in storage order of the corner table; the querying pair itself is never
// listed.  Corner is -1 when the queried corner has no explicit entry.
type CornerInfo struct {
	Corner    TopIdx
	Neighbors []CornerNeighbor
}

// CatalogOpts specifies params for opening a topology catalog.
type CatalogOpts struct {
	DbPathName string // omit for an in-memory db
	ReadOnly   bool   // open in read-only mode
}

// CatalogContext is a container for open / active catalog instances.
type CatalogContext interface {

	// Attaches the given catalog to this context.
	AttachCatalog(cat io.Closer)

	// Detaches the given catalog from this context.
	DetachCatalog(cat io.Closer)

	// Signals all open catalogs to close, then closes.
	Close()

	// Signals when Close() completed and all open catalogs have been closed.
	Done() <-chan struct{}
}
