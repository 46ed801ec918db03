package libmesh

import (
	"github.com/forest-structures/go4mesh/go4mesh"
)

// facePairing captures the axis remapping for one (origin face, target
// face) combination.  Axis sequences list the in-face tangent axis first
// and the face normal second.
type facePairing struct {
	originAxes [go4mesh.Dim]int8
	targetAxes [go4mesh.Dim]int8
	faceChild  int8
}

// facePairings enumerates every face pairing explicitly.  There is no
// closed form that survives the jump to three dimensions, so the 2D table
// is spelled out the same way.
var facePairings = [go4mesh.NumFaces][go4mesh.NumFaces]facePairing{
	{ // origin face 0 (-x): tangent y, normal x
		{originAxes: [2]int8{1, 0}, targetAxes: [2]int8{1, 0}, faceChild: 0}, // -> -x
		{originAxes: [2]int8{1, 0}, targetAxes: [2]int8{1, 0}, faceChild: 1}, // -> +x
		{originAxes: [2]int8{1, 0}, targetAxes: [2]int8{0, 1}, faceChild: 0}, // -> -y
		{originAxes: [2]int8{1, 0}, targetAxes: [2]int8{0, 1}, faceChild: 1}, // -> +y
	},
	{ // origin face 1 (+x): tangent y, normal x
		{originAxes: [2]int8{1, 0}, targetAxes: [2]int8{1, 0}, faceChild: 2}, // -> -x
		{originAxes: [2]int8{1, 0}, targetAxes: [2]int8{1, 0}, faceChild: 3}, // -> +x
		{originAxes: [2]int8{1, 0}, targetAxes: [2]int8{0, 1}, faceChild: 2}, // -> -y
		{originAxes: [2]int8{1, 0}, targetAxes: [2]int8{0, 1}, faceChild: 3}, // -> +y
	},
	{ // origin face 2 (-y): tangent x, normal y
		{originAxes: [2]int8{0, 1}, targetAxes: [2]int8{1, 0}, faceChild: 0}, // -> -x
		{originAxes: [2]int8{0, 1}, targetAxes: [2]int8{1, 0}, faceChild: 1}, // -> +x
		{originAxes: [2]int8{0, 1}, targetAxes: [2]int8{0, 1}, faceChild: 0}, // -> -y
		{originAxes: [2]int8{0, 1}, targetAxes: [2]int8{0, 1}, faceChild: 1}, // -> +y
	},
	{ // origin face 3 (+y): tangent x, normal y
		{originAxes: [2]int8{0, 1}, targetAxes: [2]int8{1, 0}, faceChild: 2}, // -> -x
		{originAxes: [2]int8{0, 1}, targetAxes: [2]int8{1, 0}, faceChild: 3}, // -> +x
		{originAxes: [2]int8{0, 1}, targetAxes: [2]int8{0, 1}, faceChild: 2}, // -> -y
		{originAxes: [2]int8{0, 1}, targetAxes: [2]int8{0, 1}, faceChild: 3}, // -> +y
	},
}

// FindFaceTransform resolves the face neighbor of (itree, iface) and the
// coordinate remapping into its frame.  ok is false on a true outer
// boundary (the tree meeting itself on the same face); a self-periodic
// wrap still yields a transform.
//
// Defined only on valid stores; pure and O(1).
func (conn *Connectivity) FindFaceTransform(itree go4mesh.TopIdx, iface int) (ntree go4mesh.TopIdx, ft go4mesh.FaceTransform, ok bool) {
	at := 4*int(itree) + iface
	ntree = conn.TreeToTree[at]
	code := conn.TreeToFace[at]
	nface := int(code) % go4mesh.NumFaces
	orient := int8(int(code) / go4mesh.NumFaces)

	if ntree == itree && nface == iface {
		return -1, go4mesh.FaceTransform{}, false
	}

	pair := &facePairings[iface][nface]
	ft = go4mesh.FaceTransform{
		OriginFace:  int8(iface),
		TargetFace:  int8(nface),
		Orientation: orient,
		OriginAxes:  pair.originAxes,
		TargetAxes:  pair.targetAxes,
		Reverse:     orient != 0,
		FaceChild:   pair.faceChild,
	}
	return ntree, ft, true
}
