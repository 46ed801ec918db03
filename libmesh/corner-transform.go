package libmesh

import (
	"github.com/forest-structures/go4mesh/go4mesh"
)

// FindCornerTransform lists every other (tree, corner) pair explicitly
// identified with (itree, icorner).  Corners whose sharing already follows
// from chaining face transforms carry no table entry and yield an empty
// result; re-listing them would duplicate what the face engine provides.
//
// Results appear in storage order of the corner table.  Defined only on
// valid stores; pure and O(degree of the corner).
func (conn *Connectivity) FindCornerTransform(itree go4mesh.TopIdx, icorner int) go4mesh.CornerInfo {
	ci := go4mesh.CornerInfo{Corner: -1}
	if conn.NumCorners == 0 {
		return ci
	}
	c := conn.TreeToCorner[4*int(itree)+icorner]
	if c < 0 {
		return ci
	}
	ci.Corner = c

	for n := conn.CttOffset[c]; n < conn.CttOffset[c+1]; n++ {
		nt := conn.CornerToTree[n]
		nc := conn.CornerToCorner[n]
		if nt == itree && int(nc) == icorner {
			continue
		}
		ci.Neighbors = append(ci.Neighbors, go4mesh.CornerNeighbor{
			Tree:   nt,
			Corner: nc,
		})
	}
	return ci
}
