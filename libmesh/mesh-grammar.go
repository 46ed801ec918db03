package libmesh

import (
	"github.com/alecthomas/participle/v2"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"

	"github.com/forest-structures/go4mesh/go4mesh"
)

// A mesh expression describes a macro topology without geometry:
//
//	trees 3; glue 0:1 - 1:0; glue 1:3 ~ 2:2; corner 0:3 1:2 2:0
//
// "trees N" declares the tree count and must come first.  "glue A:f - B:g"
// glues two faces with aligned z-order traversal, "~" with reversed;
// unglued faces stay outer boundary.  "corner" statements declare explicit
// corner classes as tree:corner pairs.

type MeshExpr struct {
	Stmts []*MeshStmt `parser:"(@@ (\";\" @@)* \";\"?)?"`
}

type MeshStmt struct {
	Trees  *int64      `parser:"  \"trees\" @Int"`
	Glue   *GlueStmt   `parser:"| \"glue\" @@"`
	Corner *CornerStmt `parser:"| \"corner\" @@"`
}

type GlueStmt struct {
	A    *EntityRef `parser:"@@"`
	Kind string     `parser:"@(\"-\" | \"~\")"`
	B    *EntityRef `parser:"@@"`
}

type CornerStmt struct {
	Refs []*EntityRef `parser:"@@ @@+"`
}

type EntityRef struct {
	Tree int64 `parser:"@Int"`
	Idx  int64 `parser:"\":\" @Int"`
}

var parseMeshExpr = participle.MustBuild[MeshExpr]()

// ParseMeshExpr builds a vertexless Connectivity from a mesh expression.
func ParseMeshExpr(expr string) (*Connectivity, error) {
	ast, err := parseMeshExpr.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrap(go4mesh.ErrBadMeshExpr, err.Error())
	}

	mb := meshBuilder{}
	for _, stmt := range ast.Stmts {
		switch {
		case stmt.Trees != nil:
			err = mb.declareTrees(*stmt.Trees)
		case stmt.Glue != nil:
			err = mb.applyGlue(stmt.Glue)
		case stmt.Corner != nil:
			err = mb.applyCorner(stmt.Corner)
		}
		if err != nil {
			return nil, err
		}
	}
	return mb.build()
}

// cornerKey packs a (tree, corner) pair for ordering in the class trees.
func cornerKey(tree go4mesh.TopIdx, corner int8) int64 {
	return int64(tree)*go4mesh.NumChildren + int64(corner)
}

func int64Comparator(a, b interface{}) int {
	ai := a.(int64)
	bi := b.(int64)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	}
	return 0
}

type meshBuilder struct {
	numTrees go4mesh.TopIdx
	toTree   []go4mesh.TopIdx
	toFace   []int8

	// classes orders explicit corner classes by their smallest member;
	// each value is a redblacktree of member keys, which dedupes and
	// canonicalizes however the expression listed them.
	classes *redblacktree.Tree
	claimed map[int64]*redblacktree.Tree
}

func (mb *meshBuilder) declareTrees(n int64) error {
	if mb.numTrees != 0 {
		return errors.Wrap(go4mesh.ErrBadMeshExpr, "trees declared twice")
	}
	if n < 1 || n > go4mesh.MaxTopIdx/go4mesh.NumChildren {
		return errors.Wrapf(go4mesh.ErrBadMeshExpr, "tree count %d", n)
	}
	mb.numTrees = go4mesh.TopIdx(n)
	mb.toTree = make([]go4mesh.TopIdx, 4*n)
	mb.toFace = make([]int8, 4*n)
	for i := go4mesh.TopIdx(0); i < mb.numTrees; i++ {
		for f := 0; f < go4mesh.NumFaces; f++ {
			mb.toTree[4*int(i)+f] = i
			mb.toFace[4*int(i)+f] = int8(f)
		}
	}
	return nil
}

func (mb *meshBuilder) checkRef(ref *EntityRef, idxMax int64) error {
	if mb.numTrees == 0 {
		return errors.Wrap(go4mesh.ErrBadMeshExpr, "trees must be declared first")
	}
	if ref.Tree < 0 || ref.Tree >= int64(mb.numTrees) || ref.Idx < 0 || ref.Idx >= idxMax {
		return errors.Wrapf(go4mesh.ErrBadTreeRef, "%d:%d", ref.Tree, ref.Idx)
	}
	return nil
}

func (mb *meshBuilder) applyGlue(glue *GlueStmt) error {
	if err := mb.checkRef(glue.A, go4mesh.NumFaces); err != nil {
		return err
	}
	if err := mb.checkRef(glue.B, go4mesh.NumFaces); err != nil {
		return err
	}
	ta, fa := go4mesh.TopIdx(glue.A.Tree), int(glue.A.Idx)
	tb, fb := go4mesh.TopIdx(glue.B.Tree), int(glue.B.Idx)
	if ta == tb && fa == fb {
		return errors.Wrapf(go4mesh.ErrBadMeshExpr, "gluing face %d:%d to itself", ta, fa)
	}
	if mb.toTree[4*int(ta)+fa] != ta || mb.toTree[4*int(tb)+fb] != tb ||
		int(mb.toFace[4*int(ta)+fa]) != fa || int(mb.toFace[4*int(tb)+fb]) != fb {
		return errors.Wrapf(go4mesh.ErrBadMeshExpr, "face %d:%d or %d:%d glued twice", ta, fa, tb, fb)
	}

	orient := int8(0)
	if glue.Kind == "~" {
		orient = 1
	}
	mb.toTree[4*int(ta)+fa] = tb
	mb.toFace[4*int(ta)+fa] = orient*go4mesh.NumFaces + int8(fb)
	mb.toTree[4*int(tb)+fb] = ta
	mb.toFace[4*int(tb)+fb] = orient*go4mesh.NumFaces + int8(fa)
	return nil
}

func (mb *meshBuilder) applyCorner(stmt *CornerStmt) error {
	class := redblacktree.NewWith(int64Comparator)
	for _, ref := range stmt.Refs {
		if err := mb.checkRef(ref, go4mesh.NumChildren); err != nil {
			return err
		}
		key := cornerKey(go4mesh.TopIdx(ref.Tree), int8(ref.Idx))
		if owner, taken := mb.claimed[key]; taken && owner != class {
			return errors.Wrapf(go4mesh.ErrBadMeshExpr,
				"corner %d:%d appears in two classes", ref.Tree, ref.Idx)
		}
		class.Put(key, nil)
		if mb.claimed == nil {
			mb.claimed = make(map[int64]*redblacktree.Tree)
		}
		mb.claimed[key] = class
	}
	if class.Size() < 2 {
		return errors.Wrap(go4mesh.ErrBadMeshExpr, "corner class needs at least two members")
	}
	if mb.classes == nil {
		mb.classes = redblacktree.NewWith(int64Comparator)
	}
	minKey := class.Left().Key.(int64)
	mb.classes.Put(minKey, class)
	return nil
}

func (mb *meshBuilder) build() (*Connectivity, error) {
	if mb.numTrees == 0 {
		return nil, errors.Wrap(go4mesh.ErrBadMeshExpr, "no trees declared")
	}

	numCorners := go4mesh.TopIdx(0)
	numCtt := go4mesh.TopIdx(0)
	if mb.classes != nil {
		numCorners = go4mesh.TopIdx(mb.classes.Size())
		numCtt = go4mesh.TopIdx(len(mb.claimed))
	}

	conn, err := NewConnectivity(0, mb.numTrees, numCorners, numCtt)
	if err != nil {
		return nil, err
	}
	copy(conn.TreeToTree, mb.toTree)
	copy(conn.TreeToFace, mb.toFace)

	if numCorners > 0 {
		for at := range conn.TreeToCorner {
			conn.TreeToCorner[at] = -1
		}
		c := go4mesh.TopIdx(0)
		n := go4mesh.TopIdx(0)
		conn.CttOffset[0] = 0
		it := mb.classes.Iterator()
		for it.Next() {
			class := it.Value().(*redblacktree.Tree)
			members := class.Iterator()
			for members.Next() {
				key := members.Key().(int64)
				tree := go4mesh.TopIdx(key / go4mesh.NumChildren)
				corner := int8(key % go4mesh.NumChildren)
				conn.TreeToCorner[4*int(tree)+int(corner)] = c
				conn.CornerToTree[n] = tree
				conn.CornerToCorner[n] = corner
				n++
			}
			c++
			conn.CttOffset[c] = n
		}
	}

	if !conn.IsValid() {
		conn.Reclaim()
		return nil, errors.Wrap(go4mesh.ErrIntegrity, "mesh expression yields inconsistent connectivity")
	}
	return conn, nil
}
