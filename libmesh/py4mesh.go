package libmesh

import (
	"strings"

	"github.com/go-python/gpython/py"

	"github.com/forest-structures/go4mesh/go4mesh"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	PyConnectivityType = py.NewType("Connectivity",
		"an opaque connectivity object describing a quadtree macro-mesh topology")
)

func (conn *Connectivity) Type() *py.Type {
	return PyConnectivityType
}

func (conn *Connectivity) M__str__() (py.Object, error) {
	writer := strings.Builder{}
	conn.WriteAsString(&writer)
	return py.String(writer.String()), nil
}

func (conn *Connectivity) M__repr__() (py.Object, error) {
	return conn.M__str__()
}

func getConnFromObj(obj py.Object) (*Connectivity, error) {
	conn, ok := obj.(*Connectivity)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Connectivity object (got %v)", obj.Type().Name)
	}
	return conn, nil
}

func ph_UnitSquare(module py.Object, args py.Tuple) (py.Object, error) {
	return py.Object(NewUnitSquare()), nil
}

func ph_Periodic(module py.Object, args py.Tuple) (py.Object, error) {
	return py.Object(NewPeriodic()), nil
}

func ph_RotWrap(module py.Object, args py.Tuple) (py.Object, error) {
	return py.Object(NewRotWrap()), nil
}

func ph_CornerJunction(module py.Object, args py.Tuple) (py.Object, error) {
	return py.Object(NewCorner()), nil
}

func ph_Moebius(module py.Object, args py.Tuple) (py.Object, error) {
	return py.Object(NewMoebius()), nil
}

func ph_Star(module py.Object, args py.Tuple) (py.Object, error) {
	return py.Object(NewStar()), nil
}

// Arg 1 (str): pathname
func ph_Load(module py.Object, args py.Tuple) (py.Object, error) {
	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	conn, err := Load(pathname)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(conn), nil
}

// Arg 1 (str): mesh expression
func ph_ParseMesh(module py.Object, args py.Tuple) (py.Object, error) {
	var expr string
	err := py.LoadTuple(args, []interface{}{&expr})
	if err != nil {
		return nil, err
	}
	conn, err := ParseMeshExpr(expr)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(conn), nil
}

func ph_Conn_IsValid(self py.Object, args py.Tuple) (py.Object, error) {
	conn := self.(*Connectivity)
	if conn.IsValid() {
		return py.True, nil
	}
	return py.False, nil
}

func ph_Conn_NumTrees(self py.Object, args py.Tuple) (py.Object, error) {
	conn := self.(*Connectivity)
	return py.Object(py.Int(conn.NumTrees)), nil
}

func ph_Conn_NumVertices(self py.Object, args py.Tuple) (py.Object, error) {
	conn := self.(*Connectivity)
	return py.Object(py.Int(conn.NumVertices)), nil
}

func ph_Conn_NumCorners(self py.Object, args py.Tuple) (py.Object, error) {
	conn := self.(*Connectivity)
	return py.Object(py.Int(conn.NumCorners)), nil
}

// Arg 1 (str): pathname
func ph_Conn_Save(self py.Object, args py.Tuple) (py.Object, error) {
	conn := self.(*Connectivity)
	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	if err := Save(pathname, conn); err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.None, nil
}

// Arg 1 (Connectivity): other
func ph_Conn_Equal(self py.Object, args py.Tuple) (py.Object, error) {
	conn := self.(*Connectivity)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Equal() takes exactly one argument")
	}
	other, err := getConnFromObj(args[0])
	if err != nil {
		return nil, err
	}
	if conn.IsEqual(other) {
		return py.True, nil
	}
	return py.False, nil
}

// Arg 1 (int): tree
// Arg 2 (int): face
// Returns None on an outer boundary, else the tuple
// (neighbor_tree, target_face, orientation, face_child).
func ph_Conn_FaceTransform(self py.Object, args py.Tuple) (py.Object, error) {
	conn := self.(*Connectivity)
	var tree, face int32
	err := py.LoadTuple(args, []interface{}{&tree, &face})
	if err != nil {
		return nil, err
	}
	if tree < 0 || tree >= int32(conn.NumTrees) || face < 0 || face >= go4mesh.NumFaces {
		return nil, py.ExceptionNewf(py.IndexError, "tree %d face %d out of range", tree, face)
	}
	ntree, ft, ok := conn.FindFaceTransform(go4mesh.TopIdx(tree), int(face))
	if !ok {
		return py.None, nil
	}
	return py.Tuple{
		py.Int(ntree),
		py.Int(ft.TargetFace),
		py.Int(ft.Orientation),
		py.Int(ft.FaceChild),
	}, nil
}

// Arg 1 (int): tree
// Arg 2 (int): corner
// Returns a list of (neighbor_tree, neighbor_corner) tuples.
func ph_Conn_CornerTransform(self py.Object, args py.Tuple) (py.Object, error) {
	conn := self.(*Connectivity)
	var tree, corner int32
	err := py.LoadTuple(args, []interface{}{&tree, &corner})
	if err != nil {
		return nil, err
	}
	if tree < 0 || tree >= int32(conn.NumTrees) || corner < 0 || corner >= go4mesh.NumChildren {
		return nil, py.ExceptionNewf(py.IndexError, "tree %d corner %d out of range", tree, corner)
	}
	ci := conn.FindCornerTransform(go4mesh.TopIdx(tree), int(corner))
	items := make([]py.Object, 0, len(ci.Neighbors))
	for _, nbr := range ci.Neighbors {
		items = append(items, py.Tuple{py.Int(nbr.Tree), py.Int(nbr.Corner)})
	}
	return py.NewListFromItems(items), nil
}

func init() {

	/////////////////////////////////
	// Connectivity
	{
		PyConnectivityType.Dict["IsValid"] = py.MustNewMethod("IsValid", ph_Conn_IsValid, 0, "")
		PyConnectivityType.Dict["NumTrees"] = py.MustNewMethod("NumTrees", ph_Conn_NumTrees, 0, "")
		PyConnectivityType.Dict["NumVertices"] = py.MustNewMethod("NumVertices", ph_Conn_NumVertices, 0, "")
		PyConnectivityType.Dict["NumCorners"] = py.MustNewMethod("NumCorners", ph_Conn_NumCorners, 0, "")
		PyConnectivityType.Dict["Save"] = py.MustNewMethod("Save", ph_Conn_Save, 0, "")
		PyConnectivityType.Dict["Equal"] = py.MustNewMethod("Equal", ph_Conn_Equal, 0, "")
		PyConnectivityType.Dict["FaceTransform"] = py.MustNewMethod("FaceTransform", ph_Conn_FaceTransform, 0,
			"resolves the face neighbor and transform of (tree, face)")
		PyConnectivityType.Dict["CornerTransform"] = py.MustNewMethod("CornerTransform", ph_Conn_CornerTransform, 0,
			"lists the explicit corner neighbors of (tree, corner)")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("UnitSquare", ph_UnitSquare, 0, ""),
			py.MustNewMethod("Periodic", ph_Periodic, 0, ""),
			py.MustNewMethod("RotWrap", ph_RotWrap, 0, ""),
			py.MustNewMethod("CornerJunction", ph_CornerJunction, 0, ""),
			py.MustNewMethod("Moebius", ph_Moebius, 0, ""),
			py.MustNewMethod("Star", ph_Star, 0, ""),
			py.MustNewMethod("Load", ph_Load, 0, ""),
			py.MustNewMethod("ParseMesh", ph_ParseMesh, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION":  py.String(LIB_VERSION),
			"NUM_FACES":    py.Int(go4mesh.NumFaces),
			"NUM_CHILDREN": py.Int(go4mesh.NumChildren),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "go4mesh",
				Doc:  "quadtree macro-mesh connectivity gpython module",
			},
			Methods: methods,
			Globals: globals,
		})
	}
}
