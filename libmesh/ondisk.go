package libmesh

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/forest-structures/go4mesh/go4mesh"
)

// OnDiskFormat tags every serialized connectivity image.
// Increase this number whenever the on-disk layout changes; the format for
// reading and writing must be the same.
const OnDiskFormat uint64 = 0x344D455348000001 // "4MESH" + revision

// The image layout is fixed-width big-endian, never the native in-memory
// layout: the format tag, the four size counters as uint64, then the
// arrays in storage order -- vertices as float64 bits (present iff V > 0),
// tree_to_vertex as int32 (iff V > 0), tree_to_tree as int32, tree_to_face
// as int8, tree_to_corner as int32 (iff C > 0), ctt_offset as int32
// (iff C > 0), and the corner_to_tree / corner_to_corner pair as
// int32 / int8 (iff N > 0).

func imageSize(V, T, C, N int) int {
	sz := 8 * 5
	if V > 0 {
		sz += 8*3*V + 4*4*T
	}
	sz += 4*4*T + 4*T
	if C > 0 {
		sz += 4*4*T + 4*(C+1)
	}
	sz += 4*N + N
	return sz
}

func appendU64(img []byte, v uint64) []byte {
	var scrap [8]byte
	binary.BigEndian.PutUint64(scrap[:], v)
	return append(img, scrap[:]...)
}

func appendIdx(img []byte, vals []go4mesh.TopIdx) []byte {
	var scrap [4]byte
	for _, v := range vals {
		binary.BigEndian.PutUint32(scrap[:], uint32(v))
		img = append(img, scrap[:]...)
	}
	return img
}

func appendI8(img []byte, vals []int8) []byte {
	for _, v := range vals {
		img = append(img, byte(v))
	}
	return img
}

// AppendImage appends the serialized form of the store to img.
func (conn *Connectivity) AppendImage(img []byte) ([]byte, error) {
	if !conn.IsValid() {
		return nil, errors.Wrap(go4mesh.ErrIntegrity, "refusing to serialize")
	}
	V := int(conn.NumVertices)
	T := int(conn.NumTrees)
	C := int(conn.NumCorners)
	N := len(conn.CornerToTree)

	if cap(img)-len(img) < imageSize(V, T, C, N) {
		grown := make([]byte, len(img), len(img)+imageSize(V, T, C, N))
		copy(grown, img)
		img = grown
	}

	img = appendU64(img, OnDiskFormat)
	img = appendU64(img, uint64(V))
	img = appendU64(img, uint64(T))
	img = appendU64(img, uint64(C))
	img = appendU64(img, uint64(N))

	if V > 0 {
		for _, x := range conn.Vertices {
			img = appendU64(img, math.Float64bits(x))
		}
		img = appendIdx(img, conn.TreeToVertex)
	}
	img = appendIdx(img, conn.TreeToTree)
	img = appendI8(img, conn.TreeToFace)
	if C > 0 {
		img = appendIdx(img, conn.TreeToCorner)
		img = appendIdx(img, conn.CttOffset)
	}
	if N > 0 {
		img = appendIdx(img, conn.CornerToTree)
		img = appendI8(img, conn.CornerToCorner)
	}
	return img, nil
}

type imageReader struct {
	img []byte
	pos int
}

func (rd *imageReader) u64() (uint64, error) {
	if rd.pos+8 > len(rd.img) {
		return 0, errors.Wrap(go4mesh.ErrFormatMismatch, "truncated image")
	}
	v := binary.BigEndian.Uint64(rd.img[rd.pos:])
	rd.pos += 8
	return v, nil
}

func (rd *imageReader) idx(dst []go4mesh.TopIdx) error {
	if rd.pos+4*len(dst) > len(rd.img) {
		return errors.Wrap(go4mesh.ErrFormatMismatch, "truncated image")
	}
	for i := range dst {
		dst[i] = go4mesh.TopIdx(binary.BigEndian.Uint32(rd.img[rd.pos:]))
		rd.pos += 4
	}
	return nil
}

func (rd *imageReader) i8(dst []int8) error {
	if rd.pos+len(dst) > len(rd.img) {
		return errors.Wrap(go4mesh.ErrFormatMismatch, "truncated image")
	}
	for i := range dst {
		dst[i] = int8(rd.img[rd.pos])
		rd.pos++
	}
	return nil
}

func (rd *imageReader) f64(dst []float64) error {
	if rd.pos+8*len(dst) > len(rd.img) {
		return errors.Wrap(go4mesh.ErrFormatMismatch, "truncated image")
	}
	for i := range dst {
		dst[i] = math.Float64frombits(binary.BigEndian.Uint64(rd.img[rd.pos:]))
		rd.pos += 8
	}
	return nil
}

// DecodeImage reconstructs a Connectivity from a serialized image,
// rejecting a format tag mismatch and any size counter implying a negative
// or overflowing array length.  The result is validity-checked before it
// is returned; a store failing validation is never silently handed out.
func DecodeImage(img []byte) (*Connectivity, error) {
	rd := &imageReader{img: img}

	tag, err := rd.u64()
	if err != nil {
		return nil, err
	}
	if tag != OnDiskFormat {
		return nil, errors.Wrapf(go4mesh.ErrFormatMismatch,
			"expected format tag %016x, got %016x", OnDiskFormat, tag)
	}

	var counts [4]uint64
	for i := range counts {
		if counts[i], err = rd.u64(); err != nil {
			return nil, err
		}
		if counts[i] > go4mesh.MaxTopIdx {
			return nil, errors.Wrapf(go4mesh.ErrFormatMismatch, "size counter %d overflows", counts[i])
		}
	}
	V := go4mesh.TopIdx(counts[0])
	T := go4mesh.TopIdx(counts[1])
	C := go4mesh.TopIdx(counts[2])
	N := go4mesh.TopIdx(counts[3])
	if T < 1 || (C == 0 && N != 0) {
		return nil, errors.Wrapf(go4mesh.ErrFormatMismatch,
			"inconsistent size counters V=%d T=%d C=%d N=%d", V, T, C, N)
	}
	if want := imageSize(int(V), int(T), int(C), int(N)); len(img) != want {
		return nil, errors.Wrapf(go4mesh.ErrFormatMismatch,
			"image is %d bytes, counters imply %d", len(img), want)
	}

	conn, err := NewConnectivity(V, T, C, N)
	if err != nil {
		return nil, err
	}
	if V > 0 {
		if err = rd.f64(conn.Vertices); err == nil {
			err = rd.idx(conn.TreeToVertex)
		}
	}
	if err == nil {
		err = rd.idx(conn.TreeToTree)
	}
	if err == nil {
		err = rd.i8(conn.TreeToFace)
	}
	if err == nil && C > 0 {
		if err = rd.idx(conn.TreeToCorner); err == nil {
			err = rd.idx(conn.CttOffset)
		}
	}
	if err == nil && N > 0 {
		if err = rd.idx(conn.CornerToTree); err == nil {
			err = rd.i8(conn.CornerToCorner)
		}
	}
	if err != nil {
		conn.Reclaim()
		return nil, err
	}

	if !conn.IsValid() {
		conn.Reclaim()
		return nil, errors.Wrap(go4mesh.ErrIntegrity, "loaded connectivity")
	}
	return conn, nil
}

// Save writes a versioned binary image of a valid store.
func Save(pathname string, conn *Connectivity) error {
	img, err := conn.AppendImage(nil)
	if err != nil {
		return err
	}
	if err := os.WriteFile(pathname, img, 0644); err != nil {
		return errors.Wrapf(go4mesh.ErrIOFailure, "writing %q: %v", pathname, err)
	}
	return nil
}

// Load reads a connectivity image from disk.  Every downstream consumer
// assumes validity unconditionally, so a store failing validation after
// load is reported as an error, never returned.
func Load(pathname string) (*Connectivity, error) {
	img, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrapf(go4mesh.ErrIOFailure, "reading %q: %v", pathname, err)
	}
	conn, err := DecodeImage(img)
	if err != nil {
		return nil, errors.WithMessagef(err, "loading %q", pathname)
	}
	return conn, nil
}
