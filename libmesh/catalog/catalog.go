package catalog

import (
	"encoding/binary"
	"runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/forest-structures/go4mesh/go4mesh"
	"github.com/forest-structures/go4mesh/libmesh"
)

/***

Catalog database format:

	gCatalogStateKey => catalogState (major vers, minor vers, topo count)

	't', name...     => connectivity image (see libmesh.AppendImage)

Names sort lexicographically under the 't' prefix, so Select() is a
plain prefix walk.

***/

const (
	kMajorVers = 2026
	kMinorVers = 1

	kTopoPrefix = byte('t')
)

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

// NamedTopo is a catalog entry: a topology image decoded under the name it was stored with.
type NamedTopo struct {
	Name string
	Topo *libmesh.Connectivity
}

// Catalog is a persistent store of named connectivity topologies.
type Catalog interface {

	// IsReadOnly returns true if this catalog was opened read-only.
	IsReadOnly() bool

	// NumTopos returns the number of topologies in this catalog.
	NumTopos() int64

	// Put stores the given topology under the given name, replacing any
	// topology already stored under that name.
	Put(name string, conn *libmesh.Connectivity) error

	// Get returns the topology stored under the given name.
	//
	// The caller owns the returned Connectivity and should Reclaim() it when done.
	Get(name string) (*libmesh.Connectivity, error)

	// Drop removes the topology stored under the given name.
	Drop(name string) error

	// Select sends all topologies whose name starts with the given prefix,
	// in name order.  An empty prefix selects the entire catalog.
	//
	// Each NamedTopo sent is owned by the receiver.
	Select(prefix string, onHit chan<- NamedTopo)

	// Close flushes and closes this catalog, detaching it from its CatalogContext.
	Close() error
}

type catalogState struct {
	MajorVers uint32
	MinorVers uint32
	NumTopos  uint64
}

func (state *catalogState) Marshal(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, state.MajorVers)
	dst = binary.BigEndian.AppendUint32(dst, state.MinorVers)
	dst = binary.BigEndian.AppendUint64(dst, state.NumTopos)
	return dst
}

func (state *catalogState) Unmarshal(src []byte) error {
	if len(src) != 16 {
		return errors.Wrap(go4mesh.ErrFormatMismatch, "unrecognized catalog state")
	}
	state.MajorVers = binary.BigEndian.Uint32(src[0:4])
	state.MinorVers = binary.BigEndian.Uint32(src[4:8])
	state.NumTopos = binary.BigEndian.Uint64(src[8:16])
	return nil
}

type catalog struct {
	ctx        go4mesh.CatalogContext
	readOnly   bool
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

func OpenCatalog(ctx go4mesh.CatalogContext, opts go4mesh.CatalogOpts) (Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(go4mesh.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, we consider the catalog ctx blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
		cat.state.NumTopos = 0
	}

	if err == nil {
		if cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers {
			err = errors.New("catalog version is incompatible")
		}
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return cat.state.Unmarshal(val)
			})
		}
		return err
	})
}

func (cat *catalog) flushState() {
	if cat.stateDirty && !cat.readOnly {
		err := cat.db.Update(func(txn *badger.Txn) error {
			var stateBuf [16]byte
			return txn.Set(gCatalogStateKey, cat.state.Marshal(stateBuf[:0]))
		})
		if err != nil {
			panic(err)
		}
		cat.stateDirty = false
	}
}

func (cat *catalog) Close() error {
	cat.flushState()
	if cat.db != nil {
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) NumTopos() int64 {
	return int64(cat.state.NumTopos)
}

func formTopoKey(key []byte, name string) []byte {
	key = append(key, kTopoPrefix)
	key = append(key, name...)
	return key
}

func (cat *catalog) Put(name string, conn *libmesh.Connectivity) error {
	if cat.readOnly {
		return errors.Wrap(go4mesh.ErrBadCatalogParam, "catalog is read-only")
	}
	if len(name) == 0 {
		return errors.Wrap(go4mesh.ErrBadCatalogParam, "topology name must not be empty")
	}

	img, err := conn.AppendImage(nil)
	if err != nil {
		return err
	}

	var keyBuf [128]byte
	topoKey := formTopoKey(keyBuf[:0], name)

	isNew := false
	err = cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(topoKey)
		if err == badger.ErrKeyNotFound {
			isNew = true
		} else if err != nil {
			return err
		}
		return txn.Set(topoKey, img)
	})
	if err != nil {
		return errors.Wrapf(go4mesh.ErrIOFailure, "failed to store topology %q: %v", name, err)
	}

	if isNew {
		cat.state.NumTopos++
		cat.stateDirty = true
	}
	return nil
}

func (cat *catalog) Get(name string) (*libmesh.Connectivity, error) {
	var keyBuf [128]byte
	topoKey := formTopoKey(keyBuf[:0], name)

	var conn *libmesh.Connectivity
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(topoKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			conn, err = libmesh.DecodeImage(val)
			return err
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(go4mesh.ErrTopoNotFound, "no topology named %q", name)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (cat *catalog) Drop(name string) error {
	if cat.readOnly {
		return errors.Wrap(go4mesh.ErrBadCatalogParam, "catalog is read-only")
	}

	var keyBuf [128]byte
	topoKey := formTopoKey(keyBuf[:0], name)

	err := cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(topoKey)
		if err != nil {
			return err
		}
		return txn.Delete(topoKey)
	})
	if err == badger.ErrKeyNotFound {
		return errors.Wrapf(go4mesh.ErrTopoNotFound, "no topology named %q", name)
	}
	if err != nil {
		return errors.Wrapf(go4mesh.ErrIOFailure, "failed to drop topology %q: %v", name, err)
	}

	cat.state.NumTopos--
	cat.stateDirty = true
	return nil
}

func (cat *catalog) Select(prefix string, onHit chan<- NamedTopo) {
	var keyBuf [128]byte
	keyPrefix := formTopoKey(keyBuf[:0], prefix)

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         keyPrefix,
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		curItem := it.Item()
		name := string(curItem.Key()[1:])

		err := curItem.Value(func(val []byte) error {
			conn, err := libmesh.DecodeImage(val)
			if err != nil {
				return err
			}
			onHit <- NamedTopo{
				Name: name,
				Topo: conn,
			}
			return nil
		})
		if err != nil {
			panic(err)
		}
	}
}
