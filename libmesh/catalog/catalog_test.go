package catalog

import (
	"path"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forest-structures/go4mesh/go4mesh"
	"github.com/forest-structures/go4mesh/libmesh"
)

func openTestCatalog(t *testing.T, opts go4mesh.CatalogOpts) (Catalog, go4mesh.CatalogContext) {
	t.Helper()
	ctx := go4mesh.NewCatalogContext()
	cat, err := OpenCatalog(ctx, opts)
	require.NoError(t, err)
	return cat, ctx
}

func TestCatalogPutGet(t *testing.T) {
	cat, ctx := openTestCatalog(t, go4mesh.CatalogOpts{})
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	fixtures := map[string]*libmesh.Connectivity{
		"unitsquare": libmesh.NewUnitSquare(),
		"periodic":   libmesh.NewPeriodic(),
		"star":       libmesh.NewStar(),
	}
	for name, conn := range fixtures {
		require.NoError(t, cat.Put(name, conn))
	}
	require.EqualValues(t, 3, cat.NumTopos())

	for name, conn := range fixtures {
		got, err := cat.Get(name)
		require.NoError(t, err, name)
		require.True(t, conn.IsEqual(got), name)
		got.Reclaim()
	}

	_, err := cat.Get("no-such-topo")
	require.ErrorIs(t, err, go4mesh.ErrTopoNotFound)

	// Replacing an entry must not inflate the count.
	require.NoError(t, cat.Put("periodic", libmesh.NewPeriodic()))
	require.EqualValues(t, 3, cat.NumTopos())

	require.NoError(t, cat.Close())
}

func TestCatalogRejectsBadPut(t *testing.T) {
	cat, ctx := openTestCatalog(t, go4mesh.CatalogOpts{})
	defer func() {
		cat.Close()
		ctx.Close()
		<-ctx.Done()
	}()

	require.ErrorIs(t, cat.Put("", libmesh.NewUnitSquare()), go4mesh.ErrBadCatalogParam)

	broken := libmesh.NewPeriodic()
	broken.TreeToFace[0] = 8
	require.ErrorIs(t, cat.Put("broken", broken), go4mesh.ErrIntegrity)
	require.EqualValues(t, 0, cat.NumTopos())
}

func TestCatalogDrop(t *testing.T) {
	cat, ctx := openTestCatalog(t, go4mesh.CatalogOpts{})
	defer func() {
		cat.Close()
		ctx.Close()
		<-ctx.Done()
	}()

	require.NoError(t, cat.Put("moebius", libmesh.NewMoebius()))
	require.NoError(t, cat.Drop("moebius"))
	require.EqualValues(t, 0, cat.NumTopos())

	_, err := cat.Get("moebius")
	require.ErrorIs(t, err, go4mesh.ErrTopoNotFound)
	require.ErrorIs(t, cat.Drop("moebius"), go4mesh.ErrTopoNotFound)
}

func TestCatalogSelect(t *testing.T) {
	cat, ctx := openTestCatalog(t, go4mesh.CatalogOpts{})
	defer func() {
		cat.Close()
		ctx.Close()
		<-ctx.Done()
	}()

	names := []string{"wrap/periodic", "wrap/rotwrap", "corner", "star"}
	builds := []*libmesh.Connectivity{
		libmesh.NewPeriodic(), libmesh.NewRotWrap(), libmesh.NewCorner(), libmesh.NewStar(),
	}
	for i, name := range names {
		require.NoError(t, cat.Put(name, builds[i]))
	}

	selectNames := func(prefix string) []string {
		onHit := make(chan NamedTopo, 4)
		go func() {
			cat.Select(prefix, onHit)
			close(onHit)
		}()
		var got []string
		for hit := range onHit {
			require.True(t, hit.Topo.IsValid(), hit.Name)
			got = append(got, hit.Name)
			hit.Topo.Reclaim()
		}
		return got
	}

	all := selectNames("")
	wantAll := append([]string{}, names...)
	sort.Strings(wantAll)
	require.Equal(t, wantAll, all)

	require.Equal(t, []string{"wrap/periodic", "wrap/rotwrap"}, selectNames("wrap/"))
	require.Empty(t, selectNames("zzz"))
}

func TestCatalogPersistence(t *testing.T) {
	dbPath := path.Join(t.TempDir(), "topos")

	cat, ctx := openTestCatalog(t, go4mesh.CatalogOpts{DbPathName: dbPath})
	conn := libmesh.NewCorner()
	require.NoError(t, cat.Put("corner", conn))
	require.NoError(t, cat.Close())
	ctx.Close()
	<-ctx.Done()

	cat, ctx = openTestCatalog(t, go4mesh.CatalogOpts{DbPathName: dbPath, ReadOnly: true})
	defer func() {
		cat.Close()
		ctx.Close()
		<-ctx.Done()
	}()

	require.True(t, cat.IsReadOnly())
	require.EqualValues(t, 1, cat.NumTopos())

	got, err := cat.Get("corner")
	require.NoError(t, err)
	require.True(t, conn.IsEqual(got))
	got.Reclaim()

	require.ErrorIs(t, cat.Put("more", libmesh.NewStar()), go4mesh.ErrBadCatalogParam)
	require.ErrorIs(t, cat.Drop("corner"), go4mesh.ErrBadCatalogParam)
}

func TestCatalogReadOnlyNeedsPath(t *testing.T) {
	ctx := go4mesh.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	_, err := OpenCatalog(ctx, go4mesh.CatalogOpts{ReadOnly: true})
	require.ErrorIs(t, err, go4mesh.ErrBadCatalogParam)
}
