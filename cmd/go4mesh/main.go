package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/plan-systems/klog"

	"github.com/forest-structures/go4mesh/go4mesh"
	"github.com/forest-structures/go4mesh/libmesh"
	"github.com/forest-structures/go4mesh/libmesh/catalog"
)

func main() {

	configPath := flag.String("config", "", "pathname of an optional yaml config file")
	checkPath := flag.String("check", "", "load the topology image at the given pathname, validate it, and print a summary")
	storeName := flag.String("store", "", "with -check, also store the topology in the catalog under the given name")

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	config, err := LoadConfig(*configPath)
	if err != nil {
		klog.Fatalf("%v", err)
	}
	fset.Set("v", strconv.Itoa(config.LogVerbosity))

	if len(*checkPath) > 0 {
		checkTopoFile(config, *checkPath, *storeName)
	} else {
		go_gpython(flag.Arg(0))
	}

	klog.Flush()
}

func checkTopoFile(config *Config, pathname string, storeName string) {
	conn, err := libmesh.Load(pathname)
	if err != nil {
		klog.Fatalf("%s: %v", pathname, err)
	}
	defer conn.Reclaim()

	conn.WriteAsString(os.Stdout)

	if len(storeName) > 0 {
		ctx := go4mesh.NewCatalogContext()
		cat, err := catalog.OpenCatalog(ctx, go4mesh.CatalogOpts{
			DbPathName: config.CatalogPath,
		})
		if err != nil {
			klog.Fatalf("failed to open catalog: %v", err)
		}
		if err = cat.Put(storeName, conn); err != nil {
			klog.Fatalf("failed to store %q: %v", storeName, err)
		}
		klog.Infof("stored %q in catalog (%d topologies)", storeName, cat.NumTopos())
		cat.Close()
		ctx.Close()
		<-ctx.Done()
	}
}
