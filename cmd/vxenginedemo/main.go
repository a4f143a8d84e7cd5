// Command vxenginedemo is a thin CLI wrapper around the engine
// package: it reads a database path and a query vector from flags,
// runs create/insert/search against a collection, and pretty-prints
// the result. It is not part of the core's import graph — engine,
// planner, executor, and snapshot never import it.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/vxengine/vxengine/engine"
	"github.com/vxengine/vxengine/model"
	"github.com/vxengine/vxengine/util"
)

type options struct {
	Database   string `short:"d" long:"database" description:"SQLite database file (':memory:' for a scratch DB)" default:":memory:"`
	Collection string `short:"c" long:"collection" description:"collection name" required:"true"`
	Dimension  uint16 `long:"dim" description:"vector dimension" default:"3"`
	Vector     string `long:"vector" description:"comma-separated query/insert vector" required:"true"`
	TopK       int64  `long:"top-k" description:"results to return on search" default:"10"`
	Insert     bool   `long:"insert" description:"insert the vector under --id instead of searching"`
	ID         uint64 `long:"id" description:"rowid for --insert"`
	Help       bool   `long:"help" description:"show this help"`
}

func main() {
	util.InitSlog()

	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options]"
	if _, err := parser.Parse(); err != nil {
		log.Fatal(err)
	}
	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	vector, err := parseVector(opts.Vector)
	if err != nil {
		log.Fatalf("parsing --vector: %v", err)
	}

	cfg := engine.DefaultConfig()
	cfg.DatabasePath = opts.Database

	e, err := engine.Open(cfg)
	if err != nil {
		log.Fatalf("opening engine: %v", err)
	}
	defer e.Close()

	ctx := context.Background()

	exists, err := e.CollectionExists(ctx, opts.Collection)
	if err != nil {
		log.Fatalf("checking collection: %v", err)
	}
	if !exists {
		collCfg, err := model.NewCollectionConfigBuilder().
			CollectionName(opts.Collection).
			VectorDimension(opts.Dimension).
			Build()
		if err != nil {
			log.Fatalf("building collection config: %v", err)
		}
		if err := e.CreateCollection(ctx, collCfg); err != nil {
			log.Fatalf("creating collection: %v", err)
		}
	}

	if opts.Insert {
		point, err := model.NewInsertPointBuilder().
			CollectionName(opts.Collection).
			ID(opts.ID).
			Vector(vector).
			Build()
		if err != nil {
			log.Fatalf("building insert point: %v", err)
		}
		if err := e.Insert(ctx, point); err != nil {
			log.Fatalf("inserting: %v", err)
		}
		fmt.Printf("inserted rowid %d into %s\n", opts.ID, opts.Collection)
		return
	}

	search, err := model.NewSearchPointBuilder().
		CollectionName(opts.Collection).
		Vector(vector).
		TopK(opts.TopK).
		Build()
	if err != nil {
		log.Fatalf("building search point: %v", err)
	}

	results, err := e.Search(ctx, search)
	if err != nil {
		log.Fatalf("searching: %v", err)
	}
	pp.Println(util.TransformSlice(results, formatResultRow))
}

// formatResultRow renders one search result's attribute map as
// "col=val" pairs in sorted column order, so repeated runs against the
// same data print identically instead of following Go's randomized map
// iteration order.
func formatResultRow(row map[string]string) string {
	parts := make([]string, 0, len(row))
	for col, val := range util.CanonicalMapIter(row) {
		parts = append(parts, fmt.Sprintf("%s=%s", col, val))
	}
	return strings.Join(parts, " ")
}

func parseVector(raw string) ([]float32, error) {
	parts := strings.Split(raw, ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(v))
	}
	return out, nil
}
