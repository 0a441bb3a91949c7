package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/segmentio/encoding/json"

	"github.com/Faultbox/clusterindex/internal/bvh"
	"github.com/Faultbox/clusterindex/internal/config"
)

type dumpTree struct {
	Dims      [3]int     `json:"dims"`
	Threshold int        `json:"leaf_threshold"`
	Leaves    int        `json:"leaves"`
	MaxDepth  int        `json:"max_depth"`
	Nodes     []dumpNode `json:"nodes"`
}

type dumpNode struct {
	ID     bvh.NodeID `json:"id"`
	Depth  int        `json:"depth"`
	Axis   string     `json:"axis"`
	Parent bvh.NodeID `json:"parent"`
	Left   bvh.NodeID `json:"left,omitempty"`
	Right  bvh.NodeID `json:"right,omitempty"`
	Min    [3]uint8   `json:"min"`
	Max    [3]uint8   `json:"max"`
	Sphere [4]float32 `json:"sphere"`
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	flags := config.BindFlags(fs)
	out := fs.String("o", "", "Output file (default stdout)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bvhtool dump <grid> [-o file.json]")
		os.Exit(1)
	}

	cfg := setup(flags)
	defer finish(cfg)

	_, tree := loadTree(cfg, fs.Arg(0))
	defer tree.Destroy(nil)

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		w = f
	}

	if err := writeDump(w, tree); err != nil {
		fatal(err)
	}
}

func writeDump[T any](w io.Writer, tree *bvh.Tree[T]) error {
	d := tree.Dims()
	doc := dumpTree{
		Dims:      [3]int{d.X, d.Y, d.Z},
		Threshold: tree.LeafThreshold(),
		Leaves:    tree.LeafCount(),
		MaxDepth:  tree.MaxDepth(),
		Nodes:     make([]dumpNode, 0, tree.Len()),
	}

	tree.Walk(func(id bvh.NodeID, n *bvh.Node[T], depth int) bool {
		dn := dumpNode{
			ID:     id,
			Depth:  depth,
			Axis:   n.Axis.String(),
			Parent: n.Parent,
			Min:    [3]uint8{n.Box.MinX, n.Box.MinY, n.Box.MinZ},
			Max:    [3]uint8{n.Box.MaxX, n.Box.MaxY, n.Box.MaxZ},
			Sphere: [4]float32{n.Sphere.X, n.Sphere.Y, n.Sphere.Z, n.Sphere.D},
		}
		if !n.IsLeaf() {
			dn.Left, dn.Right = n.Left, n.Right
		}
		doc.Nodes = append(doc.Nodes, dn)
		return true
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
