// bvhtool is a CLI utility for building and querying voxel cluster indexes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/clusterindex/internal/bvh"
	"github.com/Faultbox/clusterindex/internal/camera"
	"github.com/Faultbox/clusterindex/internal/config"
	"github.com/Faultbox/clusterindex/internal/culling"
	"github.com/Faultbox/clusterindex/internal/logger"
	"github.com/Faultbox/clusterindex/internal/picking"
	"github.com/Faultbox/clusterindex/internal/voxel"
	"github.com/Faultbox/clusterindex/internal/world"
	"github.com/Faultbox/clusterindex/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "gen":
		cmdGen(args)
	case "build", "info":
		cmdBuild(args)
	case "dump":
		cmdDump(args)
	case "locate":
		cmdLocate(args)
	case "cull":
		cmdCull(args)
	case "pick":
		cmdPick(args)
	case "bench":
		cmdBench(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bvhtool - voxel cluster index utility

Usage:
  bvhtool <command> [options]

Commands:
  gen [-seed N] [-o file]                 Generate a terrain cluster grid
  build <grid>                            Build the index and show statistics
  dump <grid> [-o file.json]              Write every index node as JSON
  locate <grid> <x> <y> <z>               Find the leaf enclosing a point
  cull <grid> [-eye x,y,z] [-at x,y,z]    List leaves visible from a camera
  pick <grid> [-eye x,y,z] [-at x,y,z]    Find the first leaf along a ray
  bench [-radius N] [-steps N]            Index a block of clusters and fly over it

Common options:
  -config <file>    Config file (default ./clusterindex.yaml)
  -leaf <n>         Leaf threshold override
  -node-limit <n>   Node budget per cluster
  -debug            Enable debug logging
  -metrics          Print collected metrics on exit

Examples:
  bvhtool gen -seed 7 -o cluster.vxcl
  bvhtool build cluster.vxcl
  bvhtool locate cluster.vxcl 3.5 40 3.5
  bvhtool cull cluster.vxcl -eye 8,90,-30 -at 8,40,8 -sphere`)
}

// setup loads the config and starts logging for a command.
func setup(flags *config.Flags) *config.Config {
	cfg, err := config.Load(flags)
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal(fmt.Errorf("init logger: %w", err))
	}
	return cfg
}

func finish(cfg *config.Config) {
	if cfg.Metrics.Enabled {
		if err := printMetrics(os.Stderr); err != nil {
			logger.Warn("print metrics", zap.Error(err))
		}
	}
	logger.Sync()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logger.Sync()
	os.Exit(1)
}

func buildOptions(cfg *config.Config) []bvh.Option {
	return []bvh.Option{
		bvh.WithLeafThreshold(cfg.Cluster.LeafThreshold),
		bvh.WithAllocator(bvh.NewBudget(cfg.Cluster.NodeLimit)),
	}
}

func loadTree(cfg *config.Config, path string) (*voxel.Grid, *bvh.Tree[struct{}]) {
	grid, err := voxel.LoadGrid(path)
	if err != nil {
		fatal(err)
	}
	tree, err := bvh.Build[struct{}](grid, buildOptions(cfg)...)
	if err != nil {
		fatal(fmt.Errorf("build %s: %w", path, err))
	}
	return grid, tree
}

func cmdGen(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	flags := config.BindFlags(fs)
	seed := fs.Int64("seed", voxel.DefaultTerrain.Seed, "Terrain seed")
	base := fs.Int("base", voxel.DefaultTerrain.BaseHeight, "Mean surface height")
	amp := fs.Int("amp", voxel.DefaultTerrain.Amplitude, "Surface variation")
	water := fs.Int("water", voxel.DefaultTerrain.WaterLevel, "Water level (0 = none)")
	out := fs.String("o", "cluster.vxcl", "Output file")
	fs.Parse(args)

	cfg := setup(flags)
	defer finish(cfg)

	grid, err := voxel.GenerateTerrain(cfg.Dims(), voxel.TerrainParams{
		Seed:       *seed,
		BaseHeight: *base,
		Amplitude:  *amp,
		WaterLevel: *water,
	})
	if err != nil {
		fatal(err)
	}
	if err := voxel.SaveGrid(*out, grid); err != nil {
		fatal(err)
	}

	d := grid.Dims()
	fmt.Printf("Wrote %s (%dx%dx%d, %d solid voxels)\n", *out, d.X, d.Y, d.Z, grid.Count())
}

func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	flags := config.BindFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bvhtool build <grid>")
		os.Exit(1)
	}

	cfg := setup(flags)
	defer finish(cfg)

	start := time.Now()
	grid, tree := loadTree(cfg, fs.Arg(0))
	took := time.Since(start)
	defer tree.Destroy(nil)

	d := grid.Dims()
	fmt.Printf("Grid:      %s\n", fs.Arg(0))
	fmt.Printf("Size:      %dx%dx%d (%d solid)\n", d.X, d.Y, d.Z, grid.Count())
	fmt.Printf("Threshold: %d\n", tree.LeafThreshold())
	fmt.Printf("Nodes:     %d\n", tree.Len())
	fmt.Printf("Leaves:    %d\n", tree.LeafCount())
	fmt.Printf("Depth:     %d (bound %d)\n", tree.MaxDepth(), tree.DepthBound())
	fmt.Printf("Time:      %s\n", took)
}

func cmdLocate(args []string) {
	fs := flag.NewFlagSet("locate", flag.ExitOnError)
	flags := config.BindFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 4 {
		fmt.Fprintln(os.Stderr, "Usage: bvhtool locate <grid> <x> <y> <z>")
		os.Exit(1)
	}

	var p [3]float32
	for i := range p {
		v, err := strconv.ParseFloat(fs.Arg(i+1), 32)
		if err != nil {
			fatal(fmt.Errorf("coordinate %q: %w", fs.Arg(i+1), err))
		}
		p[i] = float32(v)
	}

	cfg := setup(flags)
	defer finish(cfg)

	_, tree := loadTree(cfg, fs.Arg(0))
	defer tree.Destroy(nil)

	id, ok := tree.Locate(p[0], p[1], p[2])
	if !ok {
		fmt.Printf("(%g, %g, %g): not found\n", p[0], p[1], p[2])
		return
	}

	n := tree.Node(id)
	b := n.Box
	fmt.Printf("(%g, %g, %g): leaf %d at depth %d\n", p[0], p[1], p[2], id, tree.Depth(id))
	fmt.Printf("  box    [%d,%d,%d]-[%d,%d,%d]\n", b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ)
	fmt.Printf("  sphere (%.1f, %.1f, %.1f) d=%.2f\n", n.Sphere.X, n.Sphere.Y, n.Sphere.Z, n.Sphere.D)
}

func cmdCull(args []string) {
	fs := flag.NewFlagSet("cull", flag.ExitOnError)
	flags := config.BindFlags(fs)
	eye := fs.String("eye", "8,90,-30", "Camera position x,y,z")
	at := fs.String("at", "8,40,8", "Look-at target x,y,z")
	shift := fs.String("shift", "", "Shift the frustum by dx,dz before culling")
	sphere := fs.Bool("sphere", false, "Test bounding spheres instead of boxes")
	verbose := fs.Bool("v", false, "List every visible leaf")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bvhtool cull <grid> [options]")
		os.Exit(1)
	}

	pos, err := parseVec3(*eye)
	if err != nil {
		fatal(fmt.Errorf("-eye: %w", err))
	}
	target, err := parseVec3(*at)
	if err != nil {
		fatal(fmt.Errorf("-at: %w", err))
	}

	cfg := setup(flags)
	defer finish(cfg)

	_, tree := loadTree(cfg, fs.Arg(0))
	defer tree.Destroy(nil)

	cam := camera.New(cfg.Camera)
	cam.Position = pos
	cam.LookAt(target)

	f := cam.Frustum()
	if *shift != "" {
		dx, dz, err := parsePair(*shift)
		if err != nil {
			fatal(fmt.Errorf("-shift: %w", err))
		}
		f = cam.Shifted(dx, dz)
	}

	leaves, stats := culling.Visible(tree, f, math.Vec3{}, *sphere)

	fmt.Printf("Visible: %d of %d leaves\n", stats.Accepted, tree.LeafCount())
	fmt.Printf("Tested:  %d nodes\n", stats.Tested)
	fmt.Printf("Culled:  %d subtrees\n", stats.Culled)

	if *verbose {
		for _, id := range leaves {
			b := tree.Node(id).Box
			fmt.Printf("  %4d  [%d,%d,%d]-[%d,%d,%d]\n", id, b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ)
		}
	}
}

func cmdPick(args []string) {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	flags := config.BindFlags(fs)
	eye := fs.String("eye", "8,120,8", "Ray origin x,y,z")
	at := fs.String("at", "8,0,8", "Point the ray passes through x,y,z")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bvhtool pick <grid> [options]")
		os.Exit(1)
	}

	from, err := parseVec3(*eye)
	if err != nil {
		fatal(fmt.Errorf("-eye: %w", err))
	}
	to, err := parseVec3(*at)
	if err != nil {
		fatal(fmt.Errorf("-at: %w", err))
	}

	cfg := setup(flags)
	defer finish(cfg)

	_, tree := loadTree(cfg, fs.Arg(0))
	defer tree.Destroy(nil)

	id, dist, ok := picking.Pick(tree, picking.NewRay(from, to), math.Vec3{})
	if !ok {
		fmt.Println("No leaf hit")
		return
	}

	b := tree.Node(id).Box
	fmt.Printf("Leaf %d at distance %.2f\n", id, dist)
	fmt.Printf("  box [%d,%d,%d]-[%d,%d,%d]\n", b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ)
}

func cmdBench(args []string) {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	flags := config.BindFlags(fs)
	radius := fs.Int("radius", 2, "Clusters around the origin on each side")
	steps := fs.Int("steps", 8, "Camera steps")
	stride := fs.Float64("stride", 4, "Distance moved per step along +Z")
	seed := fs.Int64("seed", voxel.DefaultTerrain.Seed, "Base terrain seed")
	fs.Parse(args)

	cfg := setup(flags)
	defer finish(cfg)

	index := world.New[struct{}](cfg.Cluster, nil)
	defer index.Close()

	start := time.Now()
	for cx := -*radius; cx <= *radius; cx++ {
		for cz := -*radius; cz <= *radius; cz++ {
			params := voxel.DefaultTerrain
			params.Seed = *seed + int64(cx*1000+cz)
			grid, err := voxel.GenerateTerrain(cfg.Dims(), params)
			if err != nil {
				fatal(err)
			}
			if err := index.Add(cx, cz, grid); err != nil {
				fatal(err)
			}
		}
	}
	fmt.Printf("Indexed %d clusters in %s\n", index.Len(), time.Since(start))

	d := index.Dims()
	cam := camera.New(cfg.Camera)
	cam.Position = math.Vec3{X: float32(d.X) / 2, Y: float32(d.Y) * 0.6, Z: -float32(*radius * d.Z)}
	cam.SetAngles(0, -0.35)

	base := cam.Frustum()
	var total culling.Stats
	for i := 0; i < *steps; i++ {
		dz := float32(float64(i) * *stride)
		f := base
		if i > 0 {
			f = cam.Shifted(0, dz)
		}

		hits, stats := index.Visible(f, false)
		total.Add(stats)

		fmt.Printf("step %2d  dz=%6.1f  clusters=%3d  leaves=%5d  tested=%5d\n",
			i, dz, len(hits), stats.Accepted, stats.Tested)
	}

	logger.Info("bench finished",
		zap.Int("clusters", index.Len()),
		zap.Int("tested", total.Tested),
		zap.Int("accepted", total.Accepted),
		zap.Int("culled", total.Culled),
	)
}

func parseVec3(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}

	var v [3]float32
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return math.Vec3{}, err
		}
		v[i] = float32(f)
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func parsePair(s string) (float32, float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want a,b, got %q", s)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if err != nil {
		return 0, 0, err
	}
	return float32(a), float32(b), nil
}
