// Stress test comparing tree broad-phase against naive O(n²) pair detection
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"

	"spheretree/internal/broadphase"
	"spheretree/internal/physics"
)

var _ = reflect.TypeOf(config{})

type config struct {
	Counts      []string `cli:""        env:"BVH_STRESS_COUNTS"       help:"Comma separated object counts to test."`
	Steps       int      `cli:""        env:"BVH_STRESS_STEPS"        help:"Simulation steps per object count."`
	Seed        int      `cli:""        env:"BVH_STRESS_SEED"         help:"Random seed."`
	Padding     string   `cli:""        env:"BVH_STRESS_PADDING"      help:"Internal node padding."`
	Validate    bool     `cli:""        env:"BVH_STRESS_VALIDATE"     help:"Validate the tree after every step."`
	LogLevel    string   `cli:""        env:"BVH_STRESS_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	MetricsAddr string   `cli:",hidden" env:"BVH_STRESS_METRICS_ADDR" help:"Serve Prometheus metrics on this address while running."`
	Help        bool     `cli:""        env:"-"                       help:"Show help."`
}

type object struct {
	id       uuid.UUID
	sphere   physics.Sphere
	velocity rl.Vector3
}

type result struct {
	count     int
	treePairs int
	naive     int
	treeTime  time.Duration
	naiveTime time.Duration
	moveTime  time.Duration
	depth     int
	reinserts uint64
}

func main() {
	conf := config{
		Counts:   []string{"100", "500", "1000", "2000", "5000", "10000"},
		Steps:    10,
		Seed:     42,
		Padding:  strconv.FormatFloat(broadphase.DefaultPadding, 'f', -1, 32),
		LogLevel: logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Benchmarks the bounding-sphere tree broad-phase.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	errors.Encoder = json.Marshal

	padding, err := strconv.ParseFloat(conf.Padding, 32)
	if err != nil {
		logs.Fatal(errors.New("invalid padding").
			WithTag("padding", conf.Padding).
			Wrap(err))
	}

	if conf.MetricsAddr != "" {
		go serveMetrics(conf.MetricsAddr)
	}

	fmt.Printf("%7s | %9s | %9s | %10s | %10s | %10s | %5s | %9s\n",
		"objects", "pairs", "naive", "tree", "naive", "move", "depth", "reinserts")

	for _, c := range conf.Counts {
		if ctx.Err() != nil {
			return
		}

		count, err := strconv.Atoi(c)
		if err != nil || count <= 0 {
			logs.Warn(errors.New("skipping invalid object count").
				WithTag("count", c))
			continue
		}

		r, err := run(count, conf.Steps, int64(conf.Seed), float32(padding), conf.Validate)
		if err != nil {
			logs.Fatal(err)
		}
		fmt.Printf("%7d | %9d | %9d | %10s | %10s | %10s | %5d | %9d\n",
			r.count, r.treePairs, r.naive, r.treeTime, r.naiveTime, r.moveTime, r.depth, r.reinserts)
		if r.treePairs != r.naive {
			logs.Warn(errors.New("pair count mismatch").
				WithTag("objects", r.count).
				WithTag("tree", r.treePairs).
				WithTag("naive", r.naive))
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logs.WithTag("addr", addr).Info("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logs.Warn(errors.New("metrics server stopped").Wrap(err))
	}
}

func run(count, steps int, seed int64, padding float32, validate bool) (result, error) {
	rnd := rand.New(rand.NewSource(seed))

	// Spawn in a cube, size scales with count to keep density reasonable
	spawnSize := float32(50) + float32(count)/100
	index := broadphase.NewIndex(fmt.Sprintf("stress_%d", count), padding)

	objects := make([]object, count)
	for i := range objects {
		center := rl.Vector3{
			X: rnd.Float32()*spawnSize - spawnSize/2,
			Y: rnd.Float32()*spawnSize - spawnSize/2,
			Z: rnd.Float32()*spawnSize - spawnSize/2,
		}
		radius := 0.5 + rnd.Float32()*0.5

		id, err := index.Add(center, radius)
		if err != nil {
			return result{}, err
		}
		objects[i] = object{
			id:     id,
			sphere: physics.NewSphere(center, radius),
			velocity: rl.Vector3{
				X: rnd.Float32()*0.2 - 0.1,
				Y: rnd.Float32()*0.2 - 0.1,
				Z: rnd.Float32()*0.2 - 0.1,
			},
		}
	}

	r := result{count: count}
	for step := 0; step < steps; step++ {
		moveStart := time.Now()
		for i := range objects {
			o := &objects[i]
			// Every 50th object teleports, forcing a reinsert.
			if i%50 == step%50 {
				o.sphere.Center = rl.Vector3{
					X: rnd.Float32()*spawnSize - spawnSize/2,
					Y: rnd.Float32()*spawnSize - spawnSize/2,
					Z: rnd.Float32()*spawnSize - spawnSize/2,
				}
			} else {
				o.sphere.Center = rl.Vector3Add(o.sphere.Center, o.velocity)
			}
			if err := index.Move(o.id, o.sphere.Center, o.sphere.Radius); err != nil {
				return result{}, err
			}
		}
		r.moveTime += time.Since(moveStart)

		if validate {
			if err := index.Validate(); err != nil {
				return result{}, errors.New("tree invalid after step").
					WithTag("step", step).
					Wrap(err)
			}
		}

		treeStart := time.Now()
		r.treePairs = len(index.CandidatePairs())
		r.treeTime += time.Since(treeStart)

		naiveStart := time.Now()
		r.naive = naivePairs(objects)
		r.naiveTime += time.Since(naiveStart)
	}

	if steps > 0 {
		r.treeTime /= time.Duration(steps)
		r.naiveTime /= time.Duration(steps)
		r.moveTime /= time.Duration(steps)
	}
	stats := index.Stats()
	r.depth = stats.Depth
	r.reinserts = stats.Reinserts

	logs.WithTag("objects", count).
		WithTag("leaves", stats.Leaves).
		WithTag("internal", stats.Internal).
		WithTag("depth", stats.Depth).
		Debug("stress run done")
	return r, nil
}

func naivePairs(objects []object) int {
	n := 0
	for i := 0; i < len(objects); i++ {
		for j := i + 1; j < len(objects); j++ {
			if objects[i].sphere.Overlaps(objects[j].sphere) {
				n++
			}
		}
	}
	return n
}
