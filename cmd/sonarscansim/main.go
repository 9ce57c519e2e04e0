package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/alitto/pond"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/urfave/cli/v2"

	"github.com/PH-19/sonarscan-sim/internal/engine"
	"github.com/PH-19/sonarscan-sim/internal/evalmetrics"
	"github.com/PH-19/sonarscan-sim/internal/jsonutil"
	"github.com/PH-19/sonarscan-sim/internal/scenario"
)

// parseStrategies turns the --strategy flag value into the set of
// strategies a run should cover.
func parseStrategies(name string) ([]engine.Strategy, error) {
	switch name {
	case "naive":
		return []engine.Strategy{engine.Naive}, nil
	case "optimized":
		return []engine.Strategy{engine.Optimized}, nil
	case "both":
		return []engine.Strategy{engine.Naive, engine.Optimized}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want naive, optimized, or both)", name)
	}
}

// runResult is one strategy's final metrics snapshot for a single seed.
type runResult struct {
	Seed     uint32              `json:"seed"`
	Strategy string              `json:"strategy"`
	Metrics  evalmetrics.EvalMetrics `json:"metrics"`
}

// runScenario constructs an engine for the given strategy and seed, applies
// a scenario (or spawns randomSwimmers swimmers if scenarioFile is empty),
// ticks it to completion, and returns the final windowed metrics snapshot.
func runScenario(strategy engine.Strategy, seed uint32, scenarioFile string, randomSwimmers int, durationSec, dt, window float64) (runResult, error) {
	eng := engine.New(strategy, seed)

	if scenarioFile != "" {
		sc, err := scenario.Load(scenarioFile)
		if err != nil {
			return runResult{}, err
		}
		sc.Apply(eng)
	} else {
		for i := 0; i < randomSwimmers; i++ {
			eng.AddRandomSwimmer()
		}
	}

	for t := 0.0; t < durationSec; t += dt {
		eng.Tick(dt)
	}

	return runResult{
		Seed:     seed,
		Strategy: strategy.String(),
		Metrics:  eng.Metrics(window),
	}, nil
}

func runCommand(cCtx *cli.Context) error {
	strategies, err := parseStrategies(cCtx.String("strategy"))
	if err != nil {
		return err
	}

	seed := uint32(cCtx.Uint64("seed"))
	var results []runResult
	for _, strat := range strategies {
		log.Println("Running strategy", strat, "seed", seed)
		res, err := runScenario(strat, seed, cCtx.String("scenario"), cCtx.Int("swimmers"), cCtx.Float64("duration"), cCtx.Float64("dt"), cCtx.Float64("window"))
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	out, err := jsonutil.JsonIndentDumps(results)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// parseSeedList parses a comma-separated list of seeds, or an "a-b" range.
func parseSeedList(spec string) ([]uint32, error) {
	if strings.Contains(spec, "-") && !strings.Contains(spec, ",") {
		parts := strings.SplitN(spec, "-", 2)
		lo, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, err
		}
		var seeds []uint32
		for s := lo; s <= hi; s++ {
			seeds = append(seeds, uint32(s))
		}
		return seeds, nil
	}

	var seeds []uint32
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, uint32(v))
	}
	return seeds, nil
}

// sweepCommand fans runScenario out across a fixed worker pool sized
// runtime.NumCPU()*2, matching convert_gsf_list's pool sizing exactly.
func sweepCommand(cCtx *cli.Context) error {
	strategies, err := parseStrategies(cCtx.String("strategy"))
	if err != nil {
		return err
	}
	seeds, err := parseSeedList(cCtx.String("seeds"))
	if err != nil {
		return err
	}
	log.Println("Sweeping", len(seeds), "seeds across", len(strategies), "strategies")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	resultsCh := make(chan runResult, len(seeds)*len(strategies))
	for _, seed := range seeds {
		for _, strat := range strategies {
			seed, strat := seed, strat
			pool.Submit(func() {
				res, err := runScenario(strat, seed, cCtx.String("scenario"), cCtx.Int("swimmers"), cCtx.Float64("duration"), cCtx.Float64("dt"), cCtx.Float64("window"))
				if err != nil {
					log.Println("seed", seed, strat, "failed:", err)
					return
				}
				resultsCh <- res
			})
		}
	}
	pool.StopAndWait()
	close(resultsCh)

	var results []runResult
	for res := range resultsCh {
		results = append(results, res)
	}

	out, err := jsonutil.JsonIndentDumps(results)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// metricsHistorySample is one periodic snapshot taken during an export run,
// tagged with the sim-time bucket it was taken at.
type metricsHistorySample struct {
	TimeSec float64
	Metrics evalmetrics.EvalMetrics
}

// exportCommand runs one engine to completion, sampling metrics every
// --sample-interval seconds, and writes the resulting history to a TileDB
// sparse array, following tiledb.go's group/array/member pattern: NewContext
// -> NewGroup -> Create -> Open(WRITE) -> array Create/Open -> AddMember.
func exportCommand(cCtx *cli.Context) error {
	strategies, err := parseStrategies(cCtx.String("strategy"))
	if err != nil {
		return err
	}
	if len(strategies) != 1 {
		return errors.New("export: pick exactly one strategy (naive or optimized)")
	}
	strategy := strategies[0]
	seed := uint32(cCtx.Uint64("seed"))
	dt := cCtx.Float64("dt")
	duration := cCtx.Float64("duration")
	sampleInterval := cCtx.Float64("sample-interval")
	window := cCtx.Float64("window")

	eng := engine.New(strategy, seed)
	if path := cCtx.String("scenario"); path != "" {
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}
		sc.Apply(eng)
	} else {
		for i := 0; i < cCtx.Int("swimmers"); i++ {
			eng.AddRandomSwimmer()
		}
	}

	var history []metricsHistorySample
	nextSample := 0.0
	for t := 0.0; t < duration; t += dt {
		eng.Tick(dt)
		if eng.Time >= nextSample {
			history = append(history, metricsHistorySample{TimeSec: eng.Time, Metrics: eng.Metrics(window)})
			nextSample += sampleInterval
		}
	}

	return writeMetricsHistoryTileDB(cCtx.String("out"), strategy, seed, history)
}

func writeMetricsHistoryTileDB(grpURI string, strategy engine.Strategy, seed uint32, history []metricsHistorySample) error {
	config, err := tiledb.NewConfig()
	if err != nil {
		return err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return err
	}
	defer ctx.Free()

	grp, err := tiledb.NewGroup(ctx, grpURI)
	if err != nil {
		return err
	}
	defer grp.Free()

	if err := grp.Create(); err != nil {
		return errors.Join(err, errors.New("error creating tiledb group"))
	}
	if err := grp.Open(tiledb.TILEDB_WRITE); err != nil {
		return errors.Join(err, errors.New("error opening tiledb group in write mode"))
	}
	defer grp.Close()

	jd := julian.TimeToJD(time.Now())
	meta, err := jsonutil.JsonIndentDumps(struct {
		Seed       uint32
		Strategy   string
		ExportedJD float64
		Samples    int
	}{seed, strategy.String(), float64(jd), len(history)})
	if err != nil {
		return err
	}
	if err := grp.PutMetadata("Run-Information", meta); err != nil {
		return err
	}

	arrayName := "MetricsHistory.tiledb"
	arrayURI := grpURI + "/" + arrayName
	if err := writeHistoryArray(ctx, arrayURI, history); err != nil {
		return err
	}
	if err := grp.AddMember(arrayName, "MetricsHistory", true); err != nil {
		return errors.Join(err, errors.New("error adding metrics history to group"))
	}

	log.Println("Wrote", len(history), "metric samples to", grpURI)
	return nil
}

func writeHistoryArray(ctx *tiledb.Context, arrayURI string, history []metricsHistorySample) error {
	dom, err := tiledb.NewDomain(ctx)
	if err != nil {
		return err
	}
	defer dom.Free()

	dim, err := tiledb.NewDimension(ctx, "time_bucket", tiledb.TILEDB_INT64, []int64{0, int64(len(history)) + 1}, int64(1))
	if err != nil {
		return err
	}
	defer dim.Free()
	if err := dom.AddDimensions(dim); err != nil {
		return err
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_SPARSE)
	if err != nil {
		return err
	}
	defer schema.Free()
	if err := schema.SetDomain(dom); err != nil {
		return err
	}

	attr, err := tiledb.NewAttribute(ctx, "metrics_json", tiledb.TILEDB_STRING_UTF8)
	if err != nil {
		return err
	}
	defer attr.Free()
	if err := attr.SetCellValNum(tiledb.TILEDB_VAR_NUM); err != nil {
		return err
	}
	if err := schema.AddAttributes(attr); err != nil {
		return err
	}

	array, err := tiledb.NewArray(ctx, arrayURI)
	if err != nil {
		return err
	}
	defer array.Free()
	if err := array.Create(schema); err != nil {
		return err
	}
	if err := array.Open(tiledb.TILEDB_WRITE); err != nil {
		return err
	}
	defer array.Close()

	buckets := make([]int64, len(history))
	blobs := make([]byte, 0)
	offsets := make([]uint64, len(history))
	for i, h := range history {
		buckets[i] = int64(i)
		jsn, err := json.Marshal(h)
		if err != nil {
			return err
		}
		offsets[i] = uint64(len(blobs))
		blobs = append(blobs, jsn...)
	}

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return err
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_UNORDERED); err != nil {
		return err
	}
	if _, err := query.SetDataBuffer("time_bucket", buckets); err != nil {
		return err
	}
	if _, err := query.SetDataBuffer("metrics_json", blobs); err != nil {
		return err
	}
	if _, err := query.SetOffsetsBuffer("metrics_json", offsets); err != nil {
		return err
	}
	if err := query.Submit(); err != nil {
		return err
	}
	return query.Finalize()
}

func main() {
	app := &cli.App{
		Name:  "sonarscansim",
		Usage: "deterministic multi-sonar collaborative scanning simulation",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "tick one or both engines and print a metrics snapshot",
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "seed", Value: 1337, Usage: "RNG seed shared by every engine constructed this run."},
					&cli.StringFlag{Name: "strategy", Value: "both", Usage: "naive, optimized, or both."},
					&cli.StringFlag{Name: "scenario", Usage: "path to a scenario JSON file; overrides --swimmers."},
					&cli.IntFlag{Name: "swimmers", Value: 4, Usage: "number of randomly-spawned swimmers when no --scenario is given."},
					&cli.Float64Flag{Name: "duration", Value: 30, Usage: "simulated seconds to run."},
					&cli.Float64Flag{Name: "dt", Value: 0.05, Usage: "tick size in seconds; clamped to 0.1s by convention."},
					&cli.Float64Flag{Name: "window", Value: 10, Usage: "metrics sliding-window size in seconds."},
				},
				Action: runCommand,
			},
			{
				Name:  "sweep",
				Usage: "run a batch of seeds across a fixed worker pool",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "seeds", Value: "0-9", Usage: "comma list (1,2,3) or range (0-9) of seeds."},
					&cli.StringFlag{Name: "strategy", Value: "both", Usage: "naive, optimized, or both."},
					&cli.StringFlag{Name: "scenario", Usage: "path to a scenario JSON file; overrides --swimmers."},
					&cli.IntFlag{Name: "swimmers", Value: 4, Usage: "number of randomly-spawned swimmers when no --scenario is given."},
					&cli.Float64Flag{Name: "duration", Value: 30, Usage: "simulated seconds to run, per seed."},
					&cli.Float64Flag{Name: "dt", Value: 0.05, Usage: "tick size in seconds."},
					&cli.Float64Flag{Name: "window", Value: 10, Usage: "metrics sliding-window size in seconds."},
				},
				Action: sweepCommand,
			},
			{
				Name:  "export",
				Usage: "run one engine and write its metrics history to a TileDB array",
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "seed", Value: 1337},
					&cli.StringFlag{Name: "strategy", Value: "optimized", Usage: "naive or optimized."},
					&cli.StringFlag{Name: "scenario", Usage: "path to a scenario JSON file; overrides --swimmers."},
					&cli.IntFlag{Name: "swimmers", Value: 4},
					&cli.Float64Flag{Name: "duration", Value: 60},
					&cli.Float64Flag{Name: "dt", Value: 0.05},
					&cli.Float64Flag{Name: "window", Value: 10},
					&cli.Float64Flag{Name: "sample-interval", Value: 1, Usage: "seconds between metrics snapshots in the exported history."},
					&cli.StringFlag{Name: "out", Required: true, Usage: "output TileDB group URI."},
				},
				Action: exportCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
