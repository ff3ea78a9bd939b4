// Command simulate runs a discrete-event simulation of the Active
// Reputation Set witness-selection mechanism: it initializes an ARS
// (from a zero-reputation population, a roster file, or a randomly
// generated one), feeds it a stream of blocks (recorded or synthetic),
// and reports per-identity participation statistics once the run ends.
package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/rawblock/ars-simulator/internal/ars"
	"github.com/rawblock/ars-simulator/internal/ingest"
	"github.com/rawblock/ars-simulator/internal/monitor"
	"github.com/rawblock/ars-simulator/internal/stats"
	"github.com/rawblock/ars-simulator/pkg/models"
	flag "github.com/spf13/pflag"
)

func main() {
	log.Println("Starting ARS witness-selection simulator...")

	var (
		identities          = flag.Int("identities", 100, "number of identities for a zero-reputation or random ARS")
		balance             = flag.Int64("balance", 1000, "starting collateral balance per identity")
		collateralLocked    = flag.Int64("collateral-locked", 100, "epochs a spent collateral UTXO stays locked")
		createRandomARS     = flag.Bool("create-random-ars", false, "initialize a randomly generated ARS instead of zero-reputation")
		maxReputation       = flag.Int64("max-reputation", 1000, "exclusive upper bound on a randomly sampled identity's reputation")
		zeroReputationRatio = flag.Float64("zero-reputation-ratio", 0.2, "fraction of randomly generated identities that start at zero reputation")
		avgDataRequests     = flag.Float64("avg-data-requests", 5, "mean data requests per block when generating synthetically")
		stdDataRequests     = flag.Float64("std-data-requests", 2, "standard deviation of data requests per block when generating synthetically")
		witnesses           = flag.Int("witnesses", 5, "committee size per data request when generating synthetically")
		collateral          = flag.Int64("collateral", 10, "collateral required per witness when generating synthetically")
		offsetEpochs        = flag.Int64("offset-epochs", 0, "first simulated epoch number")
		warmupEpochs        = flag.Int64("warmup-epochs", 0, "epochs run before clearing stats and starting the measured run")
		simulationEpochs    = flag.Int64("simulation-epochs", 1000, "measured epochs run after warmup")
		arsFile             = flag.String("ars-file", "", "roster file (name,reputation lines; bz2 auto-detected) to initialize the ARS from")
		dataRequestsFile    = flag.String("data-requests-file", "", "recorded epoch,hash,witnesses,collateral_in_nano_wit CSV stream")
		seed                = flag.Int64("seed", time.Now().UnixNano(), "RNG seed; fixed for reproducible replays")
		approximate         = flag.Bool("approximate", true, "use the approximate (single-uniform) eligibility draw instead of the exact order-statistic one")
		httpAddr            = flag.String("http", "", "optional address (e.g. :8089) to serve live progress on; empty disables the monitor")
		statsDir            = flag.String("stats-dir", "results", "directory the rotated sim.stats.N report is written to")
		verbose             = flag.BoolP("verbose", "v", false, "enable per-identity debug logging")
	)
	flag.Parse()

	ars.Debug = *verbose
	rng := rand.New(rand.NewSource(*seed))
	log.Printf("seed=%d", *seed)

	a := initializeARS(rng, *identities, *balance, *collateralLocked, *createRandomARS, *maxReputation, *zeroReputationRatio, *arsFile, *warmupEpochs)

	var blockSource ars.BlockFunc
	if *dataRequestsFile != "" {
		recorded, err := ingest.LoadDataRequestsFile(*dataRequestsFile)
		if err != nil {
			log.Fatalf("FATAL: failed to load data requests file: %v", err)
		}
		blockSource = recordedBlockSource(recorded)
	} else {
		synth := ingest.NewSyntheticBlockSource(rand.New(rand.NewSource(rng.Int63())), *avgDataRequests, *stdDataRequests)
		blockSource = syntheticBlockSource(synth, *witnesses, *collateral)
	}

	var mon *monitor.Monitor
	if *httpAddr != "" {
		mon = monitor.New()
		go func() {
			r := monitor.SetupRouter(mon, a)
			log.Printf("[monitor] serving progress on %s", *httpAddr)
			if err := r.Run(*httpAddr); err != nil && err != http.ErrServerClosed {
				log.Printf("[monitor] server stopped: %v", err)
			}
		}()
	}

	var blocksProcessed int64
	onEpoch := func(epoch int64, result *ars.EpochResult) {
		blocksProcessed++
		for _, req := range result.Requests {
			if !req.Success {
				log.Printf("[EpochDriver] WARNING: data request failed at epoch %d (insufficient_collateral=%d)", epoch, len(req.InsufficientCollateral))
			}
		}
		if mon != nil {
			mon.Publish(a, result, blocksProcessed)
		}
	}

	if *warmupEpochs > 0 {
		log.Printf("[EpochDriver] running %d warmup epochs", *warmupEpochs)
		a.Run(rng, *offsetEpochs, *warmupEpochs, *approximate, blockSource, onEpoch)
		a.ClearStats()
	}

	measuredStart := *offsetEpochs + *warmupEpochs
	log.Printf("[EpochDriver] running %d measured epochs", *simulationEpochs)
	a.Run(rng, measuredStart, *simulationEpochs, *approximate, blockSource, onEpoch)

	if err := a.CheckInvariants(); err != nil {
		log.Fatalf("FATAL: invariant violation at end of run: %v", err)
	}

	report := stats.Collect(a)
	f, err := stats.OpenRotatedStatsFile(*statsDir)
	if err != nil {
		log.Fatalf("FATAL: failed to open stats output file: %v", err)
	}
	defer f.Close()
	if err := stats.Fprint(f, report); err != nil {
		log.Fatalf("FATAL: failed to write stats report: %v", err)
	}
	log.Printf("simulation complete: %d blocks processed, report written to %s", blocksProcessed, f.Name())
}

// initializeARS picks one of the three mutually exclusive initialization
// modes spec.md §6 describes. Priority order when more than one selection
// flag is set: --create-random-ars, then --ars-file, then zero-reputation
// — matching the original simulator.py's `if create_random_ars: ... elif
// ars_file: ...` precedence.
func initializeARS(rng *rand.Rand, identities int, balance, collateralLocked int64, createRandom bool, maxReputation int64, zeroRatio float64, arsFile string, warmupEpochs int64) *ars.ARS {
	a := ars.New(collateralLocked)

	switch {
	case createRandom:
		a.LoadRandom(rng, identities, balance, maxReputation, zeroRatio)
		log.Printf("[EpochDriver] generated %d random identities", identities)
	case arsFile != "":
		if warmupEpochs < collateralLocked {
			log.Printf("[EpochDriver] WARNING: warmup-epochs (%d) is shorter than collateral-locked (%d); "+
				"the roster's initial collateral/reputation distribution may not have stabilized before stats collection begins", warmupEpochs, collateralLocked)
		}
		entries, err := ingest.LoadRosterFile(arsFile)
		if err != nil {
			log.Fatalf("FATAL: failed to load roster file: %v", err)
		}
		a.LoadRoster(rng, entries, balance)
		log.Printf("[EpochDriver] loaded %d identities from roster %s", len(entries), arsFile)
	default:
		names := ars.GenerateIdentityNames(identities)
		a.LoadZeroReputation(names, balance)
		log.Printf("[EpochDriver] generated %d zero-reputation identities", identities)
	}
	return a
}

// recordedBlockSource adapts a parsed recorded stream into a BlockFunc,
// normalizing each request's nano-wit collateral into the engine's
// plain-integer collateral units at the point it crosses into the ARS
// (spec.md §6).
func recordedBlockSource(recorded map[int64][]models.DataRequest) ars.BlockFunc {
	return func(epoch int64) []ars.RequestSpec {
		requests := recorded[epoch]
		specs := make([]ars.RequestSpec, len(requests))
		for i, r := range requests {
			specs[i] = ars.RequestSpec{Witnesses: r.Witnesses, Collateral: r.Collateral.ToCollateralUnits()}
		}
		return specs
	}
}

// syntheticBlockSource adapts a SyntheticBlockSource into a BlockFunc:
// every request in a synthetically generated block shares the same
// (witnesses, collateral) shape from the CLI flags.
func syntheticBlockSource(src *ingest.SyntheticBlockSource, witnesses int, collateral int64) ars.BlockFunc {
	return func(epoch int64) []ars.RequestSpec {
		n := src.NextBlockSize()
		specs := make([]ars.RequestSpec, n)
		for i := range specs {
			specs[i] = ars.RequestSpec{Witnesses: witnesses, Collateral: collateral}
		}
		return specs
	}
}
