// Package portfolio implements the scheduler that races BMC, k-Induction,
// IC3/PDR, the random-walk heuristic, and the concurrent-places analyzer
// against each other (spec.md §4.9): the first worker with a verdict wins
// and signals the rest to stop.
package portfolio

import (
	"math/rand"
	"sync"
	"time"

	"github.com/lmachina/reachkit/bmc"
	"github.com/lmachina/reachkit/encode"
	"github.com/lmachina/reachkit/formula"
	"github.com/lmachina/reachkit/ic3"
	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/lmachina/reachkit/internal/rlog"
	"github.com/lmachina/reachkit/kinduction"
	"github.com/lmachina/reachkit/petri"
	"github.com/lmachina/reachkit/solver"
	"github.com/lmachina/reachkit/stepper"
)

// Worker names one of the engines the scheduler can race, per spec.md
// §4.9's "a subset of {BMC, k-Induction, IC3, Random-Walk, CP}".
type Worker byte

const (
	BMC Worker = iota
	KInduction
	IC3
	RandomWalk
	CP
)

func (w Worker) String() string {
	switch w {
	case BMC:
		return "bmc"
	case KInduction:
		return "kinduction"
	case IC3:
		return "ic3"
	case RandomWalk:
		return "random-walk"
	case CP:
		return "concurrent-places"
	}
	return "unknown"
}

// Verdict is the portfolio's final answer.
type Verdict byte

const (
	Indeterminate Verdict = iota
	CEX
	INV
)

// Result is what Run returns: CEX carries the witness marking and the
// winning worker's name; INV carries only the winning worker's name.
type Result struct {
	Verdict Verdict
	Model   petri.Marking
	Winner  string
}

// NewDriverFunc returns a fresh Driver, independently owned by the caller
// (spec.md §5: "workers never share an SMT context; each owns exactly one
// solver child").
type NewDriverFunc func() solver.Driver

// Config selects which workers race and their shared parameters.
type Config struct {
	Workers         []Worker
	Timeout         time.Duration // 0 means no scheduler-enforced timeout
	RandomWalkBound int
	RandomWalkSeed  int64
}

// workerResult is what an individual worker goroutine reports internally,
// before Run translates it into the public Result shape.
type workerResult struct {
	worker Worker
	found  bool // true => CEX with Model; false & inv => INV; neither => inconclusive/cancelled
	inv    bool
	model  petri.Marking
}

// driverRegistry tracks each worker's own Driver so the scheduler can kill
// every loser once a winner is known, mirroring solver.Registry's
// register/kill-all-except shape (solver/registry.go) but keyed on the
// Driver capability interface rather than the concrete *solver.Proc, since a
// portfolio worker may run against either a TextDriver or a Fake.
type driverRegistry struct {
	mu      sync.Mutex
	drivers map[string]solver.Driver
}

func newDriverRegistry() *driverRegistry {
	return &driverRegistry{drivers: make(map[string]solver.Driver)}
}

func (r *driverRegistry) register(id string, d solver.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[id] = d
}

func (r *driverRegistry) killAllExcept(winner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.drivers {
		if id != winner {
			d.Kill()
		}
	}
}

// Run starts cfg.Workers against net and f, returning the first verdict any
// worker reaches, or Indeterminate if every worker exits inconclusively
// (cancelled, timed out, or errored) without one winning.
func Run(parent cancel.Token, newDriver NewDriverFunc, net *petri.Net, f *formula.Formula, cfg Config, log rlog.Logger) Result {
	if log == nil {
		log = rlog.Discard{}
	}
	tok := cancel.WithParent(parent.Context())
	defer tok.Cancel()

	if cfg.Timeout > 0 {
		timer := time.AfterFunc(cfg.Timeout, tok.Cancel)
		defer timer.Stop()
	}

	registry := newDriverRegistry()
	results := make(chan workerResult, len(cfg.Workers))
	var wg sync.WaitGroup

	var boundCh chan int
	hasBMC, hasKI := containsWorker(cfg.Workers, BMC), containsWorker(cfg.Workers, KInduction)
	if hasBMC && hasKI {
		boundCh = make(chan int, 1)
	}

	for _, w := range cfg.Workers {
		w := w
		id := w.String()
		wg.Add(1)
		go func() {
			defer wg.Done()
			runWorker(tok, registry, id, newDriver, net, f, w, boundCh, cfg, log, results)
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Keep draining until a result actually carrying a verdict (found or
	// inv) arrives, or every worker has reported in inconclusively
	// (results closes): a worker that returns early without a verdict
	// (cancelled, timed out, or tripped on a transient solver error) must
	// not end the race for methods still genuinely running (spec.md
	// §4.9, §7).
	var winner workerResult
	concluded := false
	for r := range results {
		if r.found || r.inv {
			winner = r
			concluded = true
			break
		}
	}
	if !concluded {
		return Result{Verdict: Indeterminate}
	}
	registry.killAllExcept(winner.worker.String())
	tok.Cancel()

	// Drain remaining results so no worker goroutine blocks forever trying
	// to send into the (still-open, buffered) channel; Run does not wait on
	// this to return its own answer.
	go func() {
		for range results {
		}
	}()

	return translate(winner)
}

func translate(r workerResult) Result {
	switch {
	case r.found:
		return Result{Verdict: CEX, Model: r.model, Winner: r.worker.String()}
	case r.inv:
		return Result{Verdict: INV, Winner: r.worker.String()}
	default:
		return Result{Verdict: Indeterminate, Winner: r.worker.String()}
	}
}

func containsWorker(ws []Worker, target Worker) bool {
	for _, w := range ws {
		if w == target {
			return true
		}
	}
	return false
}

// runWorker dispatches to the named engine, registering its driver (where
// it owns one directly) so the scheduler can terminate it, and writes
// exactly one workerResult.
func runWorker(tok cancel.Token, registry *driverRegistry, id string, newDriver NewDriverFunc, net *petri.Net, f *formula.Formula, w Worker, boundCh chan int, cfg Config, log rlog.Logger, out chan<- workerResult) {
	switch w {
	case BMC:
		d := newDriver()
		registry.register(id, d)
		_ = d.DeclarePlaces(0)
		_ = d.Assert(encode.InitialMarking(net, 0))
		var bound bmc.Bound
		if boundCh != nil {
			bound = boundCh
		}
		res := bmc.Run(tok, d, net, f, bound, log)
		switch res.Verdict {
		case bmc.CEX:
			out <- workerResult{worker: w, found: true, model: res.Model}
		case bmc.INV:
			out <- workerResult{worker: w, inv: true}
		default:
			out <- workerResult{worker: w}
		}
	case KInduction:
		d := newDriver()
		registry.register(id, d)
		_ = d.DeclarePlaces(0)
		_ = d.DeclarePlaces(1)
		_ = d.Assert(encode.TransitionRelation(net, 0, false))
		var sink kinduction.BoundSink
		if boundCh != nil {
			sink = boundCh
		}
		res := kinduction.Run(tok, d, net, f, sink, log)
		if res.Verdict == kinduction.INV {
			out <- workerResult{worker: w, inv: true}
		} else {
			out <- workerResult{worker: w}
		}
	case IC3:
		d := newDriver()
		registry.register(id, d)
		res := ic3.Prove(tok, d, net, f, log)
		switch res.Verdict {
		case ic3.CEX:
			out <- workerResult{worker: w, found: true, model: res.Model}
		case ic3.INV:
			out <- workerResult{worker: w, inv: true}
		default:
			out <- workerResult{worker: w}
		}
	case RandomWalk:
		bound := cfg.RandomWalkBound
		if bound <= 0 {
			bound = 1000
		}
		rng := rand.New(rand.NewSource(cfg.RandomWalkSeed))
		res := stepper.RandomWalk(tok, net, f, bound, rng)
		if res.Found {
			out <- workerResult{worker: w, found: true, model: res.Model}
		} else {
			out <- workerResult{worker: w}
		}
	case CP:
		m, err := stepper.AnalyzeConcurrentPlaces(tok, newDriver, net, log)
		if err == nil && m != nil {
			// The concurrent-places analyzer never itself concludes the
			// checked property; it only ever contributes its matrix as a
			// side channel (spec.md §4.8's role is to feed other engines,
			// not to answer the portfolio's TRUE/FALSE directly).
			out <- workerResult{worker: w}
		} else {
			out <- workerResult{worker: w}
		}
	default:
		out <- workerResult{worker: w}
	}
}
