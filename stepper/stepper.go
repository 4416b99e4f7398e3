// Package stepper implements the concrete-state stepper and the
// concurrent-places analyzer (spec.md §4.8): enumerating one-step
// successors of a marking, maintaining the symmetric reachability-pairs
// matrix, and the random-walk falsification heuristic supplementing the
// portfolio per spec.md §8.1.
package stepper

import (
	"context"

	"github.com/lmachina/reachkit/petri"
)

// Option configures Step, in the shape of dfs/types.go's Option/DFSOptions
// (a context for cancellation, nothing else needed at this granularity).
type Option func(*options)

type options struct {
	ctx context.Context
}

// WithContext sets the cancellation context consulted between transitions.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

func defaultOptions() options { return options{ctx: context.Background()} }

// Step fires every transition enabled at m and returns the resulting
// successor markings, deduplicated, in transition order (spec.md §4.8: "the
// stepper enumerates one-step successors of a marking by iterating enabled
// transitions; it returns the set of resulting markings"). It does not
// include a stutter successor — that is an encode-layer-only concept for the
// solver's transition relation, not a concrete firing.
func Step(net *petri.Net, m petri.Marking, opts ...Option) []petri.Marking {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	var out []petri.Marking
	seen := make(map[string]struct{})
	for _, tr := range net.EnabledTransitions(m) {
		select {
		case <-o.ctx.Done():
			return out
		default:
		}
		next, err := net.Fire(m, tr)
		if err != nil {
			continue
		}
		key := markingKey(next)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, next)
	}
	return out
}

// markingKey returns a comparable key for a marking, used for the stepper's
// own visited-set bookkeeping (not for solver state, which never sees a Go
// map key).
func markingKey(m petri.Marking) string {
	b := make([]byte, 0, len(m)*8)
	for _, v := range m {
		b = appendInt64(b, v)
	}
	return string(b)
}

func appendInt64(b []byte, v int64) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}
