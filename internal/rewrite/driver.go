package rewrite

import (
	"fmt"

	"github.com/strataml/strata/internal/ir"
)

// Pattern rewrites one illegal operation kind into legal operations.
//
// Rewrite must be all-or-nothing: on success the matched operation has
// been fully replaced and erased; on error the graph is untouched.
type Pattern interface {
	// Name identifies the pattern in traces and diagnostics.
	Name() string

	// Match reports whether the pattern applies to op.
	Match(op *ir.Operation) bool

	// Rewrite replaces op with legal operations and erases it.
	Rewrite(op *ir.Operation, b *ir.Builder) error
}

// Target declares the legal and illegal operation sets for a
// conversion. Kinds in neither set are left alone (partial conversion).
type Target struct {
	legalDialects   map[string]bool
	illegalDialects map[string]bool
	illegalOps      map[ir.OpName]bool
}

// NewTarget creates an empty target.
func NewTarget() *Target {
	return &Target{
		legalDialects:   make(map[string]bool),
		illegalDialects: make(map[string]bool),
		illegalOps:      make(map[ir.OpName]bool),
	}
}

// AddLegalDialect marks every op of the dialects as legal output.
func (t *Target) AddLegalDialect(dialects ...string) *Target {
	for _, d := range dialects {
		t.legalDialects[d] = true
	}
	return t
}

// AddIllegalDialect marks every op of the dialects as illegal.
func (t *Target) AddIllegalDialect(dialects ...string) *Target {
	for _, d := range dialects {
		t.illegalDialects[d] = true
	}
	return t
}

// AddIllegalOp marks individual op kinds as illegal.
func (t *Target) AddIllegalOp(names ...ir.OpName) *Target {
	for _, n := range names {
		t.illegalOps[n] = true
	}
	return t
}

// IsIllegal reports whether op must not survive the conversion.
func (t *Target) IsIllegal(op *ir.Operation) bool {
	return t.illegalDialects[op.Name().Dialect()] || t.illegalOps[op.Name()]
}

// Event records one applied rewrite for tracing.
type Event struct {
	Seq     int64
	Pattern string
	Op      ir.OpName
	Action  string
	Detail  string
}

// Tracer receives one Event per applied rewrite, in seq order.
type Tracer func(Event)

// DefaultMaxRewrites bounds the total rewrites per ApplyPartial call.
// The tile-to-affine patterns strictly shrink the illegal op count, so
// hitting the quota means a pattern is regenerating illegal ops.
const DefaultMaxRewrites = 100000

// Options configures a driver run.
type Options struct {
	Tracer      Tracer
	MaxRewrites int
}

// Option mutates Options.
type Option func(*Options)

// WithTracer installs a tracer callback.
func WithTracer(tr Tracer) Option {
	return func(o *Options) { o.Tracer = tr }
}

// WithMaxRewrites overrides the rewrite quota.
func WithMaxRewrites(n int) Option {
	return func(o *Options) { o.MaxRewrites = n }
}

// Result summarizes a driver run.
type Result struct {
	// Applied counts rewrites performed. Zero on an already-legal
	// module (idempotence).
	Applied int
}

// ApplyPartial runs the conversion on m: every operation illegal under
// target is rewritten by the first matching pattern, in program order.
// Operations erased by an earlier rewrite are skipped. After the pass,
// any surviving illegal operation fails the conversion with a
// CONVERSION_INCOMPLETE PassError carrying a printed IR dump.
//
// ApplyPartial mutates m in place. On pattern error the module may
// hold a partially-converted graph; no partial result is valid and
// callers must discard it.
func ApplyPartial(m *ir.Module, target *Target, patterns []Pattern, opts ...Option) (*Result, error) {
	options := Options{MaxRewrites: DefaultMaxRewrites}
	for _, opt := range opts {
		opt(&options)
	}

	// Seed the worklist with every illegal op, in program order.
	// Patterns only emit legal ops, so no rescan round is needed:
	// nested illegal ops are spliced, not recreated, and their
	// pointers stay valid.
	var worklist []*ir.Operation
	m.Walk(func(op *ir.Operation) bool {
		if target.IsIllegal(op) {
			worklist = append(worklist, op)
		}
		return true
	})

	clock := NewClock()
	result := &Result{}
	b := ir.NewBuilder()

	for _, op := range worklist {
		// A prior rewrite may have erased this op (e.g. a body
		// terminator going away with its parent).
		if op.Erased() {
			continue
		}
		pat := matchPattern(patterns, op)
		if pat == nil {
			// Leave it; the legality scan below reports it.
			continue
		}
		if result.Applied >= options.MaxRewrites {
			return result, &PassError{
				Code:    ErrCodeQuotaExceeded,
				Message: fmt.Sprintf("rewrite quota exceeded (%d)", options.MaxRewrites),
				Op:      op.Name(),
			}
		}
		name := op.Name()
		if err := pat.Rewrite(op, b); err != nil {
			return result, &PassError{
				Code:    ErrCodePatternFailed,
				Message: fmt.Sprintf("pattern %s failed", pat.Name()),
				Op:      name,
				Err:     err,
			}
		}
		result.Applied++
		if options.Tracer != nil {
			options.Tracer(Event{
				Seq:     clock.Next(),
				Pattern: pat.Name(),
				Op:      name,
				Action:  "replaced",
			})
		}
	}

	// Post-condition: no illegal operation remains.
	var survivor *ir.Operation
	m.Walk(func(op *ir.Operation) bool {
		if target.IsIllegal(op) {
			survivor = op
			return false
		}
		return true
	})
	if survivor != nil {
		return result, &PassError{
			Code:    ErrCodeConversionIncomplete,
			Message: "illegal operation survived conversion",
			Op:      survivor.Name(),
			Dump:    ir.Print(m),
		}
	}

	return result, nil
}

func matchPattern(patterns []Pattern, op *ir.Operation) Pattern {
	for _, p := range patterns {
		if p.Match(op) {
			return p
		}
	}
	return nil
}
