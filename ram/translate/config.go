// Package translate lowers a Datalog source AST into a RAM program:
// one operation tree per clause, semi-naive fixpoint loops for
// recursive strata, and per-stratum create/load/compute/store/drop
// sequencing driven by the analysis results.
//
// File organization:
//   - config.go: the immutable translation configuration
//   - errors.go: the internal-error class
//   - location.go: Location coordinates and the per-clause ValueIndex
//   - value.go: source expression to RAM expression translation
//   - clause.go: clause to operation-tree translation
//   - relation.go: non-recursive and semi-naive recursive relation translation
//   - program.go: whole-program assembly
//   - provenance.go: subproof subroutine generation
package translate

// Config carries every option that influences translation. It is
// immutable for the duration of a Translate call; there is no global
// configuration state.
type Config struct {
	// FactDir is the directory input relations are loaded from, as
	// ".facts" files.
	FactDir string
	// OutputDir is the directory output relations are stored into, as
	// ".csv" files.
	OutputDir string
	// Engine names an external communication engine. When non-empty,
	// predecessor relations of earlier strata are reloaded from the
	// output directory and intermediate relations with external
	// successors are stored, and the drop policy switches from the
	// expiry schedule to dropping everything stratum-local.
	Engine string
	// Provenance generates a subproof subroutine per non-trivial
	// clause and suppresses all relation drops.
	Provenance bool
	// Profile wraps the whole program in a timing statement.
	Profile bool
	// DebugReport is the path a human-readable dump of the produced
	// program is written to; empty disables the report.
	DebugReport string
}

// EngineEnabled reports whether an external communication engine is
// configured.
func (c Config) EngineEnabled() bool { return c.Engine != "" }
