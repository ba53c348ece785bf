// Package simfile parses and normalizes the judge core's package
// manifest format: a flat "key: value" / "key: [ item, item ]" text
// grammar with no third-party counterpart in the retrieved example
// repos, so its parser is hand-rolled rather than borrowed.
package simfile

// InitialGroupID is the reserved group id that routes to the "initial"
// half of a judge report. Tests declared under this group, or whose
// name equals the "ocen" alias, are folded into it rather than the
// final report.
const InitialGroupID = "0"

// OcenAlias is the test-id special case ("ocen", Polish for "grading" /
// "sample") that is always routed into InitialGroupID regardless of
// what group its name would otherwise split to.
const OcenAlias = "ocen"

// Test describes one input/answer pair.
type Test struct {
	Name          string
	GroupID       string
	InputPath     string
	OutputPath    string // empty for interactive problems
	TimeLimitMs   int64
	MemoryLimitMB int64
}

// TestGroup is a named subset of tests evaluated together; its score is
// the maximum number of points attainable for the group as a whole.
type TestGroup struct {
	ID    string
	Score int
	Tests []Test
}

// Simfile is the problem descriptor: name, checker, statement,
// solutions, and the test-group structure, fully normalized and ready
// for the judge worker to consume.
type Simfile struct {
	Name      string
	Label     string
	Statement string // relative path, empty if the package has none
	// Checker is the relative path to a package-supplied checker
	// source, or empty when the default built-in checker should be
	// used.
	Checker       string
	MemoryLimitMB int64 // package-wide default when a test has none of its own
	Interactive   bool
	// Solutions is the ordered list of reference solution source paths;
	// Solutions[0] is the model solution.
	Solutions []string
	Groups    []TestGroup
}
