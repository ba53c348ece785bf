package simfile

import (
	"path/filepath"
	"strings"

	apperrors "simjudge/pkg/errors"
)

// SafePath rewrites a package-declared asset path so it cannot escape
// the package directory: a leading "/" is stripped and every ".."
// segment is removed, per §4.5. Unlike a hard rejection, this keeps a
// hand-edited simfile with a stray leading slash working instead of
// failing normalization outright.
func SafePath(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := filepath.ToSlash(filepath.Clean(raw))
	cleaned = strings.TrimPrefix(cleaned, "/")
	parts := strings.Split(cleaned, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == ".." || p == "." || p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}

// GroupIDOf extracts a test's group id from its name by the judge
// core's stable splitter: the leading run of ASCII digits, e.g. "1a" ->
// "1", "12_big" -> "12". A name with no leading digits has no group id
// (""), which normalize folds into the empty group per §4.5. The
// "ocen" alias is handled by callers before this split is consulted,
// since it does not follow the digit convention at all.
func GroupIDOf(testName string) string {
	i := 0
	for i < len(testName) && testName[i] >= '0' && testName[i] <= '9' {
		i++
	}
	return testName[:i]
}

// EffectiveGroupID returns the group id a test with the given declared
// name routes to, applying the "ocen" alias (§3, §8 property 6) before
// falling back to the digit-prefix splitter.
func EffectiveGroupID(testName string) string {
	if testName == OcenAlias {
		return InitialGroupID
	}
	return GroupIDOf(testName)
}

// BuildGroups assembles tests into TestGroups keyed by EffectiveGroupID,
// preserving first-seen group order and the order tests were appended
// within a group, then assigns each group a score per the auto-scoring
// law (§4.5, §8 property 7):
//
//   - groups with an explicit entry in scoring use that score verbatim;
//   - InitialGroupID ("0") is always forced to score 0, explicit entry
//     or not;
//   - every other group without an explicit entry splits what remains
//     of 100 points after subtracting all explicit positive scores
//     (clamped to 0 if that sum already reaches or exceeds 100) evenly
//     across themselves, with any remainder from integer division
//     added to the last such group so the distributed total is exact.
func BuildGroups(tests []Test, scoring []ScoringEntry) ([]TestGroup, error) {
	explicit := make(map[string]int, len(scoring))
	for _, s := range scoring {
		explicit[s.GroupID] = s.Points
	}

	order := make([]string, 0)
	byID := make(map[string]*TestGroup)
	for _, t := range tests {
		g, ok := byID[t.GroupID]
		if !ok {
			order = append(order, t.GroupID)
			g = &TestGroup{ID: t.GroupID}
			byID[t.GroupID] = g
		}
		g.Tests = append(g.Tests, t)
	}
	// A group named only in scoring: but with no tests, is meaningless
	// for judging (it would always score its fixed points with nothing
	// to evaluate); the judge core only ever reports on groups that
	// contain at least one test.

	explicitSum := 0
	for id, pts := range explicit {
		if id == InitialGroupID {
			continue
		}
		if pts > 0 {
			explicitSum += pts
		}
	}
	remaining := 100 - explicitSum
	if remaining < 0 {
		remaining = 0
	}

	var autoIDs []string
	for _, id := range order {
		if id == InitialGroupID {
			continue
		}
		if _, ok := explicit[id]; !ok {
			autoIDs = append(autoIDs, id)
		}
	}

	var share, extra int
	if len(autoIDs) > 0 {
		share = remaining / len(autoIDs)
		extra = remaining - share*len(autoIDs)
	}

	groups := make([]TestGroup, 0, len(order))
	autoIdx := 0
	for _, id := range order {
		g := *byID[id]
		pts, hasExplicit := explicit[id]
		switch {
		case id == InitialGroupID:
			g.Score = 0
		case hasExplicit:
			g.Score = pts
		default:
			g.Score = share
			if autoIdx == len(autoIDs)-1 {
				g.Score += extra
			}
			autoIdx++
		}
		groups = append(groups, g)
	}

	for _, s := range scoring {
		if s.GroupID == InitialGroupID {
			continue
		}
		if _, ok := byID[s.GroupID]; !ok {
			return nil, apperrors.Newf(apperrors.SimfileInvalid, "scoring references group %q with no tests", s.GroupID)
		}
	}

	return groups, nil
}
