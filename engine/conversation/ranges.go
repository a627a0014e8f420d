package conversation

import (
	"sort"

	"github.com/nathoo/casecore/staging"
)

// span is a half-open range of positions in a staging slice.
type span struct {
	from, to int
}

func (s span) empty() bool { return s.to <= s.from }

// splitRanges turns branch start positions into ranges. Present starts are
// sorted and each range runs to the next start, the last one to end. An
// absent start (-1) yields an empty range. Ranges are returned in the
// order of starts.
func splitRanges(starts []int, end int) []span {
	out := make([]span, len(starts))
	var order []int
	for k, s := range starts {
		if s >= 0 {
			order = append(order, k)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return starts[order[a]] < starts[order[b]] })

	for n, k := range order {
		to := end
		if n+1 < len(order) {
			to = starts[order[n+1]]
		}
		out[k] = span{starts[k], max(to, starts[k])}
	}
	return out
}

// startPositions converts staging indices to positions in src. -1 marks an
// absent branch. A present start must lie after the construct at i.
func startPositions(src []staging.Entry, i, base int, indices ...int) ([]int, error) {
	out := make([]int, len(indices))
	for k, idx := range indices {
		if idx < 0 {
			out[k] = -1
			continue
		}
		p := idx - base
		if p <= i || p > len(src) {
			return nil, parseErr(src[i], "branch start %d is outside the construct", idx)
		}
		out[k] = p
	}
	return out, nil
}

// matchingEnd returns the position of the end tag closing the begin tag at
// i, skipping nested pairs of the same construct.
func matchingEnd(src []staging.Entry, i int, begin, end staging.Tag) (int, error) {
	depth := 0
	for j := i; j < len(src); j++ {
		switch src[j].Tag {
		case begin:
			depth++
		case end:
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}
	return 0, parseErr(src[i], "no matching %s", end)
}

// branchTerminator returns the position of the BranchIfTrue or
// BranchIfFalse marker closing the BranchOnCondition at i. The search
// starts at the later of the two branch starts; nested BranchOnCondition
// constructs found on the way are skipped whole.
func branchTerminator(src []staging.Entry, i, base int) (int, error) {
	e := src[i]
	from := i + 1
	for _, key := range []string{"true_index", "false_index"} {
		if idx := e.Int(key, -1); idx >= 0 {
			from = max(from, idx-base)
		}
	}
	for j := from; j < len(src); j++ {
		switch src[j].Tag {
		case staging.TagBranchIfTrue, staging.TagBranchIfFalse:
			return j, nil
		case staging.TagBranchOnCondition:
			inner, err := branchTerminator(src, j, base)
			if err != nil {
				return 0, err
			}
			j = inner
		}
	}
	return 0, parseErr(e, "no BranchIfTrue or BranchIfFalse terminator")
}
