package cleaner

import (
	"fmt"
	"sort"
)

// Operation kinds.
const (
	OpPlaceholder    = "placeholder_replace"
	OpCoerceNull     = "coerce_null"
	OpAbsolute       = "absolute_value"
	OpSerialFill     = "serial_fill"
	OpGroupMeanFill  = "group_mean_fill"
	OpGlobalMeanFill = "global_mean_fill"
	OpOutlierCap     = "outlier_cap"
)

// Operation records one cell rewrite performed by a pipeline stage.
type Operation struct {
	Row      int    `json:"row"` // 0-based position in the table
	Column   string `json:"column"`
	Original string `json:"original"` // empty when the cell was missing
	New      string `json:"new"`      // empty when the cell became missing
	Kind     string `json:"kind"`
	Reason   string `json:"reason"`
}

func (o Operation) String() string {
	return fmt.Sprintf("row %d %s: %q -> %q (%s: %s)", o.Row, o.Column, o.Original, o.New, o.Kind, o.Reason)
}

// KindCount is the number of operations of one kind.
type KindCount struct {
	Kind  string
	Count int
}

// CountByKind tallies operations, ordered by kind name.
func CountByKind(ops []Operation) []KindCount {
	m := map[string]int{}
	for _, op := range ops {
		m[op.Kind]++
	}
	out := make([]KindCount, 0, len(m))
	for k, v := range m {
		out = append(out, KindCount{Kind: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
