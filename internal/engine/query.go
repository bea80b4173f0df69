package engine

import (
	"strings"

	"github.com/coffersTech/logserv/internal/model"
)

// MatchQuery reports whether line matches q. A nil query matches
// everything. This is the single dispatch point a future query variant
// (regex, fielded predicates) would extend with one more branch, without
// any caller needing to change.
func MatchQuery(q *model.Query, line string) bool {
	if q == nil || q.Text == "" {
		return true
	}
	return strings.Contains(line, q.Text)
}
