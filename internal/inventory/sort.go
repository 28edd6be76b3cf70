package inventory

import (
	"sort"
	"strings"
	"unicode"
)

// Sort imposes the report order on records, in place. The order is total
// and independent of arrival order:
//
//  1. rank bucket: Repo records before everything else
//  2. source, case-insensitive, trailing whitespace ignored
//  3. name, byte-wise, so output is identical across hosts and locales
//
// The sort is stable, so true duplicates keep their insertion order.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
}

// Less reports whether a sorts before b under the report order.
func Less(a, b Record) bool {
	ra, rb := rankBucket(a.Type), rankBucket(b.Type)
	if ra != rb {
		return ra < rb
	}
	sa, sb := sourceKey(a.Source), sourceKey(b.Source)
	if sa != sb {
		return sa < sb
	}
	return a.Name < b.Name
}

// rankBucket keeps the most official provenance at the top of a report.
func rankBucket(typ string) int {
	if typ == TypeRepo {
		return 1
	}
	return 2
}

func sourceKey(source string) string {
	return strings.ToLower(strings.TrimRightFunc(source, unicode.IsSpace))
}
