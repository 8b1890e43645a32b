// Package docnum produces the human-readable sequential document codes used
// across the console: {PREFIX}-{YYMMDD}-{NNN}, scoped by document type and
// calendar day and derived from the existing documents rather than a counter.
//
// Two clients generating against a stale snapshot can collide; that is an
// accepted limitation of the snapshot state model, not something this
// package papers over.
package docnum

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	PrefixRequest     = "REQ"
	PrefixLoan        = "LOAN"
	PrefixHandover    = "HO"
	PrefixDismantle   = "DSM"
	PrefixMaintenance = "MNT"
	PrefixAsset       = "AST"
)

// Next returns the next free document code for the prefix on the given day.
// existing may hold documents of any type, any day, in any order; only codes
// matching the prefix+day scope participate in the sequence.
func Next(prefix string, existing []string, date time.Time) string {
	scope := fmt.Sprintf("%s-%s-", prefix, date.Format("060102"))
	max := 0
	for _, docNumber := range existing {
		if !strings.HasPrefix(docNumber, scope) {
			continue
		}
		seq, err := strconv.Atoi(docNumber[len(scope):])
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return fmt.Sprintf("%s%03d", scope, max+1)
}
