// Package records groups raw resolver answers into per-domain record sets.
package records

import (
	"errors"
	"log"

	"subcatalog/internal/ipclass"
	"subcatalog/internal/parser"
)

type Result struct {
	// Records maps a domain to its external "TYPE VALUE" strings in
	// first-seen order. Domains with nothing left after filtering are absent.
	Records map[string][]string
	Skipped int
	// Filtered counts A/AAAA answers dropped for pointing at internal space.
	Filtered int
}

// Aggregate parses answer lines, drops A/AAAA answers pointing at internal
// addresses and deduplicates the rest per domain. Malformed lines are
// skipped and counted; logger may be nil.
func Aggregate(lines []string, logger *log.Logger) Result {
	res := Result{Records: make(map[string][]string)}
	seen := make(map[string]map[string]struct{})

	for _, line := range lines {
		answer, err := parser.ParseDNSAnswer(line)
		if err != nil {
			var malformed *parser.MalformedRecordError
			if errors.As(err, &malformed) && malformed.Fields == 0 {
				continue
			}
			res.Skipped++
			if logger != nil {
				logger.Printf("[ERR] skip answer: %v", err)
			}
			continue
		}

		if answer.IsAddress() && ipclass.IsInternal(answer.Value) {
			res.Filtered++
			continue
		}

		record := answer.Record()
		set, ok := seen[answer.Name]
		if !ok {
			set = make(map[string]struct{})
			seen[answer.Name] = set
		}
		if _, dup := set[record]; dup {
			continue
		}
		set[record] = struct{}{}
		res.Records[answer.Name] = append(res.Records[answer.Name], record)
	}

	return res
}
