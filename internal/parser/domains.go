package parser

import (
	"regexp"
	"strings"
)

// hostnamePattern matches dotted hostnames whose last label is alphabetic.
var hostnamePattern = regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}\b`)

// ExtractDomains returns every hostname found in text, left to right.
func ExtractDomains(text string) []string {
	return hostnamePattern.FindAllString(text, -1)
}

// ExtractDomainLines runs ExtractDomains over each line and flattens the
// matches in input order.
func ExtractDomainLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, ExtractDomains(line)...)
	}
	return out
}

func firstDomain(text string) (string, bool) {
	loc := hostnamePattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:loc[1]], true
}
