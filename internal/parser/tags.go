package parser

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`\[.*?\]`)

// Tag pairs a scanned domain with the bracketed labels found on its line.
type Tag struct {
	Domain string
	Label  string
}

// ParseTagLine reads a nuclei-style result line. The label is every
// bracketed token on the line concatenated in order; the domain is the
// first hostname on the line. Lines without a hostname yield ok == false.
func ParseTagLine(line string) (Tag, bool) {
	line = strings.TrimSpace(line)
	domain, ok := firstDomain(line)
	if !ok {
		return Tag{}, false
	}
	return Tag{
		Domain: domain,
		Label:  strings.Join(tagPattern.FindAllString(line, -1), ""),
	}, true
}

// ParseTagLines parses each line and returns the tags found plus the lines
// that were dropped for lacking a hostname. Blank lines are ignored.
func ParseTagLines(lines []string) (tags []Tag, dropped []string) {
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tag, ok := ParseTagLine(line)
		if !ok {
			dropped = append(dropped, strings.TrimSpace(line))
			continue
		}
		tags = append(tags, tag)
	}
	return tags, dropped
}
