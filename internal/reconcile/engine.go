// Package reconcile drives the import, validation and tagging passes that
// feed the catalog. Each pass runs sequentially to completion; callers must
// not run two passes against the same store at once.
package reconcile

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os"
	"time"

	"subcatalog/internal/catalog"
	"subcatalog/internal/config"
	"subcatalog/internal/parser"
	"subcatalog/internal/records"
	"subcatalog/internal/tools"

	"github.com/google/uuid"
)

// Resolver turns a batch of names into raw "name. TYPE value" answer lines.
type Resolver interface {
	Resolve(ctx context.Context, names []string) ([]string, error)
}

// Enumerator discovers subdomains of a seed domain.
type Enumerator interface {
	Name() string
	Enumerate(ctx context.Context, domain string) ([]string, error)
}

type Engine struct {
	cfg         *config.Config
	store       *catalog.Store
	resolver    Resolver
	enumerators []Enumerator
	logger      *log.Logger
	shuffle     func([]string)
}

func NewEngine(cfg *config.Config, store *catalog.Store, resolver Resolver, enumerators []Enumerator, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Engine{
		cfg:         cfg,
		store:       store,
		resolver:    resolver,
		enumerators: enumerators,
		logger:      logger,
		shuffle: func(names []string) {
			rand.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
		},
	}
}

func (e *Engine) Store() *catalog.Store {
	return e.store
}

type ImportSummary struct {
	RunID      string                `json:"run_id"`
	Before     int64                 `json:"before"`
	After      int64                 `json:"after"`
	Inserted   int                   `json:"inserted"`
	Duplicates int                   `json:"duplicates"`
	Invalid    int                   `json:"invalid"`
	Failed     int                   `json:"failed"`
	Results    catalog.InsertResults `json:"results,omitempty"`
}

// Added is the growth of the target table over the pass.
func (s ImportSummary) Added() int64 {
	return s.After - s.Before
}

func (s *ImportSummary) add(results catalog.InsertResults) {
	s.Inserted += results.Count(catalog.Inserted)
	s.Duplicates += results.Count(catalog.Duplicate)
	s.Invalid += results.Count(catalog.Invalid)
	s.Failed += results.Count(catalog.Failed)
	s.Results = append(s.Results, results...)
}

// ImportTargets inserts names as targets. DNS and tag data are untouched.
func (e *Engine) ImportTargets(ctx context.Context, names []string) ImportSummary {
	sum := ImportSummary{RunID: uuid.NewString(), Before: e.store.CountTargets(ctx)}
	sum.add(e.store.InsertTargets(ctx, names))
	sum.After = e.store.CountTargets(ctx)
	e.logger.Printf("[INF] import %s: %d inserted, %d duplicates, %d total", sum.RunID, sum.Inserted, sum.Duplicates, sum.After)
	return sum
}

// ImportTargetText pulls every hostname out of free-text lines (URLs, tool
// output) and imports them.
func (e *Engine) ImportTargetText(ctx context.Context, lines []string) ImportSummary {
	return e.ImportTargets(ctx, parser.ExtractDomainLines(lines))
}

type EnumerationSummary struct {
	ImportSummary
	Seeds catalog.InsertResults `json:"seeds"`
	Found map[string]int        `json:"found"`
}

// EnumerateSeeds records the seeds, runs every enumerator for each of them
// and imports what they found. A failing tool is logged and skipped.
func (e *Engine) EnumerateSeeds(ctx context.Context, seeds []string) EnumerationSummary {
	sum := EnumerationSummary{
		ImportSummary: ImportSummary{RunID: uuid.NewString(), Before: e.store.CountTargets(ctx)},
		Found:         make(map[string]int),
	}
	sum.Seeds = e.store.InsertSeedDomains(ctx, seeds)

	for _, seed := range sum.Seeds {
		if seed.Outcome == catalog.Invalid {
			continue
		}
		for _, enum := range e.enumerators {
			e.logger.Printf("[INF] enumerating %s using %s", seed.Name, enum.Name())
			found, err := enum.Enumerate(ctx, seed.Name)
			if err != nil {
				e.logger.Printf("[ERR] %s on %s: %v", enum.Name(), seed.Name, err)
			}
			if len(found) == 0 {
				e.logger.Printf("[-] no subdomains found for %s using %s", seed.Name, enum.Name())
				continue
			}
			sum.Found[enum.Name()] += len(found)
			sum.add(e.store.InsertTargets(ctx, found))
		}
		e.store.TouchSeedDomain(ctx, seed.Name)
	}

	sum.After = e.store.CountTargets(ctx)
	e.logger.Printf("[INF] enumerate %s: added %d subdomains, %d total", sum.RunID, sum.Added(), sum.After)
	return sum
}

type ValidationSummary struct {
	RunID          string               `json:"run_id"`
	Targets        int                  `json:"targets"`
	Answers        int                  `json:"answers"`
	Skipped        int                  `json:"skipped"`
	Filtered       int                  `json:"filtered"`
	Resolved       int                  `json:"resolved"`
	TimedOut       bool                 `json:"timed_out"`
	Total          int64                `json:"total"`
	VerifiedBefore int64                `json:"verified_before"`
	VerifiedAfter  int64                `json:"verified_after"`
	Merge          catalog.MergeSummary `json:"merge"`
}

func (s ValidationSummary) NewlyVerified() int64 {
	return s.VerifiedAfter - s.VerifiedBefore
}

// Validate resolves names and merges the external records found. Names
// without answers keep their previous state. A resolver timeout or failure
// counts as "no answers" for the batch.
func (e *Engine) Validate(ctx context.Context, names []string) ValidationSummary {
	sum := ValidationSummary{
		RunID:          uuid.NewString(),
		Targets:        len(names),
		VerifiedBefore: e.store.CountVerified(ctx),
	}
	e.logger.Printf("[INF] Total targets to process: %d", len(names))

	if len(names) > 0 && e.resolver != nil {
		lines := e.resolve(ctx, names, &sum)
		sum.Answers = len(lines)

		agg := records.Aggregate(lines, e.logger)
		sum.Skipped = agg.Skipped
		sum.Filtered = agg.Filtered
		sum.Resolved = len(agg.Records)
		if len(agg.Records) > 0 {
			sum.Merge = e.store.MergeDNSRecords(ctx, agg.Records)
		}
	}

	sum.VerifiedAfter = e.store.CountVerified(ctx)
	sum.Total = e.store.CountTargets(ctx)
	e.logger.Printf("[INF] validate %s: %d new, %d/%d verified", sum.RunID, sum.NewlyVerified(), sum.VerifiedAfter, sum.Total)
	return sum
}

func (e *Engine) resolve(ctx context.Context, names []string, sum *ValidationSummary) []string {
	batch := append([]string(nil), names...)
	e.shuffle(batch)

	if e.cfg != nil && e.cfg.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ResolveTimeout)
		defer cancel()
	}

	lines, err := e.resolver.Resolve(ctx, batch)
	switch {
	case errors.Is(err, tools.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		sum.TimedOut = true
		e.logger.Printf("[ERR] resolution timed out, treating batch as unresolved: %v", err)
		return nil
	case err != nil:
		e.logger.Printf("[ERR] resolution failed, treating batch as unresolved: %v", err)
		return nil
	}
	if len(lines) == 0 {
		e.logger.Printf("[INF] The resolver returned no records to process.")
	}
	return lines
}

func (e *Engine) ValidateAll(ctx context.Context) ValidationSummary {
	return e.Validate(ctx, e.store.AllTargetNames(ctx))
}

func (e *Engine) ValidateUnverified(ctx context.Context) ValidationSummary {
	return e.Validate(ctx, e.store.UnverifiedTargetNames(ctx))
}

func (e *Engine) ValidateUnverifiedOnDate(ctx context.Context, date time.Time) ValidationSummary {
	return e.Validate(ctx, e.store.UnverifiedTargetNamesOnDate(ctx, date))
}

type TagSummary struct {
	RunID   string               `json:"run_id"`
	Parsed  int                  `json:"parsed"`
	Dropped int                  `json:"dropped"`
	Merge   catalog.MergeSummary `json:"merge"`
}

// ImportTags merges scanner result lines into the catalog in file order.
// Lines carrying tags but no hostname are dropped with a log entry.
func (e *Engine) ImportTags(ctx context.Context, lines []string) TagSummary {
	tags, dropped := parser.ParseTagLines(lines)
	for _, line := range dropped {
		e.logger.Printf("[-] no domain in scan line, skipped: %s", line)
	}

	sum := TagSummary{RunID: uuid.NewString(), Parsed: len(tags), Dropped: len(dropped)}
	sum.Merge = e.store.MergeTags(ctx, tags)
	e.logger.Printf("[INF] tags %s: %d updated, %d created, %d unchanged", sum.RunID, sum.Merge.Updated, sum.Merge.Created, sum.Merge.Unchanged)
	return sum
}

// Export returns target names matching every filter, in catalog order.
func (e *Engine) Export(ctx context.Context, filters ...catalog.Filter) []string {
	return e.store.SelectDomainsMatching(ctx, filters...)
}

// ExportWhere parses a "field op value [and ...]" expression and exports.
func (e *Engine) ExportWhere(ctx context.Context, where string) ([]string, error) {
	filters, err := catalog.ParseWhere(where)
	if err != nil {
		return nil, err
	}
	return e.Export(ctx, filters...), nil
}
