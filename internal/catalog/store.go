// Package catalog is the durable record of seed domains and targets.
//
// Every mutation is committed per item so that partial progress survives a
// crash mid-batch. Storage failures are logged and turned into zero results;
// callers cannot tell them apart from "no rows".
package catalog

import (
	"context"
	"errors"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"subcatalog/internal/database"
	"subcatalog/internal/models"
	"subcatalog/internal/parser"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db     *gorm.DB
	logger *log.Logger
}

func NewStore(db *gorm.DB, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Store{db: db, logger: logger}
}

// EnsureSchema creates both tables if they are missing. Safe on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := database.Migrate(s.db.WithContext(ctx)); err != nil {
		return s.fail("ensure schema", err)
	}
	return nil
}

func (s *Store) fail(op string, err error) error {
	serr := &StorageError{Op: op, Err: err}
	s.logger.Printf("[ERR] %v", serr)
	return serr
}

func (s *Store) InsertSeedDomains(ctx context.Context, names []string) InsertResults {
	return insertNames(ctx, s, "seed domain: ", names, func(name string) *models.SeedDomain {
		return &models.SeedDomain{Name: name}
	})
}

func (s *Store) InsertTargets(ctx context.Context, names []string) InsertResults {
	return insertNames(ctx, s, "", names, func(name string) *models.Target {
		return &models.Target{Name: name}
	})
}

// insertNames inserts one row per name, skipping names already present.
// A conflicting insert affects no rows and is reported as a duplicate.
func insertNames[T any](ctx context.Context, s *Store, label string, names []string, newRow func(string) *T) InsertResults {
	results := make(InsertResults, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			results = append(results, InsertResult{Name: raw, Outcome: Invalid, Status: Invalid.String()})
			continue
		}

		outcome := Inserted
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(newRow(name))
		switch {
		case res.Error != nil:
			outcome = Failed
			s.fail("insert "+label+name, res.Error)
		case res.RowsAffected == 0:
			outcome = Duplicate
			s.logger.Printf("[-] %s%s", label, name)
		default:
			s.logger.Printf("[+] %s%s", label, name)
		}
		results = append(results, InsertResult{Name: name, Outcome: outcome, Status: outcome.String()})
	}
	return results
}

// TouchSeedDomain stamps last_scanned on a seed domain.
func (s *Store) TouchSeedDomain(ctx context.Context, name string) bool {
	res := s.db.WithContext(ctx).Model(&models.SeedDomain{}).
		Where("name = ?", name).
		Update("last_scanned", time.Now().UTC())
	if res.Error != nil {
		s.fail("touch seed domain "+name, res.Error)
		return false
	}
	return res.RowsAffected > 0
}

// MergeDNSRecords replaces the stored records of every existing target in
// the map and marks it validated. Names without a target row are ignored:
// resolution never creates targets. Empty record lists carry no evidence
// and are skipped.
func (s *Store) MergeDNSRecords(ctx context.Context, byName map[string][]string) MergeSummary {
	var sum MergeSummary

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		recs := byName[name]
		if len(recs) == 0 {
			sum.Unchanged++
			continue
		}
		joined := models.JoinList(recs)
		res := s.db.WithContext(ctx).Model(&models.Target{}).
			Where("name = ?", name).
			Updates(map[string]any{"records": joined, "validated": true})
		switch {
		case res.Error != nil:
			sum.Failed++
			s.fail("merge records "+name, res.Error)
		case res.RowsAffected == 0:
			sum.Missing++
			s.logger.Printf("[-] %s: not a target", name)
		default:
			sum.Updated++
			s.logger.Printf("[+] %s: %s", name, joined)
		}
	}
	return sum
}

// MergeTags accumulates scanner tags in input order. An already present
// label leaves the row untouched; an unknown domain gets a new target row.
func (s *Store) MergeTags(ctx context.Context, tags []parser.Tag) MergeSummary {
	var sum MergeSummary
	for _, tag := range tags {
		outcome, err := s.mergeTag(ctx, tag)
		if err != nil {
			sum.Failed++
			s.fail("merge tag "+tag.Domain, err)
			continue
		}
		switch outcome {
		case tagCreated:
			sum.Created++
			s.logger.Printf("[+]%s: [+]%s", tag.Label, tag.Domain)
		case tagAppended:
			sum.Updated++
			s.logger.Printf("[+]%s: %s", tag.Label, tag.Domain)
		default:
			sum.Unchanged++
			s.logger.Printf("[-]%s: %s", tag.Label, tag.Domain)
		}
	}
	return sum
}

type tagOutcome int

const (
	tagUnchanged tagOutcome = iota
	tagAppended
	tagCreated
)

func (s *Store) mergeTag(ctx context.Context, tag parser.Tag) (tagOutcome, error) {
	outcome := tagUnchanged
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var target models.Target
		err := tx.Where("name = ?", tag.Domain).Take(&target).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome = tagCreated
			return tx.Create(&models.Target{Name: tag.Domain, Tags: tag.Label, LastScanned: &now}).Error
		}
		if err != nil {
			return err
		}

		if tag.Label == "" || target.HasTag(tag.Label) {
			return nil
		}

		tags := tag.Label
		if target.Tags != "" {
			tags = target.Tags + models.ListSeparator + tag.Label
		}
		outcome = tagAppended
		return tx.Model(&target).Updates(map[string]any{
			"tags":         tags,
			"last_scanned": now,
		}).Error
	})
	if err != nil {
		return tagUnchanged, err
	}
	return outcome, nil
}

func (s *Store) CountTargets(ctx context.Context) int64 {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Target{}).Count(&n).Error; err != nil {
		s.fail("count targets", err)
		return 0
	}
	return n
}

func (s *Store) CountVerified(ctx context.Context) int64 {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Target{}).Where("validated = ?", true).Count(&n).Error; err != nil {
		s.fail("count verified", err)
		return 0
	}
	return n
}

func (s *Store) AllTargetNames(ctx context.Context) []string {
	return s.names(ctx, "all targets", s.db.WithContext(ctx))
}

func (s *Store) UnverifiedTargetNames(ctx context.Context) []string {
	q := s.db.WithContext(ctx).Where("validated IS NULL OR validated = ?", false)
	return s.names(ctx, "unverified targets", q)
}

// UnverifiedTargetNamesOnDate lists unverified targets whose created_at falls
// on the calendar day of date. Stored timestamps are UTC.
func (s *Store) UnverifiedTargetNamesOnDate(ctx context.Context, date time.Time) []string {
	q := s.db.WithContext(ctx).
		Where("validated IS NULL OR validated = ?", false).
		Where("DATE(created_at) = ?", date.Format(time.DateOnly))
	return s.names(ctx, "unverified targets by date", q)
}

// SelectDomainsMatching returns target names satisfying every filter.
func (s *Store) SelectDomainsMatching(ctx context.Context, filters ...Filter) []string {
	q := s.db.WithContext(ctx)
	for _, f := range filters {
		var err error
		if q, err = f.apply(q); err != nil {
			s.fail("select domains", err)
			return []string{}
		}
	}
	return s.names(ctx, "select domains", q)
}

func (s *Store) names(_ context.Context, op string, q *gorm.DB) []string {
	names := make([]string, 0)
	if err := q.Model(&models.Target{}).Order("id").Pluck("name", &names).Error; err != nil {
		s.fail(op, err)
		return []string{}
	}
	return names
}

// Target fetches one target by name.
func (s *Store) Target(ctx context.Context, name string) (models.Target, bool) {
	var target models.Target
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Target{}, false
	}
	if err != nil {
		s.fail("get target "+name, err)
		return models.Target{}, false
	}
	return target, true
}

// AllTargets returns every target row in insertion order.
func (s *Store) AllTargets(ctx context.Context) []models.Target {
	var targets []models.Target
	if err := s.db.WithContext(ctx).Order("id").Find(&targets).Error; err != nil {
		s.fail("all targets", err)
		return nil
	}
	return targets
}

func (s *Store) SeedDomainNames(ctx context.Context) []string {
	names := make([]string, 0)
	if err := s.db.WithContext(ctx).Model(&models.SeedDomain{}).Order("id").Pluck("name", &names).Error; err != nil {
		s.fail("seed domains", err)
		return []string{}
	}
	return names
}
