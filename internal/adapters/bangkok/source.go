package bangkok

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"fxcross/internal/adapters"
	"fxcross/internal/domain"

	"github.com/sirupsen/logrus"
)

// RateKindTT is the telegraphic-transfer rate kind, the one published for
// clients holding both a local and a foreign currency account.
const RateKindTT = "TT"

const familiesCacheKey = "families"

// Source formats the bank's raw API responses into leg quotes: it resolves
// the last update date, looks up family codes by description and extracts
// the latest TT rate from the rate history.
type Source struct {
	client *Client
	cache  adapters.FamilyCache
	family string
}

func NewSource(client *Client, familyCache adapters.FamilyCache, family string) *Source {
	return &Source{client: client, cache: familyCache, family: family}
}

// UpdateDate fetches the bank's last rate-update timestamp and splits the
// DD/MM/YYYY day field into the numeric components the history endpoint
// takes as separate path segments.
func (s *Source) UpdateDate(ctx context.Context) (*domain.UpdateDate, error) {
	entries, err := s.client.GetLastUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("last update response is empty: %w", domain.ErrNoData)
	}

	parts := strings.Split(entries[0].Day, "/")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed update day %q: %w", entries[0].Day, domain.ErrNoData)
	}
	day, dayErr := strconv.Atoi(parts[0])
	month, monthErr := strconv.Atoi(parts[1])
	year, yearErr := strconv.Atoi(parts[2])
	if dayErr != nil || monthErr != nil || yearErr != nil {
		return nil, fmt.Errorf("malformed update day %q: %w", entries[0].Day, domain.ErrNoData)
	}

	logrus.Debugf("Bank last rate update: %s %s", entries[0].Day, entries[0].Time)
	return &domain.UpdateDate{Day: day, Month: month, Year: year, Time: entries[0].Time}, nil
}

func (s *Source) families(ctx context.Context) ([]domain.Family, error) {
	if s.cache != nil {
		if families, ok := s.cache.Get(familiesCacheKey); ok {
			return families, nil
		}
	}
	families, err := s.client.GetFamilies(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(familiesCacheKey, families)
	}
	return families, nil
}

// ResolveFamily maps a human-readable currency name to the bank's family
// code via a case-insensitive substring match on the catalogue description.
// A miss is domain.ErrNoData, never a panic.
func (s *Source) ResolveFamily(ctx context.Context, name string) (string, error) {
	matches, err := s.Families(ctx, name)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		logrus.Warnf("No family found for currency %q", name)
		return "", fmt.Errorf("family for currency %q: %w", name, domain.ErrNoData)
	}
	logrus.Debugf("Family for currency %q is %s", name, matches[0].Family)
	return matches[0].Family, nil
}

// Families returns all catalogue rows whose description matches the given
// pattern, case-insensitively. The pattern is treated literally.
func (s *Source) Families(ctx context.Context, pattern string) ([]domain.Family, error) {
	families, err := s.families(ctx)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile("(?i).*" + regexp.QuoteMeta(pattern) + ".*")
	if err != nil {
		return nil, fmt.Errorf("bad family pattern %q: %w", pattern, err)
	}

	var matches []domain.Family
	for _, f := range families {
		if re.MatchString(f.Description) {
			matches = append(matches, f)
		}
	}
	return matches, nil
}

// Rate fetches the rate history for one family bounded by [date, today] and
// returns the chronologically last record as a quote. Records are sorted by
// their own Ddate/DTime fields; upstream array order is not trusted.
func (s *Source) Rate(ctx context.Context, date *domain.UpdateDate, family, kind string) (*domain.Quote, error) {
	if date == nil || family == "" {
		return nil, fmt.Errorf("rate lookup needs a date and a family: %w", domain.ErrMissingInput)
	}

	records, err := s.client.GetRateHistory(ctx, *date, family)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no rate history for family %q: %w", family, domain.ErrNoData)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return recordTime(records[i]).Before(recordTime(records[j]))
	})
	last := records[len(records)-1]

	raw := last[kind]
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed %s rate %q for family %q: %w", kind, raw, family, domain.ErrNoData)
	}

	dateParts := strings.Split(last["Ddate"], "/")
	formatted := last["Ddate"]
	if len(dateParts) == 3 {
		formatted = fmt.Sprintf("%s/%s/%s", dateParts[1], dateParts[0], dateParts[2])
	}

	logrus.Debugf("%s rate last update for %s: %s", kind, family, raw)
	message := fmt.Sprintf("THB         : %s\nUpdate: %s %s\n\n", raw, last["DTime"], formatted)
	return &domain.Quote{Rate: rate, Message: message}, nil
}

// Quote implements adapters.QuoteSource for the bank leg: last update date,
// then the TT rate for the configured family.
func (s *Source) Quote(ctx context.Context) (*domain.Quote, error) {
	date, err := s.UpdateDate(ctx)
	if err != nil {
		return nil, err
	}
	return s.Rate(ctx, date, s.family, RateKindTT)
}

func recordTime(record map[string]string) time.Time {
	t, err := time.Parse("02/01/2006 15:04", record["Ddate"]+" "+record["DTime"])
	if err != nil {
		t, err = time.Parse("02/01/2006", record["Ddate"])
		if err != nil {
			return time.Time{}
		}
	}
	return t
}
