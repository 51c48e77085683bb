package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/models"
)

// DefaultOddsPrefix selects Bet365 1X2 prices (B365H, B365D, B365A)
const DefaultOddsPrefix = "B365"

// matchNamespace seeds deterministic match ids
var matchNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("odds-backtester/match"))

var seasonPattern = regexp.MustCompile(`(?:^|[^0-9])([0-9]{2})([0-9]{2})(?:[^0-9]|$)`)

var dateLayouts = []string{"02/01/2006", "02/01/06"}

// FootballDataOptions configures a football-data.co.uk CSV source
type FootballDataOptions struct {
	Domain        string
	Files         []string
	Season        string
	OddsPrefix    string
	BettingPrefix string
	AuxColumns    map[string]string
}

// FootballDataSource reads football-data.co.uk results files
type FootballDataSource struct {
	opts   FootballDataOptions
	logger *logrus.Logger
}

// NewFootballDataSource creates a CSV data source
func NewFootballDataSource(opts FootballDataOptions, logger *logrus.Logger) (*FootballDataSource, error) {
	if opts.Domain == "" {
		return nil, fmt.Errorf("domain is required")
	}
	if opts.OddsPrefix == "" {
		opts.OddsPrefix = DefaultOddsPrefix
	}
	if opts.BettingPrefix == opts.OddsPrefix {
		opts.BettingPrefix = ""
	}
	known := make(map[string]bool)
	for _, name := range features.AuxStatNames {
		known[name] = true
	}
	for name := range opts.AuxColumns {
		if !known[name] {
			return nil, fmt.Errorf("unknown auxiliary stat %q", name)
		}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &FootballDataSource{opts: opts, logger: logger}, nil
}

// Name returns the name of the data source
func (s *FootballDataSource) Name() string {
	return "football-data:" + s.opts.Domain
}

// Load reads every configured file. The first malformed row aborts the load.
func (s *FootballDataSource) Load(ctx context.Context) ([]models.Match, error) {
	var matches []models.Match
	for _, path := range s.opts.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileMatches, err := s.loadFile(path)
		if err != nil {
			return nil, err
		}
		matches = append(matches, fileMatches...)
	}

	s.logger.WithFields(logrus.Fields{
		"domain":  s.opts.Domain,
		"files":   len(s.opts.Files),
		"matches": len(matches),
	}).Info("Loaded historical matches")

	return matches, nil
}

func (s *FootballDataSource) loadFile(path string) ([]models.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	season := s.opts.Season
	if season == "" {
		season = SeasonFromPath(path)
	}
	return s.parse(f, path, season)
}

// parse reads one CSV stream; name is used in error messages
func (s *FootballDataSource) parse(r io.Reader, name, season string) ([]models.Match, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: empty file", models.ErrMalformedRecord, name)
		}
		return nil, fmt.Errorf("%w: %s: %v", models.ErrMalformedRecord, name, err)
	}
	cols, err := s.resolveColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrMalformedRecord, name, err)
	}

	var matches []models.Match
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrMalformedRecord, name, err)
		}
		line, _ := reader.FieldPos(0)
		if blank(record) {
			continue
		}

		match, err := s.parseRecord(record, cols, season)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", models.ErrMalformedRecord, name, line, err)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

type columns struct {
	date, kickoff, home, away, result int
	odds                              [3]int
	betting                           [3]int
	aux                               map[string]int
}

func (s *FootballDataSource) resolveColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return -1, fmt.Errorf("missing column %s", name)
		}
		return i, nil
	}

	var (
		cols columns
		err  error
	)
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{"Date", &cols.date},
		{"HomeTeam", &cols.home},
		{"AwayTeam", &cols.away},
		{"FTR", &cols.result},
	} {
		if *c.dst, err = lookup(c.name); err != nil {
			return cols, err
		}
	}
	cols.kickoff = -1
	if i, ok := index["Time"]; ok {
		cols.kickoff = i
	}

	for i, suffix := range []string{"H", "D", "A"} {
		if cols.odds[i], err = lookup(s.opts.OddsPrefix + suffix); err != nil {
			return cols, err
		}
		cols.betting[i] = -1
		if s.opts.BettingPrefix != "" {
			if cols.betting[i], err = lookup(s.opts.BettingPrefix + suffix); err != nil {
				return cols, err
			}
		}
	}

	cols.aux = make(map[string]int, len(s.opts.AuxColumns))
	for stat, column := range s.opts.AuxColumns {
		if cols.aux[stat], err = lookup(column); err != nil {
			return cols, err
		}
	}
	return cols, nil
}

func (s *FootballDataSource) parseRecord(record []string, cols columns, season string) (models.Match, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	kickoff, err := parseKickoff(field(cols.date), field(cols.kickoff))
	if err != nil {
		return models.Match{}, err
	}

	home, away := field(cols.home), field(cols.away)
	if home == "" || away == "" {
		return models.Match{}, fmt.Errorf("missing team name")
	}

	outcome, err := models.ParseResultCode(field(cols.result))
	if err != nil {
		return models.Match{}, err
	}

	var odds models.OddsTriple
	legs := []*float64{&odds.Home, &odds.Draw, &odds.Away}
	for i, leg := range legs {
		v, err := strconv.ParseFloat(field(cols.odds[i]), 64)
		if err != nil {
			return models.Match{}, fmt.Errorf("%w: %s%s=%q", models.ErrInvalidOdds,
				s.opts.OddsPrefix, []string{"H", "D", "A"}[i], field(cols.odds[i]))
		}
		*leg = v
	}
	if err := odds.Validate(); err != nil {
		return models.Match{}, err
	}

	match := models.Match{
		ID:          MatchID(s.opts.Domain, kickoff, home, away),
		Domain:      s.opts.Domain,
		Season:      season,
		Kickoff:     kickoff,
		HomeTeam:    home,
		AwayTeam:    away,
		Odds:        odds,
		TrueOutcome: outcome,
	}

	if s.opts.BettingPrefix != "" {
		betting := models.OddsTriple{
			Home: optionalPrice(field(cols.betting[0])),
			Draw: optionalPrice(field(cols.betting[1])),
			Away: optionalPrice(field(cols.betting[2])),
		}
		match.BettingOdds = &betting
	}

	if len(cols.aux) > 0 {
		match.Aux = make(map[string]float64, len(cols.aux))
		for stat, i := range cols.aux {
			raw := field(i)
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return models.Match{}, fmt.Errorf("invalid %s value %q", stat, raw)
			}
			match.Aux[stat] = v
		}
	}

	return match, nil
}

// MatchID derives a stable id from the fixture's identity
func MatchID(domain string, kickoff time.Time, home, away string) string {
	key := strings.Join([]string{domain, kickoff.UTC().Format("2006-01-02"), home, away}, "|")
	return uuid.NewSHA1(matchNamespace, []byte(key)).String()
}

// SeasonFromPath extracts a season label such as "2023-24" from names like
// E0_2324.csv or data/2324/E0.csv. Returns "" when none is found.
func SeasonFromPath(path string) string {
	for _, part := range []string{filepath.Base(path), filepath.Base(filepath.Dir(path))} {
		for _, m := range seasonPattern.FindAllStringSubmatch(part, -1) {
			start, _ := strconv.Atoi(m[1])
			end, _ := strconv.Atoi(m[2])
			if (start+1)%100 == end {
				return fmt.Sprintf("20%02d-%02d", start, end)
			}
		}
	}
	return ""
}

func parseKickoff(date, clock string) (time.Time, error) {
	if date == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	var (
		day time.Time
		err error
	)
	for _, layout := range dateLayouts {
		if len(date) != len(layout) {
			continue
		}
		if day, err = time.Parse(layout, date); err == nil {
			break
		}
	}
	if day.IsZero() {
		return time.Time{}, fmt.Errorf("bad date %q", date)
	}
	if clock == "" {
		return day, nil
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q", clock)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

// optionalPrice returns NaN for a missing or unusable betting price
func optionalPrice(raw string) float64 {
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
