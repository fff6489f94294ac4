package services

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed instruments.yaml
var defaultInstruments []byte

const (
	InstrumentSoftSkills            = "soft-skills"
	InstrumentMultipleIntelligences = "multiple-intelligences"
)

const (
	schemeSum      = "sum"
	schemeCountMax = "count_max"
)

type LevelRange struct {
	Min   int    `yaml:"min"`
	Max   int    `yaml:"max"`
	Label string `yaml:"label"`
}

type ScoreDomain struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// LevelTable is an ordered list of inclusive ranges that partitions Domain.
type LevelTable struct {
	Domain ScoreDomain  `yaml:"domain"`
	Levels []LevelRange `yaml:"levels"`
}

// Lookup returns the label of the first range containing score. Scores
// outside every range resolve to the lowest label.
func (t LevelTable) Lookup(score int) string {
	for _, r := range t.Levels {
		if score >= r.Min && score <= r.Max {
			return r.Label
		}
	}
	return t.Levels[0].Label
}

func (t LevelTable) validate() error {
	if len(t.Levels) == 0 {
		return fmt.Errorf("level table is empty")
	}
	if t.Levels[0].Min != t.Domain.Min {
		return fmt.Errorf("first range starts at %d, domain starts at %d", t.Levels[0].Min, t.Domain.Min)
	}
	for i, r := range t.Levels {
		if r.Label == "" {
			return fmt.Errorf("range %d has no label", i)
		}
		if r.Min > r.Max {
			return fmt.Errorf("range %d is inverted: [%d,%d]", i, r.Min, r.Max)
		}
		if i > 0 && r.Min != t.Levels[i-1].Max+1 {
			return fmt.Errorf("range %d starts at %d, expected %d", i, r.Min, t.Levels[i-1].Max+1)
		}
	}
	if last := t.Levels[len(t.Levels)-1]; last.Max != t.Domain.Max {
		return fmt.Errorf("last range ends at %d, domain ends at %d", last.Max, t.Domain.Max)
	}
	return nil
}

type Competency struct {
	Name      string       `yaml:"name"`
	Questions []int        `yaml:"questions"`
	Levels    []LevelRange `yaml:"levels"`

	table LevelTable
}

type Instrument struct {
	Name            string       `yaml:"name"`
	Scheme          string       `yaml:"scheme"`
	MinRating       int          `yaml:"min_rating"`
	MaxRating       int          `yaml:"max_rating"`
	PointsPerAnswer int          `yaml:"points_per_answer"`
	Overall         *LevelTable  `yaml:"overall"`
	Competencies    []Competency `yaml:"competencies"`
}

type instrumentFile struct {
	Instruments []Instrument `yaml:"instruments"`
}

// LoadInstruments parses and validates an instrument definition file.
func LoadInstruments(data []byte) (map[string]*Instrument, error) {
	var file instrumentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse instruments: %w", err)
	}

	instruments := make(map[string]*Instrument, len(file.Instruments))
	for i := range file.Instruments {
		inst := &file.Instruments[i]
		if err := inst.prepare(); err != nil {
			return nil, fmt.Errorf("invalid instrument %q: %w", inst.Name, err)
		}
		if _, dup := instruments[inst.Name]; dup {
			return nil, fmt.Errorf("duplicate instrument %q", inst.Name)
		}
		instruments[inst.Name] = inst
	}
	return instruments, nil
}

func (inst *Instrument) prepare() error {
	if inst.Name == "" {
		return fmt.Errorf("missing name")
	}
	if inst.MinRating > inst.MaxRating {
		return fmt.Errorf("rating scale [%d,%d] is inverted", inst.MinRating, inst.MaxRating)
	}
	switch inst.Scheme {
	case schemeSum:
		if inst.Overall == nil {
			return fmt.Errorf("sum instruments need an overall table")
		}
		if err := inst.Overall.validate(); err != nil {
			return fmt.Errorf("overall: %w", err)
		}
	case schemeCountMax:
		if inst.PointsPerAnswer <= 0 {
			return fmt.Errorf("points_per_answer must be positive")
		}
	default:
		return fmt.Errorf("unknown scheme %q", inst.Scheme)
	}
	if len(inst.Competencies) == 0 {
		return fmt.Errorf("no competencies")
	}

	seenQuestion := make(map[int]string)
	seenName := make(map[string]bool)
	for i := range inst.Competencies {
		c := &inst.Competencies[i]
		if c.Name == "" || seenName[c.Name] {
			return fmt.Errorf("competency %d has a missing or duplicate name", i)
		}
		seenName[c.Name] = true
		if len(c.Questions) == 0 {
			return fmt.Errorf("%s: no questions", c.Name)
		}
		for _, q := range c.Questions {
			if q <= 0 {
				return fmt.Errorf("%s: question index %d must be positive", c.Name, q)
			}
			if owner, ok := seenQuestion[q]; ok {
				return fmt.Errorf("question %d assigned to both %s and %s", q, owner, c.Name)
			}
			seenQuestion[q] = c.Name
		}

		c.table = LevelTable{Domain: inst.competencyDomain(len(c.Questions)), Levels: c.Levels}
		if err := c.table.validate(); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return nil
}

// competencyDomain is the range of values a competency score can take before
// the level lookup. Missing answers count as zero.
func (inst *Instrument) competencyDomain(questions int) ScoreDomain {
	if inst.Scheme == schemeCountMax {
		return ScoreDomain{Min: 0, Max: questions}
	}
	return ScoreDomain{Min: 0, Max: questions * inst.MaxRating}
}

type CompetencyScoringEngine interface {
	Score(instrument string, responses map[int]interface{}) (*models.InstrumentResult, error)
	Instruments() []string
}

type competencyScoringEngine struct {
	instruments map[string]*Instrument
}

// NewCompetencyScoringEngine loads the embedded instrument tables.
func NewCompetencyScoringEngine() (CompetencyScoringEngine, error) {
	return NewCompetencyScoringEngineFrom(defaultInstruments)
}

func NewCompetencyScoringEngineFrom(data []byte) (CompetencyScoringEngine, error) {
	instruments, err := LoadInstruments(data)
	if err != nil {
		return nil, err
	}
	return &competencyScoringEngine{instruments: instruments}, nil
}

// Instruments lists the known instrument names in sorted order.
func (e *competencyScoringEngine) Instruments() []string {
	names := make([]string, 0, len(e.instruments))
	for name := range e.instruments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *competencyScoringEngine) Score(instrument string, responses map[int]interface{}) (*models.InstrumentResult, error) {
	inst, ok := e.instruments[instrument]
	if !ok {
		return nil, apperror.Validation("score survey", fmt.Sprintf("unknown instrument %q", instrument),
			"available instruments: "+strings.Join(e.Instruments(), ", "))
	}

	result := &models.InstrumentResult{
		Instrument:    inst.Name,
		PerCompetency: make(map[string]models.CompetencyResult, len(inst.Competencies)),
		Order:         make([]string, 0, len(inst.Competencies)),
	}

	best := -1
	for _, c := range inst.Competencies {
		raw := 0
		for _, q := range c.Questions {
			rating, ok := ratingValue(responses[q])
			if !ok || rating < inst.MinRating || rating > inst.MaxRating {
				continue
			}
			switch inst.Scheme {
			case schemeSum:
				raw += rating
			case schemeCountMax:
				if rating == inst.MaxRating {
					raw++
				}
			}
		}

		score := raw
		if inst.Scheme == schemeCountMax {
			score = raw * inst.PointsPerAnswer
		}
		level := c.table.Lookup(raw)

		result.PerCompetency[c.Name] = models.CompetencyResult{Score: score, Level: level}
		result.Order = append(result.Order, c.Name)
		result.Total += score

		if inst.Scheme == schemeCountMax && score > best {
			best = score
			result.OverallLevel = level
		}
	}

	if inst.Scheme == schemeSum {
		result.OverallLevel = inst.Overall.Lookup(result.Total)
	}
	return result, nil
}

// ratingValue reads a survey answer. Answers arrive as JSON numbers or
// numeric strings; anything else is not a rating.
func ratingValue(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case json.Number:
		n, err := strconv.Atoi(x.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		return n, err == nil
	}
	return 0, false
}
