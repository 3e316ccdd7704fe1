package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"skillgap/internal/domain/skill"
	"skillgap/internal/domain/taxonomy"
)

const (
	// importanceWindow is the number of characters scanned on each side of
	// a skill's first occurrence when deciding required vs preferred.
	importanceWindow = 50

	// minDescriptionLength is the shortest job description worth running
	// extraction on.
	minDescriptionLength = 50
)

var preferredCues = []string{
	"preferred",
	"nice to have",
	"nice-to-have",
	"plus",
	"bonus",
	"advantage",
	"desirable",
	"optional",
	"familiarity",
}

var requiredCues = []string{
	"required",
	"require",
	"must have",
	"must-have",
	"essential",
	"mandatory",
	"need",
	"minimum",
	"proficient",
}

var termPatterns = buildTermPatterns()

func buildTermPatterns() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(taxonomy.ScanTerms()))
	for _, term := range taxonomy.ScanTerms() {
		pat := `(^|[^a-z0-9])` + regexp.QuoteMeta(term) + `([^a-z0-9]|$)`
		out[term] = regexp.MustCompile(pat)
	}
	return out
}

// ExtractSkills scans free text for taxonomy terms and returns one record
// per distinct canonical skill found. When an alias and its canonical form
// both occur, frequencies sum and importance promotes to required if any
// occurrence was required. Empty input yields an empty result.
func ExtractSkills(text, fallbackCategory string) []skill.Record {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	type hit struct {
		frequency  int
		importance skill.Importance
	}
	hits := make(map[string]hit)

	for _, term := range taxonomy.ScanTerms() {
		re := termPatterns[term]
		matches := re.FindAllStringIndex(lower, -1)
		if len(matches) == 0 {
			continue
		}

		termStart := matches[0][0]
		if !strings.HasPrefix(lower[termStart:], term) {
			termStart++
		}
		imp := importanceAround(lower, term, termStart)
		canonical := taxonomy.Normalize(term)

		h, seen := hits[canonical]
		h.frequency += len(matches)
		if !seen {
			h.importance = imp
		} else if imp == skill.ImportanceRequired {
			h.importance = skill.ImportanceRequired
		}
		hits[canonical] = h
	}

	if len(hits) == 0 {
		return nil
	}

	out := make([]skill.Record, 0, len(hits))
	for name, h := range hits {
		out = append(out, skill.Record{
			Name:       name,
			Category:   resolveCategory(name, fallbackCategory),
			Frequency:  h.frequency,
			Importance: h.importance,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Frequency == out[j].Frequency {
			return out[i].Name < out[j].Name
		}
		return out[i].Frequency > out[j].Frequency
	})
	return out
}

// importanceAround inspects a window of up to importanceWindow characters
// on each side of the first occurrence of term, clipped at sentence
// boundaries so cues from a neighbouring sentence do not leak in.
// Preferred cues win over required cues; absent both, the skill is
// treated as required.
func importanceAround(textLower, term string, idx int) skill.Importance {
	if idx < 0 || idx >= len(textLower) {
		return skill.ImportanceRequired
	}

	start := idx - importanceWindow
	if start < 0 {
		start = 0
	}
	end := idx + len(term) + importanceWindow
	if end > len(textLower) {
		end = len(textLower)
	}
	if cut := strings.LastIndexAny(textLower[start:idx], ".!?\n"); cut >= 0 {
		start += cut + 1
	}
	termEnd := idx + len(term)
	if cut := strings.IndexAny(textLower[termEnd:end], ".!?\n"); cut >= 0 {
		end = termEnd + cut
	}
	window := textLower[start:end]

	for _, cue := range preferredCues {
		if strings.Contains(window, cue) {
			return skill.ImportancePreferred
		}
	}
	for _, cue := range requiredCues {
		if strings.Contains(window, cue) {
			return skill.ImportanceRequired
		}
	}
	return skill.ImportanceRequired
}

func resolveCategory(name, fallbackCategory string) string {
	if taxonomy.Known(name) {
		return taxonomy.CategoryOf(name)
	}
	if strings.TrimSpace(fallbackCategory) != "" {
		return fallbackCategory
	}
	return taxonomy.DefaultCategory
}

// FromNames builds skill records from pre-declared skill names (e.g. the
// aggregated skill list of a curriculum's courses), merging duplicates.
func FromNames(names []string, fallbackCategory string) []skill.Record {
	merged := make(map[string]int)
	order := make([]string, 0, len(names))
	for _, raw := range names {
		name := taxonomy.Normalize(raw)
		if name == "" {
			continue
		}
		if _, ok := merged[name]; !ok {
			order = append(order, name)
		}
		merged[name]++
	}

	out := make([]skill.Record, 0, len(order))
	for _, name := range order {
		out = append(out, skill.Record{
			Name:       name,
			Category:   resolveCategory(name, fallbackCategory),
			Frequency:  merged[name],
			Importance: skill.ImportanceRequired,
		})
	}
	return out
}

// JobSkill is a pre-extracted skill carried by a job posting.
type JobSkill struct {
	Name       string
	Importance skill.Importance
}

// JobInput is the extraction view of one job posting.
type JobInput struct {
	Skills      []JobSkill
	Description string
	Industry    string
}

// ExtractFromJobs aggregates skills across a job batch into market demand
// figures, sorted by demand rate descending.
//
// The demand-rate denominator counts only jobs that supplied skills, either
// pre-extracted or via a usable description. Jobs contributing nothing are
// excluded, so the rate reads as the share of skill-bearing postings.
func ExtractFromJobs(jobs []JobInput) []skill.MarketSkill {
	type agg struct {
		category       string
		jobCount       int
		totalMentions  int
		requiredCount  int
		preferredCount int
	}
	byName := make(map[string]*agg)
	order := make([]string, 0)

	skillBearingJobs := 0

	for _, job := range jobs {
		var records []skill.Record
		switch {
		case len(job.Skills) > 0:
			records = make([]skill.Record, 0, len(job.Skills))
			for _, js := range job.Skills {
				name := taxonomy.Normalize(js.Name)
				if name == "" {
					continue
				}
				imp := js.Importance
				if imp != skill.ImportancePreferred {
					imp = skill.ImportanceRequired
				}
				records = append(records, skill.Record{
					Name:       name,
					Category:   resolveCategory(name, job.Industry),
					Frequency:  1,
					Importance: imp,
				})
			}
			if len(records) == 0 {
				continue
			}
			skillBearingJobs++
		case len(job.Description) > minDescriptionLength:
			records = ExtractSkills(job.Description, job.Industry)
			skillBearingJobs++
		default:
			continue
		}

		seenInJob := make(map[string]bool, len(records))
		for _, rec := range records {
			a, ok := byName[rec.Name]
			if !ok {
				a = &agg{category: rec.Category}
				byName[rec.Name] = a
				order = append(order, rec.Name)
			}
			if !seenInJob[rec.Name] {
				a.jobCount++
				seenInJob[rec.Name] = true
			}
			a.totalMentions += rec.Frequency
			if rec.Importance == skill.ImportancePreferred {
				a.preferredCount++
			} else {
				a.requiredCount++
			}
		}
	}

	if skillBearingJobs == 0 {
		return nil
	}

	out := make([]skill.MarketSkill, 0, len(order))
	for _, name := range order {
		a := byName[name]
		out = append(out, skill.MarketSkill{
			Name:           name,
			Category:       a.category,
			JobCount:       a.jobCount,
			TotalMentions:  a.totalMentions,
			RequiredCount:  a.requiredCount,
			PreferredCount: a.preferredCount,
			DemandRate:     round2(float64(a.jobCount) / float64(skillBearingJobs) * 100),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DemandRate == out[j].DemandRate {
			return out[i].Name < out[j].Name
		}
		return out[i].DemandRate > out[j].DemandRate
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
