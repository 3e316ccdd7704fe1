package extract

import (
	"testing"

	"skillgap/internal/domain/skill"
)

func findRecord(t *testing.T, records []skill.Record, name string) skill.Record {
	t.Helper()
	for _, r := range records {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("skill %q not found in %v", name, records)
	return skill.Record{}
}

func TestExtractSkillsImportanceCues(t *testing.T) {
	text := "We are looking for a React developer. Node.js experience is required. Familiarity with Docker is a plus."
	records := ExtractSkills(text, "")

	react := findRecord(t, records, "react")
	if react.Importance != skill.ImportanceRequired {
		t.Errorf("react importance = %s, want required", react.Importance)
	}
	if react.Category != "frontend" {
		t.Errorf("react category = %s, want frontend", react.Category)
	}

	node := findRecord(t, records, "node.js")
	if node.Importance != skill.ImportanceRequired {
		t.Errorf("node.js importance = %s, want required", node.Importance)
	}

	docker := findRecord(t, records, "docker")
	if docker.Importance != skill.ImportancePreferred {
		t.Errorf("docker importance = %s, want preferred", docker.Importance)
	}
}

func TestExtractSkillsWindowStopsAtSentenceBoundary(t *testing.T) {
	text := "Familiarity with agile is a plus. We use Docker every day."
	records := ExtractSkills(text, "")

	docker := findRecord(t, records, "docker")
	if docker.Importance != skill.ImportanceRequired {
		t.Errorf("docker importance = %s, want required (cue belongs to previous sentence)", docker.Importance)
	}
	agile := findRecord(t, records, "agile")
	if agile.Importance != skill.ImportancePreferred {
		t.Errorf("agile importance = %s, want preferred", agile.Importance)
	}
}

func TestExtractSkillsWordBoundaries(t *testing.T) {
	records := ExtractSkills("Deep JavaScript knowledge expected for this role, browsers only.", "")
	for _, r := range records {
		if r.Name == "java" {
			t.Fatal("java must not match inside javascript")
		}
	}
	findRecord(t, records, "javascript")
}

func TestExtractSkillsMergesAliases(t *testing.T) {
	records := ExtractSkills("Our services run on Node and our tooling is written in node.js as well.", "")

	node := findRecord(t, records, "node.js")
	if node.Frequency < 2 {
		t.Errorf("node.js frequency = %d, want at least 2 after alias merge", node.Frequency)
	}
	for _, r := range records {
		if r.Name == "node" {
			t.Fatal("alias node must fold into node.js, not appear on its own")
		}
	}
}

func TestExtractSkillsAliasPromotesToRequired(t *testing.T) {
	text := "Familiarity with Postgres is a plus. PostgreSQL tuning skills are mandatory."
	records := ExtractSkills(text, "")

	pg := findRecord(t, records, "postgresql")
	if pg.Importance != skill.ImportanceRequired {
		t.Errorf("postgresql importance = %s, want required (any required occurrence wins)", pg.Importance)
	}
}

func TestExtractSkillsEmptyInput(t *testing.T) {
	if got := ExtractSkills("", ""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := ExtractSkills("   \n\t ", ""); got != nil {
		t.Errorf("expected nil for blank input, got %v", got)
	}
	if got := ExtractSkills("we value punctuality and a positive attitude", ""); got != nil {
		t.Errorf("expected nil when no taxonomy term matches, got %v", got)
	}
}

func TestExtractSkillsIdempotent(t *testing.T) {
	text := "Python and Django required. Familiarity with Redis is a plus."
	first := ExtractSkills(text, "")
	second := ExtractSkills(text, "")

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("record %d differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestFromNames(t *testing.T) {
	records := FromNames([]string{"ReactJS", "react", "Golang", "  ", "quantum computing"}, "engineering")

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3: %v", len(records), records)
	}

	react := findRecord(t, records, "react")
	if react.Frequency != 2 {
		t.Errorf("react frequency = %d, want 2", react.Frequency)
	}
	if react.Importance != skill.ImportanceRequired {
		t.Errorf("react importance = %s, want required", react.Importance)
	}

	unknown := findRecord(t, records, "quantum computing")
	if unknown.Category != "engineering" {
		t.Errorf("unknown skill category = %s, want fallback engineering", unknown.Category)
	}
}

func TestExtractFromJobsDemandRate(t *testing.T) {
	jobs := []JobInput{
		{Skills: []JobSkill{{Name: "React", Importance: skill.ImportanceRequired}, {Name: "Docker", Importance: skill.ImportancePreferred}}},
		{Skills: []JobSkill{{Name: "reactjs"}}},
		{Description: "Backend engineer. Python and PostgreSQL required, plus React for internal tooling."},
		{Description: "too short"},
		{},
	}

	market := ExtractFromJobs(jobs)
	if len(market) == 0 {
		t.Fatal("expected market skills")
	}

	var react skill.MarketSkill
	for _, ms := range market {
		if ms.Name == "react" {
			react = ms
		}
	}
	if react.Name == "" {
		t.Fatalf("react missing from market skills: %v", market)
	}
	// 3 of 5 jobs bear skills; react occurs in all 3.
	if react.JobCount != 3 {
		t.Errorf("react job count = %d, want 3", react.JobCount)
	}
	if react.DemandRate != 100 {
		t.Errorf("react demand rate = %v, want 100", react.DemandRate)
	}

	var docker skill.MarketSkill
	for _, ms := range market {
		if ms.Name == "docker" {
			docker = ms
		}
	}
	if docker.JobCount != 1 {
		t.Errorf("docker job count = %d, want 1", docker.JobCount)
	}
	if docker.DemandRate != 33.33 {
		t.Errorf("docker demand rate = %v, want 33.33", docker.DemandRate)
	}
	if docker.PreferredCount != 1 || docker.RequiredCount != 0 {
		t.Errorf("docker counts = required %d preferred %d, want 0/1", docker.RequiredCount, docker.PreferredCount)
	}
}

func TestExtractFromJobsSortedByDemand(t *testing.T) {
	jobs := []JobInput{
		{Skills: []JobSkill{{Name: "python"}, {Name: "docker"}}},
		{Skills: []JobSkill{{Name: "python"}}},
	}

	market := ExtractFromJobs(jobs)
	for i := 1; i < len(market); i++ {
		if market[i].DemandRate > market[i-1].DemandRate {
			t.Fatalf("market skills not sorted by demand: %v", market)
		}
	}
	if market[0].Name != "python" {
		t.Errorf("top market skill = %s, want python", market[0].Name)
	}
}

func TestExtractFromJobsNoSkillBearingJobs(t *testing.T) {
	jobs := []JobInput{{Description: "short"}, {}}
	if got := ExtractFromJobs(jobs); got != nil {
		t.Errorf("expected nil when no job bears skills, got %v", got)
	}
}
