package seeder

import (
	"context"

	"skillgap/internal/database"
)

// CurriculaSeeder loads a couple of demo programs so a fresh install
// has something to analyze.
type CurriculaSeeder struct{}

func (CurriculaSeeder) Name() string { return "curricula" }

func (CurriculaSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "curricula",
		"id", "program_name", "description", "target_industries", "course_skills"); err != nil {
		return err
	}

	items := []struct {
		ProgramName      string
		Description      string
		TargetIndustries []string
		CourseSkills     []string
	}{
		{
			ProgramName: "Software Engineering BSc",
			Description: "A four-year program covering software design, data structures, web development with JavaScript and React, backend development with Java and SQL databases, and an introduction to cloud deployment.",
			TargetIndustries: []string{
				"technology",
			},
			CourseSkills: []string{
				"java", "javascript", "react", "sql", "postgresql", "git", "agile",
			},
		},
		{
			ProgramName: "Data Analytics Diploma",
			Description: "An eighteen-month diploma teaching statistics, data wrangling with Python and pandas, SQL reporting, and dashboarding.",
			TargetIndustries: []string{
				"technology", "fintech",
			},
			CourseSkills: []string{
				"python", "pandas", "sql", "excel", "tableau",
			},
		},
	}

	for _, it := range items {
		_, err := db.Exec(ctx,
			`INSERT INTO curricula (id, program_name, description, target_industries, course_skills)
			 VALUES (gen_random_uuid(), $1, $2, $3, $4)
			 ON CONFLICT (program_name) DO NOTHING`,
			it.ProgramName, it.Description, it.TargetIndustries, it.CourseSkills,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
