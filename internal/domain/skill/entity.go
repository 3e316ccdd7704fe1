package skill

type Importance string

const (
	ImportanceRequired  Importance = "required"
	ImportancePreferred Importance = "preferred"
)

type Record struct {
	Name       string
	Category   string
	Frequency  int
	Importance Importance
}

type MarketSkill struct {
	Name           string
	Category       string
	JobCount       int
	TotalMentions  int
	RequiredCount  int
	PreferredCount int
	DemandRate     float64
}
