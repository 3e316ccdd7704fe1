package taxonomy

import (
	"sort"
	"strings"
)

// categories maps canonical skill names to their category. Lookups are
// case-insensitive; unknown names fall back to "other".
var categories = map[string]string{
	"javascript": "programming_language",
	"typescript": "programming_language",
	"python":     "programming_language",
	"java":       "programming_language",
	"go":         "programming_language",
	"c++":        "programming_language",
	"c#":         "programming_language",
	"php":        "programming_language",
	"ruby":       "programming_language",
	"rust":       "programming_language",
	"kotlin":     "programming_language",
	"swift":      "programming_language",
	"scala":      "programming_language",
	"r":          "programming_language",
	"sql":        "database",

	"react":   "frontend",
	"angular": "frontend",
	"vue":     "frontend",
	"svelte":  "frontend",
	"html":    "frontend",
	"css":     "frontend",
	"sass":    "frontend",
	"next.js": "frontend",
	"tailwind": "frontend",

	"node.js": "backend",
	"express": "backend",
	"django":  "backend",
	"flask":   "backend",
	"spring":  "backend",
	"laravel": "backend",
	"rails":   "backend",
	"graphql": "backend",
	"rest":    "backend",
	"grpc":    "backend",

	"postgresql":    "database",
	"mysql":         "database",
	"mongodb":       "database",
	"redis":         "database",
	"elasticsearch": "database",
	"sqlite":        "database",
	"oracle":        "database",
	"cassandra":     "database",

	"docker":     "devops",
	"kubernetes": "devops",
	"terraform":  "devops",
	"ansible":    "devops",
	"jenkins":    "devops",
	"ci/cd":      "devops",
	"git":        "devops",
	"linux":      "devops",

	"aws":          "cloud",
	"azure":        "cloud",
	"google cloud": "cloud",
	"heroku":       "cloud",
	"serverless":   "cloud",

	"machine learning": "data",
	"deep learning":    "data",
	"data analysis":    "data",
	"pandas":           "data",
	"numpy":            "data",
	"tensorflow":       "data",
	"pytorch":          "data",
	"spark":            "data",
	"tableau":          "data",
	"power bi":         "data",
	"etl":              "data",

	"android":       "mobile",
	"ios":           "mobile",
	"react native":  "mobile",
	"flutter":       "mobile",

	"selenium":     "testing",
	"cypress":      "testing",
	"jest":         "testing",
	"unit testing": "testing",
	"qa":           "testing",

	"penetration testing": "security",
	"cryptography":        "security",
	"oauth":               "security",

	"figma":       "design",
	"ui design":   "design",
	"ux design":   "design",
	"photoshop":   "design",

	"agile":            "methodology",
	"scrum":            "methodology",
	"kanban":           "methodology",
	"project management": "methodology",

	"communication":    "soft_skill",
	"leadership":       "soft_skill",
	"teamwork":         "soft_skill",
	"problem solving":  "soft_skill",
	"critical thinking": "soft_skill",
}

// aliases maps common variants to canonical skill names.
var aliases = map[string]string{
	"js":           "javascript",
	"ts":           "typescript",
	"golang":       "go",
	"node":         "node.js",
	"nodejs":       "node.js",
	"reactjs":      "react",
	"react.js":     "react",
	"vuejs":        "vue",
	"vue.js":       "vue",
	"angularjs":    "angular",
	"nextjs":       "next.js",
	"postgres":     "postgresql",
	"mongo":        "mongodb",
	"k8s":          "kubernetes",
	"gcp":          "google cloud",
	"amazon web services": "aws",
	"ml":           "machine learning",
	"tailwindcss":  "tailwind",
	"cicd":         "ci/cd",
	"scss":         "sass",
	"powerbi":      "power bi",
	"dotnet":       "c#",
	".net":         "c#",
	"pentest":      "penetration testing",
	"ui/ux":        "ui design",
}

const DefaultCategory = "other"

// Normalize lowercases a raw skill token and resolves aliases. Unknown
// input passes through lowercased, so the function is total.
func Normalize(raw string) string {
	n := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := aliases[n]; ok {
		return canonical
	}
	return n
}

// CategoryOf returns the category for a skill name, or DefaultCategory
// when the name is not in the taxonomy.
func CategoryOf(name string) string {
	if c, ok := categories[Normalize(name)]; ok {
		return c
	}
	return DefaultCategory
}

// Known reports whether a skill name resolves to a taxonomy entry.
func Known(name string) bool {
	_, ok := categories[Normalize(name)]
	return ok
}

var scanTerms = buildScanTerms()

// ScanTerms returns every token worth scanning for in free text: all
// canonical names plus all aliases, in deterministic order.
func ScanTerms() []string {
	return scanTerms
}

func buildScanTerms() []string {
	out := make([]string, 0, len(categories)+len(aliases))
	for name := range categories {
		out = append(out, name)
	}
	for alias := range aliases {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}
