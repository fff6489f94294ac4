package services

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minSkillLength = 2
	maxSkillLength = 50
)

var (
	markupPattern = regexp.MustCompile(`<[^>]*>`)
	bulletPattern = regexp.MustCompile(`^(?:[-*•·▪●◦‣>]+|\d+[.)])\s*`)
)

// canonicalSkills maps a lower-cased, trimmed label to its canonical spelling.
var canonicalSkills = map[string]string{
	"js":                      "JavaScript",
	"javascript":              "JavaScript",
	"ts":                      "TypeScript",
	"typescript":              "TypeScript",
	"ai/ml":                   "Machine Learning",
	"ml":                      "Machine Learning",
	"machine learning":        "Machine Learning",
	"ai":                      "Artificial Intelligence",
	"golang":                  "Go",
	"go":                      "Go",
	"node":                    "Node.js",
	"nodejs":                  "Node.js",
	"node.js":                 "Node.js",
	"react":                   "React",
	"reactjs":                 "React",
	"react.js":                "React",
	"postgres":                "PostgreSQL",
	"postgresql":              "PostgreSQL",
	"mysql":                   "MySQL",
	"sql":                     "SQL",
	"aws":                     "AWS",
	"gcp":                     "Google Cloud",
	"k8s":                     "Kubernetes",
	"c++":                     "C++",
	"cpp":                     "C++",
	"c#":                      "C#",
	"csharp":                  "C#",
	"html":                    "HTML",
	"html5":                   "HTML",
	"css":                     "CSS",
	"css3":                    "CSS",
	"php":                     "PHP",
	"ui":                      "UI",
	"ux":                      "UX",
	"ui design":               "UI Design",
	"ux design":               "UX Design",
	"ui/ux":                   "UI/UX Design",
	"ux/ui":                   "UI/UX Design",
	"nlp":                     "Natural Language Processing",
	"excel":                   "Microsoft Excel",
	"ms excel":                "Microsoft Excel",
	"powerbi":                 "Power BI",
	"power bi":                "Power BI",
	"api":                     "REST APIs",
	"apis":                    "REST APIs",
	"rest api":                "REST APIs",
	"ci/cd":                   "CI/CD",
	"seo":                     "SEO",
	"git":                     "Git",
	"communication skills":    "Communication",
	"team work":               "Teamwork",
	"problem-solving":         "Problem Solving",
	"critical-thinking":       "Critical Thinking",
	"microsoft office suite":  "Microsoft Office",
	"artificial intelligence": "Artificial Intelligence",
}

// hardSkillKeywords mark technical skills, which are displayed first.
var hardSkillKeywords = []string{
	"programming", "engineering", "development", "data", "sql", "python", "java",
	"script", "cloud", "aws", "azure", "docker", "kubernetes", "machine learning",
	"artificial intelligence", "analytics", "statistic", "design", "rest api", "git",
	"linux", "excel", "power bi", "security", "html", "css", "c++", "c#", "php",
	"react", "node.js", "natural language", "ci/cd", "seo",
}

// hardSkillExact covers short names that would match too much as substrings.
var hardSkillExact = map[string]bool{
	"go": true,
}

// SkillSet is an ordered list of unique canonical skill names.
type SkillSet []string

type SkillNormalizer interface {
	Normalize(raw []string) SkillSet
	SortForDisplay(skills SkillSet) SkillSet
}

type skillNormalizer struct{}

func NewSkillNormalizer() SkillNormalizer {
	return &skillNormalizer{}
}

// Normalize cleans, canonicalizes and deduplicates raw skill labels, keeping
// first-seen order. Invalid labels are dropped.
func (n *skillNormalizer) Normalize(raw []string) SkillSet {
	caser := cases.Title(language.English)
	seen := make(map[string]bool, len(raw))
	skills := make(SkillSet, 0, len(raw))

	for _, label := range raw {
		name := normalizeSkill(label, caser)
		if name == "" {
			continue
		}

		length := utf8.RuneCountInString(name)
		if length < minSkillLength || length > maxSkillLength {
			continue
		}

		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, name)
	}

	return skills
}

func normalizeSkill(label string, caser cases.Caser) string {
	text := html.UnescapeString(markupPattern.ReplaceAllString(label, " "))
	text = strings.TrimSpace(text)
	text = bulletPattern.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	text = strings.Trim(text, ".,;:!?\"'`()[]{}|")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)
	if canonical, ok := canonicalSkills[lower]; ok {
		return canonical
	}

	return keepAcronyms(text, caser.String(lower))
}

// keepAcronyms restores words written as 2-3 capital letters ("QA", "UX")
// that title casing turned into "Qa" or "Ux".
func keepAcronyms(original, titled string) string {
	words := strings.Fields(original)
	out := strings.Fields(titled)
	if len(words) != len(out) {
		return titled
	}
	for i, w := range words {
		if isAcronym(w) {
			out[i] = w
		}
	}
	return strings.Join(out, " ")
}

func isAcronym(word string) bool {
	n := utf8.RuneCountInString(word)
	if n < 2 || n > 3 {
		return false
	}
	for _, r := range word {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// SortForDisplay puts hard skills first, then sorts each group
// case-insensitively. The input is not modified.
func (n *skillNormalizer) SortForDisplay(skills SkillSet) SkillSet {
	sorted := make(SkillSet, len(skills))
	copy(sorted, skills)

	sort.SliceStable(sorted, func(i, j int) bool {
		hi, hj := isHardSkill(sorted[i]), isHardSkill(sorted[j])
		if hi != hj {
			return hi
		}
		return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
	})

	return sorted
}

func isHardSkill(name string) bool {
	lower := strings.ToLower(name)
	if hardSkillExact[lower] {
		return true
	}
	for _, keyword := range hardSkillKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
