package extract

import (
	"strings"
)

// keywordRule maps a classification tag to the keywords that select it.
// Rules are evaluated in declared order so classification is deterministic.
type keywordRule struct {
	area     string
	keywords []string
}

// CatchAllArea is assigned when no keyword matches.
const CatchAllArea = "general"

var therapeuticAreaRules = []keywordRule{
	{"endocrine", []string{"diabetes", "insulin", "glycemic", "thyroid", "metformin"}},
	{"cardiovascular", []string{"hypertension", "cardiac", "cholesterol", "anticoagul", "statin", "heart failure"}},
	{"respiratory", []string{"asthma", "copd", "inhaler", "bronch"}},
	{"infectious-disease", []string{"antibiotic", "antimicrobial", "vaccin", "influenza", "infection"}},
	{"oncology", []string{"cancer", "chemotherap", "oncolog", "tumour", "tumor"}},
	{"neurology", []string{"epilep", "seizure", "parkinson", "migraine", "dementia"}},
	{"gastrointestinal", []string{"gastric", "ulcer", "hepati", "reflux", "liver"}},
	{"mental-health", []string{"depress", "anxiety", "antidepressant", "psychiatric", "insomnia"}},
}

var practiceAreaRules = []keywordRule{
	{"community", []string{"community pharmacy", "retail pharmacy", "over-the-counter", "otc", "self-care"}},
	{"hospital", []string{"hospital", "inpatient", "ward", "parenteral", "intravenous"}},
	{"clinical", []string{"clinical", "guideline", "dosing", "monitoring", "prescrib"}},
}

// ClassifyTherapeuticArea tags content by case-insensitive keyword match
// against the URL and the extracted body text.
func ClassifyTherapeuticArea(url, text string) string {
	return classify(therapeuticAreaRules, url, text)
}

// ClassifyPracticeArea tags content by practice setting.
func ClassifyPracticeArea(url, text string) string {
	return classify(practiceAreaRules, url, text)
}

func classify(rules []keywordRule, url, text string) string {
	haystack := strings.ToLower(url) + " " + strings.ToLower(text)
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(haystack, keyword) {
				return rule.area
			}
		}
	}
	return CatchAllArea
}
