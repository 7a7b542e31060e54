package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTherapeuticArea(t *testing.T) {
	tests := []struct {
		name string
		url  string
		text string
		want string
	}{
		{"diabetes in text", "", "Management of type 2 diabetes mellitus in adults", "endocrine"},
		{"insulin in text", "", "Insulin titration protocols", "endocrine"},
		{"keyword in url only", "https://www.moh.gov.sg/guidelines/hypertension", "", "cardiovascular"},
		{"case insensitive", "", "ASTHMA action plans", "respiratory"},
		{"antibiotic stewardship", "", "Antibiotic stewardship programme", "infectious-disease"},
		{"no match", "https://www.moh.gov.sg/about", "contact information", CatchAllArea},
		{"first rule wins", "", "diabetes and hypertension comorbidity", "endocrine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTherapeuticArea(tt.url, tt.text))
		})
	}
}

func TestClassifyPracticeArea(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"community pharmacy", "dispensing in a community pharmacy setting", "community"},
		{"hospital", "inpatient medication reconciliation", "hospital"},
		{"clinical", "clinical monitoring requirements", "clinical"},
		{"no match", "annual report", CatchAllArea},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPracticeArea("", tt.text))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	// Text matching multiple rules must always resolve to the same area.
	text := "cancer patients with depression and gastric ulcers"
	first := ClassifyTherapeuticArea("", text)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, ClassifyTherapeuticArea("", text))
	}
	assert.Equal(t, "oncology", first)
}
