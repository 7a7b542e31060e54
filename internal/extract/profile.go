package extract

import (
	"github.com/rxacademy/harvest/internal/models"
)

// Profile holds the source-specific selectors and defaults that drive
// extraction for one external source. Selector lists are ordered fallback
// chains: the first strategy yielding non-empty text wins.
type Profile struct {
	Source           models.SourceType
	TitleSelectors   []string
	ContentSelectors []string
	Category         string
	Priority         int

	// FetchPDFLinks enables pulling the text of the first linked PDF and
	// appending it to the primary extracted text.
	FetchPDFLinks bool
}

// MOHProfile targets Ministry of Health clinical practice guideline pages.
func MOHProfile() Profile {
	return Profile{
		Source:           models.SourceMOH,
		TitleSelectors:   []string{"h1.page-title", "h1"},
		ContentSelectors: []string{"div.guideline-content", "div.content-body", "article"},
		Category:         "clinical-guideline",
		Priority:         1,
		FetchPDFLinks:    true,
	}
}

// HSAProfile targets Health Sciences Authority safety alert pages.
func HSAProfile() Profile {
	return Profile{
		Source:           models.SourceHSA,
		TitleSelectors:   []string{"h1.alert-title", "h1", "h2.announcement-title"},
		ContentSelectors: []string{"div.alert-body", "div.main-content", "article"},
		Category:         "safety-alert",
		Priority:         0, // alerts sort ahead of guidelines
		FetchPDFLinks:    true,
	}
}

// NDFProfile targets National Drug Formulary entry pages.
func NDFProfile() Profile {
	return Profile{
		Source:           models.SourceNDF,
		TitleSelectors:   []string{"h1.drug-name", "h1"},
		ContentSelectors: []string{"div.monograph", "div.formulary-entry", "article"},
		Category:         "formulary",
		Priority:         2,
		FetchPDFLinks:    false,
	}
}

// ProfileForSource returns the extraction profile for a source type.
func ProfileForSource(source models.SourceType) Profile {
	switch source {
	case models.SourceMOH:
		return MOHProfile()
	case models.SourceHSA:
		return HSAProfile()
	case models.SourceNDF:
		return NDFProfile()
	default:
		return Profile{
			Source:           source,
			TitleSelectors:   []string{"h1"},
			ContentSelectors: []string{"article"},
			Category:         "general",
			Priority:         5,
		}
	}
}
