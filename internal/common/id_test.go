package common

import (
	"strings"
	"testing"
)

func TestNewContentID_Deterministic(t *testing.T) {
	first := NewContentID("moh", "www.moh.gov.sg/guidelines/diabetes")
	second := NewContentID("moh", "www.moh.gov.sg/guidelines/diabetes")

	if first != second {
		t.Errorf("ID generation not deterministic: %s != %s", first, second)
	}
	if !strings.HasPrefix(first, "doc_") {
		t.Errorf("expected doc_ prefix, got %s", first)
	}
}

func TestNewContentID_DistinctPerSource(t *testing.T) {
	moh := NewContentID("moh", "some/path")
	hsa := NewContentID("hsa", "some/path")

	if moh == hsa {
		t.Error("different sources produced the same ID for the same slug")
	}
}

func TestCanonicalSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://www.moh.gov.sg/Guidelines/Diabetes/", "www.moh.gov.sg/Guidelines/Diabetes"},
		{"https://WWW.MOH.GOV.SG/guidelines", "www.moh.gov.sg/guidelines"},
		{"https://www.hsa.gov.sg/alerts?page=2#anchor", "www.hsa.gov.sg/alerts"},
		{"https://www.ndf.gov.sg/", "www.ndf.gov.sg"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CanonicalSlug(tt.input); got != tt.want {
				t.Errorf("CanonicalSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalSlug_StableAcrossVariants(t *testing.T) {
	// Query strings and trailing slashes must not produce distinct IDs.
	a := NewContentID("moh", CanonicalSlug("https://www.moh.gov.sg/guidelines/diabetes/"))
	b := NewContentID("moh", CanonicalSlug("https://www.moh.gov.sg/guidelines/diabetes?utm=x"))

	if a != b {
		t.Errorf("URL variants mapped to different IDs: %s != %s", a, b)
	}
}

func TestNewResultID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewResultID()
		if !strings.HasPrefix(id, "run_") {
			t.Fatalf("expected run_ prefix, got %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate result ID: %s", id)
		}
		seen[id] = true
	}
}
