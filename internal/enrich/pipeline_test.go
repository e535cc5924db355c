package enrich

import "testing"

func TestDetectIndustriesFallsBackToGeneral(t *testing.T) {
	var ex SlugExtractor
	got := ex.DetectIndustries("acme-widgets")
	if len(got) != 1 || got[0] != "general" {
		t.Fatalf("expected [general], got %v", got)
	}
}

func TestDetectIndustriesMatchesKeyword(t *testing.T) {
	var ex SlugExtractor
	got := ex.DetectIndustries("acme-fintech-labs")
	found := false
	for _, tag := range got {
		if tag == "fintech" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fintech tag in %v", got)
	}
}

func TestEstimateSizeBuckets(t *testing.T) {
	var ex SlugExtractor
	cases := map[string]string{
		"acme":                 "startup",
		"acme-corporation":     "mid",
		"acme-global-holdings": "large",
	}
	for slug, want := range cases {
		if got := ex.EstimateSize(slug); got != want {
			t.Errorf("EstimateSize(%q) = %q, want %q", slug, got, want)
		}
	}
}

func TestPipelineNormalizeSlugStripsTrailingDigitsAndHyphens(t *testing.T) {
	p := BuildPipeline()
	r := &record{Slug: "acme-123-"}
	if err := p.run(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.NormalizedSlug != "acme" {
		t.Errorf("NormalizedSlug = %q, want %q", r.NormalizedSlug, "acme")
	}
}

func TestPipelineExtractSegmentsSkipsKnownHosts(t *testing.T) {
	p := BuildPipeline()
	r := &record{Slug: "acme", URL: "https://jobs.ashbyhq.com/acme/abc123"}
	if err := p.run(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.HasJobPostings {
		t.Error("expected HasJobPostings true for a two-segment board path")
	}
	want := []string{"acme", "abc123"}
	if len(r.URLSegments) != len(want) {
		t.Fatalf("URLSegments = %v, want %v", r.URLSegments, want)
	}
	for i, s := range want {
		if r.URLSegments[i] != s {
			t.Errorf("URLSegments[%d] = %q, want %q", i, r.URLSegments[i], s)
		}
	}
}

func TestPipelineScoreRecency(t *testing.T) {
	p := BuildPipeline()
	r := &record{Slug: "acme", LastSeen: "20260101000000"}
	if err := p.run(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RecencyScore <= 0 {
		t.Errorf("expected positive recency score, got %v", r.RecencyScore)
	}
}

func TestPipelineScoreRecencyMissingTimestamp(t *testing.T) {
	p := BuildPipeline()
	r := &record{Slug: "acme"}
	if err := p.run(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RecencyScore != 0 {
		t.Errorf("expected zero recency score for missing timestamp, got %v", r.RecencyScore)
	}
}
