package discovery

import (
	"testing"

	"github.com/ternarybob/atscrawl/internal/provider"
)

func TestExtractTokenRoundTrip(t *testing.T) {
	for _, p := range []provider.Provider{provider.Ashby, provider.Greenhouse, provider.Workable} {
		url := p.BoardURL("acme-co")
		got, ok := ExtractToken(url, p)
		if !ok || got != "acme-co" {
			t.Errorf("%v: ExtractToken(%q) = %q, %v; want acme-co, true", p, url, got, ok)
		}
	}
}

func TestExtractTokenTrailingSlashImmaterial(t *testing.T) {
	got, ok := ExtractToken("https://jobs.ashbyhq.com/acme-co/", provider.Ashby)
	if !ok || got != "acme-co" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestExtractTokenStripsQueryAndFragment(t *testing.T) {
	got, ok := ExtractToken("https://jobs.ashbyhq.com/acme-co?utm=1#section", provider.Ashby)
	if !ok || got != "acme-co" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestExtractTokenReserved(t *testing.T) {
	for _, reserved := range []string{"api", "static", "favicon.ico", "robots.txt", "sitemap.xml", "jobs"} {
		_, ok := ExtractToken("https://jobs.ashbyhq.com/"+reserved, provider.Ashby)
		if ok {
			t.Errorf("expected reserved token %q to be rejected", reserved)
		}
	}
}

func TestExtractTokenWrongHost(t *testing.T) {
	_, ok := ExtractToken("https://example.com/acme-co", provider.Ashby)
	if ok {
		t.Error("expected failure when host prefix is absent")
	}
}

func TestExtractTokenLowercased(t *testing.T) {
	got, ok := ExtractToken("https://jobs.ashbyhq.com/ACME-Co", provider.Ashby)
	if !ok || got != "acme-co" {
		t.Errorf("got %q, %v", got, ok)
	}
}
