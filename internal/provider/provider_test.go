package provider

import "testing"

func TestFromStringRoundTrip(t *testing.T) {
	cases := map[string]Provider{
		"ashby":      Ashby,
		"ASHBY":      Ashby,
		"greenhouse": Greenhouse,
		"gh":         Greenhouse,
		"workable":   Workable,
		"wk":         Workable,
		"lever":      Lever,
		"lv":         Lever,
	}
	for in, want := range cases {
		got, ok := FromString(in)
		if !ok || got != want {
			t.Errorf("FromString(%q) = %v, %v; want %v, true", in, got, ok, want)
		}
	}
}

func TestFromStringInvalid(t *testing.T) {
	if _, ok := FromString("bamboohr"); ok {
		t.Error("expected FromString to fail for unknown provider")
	}
}

func TestBoardURLTokenRoundTrip(t *testing.T) {
	for _, p := range append(All(), Lever) {
		url := p.BoardURL("acme-co")
		if url == "" {
			t.Errorf("%v: empty board URL", p)
		}
		if want := "https://" + p.Host() + "/acme-co"; url != want {
			t.Errorf("%v: BoardURL = %q, want %q (token as the segment after the host)", p, url, want)
		}
	}
}

func TestCrawlID(t *testing.T) {
	if got := Ashby.CrawlID("CC-MAIN-2026-04"); got != "CC-MAIN-2026-04:ashby" {
		t.Errorf("CrawlID = %q", got)
	}
}

func TestAllExcludesLever(t *testing.T) {
	for _, p := range All() {
		if p == Lever {
			t.Error("All() must not include Lever — it is not a Provider Registry tag")
		}
	}
}
