package enrich

import "strings"

// industryKeywords mirrors rig_compat.rs's SlugExtractor::detect_industries
// keyword tuples, checked in order — every entry with a matching keyword
// contributes its tag, in table order.
var industryKeywords = []struct {
	tag      string
	keywords []string
}{
	{"ai-ml", []string{"ai", "ml", "machine-learning", "artificial-intelligence", "llm", "genai"}},
	{"healthtech", []string{"health", "medical", "pharma", "bio", "clinical", "care"}},
	{"fintech", []string{"fin", "bank", "pay", "trading", "invest", "crypto", "wealth"}},
	{"edtech", []string{"edu", "learn", "school", "academy", "course"}},
	{"cybersecurity", []string{"security", "cyber", "secure", "auth", "privacy"}},
	{"devtools", []string{"dev", "code", "api", "sdk", "cli", "build"}},
	{"data", []string{"data", "analytics", "metrics", "insight", "bi"}},
	{"infrastructure", []string{"cloud", "infra", "platform", "ops", "compute"}},
	{"martech", []string{"market", "brand", "ad", "growth", "crm"}},
	{"legaltech", []string{"legal", "law", "compliance", "contract"}},
	{"hrtech", []string{"hr", "hiring", "recruit", "talent", "people"}},
}

// techKeywords mirrors detect_tech's keyword tuples.
var techKeywords = []struct {
	tag      string
	keywords []string
}{
	{"rust", []string{"rust"}},
	{"go", []string{"golang", "-go-", "go-"}},
	{"python", []string{"python", "django", "flask"}},
	{"javascript", []string{"js", "node", "react", "vue", "angular"}},
	{"jvm", []string{"java", "kotlin", "scala", "spring"}},
	{"ml-frameworks", []string{"tensorflow", "pytorch", "ml", "ai"}},
	{"containers", []string{"docker", "kubernetes", "k8s", "container"}},
	{"databases", []string{"sql", "postgres", "mongo", "redis", "db"}},
}

// SlugExtractor classifies a company slug/display name into rough industry
// and tech tags and a coarse size bucket, grounded on rig_compat.rs's
// SlugExtractor. It's a deliberately shallow keyword match, not a model —
// the original explains it as a zero-dependency heuristic for a wasm32
// target with no room for an embedding model, and this port keeps that
// heuristic rather than smuggling in a real classifier the spec never asks
// for.
type SlugExtractor struct{}

// DetectIndustries returns every matching industry tag for slug, or
// ["general"] if nothing matched.
func (SlugExtractor) DetectIndustries(slug string) []string {
	lower := strings.ToLower(slug)
	var tags []string
	for _, entry := range industryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, entry.tag)
				break
			}
		}
	}
	if len(tags) == 0 {
		return []string{"general"}
	}
	return tags
}

// DetectTech returns every matching technology signal tag for slug.
func (SlugExtractor) DetectTech(slug string) []string {
	lower := strings.ToLower(slug)
	var tags []string
	for _, entry := range techKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, entry.tag)
				break
			}
		}
	}
	return tags
}

// EstimateSize buckets a slug by length, the same length-bucketed heuristic
// as estimate_size: short slugs read as scrappy startups, long ones as
// larger, more bureaucratically-named organisations.
func (SlugExtractor) EstimateSize(slug string) string {
	switch {
	case len(slug) <= 8:
		return "startup"
	case len(slug) <= 16:
		return "mid"
	default:
		return "large"
	}
}
