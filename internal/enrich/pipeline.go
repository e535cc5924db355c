package enrich

import (
	"fmt"
	"strconv"
	"strings"
)

// record is the mutable value threaded through the pipeline, equivalent to
// the JSON object each named step of build_enrichment_pipeline mutates.
type record struct {
	Slug            string
	URL             string
	LastSeen        string
	NormalizedSlug  string
	HasJobPostings  bool
	URLSegments     []string
	RecencyScore    float64
	Industries      []string
	TechSignals     []string
	SizeSignal      string
}

// Step is one named, fallible stage of the enrichment pipeline. Step names
// surface in errors so a failure can be traced to the stage that caused it,
// mirroring ResultPipeline's (step, message) error pairs.
type Step struct {
	Name string
	Run  func(*record) error
}

// Pipeline runs a fixed ordered sequence of Steps over a record, stopping
// and reporting the failing step's name on the first error — the Go
// equivalent of rig_compat.rs's ResultPipeline/NamedStep chain.
type Pipeline struct {
	steps []Step
}

// StepError names which step failed, the way ResultPipeline.run's Err
// variant carries (step, message) back to the caller.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("enrichment step %q failed: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

func (p *Pipeline) run(r *record) error {
	for _, step := range p.steps {
		if err := step.Run(r); err != nil {
			return &StepError{Step: step.Name, Err: err}
		}
	}
	return nil
}

var slugExtractor = SlugExtractor{}

// BuildPipeline returns the four-step sequence from build_enrichment_pipeline:
// normalize_slug, extract_segments, score_recency, extract_metadata.
func BuildPipeline() *Pipeline {
	return &Pipeline{steps: []Step{
		{Name: "normalize_slug", Run: stepNormalizeSlug},
		{Name: "extract_segments", Run: stepExtractSegments},
		{Name: "score_recency", Run: stepScoreRecency},
		{Name: "extract_metadata", Run: stepExtractMetadata},
	}}
}

func stepNormalizeSlug(r *record) error {
	r.NormalizedSlug = strings.TrimRight(r.Slug, "0123456789-")
	return nil
}

var enrichHostSkip = map[string]bool{
	"https:":                       true,
	"jobs.ashbyhq.com":             true,
	"job-boards.greenhouse.io":     true,
	"apply.workable.com":           true,
	"jobs.lever.co":                true,
}

func stepExtractSegments(r *record) error {
	var segments []string
	for _, s := range strings.Split(r.URL, "/") {
		if s == "" || enrichHostSkip[s] {
			continue
		}
		segments = append(segments, s)
	}
	r.URLSegments = segments
	r.HasJobPostings = len(segments) > 1
	return nil
}

// stepScoreRecency normalises a Common Crawl YYYYMMDDHHMMSS timestamp into
// a [0,1]-ish recency score, identical denominator to the original so
// scores computed by either implementation against the same archive
// timestamp compare equal.
func stepScoreRecency(r *record) error {
	if r.LastSeen == "" {
		return nil
	}
	ts, err := strconv.ParseFloat(r.LastSeen, 64)
	if err != nil {
		r.RecencyScore = 0
		return nil
	}
	r.RecencyScore = ts / 100_000_000_000_000.0
	return nil
}

func stepExtractMetadata(r *record) error {
	r.Industries = slugExtractor.DetectIndustries(r.Slug)
	r.TechSignals = slugExtractor.DetectTech(r.Slug)
	r.SizeSignal = slugExtractor.EstimateSize(r.Slug)
	return nil
}
