package apply

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/xrsl/jobpilot/pkg/cache"
	"github.com/xrsl/jobpilot/pkg/pipeline"
	"github.com/xrsl/jobpilot/pkg/search"
	"github.com/xrsl/jobpilot/pkg/utils"

	clog "github.com/xrsl/jobpilot/pkg/log"
)

// Record namespaces in the data store, one per cacheable stage.
const (
	nsAnalysis  = "analysis"
	nsResume    = "resume"
	nsLetter    = "letter"
	nsPortfolio = "portfolio"
)

type stages struct {
	deps Deps
}

// --- job_analysis ---

func (p *stages) jobAnalysis(ctx context.Context, st *pipeline.State) pipeline.Result {
	url, _ := st.Input["job_url"].(string)
	if url == "" {
		return pipeline.Failure("missing job_url input")
	}

	text, err := p.deps.Fetcher.Fetch(ctx, url)
	if err != nil {
		return pipeline.Failure("fetch posting: %v", err)
	}

	system, user := p.deps.Schema.GeneratePromptParts(url, text)
	resp, err := p.generate(ctx, system, user)
	if err != nil {
		return pipeline.Failure("extract posting: %v", err)
	}

	data, err := parseJSONResponse(resp)
	if err != nil {
		return pipeline.Failure("parse extraction: %v", err)
	}
	if err := p.deps.Schema.ValidateRecord(data); err != nil {
		return pipeline.Failure("extraction invalid: %v", err)
	}
	data["url"] = url

	p.writeRecord(ctx, analysisKey(url), data)
	return pipeline.Success(data)
}

// analysisGate short-circuits on a previously analyzed posting with the
// same URL. Records that no longer validate are ignored (schema changed
// since they were written).
func (p *stages) analysisGate(_ context.Context, st *pipeline.State) (any, bool) {
	url, _ := st.Input["job_url"].(string)
	if url == "" {
		return nil, false
	}
	rec, ok := p.deps.Records.Read(analysisKey(url))
	if !ok {
		return nil, false
	}
	if err := p.deps.Schema.ValidateRecord(rec); err != nil {
		clog.Debug("cached analysis no longer valid", "url", url, "error", err)
		return nil, false
	}
	return rec, true
}

// --- resume_tailoring ---

func (p *stages) resumeTailoring(ctx context.Context, st *pipeline.State) pipeline.Result {
	analysis, ok := analysisFrom(st)
	if !ok {
		return pipeline.Failure("job analysis unavailable")
	}

	cv, err := utils.ReadFile(p.deps.CVPath)
	if err != nil {
		return pipeline.Failure("read cv: %v", err)
	}
	history := p.readHistory()

	prompt, err := tailorPrompt(analysis, cv, history)
	if err != nil {
		return pipeline.Failure("build tailor prompt: %v", err)
	}
	resp, err := p.deps.Generator.GenerateContent(ctx, prompt)
	if err != nil {
		return pipeline.Failure("tailor resume: %v", err)
	}
	resp = strings.TrimSpace(resp)
	if resp == "" {
		return pipeline.Failure("tailor resume: empty response")
	}

	out := p.stageOutput(analysis, resp)
	p.writeRecord(ctx, pairKey(nsResume, analysis), out)
	return pipeline.Success(out)
}

// --- cover_letter ---

func (p *stages) coverLetter(ctx context.Context, st *pipeline.State) pipeline.Result {
	analysis, ok := analysisFrom(st)
	if !ok {
		return pipeline.Failure("job analysis unavailable")
	}

	// The tailored resume improves the letter but is not required: the
	// fallback edge routes here even when tailoring failed.
	resumeText := contentOf(st, StageResumeTailoring)

	prompt, err := letterPrompt(analysis, resumeText)
	if err != nil {
		return pipeline.Failure("build letter prompt: %v", err)
	}
	resp, err := p.deps.Generator.GenerateContent(ctx, prompt)
	if err != nil {
		return pipeline.Failure("draft cover letter: %v", err)
	}
	resp = strings.TrimSpace(resp)
	if resp == "" {
		return pipeline.Failure("draft cover letter: empty response")
	}

	out := p.stageOutput(analysis, resp)
	p.writeRecord(ctx, pairKey(nsLetter, analysis), out)
	return pipeline.Success(out)
}

// --- portfolio ---

func (p *stages) portfolio(ctx context.Context, st *pipeline.State) pipeline.Result {
	analysis, ok := analysisFrom(st)
	if !ok {
		return pipeline.Failure("job analysis unavailable")
	}

	query := searchQuery(analysis)
	if query == "" {
		return pipeline.Failure("analysis has no skills or title to search for")
	}

	snippets, err := p.deps.Searcher.Search(ctx, query, search.Filters{Limit: p.deps.TopN})
	if err != nil {
		return pipeline.Failure("portfolio search: %v", err)
	}

	out := map[string]any{
		"company":  field(analysis, "company"),
		"title":    field(analysis, "title"),
		"query":    query,
		"snippets": snippets,
	}
	p.writeRecord(ctx, pairKey(nsPortfolio, analysis), out)
	return pipeline.Success(out)
}

// pairGate short-circuits a generation stage when output for the same
// company+title pair already exists.
func (p *stages) pairGate(namespace string) pipeline.GateFunc {
	return func(_ context.Context, st *pipeline.State) (any, bool) {
		analysis, ok := analysisFrom(st)
		if !ok {
			return nil, false
		}
		key := pairKey(namespace, analysis)
		if key == "" {
			return nil, false
		}
		rec, ok := p.deps.Records.Read(key)
		if !ok {
			return nil, false
		}
		return rec, true
	}
}

// --- shared helpers ---

// generate prefers the system/user split when the client supports prompt
// caching.
func (p *stages) generate(ctx context.Context, system, user string) (string, error) {
	type systemGenerator interface {
		GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	}
	if c, ok := p.deps.Generator.(systemGenerator); ok {
		return c.GenerateContentWithSystem(ctx, system, user)
	}
	return p.deps.Generator.GenerateContent(ctx, system+"\n"+user)
}

// writeRecord persists a stage output for future cache gates. Failing to
// write only loses the cache, never the run. A timed-out or canceled stage
// keeps running in the background until its goroutine returns; checking ctx
// here keeps such a stage from caching output the pipeline recorded as
// failed.
func (p *stages) writeRecord(ctx context.Context, key string, record map[string]any) {
	if key == "" || ctx.Err() != nil {
		return
	}
	if err := p.deps.Records.Write(key, record); err != nil {
		clog.Warn("record write failed", "key", key, "error", err)
	}
}

func (p *stages) stageOutput(analysis map[string]any, content string) map[string]any {
	return map[string]any{
		"company": field(analysis, "company"),
		"title":   field(analysis, "title"),
		"content": content,
	}
}

func (p *stages) readHistory() string {
	if p.deps.HistoryPath == "" {
		return ""
	}
	history, err := utils.ReadFile(p.deps.HistoryPath)
	if err != nil {
		clog.Debug("career history unavailable", "path", p.deps.HistoryPath, "error", err)
		return ""
	}
	return history
}

func analysisKey(url string) string {
	return nsAnalysis + "/" + cache.URLKey(url)
}

// pairKey builds the company+title natural key for a namespace, or "" when
// the analysis lacks both.
func pairKey(namespace string, analysis map[string]any) string {
	company := field(analysis, "company")
	title := field(analysis, "title")
	if company == "" && title == "" {
		return ""
	}
	return namespace + "/" + cache.PairKey(company, title)
}

// analysisFrom reads the job analysis output from state, whether it came
// from a fresh run, a cache gate, or a resumed snapshot.
func analysisFrom(st *pipeline.State) (map[string]any, bool) {
	data, ok := st.Output(StageJobAnalysis).(map[string]any)
	if !ok || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// contentOf extracts the "content" field of a generation stage's output.
func contentOf(st *pipeline.State, stage string) string {
	m, ok := st.Output(stage).(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["content"].(string)
	return s
}

func field(record map[string]any, key string) string {
	s, _ := record[key].(string)
	return strings.TrimSpace(s)
}

// searchQuery prefers the skill list, falling back to title and company.
func searchQuery(analysis map[string]any) string {
	var terms []string
	switch skills := analysis["skills"].(type) {
	case []string:
		terms = append(terms, skills...)
	case []any:
		for _, s := range skills {
			if str, ok := s.(string); ok {
				terms = append(terms, str)
			}
		}
	}
	if len(terms) == 0 {
		for _, k := range []string{"title", "company"} {
			if v := field(analysis, k); v != "" {
				terms = append(terms, v)
			}
		}
	}
	return strings.TrimSpace(strings.Join(terms, " "))
}

// parseJSONResponse tolerates markdown code fences around the model's JSON.
func parseJSONResponse(resp string) (map[string]any, error) {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var data map[string]any
	if err := json.Unmarshal([]byte(resp), &data); err != nil {
		return nil, err
	}
	return data, nil
}
