package mapper

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/ports"
)

// Mapper recovers typed findings and scores from agent answers. It accepts
// JSON in fenced code blocks, bare JSON or JSON embedded in prose, and
// tolerates missing sections: absent research yields zero confidence and
// absent sub-scores are scored 0 and listed in the reasoning.
type Mapper struct {
	policy *bluemonday.Policy
}

var _ ports.ResponseMapper = (*Mapper)(nil)

// New builds a mapper that strips markup from agent free text.
func New() *Mapper {
	return &Mapper{policy: bluemonday.StrictPolicy()}
}

// MapValidation maps a single-opportunity answer.
func (m *Mapper) MapValidation(opp domain.Opportunity, text string) (ports.MappedValidation, error) {
	for _, doc := range jsonCandidates(text) {
		item, ok := pickItem(opp, doc)
		if !ok {
			continue
		}
		if mapped, err := m.mapItem(opp, item); err == nil {
			return mapped, nil
		}
	}
	return ports.MappedValidation{}, fmt.Errorf("%w: no score object for %q in agent answer", domain.ErrParse, opp.Name)
}

// MapBatch demultiplexes a combined answer into one item per opportunity,
// in input order. Items the agent skipped carry an ErrParse.
func (m *Mapper) MapBatch(opps []domain.Opportunity, text string) []ports.MappedBatchItem {
	items := make([]ports.MappedBatchItem, len(opps))
	for i, opp := range opps {
		items[i].Opportunity = opp
	}

	entries, ok := batchEntries(text)
	if !ok {
		for i := range items {
			items[i].Err = fmt.Errorf("%w: no result array in batch answer", domain.ErrParse)
		}
		return items
	}

	byName := make(map[string]gjson.Result, len(entries))
	byKey := make(map[string][]gjson.Result, len(entries))
	var unnamed []gjson.Result
	for _, entry := range entries {
		if name := entryName(entry); name != "" {
			byName[name] = entry
			byKey[domain.MatchKey(name)] = append(byKey[domain.MatchKey(name)], entry)
			continue
		}
		unnamed = append(unnamed, entry)
	}
	oppsByKey := make(map[string]int, len(opps))
	for _, opp := range opps {
		oppsByKey[domain.MatchKey(opp.Name)]++
	}
	positional := len(unnamed) == len(entries) && len(entries) == len(opps)

	for i, opp := range opps {
		entry, found := byName[strings.TrimSpace(opp.Name)]
		if !found {
			key := domain.MatchKey(opp.Name)
			if oppsByKey[key] == 1 && len(byKey[key]) == 1 {
				entry, found = byKey[key][0], true
			}
		}
		if !found && positional {
			entry, found = entries[i], true
		}
		if !found {
			items[i].Err = fmt.Errorf("%w: batch answer has no entry for %q", domain.ErrParse, opp.Name)
			continue
		}
		items[i].Validation, items[i].Err = m.mapItem(opp, entry)
	}
	return items
}

// MapComparison reads per-opportunity summaries and the overall advice.
func (m *Mapper) MapComparison(text string) (ports.MappedComparison, error) {
	for _, doc := range jsonCandidates(text) {
		rankings := doc.Get("rankings")
		if !doc.IsObject() || !rankings.IsArray() {
			continue
		}

		out := ports.MappedComparison{Summaries: map[string]string{}}
		for _, entry := range rankings.Array() {
			name := strings.TrimSpace(entry.Get("name").String())
			if name == "" {
				continue
			}
			if summary := m.clean(entry.Get("summary").String()); summary != "" {
				out.Summaries[name] = summary
			}
		}
		out.Recommendation = m.clean(firstString(doc, "recommendation", "pursue_first"))
		return out, nil
	}
	return ports.MappedComparison{}, fmt.Errorf("%w: no rankings in comparison answer", domain.ErrParse)
}

func (m *Mapper) mapItem(opp domain.Opportunity, item gjson.Result) (ports.MappedValidation, error) {
	scoreDoc := item.Get("score")
	if !scoreDoc.IsObject() && item.Get("aspiration_clarity").Exists() {
		scoreDoc = item
	}
	if !scoreDoc.IsObject() {
		return ports.MappedValidation{}, fmt.Errorf("%w: %q has no score object", domain.ErrParse, opp.Name)
	}

	score, missing, invalid := m.mapScore(opp.Name, scoreDoc)
	if len(missing)+len(invalid) == len(domain.SubScoreKeys) {
		return ports.MappedValidation{}, fmt.Errorf("%w: %q score has none of the rubric keys", domain.ErrParse, opp.Name)
	}
	if len(missing) > 0 {
		appendNote(&score, "missing sub-scores scored 0: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		appendNote(&score, "non-numeric sub-scores scored 0: "+strings.Join(invalid, ", "))
	}

	return ports.MappedValidation{
		Research: m.mapResearch(opp.Name, item.Get("research")),
		Score:    score,
	}, nil
}

func (m *Mapper) mapScore(name string, doc gjson.Result) (domain.OpportunityScore, []string, []string) {
	score := domain.OpportunityScore{OpportunityName: name}

	var missing, invalid []string
	subs := score.SubScores()
	for _, key := range domain.SubScoreKeys {
		v, ok := lookupSubScore(doc, key)
		if !ok {
			missing = append(missing, key)
			continue
		}
		n, ok := numeric(v)
		if !ok {
			invalid = append(invalid, key)
			continue
		}
		*subs[key] = domain.ClampSubScore(int(math.Round(n)))
	}

	score.Reasoning = m.clean(doc.Get("reasoning").String())
	score.NextAction = m.clean(doc.Get("next_action").String())
	raw := strings.TrimSpace(doc.Get("recommendation").String())
	if rec := strings.ToLower(raw); domain.IsRecommendation(rec) {
		score.Recommendation = rec
	} else if raw != "" {
		appendNote(&score, fmt.Sprintf("unrecognized recommendation %q dropped", m.clean(raw)))
	}
	return score, missing, invalid
}

// rubricGroups are the four-group layout the agent sometimes answers with.
var rubricGroups = []string{"problem_solution_fit", "market_signals", "founder_market_fit", "execution_feasibility"}

// lookupSubScore accepts the flat rubric as well as the four-group layout
// ({"market_signals": {"market_size": 7, ...}}).
func lookupSubScore(doc gjson.Result, key string) (gjson.Result, bool) {
	if v := doc.Get(key); v.Exists() && v.Type != gjson.Null {
		return v, true
	}
	for _, group := range rubricGroups {
		g := doc.Get(group)
		if !g.IsObject() {
			continue
		}
		if v := g.Get(key); v.Exists() && v.Type != gjson.Null {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// numeric accepts JSON numbers and strings holding a plain number.
func numeric(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Float(), true
	case gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func appendNote(score *domain.OpportunityScore, note string) {
	if score.Reasoning == "" {
		score.Reasoning = note
		return
	}
	score.Reasoning += " (" + note + ")"
}

func (m *Mapper) mapResearch(name string, doc gjson.Result) domain.ResearchFindings {
	research := domain.NewResearchFindings(name)
	if !doc.IsObject() {
		research.Notes = "agent answer had no research section"
		return research
	}

	research.CommunitiesFound = evidenceList(firstExisting(doc, "communities_found", "communities"))
	research.BudgetEvidence = evidenceList(doc.Get("budget_evidence"))
	research.PainDiscussions = evidenceList(doc.Get("pain_discussions"))
	research.Competitors = evidenceList(doc.Get("competitors"))

	research.PaysForTools = doc.Get("pays_for_tools").Bool()
	research.PriceRange = m.optionalText(doc.Get("price_range"))
	research.CompetitionGap = m.optionalText(doc.Get("competition_gap"))

	switch level := strings.ToLower(strings.TrimSpace(doc.Get("emotional_intensity").String())); level {
	case domain.IntensityHigh, domain.IntensityMedium, domain.IntensityLow:
		research.EmotionalIntensity = domain.StringPtr(level)
	}

	research.Confidence = doc.Get("confidence").Float()
	research.Notes = m.clean(doc.Get("notes").String())
	research.Normalize()
	return research
}

func evidenceList(list gjson.Result) []domain.EvidenceItem {
	items := []domain.EvidenceItem{}
	if !list.IsArray() {
		return items
	}
	for _, entry := range list.Array() {
		switch {
		case entry.IsObject():
			if obj, ok := entry.Value().(map[string]any); ok {
				items = append(items, domain.EvidenceItem(obj))
			}
		case entry.Type == gjson.String && strings.TrimSpace(entry.String()) != "":
			items = append(items, domain.EvidenceItem{"summary": entry.String()})
		}
	}
	return items
}

func (m *Mapper) optionalText(v gjson.Result) *string {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	text := m.clean(v.String())
	if text == "" {
		return nil
	}
	return &text
}

func (m *Mapper) clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m.policy.Sanitize(s)))
}

// pickItem finds the entry for opp in a single-validation document.
func pickItem(opp domain.Opportunity, doc gjson.Result) (gjson.Result, bool) {
	if doc.IsObject() {
		return doc, true
	}
	if !doc.IsArray() {
		return gjson.Result{}, false
	}
	entries := doc.Array()
	var folded []gjson.Result
	for _, entry := range entries {
		name := entryName(entry)
		if name == strings.TrimSpace(opp.Name) {
			return entry, true
		}
		if domain.MatchKey(name) == domain.MatchKey(opp.Name) {
			folded = append(folded, entry)
		}
	}
	if len(folded) == 1 {
		return folded[0], true
	}
	if len(entries) == 1 {
		return entries[0], true
	}
	return gjson.Result{}, false
}

func batchEntries(text string) ([]gjson.Result, bool) {
	for _, doc := range jsonCandidates(text) {
		if doc.IsArray() {
			return doc.Array(), true
		}
		for _, key := range []string{"results", "opportunities", "validations"} {
			if list := doc.Get(key); list.IsArray() {
				return list.Array(), true
			}
		}
	}
	return nil, false
}

func entryName(entry gjson.Result) string {
	return strings.TrimSpace(firstString(entry,
		"name", "opportunity_name", "opportunity.name", "score.opportunity_name", "research.opportunity_name"))
}

func firstExisting(doc gjson.Result, paths ...string) gjson.Result {
	for _, path := range paths {
		if v := doc.Get(path); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := doc.Get(path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
