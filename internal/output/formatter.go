package output

import (
	"fmt"
	"strings"

	"github.com/FUNGYICHEN/AGG/internal/domain"
)

const (
	DefaultWidespreadAgentThreshold = 5
	DefaultItemizeThreshold         = 5

	ProdEnv = "prod"

	NoSuccessText = "無成功訊息"
	NoErrorText   = "無錯誤訊息"

	AgentSection      = "Agent 錯誤："
	WidespreadSection = "全面性錯誤："
	RawSection        = "其他錯誤："
)

// FormatOptions controls report rendering
type FormatOptions struct {
	// Env is shown in section headers; "prod" enables brand prefixes
	Env string
	// WidespreadAgentThreshold is the number of distinct agents on a by-game
	// group that promotes it to a single summary line
	WidespreadAgentThreshold int
	// ItemizeThreshold: below it game ids are listed, at or above only counted
	ItemizeThreshold int
	// ProdBrandPrefix prefixes error lines with "(brand)" in prod
	ProdBrandPrefix bool
}

// DefaultFormatOptions returns the default rendering options
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Env:                      "stg",
		WidespreadAgentThreshold: DefaultWidespreadAgentThreshold,
		ItemizeThreshold:         DefaultItemizeThreshold,
		ProdBrandPrefix:          true,
	}
}

func (o FormatOptions) normalized() FormatOptions {
	if o.WidespreadAgentThreshold < 1 {
		o.WidespreadAgentThreshold = DefaultWidespreadAgentThreshold
	}
	if o.ItemizeThreshold < 1 {
		o.ItemizeThreshold = DefaultItemizeThreshold
	}
	return o
}

func (o FormatOptions) brandPrefix(brand string) string {
	if o.ProdBrandPrefix && strings.EqualFold(strings.TrimSpace(o.Env), ProdEnv) {
		return "(" + brand + ") "
	}
	return ""
}

// Report is the rendered success and error text of one run
type Report struct {
	Success string `json:"success"`
	Errors  string `json:"errors"`
}

// SuccessHeader is the first line of the success section
func SuccessHeader(env string) string {
	return fmt.Sprintf("✅ 測試成功 (%s)", env)
}

// ErrorHeader is the first line of the error section
func ErrorHeader(env string) string {
	return fmt.Sprintf("❌ 測試錯誤 (%s)", env)
}

// Format renders the success list and the grouped error report
func Format(success []string, agg domain.Aggregate, opts FormatOptions) Report {
	opts = opts.normalized()
	return Report{
		Success: FormatSuccess(success, opts.Env),
		Errors:  FormatErrors(agg, opts),
	}
}

// FormatSuccess renders the success section, keeping input order
func FormatSuccess(lines []string, env string) string {
	out := []string{SuccessHeader(env)}
	if len(lines) == 0 {
		out = append(out, NoSuccessText)
	}
	out = append(out, lines...)
	return strings.Join(out, "\n")
}

type coverKey struct {
	brand, gameID, signature string
}

// Widespread returns the by-game groups affecting at least threshold agents
func Widespread(agg domain.Aggregate, threshold int) []domain.GameGroup {
	if threshold < 1 {
		threshold = DefaultWidespreadAgentThreshold
	}
	var out []domain.GameGroup
	for _, g := range agg.ByGame {
		if len(g.Agents) >= threshold {
			out = append(out, g)
		}
	}
	return out
}

// VisibleGameIDs returns the game ids of g not already covered by a widespread line
func VisibleGameIDs(g domain.AgentGroup, widespread []domain.GameGroup) []string {
	covered := coverSet(widespread)
	return visible(g, covered)
}

func coverSet(widespread []domain.GameGroup) map[coverKey]struct{} {
	covered := make(map[coverKey]struct{}, len(widespread))
	for _, g := range widespread {
		covered[coverKey{g.Brand, g.GameID, g.Signature}] = struct{}{}
	}
	return covered
}

func visible(g domain.AgentGroup, covered map[coverKey]struct{}) []string {
	ids := make([]string, 0, len(g.GameIDs))
	for _, id := range g.GameIDs {
		if _, ok := covered[coverKey{g.Brand, id, g.Signature}]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// FormatErrors renders the error section. Game ids already reported by a
// widespread line are removed from per-agent lines, and a per-agent line
// left with no game ids is dropped.
func FormatErrors(agg domain.Aggregate, opts FormatOptions) string {
	opts = opts.normalized()
	out := []string{ErrorHeader(opts.Env)}
	if agg.Empty() {
		return strings.Join(append(out, NoErrorText), "\n")
	}

	widespread := Widespread(agg, opts.WidespreadAgentThreshold)
	covered := coverSet(widespread)

	var agentLines []string
	for _, g := range agg.ByAgent {
		ids := visible(g, covered)
		if len(ids) == 0 {
			continue
		}
		agentLines = append(agentLines, opts.brandPrefix(g.Brand)+agentLine(g, ids, opts.ItemizeThreshold))
	}
	if len(agentLines) > 0 {
		out = append(out, AgentSection)
		out = append(out, agentLines...)
	}

	if len(widespread) > 0 {
		out = append(out, WidespreadSection)
		for _, g := range widespread {
			out = append(out, opts.brandPrefix(g.Brand)+widespreadLine(g))
		}
	}

	if len(agg.Raw) > 0 {
		out = append(out, RawSection)
		for _, r := range agg.Raw {
			out = append(out, fmt.Sprintf("%s (共 %d 筆)", r.Raw, r.Count))
		}
	}

	return strings.Join(out, "\n")
}

func agentLine(g domain.AgentGroup, ids []string, itemize int) string {
	if len(ids) < itemize {
		return fmt.Sprintf("Agent: %s, GameID: %s 錯誤: %s (共 %d 筆錯誤)",
			g.Agent, strings.Join(ids, ", "), g.Signature, g.Count)
	}
	return fmt.Sprintf("Agent: %s, %d 個 GameID 錯誤: %s (共 %d 筆錯誤)",
		g.Agent, len(ids), g.Signature, g.Count)
}

func widespreadLine(g domain.GameGroup) string {
	return fmt.Sprintf("GameID: %s 錯誤: %s [%d 個 Agent] (共 %d 筆錯誤)",
		g.GameID, g.Signature, len(g.Agents), g.Count)
}
