package aggregate

import (
	"slices"
	"strings"

	"github.com/FUNGYICHEN/AGG/internal/domain"
	"github.com/FUNGYICHEN/AGG/internal/parser"
)

type agentKey struct {
	brand, agent, signature string
}

type gameKey struct {
	brand, gameID, signature string
}

type agentBucket struct {
	gameIDs map[string]struct{}
	count   int
}

type gameBucket struct {
	agents map[string]struct{}
	count  int
}

// Aggregator folds error lines into by-agent and by-game groups.
// One Aggregator belongs to one report run; it is not safe for concurrent use.
type Aggregator struct {
	parser     *parser.Parser
	carryBrand string
	byAgent    map[agentKey]*agentBucket
	byGame     map[gameKey]*gameBucket
	raw        map[string]int
	lines      int
}

// New creates an empty aggregator
func New(markers domain.Markers) *Aggregator {
	return &Aggregator{
		parser:  parser.NewParser(markers),
		byAgent: make(map[agentKey]*agentBucket),
		byGame:  make(map[gameKey]*gameBucket),
		raw:     make(map[string]int),
	}
}

// Aggregate runs a fresh aggregator over lines
func Aggregate(lines []string, markers domain.Markers) domain.Aggregate {
	a := New(markers)
	a.AddAll(lines)
	return a.Result()
}

// AddAll adds lines in order
func (a *Aggregator) AddAll(lines []string) {
	for _, line := range lines {
		a.Add(line)
	}
}

// Add folds one raw error line into the groups
func (a *Aggregator) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	a.lines++

	rec, carry := a.parser.Parse(line, a.carryBrand)
	a.carryBrand = carry
	if rec == nil {
		a.raw[line]++
		return
	}
	a.addRecord(rec)
}

func (a *Aggregator) addRecord(rec *domain.ErrorRecord) {
	ak := agentKey{rec.Brand, rec.Agent, rec.Signature}
	ab, ok := a.byAgent[ak]
	if !ok {
		ab = &agentBucket{gameIDs: make(map[string]struct{})}
		a.byAgent[ak] = ab
	}
	ab.count++
	ab.gameIDs[rec.GameID] = struct{}{}

	gk := gameKey{rec.Brand, rec.GameID, rec.Signature}
	gb, ok := a.byGame[gk]
	if !ok {
		gb = &gameBucket{agents: make(map[string]struct{})}
		a.byGame[gk] = gb
	}
	gb.count++
	gb.agents[rec.Agent] = struct{}{}
}

// Lines returns the number of non-blank lines added
func (a *Aggregator) Lines() int {
	return a.lines
}

// Result returns the groups in deterministic order
func (a *Aggregator) Result() domain.Aggregate {
	var agg domain.Aggregate

	for k, b := range a.byAgent {
		agg.ByAgent = append(agg.ByAgent, domain.AgentGroup{
			Brand:     k.brand,
			Agent:     k.agent,
			Signature: k.signature,
			GameIDs:   sortedIDs(b.gameIDs),
			Count:     b.count,
		})
	}
	slices.SortFunc(agg.ByAgent, func(x, y domain.AgentGroup) int {
		if c := strings.Compare(x.Brand, y.Brand); c != 0 {
			return c
		}
		if c := domain.CompareIDs(x.Agent, y.Agent); c != 0 {
			return c
		}
		return strings.Compare(x.Signature, y.Signature)
	})

	for k, b := range a.byGame {
		agg.ByGame = append(agg.ByGame, domain.GameGroup{
			Brand:     k.brand,
			GameID:    k.gameID,
			Signature: k.signature,
			Agents:    sortedIDs(b.agents),
			Count:     b.count,
		})
	}
	slices.SortFunc(agg.ByGame, func(x, y domain.GameGroup) int {
		if c := strings.Compare(x.Brand, y.Brand); c != 0 {
			return c
		}
		if c := domain.CompareIDs(x.GameID, y.GameID); c != 0 {
			return c
		}
		return strings.Compare(x.Signature, y.Signature)
	})

	for raw, count := range a.raw {
		agg.Raw = append(agg.Raw, domain.RawLineGroup{Raw: raw, Count: count})
	}
	slices.SortFunc(agg.Raw, func(x, y domain.RawLineGroup) int {
		return strings.Compare(x.Raw, y.Raw)
	})

	return agg
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, domain.CompareIDs)
	return ids
}
