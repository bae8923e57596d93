package domain

// UnknownBrand is used when neither the line nor the surrounding error block names a brand
const UnknownBrand = "unknown"

// ErrorRecord is one parsed failure line
type ErrorRecord struct {
	Brand     string `json:"brand"`
	Agent     string `json:"agent"`
	GameID    string `json:"game_id"`
	Signature string `json:"signature"` // error text without brand prefix and "-> URL" suffix
	Detail    string `json:"detail"`
}

// AgentGroup collects records sharing (brand, agent, signature)
type AgentGroup struct {
	Brand     string   `json:"brand"`
	Agent     string   `json:"agent"`
	Signature string   `json:"signature"`
	GameIDs   []string `json:"game_ids"`
	Count     int      `json:"count"`
}

// GameGroup collects records sharing (brand, game id, signature)
type GameGroup struct {
	Brand     string   `json:"brand"`
	GameID    string   `json:"game_id"`
	Signature string   `json:"signature"`
	Agents    []string `json:"agents"`
	Count     int      `json:"count"`
}

// RawLineGroup counts error lines that could not be parsed
type RawLineGroup struct {
	Raw   string `json:"raw"`
	Count int    `json:"count"`
}

// Aggregate is the grouped result of one report run
type Aggregate struct {
	ByAgent []AgentGroup   `json:"by_agent"`
	ByGame  []GameGroup    `json:"by_game"`
	Raw     []RawLineGroup `json:"raw,omitempty"`
}

// Empty reports whether no error line contributed to the aggregate
func (a Aggregate) Empty() bool {
	return len(a.ByAgent) == 0 && len(a.ByGame) == 0 && len(a.Raw) == 0
}

// CompareIDs orders numeric id strings numerically (shorter first, then lexicographic).
func CompareIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
