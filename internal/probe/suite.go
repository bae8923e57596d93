package probe

import (
	"fmt"
	"net/url"
	"strings"
)

// Suite is one brand's set of launch checks
type Suite struct {
	Brand          string `mapstructure:"brand" yaml:"brand" json:"brand"`
	Agents         []int  `mapstructure:"agents" yaml:"agents" json:"agents"`
	GameIDs        []int  `mapstructure:"game_ids" yaml:"game_ids" json:"game_ids"`
	ExpectedPrefix string `mapstructure:"expected_prefix" yaml:"expected_prefix" json:"expected_prefix"`
	// Check selects where the game slug is read from: "path" for the first
	// path segment after the prefix, any other value names a query parameter.
	// Empty disables the slug check.
	Check    string         `mapstructure:"check" yaml:"check,omitempty" json:"check,omitempty"`
	Expected map[int]string `mapstructure:"expected" yaml:"expected,omitempty" json:"expected,omitempty"`
}

// Title is the test name used in results and error blocks
func (s Suite) Title() string {
	return s.Brand + " URL"
}

// Validate reports configuration problems in s
func (s Suite) Validate() error {
	if strings.TrimSpace(s.Brand) == "" {
		return fmt.Errorf("suite brand is empty")
	}
	if strings.ContainsAny(s.Brand, " \t") {
		return fmt.Errorf("suite brand %q contains whitespace", s.Brand)
	}
	if len(s.Agents) == 0 {
		return fmt.Errorf("suite %s has no agents", s.Brand)
	}
	if len(s.GameIDs) == 0 {
		return fmt.Errorf("suite %s has no game ids", s.Brand)
	}
	return nil
}

// checkURL returns the failure text for a launch URL, or "" when it passes
func (s Suite) checkURL(gameURL string, gameID int) string {
	if !strings.HasPrefix(gameURL, s.ExpectedPrefix) {
		return "URL 前綴不符 -> " + gameURL
	}
	want, ok := s.Expected[gameID]
	if s.Check == "" || !ok {
		return ""
	}

	if s.Check == "path" {
		rest := strings.TrimPrefix(strings.TrimPrefix(gameURL, s.ExpectedPrefix), "/")
		got, _, _ := strings.Cut(rest, "/")
		got, _, _ = strings.Cut(got, "?")
		if got != want {
			return fmt.Sprintf("URL 的 GID 不正確 (expected: %s, got: %s) -> %s", want, got, gameURL)
		}
		return ""
	}

	u, err := url.Parse(gameURL)
	if err != nil {
		return fmt.Sprintf("URL 解析錯誤: %s -> %s", err, gameURL)
	}
	if got := u.Query().Get(s.Check); got != want {
		return fmt.Sprintf("URL 的 %s 不正確 (expected: %s, got: %s) -> %s", s.Check, want, got, gameURL)
	}
	return ""
}
