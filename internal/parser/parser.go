package parser

import (
	"regexp"
	"strings"

	"github.com/FUNGYICHEN/AGG/internal/domain"
)

var (
	// thrown assertion messages start with "Error: "
	errorLiteralRegex = regexp.MustCompile(`^Error:\s*`)
	// "Rectangle URL: ..." or "Rectangle URL 錯誤：..."
	brandPrefixRegex = regexp.MustCompile(`^(\S+)\s+URL\s*(?:錯誤|错误)?\s*[:：]\s*`)
	// "Agent: 10171, GameID: 90001 <rest>"
	fieldsRegex = regexp.MustCompile(`^Agent:\s*(\d+),\s*GameID:\s*(\d+)\s*,?\s*(.*)$`)
	// "錯誤:", "错误 (after retries):", "Error:"
	errorTagRegex = regexp.MustCompile(`^(?:錯誤|错误|Error)(?:\s*\(after retries\))?\s*[:：]\s*`)
	// "HTTP錯誤：狀態碼 "
	httpTagRegex = regexp.MustCompile(`^HTTP(?:錯誤|错误)\s*[:：]\s*(?:狀態碼|状态码)\s*`)
)

// urlSeparator precedes the originating URL appended to validation errors
const urlSeparator = "->"

// Parser turns raw error lines into ErrorRecords
type Parser struct {
	markers domain.Markers
}

// NewParser creates a new line parser
func NewParser(markers domain.Markers) *Parser {
	return &Parser{markers: markers}
}

// Parse parses one raw error line. carryBrand is the brand stated earlier in the
// same multi-line error block; the returned string is the carry for the next line.
// A nil record means the line does not have the Agent/GameID shape.
func (p *Parser) Parse(line, carryBrand string) (*domain.ErrorRecord, string) {
	line = errorLiteralRegex.ReplaceAllString(strings.TrimSpace(line), "")

	if m := brandPrefixRegex.FindStringSubmatchIndex(line); m != nil {
		carryBrand = line[m[2]:m[3]]
		line = line[m[1]:]
	} else if !p.markers.IsFailure(line) {
		carryBrand = ""
	}

	m := fieldsRegex.FindStringSubmatch(line)
	if m == nil {
		return nil, carryBrand
	}

	brand := carryBrand
	if brand == "" {
		brand = domain.UnknownBrand
	}

	rest := strings.TrimSpace(m[3])
	return &domain.ErrorRecord{
		Brand:     brand,
		Agent:     m[1],
		GameID:    m[2],
		Signature: Signature(rest),
		Detail:    rest,
	}, carryBrand
}

// Signature normalizes the text after the GameID into a grouping key:
// leading error tags are dropped and any "-> URL" suffix is cut off.
func Signature(rest string) string {
	sig := errorTagRegex.ReplaceAllString(strings.TrimSpace(rest), "")
	sig = httpTagRegex.ReplaceAllString(sig, "")
	if i := strings.Index(sig, urlSeparator); i >= 0 {
		sig = sig[:i]
	}
	return strings.TrimSpace(sig)
}
