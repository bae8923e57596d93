package domain

import "strings"

// Markers are the literal substrings that classify raw output as a success or a failure
type Markers struct {
	Success []string `json:"success"`
	Failure []string `json:"failure"`
}

// DefaultMarkers returns the markers written by the game launch tests
// (traditional and simplified spellings).
func DefaultMarkers() Markers {
	return Markers{
		Success: []string{"測試成功", "测试成功"},
		Failure: []string{"HTTP錯誤", "HTTP错误"},
	}
}

// IsSuccess reports whether s contains a success marker
func (m Markers) IsSuccess(s string) bool {
	return containsAny(s, m.Success)
}

// IsFailure reports whether s contains a failure marker
func (m Markers) IsFailure(s string) bool {
	return containsAny(s, m.Failure)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
