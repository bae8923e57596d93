package aggregate

import (
	"fmt"
	"testing"

	"github.com/FUNGYICHEN/AGG/internal/domain"
)

func benchLines() []string {
	lines := make([]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		lines = append(lines, fmt.Sprintf("Rectangle URL: Agent: 10%03d, GameID: %d 錯誤: HTTP錯誤：狀態碼 %d -> https://g.example.com/%d",
			i%40, 90001+i%25, 400+i%3, i))
	}
	return lines
}

func BenchmarkAggregate(b *testing.B) {
	lines := benchLines()
	markers := domain.DefaultMarkers()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Aggregate(lines, markers)
	}
}
