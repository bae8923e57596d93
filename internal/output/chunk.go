package output

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkLength leaves headroom under the 4096 character message limit
const DefaultMaxChunkLength = 4000

// Chunk splits text into pieces of at most maxLength characters, breaking only
// between lines. Joining the result with "\n" gives back text exactly. A single
// line longer than maxLength becomes its own oversized chunk.
func Chunk(text string, maxLength int) []string {
	if maxLength < 1 {
		maxLength = DefaultMaxChunkLength
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return []string{text}
	}

	var (
		chunks []string
		buf    strings.Builder
		bufLen int
		open   bool
	)
	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		if open && bufLen+1+n > maxLength {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
			open = false
		}
		if open {
			buf.WriteByte('\n')
			bufLen++
		}
		buf.WriteString(line)
		bufLen += n
		open = true
	}
	if open {
		chunks = append(chunks, buf.String())
	}
	return chunks
}
