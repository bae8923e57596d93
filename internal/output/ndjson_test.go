package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FUNGYICHEN/AGG/internal/domain"
)

func decodeAll(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	var out []map[string]interface{}
	for {
		var m map[string]interface{}
		err := dec.Decode(&m)
		if err == nil {
			out = append(out, m)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	return out
}

func TestNDJSONWriter_WriteSummary(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	summary := domain.NewReportSummary("run-1", "prod")
	summary.ErrorLines = 3
	summary.HasErrors = true
	require.NoError(t, w.WriteSummary(summary))

	items := decodeAll(t, &buf)
	require.Len(t, items, 1)
	assert.Equal(t, "report", items[0]["type"])
	assert.Equal(t, float64(SchemaVersion), items[0]["schemaVersion"])
	assert.Equal(t, "run-1", items[0]["run_id"])
	assert.Equal(t, "prod", items[0]["env"])
	assert.Equal(t, float64(3), items[0]["error_lines"])
	assert.Equal(t, true, items[0]["hasErrors"])
}

func TestNDJSONWriter_WriteChunks(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)

	require.NoError(t, w.WriteChunks("run-1", "errors", []string{"a", "b -> https://x?a=1&b=2"}))

	items := decodeAll(t, &buf)
	require.Len(t, items, 2)
	for i, item := range items {
		assert.Equal(t, "chunk", item["type"])
		assert.Equal(t, "errors", item["section"])
		assert.Equal(t, float64(i+1), item["index"])
		assert.Equal(t, float64(2), item["total"])
	}
	assert.Equal(t, "b -> https://x?a=1&b=2", items[1]["text"])
	assert.Contains(t, buf.String(), `b -> https://x?a=1&b=2`)
}

func TestNDJSONWriter_WriteGroups(t *testing.T) {
	var lines []string
	for _, a := range []string{"1", "2", "3", "4", "5"} {
		lines = append(lines, "X URL: Agent: "+a+", GameID: 7 錯誤: HTTP錯誤：狀態碼 502")
	}
	lines = append(lines, "garbage HTTP錯誤")

	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)
	require.NoError(t, w.WriteGroups("run-1", aggregateOf(lines...), DefaultFormatOptions()))

	var out GroupsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "groups", out.Type)
	assert.Len(t, out.ByAgent, 5)
	require.Len(t, out.Widespread, 1)
	assert.Equal(t, "7", out.Widespread[0].GameID)
	assert.Equal(t, 5, out.Widespread[0].Count)
	require.Len(t, out.Raw, 1)
	assert.Equal(t, "garbage HTTP錯誤", out.Raw[0].Raw)
}

func TestNDJSONWriter_WriteDispatch(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)
	require.NoError(t, w.WriteDispatch("run-1", 2, 1, 1))

	var out DispatchOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "dispatch", out.Type)
	assert.Equal(t, 2, out.Sent)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, 1, out.Skipped)
}

func TestNDJSONWriter_WriteError(t *testing.T) {
	t.Run("with hint", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewNDJSONWriter(&buf)
		require.NoError(t, w.WriteError("FILE_NOT_FOUND", "no such file", "check --input"))

		var out domain.ErrorOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "error", out.Type)
		assert.Equal(t, SchemaVersion, out.SchemaVersion)
		assert.Equal(t, "FILE_NOT_FOUND", out.Code)
		assert.Equal(t, "check --input", out.Hint)
	})

	t.Run("without hint", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewNDJSONWriter(&buf)
		require.NoError(t, w.WriteError("INVALID_INPUT", "bad"))
		assert.NotContains(t, buf.String(), "hint")
	})
}

func TestNDJSONWriter_WriteWarning(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)
	require.NoError(t, w.WriteWarning("telegram disabled"))

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, `{"type":"warning"`))
	assert.Contains(t, line, "telegram disabled")
}
