package parser

import (
	"testing"

	"github.com/FUNGYICHEN/AGG/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	p := NewParser(domain.DefaultMarkers())

	tests := []struct {
		name      string
		line      string
		carry     string
		want      *domain.ErrorRecord
		wantCarry string
	}{
		{
			name:  "simplified status line without brand",
			line:  "Agent: 10199, GameID: 90001 错误: HTTP错误：状态码 400",
			want:  &domain.ErrorRecord{Brand: "unknown", Agent: "10199", GameID: "90001", Signature: "400", Detail: "错误: HTTP错误：状态码 400"},
			carry: "",
		},
		{
			name:      "brand prefix sets carry",
			line:      "Rectangle URL: Agent: 10171, GameID: 90001 錯誤: HTTP錯誤：狀態碼 500",
			want:      &domain.ErrorRecord{Brand: "Rectangle", Agent: "10171", GameID: "90001", Signature: "500", Detail: "錯誤: HTTP錯誤：狀態碼 500"},
			wantCarry: "Rectangle",
		},
		{
			name:      "error literal before brand",
			line:      "Error: Playson URL：Agent: 11172, GameID: 70001 錯誤 (after retries): HTTP錯誤：狀態碼 502",
			want:      &domain.ErrorRecord{Brand: "Playson", Agent: "11172", GameID: "70001", Signature: "502", Detail: "錯誤 (after retries): HTTP錯誤：狀態碼 502"},
			wantCarry: "Playson",
		},
		{
			name:      "error literal without brand",
			line:      "Error: Agent: 10199, GameID: 90001 錯誤: HTTP錯誤：狀態碼 400",
			want:      &domain.ErrorRecord{Brand: "unknown", Agent: "10199", GameID: "90001", Signature: "400", Detail: "錯誤: HTTP錯誤：狀態碼 400"},
			wantCarry: "",
		},
		{
			name:      "error literal without brand keeps carry",
			line:      "Error: Agent: 10199, GameID: 90002 錯誤: HTTP錯誤：狀態碼 400",
			carry:     "Playson",
			want:      &domain.ErrorRecord{Brand: "Playson", Agent: "10199", GameID: "90002", Signature: "400", Detail: "錯誤: HTTP錯誤：狀態碼 400"},
			wantCarry: "Playson",
		},
		{
			name:      "log format with error word after URL",
			line:      "Rectangle URL 錯誤：Agent: 10199, GameID: 90001 HTTP錯誤：狀態碼 400",
			want:      &domain.ErrorRecord{Brand: "Rectangle", Agent: "10199", GameID: "90001", Signature: "400", Detail: "HTTP錯誤：狀態碼 400"},
			wantCarry: "Rectangle",
		},
		{
			name:      "simplified log format with error word after URL",
			line:      "Error: Galaxsys URL 错误: Agent: 1, GameID: 2 HTTP错误：状态码 500",
			want:      &domain.ErrorRecord{Brand: "Galaxsys", Agent: "1", GameID: "2", Signature: "500", Detail: "HTTP错误：状态码 500"},
			wantCarry: "Galaxsys",
		},
		{
			name:      "continuation line inherits carry",
			line:      "  Agent: 10171, GameID: 90002 錯誤: HTTP錯誤：狀態碼 500",
			carry:     "Rectangle",
			want:      &domain.ErrorRecord{Brand: "Rectangle", Agent: "10171", GameID: "90002", Signature: "500", Detail: "錯誤: HTTP錯誤：狀態碼 500"},
			wantCarry: "Rectangle",
		},
		{
			name:      "line without failure marker resets carry",
			line:      "Agent: 10171, GameID: 90003 URL 前綴不符 -> https://g.example.com/a",
			carry:     "Rectangle",
			want:      &domain.ErrorRecord{Brand: "unknown", Agent: "10171", GameID: "90003", Signature: "URL 前綴不符", Detail: "URL 前綴不符 -> https://g.example.com/a"},
			wantCarry: "",
		},
		{
			name:      "brand on a validation line strips URL suffix",
			line:      "Wcasino URL: Agent: 10165, GameID: 60001 URL 的 gid 不正確 (expected: 3058, got: 1) -> https://tst.example.com/?gid=1",
			want:      &domain.ErrorRecord{Brand: "Wcasino", Agent: "10165", GameID: "60001", Signature: "URL 的 gid 不正確 (expected: 3058, got: 1)", Detail: "URL 的 gid 不正確 (expected: 3058, got: 1) -> https://tst.example.com/?gid=1"},
			wantCarry: "Wcasino",
		},
		{
			name:      "comma after game id",
			line:      "Agent: 1, GameID: 2, 錯誤: HTTP錯誤：狀態碼 404",
			want:      &domain.ErrorRecord{Brand: "unknown", Agent: "1", GameID: "2", Signature: "404", Detail: "錯誤: HTTP錯誤：狀態碼 404"},
			wantCarry: "",
		},
		{
			name:      "unparseable line keeps carry when it has the marker",
			line:      "HTTP錯誤 something odd",
			carry:     "Galaxsys",
			want:      nil,
			wantCarry: "Galaxsys",
		},
		{
			name:      "unparseable line without marker resets carry",
			line:      "weird format",
			carry:     "Galaxsys",
			want:      nil,
			wantCarry: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, carry := p.Parse(tt.line, tt.carry)
			assert.Equal(t, tt.wantCarry, carry)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParser_SameSignatureAcrossURLs(t *testing.T) {
	p := NewParser(domain.DefaultMarkers())

	a, _ := p.Parse("Agent: 1, GameID: 2 URL 前綴不符 -> https://a.example.com/x", "")
	b, _ := p.Parse("Agent: 1, GameID: 3 URL 前綴不符 -> https://b.example.com/y", "")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.Signature, b.Signature)
	assert.NotEqual(t, a.Detail, b.Detail)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "400", Signature("錯誤: HTTP錯誤：狀態碼 400"))
	assert.Equal(t, "API錯誤回應: {\"code\":5}", Signature("錯誤: API錯誤回應: {\"code\":5}"))
	assert.Equal(t, "", Signature(""))
	assert.Equal(t, "URL 前綴不符", Signature("URL 前綴不符 -> https://x -> y"))
}
