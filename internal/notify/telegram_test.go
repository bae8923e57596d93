package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBotServer struct {
	mu       sync.Mutex
	messages []map[string]string
	failWith string
}

func (f *fakeBotServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"report","username":"report_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.failWith != "" && strings.Contains(r.FormValue("text"), f.failWith) {
				_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: message is too long"}`))
				return
			}
			f.messages = append(f.messages, map[string]string{
				"chat_id":    r.FormValue("chat_id"),
				"text":       r.FormValue("text"),
				"parse_mode": r.FormValue("parse_mode"),
				"preview":    r.FormValue("disable_web_page_preview"),
			})
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":-100,"type":"group"}}}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestTelegram(t *testing.T, f *fakeBotServer, parseMode string) *Telegram {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	tg, err := NewTelegram(TelegramConfig{
		Token:     "123:abc",
		ChatID:    -100,
		ParseMode: parseMode,
		Endpoint:  srv.URL + "/bot%s/%s",
	})
	require.NoError(t, err)
	return tg
}

func TestNewTelegram_Validation(t *testing.T) {
	_, err := NewTelegram(TelegramConfig{ChatID: 1})
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = NewTelegram(TelegramConfig{Token: "x"})
	assert.ErrorIs(t, err, ErrEmptyChatID)
}

func TestTelegram_Send(t *testing.T) {
	f := &fakeBotServer{}
	tg := newTestTelegram(t, f, "")
	assert.Equal(t, "report_bot", tg.BotName())

	require.NoError(t, tg.Send(context.Background(), "❌ 測試錯誤 (prod)\nAgent: 1, GameID: 2 錯誤: 500 (共 1 筆錯誤)"))

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.messages, 1)
	assert.Equal(t, "-100", f.messages[0]["chat_id"])
	assert.Equal(t, "❌ 測試錯誤 (prod)\nAgent: 1, GameID: 2 錯誤: 500 (共 1 筆錯誤)", f.messages[0]["text"])
	assert.Equal(t, "true", f.messages[0]["preview"])
	assert.Empty(t, f.messages[0]["parse_mode"])
}

func TestTelegram_SendParseMode(t *testing.T) {
	f := &fakeBotServer{}
	tg := newTestTelegram(t, f, "HTML")

	require.NoError(t, tg.Send(context.Background(), "hello"))

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.messages, 1)
	assert.Equal(t, "HTML", f.messages[0]["parse_mode"])
}

func TestTelegram_SendAPIError(t *testing.T) {
	f := &fakeBotServer{failWith: "boom"}
	tg := newTestTelegram(t, f, "")

	err := tg.Send(context.Background(), "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message is too long")
}

func TestTelegram_SendCancelled(t *testing.T) {
	f := &fakeBotServer{}
	tg := newTestTelegram(t, f, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tg.Send(ctx, "hello"), context.Canceled)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Empty(t, f.messages)
}
