package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyWith(t *testing.T, status int, body string, seen *messageRequest) Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient("secret", srv.URL)
}

func TestTranslateToCommand(t *testing.T) {
	var seen messageRequest
	c := replyWith(t, http.StatusOK, `{"content":[{"type":"text","text":"/eggs Galinhas 40\n"}]}`, &seen)

	cmd, err := c.TranslateToCommand(context.Background(), "apanhei 40 ovos das galinhas")
	require.NoError(t, err)
	assert.Equal(t, "/eggs Galinhas 40", cmd)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "apanhei 40 ovos das galinhas", seen.Messages[0].Content)
	assert.Equal(t, model, seen.Model)
}

func TestTranslateToCommandNoMatch(t *testing.T) {
	c := replyWith(t, http.StatusOK, `{"content":[{"type":"text","text":"NONE"}]}`, nil)

	cmd, err := c.TranslateToCommand(context.Background(), "bom dia")
	require.NoError(t, err)
	assert.Empty(t, cmd)
}

func TestTranslateToCommandErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		c := replyWith(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, nil)
		_, err := c.TranslateToCommand(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=401")
	})

	t.Run("empty content", func(t *testing.T) {
		c := replyWith(t, http.StatusOK, `{"content":[]}`, nil)
		_, err := c.TranslateToCommand(context.Background(), "x")
		require.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestNormalizeCommand(t *testing.T) {
	cases := map[string]string{
		"/stock":                       "/stock",
		"```\n/sale Porcos 2\n```":     "/sale Porcos 2",
		"none":                         "",
		"Here is the command: /stock":  "",
		"\n\n/feed use Porcos\nthanks": "/feed use Porcos",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeCommand(in), in)
	}
}
