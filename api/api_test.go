package api

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nullscape/preset"
)

type mapPresets map[string]preset.Preset

func (m mapPresets) Get(id string) (*preset.Preset, error) {
	if id == "broken" {
		return nil, errors.New("disk on fire")
	}
	p, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type pongHandler struct {
	got *discordgo.InteractionCreate
}

func (h *pongHandler) HandleInteraction(ctx context.Context, i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	h.got = i
	return &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}
}

func newTestRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if opts.Presets == nil {
		opts.Presets = mapPresets{
			"anime": {ID: "anime", Name: "Anime", QualityTags: "masterpiece, best quality", NegativeTags: "lowres, bad hands"},
		}
	}
	if opts.RatePerSecond == 0 {
		opts.RatePerSecond = 100
	}
	router, err := NewRouter(opts)
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthAndPages(t *testing.T) {
	router := newTestRouter(t, Options{})

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	for _, path := range []string{"/privacy", "/terms"} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestConvert(t *testing.T) {
	router := newTestRouter(t, Options{})

	tests := []struct {
		name string
		body convertRequest
		want convertResponse
	}{
		{
			name: "legacy",
			body: convertRequest{Text: "<red eyes:1.5>", Model: "nai-diffusion-3"},
			want: convertResponse{Unified: "<red eyes:1.5>", Converted: "{{{{{red eyes}}}}}", Family: "bracket"},
		},
		{
			name: "default model",
			body: convertRequest{Text: "{smile}"},
			want: convertResponse{Unified: "<smile:1.05>", Converted: "1.05::smile ::", Family: "numeric"},
		},
		{
			name: "negative capable",
			body: convertRequest{Text: "-0.5::text::", Model: "nai-diffusion-4-5-curated"},
			want: convertResponse{Unified: "<text:-0.5>", Converted: "-0.5::text ::", Family: "numeric-negative"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/v1/convert", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, decode[convertResponse](t, rec))
		})
	}

	rec := doJSON(t, router, http.MethodPost, "/v1/convert", map[string]string{"model": "nai-diffusion-3"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unknown := doJSON(t, router, http.MethodPost, "/v1/convert", convertRequest{Text: "{smile}", Model: "nai-diffusion-9"})
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Contains(t, unknown.Body.String(), "unknown model: nai-diffusion-9")
}

func TestNormalize(t *testing.T) {
	router := newTestRouter(t, Options{})

	rec := doJSON(t, router, http.MethodPost, "/v1/normalize", normalizeRequest{Text: "tag1,\n tag2 ,,{tag3}\r"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tag1, tag2, <tag3:1.05>", decode[normalizeResponse](t, rec).Normalized)
}

func TestBuild(t *testing.T) {
	router := newTestRouter(t, Options{})

	rec := doJSON(t, router, http.MethodPost, "/v1/build", buildRequest{
		ScenePrompt:  "1girl, <red eyes:1.5>",
		UserNegative: "blurry",
		PresetID:     "anime",
		Model:        "nai-diffusion-3",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, buildResponse{
		Positive:    "masterpiece, best quality, 1girl, {{{{{red eyes}}}}}",
		Negative:    "lowres, bad hands, blurry",
		PresetName:  "Anime",
		PresetFound: true,
		Model:       "nai-diffusion-3",
		Family:      "bracket",
	}, decode[buildResponse](t, rec))

	missing := doJSON(t, router, http.MethodPost, "/v1/build", buildRequest{ScenePrompt: "1girl", PresetID: "gone"})
	require.Equal(t, http.StatusOK, missing.Code)
	got := decode[buildResponse](t, missing)
	assert.False(t, got.PresetFound)
	assert.Equal(t, "1girl", got.Positive)
	assert.Equal(t, "nai-diffusion-4-full", got.Model)

	broken := doJSON(t, router, http.MethodPost, "/v1/build", buildRequest{PresetID: "broken"})
	assert.Equal(t, http.StatusInternalServerError, broken.Code)

	typo := doJSON(t, router, http.MethodPost, "/v1/build", buildRequest{ScenePrompt: "1girl", Model: "nai-difusion-3"})
	assert.Equal(t, http.StatusBadRequest, typo.Code)
	assert.Contains(t, typo.Body.String(), "unknown model: nai-difusion-3")
}

func TestThrottle(t *testing.T) {
	router := newTestRouter(t, Options{RatePerSecond: 1})

	first := doJSON(t, router, http.MethodPost, "/v1/normalize", normalizeRequest{Text: "a"})
	assert.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, router, http.MethodPost, "/v1/normalize", normalizeRequest{Text: "a"})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/healthz", nil).Code)
}

func TestInteractionsEndpoint(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	handler := &pongHandler{}
	router := newTestRouter(t, Options{Interactions: handler, PublicKey: hex.EncodeToString(pub)})

	body := []byte(`{"id":"1","type":1,"token":"tok"}`)
	send := func(signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/discord/interactions", bytes.NewReader(body))
		req.Header.Set("X-Signature-Ed25519", signature)
		req.Header.Set("X-Signature-Timestamp", "1700000000")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	valid := hex.EncodeToString(ed25519.Sign(priv, append([]byte("1700000000"), body...)))
	rec := send(valid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":1}`, rec.Body.String())
	require.NotNil(t, handler.got)
	assert.Equal(t, discordgo.InteractionPing, handler.got.Type)

	bad := send(hex.EncodeToString(make([]byte, ed25519.SignatureSize)))
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}

func TestInteractionsEndpointDisabledWithoutKey(t *testing.T) {
	router := newTestRouter(t, Options{Interactions: &pongHandler{}})
	rec := doJSON(t, router, http.MethodPost, "/discord/interactions", map[string]int{"type": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouterRejectsBadKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, err := NewRouter(Options{Interactions: &pongHandler{}, PublicKey: "not-hex"})
	assert.Error(t, err)
}
