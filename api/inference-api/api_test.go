package inference_api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rapidaai/fitcoach/config"
	inference_client "github.com/rapidaai/fitcoach/pkg/clients/inference"
	"github.com/rapidaai/fitcoach/pkg/commons"
	"github.com/rapidaai/fitcoach/pkg/faults"
	"github.com/rapidaai/fitcoach/pkg/ice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	answer  *inference_client.Answer
	initErr error
	turn    *ice.Server
	turnErr error
	calls   int
}

func (f *fakeClient) InitWebRTC(_ context.Context, _ inference_client.Offer, _ inference_client.WebRTCParams) (*inference_client.Answer, error) {
	f.calls++
	if f.initErr != nil {
		return nil, f.initErr
	}
	return f.answer, nil
}

func (f *fakeClient) TurnConfig(_ context.Context) (*ice.Server, error) {
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	return f.turn, nil
}

func newTestEngine(cfg *config.AppConfig, client inference_client.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := New(cfg, commons.NewNopLogger(), client)
	engine.POST("/api/init-webrtc", api.InitWebRTC)
	engine.GET("/api/webrtc_turn_config", api.TurnConfig)
	return engine
}

func initBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(inference_client.InitRequest{
		Offer: inference_client.Offer{SDP: "v=0\r\n", Type: "offer"},
		WrtcParams: inference_client.WebRTCParams{
			ImageInputName:    "image",
			StreamOutputNames: []string{"bounding_box_visualization"},
		},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestInitWebRTCSuccess(t *testing.T) {
	client := &fakeClient{answer: &inference_client.Answer{
		SDP:  "v=0 answer",
		Type: "answer",
		Context: inference_client.AnswerContext{
			PipelineID: "abc123",
			RequestID:  "xyz789",
		},
	}}
	engine := newTestEngine(&config.AppConfig{ApiKey: "k"}, client)

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/init-webrtc", initBody(t)))

	require.Equal(t, http.StatusOK, recorder.Code)
	var answer inference_client.Answer
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &answer))
	assert.Equal(t, "answer", answer.Type)
	assert.Equal(t, "abc123", answer.Context.PipelineID)
	assert.Equal(t, "xyz789", answer.Context.RequestID)
}

func TestInitWebRTCWithoutKey(t *testing.T) {
	client := &fakeClient{}
	engine := newTestEngine(&config.AppConfig{}, client)

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/init-webrtc", initBody(t)))

	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), string(faults.KindConfiguration))
	// the remote must never be attempted without a key
	assert.Zero(t, client.calls)
}

func TestInitWebRTCBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{`},
		{"empty sdp", `{"offer":{"sdp":"","type":"offer"},"wrtcParams":{"imageInputName":"image","streamOutputNames":["x"]}}`},
		{"type not offer", `{"offer":{"sdp":"v=0","type":"answer"},"wrtcParams":{"imageInputName":"image","streamOutputNames":["x"]}}`},
		{"no outputs", `{"offer":{"sdp":"v=0","type":"offer"},"wrtcParams":{"imageInputName":"image"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			engine := newTestEngine(&config.AppConfig{ApiKey: "k"}, client)

			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/init-webrtc", bytes.NewBufferString(tt.body))
			engine.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Zero(t, client.calls)
		})
	}
}

func TestInitWebRTCRemoteFailure(t *testing.T) {
	client := &fakeClient{initErr: faults.Negotiation("inference service rejected the offer", nil)}
	engine := newTestEngine(&config.AppConfig{ApiKey: "k"}, client)

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/init-webrtc", initBody(t)))

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	assert.Contains(t, recorder.Body.String(), string(faults.KindNegotiation))
}

func TestTurnConfigRelaysServer(t *testing.T) {
	client := &fakeClient{turn: &ice.Server{
		URLs:       []string{"turn:relay.example.com:3478"},
		Username:   "u",
		Credential: "c",
	}}
	engine := newTestEngine(&config.AppConfig{ApiKey: "k"}, client)

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/webrtc_turn_config", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var server ice.Server
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &server))
	assert.Equal(t, []string{"turn:relay.example.com:3478"}, server.URLs)
	assert.NotContains(t, recorder.Body.String(), "ttl")
}

func TestTurnConfigDegradesToNull(t *testing.T) {
	client := &fakeClient{turnErr: faults.TurnUnavailable("missing username", nil)}
	engine := newTestEngine(&config.AppConfig{ApiKey: "k"}, client)

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/webrtc_turn_config", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "null", recorder.Body.String())
}

// End-to-end through the real provider client: the handler accepts an
// unauthenticated browser request and the key appears exactly once, in the
// forwarded provider request.
func TestInitWebRTCInjectsKeyEndToEnd(t *testing.T) {
	var forwarded map[string]interface{}
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&forwarded))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sdp":"v=0 answer","type":"answer","context":{"pipeline_id":"abc123","request_id":"xyz789"}}`))
	}))
	defer remote.Close()

	cfg := &config.AppConfig{ApiKey: "super-secret", InferenceHost: remote.URL}
	engine := newTestEngine(cfg, inference_client.NewProviderClient(cfg, commons.NewNopLogger()))

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/init-webrtc", initBody(t)))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "super-secret", forwarded["api_key"])
	assert.NotContains(t, recorder.Body.String(), "super-secret")
}
