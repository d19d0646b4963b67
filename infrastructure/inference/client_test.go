package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/models"
	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/storage"
)

const sidecarURL = "http://sidecar.test"

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(sidecarURL+"/", 5*time.Second)
	httpmock.ActivateNonDefault(c.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestDetectSendsParamsAndParsesBoxes(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, sidecarURL+"/models/m1/detect",
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "0.05", q.Get("conf"))
			assert.Equal(t, "0.45", q.Get("iou"))
			assert.Equal(t, "640", q.Get("imgsz"))
			assert.Equal(t, "300", q.Get("max_det"))
			assert.Equal(t, "application/octet-stream", req.Header.Get("Content-Type"))
			return httpmock.NewJsonResponse(http.StatusOK, map[string]interface{}{
				"success": true,
				"detections": []map[string]interface{}{
					{"box": []float64{1, 2, 30.5, 40}, "confidence": 0.9, "class_id": 0, "class_name": "screw"},
				},
				"inference_ms": 12.5,
			})
		})

	resp, err := c.Detect(context.Background(), "m1", []byte("frame"), DetectOptions{
		Confidence: 0.05, IoU: 0.45, ImageSize: 640, MaxDetections: 300,
	})
	require.NoError(t, err)
	require.Len(t, resp.Detections, 1)
	assert.Equal(t, Box{1, 2, 30.5, 40}, resp.Detections[0].Box)
	assert.Equal(t, "screw", resp.Detections[0].ClassName)
	assert.Equal(t, 12.5, resp.InferenceMs)
}

func TestDetectReportsSidecarFailure(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, `=~^http://sidecar\.test/models/m1/detect`,
		httpmock.NewStringResponder(http.StatusOK, `{"success":false,"error":"model not loaded"}`))

	_, err := c.Detect(context.Background(), "m1", []byte("frame"), DetectOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestBreakerOpensAfterRepeatedServerErrors(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, `=~^http://sidecar\.test/models/m1/detect`,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	for i := 0; i < 5; i++ {
		_, err := c.Detect(context.Background(), "m1", []byte("frame"), DetectOptions{})
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	}

	_, err := c.Detect(context.Background(), "m1", []byte("frame"), DetectOptions{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 5, httpmock.GetTotalCallCount())
}

func TestBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	now = now.Add(2 * time.Minute)
	assert.False(t, cb.IsOpen())

	cb.RecordSuccess()
	assert.Equal(t, int32(0), cb.Failures())
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodDelete, sidecarURL+"/models/gone",
		httpmock.NewStringResponder(http.StatusNotFound, "unknown model"))

	for i := 0; i < 10; i++ {
		require.NoError(t, c.Unload(context.Background(), "gone"))
	}
	assert.False(t, c.Breaker().IsOpen())
}

func TestHealth(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodGet, sidecarURL+"/health",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"ok","version":"1.2.0","device":"cpu","loaded_models":["a"]}`))

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cpu", health.Device)
	assert.True(t, c.IsAvailable(context.Background()))
}

func TestLoaderRoundTrip(t *testing.T) {
	c := newMockedClient(t)
	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	engine := &models.InferenceEngine{
		ID:           uuid.New(),
		Kind:         models.EngineYOLOv8,
		Version:      "1.0",
		ArtifactName: "yolov8_v1.0_20240305_140709.pt",
		SHA256:       "abc",
	}
	_, err = artifacts.Save(context.Background(), engine.ArtifactName, strings.NewReader("weights"), 1024)
	require.NoError(t, err)

	loader := NewSidecarLoader(c, artifacts, "node-a")
	modelID := engine.ID.String() + "-node-a"
	require.Equal(t, modelID, loader.ModelID(engine))

	httpmock.RegisterResponder(http.MethodPost, sidecarURL+"/models/load",
		func(req *http.Request) (*http.Response, error) {
			var body LoadRequest
			require.NoError(t, jsonDecode(req, &body))
			assert.Equal(t, modelID, body.ModelID)
			assert.Equal(t, "yolov8", body.Kind)
			assert.Equal(t, engine.ArtifactName, body.Artifact)
			return httpmock.NewStringResponse(http.StatusOK, `{"success":true,"model_id":"x","classes":["screw"]}`), nil
		})
	httpmock.RegisterResponder(http.MethodPost, `=~/detect`,
		httpmock.NewStringResponder(http.StatusOK, `{"success":true,"detections":[{"box":[0,0,10,10],"confidence":0.7,"class_id":1,"class_name":"screw"}]}`))
	httpmock.RegisterResponder(http.MethodDelete, sidecarURL+"/models/"+modelID,
		httpmock.NewStringResponder(http.StatusOK, `{"success":true}`))

	det, err := loader.Load(context.Background(), engine)
	require.NoError(t, err)

	raw, err := det.Detect(context.Background(), []byte("frame"), services.DetectParams{ConfidenceFloor: 0.05})
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, services.BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}, raw[0].Box)
	assert.Equal(t, 1, raw[0].ClassID)

	require.NoError(t, det.Close(context.Background()))
	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["DELETE "+sidecarURL+"/models/"+modelID])
}

func TestLoaderRejectsMissingArtifact(t *testing.T) {
	c := newMockedClient(t)
	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = NewSidecarLoader(c, artifacts, "node-a").Load(context.Background(), &models.InferenceEngine{
		ID: uuid.New(), Kind: models.EngineYOLOv8, ArtifactName: "missing.pt",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestModelIDsAreScopedPerInstance(t *testing.T) {
	engine := &models.InferenceEngine{ID: uuid.New()}

	a := NewSidecarLoader(nil, nil, "node-a").ModelID(engine)
	b := NewSidecarLoader(nil, nil, "node-b").ModelID(engine)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, engine.ID.String()))
	assert.Equal(t, engine.ID.String(), NewSidecarLoader(nil, nil, "").ModelID(engine))
}

func jsonDecode(req *http.Request, v interface{}) error {
	return json.NewDecoder(req.Body).Decode(v)
}
