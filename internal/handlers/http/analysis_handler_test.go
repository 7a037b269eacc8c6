package http

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"videonet/internal/infrastructure/analysis"
)

func newAnalysisRouter(t *testing.T, backend http.HandlerFunc) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	client := analysis.NewClient(upstream.URL, 5*time.Second, zap.NewNop().Sugar())
	router := gin.New()
	NewAnalysisHandler(client).SetupRoutes(router)
	return router
}

func TestAnalysisHandler_AnalyzeProxiesUpload(t *testing.T) {
	var gotFilename string
	router := newAnalysisRouter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/video/analyze", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		io.Copy(io.Discard, file)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"analysis": "two people talking"}`))
	})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "meeting.mp4")
	require.NoError(t, err)
	part.Write([]byte("video bytes"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/video/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "meeting.mp4", gotFilename)
	assert.JSONEq(t, `{"analysis": "two people talking"}`, rec.Body.String())
}

func TestAnalysisHandler_ChatValidatesInput(t *testing.T) {
	router := newAnalysisRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "ok"}`))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/video/chat",
		bytes.NewBufferString(`{"filename": "meeting.mp4"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/video/chat",
		bytes.NewBufferString(`{"filename": "meeting.mp4", "message": "who is speaking?"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalysisHandler_UpstreamErrorIsBadGateway(t *testing.T) {
	router := newAnalysisRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/chat/history/meeting.mp4", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalysisHandler_ChatHistoryRoundTrip(t *testing.T) {
	router := newAnalysisRouter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/video/chat/history/meeting.mp4", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"history": []}`))
		case http.MethodDelete:
			w.Write([]byte(`{"cleared": true}`))
		}
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/chat/history/meeting.mp4", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history": []}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/video/chat/history/meeting.mp4", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cleared": true}`, rec.Body.String())
}
