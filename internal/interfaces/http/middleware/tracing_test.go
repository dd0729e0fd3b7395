package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedRouter(recorder *tracetest.SpanRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing("fieldsales-test", otelgin.WithTracerProvider(tp))...)
	router.GET("/api/v1/sales/channel", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/sales/model", func(c *gin.Context) {
		_ = c.Error(errors.New("failed to load model references"))
		c.Status(http.StatusInternalServerError)
	})
	return router
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracing_TagsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	router := tracedRouter(recorder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/channel?code=TSE01&td_format=MTD", nil)
	req.Header.Set(RequestIDKey, "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := attrs(spans[0])
	assert.Equal(t, "req-42", got["request_id"].AsString())
	assert.Equal(t, "TSE01", got["employee_code"].AsString())
}

func TestTracing_LongCodeIsCut(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	router := tracedRouter(recorder)

	router.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/v1/sales/channel?code="+strings.Repeat("A", 500), nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Len(t, attrs(spans[0])["employee_code"].AsString(), maxEmployeeCodeLength)
}

func TestTracing_RecordsHandlerErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	router := tracedRouter(recorder)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sales/model", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	var messages []string
	for _, ev := range spans[0].Events() {
		for _, kv := range ev.Attributes {
			if kv.Key == "exception.message" {
				messages = append(messages, kv.Value.AsString())
			}
		}
	}
	assert.Contains(t, messages, "failed to load model references")
	assert.NotEmpty(t, attrs(spans[0])["request_id"].AsString())
}
