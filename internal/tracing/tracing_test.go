package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestInit_Disabled(t *testing.T) {
	p, err := Init(false, "")
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(t.Context()))
}

func TestGinMiddleware_StartsSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

	var sawSpan bool
	r := gin.New()
	r.Use(GinMiddleware(tp))
	r.GET("/api/quiz/:topic", func(c *gin.Context) {
		sawSpan = trace.SpanFromContext(c.Request.Context()).SpanContext().IsValid()
		c.Status(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/quiz/Recursion", nil))

	assert.True(t, sawSpan)
	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/quiz/:topic", spans[0].Name)
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind)
}
