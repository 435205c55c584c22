package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AnalysesTotal,
		AnalysisDuration,
		UploadBytesTotal,
		UploadsTotal,
		WebSocketConnectionsCurrent,
	}
	for _, c := range collectors {
		assert.NotNil(t, c)
	}
}

func TestAnalysisResult(t *testing.T) {
	assert.Equal(t, "fallback", AnalysisResult(true))
	assert.Equal(t, "model", AnalysisResult(false))
}

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/things/:id", "GET", "204"))

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/things/:id", "GET", "204"))
	assert.Equal(t, 2.0, after-before)
}
