package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	m := New(nil)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/cash-register/delete/:id", func(c *gin.Context) { c.Status(http.StatusForbidden) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cash-register/delete/3", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/cash-register/delete/:id", "403")))
}

func TestHandler_ExposesLedgerCollectors(t *testing.T) {
	m := New(nil)
	m.SweepsTotal.Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "repairshop_ledger_sweeps_total 1")
}
