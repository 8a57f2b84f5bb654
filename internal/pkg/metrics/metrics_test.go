package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/api/health", "200"))
	RecordRequest("GET", "/api/health", "200", 5*time.Millisecond)
	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/api/health", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordAuthz(t *testing.T) {
	before := testutil.ToFloat64(AuthzDecisions.WithLabelValues("instrument", "create", "deny"))
	RecordAuthz("instrument", "create", false)
	assert.Equal(t, before+1, testutil.ToFloat64(AuthzDecisions.WithLabelValues("instrument", "create", "deny")))
}

func TestRecordLogin(t *testing.T) {
	before := testutil.ToFloat64(LoginAttempts.WithLabelValues("throttled"))
	RecordLogin("throttled")
	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttempts.WithLabelValues("throttled")))
}
