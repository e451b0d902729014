package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreExposed(t *testing.T) {
	before := testutil.ToFloat64(Uploads.WithLabelValues("error"))
	Uploads.WithLabelValues(Result(errors.New("x"))).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Uploads.WithLabelValues("error")))

	EditorCommands.WithLabelValues("toggleMark", Result(nil)).Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `fmasite_editor_commands_total{command="toggleMark",result="ok"}`)
	assert.Contains(t, rr.Body.String(), "fmasite_boot_time")
}
