package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/{mediaType}/genres", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/{mediaType}/genres", 200, 15*time.Millisecond)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("requests = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordUpstreamRequest(t *testing.T) {
	counter := UpstreamRequestsTotal.WithLabelValues("rejected")
	before := testutil.ToFloat64(counter)

	RecordUpstreamRequest("rejected", 0)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("rejected = %v, want %v", got, before+1)
	}
}
