package countermeasure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSDNFlowPushesRyuPayload(t *testing.T) {
	var paths []string
	var rules []flowRule

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rule flowRule
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rule))
		paths = append(paths, r.URL.Path)
		rules = append(rules, rule)
	}))
	defer srv.Close()

	sdn := NewSDNFlow(srv.URL, 1, 1000)
	require.NoError(t, sdn.Install(context.Background(), "10.0.0.5"))
	require.NoError(t, sdn.Remove(context.Background(), "10.0.0.5"))

	require.Equal(t, []string{"/stats/flowentry/add", "/stats/flowentry/delete"}, paths)

	add := rules[0]
	assert.Equal(t, 1, add.Dpid)
	assert.Equal(t, 1000, add.Priority)
	assert.Equal(t, "10.0.0.5", add.Match.IPv4Src)
	assert.Equal(t, 2048, add.Match.EthType)
	assert.Empty(t, add.Actions)
}

func TestSDNFlowPushIsBestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "controller on fire", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sdn := NewSDNFlow(srv.URL, 1, 1000)
	assert.NoError(t, sdn.Install(context.Background(), "10.0.0.5"))
	assert.NoError(t, sdn.Remove(context.Background(), "10.0.0.5"))
}

func TestSDNFlowUnreachableController(t *testing.T) {
	// nothing listens here; the local block must still proceed
	sdn := NewSDNFlow("http://127.0.0.1:1", 1, 1000)
	assert.NoError(t, sdn.Install(context.Background(), "10.0.0.5"))
}
