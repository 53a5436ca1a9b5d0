package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mribeirodantas/dvc/internal/namedcache"
	"github.com/mribeirodantas/dvc/internal/status"
)

func TestReconcileTableS4(t *testing.T) {
	named := namedcache.New()
	named.Add("c1", "c1")
	named.Add("c2", "c2")
	named.Add("c3", "c3")
	named.Add("c4", "c4")

	local := status.Presence{"c1": true, "c2": true}
	remote := status.Presence{"c2": true, "c3": true}

	records := status.Reconcile(named, local, remote)

	got := map[string]status.Status{}
	for _, r := range records {
		got[string(r.Checksum)] = r.Status
	}

	assert.Equal(t, status.New, got["c1"])
	assert.Equal(t, status.OK, got["c2"])
	assert.Equal(t, status.Deleted, got["c3"])
	assert.Equal(t, status.Missing, got["c4"])
}

func TestFilter(t *testing.T) {
	named := namedcache.New()
	named.Add("c1", "c1")
	named.Add("c2", "c2")
	local := status.Presence{"c1": true}
	remote := status.Presence{"c2": true}

	records := status.Reconcile(named, local, remote)
	newOnes := status.Filter(records, status.New)
	assert.Len(t, newOnes, 1)
	assert.Equal(t, "c1", string(newOnes[0].Checksum))
}

func TestAssumeRemoteFromLocal(t *testing.T) {
	named := namedcache.New()
	named.Add("c1", "c1")
	named.Add("c2", "c2")

	assert.True(t, status.AssumeRemoteFromLocal(named, status.Presence{"c1": true, "c2": true}))
	assert.False(t, status.AssumeRemoteFromLocal(named, status.Presence{"c1": true}))
}
