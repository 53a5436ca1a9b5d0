// Package status implements the status reconciler (C7): a pure
// function of (named set, local set, remote set) producing a per-
// checksum status per spec §4.7's fixed table.
package status

import (
	"sort"

	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/namedcache"
)

// Status is one of the four outcomes of spec §4.7's table.
type Status string

// The four statuses.
const (
	New     Status = "NEW"     // named, local, not remote: upload candidate
	Deleted Status = "DELETED" // named, not local, remote: download candidate
	Missing Status = "MISSING" // named, not local, not remote: unrecoverable
	OK      Status = "OK"      // named, local, remote
)

// Record is the reconciler's output for one checksum.
type Record struct {
	Checksum checksum.Checksum
	Status   Status
	Names    []string
}

// Presence is a set of checksums known to be present somewhere (the
// local cache, or a remote).
type Presence map[checksum.Checksum]bool

// Reconcile computes, for every checksum in named, its status against
// local and remote presence, per the fixed table:
//
//	in L | in R | status
//	F    | F    | MISSING
//	T    | F    | NEW
//	F    | T    | DELETED
//	T    | T    | OK
func Reconcile(named *namedcache.NamedCache, local, remote Presence) []Record {
	checksums := named.Checksums()
	records := make([]Record, 0, len(checksums))
	for _, c := range checksums {
		inLocal := local[c]
		inRemote := remote[c]
		records = append(records, Record{
			Checksum: c,
			Status:   statusFor(inLocal, inRemote),
			Names:    named.NamesFor(c),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Checksum < records[j].Checksum
	})
	return records
}

func statusFor(inLocal, inRemote bool) Status {
	switch {
	case inLocal && inRemote:
		return OK
	case inLocal && !inRemote:
		return New
	case !inLocal && inRemote:
		return Deleted
	default:
		return Missing
	}
}

// Filter returns the subset of records matching one status, e.g. to
// build an upload plan from New records or a download plan from
// Deleted records (spec §4.8's "plan ... derived from filtering
// reconciler output by a single desired status").
func Filter(records []Record, want Status) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Status == want {
			out = append(out, r)
		}
	}
	return out
}

// AssumeRemoteFromLocal implements the §4.7 optimization: when the
// caller requests a download plan and local presence is a superset of
// the named checksums, skip the remote probe and assume remote
// presence equals local presence.
func AssumeRemoteFromLocal(named *namedcache.NamedCache, local Presence) bool {
	for _, c := range named.Checksums() {
		if !local[c] {
			return false
		}
	}
	return true
}
