package listing

import (
	"testing"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	in := []domain.ListingReference{
		{URL: "u1", Title: "first", JobID: "D1"},
		{URL: "u2", Title: "no id"},
		{URL: "u3", Title: "second", JobID: "D2"},
		{URL: "u1-dup", Title: "first again", JobID: "D1"},
		{URL: "u4", Title: "third", JobID: "D3"},
		{URL: "u3-dup", Title: "second again", JobID: "D2"},
	}

	got := Dedupe(in)

	assert.Equal(t, domain.ListingSet{
		{URL: "u1", Title: "first", JobID: "D1"},
		{URL: "u3", Title: "second", JobID: "D2"},
		{URL: "u4", Title: "third", JobID: "D3"},
	}, got)
}

func TestDedupeNoDuplicateIDs(t *testing.T) {
	inputs := [][]domain.ListingReference{
		nil,
		{{JobID: ""}, {JobID: ""}},
		{{JobID: "A"}, {JobID: "A"}, {JobID: "A"}},
		{{JobID: "C"}, {JobID: "B"}, {JobID: "A"}, {JobID: "B"}, {JobID: "C"}},
	}

	for _, in := range inputs {
		got := Dedupe(in)
		seen := map[string]bool{}
		for _, l := range got {
			assert.True(t, l.HasID())
			assert.False(t, seen[l.JobID], "duplicate id %s", l.JobID)
			seen[l.JobID] = true
		}
	}

	got := Dedupe([]domain.ListingReference{{JobID: "C"}, {JobID: "B"}, {JobID: "A"}, {JobID: "B"}})
	assert.Equal(t, []string{"C", "B", "A"}, []string{got[0].JobID, got[1].JobID, got[2].JobID})
}
