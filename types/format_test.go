package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/convoform/record"
)

func sample(t *testing.T) *record.Record {
	t.Helper()
	rec, err := record.NewBuilder("DinnerOrder", "").
		Field(record.NewField("starter", "The starter").AsOne("", "", "Garden salad", "Tomato soup")).
		Field(record.NewField("mood", "Guest mood").Confidential()).
		Build()
	require.NoError(t, err)
	starter, _ := rec.Field("starter")
	starter.Value = record.Payload{
		record.KeyValue:   "Garden salad",
		record.KeyContext: record.NotApplicable,
		record.KeyQuote:   "salad",
		"as_one":          "Garden salad",
	}
	return rec
}

func TestFormatRecord(t *testing.T) {
	out := FormatRecord(sample(t))

	assert.True(t, strings.HasPrefix(out, "# DinnerOrder\n"))
	lines := strings.Split(out, "\n")
	var starter, cast, mood string
	for _, line := range lines {
		switch {
		case strings.Contains(line, ".as_one"):
			cast = line
		case strings.Contains(line, "starter"):
			starter = line
		case strings.Contains(line, "mood"):
			mood = line
		}
	}
	assert.Contains(t, starter, "Garden salad")
	assert.Contains(t, cast, "Garden salad")
	assert.Contains(t, mood, "confidential")
	assert.Contains(t, mood, "missing")
}

func TestFields(t *testing.T) {
	infos := Fields(sample(t))
	require.Len(t, infos, 2)
	assert.Equal(t, FieldInfo{
		Name:        "starter",
		Description: "The starter",
		Value:       "Garden salad",
		Collected:   true,
		Casts:       []string{"as_one"},
	}, infos[0])
	assert.Equal(t, FieldInfo{
		Name:         "mood",
		Description:  "Guest mood",
		Confidential: true,
	}, infos[1])
}

func TestStatusSuspended(t *testing.T) {
	assert.True(t, StatusAwaitHuman.Suspended())
	assert.True(t, StatusTerminal.Suspended())
	assert.False(t, StatusModelTurn.Suspended())
	assert.False(t, StatusStart.Suspended())
}
