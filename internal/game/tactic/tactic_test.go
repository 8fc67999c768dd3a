package tactic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/outplay/internal/game/tactic"
)

func TestParse_MenuNumbersAndNames(t *testing.T) {
	tests := []struct {
		in   string
		want tactic.Tactic
	}{
		{"1", tactic.Observe},
		{"2", tactic.Pressure},
		{"3", tactic.Bait},
		{"4", tactic.Attack},
		{"observe", tactic.Observe},
		{" Bait ", tactic.Bait},
		{"ATTACK", tactic.Attack},
	}
	for _, tc := range tests {
		got, err := tactic.Parse(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "5", "run", "0"} {
		got, err := tactic.Parse(in)
		var pe *tactic.ParseError
		require.ErrorAs(t, err, &pe, "input %q", in)
		assert.Equal(t, in, pe.Input)
		assert.Equal(t, tactic.Unknown, got)
	}
}

func TestTactic_String(t *testing.T) {
	assert.Equal(t, "OBSERVE", tactic.Observe.String())
	assert.Equal(t, "PRESSURE", tactic.Pressure.String())
	assert.Equal(t, "BAIT", tactic.Bait.String())
	assert.Equal(t, "ATTACK", tactic.Attack.String())
	assert.Equal(t, "UNKNOWN", tactic.Unknown.String())
	assert.False(t, tactic.Unknown.Valid())
}

func TestMostFrequent_TieGoesToEarliest(t *testing.T) {
	best, n, ok := tactic.MostFrequent([]tactic.Tactic{
		tactic.Bait, tactic.Attack, tactic.Attack, tactic.Bait,
	})
	require.True(t, ok)
	assert.Equal(t, tactic.Bait, best)
	assert.Equal(t, 2, n)
}

func TestMostFrequent_Empty(t *testing.T) {
	_, _, ok := tactic.MostFrequent(nil)
	assert.False(t, ok)
}

func TestHistory_RecentAndLast(t *testing.T) {
	h := tactic.NewHistory()
	_, ok := h.Last()
	assert.False(t, ok)

	for _, x := range []tactic.Tactic{tactic.Observe, tactic.Pressure, tactic.Bait, tactic.Attack} {
		h.Append(x)
	}
	assert.Equal(t, 4, h.Len())
	assert.Equal(t, []tactic.Tactic{tactic.Bait, tactic.Attack}, h.Recent(2))
	assert.Len(t, h.Recent(10), 4)
	assert.Nil(t, h.Recent(0))

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, tactic.Attack, last)
}

func TestHistory_RecentReturnsCopy(t *testing.T) {
	h := tactic.NewHistory()
	h.Append(tactic.Observe)
	r := h.Recent(1)
	r[0] = tactic.Attack
	last, _ := h.Last()
	assert.Equal(t, tactic.Observe, last)
}

func TestProperty_MostFrequentCountMatchesCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ts := rapid.SliceOfN(rapid.SampledFrom(tactic.All), 1, 30).Draw(rt, "tactics")
		best, n, ok := tactic.MostFrequent(ts)
		require.True(rt, ok)
		assert.Equal(rt, tactic.Count(ts, best), n)
		for _, x := range tactic.All {
			assert.LessOrEqual(rt, tactic.Count(ts, x), n)
		}
	})
}
