package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyBucketsJSON(t *testing.T) {
	var m MonthlyBuckets
	m.Set(1, d("3.75"))
	m.Set(2, d("1.5"))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"01":"3.75"`)
	assert.Contains(t, string(data), `"02":"1.5"`)

	var back MonthlyBuckets
	require.NoError(t, json.Unmarshal(data, &back))

	for month := 1; month <= 12; month++ {
		assert.True(t, back.Get(month).Equal(m.Get(month)),
			"month %02d: got %s, want %s", month, back.Get(month), m.Get(month))
	}
}

func TestMonthlyBucketsUnmarshalRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown month key", `{"13": "1"}`},
		{"non numeric key", `{"jan": "1"}`},
		{"negative value", `{"04": "-2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m MonthlyBuckets
			assert.Error(t, json.Unmarshal([]byte(tt.in), &m))
		})
	}
}

func TestMonthlyBucketsSumThrough(t *testing.T) {
	var m MonthlyBuckets
	m.Set(1, d("2"))
	m.Set(2, d("2"))
	m.Set(6, d("4"))

	assert.True(t, m.SumThrough(2).Equal(d("4")), "SumThrough(2) = %s", m.SumThrough(2))
	assert.True(t, m.SumThrough(12).Equal(d("8")), "SumThrough(12) = %s", m.SumThrough(12))
	assert.True(t, m.SumThrough(0).IsZero(), "SumThrough(0) = %s", m.SumThrough(0))
}
