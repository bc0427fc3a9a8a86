package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlanFilter(t *testing.T) {
	known := []int64{1, 2, 3}

	tests := []struct {
		name     string
		selected []int64
		want     []int64
	}{
		{"nothing selected", nil, nil},
		{"full selection", []int64{3, 1, 2}, nil},
		{"only unknown ids", []int64{7, 8}, nil},
		{"subset", []int64{3, 1}, []int64{1, 3}},
		{"unknown dropped", []int64{2, 9}, []int64{2}},
		{"duplicates", []int64{2, 2}, []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePlanFilter(tt.selected, known))
		})
	}
}

func TestParsePlanIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 5}, ParsePlanIDs([]string{"1,2", "x", "5", "-3"}))
	assert.Nil(t, ParsePlanIDs(nil))
}

func TestPlanFilterKey(t *testing.T) {
	assert.Equal(t, "all", planFilterKey(nil))
	assert.Equal(t, "1,3", planFilterKey([]int64{1, 3}))
}
