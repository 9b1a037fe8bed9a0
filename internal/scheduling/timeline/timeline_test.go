package timeline

import (
	"testing"
	"time"

	"clinicsched/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func iv(h1, m1, h2, m2 int) model.Interval {
	return model.Interval{Start: at(h1, m1), End: at(h2, m2)}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []model.Interval
		want []model.Interval
	}{
		{name: "empty", in: nil, want: nil},
		{name: "drops empty and inverted", in: []model.Interval{iv(9, 0, 9, 0), iv(11, 0, 10, 0)}, want: nil},
		{name: "merges overlapping", in: []model.Interval{iv(10, 0, 11, 0), iv(9, 0, 10, 30)}, want: []model.Interval{iv(9, 0, 11, 0)}},
		{name: "merges touching", in: []model.Interval{iv(9, 0, 10, 0), iv(10, 0, 11, 0)}, want: []model.Interval{iv(9, 0, 11, 0)}},
		{name: "keeps gaps", in: []model.Interval{iv(13, 0, 14, 0), iv(9, 0, 10, 0)}, want: []model.Interval{iv(9, 0, 10, 0), iv(13, 0, 14, 0)}},
		{name: "contained", in: []model.Interval{iv(9, 0, 17, 0), iv(10, 0, 11, 0)}, want: []model.Interval{iv(9, 0, 17, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSubtract(t *testing.T) {
	free := []model.Interval{iv(9, 0, 17, 0)}

	t.Run("middle busy splits", func(t *testing.T) {
		got := Subtract(free, []model.Interval{iv(12, 0, 13, 0)})
		assert.Equal(t, []model.Interval{iv(9, 0, 12, 0), iv(13, 0, 17, 0)}, got)
	})

	t.Run("busy covering start", func(t *testing.T) {
		got := Subtract(free, []model.Interval{iv(8, 0, 10, 0)})
		assert.Equal(t, []model.Interval{iv(10, 0, 17, 0)}, got)
	})

	t.Run("busy outside is ignored", func(t *testing.T) {
		got := Subtract(free, []model.Interval{iv(17, 0, 18, 0), iv(7, 0, 9, 0)})
		assert.Equal(t, free, got)
	})

	t.Run("busy covering everything", func(t *testing.T) {
		got := Subtract(free, []model.Interval{iv(8, 0, 18, 0)})
		assert.Empty(t, got)
	})

	t.Run("multiple busy intervals", func(t *testing.T) {
		got := Subtract(free, []model.Interval{iv(10, 0, 10, 30), iv(12, 0, 13, 0), iv(10, 15, 11, 0)})
		assert.Equal(t, []model.Interval{iv(9, 0, 10, 0), iv(11, 0, 12, 0), iv(13, 0, 17, 0)}, got)
	})
}

func TestSlice(t *testing.T) {
	t.Run("slots never cross boundaries", func(t *testing.T) {
		free := []model.Interval{iv(9, 0, 10, 0), iv(10, 30, 11, 15)}
		slots := Slice(free, 30*time.Minute)
		require.Len(t, slots, 3)
		assert.Equal(t, at(9, 0), slots[0].Start)
		assert.Equal(t, at(9, 30), slots[1].Start)
		assert.Equal(t, at(10, 30), slots[2].Start)
		assert.Equal(t, at(11, 0), slots[2].End)
		for _, s := range slots {
			assert.True(t, s.Available)
		}
	})

	t.Run("non positive duration", func(t *testing.T) {
		assert.Nil(t, Slice([]model.Interval{iv(9, 0, 10, 0)}, 0))
	})

	t.Run("interval shorter than duration", func(t *testing.T) {
		assert.Empty(t, Slice([]model.Interval{iv(9, 0, 9, 20)}, 30*time.Minute))
	})
}

func TestCovered(t *testing.T) {
	open := []model.Interval{iv(9, 0, 12, 0), iv(13, 0, 17, 0)}

	assert.True(t, Covered(iv(9, 0, 9, 30), open))
	assert.True(t, Covered(iv(16, 30, 17, 0), open))
	assert.False(t, Covered(iv(11, 30, 13, 30), open))
	assert.False(t, Covered(iv(8, 30, 9, 30), open))
	assert.False(t, Covered(iv(9, 0, 9, 30), nil))
}

func TestClamp(t *testing.T) {
	bounds := iv(9, 0, 17, 0)
	assert.Equal(t, iv(9, 0, 10, 0), Clamp(iv(8, 0, 10, 0), bounds))
	assert.Equal(t, iv(16, 0, 17, 0), Clamp(iv(16, 0, 18, 0), bounds))
	assert.False(t, Clamp(iv(18, 0, 19, 0), bounds).Valid())
}
