package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ref(id int64) *int64 {
	return &id
}

func TestPlaceRelative(t *testing.T) {
	ids := []int64{10, 20, 30, 40}

	t.Run("no target appends", func(t *testing.T) {
		assert.Equal(t, []int64{10, 20, 30, 40, 50}, PlaceRelative(ids, 50, nil, After))
	})

	t.Run("before target", func(t *testing.T) {
		assert.Equal(t, []int64{10, 40, 20, 30}, PlaceRelative(ids, 40, ref(20), Before))
	})

	t.Run("after target", func(t *testing.T) {
		assert.Equal(t, []int64{20, 30, 10, 40}, PlaceRelative(ids, 10, ref(30), After))
	})

	t.Run("after last stays last", func(t *testing.T) {
		assert.Equal(t, []int64{20, 30, 40, 10}, PlaceRelative(ids, 10, ref(40), After))
	})

	t.Run("moving id enters from outside", func(t *testing.T) {
		assert.Equal(t, []int64{10, 99, 20, 30, 40}, PlaceRelative(ids, 99, ref(20), Before))
	})

	t.Run("target equals moving id appends", func(t *testing.T) {
		assert.Equal(t, []int64{10, 20, 40, 30}, PlaceRelative(ids, 30, ref(30), Before))
	})

	t.Run("missing target appends", func(t *testing.T) {
		assert.Equal(t, []int64{10, 30, 40, 20}, PlaceRelative(ids, 20, ref(77), Before))
	})

	t.Run("input slice untouched", func(t *testing.T) {
		PlaceRelative(ids, 40, ref(10), Before)
		assert.Equal(t, []int64{10, 20, 30, 40}, ids)
	})

	t.Run("empty partition", func(t *testing.T) {
		assert.Equal(t, []int64{5}, PlaceRelative(nil, 5, nil, After))
	})
}

func TestValidPosition(t *testing.T) {
	assert.True(t, ValidPosition(Before))
	assert.True(t, ValidPosition(After))
	assert.False(t, ValidPosition(""))
	assert.False(t, ValidPosition("top"))
}
