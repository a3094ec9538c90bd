package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestClassifyAcquire(t *testing.T) {
	cases := []struct {
		name     string
		ret      vk.Result
		recreate bool
		fatal    bool
	}{
		{"success proceeds", vk.Success, false, false},
		{"suboptimal still proceeds", vk.Suboptimal, false, false},
		{"out of date rebuilds", vk.ErrorOutOfDate, true, false},
		{"device lost is fatal", vk.ErrorDeviceLost, false, true},
		{"surface lost is fatal", vk.ErrorSurfaceLost, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recreate, err := classifyAcquire(tc.ret)
			assert.Equal(t, tc.recreate, recreate)
			if tc.fatal {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestClassifyPresent(t *testing.T) {
	cases := []struct {
		name     string
		ret      vk.Result
		resized  bool
		recreate bool
		fatal    bool
	}{
		{"success without resize", vk.Success, false, false, false},
		{"success with pending resize", vk.Success, true, true, false},
		{"suboptimal rebuilds", vk.Suboptimal, false, true, false},
		{"out of date rebuilds", vk.ErrorOutOfDate, false, true, false},
		{"device lost is fatal", vk.ErrorDeviceLost, false, false, true},
		{"device lost is fatal even when resized", vk.ErrorDeviceLost, true, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recreate, err := classifyPresent(tc.ret, tc.resized)
			assert.Equal(t, tc.recreate, recreate)
			if tc.fatal {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNextFrameIndexPeriodicity(t *testing.T) {
	idx := 0
	seen := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		seen = append(seen, idx)
		idx = nextFrameIndex(idx, 2)
	}
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, seen)

	idx = 0
	seen = seen[:0]
	for i := 0; i < 6; i++ {
		seen = append(seen, idx)
		idx = nextFrameIndex(idx, 3)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, seen)
}
