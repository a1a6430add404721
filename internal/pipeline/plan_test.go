package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDDCPlan_OutputCount(t *testing.T) {
	p := DDCPlan{Channels: 4, Taps: 8, Decimation: 4, Filters: 1, MaxInputSize: 64}

	tests := []struct {
		name      string
		n, phase  int
		want      int
		wantPhase int
	}{
		{"aligned", 16, 0, 4, 0},
		{"one_sample", 1, 0, 1, 1},
		{"partial_block", 5, 0, 2, 1},
		{"mid_phase", 3, 2, 1, 1},
		{"no_output_yet", 1, 1, 0, 2},
		{"exact_boundary", 3, 1, 0, 0},
		{"past_boundary", 4, 1, 1, 1},
		{"empty", 0, 3, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.OutputCount(tt.n, tt.phase))
			assert.Equal(t, tt.wantPhase, p.NextPhase(tt.n, tt.phase))
		})
	}
}

// TestDDCPlan_OutputCountMatchesSimulation cross-checks the closed form
// against a per-sample counter.
func TestDDCPlan_OutputCountMatchesSimulation(t *testing.T) {
	for dec := 1; dec <= 7; dec++ {
		p := DDCPlan{Channels: 1, Taps: 1, Decimation: dec, Filters: 1, MaxInputSize: 100}
		for phase := range dec {
			for n := range 40 {
				count, ph := 0, phase
				for range n {
					if ph == 0 {
						count++
					}
					ph = (ph + 1) % dec
				}
				assert.Equal(t, count, p.OutputCount(n, phase), "dec=%d phase=%d n=%d", dec, phase, n)
				assert.Equal(t, ph, p.NextPhase(n, phase))
			}
		}
	}
}

func TestDDCPlan_Sizes(t *testing.T) {
	p := DDCPlan{Channels: 4, Taps: 8, Decimation: 4, Filters: 2, MaxInputSize: 10}
	assert.NoError(t, p.Validate())
	assert.Equal(t, 7, p.HistoryLen())
	assert.Equal(t, 17, p.WorkLen())
	assert.Equal(t, 3, p.MaxOutputSize())
	assert.Equal(t, int64(4*8+16*4+17*4+2*17*4+3*8), p.MemoryFootprint())

	assert.Error(t, DDCPlan{}.Validate())
}

func TestWaterfallPlan_Counts(t *testing.T) {
	p := WaterfallPlan{Channels: 16, PointsPerPayload: 64, Batch: 2, Integration: 3, Workers: 1}
	assert.NoError(t, p.Validate())

	assert.Equal(t, 32, p.FFTLen())
	assert.Equal(t, 64, p.SamplesPerBatch())
	assert.Equal(t, 1, p.Batches(10, 60))
	assert.Equal(t, 0, p.Batches(0, 63))

	assert.Equal(t, 0, p.WindowsCompleted(0, 2))
	assert.Equal(t, 1, p.WindowsCompleted(1, 2))
	assert.Equal(t, 2, p.WindowsCompleted(2, 4))

	// Two batches = four spectra; with one pending that is five, one window.
	assert.Equal(t, 16, p.OutputSize(0, 1, 128))
	assert.Equal(t, 0, p.OutputSize(0, 0, 64))
	assert.Equal(t, 128, p.StagingCapacity())
	assert.Positive(t, p.MemoryFootprint())

	assert.Error(t, WaterfallPlan{Channels: 1}.Validate())
}

func TestWaterfallPlan_FootprintScalesWithWorkers(t *testing.T) {
	one := WaterfallPlan{Channels: 1024, PointsPerPayload: 4096, Batch: 8, Integration: 8, Workers: 1}
	four := one
	four.Workers = 4
	assert.Greater(t, four.MemoryFootprint(), one.MemoryFootprint())
}
