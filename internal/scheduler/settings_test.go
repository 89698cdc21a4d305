package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIteratedLocalSearchSettings(t *testing.T) {
	settings := DefaultIteratedLocalSearchSettings()
	require.NoError(t, settings.Validate())
	require.Equal(t, 60*time.Second, settings.TimeLimit)
	require.Equal(t, 1, settings.NbThreads)
	require.True(t, settings.ShareBestFoundSolution)
	require.True(t, settings.RecordTrace)
	require.False(t, settings.RecordFullIterationTrace)
	require.Equal(t, 30, settings.RestartIterations)
}

func TestIteratedLocalSearchSettingsValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*IteratedLocalSearchSettings)
	}{
		{"迭代数为零", func(s *IteratedLocalSearchSettings) { s.MaxIterations = 0 }},
		{"时间上限过短", func(s *IteratedLocalSearchSettings) { s.TimeLimit = 500 * time.Millisecond }},
		{"扰动强度为负", func(s *IteratedLocalSearchSettings) { s.PerturbationStrength = -0.1 }},
		{"扰动强度超过一", func(s *IteratedLocalSearchSettings) { s.PerturbationStrength = 1.5 }},
		{"接受概率超过一", func(s *IteratedLocalSearchSettings) { s.WorseSolutionAcceptanceRate = 2 }},
		{"块大小序列为空", func(s *IteratedLocalSearchSettings) { s.BlockSizes = nil }},
		{"块大小为零", func(s *IteratedLocalSearchSettings) { s.BlockSizes = []int{1, 0} }},
		{"协程数为零", func(s *IteratedLocalSearchSettings) { s.NbThreads = 0 }},
		{"记录周期过短", func(s *IteratedLocalSearchSettings) { s.TraceRecordPeriod = 0 }},
		{"重启迭代数为负", func(s *IteratedLocalSearchSettings) { s.RestartIterations = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := DefaultIteratedLocalSearchSettings()
			tc.mutate(settings)
			require.ErrorIs(t, settings.Validate(), ErrInvalidArgument)
		})
	}
}

func TestDefaultMemeticAlgorithmSettings(t *testing.T) {
	settings := DefaultMemeticAlgorithmSettings()
	require.NoError(t, settings.Validate())
	require.Equal(t, 400*time.Second, settings.TimeLimit)
	require.Equal(t, 3, settings.NbThreads)
	require.Equal(t, 30, settings.PopulationSize)
}

func TestMemeticAlgorithmSettingsValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*MemeticAlgorithmSettings)
	}{
		{"迭代数为零", func(s *MemeticAlgorithmSettings) { s.MaxIterations = 0 }},
		{"时间上限过短", func(s *MemeticAlgorithmSettings) { s.TimeLimit = 500 * time.Millisecond }},
		{"扰动强度为负", func(s *MemeticAlgorithmSettings) { s.PerturbationStrength = -0.1 }},
		{"局部搜索块序列为空", func(s *MemeticAlgorithmSettings) { s.LocalSearchBlockSizes = nil }},
		{"交叉块序列为空", func(s *MemeticAlgorithmSettings) { s.CrossoverBlockSizes = nil }},
		{"交叉块大小为零", func(s *MemeticAlgorithmSettings) { s.CrossoverBlockSizes = []int{0} }},
		{"协程数为零", func(s *MemeticAlgorithmSettings) { s.NbThreads = 0 }},
		{"种群容量为零", func(s *MemeticAlgorithmSettings) { s.PopulationSize = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := DefaultMemeticAlgorithmSettings()
			tc.mutate(settings)
			require.ErrorIs(t, settings.Validate(), ErrInvalidArgument)
		})
	}
}
