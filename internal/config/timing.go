package config

// TimingConfig holds the pacing the orchestrator and projector run on.
type TimingConfig struct {
	Offseason           Duration // wait after a champion before the next season
	Intermission        Duration // gap between games in a week
	WeekBreak           Duration // gap between weeks
	BroadcastBuffer     Duration // added to the last event offset before completion
	DefaultGameDuration Duration // broadcast estimate until enough samples exist
	MaxGameDuration     Duration // samples above this are discarded
}

func loadTiming() TimingConfig {
	return TimingConfig{
		Offseason:           durationEnvOrDefault(envOffseason, defaultOffseason),
		Intermission:        durationEnvOrDefault(envIntermission, defaultIntermission),
		WeekBreak:           durationEnvOrDefault(envWeekBreak, defaultWeekBreak),
		BroadcastBuffer:     durationEnvOrDefault(envBroadcastBuffer, defaultBroadcastBuffer),
		DefaultGameDuration: durationEnvOrDefault(envDefaultDuration, defaultGameDuration),
		MaxGameDuration:     durationEnvOrDefault(envMaxDuration, defaultMaxGameDuration),
	}
}
