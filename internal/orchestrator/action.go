package orchestrator

// Kind names the single action a tick performed.
type Kind string

const (
	KindCreateSeason   Kind = "create_season"
	KindStartGame      Kind = "start_game"
	KindAdvanceWeek    Kind = "advance_week"
	KindSeasonComplete Kind = "season_complete"
	KindIdle           Kind = "idle"
)

// Idle reasons.
const (
	ReasonOffseason        = "offseason"
	ReasonSimulating       = "game_simulating"
	ReasonBroadcasting     = "broadcast_in_progress"
	ReasonLostRace         = "lost_race"
	ReasonIntermission     = "intermission"
	ReasonWeekBreak        = "week_break"
	ReasonNoGames          = "no_games"
	ReasonSimulationFailed = "simulation_failed"
	ReasonSimulationStall  = "simulation_stalled"
	ReasonWeekRepaired     = "week_repaired"
	ReasonNotFound         = "not_found"
)

// Action is the result of one tick. It is the JSON body returned by POST /tick.
type Action struct {
	Kind            Kind   `json:"action"`
	SeasonID        string `json:"seasonId,omitempty"`
	GameID          string `json:"gameId,omitempty"`
	Week            int    `json:"week,omitempty"`
	CompletedGameID string `json:"completedGameId,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Message         string `json:"message"`
}

func idle(reason, message string) Action {
	return Action{Kind: KindIdle, Reason: reason, Message: message}
}
