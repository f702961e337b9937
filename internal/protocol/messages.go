package protocol

// Move directions carried by INPUT.move.
const (
	MoveUp    = "UP"
	MoveDown  = "DOWN"
	MoveLeft  = "LEFT"
	MoveRight = "RIGHT"
)

// INPUT (client -> server). Exactly one of the command fields is set.
type InputMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Move            string      `json:"move,omitempty"`
	UsePowerup      *UsePowerup `json:"use_powerup,omitempty"`
	Pause           bool        `json:"pause,omitempty"` // toggles
	Save            *SaveReq    `json:"save,omitempty"`
	SetName         string      `json:"set_name,omitempty"`
	Restart         bool        `json:"restart,omitempty"` // starts a new session
}

type UsePowerup struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type SaveReq struct {
	PlayerName string `json:"player_name,omitempty"`
}

// STATE (server -> client), sent once per tick.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	Tick            uint64 `json:"tick"`
	Paused          bool   `json:"paused"`
	GameOver        bool   `json:"game_over"`
	Running         bool   `json:"running"`

	Player    PlayerState  `json:"player"`
	NPCs      []NPCState   `json:"npcs"`
	Trash     []TrashState `json:"trash"`
	Drops     []DropState  `json:"drops"`
	Inventory []SlotState  `json:"inventory"`
	City      CityState    `json:"city"`
	Score     ScoreState   `json:"score"`
	Events    []Event      `json:"events,omitempty"`
}

type PlayerState struct {
	Pos            [2]float64 `json:"pos"`
	Moving         bool       `json:"moving"`
	AutoCleaning   bool       `json:"auto_cleaning"`
	CleanProgress  float64    `json:"clean_progress"`
	AutoCleanTime  float64    `json:"auto_clean_time"`
	BoostRemaining float64    `json:"boost_remaining,omitempty"`
}

type NPCState struct {
	ID            string     `json:"id"`
	Faction       string     `json:"faction"`
	Pos           [2]float64 `json:"pos"`
	Cleaning      bool       `json:"cleaning"`
	CleanProgress float64    `json:"clean_progress"`
}

type TrashState struct {
	ID      string     `json:"id"`
	Variant string     `json:"variant,omitempty"`
	Pos     [2]float64 `json:"pos"`
}

type DropState struct {
	ID   string     `json:"id"`
	Kind string     `json:"kind"`
	Pos  [2]float64 `json:"pos"`
}

type SlotState struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

type CityState struct {
	TrashCount int     `json:"trash_count"`
	MaxTrash   int     `json:"max_trash"`
	Percentage float64 `json:"percentage"`
	Alert      string  `json:"alert"`
	GoodNPCs   int     `json:"good_npcs"`
	BadNPCs    int     `json:"bad_npcs"`
	CleanTiles int     `json:"clean_tiles"`
}

type ScoreState struct {
	PlayerName     string `json:"player_name"`
	Score          int    `json:"score"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
}

// Event is one notable thing that happened during a tick.
type Event map[string]any

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
