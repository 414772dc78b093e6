package engine

// ActorView is an actor's render state
type ActorView struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Dir    string `json:"dir"`
	Moving bool   `json:"moving"`
}

// GhostView is a ghost's render state
type GhostView struct {
	ID        int    `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Dir       string `json:"dir"`
	Feared    bool   `json:"feared"`
	FearTicks int    `json:"fear_ticks"`
	InSpawn   bool   `json:"in_spawn"`
	State     string `json:"state"`
	Policy    string `json:"policy"`
}

// Snapshot is a read-only projection of the game state for renderers. It
// shares no memory with the live state.
type Snapshot struct {
	Tick        uint64      `json:"tick"`
	MapName     string      `json:"map"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	CellSize    int         `json:"cell_size"`
	Pacman      ActorView   `json:"pacman"`
	Dots        []Cell      `json:"dots"`
	PowerUps    []Cell      `json:"power_ups"`
	Ghosts      []GhostView `json:"ghosts"`
	Score       int         `json:"score"`
	DotsEaten   int         `json:"dots_eaten"`
	GhostsEaten int         `json:"ghosts_eaten"`
	GameOver    bool        `json:"game_over"`
	Reason      EndReason   `json:"reason,omitempty"`
	Theme       ColorTheme  `json:"theme"`
}

// NewSnapshot projects the state onto a fresh Snapshot.
func NewSnapshot(s *GameState, g *GridMap, config *MapConfig) *Snapshot {
	snap := &Snapshot{
		Tick:     s.Tick,
		Width:    g.Width(),
		Height:   g.Height(),
		CellSize: g.CellSize(),
		Pacman: ActorView{
			X:      s.Pacman.Pos.X,
			Y:      s.Pacman.Pos.Y,
			Dir:    s.Pacman.Dir.String(),
			Moving: s.Pacman.Moving,
		},
		Dots:        append([]Cell{}, s.Dots...),
		PowerUps:    append([]Cell{}, s.PowerUps...),
		Ghosts:      make([]GhostView, 0, len(s.Ghosts)),
		Score:       s.Score,
		DotsEaten:   s.DotsEaten,
		GhostsEaten: s.GhostsEaten,
		GameOver:    s.GameOver,
		Reason:      s.Reason,
	}

	for _, gh := range s.Ghosts {
		snap.Ghosts = append(snap.Ghosts, GhostView{
			ID:        gh.ID,
			X:         gh.Pos.X,
			Y:         gh.Pos.Y,
			Dir:       gh.Dir.String(),
			Feared:    gh.Feared(),
			FearTicks: gh.FearTicks,
			InSpawn:   gh.InSpawn,
			State:     gh.State().String(),
			Policy:    gh.PolicyName(),
		})
	}

	theme, _ := ThemeByName(DefaultThemeName)
	if config != nil {
		snap.MapName = config.Name
		if t, ok := ThemeByName(config.Theme); ok {
			theme = t
		}
	}
	snap.Theme = theme

	return snap
}
