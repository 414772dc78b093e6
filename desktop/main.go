package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	headerHeight = 60
	footerHeight = 24
	screenWidth  = 800
	screenHeight = 760
	writeWait    = 2 * time.Second
)

var baseURL = "http://localhost:8080"

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

var ghostColors = []color.RGBA{
	{255, 0, 0, 255},     // Red
	{255, 184, 255, 255}, // Pink
	{0, 255, 255, 255},   // Cyan
	{255, 184, 82, 255},  // Orange
}

var fearedColor = color.RGBA{33, 33, 255, 255}

// Cell is a grid coordinate
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ActorView is Pac-Man's render state
type ActorView struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Dir    string `json:"dir"`
	Moving bool   `json:"moving"`
}

// GhostView is a ghost's render state
type GhostView struct {
	ID      int    `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Feared  bool   `json:"feared"`
	InSpawn bool   `json:"in_spawn"`
	State   string `json:"state"`
}

// ColorTheme is the palette sent with every snapshot
type ColorTheme struct {
	Name       string `json:"name"`
	Wall       string `json:"wall"`
	Background string `json:"background"`
	Actor      string `json:"actor"`
}

// Snapshot is the frame the server pushes every tick
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
	Reason      string      `json:"reason,omitempty"`
	Theme       ColorTheme  `json:"theme"`
}

// MapLayout is the static part of a map, fetched once per session
type MapLayout struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Cells  string `json:"cells"`
}

// SessionInfo is the server's session description
type SessionInfo struct {
	ID         string     `json:"id"`
	PlayerID   string     `json:"player_id"`
	ConfigName string     `json:"config_name"`
	Realtime   bool       `json:"realtime"`
	Running    bool       `json:"running"`
	Snapshot   *Snapshot  `json:"snapshot"`
	MapConfig  *MapLayout `json:"map_config,omitempty"`
}

// WSMessage is a frame received over the WebSocket
type WSMessage struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Event     *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"event,omitempty"`
	Error string `json:"error,omitempty"`
}

// ClientMessage is a frame sent to the server
type ClientMessage struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`
}

// ConfigListItem represents a map configuration
type ConfigListItem struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID  string
	configName string
	snap       *Snapshot
	layout     *MapLayout
	wsConn     *websocket.Conn
	writeMu    sync.Mutex
	lastUpdate time.Time
	lastEvent  string
}

// Game represents the desktop game client
type Game struct {
	sessions      []*SessionData
	activeSession int
	stateMutex    sync.RWMutex
	currentScreen ScreenType
	welcomeScreen *WelcomeScreen
}

// WelcomeScreen lists running sessions followed by the maps a new
// session can be started on.
type WelcomeScreen struct {
	availableSessions []SessionInfo
	availableConfigs  []ConfigListItem
	cursorPos         int
	loading           bool
	errorMsg          string
}

// NewGame creates a new game instance with initial sessions
func NewGame(sessionIDs []string) *Game {
	g := &Game{
		currentScreen: ScreenWelcome,
		welcomeScreen: &WelcomeScreen{},
	}

	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		g.loadWelcomeData()
	}

	return g
}

// addSession joins an existing session, or creates one on configName when
// sessionID is empty.
func (g *Game) addSession(sessionID string, configName ...string) {
	session := &SessionData{sessionID: sessionID, lastUpdate: time.Now()}

	if sessionID == "" {
		name := ""
		if len(configName) > 0 {
			name = configName[0]
		}
		if err := g.createSession(session, name); err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
	}

	if err := g.fetchSession(session); err != nil {
		log.Printf("Failed to fetch session %s: %v", session.sessionID, err)
		return
	}

	g.stateMutex.Lock()
	g.sessions = append(g.sessions, session)
	g.activeSession = len(g.sessions) - 1
	g.stateMutex.Unlock()

	if err := g.connectWebSocket(session); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v", session.sessionID, err)
		return
	}
	go g.listenWebSocket(session)
}

// createSession starts a realtime session on the server
func (g *Game) createSession(session *SessionData, configName string) error {
	payload := map[string]interface{}{"realtime": true}
	if configName != "" {
		payload["config_id"] = configName
	}

	var info SessionInfo
	if err := apiCall(http.MethodPost, "/api/sessions", payload, &info); err != nil {
		return err
	}

	session.sessionID = info.ID
	log.Printf("Created new session: %s (map: %s)", info.ID, info.ConfigName)
	return nil
}

// fetchSession loads the map layout and the latest snapshot
func (g *Game) fetchSession(session *SessionData) error {
	var info SessionInfo
	if err := apiCall(http.MethodGet, "/api/sessions/"+session.sessionID, nil, &info); err != nil {
		return err
	}
	if info.MapConfig == nil {
		return fmt.Errorf("session %s has no map layout", session.sessionID)
	}

	g.stateMutex.Lock()
	session.configName = info.ConfigName
	session.layout = info.MapConfig
	session.snap = info.Snapshot
	session.lastUpdate = time.Now()
	g.stateMutex.Unlock()
	return nil
}

// connectWebSocket establishes WebSocket connection
func (g *Game) connectWebSocket(session *SessionData) error {
	base, err := url.Parse(baseURL)
	if err != nil {
		return err
	}

	wsURL := url.URL{Scheme: "ws", Host: base.Host, Path: "/ws"}
	if base.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	q := wsURL.Query()
	q.Set("session", session.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	session.wsConn = conn
	log.Printf("WebSocket connected for session %s", session.sessionID)
	return nil
}

// listenWebSocket applies snapshots pushed by the server
func (g *Game) listenWebSocket(session *SessionData) {
	defer session.wsConn.Close()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		g.stateMutex.Lock()
		switch msg.Type {
		case "snapshot":
			if msg.Snapshot != nil {
				session.snap = msg.Snapshot
				session.lastUpdate = time.Now()
			}
		case "event":
			if msg.Event != nil {
				session.lastEvent = msg.Event.Message
			}
		case "error":
			session.lastEvent = "error: " + msg.Error
		}
		g.stateMutex.Unlock()
	}
}

// send writes a client frame, falling back to REST without a socket
func (g *Game) send(session *SessionData, msg ClientMessage) error {
	if session.wsConn == nil {
		path := "/api/sessions/" + session.sessionID + "/" + msg.Type
		var body interface{}
		if msg.Type == "input" {
			body = map[string]string{"direction": msg.Direction}
		}
		return apiCall(http.MethodPost, path, body, nil)
	}

	session.writeMu.Lock()
	defer session.writeMu.Unlock()
	session.wsConn.SetWriteDeadline(time.Now().Add(writeWait))
	return session.wsConn.WriteJSON(msg)
}

func (g *Game) loadWelcomeData() {
	ws := g.welcomeScreen
	ws.loading = true
	ws.errorMsg = ""

	var list struct {
		Sessions []SessionInfo `json:"sessions"`
	}
	if err := apiCall(http.MethodGet, "/api/sessions?sort=created", nil, &list); err != nil {
		ws.errorMsg = fmt.Sprintf("Failed to load sessions: %v", err)
	}
	ws.availableSessions = list.Sessions

	var configs []ConfigListItem
	if err := apiCall(http.MethodGet, "/api/configs", nil, &configs); err != nil {
		ws.errorMsg = fmt.Sprintf("Failed to load maps: %v", err)
	}
	ws.availableConfigs = configs

	total := len(ws.availableSessions) + len(ws.availableConfigs)
	if ws.cursorPos >= total {
		ws.cursorPos = 0
	}
	ws.loading = false
}

// apiCall sends a JSON request and decodes the response into result
func apiCall(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	return json.Unmarshal(data, result)
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen
	total := len(ws.availableSessions) + len(ws.availableConfigs)

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
		return nil
	}
	if total == 0 {
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		ws.cursorPos = (ws.cursorPos + 1) % total
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		ws.cursorPos = (ws.cursorPos - 1 + total) % total
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if ws.cursorPos < len(ws.availableSessions) {
			g.addSession(ws.availableSessions[ws.cursorPos].ID)
		} else {
			cfg := ws.availableConfigs[ws.cursorPos-len(ws.availableSessions)]
			g.addSession("", cfg.ConfigID)
		}
		if len(g.sessions) > 0 {
			g.currentScreen = ScreenGame
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}
	return nil
}

var directionKeys = []struct {
	keys      []ebiten.Key
	direction string
}{
	{[]ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW}, "up"},
	{[]ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS}, "down"},
	{[]ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA}, "left"},
	{[]ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD}, "right"},
}

func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.loadWelcomeData()
			g.currentScreen = ScreenWelcome
		}
		return nil
	}

	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			if idx := int(i - ebiten.Key1); idx < len(g.sessions) {
				g.activeSession = idx
			}
		}
	}

	session := g.sessions[g.activeSession]

	// Presses are edge-triggered; the server remembers them for a few ticks.
	for _, dk := range directionKeys {
		for _, k := range dk.keys {
			if inpututil.IsKeyJustPressed(k) {
				if err := g.send(session, ClientMessage{Type: "input", Direction: dk.direction}); err != nil {
					log.Printf("Failed to send input: %v", err)
				}
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.send(session, ClientMessage{Type: "restart"}); err != nil {
			log.Printf("Failed to restart: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.addSession("", session.configName)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.loadWelcomeData()
		g.currentScreen = ScreenWelcome
	}
	return nil
}

// Draw renders the current screen
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen
	y := 20

	ebitenutil.DebugPrintAt(screen, "=== PAC-MAN - SESSION SELECT ===", 260, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading...", 20, y)
		return
	}
	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Join a session:", 20, y)
	y += 20
	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions running.", 20, y)
		y += 16
	}
	for i, s := range ws.availableSessions {
		line := fmt.Sprintf("  %s %s  map=%s player=%s", cursor(ws.cursorPos == i), shortID(s.ID), s.ConfigName, s.PlayerID)
		if s.Snapshot != nil {
			line += fmt.Sprintf(" score=%d", s.Snapshot.Score)
			if s.Snapshot.GameOver {
				line += " [over]"
			}
		}
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 16
	}

	y += 10
	ebitenutil.DebugPrintAt(screen, "Start a new game on:", 20, y)
	y += 20
	for i, cfg := range ws.availableConfigs {
		selected := ws.cursorPos == len(ws.availableSessions)+i
		line := fmt.Sprintf("  %s %s - %s", cursor(selected), cfg.ConfigID, cfg.Description)
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 16
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "CONTROLS: Up/Down select | ENTER join or start | F5 refresh", 20, y)
	if len(g.sessions) > 0 {
		ebitenutil.DebugPrintAt(screen, "          ESC back to game", 20, y+16)
	}
}

func cursor(selected bool) string {
	if selected {
		return ">"
	}
	return " "
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	if len(g.sessions) == 0 {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	session := g.sessions[g.activeSession]
	snap, layout := session.snap, session.layout
	if snap == nil || layout == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}

	theme := snap.Theme
	screen.Fill(parseHexColor(theme.Background, color.RGBA{0, 0, 0, 255}))

	boardW := float32(screenWidth)
	boardH := float32(screenHeight - headerHeight - footerHeight)
	tile := boardW / float32(layout.Width)
	if h := boardH / float32(layout.Height); h < tile {
		tile = h
	}
	originX := (boardW - tile*float32(layout.Width)) / 2
	originY := float32(headerHeight)
	// Actor positions are pixels in the server's cell size.
	scale := tile / float32(snap.CellSize)

	wall := parseHexColor(theme.Wall, color.RGBA{0, 0, 255, 255})
	for y := 0; y < layout.Height; y++ {
		for x := 0; x < layout.Width; x++ {
			i := y*layout.Width + x
			if i >= len(layout.Cells) {
				continue
			}
			cx, cy := originX+float32(x)*tile, originY+float32(y)*tile
			switch layout.Cells[i] {
			case '1':
				vector.DrawFilledRect(screen, cx, cy, tile, tile, wall, false)
			case '2':
				vector.DrawFilledRect(screen, cx, cy+tile*0.4, tile, tile*0.2, color.RGBA{255, 184, 255, 255}, false)
			}
		}
	}

	pickup := color.RGBA{255, 184, 151, 255}
	for _, d := range snap.Dots {
		cx, cy := cellCenter(d, originX, originY, tile)
		vector.DrawFilledCircle(screen, cx, cy, tile*0.1, pickup, true)
	}
	for _, p := range snap.PowerUps {
		cx, cy := cellCenter(p, originX, originY, tile)
		vector.DrawFilledCircle(screen, cx, cy, tile*0.3, pickup, true)
	}

	for _, gh := range snap.Ghosts {
		clr := ghostColors[gh.ID%len(ghostColors)]
		if gh.Feared {
			clr = fearedColor
		}
		gx := originX + float32(gh.X)*scale
		gy := originY + float32(gh.Y)*scale
		vector.DrawFilledRect(screen, gx+tile*0.1, gy+tile*0.1, tile*0.8, tile*0.8, clr, false)
	}

	px := originX + float32(snap.Pacman.X)*scale + tile/2
	py := originY + float32(snap.Pacman.Y)*scale + tile/2
	vector.DrawFilledCircle(screen, px, py, tile*0.45, parseHexColor(theme.Actor, color.RGBA{255, 255, 0, 255}), true)

	g.drawSessionStats(screen)

	if snap.GameOver {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("GAME OVER (%s) - press R to restart", snap.Reason), screenWidth/2-120, headerHeight/2+10)
	}
	ebitenutil.DebugPrintAt(screen, "1-9: Switch | N: New | Arrow/WASD: Steer | R: Restart | ESC: Menu", 10, screenHeight-20)
}

func cellCenter(c Cell, originX, originY, tile float32) (float32, float32) {
	return originX + (float32(c.X)+0.5)*tile, originY + (float32(c.Y)+0.5)*tile
}

// drawSessionStats shows score and tick for every open session
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	y := 4
	for i, s := range g.sessions {
		if s.snap == nil {
			continue
		}
		marker := " "
		if i == g.activeSession {
			marker = "*"
		}
		info := fmt.Sprintf("%s%d %s [%s] score=%d tick=%d dots=%d ghosts=%d",
			marker, i+1, shortID(s.sessionID), s.snap.MapName, s.snap.Score, s.snap.Tick, len(s.snap.Dots), s.snap.GhostsEaten)
		if i == g.activeSession && s.lastEvent != "" {
			info += "  " + s.lastEvent
		}
		ebitenutil.DebugPrintAt(screen, info, 10, y)
		y += 14
		if y > headerHeight-14 {
			break
		}
	}
}

// Layout returns the logical screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// parseHexColor decodes "#rrggbb", returning fallback on malformed input
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}

func main() {
	if env := os.Getenv("PACMAN_API_URL"); env != "" {
		baseURL = strings.TrimRight(env, "/")
	}

	sessionIDs := []string{}
	if len(os.Args) > 1 {
		sessionIDs = os.Args[1:]
	}

	game := NewGame(sessionIDs)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Pac-Man - Multi-Session Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
