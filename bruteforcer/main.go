// Command bruteforcer plays manual Pac-Man sessions through the REST API.
// Each decision runs a breadth-first search from Pac-Man's next aligned
// cell to the closest pickup and advances the game one cell at a time with
// the step endpoint. Attempts restart the session until the board is
// cleared or the attempt budget runs out.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/pacman/game/engine"
	"github.com/wricardo/mcp-training/pacman/game/service"
)

// Client talks to the game server's REST API for one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateSession starts a manual session on configName
func (c *Client) CreateSession(ctx context.Context, configName string, seed int64) (*service.SessionInfo, error) {
	req := map[string]interface{}{"realtime": false, "player_id": "bruteforcer"}
	if configName != "" {
		req["config"] = configName
	}
	if seed != 0 {
		req["seed"] = seed
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return c.GetSession(ctx)
}

// GetSession fetches the session with its map layout
func (c *Client) GetSession(ctx context.Context) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+c.sessionID, nil, &info); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &info, nil
}

// Step buffers direction, when set, and advances ticks frames
func (c *Client) Step(ctx context.Context, direction engine.Direction, ticks int) (*service.StepResult, error) {
	req := map[string]interface{}{"ticks": ticks}
	if direction != engine.None {
		req["direction"] = direction.String()
	}

	var result service.StepResult
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/step", req, &result); err != nil {
		return nil, fmt.Errorf("step: %w", err)
	}
	return &result, nil
}

// Restart resets the session and returns the fresh snapshot
func (c *Client) Restart(ctx context.Context) (*engine.Snapshot, error) {
	var resp struct {
		Message  string           `json:"message"`
		Snapshot *engine.Snapshot `json:"snapshot"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/restart", nil, &resp); err != nil {
		return nil, fmt.Errorf("restart: %w", err)
	}
	return resp.Snapshot, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
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
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	return json.Unmarshal(data, result)
}

// Bot plays one session with a search strategy
type Bot struct {
	client   *Client
	strategy *SearchStrategy
	cellSize int
	delay    time.Duration
	log      *log.Entry
}

// NewBot prepares a bot for the session the client is bound to
func NewBot(client *Client, info *service.SessionInfo, delay time.Duration) (*Bot, error) {
	if info.MapConfig == nil {
		return nil, fmt.Errorf("session %s has no map layout", info.ID)
	}
	strategy, err := NewSearchStrategy(info.MapConfig)
	if err != nil {
		return nil, err
	}
	return &Bot{
		client:   client,
		strategy: strategy,
		cellSize: info.MapConfig.EffectiveCellSize(),
		delay:    delay,
		log:      log.WithFields(log.Fields{"component": "bruteforcer", "session": info.ID}),
	}, nil
}

// Cleared reports whether every dot on the board is gone
func Cleared(snap *engine.Snapshot) bool {
	return len(snap.Dots) == 0
}

// Play runs until the board is cleared, the game ends or maxTicks pass.
// Every round buffers a direction for the tick that lands on the decision
// cell, then coasts to one pixel short of the next cell.
func (b *Bot) Play(ctx context.Context, snap *engine.Snapshot, maxTicks int) (*engine.Snapshot, error) {
	ticks := 0
	for !snap.GameOver && !Cleared(snap) && ticks < maxTicks {
		direction := b.strategy.NextMove(snap)
		if direction == engine.None {
			return snap, fmt.Errorf("no open direction from %s", b.strategy.DecisionCell(snap))
		}

		for _, round := range []struct {
			dir   engine.Direction
			ticks int
		}{{direction, 1}, {engine.None, b.cellSize - 1}} {
			result, err := b.client.Step(ctx, round.dir, round.ticks)
			if err != nil {
				return snap, err
			}
			snap = result.Snapshot
			ticks += result.TicksExecuted
			if snap.GameOver || Cleared(snap) {
				break
			}
		}

		b.log.WithFields(log.Fields{"tick": snap.Tick, "score": snap.Score, "dots": len(snap.Dots)}).Debugf("moved %s", direction)
		if b.delay > 0 {
			time.Sleep(b.delay)
		}
	}
	return snap, nil
}

// Run plays up to attempts games and returns the best final snapshot
func (b *Bot) Run(ctx context.Context, snap *engine.Snapshot, attempts, maxTicks int) (*engine.Snapshot, error) {
	var best *engine.Snapshot
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			var err error
			if snap, err = b.client.Restart(ctx); err != nil {
				return best, err
			}
		}

		final, err := b.Play(ctx, snap, maxTicks)
		if err != nil {
			b.log.WithError(err).Warn("attempt aborted")
		}
		b.log.WithFields(log.Fields{
			"attempt": attempt,
			"score":   final.Score,
			"ticks":   final.Tick,
			"dots":    len(final.Dots),
			"reason":  final.Reason,
		}).Info("attempt finished")

		if best == nil || final.Score > best.Score {
			best = final
		}
		if Cleared(final) {
			return final, nil
		}
		if ctx.Err() != nil {
			return best, ctx.Err()
		}
	}
	return best, fmt.Errorf("board not cleared after %d attempts", attempts)
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bruteforcer",
		Usage: "Play manual Pac-Man sessions through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("PACMAN_API_URL")},
			&cli.StringFlag{Name: "config", Usage: "Map configuration to play (default: server default)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-ticks", Value: 20000, Usage: "Maximum ticks per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 10, Usage: "Maximum attempts before giving up"},
			&cli.IntFlag{Name: "seed", Usage: "Seed for the ghosts' random policy"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between moves"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			if cmd.Bool("v") {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	client := NewClient(cmd.String("url"))
	log.Infof("Connecting to game server at %s", client.baseURL)

	var info *service.SessionInfo
	var err error
	if id := cmd.String("continue"); id != "" {
		client.sessionID = id
		info, err = client.GetSession(ctx)
	} else {
		info, err = client.CreateSession(ctx, cmd.String("config"), int64(cmd.Int("seed")))
	}
	if err != nil {
		return err
	}
	if info.Realtime {
		return fmt.Errorf("session %s is realtime; only manual sessions can be stepped", info.ID)
	}
	log.Infof("Playing session %s on %s", info.ID, info.ConfigName)

	bot, err := NewBot(client, info, cmd.Duration("delay"))
	if err != nil {
		return err
	}

	snap, err := client.Restart(ctx)
	if err != nil {
		return err
	}

	best, err := bot.Run(ctx, snap, cmd.Int("max-attempts"), cmd.Int("max-ticks"))
	if best != nil {
		log.Infof("Best score %d in session %s", best.Score, info.ID)
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
