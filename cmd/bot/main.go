// Command bot is an automated battleship player for exercising a
// running server. It connects over WebSocket, joins matchmaking,
// places a random fleet, and fires at untried cells on every turn
// until the game ends. Run two of them to watch a full match.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/gridstrike/battleship/game/engine"
	"github.com/gridstrike/battleship/game/service"
	ws "github.com/gridstrike/battleship/transport/websocket"
)

func main() {
	cmd := &cli.Command{
		Name:  "bot",
		Usage: "automated battleship player",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "ws://localhost:3001/ws", Usage: "server WebSocket URL"},
			&cli.StringFlag{Name: "name", Value: "Bot", Usage: "display name"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBot(cmd.String("url"), cmd.String("name"))
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("bot exited")
	}
}

type bot struct {
	conn     *gws.Conn
	playerID string
	tried    map[engine.Coordinate]bool
}

func runBot(url, name string) error {
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	b := &bot{
		conn:     conn,
		playerID: uuid.NewString(),
		tried:    make(map[engine.Coordinate]bool),
	}

	if err := b.send(ws.IntentJoin, map[string]string{"id": b.playerID, "name": name}); err != nil {
		return err
	}
	log.Info().Str("player", b.playerID).Str("url", url).Msg("joined matchmaking")

	return b.loop()
}

// loop reads server events until the game ends.
func (b *bot) loop() error {
	for {
		var env ws.Envelope
		if err := b.conn.ReadJSON(&env); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch env.Event {
		case service.EventMatchFound:
			log.Info().Msg("match found, placing fleet")
			if err := b.send(ws.IntentPlace, map[string]any{"ships": randomFleet()}); err != nil {
				return err
			}

		case service.EventGameStateUpdate:
			var gs service.GameStatePayload
			if err := json.Unmarshal(env.Data, &gs); err != nil {
				continue
			}
			if gs.Room.Phase == "playing" && gs.Room.CurrentTurn == b.playerID {
				if err := b.fire(); err != nil {
					return err
				}
			}

		case service.EventAttackResult:
			var outcome service.AttackOutcome
			if err := json.Unmarshal(env.Data, &outcome); err != nil {
				continue
			}
			log.Info().Str("attacker", outcome.AttackerID).
				Stringer("target", outcome.Coordinates).
				Str("result", string(outcome.Result)).Msg("attack")

		case service.EventGameOver:
			var over service.GameOverPayload
			if err := json.Unmarshal(env.Data, &over); err != nil {
				continue
			}
			if over.WinnerID == b.playerID {
				log.Info().Msg("victory")
			} else {
				log.Info().Str("winner", over.WinnerID).Msg("defeat")
			}
			return nil

		case service.EventError:
			var e service.ErrorPayload
			if err := json.Unmarshal(env.Data, &e); err == nil {
				log.Warn().Str("message", e.Message).Msg("server error")
			}
		}
	}
}

// fire attacks a random cell that has not been tried yet.
func (b *bot) fire() error {
	open := make([]engine.Coordinate, 0, engine.GridSize*engine.GridSize)
	for y := 0; y < engine.GridSize; y++ {
		for x := 0; x < engine.GridSize; x++ {
			c := engine.Coordinate{X: x, Y: y}
			if !b.tried[c] {
				open = append(open, c)
			}
		}
	}
	if len(open) == 0 {
		return fmt.Errorf("no cells left to attack")
	}

	target := open[rand.Intn(len(open))]
	b.tried[target] = true
	return b.send(ws.IntentAttack, map[string]any{"coordinates": target})
}

func (b *bot) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.conn.WriteJSON(ws.Envelope{Event: event, Data: data})
}

// randomFleet places the five ships at random legal positions by
// rejection sampling against an occupancy set.
func randomFleet() []service.ShipPlacement {
	classes := []engine.ShipType{
		engine.Carrier, engine.Battleship, engine.Cruiser,
		engine.Submarine, engine.Destroyer,
	}

	for {
		occupied := make(map[engine.Coordinate]bool)
		fleet := make([]service.ShipPlacement, 0, len(classes))
		ok := true

		for _, class := range classes {
			placement, placed := placeShip(class, occupied)
			if !placed {
				ok = false
				break
			}
			fleet = append(fleet, placement)
		}
		if ok {
			return fleet
		}
	}
}

// placeShip tries a bounded number of random origins and orientations
// for one ship.
func placeShip(class engine.ShipType, occupied map[engine.Coordinate]bool) (service.ShipPlacement, bool) {
	size := engine.ShipSizes[class]

	for attempt := 0; attempt < 100; attempt++ {
		horizontal := rand.Intn(2) == 0
		var origin engine.Coordinate
		if horizontal {
			origin = engine.Coordinate{X: rand.Intn(engine.GridSize - size + 1), Y: rand.Intn(engine.GridSize)}
		} else {
			origin = engine.Coordinate{X: rand.Intn(engine.GridSize), Y: rand.Intn(engine.GridSize - size + 1)}
		}

		positions := make([]engine.Coordinate, size)
		clear := true
		for i := range positions {
			c := origin
			if horizontal {
				c.X += i
			} else {
				c.Y += i
			}
			if occupied[c] {
				clear = false
				break
			}
			positions[i] = c
		}
		if !clear {
			continue
		}

		for _, c := range positions {
			occupied[c] = true
		}
		return service.ShipPlacement{Type: class, Positions: positions}, true
	}
	return service.ShipPlacement{}, false
}
