// Command status prints a human-readable snapshot of a running
// server: active rooms with their phase and players, and the current
// matchmaking queue.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/gridstrike/battleship/game/service"
)

func main() {
	cmd := &cli.Command{
		Name:  "status",
		Usage: "inspect a running battleship server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "http://localhost:3001", Usage: "server base URL"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return printStatus(cmd.String("addr"))
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printStatus(base string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	var roomsBody struct {
		Count int                 `json:"count"`
		Rooms []*service.RoomInfo `json:"rooms"`
	}
	if err := fetch(client, base+"/api/rooms", &roomsBody); err != nil {
		return err
	}

	var queue service.QueueInfo
	if err := fetch(client, base+"/api/queue", &queue); err != nil {
		return err
	}

	fmt.Printf("Rooms: %d\n", roomsBody.Count)
	for _, r := range roomsBody.Rooms {
		fmt.Printf("  %s  phase=%s  turn=%s  age=%s\n",
			r.ID, r.Phase, r.CurrentTurn, time.Since(r.CreatedAt).Round(time.Second))
		for _, p := range r.Players {
			marker := " "
			if p.ID == r.CurrentTurn {
				marker = "*"
			}
			fmt.Printf("   %s %s (%s)  ready=%v alive=%v ships=%d\n",
				marker, p.Name, p.ID, p.IsReady, p.IsAlive, p.ShipsRemaining)
		}
		if r.WinnerID != "" {
			fmt.Printf("    winner: %s\n", r.WinnerID)
		}
	}

	fmt.Printf("Queue: %d waiting\n", queue.Length)
	for i, id := range queue.Players {
		fmt.Printf("  %d. %s\n", i+1, id)
	}
	return nil
}

func fetch(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
