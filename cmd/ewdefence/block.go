package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
)

var (
	blockDuration int
	blockReason   string
)

var blockCmd = &cobra.Command{
	Use:   "block <address>",
	Short: "Block a source address on the running service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]interface{}{
			"address": args[0],
			"reason":  blockReason,
		}
		if blockDuration >= 0 {
			payload["duration_sec"] = blockDuration
		}

		var resp struct {
			Status      string `json:"status"`
			DurationSec int    `json:"duration_sec"`
		}
		if err := postJSON("/api/block", payload, &resp); err != nil {
			return err
		}
		fmt.Printf("%s: %s (duration %ds)\n", args[0], resp.Status, resp.DurationSec)
		return nil
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <address>",
	Short: "Remove a block from the running service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Status string `json:"status"`
		}
		if err := postJSON("/api/unblock", map[string]interface{}{"address": args[0]}, &resp); err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", args[0], resp.Status)
		return nil
	},
}

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List currently blocked addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Get(serverURL + "/api/blocked")
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var body struct {
			Blocked []models.BlockedAddress `json:"blocked"`
			Count   int                     `json:"count"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return err
		}

		if body.Count == 0 {
			fmt.Println("no addresses blocked")
			return nil
		}
		for _, b := range body.Blocked {
			expiry := "indefinite"
			if b.ExpiresAt != nil {
				expiry = "until " + b.ExpiresAt.Format(time.RFC3339)
			}
			fmt.Printf("%-40s %s  %s\n", b.Address, expiry, b.Reason)
		}
		return nil
	},
}

func init() {
	blockCmd.Flags().IntVar(&blockDuration, "duration", -1, "block duration in seconds (0 = indefinite, default = server config)")
	blockCmd.Flags().StringVar(&blockReason, "reason", "manual", "reason recorded with the block")
}

func postJSON(path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(serverURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusBadGateway {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
