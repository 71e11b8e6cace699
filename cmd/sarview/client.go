package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/udisondev/sarsim/internal/command"
	"github.com/udisondev/sarsim/internal/comms"
	"github.com/udisondev/sarsim/internal/world"
)

// client talks to a running sarsim API.
type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(base, token string) *client {
	return &client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *client) snapshot(ctx context.Context) (world.Snapshot, error) {
	var snap world.Snapshot
	err := c.get(ctx, "/agents", &snap)
	return snap, err
}

func (c *client) messages(ctx context.Context) ([]comms.Message, error) {
	var msgs []comms.Message
	err := c.get(ctx, "/messages", &msgs)
	return msgs, err
}

func (c *client) command(ctx context.Context, agentID, cmd string, params map[string]any) (command.Result, error) {
	body := map[string]any{"agent_id": agentID, "command": cmd, "params": params}
	var res command.Result
	err := c.post(ctx, "/command", body, &res)
	return res, err
}

func (c *client) addVictim(ctx context.Context) error {
	var view world.VictimView
	return c.post(ctx, "/victims", struct{}{}, &view)
}

func (c *client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var res command.Result
		if json.NewDecoder(resp.Body).Decode(&res) == nil && res.Message != "" {
			return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, res.Message)
		}
		return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
