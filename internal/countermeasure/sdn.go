package countermeasure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const sdnTimeout = 3 * time.Second

// SDNFlow pushes flow-drop rules to a remote SDN controller over its REST
// API. The push is best-effort: a failed or timed-out call is logged and the
// local block state is updated anyway, so the local registry and the
// controller can diverge until the next successful push.
type SDNFlow struct {
	controllerURL string
	dpid          int
	priority      int
	client        *http.Client
}

func NewSDNFlow(controllerURL string, dpid, priority int) *SDNFlow {
	return &SDNFlow{
		controllerURL: controllerURL,
		dpid:          dpid,
		priority:      priority,
		client:        &http.Client{Timeout: sdnTimeout},
	}
}

func (s *SDNFlow) Name() string { return "sdn" }

type flowMatch struct {
	IPv4Src string `json:"ipv4_src"`
	EthType int    `json:"eth_type"`
}

type flowRule struct {
	Dpid     int           `json:"dpid"`
	Priority int           `json:"priority"`
	Match    flowMatch     `json:"match"`
	Actions  []interface{} `json:"actions"`
}

func (s *SDNFlow) Install(ctx context.Context, addr string) error {
	if err := s.push(ctx, "/stats/flowentry/add", addr); err != nil {
		log.Printf("countermeasure: sdn flow push for %s failed (continuing): %v", addr, err)
	}
	return nil
}

func (s *SDNFlow) Remove(ctx context.Context, addr string) error {
	if err := s.push(ctx, "/stats/flowentry/delete", addr); err != nil {
		log.Printf("countermeasure: sdn flow delete for %s failed (continuing): %v", addr, err)
	}
	return nil
}

func (s *SDNFlow) push(ctx context.Context, endpoint, addr string) error {
	rule := flowRule{
		Dpid:     s.dpid,
		Priority: s.priority,
		Match:    flowMatch{IPv4Src: addr, EthType: 2048},
		Actions:  []interface{}{},
	}

	data, err := json.Marshal(rule)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.controllerURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("controller returned %s", resp.Status)
	}
	return nil
}
