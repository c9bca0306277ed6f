package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream"
)

// Scenario is a recorded stream: the raw chunks exactly as they arrived and,
// optionally, the transport error that ended it.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Question    string        `yaml:"question,omitempty"`
	Delay       time.Duration `yaml:"delay,omitempty"`
	Chunks      []string      `yaml:"chunks"`
	Error       string        `yaml:"error,omitempty"`
}

// LoadScenario reads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes a scenario from YAML
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if len(s.Chunks) == 0 && s.Error == "" {
		return nil, errors.New("scenario has no chunks and no error")
	}
	if s.Delay < 0 {
		return nil, fmt.Errorf("scenario delay must not be negative, got %s", s.Delay)
	}
	if s.Name == "" {
		s.Name = "unnamed"
	}
	return &s, nil
}

// ReplayTransport plays a Scenario back to a handler. It ignores the
// request, so the same recording can back any question.
type ReplayTransport struct {
	scenario *Scenario
	log      *logger.ComponentLogger
}

func NewReplayTransport(s *Scenario) *ReplayTransport {
	return &ReplayTransport{
		scenario: s,
		log:      logger.WithComponent("replay_transport"),
	}
}

// Scenario returns the recording being replayed
func (t *ReplayTransport) Scenario() *Scenario {
	return t.scenario
}

// Stream implements Transport
func (t *ReplayTransport) Stream(ctx context.Context, _ chat.Request, h stream.Handler) error {
	t.log.Debug("Replaying scenario", "name", t.scenario.Name, "chunks", len(t.scenario.Chunks))

	for _, chunk := range t.scenario.Chunks {
		if err := t.wait(ctx); err != nil {
			h.OnError(err)
			return err
		}
		if err := h.OnChunk(chunk); err != nil {
			h.OnError(err)
			return err
		}
	}

	if t.scenario.Error != "" {
		err := &stream.TransportError{Op: "replay " + t.scenario.Name, Cause: errors.New(t.scenario.Error)}
		h.OnError(err)
		return err
	}
	return h.OnComplete("")
}

func (t *ReplayTransport) wait(ctx context.Context) error {
	if t.scenario.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(t.scenario.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
