package headless

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/config"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/nodes"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/render"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/session"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/transport"
)

// Config contains everything needed to run a chat test without a TUI
type Config struct {
	Settings     *config.Settings
	Transport    transport.Transport
	Out          io.Writer
	ErrOut       io.Writer
	Trace        io.Writer // raw chunk copy, nil disables
	ShowProgress bool
}

// Runner drives a chat view from a line-oriented terminal
type Runner struct {
	view   *session.ChatView
	output *Output
	opts   render.Options
	log    *logger.ComponentLogger
}

// NewRunner builds the node graph from settings and opens a chat view on
// the given transport
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Transport == nil {
		return nil, errors.New("no transport")
	}
	if cfg.Settings == nil {
		cfg.Settings = config.Get()
	}

	g, err := buildGraph(cfg.Settings)
	if err != nil {
		return nil, err
	}
	var opts []nodes.Option
	if cfg.Settings.Graph.AutoRegister {
		opts = append(opts, nodes.WithAutoRegister())
	}

	renderOpts := render.Options{Color: cfg.Settings.Render.Color}
	output := NewOutput(cfg.Out, cfg.ErrOut, renderOpts)

	r := &Runner{
		output: output,
		opts:   renderOpts,
		log:    logger.WithComponent("headless"),
	}
	r.view = session.NewChatView(cfg.Transport,
		nodes.NewProjector(g, opts...),
		newStreamObserver(output, cfg.ShowProgress))
	if cfg.Trace != nil {
		r.view.SetTrace(stream.NewWriterHandler(cfg.Trace))
	}
	return r, nil
}

func buildGraph(settings *config.Settings) (*nodes.Graph, error) {
	g, err := nodes.NewGraph()
	if err != nil {
		return nil, err
	}
	for _, n := range settings.Graph.Nodes {
		if err := g.Add(nodes.Node{ID: n.ID, Name: n.Name}); err != nil {
			return nil, fmt.Errorf("invalid graph.nodes: %w", err)
		}
	}
	return g, nil
}

// View returns the chat view the runner drives
func (r *Runner) View() *session.ChatView {
	return r.view
}

// RenderOptions returns the options the runner renders with
func (r *Runner) RenderOptions() render.Options {
	return r.opts
}

// Ask sends one question and reports how the exchange ended
func (r *Runner) Ask(ctx context.Context, question string) (session.Result, error) {
	result, err := r.view.Submit(ctx, question)
	if err != nil {
		return result, err
	}
	r.report(result)
	return result, nil
}

// Regenerate asks again for the answer at index
func (r *Runner) Regenerate(ctx context.Context, index int) (session.Result, error) {
	result, err := r.view.Regenerate(ctx, index)
	if err != nil {
		return result, err
	}
	r.report(result)
	return result, nil
}

func (r *Runner) report(result session.Result) {
	if result.Err != nil {
		r.output.Error(result.Answer.Content)
	}
	r.log.Info("Exchange finished",
		"session", result.Stats.ID,
		"run", result.Stats.RunID,
		"chunks", result.Stats.Chunks,
		"persisted", result.Stats.Persisted,
		"duration", result.Stats.Duration().String())
}

// Close detaches any exchange in flight
func (r *Runner) Close() {
	r.view.Close()
}

const interactiveHelp = `commands:
  /regen N   ask again for answer N and replace it
  /nodes     show node status
  /history   show the transcript
  /help      show this help
  /quit      leave
`

// RunInteractive reads questions and commands from in until EOF or /quit
func (r *Runner) RunInteractive(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	r.output.Print("> ")
	for scanner.Scan() {
		quit, err := r.handleLine(ctx, scanner.Text())
		if err != nil {
			r.output.Error(fmt.Sprintf("error: %v", err))
		}
		if quit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		r.output.Print("> ")
	}
	return scanner.Err()
}

func (r *Runner) handleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		_, err := r.Ask(ctx, line)
		return false, err
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		r.output.Print(interactiveHelp)
	case "/nodes":
		r.output.Print(render.Nodes(r.view.Nodes(), r.opts) + "\n")
	case "/history":
		r.output.Print(render.Transcript(r.view.Transcript(), r.opts))
	case "/regen":
		if len(fields) != 2 {
			return false, errors.New("usage: /regen N")
		}
		index, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("invalid message number %q", fields[1])
		}
		_, err = r.Regenerate(ctx, index)
		return false, err
	default:
		return false, fmt.Errorf("unknown command %s, try /help", fields[0])
	}
	return false, nil
}
