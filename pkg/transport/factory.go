package transport

import (
	"fmt"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/config"
)

// FromConfig builds the transport named by stream.transport. scenarioPath
// is only read by the replay transport.
func FromConfig(settings *config.Settings, scenarioPath string) (Transport, error) {
	switch settings.Stream.Transport {
	case config.TransportHTTP, "":
		return NewHTTPTransport(settings.Stream.Endpoint,
			WithTimeout(settings.Stream.Timeout),
			WithReadBuffer(settings.Stream.ReadBuffer))

	case config.TransportOllama:
		return NewOllamaTransport(settings.Ollama.URL, settings.Ollama.DefaultModel, settings.Ollama.NodeName)

	case config.TransportReplay:
		if scenarioPath == "" {
			return nil, fmt.Errorf("the %s transport needs a scenario file", config.TransportReplay)
		}
		scenario, err := LoadScenario(scenarioPath)
		if err != nil {
			return nil, err
		}
		return NewReplayTransport(scenario), nil

	default:
		return nil, fmt.Errorf("unknown transport %q", settings.Stream.Transport)
	}
}
