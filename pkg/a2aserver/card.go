package a2aserver

import (
	"github.com/a2aproject/a2a-go/a2a"

	"github.com/ayutaki/agenthub/pkg/config"
)

// protocolVersion is the A2A protocol revision the agents speak.
const protocolVersion = "0.3.0"

// BuildCard assembles the public agent card served at the well-known path.
func BuildCard(cfg *config.AgentConfig, skills []a2a.AgentSkill) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:               cfg.Name,
		Description:        cfg.Description,
		URL:                cfg.URL,
		Version:            cfg.Version,
		ProtocolVersion:    protocolVersion,
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/plain"},
		Capabilities: a2a.AgentCapabilities{
			Streaming: true,
		},
		Skills: skills,
	}
}

// InfoDocument is the self-description served at /info for the status
// dashboard prober.
type InfoDocument struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Version      string   `json:"version"`
	Type         string   `json:"type"`
	Capabilities []string `json:"capabilities"`
}

// buildInfo derives the probe document from the card: one capability per
// skill id.
func buildInfo(card *a2a.AgentCard, agentType string) InfoDocument {
	capabilities := make([]string, 0, len(card.Skills))
	for _, skill := range card.Skills {
		capabilities = append(capabilities, skill.ID)
	}
	return InfoDocument{
		Name:         card.Name,
		Description:  card.Description,
		Version:      card.Version,
		Type:         agentType,
		Capabilities: capabilities,
	}
}
