// Package config holds the typed startup configuration for each binary.
// Values are read once from the environment (optionally seeded from .env
// files) and validated before the process starts serving.
package config

import (
	"fmt"
)

// TracingConfig controls the OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRate  float64
}

// AzureOpenAIConfig identifies the chat completion deployment the gateway
// relays to.
type AzureOpenAIConfig struct {
	ResourceName   string
	APIKey         string
	DeploymentName string
	APIVersion     string
}

// Endpoint returns the chat completions URL for the configured deployment.
func (c AzureOpenAIConfig) Endpoint() string {
	return fmt.Sprintf("https://%s.openai.azure.com/openai/deployments/%s/chat/completions?api-version=%s",
		c.ResourceName, c.DeploymentName, c.APIVersion)
}

// GatewayConfig configures the agenthub gateway binary.
type GatewayConfig struct {
	Host string
	Port int

	AzureOpenAI AzureOpenAIConfig

	// RegistryDriver selects the agent registry store: "memory" or "sqlite".
	RegistryDriver string
	RegistryPath   string

	Tracing TracingConfig
}

// AgentConfig configures an A2A agent service (schedule or notebook).
type AgentConfig struct {
	Name        string
	Description string
	URL         string
	Host        string
	Port        int
	Version     string

	// CalendarBaseURL points at the internal calendar data service.
	CalendarBaseURL string

	// CredentialSource selects where the executor resolves the downstream
	// access token from: "env" or "metadata".
	CredentialSource string
	CredentialEnvVar string

	Tracing TracingConfig
}

// CalendarServiceConfig configures the calendar data service binary.
type CalendarServiceConfig struct {
	Host string
	Port int

	// Source selects the calendar backend: "static" or "graph".
	Source string

	Graph GraphConfig

	Tracing TracingConfig
}

// GraphConfig holds Microsoft Graph passthrough credentials.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BaseURL      string
}

func tracingFromEnv(defaultService string) TracingConfig {
	return TracingConfig{
		Enabled:     GetenvBool("TRACING_ENABLED", false),
		Endpoint:    Getenv("OTLP_ENDPOINT", "localhost:4317"),
		ServiceName: Getenv("SERVICE_NAME", defaultService),
		SampleRate:  1.0,
	}
}

// GatewayFromEnv builds the gateway configuration from the environment.
func GatewayFromEnv() (*GatewayConfig, error) {
	cfg := &GatewayConfig{
		Host: Getenv("HOST", "0.0.0.0"),
		Port: GetenvInt("PORT", 3000),
		AzureOpenAI: AzureOpenAIConfig{
			ResourceName:   Getenv("AZURE_OPENAI_RESOURCE_NAME", ""),
			APIKey:         Getenv("AZURE_OPENAI_API_KEY", ""),
			DeploymentName: Getenv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4o"),
			APIVersion:     Getenv("AZURE_OPENAI_API_VERSION", "2024-10-21"),
		},
		RegistryDriver: Getenv("REGISTRY_DRIVER", "memory"),
		RegistryPath:   Getenv("REGISTRY_PATH", "agenthub.db"),
		Tracing:        tracingFromEnv("agenthub-gateway"),
	}

	if cfg.RegistryDriver != "memory" && cfg.RegistryDriver != "sqlite" {
		return nil, fmt.Errorf("invalid REGISTRY_DRIVER %q: must be memory or sqlite", cfg.RegistryDriver)
	}
	if cfg.RegistryDriver == "sqlite" && cfg.RegistryPath == "" {
		return nil, fmt.Errorf("REGISTRY_PATH is required when REGISTRY_DRIVER=sqlite")
	}

	return cfg, nil
}

// ScheduleAgentFromEnv builds the schedule agent configuration.
func ScheduleAgentFromEnv() (*AgentConfig, error) {
	port := GetenvInt("PORT", 8000)
	cfg := &AgentConfig{
		Name:             Getenv("AGENT_NAME", "Outlook Schedule Agent"),
		Description:      Getenv("AGENT_DESCRIPTION", "An agent that checks Outlook calendar and coordinates availability"),
		URL:              Getenv("AGENT_URL", fmt.Sprintf("http://localhost:%d/", port)),
		Host:             Getenv("HOST", "0.0.0.0"),
		Port:             port,
		Version:          "1.0.0",
		CalendarBaseURL:  Getenv("OUTLOOK_MCP_URL", "http://outlook-mcp:8000"),
		CredentialSource: Getenv("CREDENTIAL_SOURCE", "env"),
		CredentialEnvVar: Getenv("CREDENTIAL_ENV_VAR", "OUTLOOK_ACCESS_TOKEN"),
		Tracing:          tracingFromEnv("outlook-schedule-agent"),
	}

	if cfg.CredentialSource != "env" && cfg.CredentialSource != "metadata" {
		return nil, fmt.Errorf("invalid CREDENTIAL_SOURCE %q: must be env or metadata", cfg.CredentialSource)
	}

	return cfg, nil
}

// NotebookAgentFromEnv builds the notebook agent configuration.
func NotebookAgentFromEnv() (*AgentConfig, error) {
	port := GetenvInt("PORT", 8001)
	return &AgentConfig{
		Name:        Getenv("AGENT_NAME", "OneNote Search Agent"),
		Description: Getenv("AGENT_DESCRIPTION", "An agent that searches OneNote notebooks and answers questions about their content"),
		URL:         Getenv("AGENT_URL", fmt.Sprintf("http://localhost:%d/", port)),
		Host:        Getenv("HOST", "0.0.0.0"),
		Port:        port,
		Version:     "1.0.0",
		Tracing:     tracingFromEnv("onenote-search-agent"),
	}, nil
}

// CalendarServiceFromEnv builds the calendar data service configuration.
func CalendarServiceFromEnv() (*CalendarServiceConfig, error) {
	cfg := &CalendarServiceConfig{
		Host:   Getenv("HOST", "0.0.0.0"),
		Port:   GetenvInt("PORT", 8000),
		Source: Getenv("CALENDAR_SOURCE", "static"),
		Graph: GraphConfig{
			TenantID:     Getenv("TENANT_ID", ""),
			ClientID:     Getenv("CLIENT_ID", ""),
			ClientSecret: Getenv("CLIENT_SECRET", ""),
			BaseURL:      Getenv("GRAPH_API_BASE_URL", "https://graph.microsoft.com/v1.0"),
		},
		Tracing: tracingFromEnv("outlook-mcp"),
	}

	switch cfg.Source {
	case "static":
	case "graph":
		if cfg.Graph.TenantID == "" || cfg.Graph.ClientID == "" || cfg.Graph.ClientSecret == "" {
			return nil, fmt.Errorf("CALENDAR_SOURCE=graph requires TENANT_ID, CLIENT_ID and CLIENT_SECRET")
		}
	default:
		return nil, fmt.Errorf("invalid CALENDAR_SOURCE %q: must be static or graph", cfg.Source)
	}

	return cfg, nil
}
