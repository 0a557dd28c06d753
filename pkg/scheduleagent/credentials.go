package scheduleagent

import (
	"fmt"
	"os"

	"github.com/a2aproject/a2a-go/a2asrv"

	"github.com/ayutaki/agenthub/pkg/config"
)

// MetadataTokenKey is the message metadata key the metadata strategy reads.
const MetadataTokenKey = "accessToken"

// CredentialSource resolves the downstream access token for one request.
// The strategy is fixed at startup; strategies are never silently merged.
type CredentialSource interface {
	Resolve(reqCtx *a2asrv.RequestContext) (string, bool)
}

// EnvSource reads the token from a process environment variable. This is
// the deployment mode where the agent runs with a service credential.
type EnvSource struct {
	Var string
}

func (s EnvSource) Resolve(*a2asrv.RequestContext) (string, bool) {
	token := os.Getenv(s.Var)
	return token, token != ""
}

// MetadataSource reads the token from the incoming message metadata, for
// on-behalf-of flows where the caller forwards the user's token.
type MetadataSource struct {
	Key string
}

func (s MetadataSource) Resolve(reqCtx *a2asrv.RequestContext) (string, bool) {
	if reqCtx == nil || reqCtx.Message == nil || reqCtx.Message.Metadata == nil {
		return "", false
	}

	token, ok := reqCtx.Message.Metadata[s.Key].(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// NewCredentialSource builds the source selected by config.
func NewCredentialSource(cfg *config.AgentConfig) (CredentialSource, error) {
	switch cfg.CredentialSource {
	case "env":
		return EnvSource{Var: cfg.CredentialEnvVar}, nil
	case "metadata":
		return MetadataSource{Key: MetadataTokenKey}, nil
	default:
		return nil, fmt.Errorf("unknown credential source: %s", cfg.CredentialSource)
	}
}
