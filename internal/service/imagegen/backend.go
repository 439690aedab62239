package imagegen

import (
	"fmt"

	"github.com/ChaseRain/coverstudio/internal/infra/httpclient"
	"github.com/ChaseRain/coverstudio/internal/infra/logger"
)

const (
	BackendSDK  = "sdk"
	BackendREST = "rest"
)

// NewBackend selects the Generator implementation named by backend.
func NewBackend(backend, baseURL string, apiKey KeySource, client *httpclient.Client, log *logger.Logger) (Generator, error) {
	switch backend {
	case BackendSDK, "":
		return NewSDK(apiKey, log), nil
	case BackendREST:
		return New(baseURL, apiKey, client, log), nil
	default:
		return nil, fmt.Errorf("unknown image generation backend %q", backend)
	}
}
