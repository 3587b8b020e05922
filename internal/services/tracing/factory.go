package tracing

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/interfaces"
)

// NewRecorder creates the trace recorder for the given configuration.
// Disabled or unconfigured tracing yields a no-op recorder rather than
// an error; the service runs identically without a backend.
func NewRecorder(config *common.LangfuseConfig, logger arbor.ILogger) (interfaces.TraceRecorder, error) {
	if !config.Enabled || config.PublicKey == "" || config.SecretKey == "" {
		logger.Info().Msg("Tracing disabled, using no-op recorder")
		return NewNoopRecorder(), nil
	}

	return NewLangfuseRecorder(config, logger)
}
