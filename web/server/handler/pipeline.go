package handler

import (
	"log/slog"

	"go.hackfix.me/vestibule/web/server/types"
)

// Pipeline defines the processing stages for HTTP requests and responses.
// It provides a fluent interface for configuring authentication and processors.
type Pipeline struct {
	auth               Authenticator
	serializer         Serializer
	errorLevel         types.ErrorLevel
	requestProcessors  []RequestProcessor
	responseProcessors []ResponseProcessor
	logger             *slog.Logger
}

// NewPipeline creates a new pipeline that serializes JSON and hides the
// details of server errors.
func NewPipeline() *Pipeline {
	return &Pipeline{
		serializer: JSON(),
		errorLevel: types.ErrorLevelMinimal,
		logger:     slog.Default(),
	}
}

// Auth sets the authenticator for this pipeline.
func (p *Pipeline) Auth(auth Authenticator) *Pipeline {
	p.auth = auth
	return p
}

// Serializer sets the request and response serializer. A nil serializer
// disables serialization.
func (p *Pipeline) Serializer(s Serializer) *Pipeline {
	p.serializer = s
	return p
}

// ErrorLevel sets how much error detail is exposed in responses.
func (p *Pipeline) ErrorLevel(lvl types.ErrorLevel) *Pipeline {
	p.errorLevel = lvl
	return p
}

// Logger sets the logger for failures that can't be reported to the client.
func (p *Pipeline) Logger(logger *slog.Logger) *Pipeline {
	p.logger = logger
	return p
}

// ProcessRequest adds one or more request processors to the pipeline.
func (p *Pipeline) ProcessRequest(processor ...RequestProcessor) *Pipeline {
	p.requestProcessors = append(p.requestProcessors, processor...)
	return p
}

// ProcessResponse adds one or more response processors to the pipeline.
func (p *Pipeline) ProcessResponse(processor ...ResponseProcessor) *Pipeline {
	p.responseProcessors = append(p.responseProcessors, processor...)
	return p
}
