package agent

import (
	"log/slog"

	"github.com/poiesic/energuide/conversation"
	"github.com/poiesic/energuide/intent"
	"github.com/poiesic/energuide/reference"
	"github.com/poiesic/energuide/respond"
	"github.com/poiesic/energuide/tools"
)

// Option configures an Agent.
type Option func(*Agent) error

// WithClassifier replaces the keyword classifier.
func WithClassifier(c intent.Classifier) Option {
	return func(a *Agent) error {
		if c == nil {
			return ErrClassifierRequired
		}
		a.classifier = c
		return nil
	}
}

// WithResolver replaces the follow-up resolver.
func WithResolver(r *reference.Resolver) Option {
	return func(a *Agent) error {
		if r != nil {
			a.resolver = r
		}
		return nil
	}
}

// WithPredictor sets the generation estimator.
// Default is tools.BaselinePredictor.
func WithPredictor(p tools.Predictor) Option {
	return func(a *Agent) error {
		if p != nil {
			a.predictor = p
		}
		return nil
	}
}

// WithWeather sets the weather source.
// Default is tools.StaticWeather.
func WithWeather(w tools.WeatherProvider) Option {
	return func(a *Agent) error {
		if w != nil {
			a.weather = w
		}
		return nil
	}
}

// WithIntegrator sets the reply renderer.
func WithIntegrator(i *respond.Integrator) Option {
	return func(a *Agent) error {
		if i != nil {
			a.integrator = i
		}
		return nil
	}
}

// WithWindow sets how many turns the conversation keeps.
// Default is 10.
func WithWindow(window int) Option {
	return func(a *Agent) error {
		if window < 2 {
			return ErrInvalidWindow
		}
		a.state = conversation.New(window)
		return nil
	}
}

// WithSystemInfo sets what SystemInfo reports about retrieval.
func WithSystemInfo(backendName, embeddingModel string, counter DocumentCounter) Option {
	return func(a *Agent) error {
		if backendName != "" {
			a.backendName = backendName
		}
		a.embeddingModel = embeddingModel
		a.counter = counter
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}
