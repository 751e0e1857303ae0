package classifier

// GeminiOption applies a configuration option to the Gemini classifier.
type GeminiOption func(*Gemini)

// WithGeminiMetricsEnabled toggles classifier metric recording.
func WithGeminiMetricsEnabled(enabled bool) GeminiOption {
	return func(g *Gemini) {
		g.metricsEnabled = enabled
	}
}
