package metrics

// Metrics is implemented by Recorder; components take the interface so tests
// can run without touching the default Prometheus registry.
type Metrics interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordProviderRequest(provider string)
	RecordProviderError(provider string)
	RecordLatency(op string, seconds float64)
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordCacheHit(string)         {}
func (Noop) RecordCacheMiss(string)        {}
func (Noop) RecordProviderRequest(string)  {}
func (Noop) RecordProviderError(string)    {}
func (Noop) RecordLatency(string, float64) {}

var _ Metrics = (*Recorder)(nil)
var _ Metrics = Noop{}
