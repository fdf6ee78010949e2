// Package metrics records build and serve observations.
//
// Components receive a Recorder and default to NoopRecorder, so metrics
// stay optional: the serve command swaps in a PrometheusRecorder and mounts
// HTTPHandler for scraping.
package metrics

import "time"

// Recorder defines the observability hooks of the pipeline.
type Recorder interface {
	IncPageBuilt()
	IncPageSkipped(kind string)
	ObserveBuildDuration(d time.Duration)
	IncRequest(route string, status int)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) IncPageBuilt()                      {}
func (NoopRecorder) IncPageSkipped(string)              {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncRequest(string, int)             {}
