// Package calc is the calculation boundary: typed request envelopes in,
// typed result envelopes out. Every calculation kind the service offers is
// dispatched here, whether it arrived over HTTP, a websocket, or the queue.
package calc

import (
	"encoding/json"
	"errors"
)

// Kind identifies a calculation type on the wire.
type Kind string

const (
	KindCatenary            Kind = "catenary"
	KindLoadDistribution    Kind = "loadDistribution"
	KindBeamDeflection      Kind = "beamDeflection"
	KindTrussRecommendation Kind = "trussRecommendation"
	KindCoverageGrid        Kind = "coverageGrid"
	KindAcousticRay         Kind = "acousticRay"
	KindReflections         Kind = "reflections"
	KindReverbTime          Kind = "reverbTime"
)

// Kinds lists every dispatchable calculation kind.
var Kinds = []Kind{
	KindCatenary,
	KindLoadDistribution,
	KindBeamDeflection,
	KindTrussRecommendation,
	KindCoverageGrid,
	KindAcousticRay,
	KindReflections,
	KindReverbTime,
}

// Valid reports whether k is a known calculation kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Sentinel kinds for envelope errors.
var (
	ErrUnknownKind = errors.New("unknown calculation kind")
	ErrBadPayload  = errors.New("malformed calculation payload")
)

// Request is one calculation order. Payload shape depends on Type.
type Request struct {
	ID      string          `json:"id,omitempty"`
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Response pairs a request id with either a result or an error, never both.
// Errors cross this boundary as strings so they survive any transport.
type Response struct {
	ID     string `json:"id"`
	Type   Kind   `json:"type"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Failed reports whether the response carries an error.
func (r Response) Failed() bool {
	return r.Error != ""
}
