package scanner

import (
	"bytes"
)

// Outcome is the classification of one harvested probe.
type Outcome int

const (
	OutcomeMatch Outcome = iota
	OutcomeNoSignature
	OutcomeBadStatus
	OutcomeTimeout
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatch:
		return "match"
	case OutcomeNoSignature:
		return "no-signature"
	case OutcomeBadStatus:
		return "bad-status"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeTransportError:
		return "transport-error"
	default:
		return "unknown"
	}
}

// Signature identifies the probed service from a probe response.
type Signature struct {
	Service string // Display name, e.g. "Ollama"
	Path    string // Relative path that is probed
	Marker  []byte // Substring expected in a 200 body
}

// NewSignature builds a Signature for service probing path and expecting marker.
func NewSignature(service, path, marker string) Signature {
	return Signature{Service: service, Path: path, Marker: []byte(marker)}
}

// Classify maps a raw probe outcome to an Outcome. Only a transport-clean 200
// whose body contains the marker is a match.
func (s Signature) Classify(resp Response) Outcome {
	switch {
	case resp.TimedOut():
		return OutcomeTimeout
	case resp.Err != nil:
		return OutcomeTransportError
	case resp.StatusCode != 200:
		return OutcomeBadStatus
	case !bytes.Contains(resp.Body, s.Marker):
		return OutcomeNoSignature
	default:
		return OutcomeMatch
	}
}
