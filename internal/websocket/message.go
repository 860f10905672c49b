package websocket

import "encoding/json"

const (
	EventRegister  = "register"
	EventOffer     = "offer"
	EventAnswer    = "answer"
	EventCandidate = "candidate"
)

// Envelope is the wire frame for signaling. Inbound frames carry
// Identity (register) or TargetIdentity + Payload (offer/answer/
// candidate); relayed frames carry SenderIdentity + Payload. The
// payload is opaque: the relay never inspects SDP or ICE contents.
type Envelope struct {
	Event          string          `json:"event"`
	Identity       string          `json:"identity,omitempty"`
	TargetIdentity string          `json:"target_identity,omitempty"`
	SenderIdentity string          `json:"sender_identity,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

func isSignalEvent(event string) bool {
	return event == EventOffer || event == EventAnswer || event == EventCandidate
}
