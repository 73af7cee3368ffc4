package payload

// Protocol converts between a Payload and the wire representation of one
// message field. The two implementations are mutually exclusive wire formats;
// a deployment picks one at configuration time and producers and consumers
// must agree on it.
//
// isKey tells the protocol whether the field is the message key or value. The
// header variant derives its attribute name from it; the byte-flag variant
// ignores it.
type Protocol interface {
	// Serialize produces the wire bytes for p. It never mutates p.Data; any
	// side effects are confined to attrs. A payload with nil Data serializes
	// to nil without touching attrs.
	Serialize(p Payload, attrs *Attributes, isKey bool) ([]byte, error)

	// Deserialize reconstructs the payload and backed flag from wire bytes
	// and the side channel. Nil data yields a nil-data payload without
	// inspecting attrs.
	Deserialize(data []byte, attrs *Attributes, isKey bool) (Payload, error)
}

// ProtocolFor returns the protocol matching the deployment's wire format:
// the header-attribute variant when useHeaders is true, the byte-flag
// variant otherwise.
func ProtocolFor(useHeaders bool) Protocol {
	if useHeaders {
		return HeaderProtocol{}
	}
	return ByteFlagProtocol{}
}
