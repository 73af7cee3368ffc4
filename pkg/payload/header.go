package payload

import (
	"errors"
	"fmt"
)

const (
	headerPrefix      = "__offload.backed."
	keyHeaderSuffix   = "key"
	valueHeaderSuffix = "value"
)

// HeaderName returns the side-channel attribute name carrying the backed
// marker for the given field role.
func HeaderName(isKey bool) string {
	if isKey {
		return headerPrefix + keyHeaderSuffix
	}
	return headerPrefix + valueHeaderSuffix
}

// HeaderProtocol carries the backed marker in a side-channel attribute,
// leaving the wire bytes byte-identical to the payload data. Key and value
// fields use distinct attribute names so one message can carry both markers.
type HeaderProtocol struct{}

// Serialize replaces any existing marker attribute with exactly one holding
// the flag, and returns the payload data unchanged. Serializing the same
// message again leaves a single marker, not two.
func (HeaderProtocol) Serialize(p Payload, attrs *Attributes, isKey bool) ([]byte, error) {
	if p.Data == nil {
		return nil, nil
	}
	if attrs == nil {
		return nil, errors.New("header protocol: attribute set required")
	}
	name := HeaderName(isKey)
	attrs.Remove(name)
	attrs.Add(name, []byte{asFlag(p.Backed)})
	return p.Data, nil
}

// Deserialize reads the backed flag from the last matching marker attribute.
// A missing marker is fatal: the producer either used the byte-flag wire
// format or the attributes were stripped in transit.
func (HeaderProtocol) Deserialize(data []byte, attrs *Attributes, isKey bool) (Payload, error) {
	if data == nil {
		return Payload{}, nil
	}
	name := HeaderName(isKey)
	if attrs == nil {
		return Payload{}, fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}
	value, ok := attrs.Last(name)
	if !ok {
		return Payload{}, fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}
	if len(value) == 0 {
		return Payload{}, fmt.Errorf("%w: empty %s attribute", ErrInvalidFlag, name)
	}
	backed, err := backedFromFlag(value[0])
	if err != nil {
		return Payload{}, err
	}
	return Payload{Backed: backed, Data: data}, nil
}
