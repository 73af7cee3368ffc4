package payload

import "fmt"

// ByteFlagProtocol carries the backed marker as the first wire byte:
// [flag][payload...]. It needs no side channel, but the wire bytes are one
// byte longer than the payload, so it cannot be used where another system
// validates the raw bytes independently.
type ByteFlagProtocol struct{}

// Serialize prepends the flag byte, allocating a fresh buffer.
func (ByteFlagProtocol) Serialize(p Payload, _ *Attributes, _ bool) ([]byte, error) {
	if p.Data == nil {
		return nil, nil
	}
	out := make([]byte, len(p.Data)+1)
	out[0] = asFlag(p.Backed)
	copy(out[1:], p.Data)
	return out, nil
}

// Deserialize validates and consumes the leading flag byte.
func (ByteFlagProtocol) Deserialize(data []byte, _ *Attributes, _ bool) (Payload, error) {
	if data == nil {
		return Payload{}, nil
	}
	if len(data) == 0 {
		return Payload{}, fmt.Errorf("%w: empty wire bytes", ErrInvalidFlag)
	}
	backed, err := backedFromFlag(data[0])
	if err != nil {
		return Payload{}, err
	}
	return Payload{Backed: backed, Data: data[1:]}, nil
}

// StripFlag removes the leading flag byte from byte-flag wire bytes,
// returning the payload bytes that follow it. The flag must be one of the
// two defined values.
func StripFlag(data []byte) ([]byte, error) {
	p, err := ByteFlagProtocol{}.Deserialize(data, nil, false)
	if err != nil {
		return nil, err
	}
	return p.Data, nil
}
