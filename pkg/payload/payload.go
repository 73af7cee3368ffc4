// Package payload implements the wire protocol that marks message payloads
// as blob-backed or inline.
//
// A payload that exceeds the deployment's size threshold is stored out of
// band and replaced on the wire by the UTF-8 text of its blob URI; smaller
// payloads travel inline. Either way the wire representation carries a
// one-byte marker so consumers know which case they are looking at. Two
// mutually exclusive encodings of that marker exist: ByteFlagProtocol embeds
// it in the wire bytes themselves, HeaderProtocol moves it to a side-channel
// attribute. The two are not wire compatible.
package payload

import (
	"errors"
	"fmt"

	"github.com/gezibash/arc-offload/pkg/bloburi"
)

var (
	// ErrInvalidFlag indicates a backed marker byte outside the two defined
	// states, meaning wire corruption.
	ErrInvalidFlag = errors.New("invalid backed flag")

	// ErrMissingAttribute indicates the header variant found no marker
	// attribute, meaning wire corruption or a producer/consumer protocol
	// variant mismatch.
	ErrMissingAttribute = errors.New("missing backed marker attribute")
)

// Marker byte values carried on the wire.
const (
	flagNonBacked byte = 0
	flagBacked    byte = 1
)

// Payload pairs the raw bytes of one message field with whether those bytes
// are the text of a blob URI (backed) or the field data itself (non-backed).
// Values are constructed once per field per direction and never mutated.
type Payload struct {
	Backed bool
	Data   []byte
}

// OfBytes wraps inline field data.
func OfBytes(data []byte) Payload {
	return Payload{Data: data}
}

// OfURI wraps the address of an offloaded field.
func OfURI(u bloburi.URI) Payload {
	return Payload{Backed: true, Data: []byte(u.String())}
}

func asFlag(backed bool) byte {
	if backed {
		return flagBacked
	}
	return flagNonBacked
}

func backedFromFlag(flag byte) (bool, error) {
	switch flag {
	case flagNonBacked:
		return false, nil
	case flagBacked:
		return true, nil
	default:
		return false, fmt.Errorf("%w: 0x%02x", ErrInvalidFlag, flag)
	}
}
