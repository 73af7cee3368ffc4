package payload

import "encoding/json"

// Attribute is one side-channel entry associated with a message, modeled on
// broker record headers: keys may repeat, order is preserved.
type Attribute struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// Attributes is the mutable side channel the header protocol writes its
// backed marker into. The zero value is an empty set ready for use.
//
// Attributes is not safe for concurrent mutation; each message carries its
// own set.
type Attributes struct {
	list []Attribute
}

// Add appends an attribute, keeping any existing entries with the same key.
func (a *Attributes) Add(key string, value []byte) {
	a.list = append(a.list, Attribute{Key: key, Value: value})
}

// Remove deletes every attribute with the given key.
func (a *Attributes) Remove(key string) {
	kept := a.list[:0]
	for _, attr := range a.list {
		if attr.Key != key {
			kept = append(kept, attr)
		}
	}
	a.list = kept
}

// Last returns the value of the most recently added attribute with the given
// key, or false if no such attribute exists.
func (a *Attributes) Last(key string) ([]byte, bool) {
	for i := len(a.list) - 1; i >= 0; i-- {
		if a.list[i].Key == key {
			return a.list[i].Value, true
		}
	}
	return nil, false
}

// Len returns the number of attributes in the set.
func (a *Attributes) Len() int {
	return len(a.list)
}

// All returns the attributes in insertion order. The returned slice is shared
// with the set; callers must not modify it.
func (a *Attributes) All() []Attribute {
	return a.list
}

// MarshalJSON encodes the attribute list, values base64-encoded.
func (a Attributes) MarshalJSON() ([]byte, error) {
	if a.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.list)
}

// UnmarshalJSON decodes an attribute list produced by MarshalJSON.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &a.list)
}
