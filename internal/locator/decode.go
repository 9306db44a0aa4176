package locator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxParseDepth bounds the nesting accepted by Decode so a hostile payload
// cannot exhaust the stack.
const MaxParseDepth = 512

var ErrTooDeep = errors.New("locator: json nesting exceeds limit")

func Parse(data []byte) (*Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads exactly one JSON document from r.
func Decode(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("locator: unexpected data after top-level value")
		}
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, depth int) (*Value, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= MaxParseDepth {
			return nil, ErrTooDeep
		}
		switch t {
		case '{':
			return decodeObject(dec, depth)
		case '[':
			return decodeArray(dec, depth)
		}
		return nil, fmt.Errorf("locator: unexpected delimiter %q", t)
	case string:
		return &Value{kind: String, text: t}, nil
	case json.Number:
		return &Value{kind: Number, text: t.String()}, nil
	case bool:
		if t {
			return &Value{kind: Bool, text: "true"}, nil
		}
		return &Value{kind: Bool, text: "false"}, nil
	case nil:
		return &Value{kind: Null}, nil
	}
	return nil, fmt.Errorf("locator: unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder, depth int) (*Value, error) {
	v := &Value{kind: Object}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("locator: object key is %T", keyTok)
		}
		child, err := decodeValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		v.members = append(v.members, Member{Key: key, Value: child})
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeArray(dec *json.Decoder, depth int) (*Value, error) {
	v := &Value{kind: Array}
	for dec.More() {
		child, err := decodeValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		v.items = append(v.items, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}
