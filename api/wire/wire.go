// Package wire carries Go values over gRPC as google.protobuf.Struct.
// Values are encoded through their JSON form, so json tags define the
// field names on the wire.
package wire

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct encodes v, which must marshal to a JSON object
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %T: %w", v, err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("wire: encode %T: %w", v, err)
	}
	return s, nil
}

// FromStruct decodes s into v
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("wire: decode %T: empty message", v)
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("wire: decode %T: %w", v, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("wire: decode %T: %w", v, err)
	}
	return nil
}
