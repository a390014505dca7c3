package adapter

import (
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// JSON defines an interface for JSON operations to enable mocking
//
//go:generate mockgen -source=json.go -destination=../mocks/json.go -package=mocks -mock_names=JSON=MockJSON
type JSON interface {
	Marshal(v interface{}) ([]byte, error)
	MarshalIndent(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error

	// Canonicalize returns the RFC 8785 canonical form of a JSON document
	Canonicalize(data []byte) ([]byte, error)
}

// RealJSON implements JSON using encoding/json and jcs
type RealJSON struct{}

// NewJSON creates a new real JSON implementation
func NewJSON() JSON {
	return &RealJSON{}
}

func (j *RealJSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (j *RealJSON) MarshalIndent(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (j *RealJSON) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (j *RealJSON) Canonicalize(data []byte) ([]byte, error) {
	return jcs.Transform(data)
}
