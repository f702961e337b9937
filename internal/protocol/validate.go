package protocol

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	//go:embed schemas/input.schema.json
	inputSchemaJSON string
	//go:embed schemas/state.schema.json
	stateSchemaJSON string

	inputSchema = jsonschema.MustCompileString("input.schema.json", inputSchemaJSON)
	stateSchema = jsonschema.MustCompileString("state.schema.json", stateSchemaJSON)
)

// DecodeInput validates raw client JSON against the INPUT schema and decodes it.
func DecodeInput(b []byte) (InputMsg, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return InputMsg{}, fmt.Errorf("decode input: %w", err)
	}
	if err := inputSchema.Validate(v); err != nil {
		return InputMsg{}, fmt.Errorf("input schema: %w", err)
	}
	var m InputMsg
	if err := json.Unmarshal(b, &m); err != nil {
		return InputMsg{}, fmt.Errorf("decode input: %w", err)
	}
	return m, nil
}

// ValidateState checks an outgoing STATE message. Used by tests and debug builds of clients.
func ValidateState(msg StateMsg) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return stateSchema.Validate(v)
}
