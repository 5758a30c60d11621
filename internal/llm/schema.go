package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is the JSON schema a response must match. Providers pass
// Definition to their structured output mode; Check validates the result.
// A Schema is compiled on first use and must not be copied after that.
type Schema struct {
	// Name is a kebab-case identifier, e.g. "question-batch".
	Name        string
	Description string
	Definition  map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Check reports whether raw is JSON matching the schema.
func (s *Schema) Check(raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	s.once.Do(s.compile)
	if s.err != nil {
		return fmt.Errorf("schema %q: %w", s.Name, s.err)
	}
	return s.compiled.Validate(doc)
}

func (s *Schema) compile() {
	// Round-trip the definition so the compiler sees plain JSON values.
	b, err := json.Marshal(s.Definition)
	if err != nil {
		s.err = err
		return
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		s.err = err
		return
	}
	url := "mem://" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		s.err = err
		return
	}
	s.compiled, s.err = c.Compile(url)
}
