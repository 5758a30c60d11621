// Package bank reads and writes question bank files: one JSON document per
// subject holding its topics and multiple-choice questions with their
// answers. Banks back the offline assessment service and the local server.
package bank

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/examly/internal/assessment"
)

//go:embed bank.schema.json
var schemaJSON []byte

const schemaURL = "schema://examly/bank.json"

// ErrInvalidBank is returned for bank documents that fail validation.
var ErrInvalidBank = errors.New("invalid question bank")

// Bank is the question bank of one subject.
type Bank struct {
	Subject   assessment.Subject `json:"subject"`
	Topics    []assessment.Topic `json:"topics,omitempty"`
	Questions []Question         `json:"questions"`
}

// Question is a bank question. Answer is the id of the correct option.
type Question struct {
	ID          string              `json:"id"`
	Text        string              `json:"text"`
	ImageURL    string              `json:"image_url,omitempty"`
	TopicID     string              `json:"topic_id,omitempty"`
	Options     []assessment.Option `json:"options"`
	Answer      string              `json:"answer"`
	Explanation string              `json:"explanation,omitempty"`
}

// Public strips the answer, giving the question as a session delivers it.
func (q Question) Public(subjectName string) assessment.Question {
	return assessment.Question{
		ID:          q.ID,
		Text:        q.Text,
		ImageURL:    q.ImageURL,
		SubjectName: subjectName,
		Options:     append([]assessment.Option(nil), q.Options...),
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func bankSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add bank schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Parse validates data against the bank schema and the semantic rules of
// Check, then decodes it.
func Parse(data []byte) (*Bank, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}
	sch, err := bankSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}

	var b Bank
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}
	if problems := Check(&b); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBank, strings.Join(problems, "; "))
	}
	return &b, nil
}

// Check reports the semantic problems of b: duplicate ids, answers that
// name no option, and unknown topics.
func Check(b *Bank) []string {
	var problems []string

	topics := make(map[string]bool, len(b.Topics))
	for _, t := range b.Topics {
		if topics[t.ID] {
			problems = append(problems, fmt.Sprintf("topic %q: duplicate id", t.ID))
		}
		topics[t.ID] = true
	}

	seen := make(map[string]bool, len(b.Questions))
	for _, q := range b.Questions {
		if seen[q.ID] {
			problems = append(problems, fmt.Sprintf("question %q: duplicate id", q.ID))
		}
		seen[q.ID] = true

		if q.TopicID != "" && !topics[q.TopicID] {
			problems = append(problems, fmt.Sprintf("question %q: unknown topic %q", q.ID, q.TopicID))
		}

		options := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if options[o.ID] {
				problems = append(problems, fmt.Sprintf("question %q: duplicate option %q", q.ID, o.ID))
			}
			options[o.ID] = true
		}
		if !options[q.Answer] {
			problems = append(problems, fmt.Sprintf("question %q: answer %q is not an option", q.ID, q.Answer))
		}
	}
	return problems
}

// Load reads and validates one bank file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// LoadDir loads every *.json file in dir, ordered by file name. Two banks
// for the same subject are an error.
func LoadDir(dir string) ([]*Bank, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	sort.Strings(paths)

	var banks []*Bank
	bySubject := make(map[string]string)
	for _, p := range paths {
		b, err := Load(p)
		if err != nil {
			return nil, err
		}
		if other, dup := bySubject[b.Subject.ID]; dup {
			return nil, fmt.Errorf("%w: subject %q defined in %s and %s", ErrInvalidBank, b.Subject.ID, other, p)
		}
		bySubject[b.Subject.ID] = p
		banks = append(banks, b)
	}
	return banks, nil
}

// Write stores b at path as indented JSON after checking it.
func Write(path string, b *Bank) error {
	if problems := Check(b); len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidBank, strings.Join(problems, "; "))
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bank: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create bank dir: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
