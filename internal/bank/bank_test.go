package bank

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examly/internal/assessment"
)

func TestLoad_Valid(t *testing.T) {
	b, err := Load(filepath.Join("testdata", "valid.json"))
	require.NoError(t, err)

	assert.Equal(t, "math", b.Subject.ID)
	require.Len(t, b.Questions, 2)
	assert.Equal(t, "algebra", b.Questions[0].TopicID)
	assert.Equal(t, "b", b.Questions[0].Answer)

	pub := b.Questions[0].Public(b.Subject.Name)
	assert.Equal(t, "Mathematics", pub.SubjectName)
	assert.Len(t, pub.Options, 2)
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := map[string]string{
		"not json":          `{`,
		"missing subject":   `{"questions": []}`,
		"unknown field":     `{"subject": {"id": "m", "name": "M"}, "questions": [], "extra": 1}`,
		"one option":        `{"subject": {"id": "m", "name": "M"}, "questions": [{"id": "q", "text": "t", "options": [{"id": "a", "text": "A"}], "answer": "a"}]}`,
		"empty question id": `{"subject": {"id": "m", "name": "M"}, "questions": [{"id": "", "text": "t", "options": [{"id": "a", "text": "A"}, {"id": "b", "text": "B"}], "answer": "a"}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.True(t, errors.Is(err, ErrInvalidBank), "err = %v", err)
		})
	}
}

func TestCheck(t *testing.T) {
	b := &Bank{
		Subject: assessment.Subject{ID: "m", Name: "M"},
		Topics:  []assessment.Topic{{ID: "t1", Name: "T"}, {ID: "t1", Name: "T again"}},
		Questions: []Question{
			{ID: "q1", Text: "x", Options: []assessment.Option{{ID: "a"}, {ID: "b"}}, Answer: "c"},
			{ID: "q1", Text: "y", TopicID: "t9", Options: []assessment.Option{{ID: "a"}, {ID: "a"}}, Answer: "a"},
		},
	}
	problems := Check(b)
	joined := strings.Join(problems, "\n")

	assert.Len(t, problems, 5)
	assert.Contains(t, joined, `topic "t1": duplicate id`)
	assert.Contains(t, joined, `question "q1": answer "c" is not an option`)
	assert.Contains(t, joined, `question "q1": duplicate id`)
	assert.Contains(t, joined, `unknown topic "t9"`)
	assert.Contains(t, joined, `duplicate option "a"`)
}

func TestWriteAndLoadDir(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"phys", "chem"} {
		b := &Bank{
			Subject: assessment.Subject{ID: id, Name: strings.ToUpper(id)},
			Questions: []Question{{
				ID: id + "-1", Text: "?", Answer: "a",
				Options: []assessment.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
			}},
		}
		require.NoError(t, Write(filepath.Join(dir, id+".json"), b))
	}
	// Non-bank files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("#"), 0o644))

	banks, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.Equal(t, "chem", banks[0].Subject.ID)
	assert.Equal(t, "phys", banks[1].Subject.ID)
}

func TestLoadDir_DuplicateSubject(t *testing.T) {
	dir := t.TempDir()
	b := &Bank{
		Subject: assessment.Subject{ID: "m", Name: "M"},
		Questions: []Question{{ID: "q", Text: "?", Answer: "a",
			Options: []assessment.Option{{ID: "a"}, {ID: "b"}}}},
	}
	require.NoError(t, Write(filepath.Join(dir, "a.json"), b))
	require.NoError(t, Write(filepath.Join(dir, "b.json"), b))

	_, err := LoadDir(dir)
	assert.ErrorIs(t, err, ErrInvalidBank)
}

func TestWrite_RejectsInvalid(t *testing.T) {
	b := &Bank{
		Subject:   assessment.Subject{ID: "m", Name: "M"},
		Questions: []Question{{ID: "q", Answer: "z", Options: []assessment.Option{{ID: "a"}}}},
	}
	err := Write(filepath.Join(t.TempDir(), "m.json"), b)
	assert.ErrorIs(t, err, ErrInvalidBank)
}

func TestBundledBanksAreValid(t *testing.T) {
	banks, err := LoadDir(filepath.Join("..", "..", "banks"))
	require.NoError(t, err)
	assert.NotEmpty(t, banks)
}
