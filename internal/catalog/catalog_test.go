package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/ledger"
)

func q(id, subject string, opts ...string) assessment.Question {
	options := make([]assessment.Option, len(opts))
	for i, o := range opts {
		options[i] = assessment.Option{ID: o, Text: "option " + o}
	}
	return assessment.Question{ID: id, Text: "question " + id, SubjectName: subject, Options: options}
}

func TestNew_GroupsInFirstAppearanceOrder(t *testing.T) {
	c, warnings := New([]assessment.Question{
		q("q1", "Physics", "a", "b"),
		q("q2", "Math", "a", "b"),
		q("q3", "Physics", "a", "b"),
		q("q4", "Math", "a", "b"),
	})
	require.Empty(t, warnings)
	require.Equal(t, 4, c.Len())

	groups := c.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Physics", groups[0].Subject)
	assert.Equal(t, []int{0, 2}, groups[0].Indices)
	assert.Equal(t, "Math", groups[1].Subject)
	assert.Equal(t, []int{1, 3}, groups[1].Indices)

	assert.Equal(t, 0, c.GroupOf(2))
	assert.Equal(t, 1, c.GroupOf(3))
	assert.Equal(t, -1, c.GroupOf(9))
}

func TestNew_Normalizes(t *testing.T) {
	in := []assessment.Question{
		{ID: "q1", SubjectName: "  ", Options: nil},
		{ID: "", SubjectName: "Math"},
		{ID: "q2", SubjectName: "Math", Options: []assessment.Option{{ID: ""}, {ID: "a", Text: "A"}}},
		{ID: "q1", SubjectName: "Math", Text: "duplicate"},
	}

	c, warnings := New(in)
	assert.Len(t, warnings, 4)
	require.Equal(t, 2, c.Len())

	first, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, DefaultSubject, first.SubjectName)
	assert.Equal(t, "", first.Text)
	assert.NotNil(t, first.Options)
	assert.Empty(t, first.Options)

	second, _ := c.At(1)
	assert.Equal(t, []assessment.Option{{ID: "a", Text: "A"}}, second.Options)

	// The input slice is left alone.
	assert.Len(t, in[2].Options, 2)
}

func TestEmptyCatalog(t *testing.T) {
	c, warnings := New(nil)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Groups())
	assert.Empty(t, c.Progress(ledger.New(nil)))
	assert.Empty(t, c.Submission(ledger.New(nil)))

	_, ok := c.At(0)
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	c, _ := New([]assessment.Question{q("q1", "Math", "a", "b"), q("q2", "Math", "c")})

	i, ok := c.Index("q2")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	assert.True(t, c.Has("q1"))
	assert.False(t, c.Has("q9"))
	assert.True(t, c.HasOption("q1", "b"))
	assert.False(t, c.HasOption("q1", "c"))
	assert.False(t, c.HasOption("q9", "a"))
	assert.Equal(t, []string{"q1", "q2"}, c.IDs())
}

func TestProgress_TracksLedger(t *testing.T) {
	c, _ := New([]assessment.Question{
		q("m1", "Math", "a"), q("m2", "Math", "a"), q("p1", "Physics", "a"),
	})
	l := ledger.New(c.IDs())

	assert.Equal(t, []GroupProgress{
		{Subject: "Math", Answered: 0, Total: 2},
		{Subject: "Physics", Answered: 0, Total: 1},
	}, c.Progress(l))

	require.NoError(t, l.Set("m2", "a"))
	require.NoError(t, l.Set("p1", "a"))
	require.NoError(t, l.Set("p1", "a"))

	assert.Equal(t, []GroupProgress{
		{Subject: "Math", Answered: 1, Total: 2},
		{Subject: "Physics", Answered: 1, Total: 1},
	}, c.Progress(l))
}

func TestSubmission_OneEntryPerQuestion(t *testing.T) {
	c, _ := New([]assessment.Question{q("q1", "Math", "a", "b"), q("q2", "Math", "a"), q("q3", "Math", "a")})
	l := ledger.New(c.IDs())
	require.NoError(t, l.Set("q3", "a"))
	require.NoError(t, l.Set("q1", "a"))
	require.NoError(t, l.Set("q1", "b"))

	sub := c.Submission(l)
	require.Len(t, sub, 3)
	assert.Equal(t, "q1", sub[0].QuestionID)
	require.NotNil(t, sub[0].SelectedOptionID)
	assert.Equal(t, "b", *sub[0].SelectedOptionID)
	assert.Equal(t, "q2", sub[1].QuestionID)
	assert.Nil(t, sub[1].SelectedOptionID)
	assert.Equal(t, "a", *sub[2].SelectedOptionID)
}
