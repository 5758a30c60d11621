// Package catalog holds the immutable question list of a session and groups
// it by subject for the sidebar.
package catalog

import (
	"fmt"
	"strings"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/ledger"
)

// DefaultSubject names the group of questions that arrive without a subject.
const DefaultSubject = "General"

// Group is a run of questions sharing a subject name. Indices point into the
// catalog's flat sequence.
type Group struct {
	Subject string
	Indices []int
}

// GroupProgress is the answered/total count of one group.
type GroupProgress struct {
	Subject  string
	Answered int
	Total    int
}

// Catalog is the ordered question sequence of a session. It is never mutated
// after New returns.
type Catalog struct {
	questions []assessment.Question
	index     map[string]int
	groups    []Group
}

// New normalizes the questions delivered by the service and builds the
// catalog. Problems found while normalizing are returned as warnings; they
// never make New fail.
func New(questions []assessment.Question) (*Catalog, []string) {
	c := &Catalog{index: make(map[string]int, len(questions))}
	var warnings []string
	groupAt := make(map[string]int)

	for i, q := range questions {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			warnings = append(warnings, fmt.Sprintf("question %d: missing id, dropped", i))
			continue
		}
		if _, dup := c.index[id]; dup {
			warnings = append(warnings, fmt.Sprintf("question %q: duplicate id, dropped", id))
			continue
		}

		subject := strings.TrimSpace(q.SubjectName)
		if subject == "" {
			subject = DefaultSubject
		}

		options := make([]assessment.Option, 0, len(q.Options))
		for _, o := range q.Options {
			if strings.TrimSpace(o.ID) == "" {
				warnings = append(warnings, fmt.Sprintf("question %q: option without id, dropped", id))
				continue
			}
			options = append(options, o)
		}
		if len(options) == 0 {
			warnings = append(warnings, fmt.Sprintf("question %q: no options", id))
		}

		pos := len(c.questions)
		c.questions = append(c.questions, assessment.Question{
			ID:          id,
			Text:        q.Text,
			ImageURL:    q.ImageURL,
			SubjectName: subject,
			Options:     options,
		})
		c.index[id] = pos

		g, ok := groupAt[subject]
		if !ok {
			g = len(c.groups)
			groupAt[subject] = g
			c.groups = append(c.groups, Group{Subject: subject})
		}
		c.groups[g].Indices = append(c.groups[g].Indices, pos)
	}

	return c, warnings
}

// Len returns the number of questions.
func (c *Catalog) Len() int { return len(c.questions) }

// At returns the question at position i.
func (c *Catalog) At(i int) (assessment.Question, bool) {
	if i < 0 || i >= len(c.questions) {
		return assessment.Question{}, false
	}
	return c.questions[i], true
}

// Index returns the position of the question with the given id.
func (c *Catalog) Index(questionID string) (int, bool) {
	i, ok := c.index[questionID]
	return i, ok
}

// Has reports whether the catalog contains questionID.
func (c *Catalog) Has(questionID string) bool {
	_, ok := c.index[questionID]
	return ok
}

// HasOption reports whether optionID is one of the options of questionID.
func (c *Catalog) HasOption(questionID, optionID string) bool {
	i, ok := c.index[questionID]
	if !ok {
		return false
	}
	for _, o := range c.questions[i].Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// IDs returns the question ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.questions))
	for i, q := range c.questions {
		ids[i] = q.ID
	}
	return ids
}

// Groups returns the subject groups in first-appearance order. Subjects
// without questions never form a group.
func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = Group{Subject: g.Subject, Indices: append([]int(nil), g.Indices...)}
	}
	return out
}

// GroupOf returns the position of the group that question i belongs to.
func (c *Catalog) GroupOf(i int) int {
	q, ok := c.At(i)
	if !ok {
		return -1
	}
	for gi, g := range c.groups {
		if g.Subject == q.SubjectName {
			return gi
		}
	}
	return -1
}

// Progress derives the answered/total counts per group from the ledger.
func (c *Catalog) Progress(l *ledger.Ledger) []GroupProgress {
	out := make([]GroupProgress, 0, len(c.groups))
	for _, g := range c.groups {
		p := GroupProgress{Subject: g.Subject, Total: len(g.Indices)}
		for _, i := range g.Indices {
			if l != nil && l.IsAnswered(c.questions[i].ID) {
				p.Answered++
			}
		}
		out = append(out, p)
	}
	return out
}

// Submission serializes the ledger against the catalog: exactly one entry
// per question, in catalog order, with a nil option for unanswered ones.
func (c *Catalog) Submission(l *ledger.Ledger) []assessment.AnswerSubmission {
	out := make([]assessment.AnswerSubmission, len(c.questions))
	for i, q := range c.questions {
		out[i] = assessment.AnswerSubmission{QuestionID: q.ID}
		if l == nil {
			continue
		}
		if opt, ok := l.Get(q.ID); ok {
			opt := opt
			out[i].SelectedOptionID = &opt
		}
	}
	return out
}
