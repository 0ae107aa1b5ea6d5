package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  RawQuestion
		want Question
		err  bool
	}{
		{
			name: "canonical fields",
			raw: RawQuestion{
				ID: "q1", Question: "Big-O of binary search?",
				Choices:      []string{"O(n)", "O(log n)", "O(1)"},
				CorrectIndex: intPtr(1),
				Topic:        "complexity",
			},
			want: Question{
				ID: "q1", Question: "Big-O of binary search?",
				Choices:      []string{"O(n)", "O(log n)", "O(1)"},
				CorrectIndex: 1,
				Topic:        "complexity",
			},
		},
		{
			name: "options fallback",
			raw: RawQuestion{
				ID: "q2", Question: "?",
				Options:      []string{"a", "b"},
				CorrectIndex: intPtr(0),
			},
			want: Question{ID: "q2", Question: "?", Choices: []string{"a", "b"}, CorrectIndex: 0},
		},
		{
			name: "correctIndices fallback takes the first entry",
			raw: RawQuestion{
				ID: "q3", Question: "?",
				Choices:        []string{"a", "b", "c"},
				CorrectIndices: []int{2, 0},
			},
			want: Question{ID: "q3", Question: "?", Choices: []string{"a", "b", "c"}, CorrectIndex: 2},
		},
		{
			name: "no choices at all",
			raw:  RawQuestion{ID: "q4", Question: "?", CorrectIndex: intPtr(0)},
			err:  true,
		},
		{
			name: "no correct index",
			raw:  RawQuestion{ID: "q5", Question: "?", Choices: []string{"a", "b"}},
			err:  true,
		},
		{
			name: "correct index out of range",
			raw:  RawQuestion{ID: "q6", Question: "?", Choices: []string{"a", "b"}, CorrectIndex: intPtr(5)},
			err:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidQuestion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrepareQuestions(t *testing.T) {
	raws := make([]RawQuestion, 30)
	for i := range raws {
		raws[i] = RawQuestion{
			ID:           "q" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Question:     "?",
			Choices:      []string{"alpha", "beta", "gamma", "delta"},
			CorrectIndex: intPtr(2),
		}
	}

	questions, err := PrepareQuestions(raws, 20)
	require.NoError(t, err)
	assert.Len(t, questions, 20)

	for _, q := range questions {
		// Choice shuffling must keep the correct index pointing at the
		// same text.
		require.Less(t, q.CorrectIndex, len(q.Choices))
		assert.Equal(t, "gamma", q.Choices[q.CorrectIndex])
		assert.ElementsMatch(t, []string{"alpha", "beta", "gamma", "delta"}, q.Choices)
	}
}

func TestPrepareQuestions_Errors(t *testing.T) {
	_, err := PrepareQuestions(nil, 20)
	assert.ErrorIs(t, err, ErrInvalidQuestion)

	raws := []RawQuestion{
		{ID: "ok", Question: "?", Choices: []string{"a", "b"}, CorrectIndex: intPtr(0)},
		{ID: "bad", Question: "?"},
	}
	_, err = PrepareQuestions(raws, 20)
	assert.ErrorIs(t, err, ErrInvalidQuestion)
}

func TestPrepareQuestions_NoLimitKeepsAll(t *testing.T) {
	raws := []RawQuestion{
		{ID: "q1", Question: "?", Choices: []string{"a", "b"}, CorrectIndex: intPtr(1)},
		{ID: "q2", Question: "?", Choices: []string{"a", "b"}, CorrectIndex: intPtr(0)},
	}
	questions, err := PrepareQuestions(raws, 0)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}
