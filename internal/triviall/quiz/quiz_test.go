package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/triviall-games/triviall/internal/triviall/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		q         model.Question
		submitted string
		want      bool
	}{
		{
			name:      "multiple choice exact option",
			q:         model.Question{Type: model.RoundMultipleChoice, CorrectAnswer: "Alpha"},
			submitted: "Alpha",
			want:      true,
		},
		{
			name:      "multiple choice is not fuzzy",
			q:         model.Question{Type: model.RoundMultipleChoice, CorrectAnswer: "Alpha"},
			submitted: "alpha",
			want:      false,
		},
		{
			name:      "complete phrase fuzzy",
			q:         model.Question{Type: model.RoundCompletePhrase, CorrectAnswer: "Mona Lisa"},
			submitted: "mona lisa!",
			want:      true,
		},
		{
			name:      "estimation within tolerance",
			q:         model.Question{Type: model.RoundEstimation, CorrectAnswer: "100"},
			submitted: "108",
			want:      true,
		},
		{
			name:      "acceptable variant",
			q:         model.Question{Type: model.RoundLightning, CorrectAnswer: "United States", AcceptableAnswers: []string{"USA"}},
			submitted: "usa",
			want:      true,
		},
		{
			name:      "empty submission",
			q:         model.Question{Type: model.RoundTrueFalse, CorrectAnswer: "True"},
			submitted: "",
			want:      false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Grade(tc.q, tc.submitted))
		})
	}
}

func TestStubGenerator(t *testing.T) {
	t.Parallel()

	gen := &StubGenerator{}
	p := &model.Player{ID: "p1", Name: "Alex"}

	q, err := gen.Generate(context.Background(), p, model.RoundMultipleChoice, 5, "Science")
	require.NoError(t, err)
	assert.Equal(t, model.RoundMultipleChoice, q.Type)
	assert.Len(t, q.Options, 4)
	assert.Contains(t, q.Options, q.CorrectAnswer)
	assert.Equal(t, "Science", q.Topic)

	q, err = gen.Generate(context.Background(), p, model.RoundCompletePhrase, 5, "Science")
	require.NoError(t, err)
	assert.True(t, Grade(q, q.CorrectAnswer))
}

func TestStubGeneratorFailure(t *testing.T) {
	t.Parallel()

	gen := &StubGenerator{}
	gen.Fail.Store(true)
	p := &model.Player{ID: "p1"}

	_, err := gen.Generate(context.Background(), p, model.RoundTrueFalse, 5, "Science")
	assert.ErrorIs(t, err, ErrStubFailure)

	gen.Fail.Store(false)
	_, err = gen.Generate(context.Background(), p, model.RoundTrueFalse, 5, "Science")
	assert.NoError(t, err)
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	t.Run("passes through fast generators", func(t *testing.T) {
		t.Parallel()
		gen := WithTimeout(&StubGenerator{}, time.Second)
		q, err := gen.Generate(context.Background(), &model.Player{ID: "p1"}, model.RoundTrueFalse, 5, "Science")
		require.NoError(t, err)
		assert.Equal(t, model.RoundTrueFalse, q.Type)
	})

	t.Run("deadline becomes timeout error", func(t *testing.T) {
		t.Parallel()
		gen := WithTimeout(slowGenerator{}, 10*time.Millisecond)
		_, err := gen.Generate(context.Background(), &model.Player{ID: "p1"}, model.RoundTrueFalse, 5, "Science")
		assert.ErrorIs(t, err, ErrGenerationTimeout)
	})
}

type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, _ *model.Player, _ model.RoundType, _ int, _ string) (model.Question, error) {
	<-ctx.Done()
	return model.Question{}, ctx.Err()
}
