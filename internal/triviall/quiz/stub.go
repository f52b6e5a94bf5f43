package quiz

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/triviall-games/triviall/internal/triviall/model"
)

// StubGenerator serves canned questions without any network call. It backs
// the demo binary and the engine tests.
type StubGenerator struct {
	n uint64
	// Fail makes every call return an error until cleared; lets tests drive
	// the retry path.
	Fail atomic.Bool
}

var _ Generator = (*StubGenerator)(nil)

var ErrStubFailure = fmt.Errorf("stub generator failure")

func (g *StubGenerator) Generate(
	ctx context.Context,
	player *model.Player,
	roundType model.RoundType,
	difficulty int,
	subject string,
) (model.Question, error) {
	if err := ctx.Err(); err != nil {
		return model.Question{}, err
	}
	if g.Fail.Load() {
		return model.Question{}, ErrStubFailure
	}

	seq := atomic.AddUint64(&g.n, 1)
	text := fmt.Sprintf("Placeholder question #%d about %s (level %d)", seq, subject, difficulty)

	switch roundType {
	case model.RoundTrueFalse:
		return model.Question{
			Type:          roundType,
			Question:      text,
			Options:       []string{"True", "False"},
			CorrectAnswer: "True",
			Topic:         subject,
		}, nil
	case model.RoundMultipleChoice:
		return model.Question{
			Type:          roundType,
			Question:      text,
			Options:       []string{"Alpha", "Beta", "Gamma", "Delta"},
			CorrectAnswer: "Alpha",
			Topic:         subject,
		}, nil
	case model.RoundEstimation:
		return model.Question{
			Type:          roundType,
			Question:      text,
			CorrectAnswer: "100",
			Topic:         subject,
		}, nil
	default:
		return model.Question{
			Type:              roundType,
			Question:          text,
			CorrectAnswer:     "placeholder",
			AcceptableAnswers: []string{"place holder"},
			Topic:             subject,
		}, nil
	}
}
