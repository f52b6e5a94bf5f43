// Package quiz is the boundary to the external question generator and the
// grading rules per question format.
package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/triviall-games/triviall/internal/triviall/answer"
	"github.com/triviall-games/triviall/internal/triviall/model"
)

// DefaultTimeout bounds one generation call; past it the call is treated as
// a failure the active player may retry.
const DefaultTimeout = 10 * time.Second

var ErrGenerationTimeout = fmt.Errorf("question generation timed out")

// Generator produces one question for a player. Implementations wrap the AI
// call; any failure is uniformly retryable by the caller.
type Generator interface {
	Generate(ctx context.Context, player *model.Player, roundType model.RoundType, difficulty int, subject string) (model.Question, error)
}

// WithTimeout decorates a generator with a per-call deadline.
func WithTimeout(g Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &timeoutGenerator{next: g, timeout: timeout}
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

func (g *timeoutGenerator) Generate(
	ctx context.Context,
	player *model.Player,
	roundType model.RoundType,
	difficulty int,
	subject string,
) (model.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	q, err := g.next.Generate(ctx, player, roundType, difficulty, subject)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return model.Question{}, ErrGenerationTimeout
		}
		return model.Question{}, fmt.Errorf("generate question: %w", err)
	}

	return q, nil
}

// Grade decides correctness of a submitted answer. Free-text formats go
// through the fuzzy matcher; choice formats require the exact option.
func Grade(q model.Question, submitted string) bool {
	if q.Type.FreeText() {
		return answer.IsMatch(submitted, q.CorrectAnswer, q.AcceptableAnswers)
	}
	return submitted == q.CorrectAnswer
}
