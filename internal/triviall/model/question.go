package model

// RoundType is the closed set of question formats.
type RoundType string

const (
	RoundMultipleChoice RoundType = "multiple_choice"
	RoundTrueFalse      RoundType = "true_false"
	RoundCompletePhrase RoundType = "complete_phrase"
	RoundEstimation     RoundType = "estimation"
	RoundLightning      RoundType = "lightning_round"
)

// FreeText reports whether answers for this round type are typed in rather
// than picked from options, which decides how they are graded.
func (r RoundType) FreeText() bool {
	switch r {
	case RoundCompletePhrase, RoundEstimation, RoundLightning:
		return true
	}
	return false
}

// RoundTypeFor returns the format played in a 1-based round number. The cycle
// repeats after five rounds.
func RoundTypeFor(roundNumber int) RoundType {
	types := []RoundType{
		RoundMultipleChoice,
		RoundTrueFalse,
		RoundCompletePhrase,
		RoundMultipleChoice,
		RoundEstimation,
	}
	return types[(roundNumber-1)%len(types)]
}

type Question struct {
	Type              RoundType `json:"type"`
	Question          string    `json:"question"`
	Options           []string  `json:"options,omitempty"`
	CorrectAnswer     string    `json:"correctAnswer"`
	AcceptableAnswers []string  `json:"acceptableAnswers,omitempty"`
	Explanation       string    `json:"explanation,omitempty"`
	Topic             string    `json:"topic,omitempty"`
}

func (q Question) Clone() Question {
	cp := q
	cp.Options = append([]string(nil), q.Options...)
	cp.AcceptableAnswers = append([]string(nil), q.AcceptableAnswers...)
	return cp
}
