package triviall

import (
	"time"

	"github.com/triviall-games/triviall/internal/database"
)

type Config struct {
	Debug bool `envconfig:"TRIVIALL_DEBUG" default:"false"`

	// CacheSize bounds the profile read cache, entries.
	CacheSize int `envconfig:"TRIVIALL_CACHE_SIZE" default:"1024"`

	TotalRounds       int           `envconfig:"TRIVIALL_TOTAL_ROUNDS" default:"5"`
	CountdownTime     time.Duration `envconfig:"TRIVIALL_COUNTDOWN_TIME" default:"3s"`
	AnswerTime        time.Duration `envconfig:"TRIVIALL_ANSWER_TIME" default:"20s"`
	GenerationTimeout time.Duration `envconfig:"TRIVIALL_GENERATION_TIMEOUT" default:"10s"`
	SessionTTL        time.Duration `envconfig:"TRIVIALL_SESSION_TTL" default:"2h"`

	DB database.Config
}
