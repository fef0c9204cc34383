package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	MaxSessionCapacity   int           `env:"MAX_SESSION_CAPACITY,required=true"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,required=true"`
	CensoredWords        []string      `env:"CENSORED_WORDS"`
	MentionPattern       string        `env:"MENTION_PATTERN,required=true"`
	MentionDebounce      time.Duration `env:"MENTION_DEBOUNCE,required=true"`
	TimelineCapacity     int           `env:"TIMELINE_CAPACITY,required=true"`
	SearchBatchSize      int           `env:"SEARCH_BATCH_SIZE,required=true"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,required=true"`

	AgentModel   string        `env:"AGENT_MODEL"`
	AgentAPIKey  string        `env:"AGENT_API_KEY"`
	AgentUserID  string        `env:"AGENT_USER_ID,required=true"`
	AgentTimeout time.Duration `env:"AGENT_TIMEOUT,required=true"`

	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	AuthSigningKey    string        `env:"AUTH_SIGNING_KEY,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`
	Host           string `env:"HOST,required=true"`
	Port           int    `env:"PORT,required=true"`
	DebugPort      int    `env:"DEBUG_PORT"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
