// Package model defines shared data structures.
package model

import "time"

// Difficulty values accepted for a result.
const (
	DifficultyNormal = "normal"
	DifficultyExpert = "expert"
	DifficultyMaster = "master"
)

// Mode values used by the leaderboard gate.
const (
	ModeTime  = "time"
	ModeWords = "words"
)

// Result is one completed test attempt. Optional fields are pointers so an
// absent value can be told apart from false or zero.
type Result struct {
	Mode        string   `json:"mode" yaml:"mode"`
	Mode2       string   `json:"mode2" yaml:"mode2"`
	Wpm         *float64 `json:"wpm,omitempty" yaml:"wpm,omitempty"`
	RawWpm      *float64 `json:"rawWpm,omitempty" yaml:"rawWpm,omitempty"`
	Acc         *float64 `json:"acc,omitempty" yaml:"acc,omitempty"`
	Consistency *float64 `json:"consistency,omitempty" yaml:"consistency,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Language    string   `json:"language,omitempty" yaml:"language,omitempty"`
	Punctuation *bool    `json:"punctuation,omitempty" yaml:"punctuation,omitempty"`
	Numbers     *bool    `json:"numbers,omitempty" yaml:"numbers,omitempty"`
	LazyMode    *bool    `json:"lazyMode,omitempty" yaml:"lazyMode,omitempty"`
	Funbox      string   `json:"funbox,omitempty" yaml:"funbox,omitempty"`
}

// PersonalBest is the best record for one variant of a mode/mode2 pair.
// Timestamp is in unix milliseconds.
type PersonalBest struct {
	Wpm         float64 `json:"wpm"`
	Raw         float64 `json:"raw"`
	Acc         float64 `json:"acc"`
	Consistency float64 `json:"consistency"`
	Difficulty  string  `json:"difficulty"`
	Language    string  `json:"language"`
	Punctuation bool    `json:"punctuation,omitempty"`
	Numbers     bool    `json:"numbers,omitempty"`
	LazyMode    bool    `json:"lazyMode,omitempty"`
	Timestamp   int64   `json:"timestamp"`
}

// Time returns the timestamp as a time.Time.
func (p PersonalBest) Time() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// PersonalBests maps mode -> mode2 -> variants.
type PersonalBests map[string]map[string][]PersonalBest

// LbPersonalBests maps mode -> mode2 -> language -> best record.
type LbPersonalBests map[string]map[string]map[string]PersonalBest

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}

// ResultRecord is a stored submission.
type ResultRecord struct {
	ID          string
	UserID      string
	Result      Result
	IsPb        bool
	SubmittedAt time.Time
}
