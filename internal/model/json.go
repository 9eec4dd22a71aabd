package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodePersonalBests decodes a stored PB document. Empty input yields an
// empty collection.
func DecodePersonalBests(data []byte) (PersonalBests, error) {
	pbs := PersonalBests{}
	if len(bytes.TrimSpace(data)) == 0 {
		return pbs, nil
	}
	if err := json.Unmarshal(data, &pbs); err != nil {
		return nil, fmt.Errorf("failed to decode personal bests: %w", err)
	}
	if pbs == nil {
		pbs = PersonalBests{}
	}
	return pbs, nil
}

// DecodeLbPersonalBests decodes a stored leaderboard PB document. Buckets
// written in the old flat-array shape are dropped, which leaves them to be
// rebuilt as per-language maps on the next qualifying result.
func DecodeLbPersonalBests(data []byte) (LbPersonalBests, error) {
	lb := LbPersonalBests{}
	if len(bytes.TrimSpace(data)) == 0 {
		return lb, nil
	}
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard bests: %w", err)
	}
	for mode, byMode2 := range raw {
		lb[mode] = map[string]map[string]PersonalBest{}
		for mode2, payload := range byMode2 {
			trimmed := bytes.TrimSpace(payload)
			if len(trimmed) == 0 || trimmed[0] != '{' {
				continue
			}
			var byLang map[string]PersonalBest
			if err := json.Unmarshal(trimmed, &byLang); err != nil {
				return nil, fmt.Errorf("failed to decode leaderboard bests for %s/%s: %w", mode, mode2, err)
			}
			lb[mode][mode2] = byLang
		}
	}
	return lb, nil
}
