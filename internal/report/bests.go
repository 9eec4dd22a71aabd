package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/typebest/internal/model"
)

const dateLayout = "2006-01-02 15:04"

// RenderPersonalBests prints one row per stored variant.
func RenderPersonalBests(w io.Writer, pbs model.PersonalBests) error {
	headers := []string{"Mode", "WPM", "Raw", "Acc", "Cons", "Difficulty", "Language", "Flags", "Date"}
	var rows [][]string
	for _, mode := range SortedKeys(pbs) {
		byMode2 := pbs[mode]
		for _, mode2 := range SortedMode2(byMode2) {
			for _, pb := range byMode2[mode2] {
				rows = append(rows, []string{
					mode + " " + mode2,
					formatFloat(pb.Wpm),
					formatFloat(pb.Raw),
					formatPercent(pb.Acc),
					formatPercent(pb.Consistency),
					pb.Difficulty,
					pb.Language,
					flags(pb),
					formatDate(pb.Timestamp),
				})
			}
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No personal bests found.")
		return err
	}
	return writeTable(w, "Personal Bests", headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})
}

// RenderLeaderboardBests prints the best record per leaderboard language.
func RenderLeaderboardBests(w io.Writer, lb model.LbPersonalBests) error {
	headers := []string{"Mode", "Language", "WPM", "Raw", "Acc", "Cons", "Date"}
	var rows [][]string
	for _, mode := range SortedKeys(lb) {
		byMode2 := lb[mode]
		for _, mode2 := range SortedMode2(byMode2) {
			byLang := byMode2[mode2]
			for _, lang := range SortedKeys(byLang) {
				pb := byLang[lang]
				rows = append(rows, []string{
					mode + " " + mode2,
					lang,
					formatFloat(pb.Wpm),
					formatFloat(pb.Raw),
					formatPercent(pb.Acc),
					formatPercent(pb.Consistency),
					formatDate(pb.Timestamp),
				})
			}
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No leaderboard bests found.")
		return err
	}
	return writeTable(w, "Leaderboard Bests", headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true})
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedMode2 returns the keys of m with numeric values in numeric order
// followed by named values.
func SortedMode2[V any](m map[string]V) []string {
	keys := SortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func flags(pb model.PersonalBest) string {
	var out []string
	if pb.Punctuation {
		out = append(out, "punct")
	}
	if pb.Numbers {
		out = append(out, "num")
	}
	if pb.LazyMode {
		out = append(out, "lazy")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func formatDate(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(dateLayout)
}
