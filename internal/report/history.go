package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/typebest/internal/funbox"
	"github.com/verte-zerg/typebest/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderHistory prints stored results newest first followed by a WPM trend
// drawn oldest to newest.
func RenderHistory(w io.Writer, records []model.ResultRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	headers := []string{"Submitted", "Mode", "WPM", "Acc", "Language", "Funbox", "PB"}
	rows := make([][]string, 0, len(records))
	trend := make([]float64, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if wpm := records[i].Result.Wpm; wpm != nil {
			trend = append(trend, *wpm)
		}
	}
	for _, rec := range records {
		r := rec.Result
		pbMark := ""
		if rec.IsPb {
			pbMark = "*"
		}
		rows = append(rows, []string{
			rec.SubmittedAt.UTC().Format(dateLayout),
			r.Mode + " " + r.Mode2,
			optionalFloat(r.Wpm, formatFloat),
			optionalFloat(r.Acc, formatPercent),
			orDash(r.Language),
			orDash(r.Funbox),
			pbMark,
		})
	}
	if err := writeTable(w, "History", headers, rows, map[int]bool{2: true, 3: true}); err != nil {
		return err
	}
	if len(trend) > 1 {
		if _, err := fmt.Fprintf(w, "WPM trend: %s\n", Sparkline(trend)); err != nil {
			return err
		}
	}
	return nil
}

// RenderFunboxes lists modifiers and whether they allow personal bests.
func RenderFunboxes(w io.Writer, funboxes []funbox.Funbox) error {
	if len(funboxes) == 0 {
		_, err := fmt.Fprintln(w, "No funboxes registered.")
		return err
	}
	rows := make([][]string, 0, len(funboxes))
	for _, fb := range funboxes {
		eligible := "no"
		if fb.CanGetPb {
			eligible = "yes"
		}
		rows = append(rows, []string{fb.Name, eligible})
	}
	return writeTable(w, "Funboxes", []string{"Name", "Can Get PB"}, rows, nil)
}

func optionalFloat(v *float64, format func(float64) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
