package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typebest/internal/funbox"
	"github.com/verte-zerg/typebest/internal/model"
	"github.com/verte-zerg/typebest/internal/tracker"
)

func TestRenderPersonalBestsOrdersVariants(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC).UnixMilli()
	pbs := model.PersonalBests{
		"time": {
			"60": {{Wpm: 88, Raw: 90, Acc: 97, Consistency: 71, Difficulty: "normal", Language: "english", Punctuation: true, Timestamp: ts}},
			"15": {{Wpm: 101.5, Raw: 104, Acc: 98, Consistency: 80, Difficulty: "expert", Language: "german", Timestamp: ts}},
		},
		"words": {
			"10": {{Wpm: 70, Raw: 72, Acc: 95, Consistency: 60, Difficulty: "normal", Language: "english", Timestamp: ts}},
		},
	}
	var buf bytes.Buffer
	if err := RenderPersonalBests(&buf, pbs); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	i15 := strings.Index(out, "time 15")
	i60 := strings.Index(out, "time 60")
	iWords := strings.Index(out, "words 10")
	if i15 < 0 || i60 < 0 || iWords < 0 || !(i15 < i60 && i60 < iWords) {
		t.Fatalf("unexpected ordering:\n%s", out)
	}
	if !strings.Contains(out, "punct") || !strings.Contains(out, "2024-05-01 10:30") {
		t.Fatalf("missing flags or date:\n%s", out)
	}
}

func TestRenderEmptyCollections(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPersonalBests(&buf, nil); err != nil {
		t.Fatalf("render pbs: %v", err)
	}
	if err := RenderLeaderboardBests(&buf, model.LbPersonalBests{}); err != nil {
		t.Fatalf("render lb: %v", err)
	}
	if err := RenderHistory(&buf, nil); err != nil {
		t.Fatalf("render history: %v", err)
	}
	want := "No personal bests found.\nNo leaderboard bests found.\nNo results found.\n"
	if buf.String() != want {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderLeaderboardBests(t *testing.T) {
	lb := model.LbPersonalBests{"time": {"15": {
		"spanish": {Wpm: 90, Language: "spanish"},
		"english": {Wpm: 110, Language: "english"},
	}}}
	var buf bytes.Buffer
	if err := RenderLeaderboardBests(&buf, lb); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "english") > strings.Index(out, "spanish") {
		t.Fatalf("expected languages sorted:\n%s", out)
	}
	if !strings.Contains(out, "110.00") {
		t.Fatalf("missing wpm:\n%s", out)
	}
}

func TestRenderHistoryTrend(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []model.ResultRecord{
		{ID: "c", Result: model.Result{Mode: "time", Mode2: "60", Wpm: model.Float(90)}, IsPb: true, SubmittedAt: base.Add(2 * time.Minute)},
		{ID: "b", Result: model.Result{Mode: "time", Mode2: "60", Wpm: model.Float(70), Funbox: "nospace"}, SubmittedAt: base.Add(time.Minute)},
		{ID: "a", Result: model.Result{Mode: "time", Mode2: "60", Wpm: model.Float(80)}, SubmittedAt: base},
	}
	var buf bytes.Buffer
	if err := RenderHistory(&buf, records); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "WPM trend: "+Sparkline([]float64{80, 70, 90})) {
		t.Fatalf("missing trend line:\n%s", out)
	}
	if !strings.Contains(out, "nospace") {
		t.Fatalf("missing funbox:\n%s", out)
	}
}

func TestSparklineFlat(t *testing.T) {
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{0, 10}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
}

func TestRenderFunboxes(t *testing.T) {
	var buf bytes.Buffer
	err := RenderFunboxes(&buf, []funbox.Funbox{{Name: "mirror", CanGetPb: true}, {Name: "nospace"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[2] != "mirror   yes" || lines[3] != "nospace  no" {
		t.Fatalf("unexpected rows: %q %q", lines[2], lines[3])
	}
}

func TestRenderOutcomePlainWhenNotTerminal(t *testing.T) {
	result := model.Result{Mode: "time", Mode2: "60", Wpm: model.Float(95)}
	var buf bytes.Buffer
	if err := RenderOutcome(&buf, result, tracker.Outcome{ResultID: "r1", IsPb: true, FunboxEligible: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "time 60: new personal best, 95.00 wpm (r1)\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	result.Funbox = "nospace"
	if err := RenderOutcome(&buf, result, tracker.Outcome{ResultID: "r2"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `funbox "nospace" cannot set a personal best`) {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
