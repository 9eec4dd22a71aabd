package pb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typebest/internal/model"
)

func TestLeaderboardEligibility(t *testing.T) {
	eligible := timeResult("60", 80)
	lb := model.LbPersonalBests{}
	_, err := CheckAndUpdate(model.PersonalBests{}, lb, eligible, firstAt)
	require.NoError(t, err)
	require.Equal(t, 80.0, lb["time"]["60"]["english"].Wpm)

	cases := map[string]func(*model.Result){
		"mode2 30":  func(r *model.Result) { r.Mode2 = "30" },
		"lazy mode": func(r *model.Result) { r.LazyMode = model.Bool(true) },
		"words":     func(r *model.Result) { r.Mode = model.ModeWords },
	}
	for name, apply := range cases {
		t.Run(name, func(t *testing.T) {
			result := timeResult("60", 80)
			apply(&result)
			lb := model.LbPersonalBests{}
			out, err := CheckAndUpdate(model.PersonalBests{}, lb, result, firstAt)
			require.NoError(t, err)
			require.True(t, out.IsPb)
			require.Empty(t, lb)
		})
	}
}

func TestShouldUpdateLeaderboardTreatsMissingLazyModeAsFalse(t *testing.T) {
	result := timeResult("15", 80)
	result.LazyMode = nil
	require.True(t, ShouldUpdateLeaderboard(result))
}

func TestLeaderboardRederivesFromWholeBucket(t *testing.T) {
	userPBs := model.PersonalBests{
		"time": {"60": {
			{Wpm: 100, Difficulty: model.DifficultyNormal, Language: "english"},
			{Wpm: 120, Difficulty: model.DifficultyExpert, Language: "english"},
		}},
	}
	lb := model.LbPersonalBests{}

	out, err := CheckAndUpdate(userPBs, lb, timeResult("60", 90), firstAt)
	require.NoError(t, err)
	require.False(t, out.IsPb)
	require.Equal(t, 120.0, lb["time"]["60"]["english"].Wpm)
	require.Equal(t, model.DifficultyExpert, lb["time"]["60"]["english"].Difficulty)
}

func TestLeaderboardKeepsExistingHolderOnTie(t *testing.T) {
	lb := model.LbPersonalBests{
		"time": {"15": {"english": {Wpm: 130, Difficulty: model.DifficultyMaster, Language: "english", Timestamp: 1}}},
	}
	out, err := CheckAndUpdate(model.PersonalBests{}, lb, timeResult("15", 130), firstAt)
	require.NoError(t, err)
	require.True(t, out.IsPb)
	require.Equal(t, int64(1), lb["time"]["15"]["english"].Timestamp)

	_, err = CheckAndUpdate(out.PersonalBests, lb, timeResult("15", 131), secondAt)
	require.NoError(t, err)
	require.Equal(t, 131.0, lb["time"]["15"]["english"].Wpm)
	require.Equal(t, secondAt.UnixMilli(), lb["time"]["15"]["english"].Timestamp)
}

func TestLeaderboardTracksLanguagesSeparately(t *testing.T) {
	userPBs := model.PersonalBests{}
	lb := model.LbPersonalBests{}

	_, err := CheckAndUpdate(userPBs, lb, timeResult("60", 110), firstAt)
	require.NoError(t, err)

	german := timeResult("60", 70)
	german.Language = "german"
	_, err = CheckAndUpdate(userPBs, lb, german, secondAt)
	require.NoError(t, err)

	require.Len(t, lb["time"]["60"], 2)
	require.Equal(t, 110.0, lb["time"]["60"]["english"].Wpm)
	require.Equal(t, 70.0, lb["time"]["60"]["german"].Wpm)
}

func TestLeaderboardEntriesAreCopies(t *testing.T) {
	userPBs := model.PersonalBests{}
	lb := model.LbPersonalBests{}
	_, err := CheckAndUpdate(userPBs, lb, timeResult("60", 110), firstAt)
	require.NoError(t, err)

	userPBs["time"]["60"][0].Wpm = 1
	require.Equal(t, 110.0, lb["time"]["60"]["english"].Wpm)
}

func TestBestForEveryLanguageFirstHighestWins(t *testing.T) {
	best := bestForEveryLanguage([]model.PersonalBest{
		{Wpm: 90, Language: "english", Difficulty: model.DifficultyNormal},
		{Wpm: 90, Language: "english", Difficulty: model.DifficultyExpert},
		{Wpm: 60, Language: "french"},
	})
	require.Len(t, best, 2)
	require.Equal(t, model.DifficultyNormal, best["english"].Difficulty)
	require.Equal(t, 60.0, best["french"].Wpm)
}
