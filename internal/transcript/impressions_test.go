package transcript

import (
	"reflect"
	"testing"

	"github.com/adamavenir/wolfwatch/internal/types"
)

func TestNormalizePlayerID(t *testing.T) {
	cases := map[string]string{
		"Player3":   "player_3",
		"player12":  "player_12",
		"PLAYER_04": "player_4",
		" Player 5": "player_5",
		"小明":        "小明",
		"Playerx":   "Playerx",
		"":          "",
	}
	for in, want := range cases {
		if got := NormalizePlayerID(in); got != want {
			t.Errorf("NormalizePlayerID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseImpressions(t *testing.T) {
	body := "Player1:狼人\nPlayer2：可信: 但话多\n(无更新)\n没有冒号\n\n(暂无)"
	got := ParseImpressions(body)
	want := types.ImpressionMap{
		"player_1": "狼人",
		"player_2": "可信: 但话多",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestInsights(t *testing.T) {
	insights := Insights(ExtractReflections(
		"[10:00:00] [第1回合-反思] Player2\n(思考) 想法\n(印象) Player1:可疑\n" +
			"[10:00:01] [第1回合-反思] Player1\n(思考) 安静\n",
	))
	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(insights))
	}
	if insights[0].PlayerID != "player_1" || insights[1].PlayerID != "player_2" {
		t.Fatalf("insights not ordered: %+v", insights)
	}
	if insights[1].Impressions["player_1"] != "可疑" {
		t.Errorf("impressions = %+v", insights[1].Impressions)
	}
	if len(insights[0].Impressions) != 0 {
		t.Errorf("expected no impressions, got %+v", insights[0].Impressions)
	}
}
