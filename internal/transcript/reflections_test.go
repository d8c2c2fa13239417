package transcript

import (
	"reflect"
	"testing"

	"github.com/adamavenir/wolfwatch/internal/types"
)

func TestExtractReflectionsFixture(t *testing.T) {
	got := ExtractReflections(readFixture(t))

	want := map[string]types.Reflection{
		"Player3": {Player: "Player3", Thinking: "结束了"},
		"Player4": {Player: "Player4", Thinking: "好人赢了"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("reflections = %+v, want %+v", got, want)
	}
}

func TestExtractReflectionsLastNonEmptyWins(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want types.Reflection
	}{
		{
			name: "second block replaces first",
			raw: "[10:00:00] [第1回合-反思] Player2\n(思考) 旧的\n" +
				"[11:00:00] [第2回合-反思] Player2\n(思考) 新的\n(印象) Player1:可疑\n",
			want: types.Reflection{Player: "Player2", Thinking: "新的", Impressions: "Player1:可疑"},
		},
		{
			name: "empty block keeps earlier",
			raw: "[10:00:00] [第1回合-反思] Player2\n(思考) 旧的\n" +
				"[11:00:00] [第2回合-反思] Player2\n",
			want: types.Reflection{Player: "Player2", Thinking: "旧的"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractReflections(tc.raw)
			if len(got) != 1 || !reflect.DeepEqual(got["Player2"], tc.want) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestExtractReflectionsMultiline(t *testing.T) {
	raw := "[10:00:00] [第1回合-反思] 小明\n" +
		"    (思考) 第一行\n" +
		"           第二行\n" +
		"    (印象)\n" +
		"    Player1:狼\n" +
		"    Player2：好人\n" +
		"\n" +
		"游戏状态: 正常结束\n" +
		"这一行不属于反思\n"

	got := ExtractReflections(raw)["小明"]
	if got.Thinking != "第一行\n第二行" {
		t.Errorf("thinking = %q", got.Thinking)
	}
	if got.Impressions != "Player1:狼\nPlayer2：好人" {
		t.Errorf("impressions = %q", got.Impressions)
	}
}

func TestExtractReflectionsStopsAtNextAction(t *testing.T) {
	raw := "[10:00:00] [第1回合-反思] Player1\n" +
		"(印象) Player2:好人\n" +
		"[10:00:05] 公开发言 | Player2\n" +
		"(发言) 大家好\n" +
		"继续发言\n"

	got := ExtractReflections(raw)["Player1"]
	if got.Impressions != "Player2:好人" {
		t.Fatalf("impressions leaked: %q", got.Impressions)
	}
}

func TestExtractReflectionsLegacyHeader(t *testing.T) {
	raw := "[10:00:00] 第1回合-反思 结束 Player7\n(思考) 旧格式\n"
	got := ExtractReflections(raw)
	if got["Player7"].Thinking != "旧格式" {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractReflectionsIgnoresOrphanTags(t *testing.T) {
	got := ExtractReflections("(思考) 没有玩家\n(印象) Player1:x\n")
	if len(got) != 0 {
		t.Fatalf("expected no reflections, got %+v", got)
	}
}
