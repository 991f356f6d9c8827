package strategy

import (
	"fmt"
	"strings"

	"github.com/yourusername/keiba-advisor/internal/models"
)

var levelHeadlines = map[models.RaceLevel]string{
	models.RaceLevelSkip:     "見送り推奨",
	models.RaceLevelNormal:   "通常レース",
	models.RaceLevelDecisive: "🔥 勝負レース！",
}

// Explain renders the human-readable strategy summary for a plan
func Explain(level models.RaceLevel, betType models.BetType, count, unitPrice int64, eval models.ProEvaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s %d点 @¥%d\n", levelHeadlines[level], betType.Label(), count, unitPrice)

	switch level {
	case models.RaceLevelSkip:
		b.WriteString("期待値が低いため見送りを推奨します。")
	case models.RaceLevelDecisive:
		fmt.Fprintf(&b, "難易度スコア %.2f - 高信頼度予測！", eval.DifficultyScore)
		if eval.DarkHorse != nil {
			b.WriteString(" 中穴チャンスあり。")
		}
	default:
		b.WriteString("堅実な通常配分で購入推奨。")
	}
	return b.String()
}
