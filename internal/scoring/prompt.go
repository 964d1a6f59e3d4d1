package scoring

// The rubric is a fixed constant. It encodes the five layout-optimization
// principles and the seven hard rules the model must judge against; changing
// it changes the meaning of every stored score.
const (
	comparisonIntro = "これらはSimulinkモデルの配線図の最適化前後の画像です。以下の配線最適化の原則とルールに基づいて改善点を評価し、" +
		"さらなる改善のための提案をしてください。\n\n"

	singleIntro = "この画像はSimulinkモデルの配線図です。以下の配線最適化の原則とルールに基づいて配線の品質を評価してください。\n\n"

	principles = "【配線最適化の原則】\n" +
		"1. できるだけ直線的な配線を維持する（垂直・水平の線を優先）\n" +
		"2. 配線の交差を最小限に抑える\n" +
		"3. 近接した配線は上下左右に適切に分散させる\n" +
		"4. 全体的に美しく整理されたレイアウトを実現する\n" +
		"5. サブシステムごとに少しずつ調整する（一度にモデル全体を調整しない）\n\n"

	rules = "【重要なルール】\n" +
		"- 既存の線を削除せずに配線を整理する\n" +
		"- 近接した線は上下左右に移動して重なりを避ける\n" +
		"- 各線の垂直・水平の整列を維持しながら、視覚的な明瞭さを向上させる\n" +
		"- 元の接続は絶対に変更しない（始点と終点は保持）\n" +
		"- 配線の交差を最小限に抑え、全体的に美しいレイアウトを実現する\n" +
		"- サブシステムごとに個別に処理し、階層の異なるサブシステム間のバランスを考慮する\n" +
		"- サブシステム入力ポートの配線は垂直に揃えず、適切に間隔を空ける\n\n"

	comparisonClosing = "最適化の改善度を0〜100の範囲でスコア付けしてください。"
	singleClosing     = "0〜100の範囲でスコアを付けてください。"

	// clarificationPrompt asks the model to restate its answer as a bare
	// number after the primary extraction found nothing.
	clarificationPrompt = "0から100の範囲で具体的な数値スコアだけを教えてください。"
)

// BuildPrompt assembles the evaluation prompt. Comparison mode asks for an
// improvement score over the before/after pair; single-image mode asks for a
// quality score of one diagram.
func BuildPrompt(comparison bool) string {
	if comparison {
		return comparisonIntro + principles + rules + comparisonClosing
	}
	return singleIntro + principles + rules + singleClosing
}
