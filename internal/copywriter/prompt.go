package copywriter

import (
	"fmt"
	"slices"
	"strings"

	"salesdash/server/config"
	"salesdash/server/internal/analytics"
	"salesdash/server/internal/models"
)

const systemInstruction = `あなたは沖縄の不動産会社で働く経験豊富な営業担当者です。
物件情報をもとに、購入・入居を検討しているお客様に向けた魅力的な販売コピーを日本語で作成してください。
誇張や事実と異なる記載は避け、掲載されている情報だけを根拠にしてください。`

// highlightKeys are listed first in the prompt, in this order.
var highlightKeys = []string{
	"価格", "家賃", "販売価格", "所在地", "住所", "交通", "間取り",
	"専有面積", "建物面積", "土地面積", "築年月", "構造", "駐車場",
}

// BuildPrompt describes p for the model. Known keys come first, the rest
// follow in key order so the prompt is stable.
func BuildPrompt(p *models.Property) string {
	var b strings.Builder

	b.WriteString("以下の物件の販売コピーを作成してください。\n\n")
	fmt.Fprintf(&b, "物件名: %s\n", p.Title)
	if info := config.GetCategoryByID(p.Category); info != nil {
		fmt.Fprintf(&b, "種別: %s / %s\n", info.TypeName, info.GenreName)
	}
	if area := analytics.PropertyArea(p); area != analytics.UnknownArea {
		fmt.Fprintf(&b, "エリア: %s\n", area)
	}
	if p.Price != "" {
		fmt.Fprintf(&b, "表示価格: %s\n", p.Price)
	}
	if p.CompanyName != "" {
		fmt.Fprintf(&b, "取扱会社: %s\n", p.CompanyName)
	}

	seen := make(map[string]bool, len(highlightKeys))
	b.WriteString("\n■ 物件詳細\n")
	for _, k := range highlightKeys {
		seen[k] = true
		if v := p.Attributes[k]; v != "" {
			fmt.Fprintf(&b, "- %s: %s\n", k, v)
		}
	}

	rest := make([]string, 0, len(p.Attributes))
	for k, v := range p.Attributes {
		if !seen[k] && v != "" {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		fmt.Fprintf(&b, "- %s: %s\n", k, p.Attributes[k])
	}

	b.WriteString("\n■ 出力形式\n")
	b.WriteString("- 1行目にキャッチコピー（30文字以内）\n")
	b.WriteString("- 続けて本文（300文字程度）\n")
	b.WriteString("- 最後に物件のおすすめポイントを箇条書きで3つ\n")
	return b.String()
}
