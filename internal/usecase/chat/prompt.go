package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pai-oys/orda-service/internal/domain/search/category"
	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

const promptHeader = `[시스템 메시지]
당신은 제주 여행 일정 추천 전문가 '오르미'입니다.

- 친구처럼 친근하고 자연스러운 말투로 답하세요.
- 제공된 장소 정보를 바탕으로 현실적이고 실행 가능한 일정을 추천하세요.
- 일정은 오전 / 오후 / 저녁으로 나누고, 시간대마다 최소 1곳, 최대 2곳을 제안하세요.
- 장소 간 이동 동선과 소요 시간을 고려해 계획하세요.
- 식사 시간(아침, 점심, 저녁)에는 반드시 식사가 가능한 장소를 포함하세요.
- 1일차 오후에는 반드시 숙소에 체크인하고, 숙소의 정확한 이름을 명시하세요.
- 모든 날은 숙소에서 마무리하고, 마지막 날은 반드시 공항에서 마무리하세요.

[예시 형식]
1일차:
**오전**
- 장소 A(11시): 설명 내용
  > 📍 제주특별자치도 제주시 ○○로 ○○

**오후**
- 장소 B(13시): 설명 내용
  > 📍 제주특별자치도 서귀포시 ○○로 ○○

**저녁**
- 장소 C(19시): 설명 내용
  > 📍 제주특별자치도 제주시 ○○로 ○○

2일차:
...

[실제 태스크]
아래 정보를 바탕으로, 위 형식대로 제주도 일정을 구성하세요.

`

const promptFooter = `
[작성 지침]
- 장소 설명은 제공된 정보만 사용하고, 추측은 절대 하지 마세요.
- 모든 장소는 정확한 이름과 주소를 반드시 포함하세요.
- 1일차부터 마지막 날까지 하루 단위로 작성하세요.
`

// promptPlace is the JSON shape one retrieved place takes inside the prompt.
type promptPlace struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// buildPrompt renders the generation prompt: persona, format example, the
// user's request and the retrieved places per category as compact JSON.
func buildPrompt(message, duration string, days int, agg *result.AggregateResult) string {
	lodging, attraction, food, event := promptCounts(days)

	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("**입력 정보:**\n")
	fmt.Fprintf(&b, "- 사용자 요청: %s\n", message)
	if duration != "" {
		fmt.Fprintf(&b, "- 여행 기간: %s (%d일)\n", duration, days)
	} else {
		fmt.Fprintf(&b, "- 여행 기간: 미지정 (%d일 기준)\n", days)
	}
	fmt.Fprintf(&b, "- 숙박 정보: %s\n", placesJSON(agg, category.Lodging, lodging))
	fmt.Fprintf(&b, "- 관광 정보: %s\n", placesJSON(agg, category.Attraction, attraction))
	fmt.Fprintf(&b, "- 음식 정보: %s\n", placesJSON(agg, category.Food, food))
	fmt.Fprintf(&b, "- 행사 정보: %s\n", placesJSON(agg, category.Event, event))
	b.WriteString(promptFooter)
	return b.String()
}

// promptCounts returns how many retrieved places per category the prompt
// includes, scaled by trip length. Separate from the search counts: the
// search over-fetches, the prompt stays lean.
func promptCounts(days int) (lodging, attraction, food, event int) {
	switch {
	case days <= 2:
		return 3, 6, 5, 2
	case days <= 3:
		return 3, 8, 6, 3
	case days <= 4:
		return 4, 10, 8, 4
	default:
		return 5, 15, 10, 5
	}
}

func placesJSON(agg *result.AggregateResult, cat category.Category, limit int) string {
	res, ok := agg.Get(cat)
	if !ok {
		return "[]"
	}

	items := res.Items()
	if len(items) > limit {
		items = items[:limit]
	}

	places := make([]promptPlace, len(items))
	for i := range items {
		it := &items[i]
		places[i] = promptPlace{
			Name:        it.Title(),
			Address:     it.Address(),
			Description: it.Content(),
		}
	}

	data, err := json.Marshal(places)
	if err != nil {
		return "[]"
	}
	return string(data)
}
