package plan

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pai-oys/orda-service/internal/domain/search/category"
)

// DefaultDays is assumed when the duration string gives no usable signal.
const DefaultDays = 3

var digits = regexp.MustCompile(`\d+`)

// Plan assigns a per-category result count for one trip search, scaled by
// trip length: longer trips need more attractions and meals, lodging grows
// slowly, events stay constant.
type Plan struct {
	days   int
	counts map[category.Category]int
}

// ForDuration derives a plan from a free-form duration string ("3박4일",
// "당일", "4 days", ...). The largest number found wins (in "3박4일" that is
// the total day count); known Korean duration words are the fallback.
func ForDuration(duration string) Plan {
	return forDays(parseDays(duration))
}

// ForDays derives a plan from an explicit day count.
func ForDays(days int) Plan {
	if days <= 0 {
		days = DefaultDays
	}
	return forDays(days)
}

func parseDays(duration string) int {
	s := strings.ToLower(strings.TrimSpace(duration))
	if s == "" {
		return 0
	}

	if nums := digits.FindAllString(s, -1); len(nums) > 0 {
		days := 0
		for _, n := range nums {
			if v, err := strconv.Atoi(n); err == nil && v > days {
				days = v
			}
		}
		return days
	}

	switch {
	case strings.Contains(s, "당일"), strings.Contains(s, "하루"):
		return 1
	case strings.Contains(s, "1박"), strings.Contains(s, "2일"):
		return 2
	case strings.Contains(s, "2박"), strings.Contains(s, "3일"):
		return 3
	case strings.Contains(s, "3박"), strings.Contains(s, "4일"):
		return 4
	case strings.Contains(s, "4박"), strings.Contains(s, "5일"):
		return 5
	default:
		return DefaultDays
	}
}

func forDays(days int) Plan {
	var lodging, attraction, food, event int
	switch {
	case days <= 0:
		// No signal at all: middle-of-the-road counts.
		lodging, attraction, food, event = 3, 8, 6, 3
		days = DefaultDays
	case days <= 1:
		lodging, attraction, food, event = 3, 4, 3, 3
	case days <= 2:
		lodging, attraction, food, event = 3, 6, 5, 3
	case days <= 3:
		lodging, attraction, food, event = 4, 8, 7, 3
	case days <= 4:
		lodging, attraction, food, event = 4, 12, 10, 3
	case days <= 5:
		lodging, attraction, food, event = 5, 15, 13, 3
	default:
		lodging, attraction, food, event = 5, 18, 16, 3
	}

	return Plan{
		days: days,
		counts: map[category.Category]int{
			category.Lodging:    lodging,
			category.Attraction: attraction,
			category.Food:       food,
			category.Event:      event,
		},
	}
}

// Days returns the day count the plan was derived from.
func (p Plan) Days() int { return p.days }

// Count returns the result count for a category (0 for unknown tags).
func (p Plan) Count(cat category.Category) int { return p.counts[cat] }
