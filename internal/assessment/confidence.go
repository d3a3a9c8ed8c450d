package assessment

import "math"

// CalculateConfidence walks the parsed extraction response and returns
// round(100 * filled / total) over its leaf fields, or 0 when there are
// none. A leaf is any value that is not a nested object; lists count as
// single leaves. A leaf is filled unless it is an empty string, false,
// null, or an empty list.
//
// The score is an auditable fill ratio, not a calibrated accuracy
// probability.
func CalculateConfidence(parsed map[string]any) int {
	total, filled := countLeaves(parsed)
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(filled) / float64(total)))
}

func countLeaves(obj map[string]any) (total, filled int) {
	for _, v := range obj {
		if nested, ok := v.(map[string]any); ok {
			t, f := countLeaves(nested)
			total += t
			filled += f
			continue
		}
		total++
		if leafFilled(v) {
			filled++
		}
	}
	return total, filled
}

func leafFilled(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case []any:
		return len(val) > 0
	default:
		// numbers and anything else count as present
		return true
	}
}
