package report

import "math"

// ProgressTier 进度分档
type ProgressTier string

const (
	TierOnTarget    ProgressTier = "on_target"    // >= 100%
	TierNearTarget  ProgressTier = "near_target"  // >= 75%
	TierBelowTarget ProgressTier = "below_target" // 其余
)

// ProgressPercent 计算完成度百分比,截断到 [0, 100]
// target <= 0 时返回 0(配置界面不会产生非正目标,这里只做保护)
func ProgressPercent(value, target float64) int {
	if target <= 0 {
		return 0
	}
	p := int(math.Round(100 * value / target))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Tier 按完成度分档
func Tier(percent int) ProgressTier {
	switch {
	case percent >= 100:
		return TierOnTarget
	case percent >= 75:
		return TierNearTarget
	default:
		return TierBelowTarget
	}
}
