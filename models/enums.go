package models

// Direction 交易方向（封闭枚举，数据库层另有CHECK约束兜底）
type Direction string

const (
	DirectionLong  Direction = "LONG"  // 做多
	DirectionShort Direction = "SHORT" // 做空
)

// Valid 判断方向是否合法
func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// SetupQuality 形态质量评级（封闭枚举）
type SetupQuality string

const (
	SetupQualityA SetupQuality = "A"
	SetupQualityB SetupQuality = "B"
	SetupQualityC SetupQuality = "C"
)

// Valid 判断评级是否合法
func (q SetupQuality) Valid() bool {
	return q == SetupQualityA || q == SetupQualityB || q == SetupQualityC
}

// 信心指数取值范围
const (
	ConfidenceMin = 1
	ConfidenceMax = 5
)

// ValidConfidence 判断信心指数是否在[1,5]范围内
func ValidConfidence(c int) bool {
	return c >= ConfidenceMin && c <= ConfidenceMax
}
