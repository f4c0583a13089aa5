// Package grading 负责字母成绩的校验与总评计算。
package grading

import (
	"seclink_backend/internal/util"
	"strings"
)

type Scale string

const (
	// ScaleLiteral 直接用 0-4 的绩点均值去比较百分制阈值，
	// 对所有合法输入都会得到 E，保留该行为以兼容已有数据
	ScaleLiteral Scale = "literal"
	// ScalePercent 先将绩点均值乘以 25 换算为百分制再比较阈值
	ScalePercent Scale = "percent"
)

var Letters = []string{"A", "B", "C", "D", "E"}

var points = map[string]float64{
	"A": 4,
	"B": 3,
	"C": 2,
	"D": 1,
	"E": 0,
}

var thresholds = []struct {
	min    float64
	letter string
}{
	{85, "A"},
	{75, "B"},
	{65, "C"},
	{55, "D"},
}

// NormalizeLetter 去除空白并转为大写，不在 A-E 内时返回校验错误
func NormalizeLetter(s string) (string, error) {
	l := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := points[l]; !ok {
		return "", util.ErrInvalidGradeLetter
	}
	return l, nil
}

// Points 未知字母按 0 分处理
func Points(letter string) float64 {
	return points[letter]
}

// MeanPoints 所有成绩等权平均，不按科目加权
func MeanPoints(letters []string) (float64, error) {
	if len(letters) == 0 {
		return 0, util.ErrNoGrades
	}
	var total float64
	for _, l := range letters {
		total += Points(l)
	}
	return total / float64(len(letters)), nil
}

// LetterFor 按固定阈值将分数换算为字母
func LetterFor(score float64) string {
	for _, t := range thresholds {
		if score >= t.min {
			return t.letter
		}
	}
	return "E"
}

func ParseScale(s string) Scale {
	if Scale(s) == ScalePercent {
		return ScalePercent
	}
	return ScaleLiteral
}

type Aggregator struct {
	Scale Scale
}

func NewAggregator(scale Scale) *Aggregator {
	return &Aggregator{Scale: scale}
}

// Overall 计算学生的总评字母
func (a *Aggregator) Overall(letters []string) (string, error) {
	mean, err := MeanPoints(letters)
	if err != nil {
		return "", err
	}
	if a.Scale == ScalePercent {
		mean *= 25
	}
	return LetterFor(mean), nil
}
