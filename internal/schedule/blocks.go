package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ── 时间块模型与时刻换算 ────────────────────────────────────
//
// 时间块是排课引擎的统一中间表示：无论来自班次时间串还是手工添加，
// 一律换算成 (星期序号, 起始分钟, 结束分钟)。星期序号 0=周日 .. 6=周六。

const (
	// DayStartMinutes 课表网格起点 08:00
	DayStartMinutes = 8 * 60
	// DayEndMinutes 课表网格终点 22:00
	DayEndMinutes = 22 * 60
	// SlotMinutes 手工时间块对齐粒度（5 分钟）
	SlotMinutes = 5
)

// Block 课表时间块
type Block struct {
	ID           string `json:"id,omitempty"`
	DayIndex     int    `json:"day_index"`
	StartMinutes int    `json:"start_minutes"`
	EndMinutes   int    `json:"end_minutes"`
	Label        string `json:"label,omitempty"`
	Color        string `json:"color,omitempty"`
	CourseCode   string `json:"course_code,omitempty"`
	SectionID    string `json:"section_id,omitempty"`
}

var clockRe = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)

// TimeToMinutes 将 "HH:MM" 换算为自午夜起的分钟数
// 格式不符时返回 0 —— 解析层的宽容策略：坏时刻退化为 0 点而非报错，
// 需要区分"解析失败"的调用方应改用 ParseTimeStrict
func TimeToMinutes(value string) int {
	m := clockRe.FindStringSubmatch(value)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm
}

// MinutesToTime 分钟数换算回 "HH:MM"（零填充）
func MinutesToTime(total int) string {
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ParseTimeStrict 严格解析 "HH:MM"，小时 0-23、分钟 0-59 范围外视为失败
func ParseTimeStrict(value string) (int, bool) {
	m := clockRe.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h < 0 || h > 23 || mm < 0 || mm > 59 {
		return 0, false
	}
	return h*60 + mm, true
}

var nonDigitRe = regexp.MustCompile(`\D+`)

// ParseTimeLoose 宽松解析用户输入的时刻
// 含冒号走严格解析；纯数字接受 "930"（9:30）和 "0930"（09:30）两种写法
func ParseTimeLoose(value string) (int, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, false
	}
	if strings.Contains(v, ":") {
		return ParseTimeStrict(v)
	}
	digits := nonDigitRe.ReplaceAllString(v, "")
	var h, mm int
	switch len(digits) {
	case 3:
		h, _ = strconv.Atoi(digits[:1])
		mm, _ = strconv.Atoi(digits[1:])
	case 4:
		h, _ = strconv.Atoi(digits[:2])
		mm, _ = strconv.Atoi(digits[2:])
	default:
		return 0, false
	}
	if h < 0 || h > 23 || mm < 0 || mm > 59 {
		return 0, false
	}
	return h*60 + mm, true
}

// Clamp 把 value 夹到 [min, max] 区间内
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// SnapToGrid 手工时间块对齐：夹到网格区间后四舍五入到 5 分钟粒度
func SnapToGrid(minutes int) int {
	clamped := Clamp(minutes, DayStartMinutes, DayEndMinutes)
	return (clamped + SlotMinutes/2) / SlotMinutes * SlotMinutes
}

// ColorForCode 由课程号确定性派生半透明展示色
// 同一课程号在任何会话中得到同一颜色，无需持久化映射表
func ColorForCode(code string) string {
	s := strings.ToUpper(code)
	var hash uint32
	for _, c := range []byte(s) {
		hash = hash*31 + uint32(c)
	}
	return fmt.Sprintf("hsla(%d, 85%%, 60%%, 0.25)", hash%360)
}
