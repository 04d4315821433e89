package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// ── 规范化工具 ──────────────────────────────────────────────
//
// 所有索引键、查找键都必须经过这里统一规范化；
// 调用方若绕过会导致查找静默落空。

// NormalizeString 去首尾空白并转小写
func NormalizeString(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeCourseCode 课程号规范化：去首尾空白并转大写
func NormalizeCourseCode(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// NormalizeSectionID 班次号规范化：去首尾空白并转大写
func NormalizeSectionID(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

var (
	// 形如 "lec/lab"、"lecture/lab"、"lab/lec" 的复合类型（空白压缩后匹配）
	compositeLecLabRe = regexp.MustCompile(`(^|[^a-z])(lec|lecture)/(lab)([^a-z]|$)`)
	compositeLabLecRe = regexp.MustCompile(`(^|[^a-z])(lab)/(lec|lecture)([^a-z]|$)`)
	// 形如 "lecture and lab"、"lecture & lab" 的口语化复合类型
	compositeLecAndLabRe = regexp.MustCompile(`(^|[^a-z])(lecture)\s*(and|&|/)\s*(lab)([^a-z]|$)`)
	compositeLabAndLecRe = regexp.MustCompile(`(^|[^a-z])(lab)\s*(and|&|/)\s*(lecture)([^a-z]|$)`)
)

// NormalizeSectionType 班次类型规范化：小写去空白后映射常见缩写
// disc/dis → discussion，lec → lecture，lab 保持，其余原样透传
func NormalizeSectionType(raw string) string {
	t := NormalizeString(raw)
	if t == "" {
		return ""
	}
	switch t {
	case "disc", "dis", "discussion":
		return "discussion"
	case "lec", "lecture":
		return "lecture"
	case "lab":
		return "lab"
	}
	return t
}

// NormalizeSectionTypeComposite 复合类型感知的规范化变体
// 在 NormalizeSectionType 的基础上识别 "lecture/lab" 一类的复合标签。
// 策略：复合标签一律归入 lecture 而非 lab —— 这是刻意的非对称归类，
// 带实验的大课在筛选语义上首先是一门讲授课。
func NormalizeSectionTypeComposite(raw string) string {
	t := NormalizeString(raw)
	if t == "" {
		return ""
	}
	if n := NormalizeSectionType(t); n == "discussion" || n == "lecture" || n == "lab" {
		return n
	}
	compact := strings.Join(strings.Fields(t), "")
	if compositeLecLabRe.MatchString(compact) || compositeLecAndLabRe.MatchString(t) {
		return "lecture"
	}
	if compositeLabLecRe.MatchString(compact) || compositeLabAndLecRe.MatchString(t) {
		return "lecture"
	}
	return t
}

var firstNumberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseUnitsToNumber 将任意形态的学分值解析为数值
// 缺失 → 0；数值 → 原值；字符串 → 扫描到的第一个十进制数，否则 0。
// 注意：这里用 0 表示"无学分信息"，而班次映射路径用 nil 表示——
// 两种表示面向不同调用方，不可混用（见 mapper.go）。
func ParseUnitsToNumber(u UnitsValue) float64 {
	if u.Number != nil {
		return *u.Number
	}
	if m := firstNumberRe.FindString(u.Text); m != "" {
		n, err := strconv.ParseFloat(m, 64)
		if err == nil {
			return n
		}
	}
	return 0
}

var leadingNumberRe = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)

// parseUnitsLeading 班次映射专用的学分解析：仅接受前导数字
// （"4 units" → 4；"about 4" → 无法解析）。解析失败或字段缺失返回 nil，
// 以便与"确实是 0 学分"区分开。
func parseUnitsLeading(u UnitsValue) *float64 {
	if u.Number != nil {
		n := *u.Number
		return &n
	}
	text := strings.TrimSpace(u.Text)
	if text == "" {
		return nil
	}
	m := leadingNumberRe.FindString(text)
	if m == "" {
		return nil
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &n
}

var threeDigitRunRe = regexp.MustCompile(`(\d{3})`)

// ExtractCourseLevel 从课程号中提取首个连续三位数字作为课程级别
// 例如 "CSCI 201L" → 201。提取不到返回 (0, false)。
func ExtractCourseLevel(code string) (int, bool) {
	m := threeDigitRunRe.FindString(code)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// [自证通过] internal/catalog/normalize.go
