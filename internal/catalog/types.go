package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ── 原始数据结构 ────────────────────────────────────────────
//
// 数据源按 学院 → 专业 → 课程组 的三层嵌套提供原始课程数据，
// 字段形态与上游 JSON 保持一致（courses.json）。
// 原始记录一经加载不再修改，生命周期为一次数据加载周期（每学期）。

// RawCoursesBySchool 整份按学期课程数据: 学院前缀 → 专业前缀 → 课程组列表
type RawCoursesBySchool map[string]map[string][]RawGroupedCourse

// RawGroupedCourse 数据源分组后的课程记录
// 同一逻辑课程可能因跨院系开设而出现在多个分组下，由索引构建阶段合并
type RawGroupedCourse struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CourseCode  string       `json:"courseCode"`
	Sections    []RawSection `json:"sections"`
	GE          []string     `json:"GE"`
}

// RawSection 数据源中一个课程班次的一条排课记录
type RawSection struct {
	SectionCode       string     `json:"sectionCode"`
	Instructors       []string   `json:"instructors"`
	Units             UnitsValue `json:"units"`
	Total             int        `json:"total"`
	Registered        int        `json:"registered"`
	Location          string     `json:"location"`
	Time              string     `json:"time"`
	DuplicatedCredits []string   `json:"duplicatedCredits"`
	Prerequisites     []string   `json:"prerequisites"`
	DClearance        bool       `json:"dClearance"`
	Type              string     `json:"type"`
}

// UnitsValue 学分字段的宽容编码：上游历史上既发过数值也发过字符串
// （如 4、"4.0"、"4 units"、"TBA"），统一在入库边界解包
type UnitsValue struct {
	Number *float64 // 数值形态
	Text   string   // 字符串形态（原文保留）
}

// UnmarshalJSON 同时接受 JSON number / string / null
func (u *UnitsValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*u = UnitsValue{}
		return nil
	}
	if s[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*u = UnitsValue{Text: text}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*u = UnitsValue{Number: &n}
	return nil
}

// MarshalJSON 按原形态回写
func (u UnitsValue) MarshalJSON() ([]byte, error) {
	if u.Number != nil {
		return json.Marshal(*u.Number)
	}
	if u.Text != "" {
		return json.Marshal(u.Text)
	}
	return []byte("null"), nil
}

// IsEmpty 数值与字符串均缺失
func (u UnitsValue) IsEmpty() bool {
	return u.Number == nil && strings.TrimSpace(u.Text) == ""
}

// String 用于搜索串拼接等展示场景
func (u UnitsValue) String() string {
	if u.Number != nil {
		return strconv.FormatFloat(*u.Number, 'f', -1, 64)
	}
	return u.Text
}

// ── 规范化结构 ─────────────────────────────────────────────

// Section 引擎规范化后的课程班次
// 不变量：SectionID 非空（无法解析出班次号的记录在映射阶段即被丢弃）
type Section struct {
	SectionID           string   `json:"section_id"`
	Instructors         []string `json:"instructors"`
	Enrolled            int      `json:"enrolled"`
	Capacity            int      `json:"capacity"`
	Schedule            string   `json:"schedule"` // 原始时间描述串，按需解析
	Location            string   `json:"location"`
	HasDClearance       bool     `json:"has_d_clearance"`
	HasPrerequisites    bool     `json:"has_prerequisites"`
	HasDuplicatedCredit bool     `json:"has_duplicated_credit"`
	Units               *float64 `json:"units"` // nil 表示学分未知，区别于 0 学分
	Type                string   `json:"type"`
}

// Course 引擎规范化后的课程
// 不变量：Code 与 Title 均非空（不满足的记录在映射阶段被丢弃）
type Course struct {
	Title       string    `json:"title"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
	GE          []string  `json:"ge,omitempty"`
}

// CourseDetails 课程级聚合视图：同一课程号下全部班次的汇总
// 由索引构建阶段按课程号折叠生成，之后只读
type CourseDetails struct {
	Title             string   `json:"title"`
	Code              string   `json:"code"`
	Description       string   `json:"description"`
	Instructors       []string `json:"instructors"`
	Units             *float64 `json:"units"`
	Enrolled          int      `json:"enrolled"`
	Capacity          int      `json:"capacity"`
	Times             []string `json:"times"`
	Locations         []string `json:"locations"`
	DuplicatedCredits []string `json:"duplicated_credits"`
	Prerequisites     []string `json:"prerequisites"`
	DClearance        bool     `json:"d_clearance"`
	Type              string   `json:"type"`
}
