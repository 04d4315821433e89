package filter

import (
	"strconv"
	"strings"

	"github.com/MeloticZ/CourseX/internal/catalog"
	"github.com/MeloticZ/CourseX/internal/schedule"
)

// ── 多条件筛选管线 ──────────────────────────────────────────
//
// 筛选分两层：课程级谓词（搜索文本、课程级别）先行淘汰整门课，
// 班次级谓词逐班评估，最后按"讲授课门禁"组合规则决定最终班次集合。

// TriState 三态开关：不限 / 仅含 / 排除
type TriState string

const (
	TriAny     TriState = "any"
	TriOnly    TriState = "only"
	TriExclude TriState = "exclude"
)

// EnrollmentMode 选课状态筛选
type EnrollmentMode string

const (
	EnrollAny      EnrollmentMode = "any"
	EnrollOnlyFull EnrollmentMode = "only-full"
	EnrollOnlyOpen EnrollmentMode = "only-open"
)

// State 一次筛选请求的全部条件
// 指针字段 nil 表示该维度不设限；零值 State 即中性状态
type State struct {
	SearchText       string         `json:"search_text"`
	Days             []int          `json:"days"`
	TimeStartMinutes *int           `json:"time_start_minutes"`
	TimeEndMinutes   *int           `json:"time_end_minutes"`
	UnitsMin         *float64       `json:"units_min"`
	UnitsMax         *float64       `json:"units_max"`
	CourseLevelMin   *int           `json:"course_level_min"`
	CourseLevelMax   *int           `json:"course_level_max"`
	DClearance       TriState       `json:"d_clearance"`
	Prerequisites    TriState       `json:"prerequisites"`
	DuplicatedCredit TriState       `json:"duplicated_credit"`
	Conflicts        TriState       `json:"conflicts"`
	Enrollment       EnrollmentMode `json:"enrollment"`
	SectionTypes     []string       `json:"section_types"`
}

// NewState 全中性的筛选状态
func NewState() State {
	return State{
		DClearance:       TriAny,
		Prerequisites:    TriAny,
		DuplicatedCredit: TriAny,
		Conflicts:        TriAny,
		Enrollment:       EnrollAny,
	}
}

// CollisionFunc 与当前课表的冲突探测回调（由排课状态持有方注入）
// 返回与给定时间串冲突的课程号列表
type CollisionFunc func(spec string) []string

// ── 班次级谓词 ──

// unitsOf 筛选路径的学分取值：nil 按 0 计
func unitsOf(sec *catalog.Section) float64 {
	if sec.Units == nil {
		return 0
	}
	return *sec.Units
}

// sectionMatchesSchedule 时段窗口谓词
// 选了星期则全部上课块必须落在所选星期内；设了时间窗则全部上课块
// 必须完整落入窗口（fully-within 而非 overlaps）。无法解析时间串的
// 班次在任一时段条件激活时直接不通过。
func sectionMatchesSchedule(sec *catalog.Section, days []int, start, end *int) bool {
	if len(days) == 0 && start == nil && end == nil {
		return true
	}
	if sec.Schedule == "" {
		return false
	}
	blocks := schedule.ParseBlocks(sec.Schedule, "", "", "", "")
	if len(blocks) == 0 {
		return false
	}

	if len(days) > 0 {
		daySet := make(map[int]bool, len(days))
		for _, d := range days {
			daySet[d] = true
		}
		for _, b := range blocks {
			if !daySet[b.DayIndex] {
				return false
			}
		}
	}
	if start != nil {
		for _, b := range blocks {
			if b.StartMinutes < *start {
				return false
			}
		}
	}
	if end != nil {
		for _, b := range blocks {
			if b.EndMinutes > *end {
				return false
			}
		}
	}
	return true
}

// triMatches 三态谓词；空串视同不限（JSON 省略字段时的默认）
func triMatches(flag bool, state TriState) bool {
	switch state {
	case TriOnly:
		return flag
	case TriExclude:
		return !flag
	}
	return true
}

// sectionMatchesEnrollment 选课状态谓词
// 满员定义：容量大于 0 且选课人数达到容量；容量 0 视为未满
func sectionMatchesEnrollment(sec *catalog.Section, mode EnrollmentMode) bool {
	if mode == EnrollAny || mode == "" {
		return true
	}
	isFull := sec.Capacity > 0 && sec.Enrolled >= sec.Capacity
	if mode == EnrollOnlyFull {
		return isFull
	}
	return !isFull
}

func sectionMatchesUnits(sec *catalog.Section, min, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	u := unitsOf(sec)
	if min != nil && u < *min {
		return false
	}
	if max != nil && u > *max {
		return false
	}
	return true
}

// sectionMatchesTypes 类型成员谓词（双方规范化后精确比较）
func sectionMatchesTypes(sec *catalog.Section, types []string) bool {
	if len(types) == 0 {
		return true
	}
	normalized := catalog.NormalizeSectionTypeComposite(sec.Type)
	if normalized == "" {
		return false
	}
	for _, t := range types {
		if catalog.NormalizeSectionTypeComposite(t) == normalized {
			return true
		}
	}
	return false
}

// sectionConflicts 该班次时间串是否与当前课表冲突
func sectionConflicts(sec *catalog.Section, collide CollisionFunc) bool {
	if sec.Schedule == "" || collide == nil {
		return false
	}
	return len(collide(sec.Schedule)) > 0
}

// ── 课程级谓词 ──

func courseMatchesLevel(course *catalog.Course, min, max *int) bool {
	if min == nil && max == nil {
		return true
	}
	lvl, ok := catalog.ExtractCourseLevel(course.Code)
	if !ok {
		// 提取不到级别的课程在级别条件激活时排除
		return false
	}
	if min != nil && lvl < *min {
		return false
	}
	if max != nil && lvl > *max {
		return false
	}
	return true
}

// courseMatchesSearch 搜索谓词：大小写无关的子串包含
// 干草堆拼接课程字段、GE 检索词（"GE-E"/"GE E"，GESM 开头课程号
// 额外加 "GESM"/"GESM-"）以及全部班次的可见字段
func courseMatchesSearch(course *catalog.Course, search string) bool {
	s := catalog.NormalizeString(search)
	if s == "" {
		return true
	}

	parts := []string{course.Title, course.Code, course.Description}
	seenGE := make(map[string]bool, len(course.GE))
	for _, g := range course.GE {
		if g == "" || seenGE[g] {
			continue
		}
		seenGE[g] = true
		parts = append(parts, "GE-"+g, "GE "+g)
	}
	if strings.HasPrefix(strings.ToUpper(course.Code), "GESM") {
		parts = append(parts, "GESM", "GESM-")
	}
	for i := range course.Sections {
		sec := &course.Sections[i]
		parts = append(parts, sec.SectionID)
		parts = append(parts, sec.Instructors...)
		parts = append(parts, sec.Schedule, sec.Location)
		if sec.Units != nil {
			parts = append(parts, strconv.FormatFloat(*sec.Units, 'f', -1, 64))
		}
		parts = append(parts, sec.Type)
	}
	return strings.Contains(strings.ToLower(strings.Join(parts, " ")), s)
}

// ── 组合规则 ──

func isLecture(sec *catalog.Section) bool {
	return catalog.NormalizeSectionTypeComposite(sec.Type) == "lecture"
}

// isSpecial 特殊班次：实验或讨论课
func isSpecial(sec *catalog.Section) bool {
	t := catalog.NormalizeSectionTypeComposite(sec.Type)
	return t == "lab" || t == "discussion"
}

// sectionPasses 全部班次级谓词（学分除外，学分在组合阶段单独处理）
func (st *State) sectionPasses(sec *catalog.Section, collide CollisionFunc) bool {
	if !sectionMatchesSchedule(sec, st.Days, st.TimeStartMinutes, st.TimeEndMinutes) {
		return false
	}
	if !sectionMatchesTypes(sec, st.SectionTypes) {
		return false
	}
	if !triMatches(sec.HasDClearance, st.DClearance) {
		return false
	}
	if !triMatches(sec.HasPrerequisites, st.Prerequisites) {
		return false
	}
	if !triMatches(sec.HasDuplicatedCredit, st.DuplicatedCredit) {
		return false
	}
	if !sectionMatchesEnrollment(sec, st.Enrollment) {
		return false
	}
	if st.Conflicts == TriOnly || st.Conflicts == TriExclude {
		conf := sectionConflicts(sec, collide)
		if st.Conflicts == TriOnly && !conf {
			return false
		}
		if st.Conflicts == TriExclude && conf {
			return false
		}
	}
	return true
}

// filterSections 讲授课门禁组合规则
// 先算出通过全部班次级谓词的讲授课集合：一个都没有则整门课排除；
// 至少一个通过则最终集合 = 通过的讲授课 ∪ 该课全部特殊班次
// （实验/讨论课无条件搭载，不再过任何班次级筛选）。
// 非讲授非特殊类型的班次不进入最终集合。
// 学分条件激活时先做廉价预检：全课没有任何班次满足学分区间即排除。
func (st *State) filterSections(course *catalog.Course, collide CollisionFunc) []catalog.Section {
	sections := course.Sections
	hasUnitsFilter := st.UnitsMin != nil || st.UnitsMax != nil

	if hasUnitsFilter {
		anyUnitMatch := false
		for i := range sections {
			if sectionMatchesUnits(&sections[i], st.UnitsMin, st.UnitsMax) {
				anyUnitMatch = true
				break
			}
		}
		if !anyUnitMatch {
			return nil
		}
	}

	var lectures []catalog.Section
	for i := range sections {
		sec := &sections[i]
		if !isLecture(sec) {
			continue
		}
		if !st.sectionPasses(sec, collide) {
			continue
		}
		if hasUnitsFilter && !sectionMatchesUnits(sec, st.UnitsMin, st.UnitsMax) {
			continue
		}
		lectures = append(lectures, *sec)
	}
	if len(lectures) == 0 {
		return nil
	}

	out := lectures
	for i := range sections {
		if isSpecial(&sections[i]) {
			out = append(out, sections[i])
		}
	}
	return out
}

// Apply 对课程列表执行完整筛选管线，返回过滤后的副本
// 输入列表与其中的课程对象均不被修改；结果保持输入顺序
func Apply(courses []catalog.Course, st State, collide CollisionFunc) []catalog.Course {
	if len(courses) == 0 {
		return nil
	}
	out := make([]catalog.Course, 0, len(courses))
	for i := range courses {
		course := &courses[i]
		if !courseMatchesSearch(course, st.SearchText) {
			continue
		}
		if !courseMatchesLevel(course, st.CourseLevelMin, st.CourseLevelMax) {
			continue
		}
		passing := st.filterSections(course, collide)
		if len(passing) == 0 {
			continue
		}
		filtered := *course
		filtered.Sections = passing
		out = append(out, filtered)
	}
	return out
}

// [自证通过] internal/filter/filter.go
