package catalog

import "strings"

// ── 原始数据映射 ────────────────────────────────────────────
//
// 职责：把数据源形态的记录转换为引擎规范形态。
// 失败语义：单条坏记录只丢弃自身，绝不中断整个索引构建（见 SPEC_FULL §7 对应的错误设计）。

// MapSection 将一条原始班次记录映射为规范班次
// 班次号为空（或仅空白）时返回 nil —— 规范模型中不存在无班次号的班次
func MapSection(raw RawSection) *Section {
	sectionID := strings.TrimSpace(raw.SectionCode)
	if sectionID == "" {
		return nil
	}

	// 讲师列表：去空白、去空串、按首次出现顺序去重
	instructors := make([]string, 0, len(raw.Instructors))
	seen := make(map[string]bool, len(raw.Instructors))
	for _, ins := range raw.Instructors {
		name := strings.TrimSpace(ins)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		instructors = append(instructors, name)
	}

	return &Section{
		SectionID:           sectionID,
		Instructors:         instructors,
		Enrolled:            raw.Registered,
		Capacity:            raw.Total,
		Schedule:            strings.TrimSpace(raw.Time),
		Location:            strings.TrimSpace(raw.Location),
		HasDClearance:       raw.DClearance,
		HasPrerequisites:    len(raw.Prerequisites) > 0,
		HasDuplicatedCredit: len(raw.DuplicatedCredits) > 0,
		Units:               parseUnitsLeading(raw.Units),
		Type:                raw.Type,
	}
}

// MapGroupedCourse 将一条原始课程组记录映射为规范课程
// 课程号或标题为空时返回 nil；无效班次在映射中逐条丢弃
func MapGroupedCourse(raw RawGroupedCourse) *Course {
	code := strings.TrimSpace(raw.CourseCode)
	title := strings.TrimSpace(raw.Title)
	if code == "" || title == "" {
		return nil
	}

	sections := make([]Section, 0, len(raw.Sections))
	for _, rs := range raw.Sections {
		if s := MapSection(rs); s != nil {
			sections = append(sections, *s)
		}
	}

	return &Course{
		Title:       title,
		Code:        code,
		Description: strings.TrimSpace(raw.Description),
		Sections:    sections,
		GE:          raw.GE,
	}
}

// MergeSectionsByID 按规范化班次号合并两组班次
// 左侧优先：同号班次保留 existing 的记录；incoming 中未出现过的班次
// 依其原始顺序追加在全部 existing 班次之后（保持相遇顺序，不排序）。
func MergeSectionsByID(existing, incoming []Section) []Section {
	merged := make([]Section, 0, len(existing)+len(incoming))
	byID := make(map[string]bool, len(existing))
	for _, s := range existing {
		sid := NormalizeSectionID(s.SectionID)
		if sid == "" || byID[sid] {
			continue
		}
		byID[sid] = true
		merged = append(merged, s)
	}
	for _, s := range incoming {
		sid := NormalizeSectionID(s.SectionID)
		if sid == "" || byID[sid] {
			continue
		}
		byID[sid] = true
		merged = append(merged, s)
	}
	return merged
}

// MergeKey 课程合并键：规范化课程号 + "::" + 去空白大写标题
// 两条课程组记录的合并键相同即视为同一逻辑课程（跨院系交叉开课场景）
func MergeKey(code, title string) string {
	return NormalizeCourseCode(code) + "::" + strings.ToUpper(strings.TrimSpace(title))
}
