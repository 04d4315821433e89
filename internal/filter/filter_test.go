package filter

import (
	"reflect"
	"testing"

	"github.com/MeloticZ/CourseX/internal/catalog"
)

// ── 测试辅助 ──

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func lecture(id, spec string, units float64) catalog.Section {
	return catalog.Section{
		SectionID: id, Type: "Lecture",
		Schedule: spec, Units: f64(units),
		Enrolled: 10, Capacity: 20,
	}
}

func lab(id, spec string) catalog.Section {
	return catalog.Section{
		SectionID: id, Type: "Lab",
		Schedule: spec,
		Enrolled: 5, Capacity: 30,
	}
}

func sampleCourses() []catalog.Course {
	return []catalog.Course{
		{
			Title: "Data Structures", Code: "CSCI-104",
			Description: "Abstract data types",
			GE:          []string{"E"},
			Sections: []catalog.Section{
				lecture("29979", "MWF 10:00-10:50", 4),
				lab("29980", "Thu 12:00-13:50"),
			},
		},
		{
			Title: "Linear Algebra", Code: "MATH-225",
			Sections: []catalog.Section{
				lecture("39501", "TTh 09:30-10:50", 4),
			},
		},
		{
			Title: "Writing Seminar", Code: "GESM-120",
			Sections: []catalog.Section{
				lecture("60012", "MW 14:00-15:20", 2),
			},
		},
	}
}

// ── 组合规则测试 ──

func TestApply_NeutralRoundTrip(t *testing.T) {
	in := sampleCourses()
	out := Apply(in, NewState(), nil)
	if !reflect.DeepEqual(out, in) {
		t.Errorf("中性筛选应原样返回:\n输入 %+v\n输出 %+v", in, out)
	}
}

func TestApply_LectureGatesSpecials(t *testing.T) {
	st := NewState()
	// 只限周二/周四：CSCI-104 的讲授课（周一三五）不通过 → 整门课排除，
	// 实验班不能独自救活课程
	st.Days = []int{2, 4}
	out := Apply(sampleCourses(), st, nil)
	for _, c := range out {
		if c.Code == "CSCI-104" {
			t.Errorf("讲授课不通过时整门课应排除: %+v", c)
		}
	}

	// 只限周一三五：CSCI-104 讲授课通过 → 实验班（周四）无条件搭载
	st = NewState()
	st.Days = []int{1, 3, 5}
	out = Apply(sampleCourses(), st, nil)
	var cs *catalog.Course
	for i := range out {
		if out[i].Code == "CSCI-104" {
			cs = &out[i]
		}
	}
	if cs == nil {
		t.Fatal("讲授课通过时课程应保留")
	}
	if len(cs.Sections) != 2 {
		t.Fatalf("期望讲授课+实验班共 2 个班次，实际 %d", len(cs.Sections))
	}
	if cs.Sections[1].SectionID != "29980" {
		t.Errorf("特殊班次应搭载在讲授课之后: %+v", cs.Sections)
	}
}

func TestApply_NonSpecialNonLectureExcluded(t *testing.T) {
	courses := []catalog.Course{{
		Title: "Studio", Code: "ART-101",
		Sections: []catalog.Section{
			lecture("1", "MW 10:00-11:50", 4),
			{SectionID: "2", Type: "Quiz", Schedule: "F 10:00-10:50"},
		},
	}}
	out := Apply(courses, NewState(), nil)
	if len(out) != 1 {
		t.Fatalf("课程应保留，实际 %d", len(out))
	}
	for _, s := range out[0].Sections {
		if s.SectionID == "2" {
			t.Error("非讲授非特殊类型的班次不应进入最终集合")
		}
	}
}

// ── 课程级谓词测试 ──

func TestApply_Search(t *testing.T) {
	st := NewState()
	st.SearchText = "  LINEAR  "
	out := Apply(sampleCourses(), st, nil)
	if len(out) != 1 || out[0].Code != "MATH-225" {
		t.Errorf("标题搜索失败: %+v", out)
	}

	// GE 检索词："GE-E" 命中带 E 标签的课程
	st.SearchText = "ge-e"
	out = Apply(sampleCourses(), st, nil)
	if len(out) != 1 || out[0].Code != "CSCI-104" {
		t.Errorf("GE 检索词搜索失败: %+v", out)
	}

	// GESM 开头课程号附加 GESM 检索词
	st.SearchText = "gesm"
	out = Apply(sampleCourses(), st, nil)
	if len(out) != 1 || out[0].Code != "GESM-120" {
		t.Errorf("GESM 检索词搜索失败: %+v", out)
	}

	// 班次号也在干草堆内
	st.SearchText = "39501"
	out = Apply(sampleCourses(), st, nil)
	if len(out) != 1 || out[0].Code != "MATH-225" {
		t.Errorf("班次号搜索失败: %+v", out)
	}
}

func TestApply_CourseLevel(t *testing.T) {
	st := NewState()
	st.CourseLevelMin = iptr(200)
	out := Apply(sampleCourses(), st, nil)
	if len(out) != 1 || out[0].Code != "MATH-225" {
		t.Errorf("级别下限筛选失败: %+v", out)
	}

	// 提取不到级别的课程在级别条件激活时排除
	courses := append(sampleCourses(), catalog.Course{
		Title: "No Level", Code: "ABC-XX",
		Sections: []catalog.Section{lecture("9", "M 10:00-10:50", 1)},
	})
	st = NewState()
	st.CourseLevelMax = iptr(500)
	out = Apply(courses, st, nil)
	for _, c := range out {
		if c.Code == "ABC-XX" {
			t.Error("无级别课程在级别条件激活时应排除")
		}
	}
}

// ── 班次级谓词测试 ──

func TestApply_ScheduleWindowFullyWithin(t *testing.T) {
	st := NewState()
	// 窗口 10:00-11:00：MATH-225 的 09:30 开课不完整落入 → 排除
	st.TimeStartMinutes = iptr(600)
	st.TimeEndMinutes = iptr(660)
	out := Apply(sampleCourses(), st, nil)
	if len(out) != 1 || out[0].Code != "CSCI-104" {
		t.Errorf("时间窗应要求完整落入: %+v", out)
	}
}

func TestApply_Enrollment(t *testing.T) {
	courses := []catalog.Course{
		{Title: "Full", Code: "FULL-101", Sections: []catalog.Section{
			{SectionID: "1", Type: "Lecture", Enrolled: 20, Capacity: 20},
		}},
		{Title: "Open", Code: "OPEN-101", Sections: []catalog.Section{
			{SectionID: "2", Type: "Lecture", Enrolled: 5, Capacity: 20},
		}},
		{Title: "NoCap", Code: "NCAP-101", Sections: []catalog.Section{
			{SectionID: "3", Type: "Lecture", Enrolled: 5, Capacity: 0}, // 容量 0 视为未满
		}},
	}

	st := NewState()
	st.Enrollment = EnrollOnlyFull
	out := Apply(courses, st, nil)
	if len(out) != 1 || out[0].Code != "FULL-101" {
		t.Errorf("only-full 筛选失败: %+v", out)
	}

	st.Enrollment = EnrollOnlyOpen
	out = Apply(courses, st, nil)
	if len(out) != 2 {
		t.Errorf("only-open 应保留 2 门课，实际 %+v", out)
	}
}

func TestApply_UnitsPrecheck(t *testing.T) {
	st := NewState()
	st.UnitsMin = f64(3)
	out := Apply(sampleCourses(), st, nil)
	// GESM-120（2 学分）没有任何班次满足 → 预检排除
	for _, c := range out {
		if c.Code == "GESM-120" {
			t.Error("学分预检应排除无满足班次的课程")
		}
	}
	if len(out) != 2 {
		t.Errorf("期望保留 2 门课，实际 %d", len(out))
	}
}

func TestApply_TriStates(t *testing.T) {
	courses := []catalog.Course{
		{Title: "Clear", Code: "CLR-101", Sections: []catalog.Section{
			{SectionID: "1", Type: "Lecture", HasDClearance: true},
		}},
		{Title: "Plain", Code: "PLN-101", Sections: []catalog.Section{
			{SectionID: "2", Type: "Lecture"},
		}},
	}

	st := NewState()
	st.DClearance = TriOnly
	out := Apply(courses, st, nil)
	if len(out) != 1 || out[0].Code != "CLR-101" {
		t.Errorf("only 应仅保留带清卡标志的课: %+v", out)
	}

	st.DClearance = TriExclude
	out = Apply(courses, st, nil)
	if len(out) != 1 || out[0].Code != "PLN-101" {
		t.Errorf("exclude 应排除带清卡标志的课: %+v", out)
	}
}

func TestApply_Conflicts(t *testing.T) {
	// 冲突回调：凡含 MWF 的时间串都与课表冲突
	collide := func(spec string) []string {
		if len(spec) >= 3 && spec[:3] == "MWF" {
			return []string{"CSCI-104"}
		}
		return nil
	}

	st := NewState()
	st.Conflicts = TriExclude
	out := Apply(sampleCourses(), st, collide)
	for _, c := range out {
		if c.Code == "CSCI-104" {
			t.Error("exclude 应排除冲突班次所在课程")
		}
	}

	st.Conflicts = TriOnly
	out = Apply(sampleCourses(), st, collide)
	if len(out) != 1 || out[0].Code != "CSCI-104" {
		t.Errorf("only 应仅保留冲突课程: %+v", out)
	}
}

func TestApply_SectionTypes(t *testing.T) {
	st := NewState()
	st.SectionTypes = []string{"Lec"} // 规范化后与 "Lecture" 等价
	out := Apply(sampleCourses(), st, nil)
	if len(out) != 3 {
		t.Errorf("类型筛选规范化失败: %+v", out)
	}
}
