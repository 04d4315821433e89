package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/MeloticZ/CourseX/internal/catalog"
	"github.com/MeloticZ/CourseX/internal/dto"
	"github.com/MeloticZ/CourseX/internal/repository"
)

// ── 测试辅助 ──

// mockLoader 内存数据集，同时充当索引缓存的数据来源
type mockLoader struct {
	data map[string]catalog.RawCoursesBySchool
}

func (m *mockLoader) LoadCourses(termID string) (catalog.RawCoursesBySchool, error) {
	if d, ok := m.data[termID]; ok {
		return d, nil
	}
	return nil, errors.New("学期数据不存在")
}

func (m *mockLoader) LoadPrograms(termID string) (json.RawMessage, error) {
	if _, ok := m.data[termID]; ok {
		return json.RawMessage(`{"schools":[]}`), nil
	}
	return nil, errors.New("学期数据不存在")
}

func (m *mockLoader) ListTerms() ([]string, error) {
	var terms []string
	for t := range m.data {
		terms = append(terms, t)
	}
	return terms, nil
}

func testRawData() catalog.RawCoursesBySchool {
	return catalog.RawCoursesBySchool{
		"Viterbi": {
			"CS": []catalog.RawGroupedCourse{
				{
					Title:      "Data Structures",
					CourseCode: "CSCI-104",
					Sections: []catalog.RawSection{
						{
							SectionCode: "29979",
							Instructors: []string{"Mark Redekopp"},
							Units:       catalog.UnitsValue{Text: "4.0 units"},
							Total:       120, Registered: 118,
							Time: "MWF 10:00-10:50", Location: "SGM 123",
							Type: "Lecture",
						},
						{
							SectionCode: "29980",
							Time:        "Th 12:00-13:50",
							Type:        "Lab",
						},
					},
				},
				{
					Title:      "Linear Algebra",
					CourseCode: "MATH-225",
					Sections: []catalog.RawSection{
						{
							SectionCode: "39501",
							Units:       catalog.UnitsValue{Text: "4.0 units"},
							Time:        "MW 10:30-11:50",
							Type:        "Lecture",
						},
					},
				},
			},
		},
	}
}

func setupScheduleService() (ScheduleService, *repository.Repository) {
	repo := &repository.Repository{
		User:          newMockUserRepo(),
		ScheduleEntry: newMockScheduleEntryRepo(),
		ManualBlock:   newMockManualBlockRepo(),
	}
	loader := &mockLoader{data: map[string]catalog.RawCoursesBySchool{"20253": testRawData()}}
	cache := catalog.NewCache(loader, zap.NewNop())
	svc := NewScheduleService(repo, cache, zap.NewNop())
	return svc, repo
}

// ── AddSection 测试 ──

func TestScheduleService_AddSection_Success(t *testing.T) {
	svc, _ := setupScheduleService()

	entry, err := svc.AddSection(context.Background(), "user-001", "20253", &dto.AddSectionRequest{
		CourseCode: " csci-104 ",
		SectionID:  "29979",
	})
	if err != nil {
		t.Fatalf("AddSection 应成功: %v", err)
	}
	if entry.CourseCode != "CSCI-104" || entry.SectionID != "29979" {
		t.Errorf("定位键应规范化: %+v", entry)
	}
	// 快照字段来自索引
	if entry.CourseTitle != "Data Structures" || entry.ScheduleSpec != "MWF 10:00-10:50" {
		t.Errorf("快照字段错误: %+v", entry)
	}
	if entry.Units == nil || *entry.Units != 4.0 {
		t.Errorf("学分快照错误: %v", entry.Units)
	}
}

func TestScheduleService_AddSection_Duplicate(t *testing.T) {
	svc, _ := setupScheduleService()
	req := &dto.AddSectionRequest{CourseCode: "CSCI-104", SectionID: "29979"}

	if _, err := svc.AddSection(context.Background(), "user-001", "20253", req); err != nil {
		t.Fatal(err)
	}
	_, err := svc.AddSection(context.Background(), "user-001", "20253", req)
	if !errors.Is(err, ErrAlreadyScheduled) {
		t.Errorf("期望 ErrAlreadyScheduled，实际: %v", err)
	}
}

func TestScheduleService_AddSection_NotFound(t *testing.T) {
	svc, _ := setupScheduleService()

	_, err := svc.AddSection(context.Background(), "user-001", "20253", &dto.AddSectionRequest{
		CourseCode: "CSCI-104",
		SectionID:  "99999",
	})
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("期望 ErrSectionNotFound，实际: %v", err)
	}
}

// ── RemoveSection 测试 ──

func TestScheduleService_RemoveSection(t *testing.T) {
	svc, _ := setupScheduleService()
	ctx := context.Background()

	if _, err := svc.AddSection(ctx, "user-001", "20253", &dto.AddSectionRequest{CourseCode: "CSCI-104", SectionID: "29979"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddSection(ctx, "user-001", "20253", &dto.AddSectionRequest{CourseCode: "CSCI-104", SectionID: "29980"}); err != nil {
		t.Fatal(err)
	}

	// 指定班次移除
	if err := svc.RemoveSection(ctx, "user-001", "20253", "CSCI-104", "29979"); err != nil {
		t.Fatalf("移除班次应成功: %v", err)
	}
	// 班次号缺省移除整门课
	if err := svc.RemoveSection(ctx, "user-001", "20253", "CSCI-104", ""); err != nil {
		t.Fatalf("移除整门课应成功: %v", err)
	}
	// 空课表再移除报错
	if err := svc.RemoveSection(ctx, "user-001", "20253", "CSCI-104", ""); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("期望 ErrEntryNotFound，实际: %v", err)
	}
}

// ── GetMySchedule 测试 ──

func TestScheduleService_GetMySchedule(t *testing.T) {
	svc, _ := setupScheduleService()
	ctx := context.Background()

	if _, err := svc.AddSection(ctx, "user-001", "20253", &dto.AddSectionRequest{CourseCode: "CSCI-104", SectionID: "29979"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateManualBlock(ctx, "user-001", "20253", &dto.CreateManualBlockRequest{
		DayIndex: 2, StartTime: "18:00", EndTime: "20:00", Label: "社团例会",
	}); err != nil {
		t.Fatal(err)
	}

	my, err := svc.GetMySchedule(ctx, "user-001", "20253")
	if err != nil {
		t.Fatal(err)
	}
	if len(my.Entries) != 1 {
		t.Errorf("期望 1 条排课条目，实际 %d", len(my.Entries))
	}
	// MWF 三块 + 手工一块
	if len(my.Blocks) != 4 {
		t.Errorf("期望 4 个时间块，实际 %d", len(my.Blocks))
	}
	if my.TotalUnits != 4.0 || my.UnitsLabel != "4.0 credits" {
		t.Errorf("学分汇总错误: %v %q", my.TotalUnits, my.UnitsLabel)
	}
}

// ── 冲突检测测试 ──

func TestScheduleService_CheckCollisions(t *testing.T) {
	svc, _ := setupScheduleService()
	ctx := context.Background()

	if _, err := svc.AddSection(ctx, "user-001", "20253", &dto.AddSectionRequest{CourseCode: "CSCI-104", SectionID: "29979"}); err != nil {
		t.Fatal(err)
	}

	colliding, err := svc.CheckCollisions(ctx, "user-001", "20253", "Mon 10:30-11:30")
	if err != nil {
		t.Fatal(err)
	}
	if len(colliding) != 1 || colliding[0] != "CSCI-104" {
		t.Errorf("期望 [CSCI-104]，实际 %v", colliding)
	}

	colliding, err = svc.CheckCollisions(ctx, "user-001", "20253", "Tue 10:30-11:30")
	if err != nil {
		t.Fatal(err)
	}
	if len(colliding) != 0 {
		t.Errorf("不同星期不应冲突，实际 %v", colliding)
	}
}

// ── 手工时间块测试 ──

func TestScheduleService_ManualBlock_SnapToGrid(t *testing.T) {
	svc, _ := setupScheduleService()
	ctx := context.Background()

	// "932" → 09:32 → 取整到 09:30；"0748" → 07:48 → 夹到 08:00
	block, err := svc.CreateManualBlock(ctx, "user-001", "20253", &dto.CreateManualBlockRequest{
		DayIndex: 1, StartTime: "0748", EndTime: "932", Label: "晨跑",
	})
	if err != nil {
		t.Fatalf("创建手工时间块应成功: %v", err)
	}
	if block.StartMinutes != 480 || block.EndMinutes != 570 {
		t.Errorf("期望 480-570（08:00-09:30），实际 %d-%d", block.StartMinutes, block.EndMinutes)
	}
	if block.Color == "" {
		t.Error("缺省颜色应按标签派生")
	}
}

func TestScheduleService_ManualBlock_InvalidRange(t *testing.T) {
	svc, _ := setupScheduleService()
	ctx := context.Background()

	cases := []dto.CreateManualBlockRequest{
		{DayIndex: 1, StartTime: "abc", EndTime: "10:00"},
		{DayIndex: 1, StartTime: "10:00", EndTime: "10:00"}, // 对齐后起止相等
	}
	for i, req := range cases {
		if _, err := svc.CreateManualBlock(ctx, "user-001", "20253", &req); !errors.Is(err, ErrInvalidTimeRange) {
			t.Errorf("用例 %d: 期望 ErrInvalidTimeRange，实际: %v", i, err)
		}
	}

	// 起止倒置按笔误处理：交换后正常创建
	blk, err := svc.CreateManualBlock(ctx, "user-001", "20253", &dto.CreateManualBlockRequest{
		DayIndex: 1, StartTime: "11:00", EndTime: "10:00", Label: "倒置",
	})
	if err != nil {
		t.Fatalf("倒置区间应交换后成功: %v", err)
	}
	if blk.StartMinutes != 600 || blk.EndMinutes != 660 {
		t.Errorf("期望交换为 600-660，实际 %d-%d", blk.StartMinutes, blk.EndMinutes)
	}
}

func TestScheduleService_ManualBlock_Clear(t *testing.T) {
	svc, _ := setupScheduleService()
	ctx := context.Background()

	for _, label := range []string{"例会", "晚自习"} {
		if _, err := svc.CreateManualBlock(ctx, "user-001", "20253", &dto.CreateManualBlockRequest{
			DayIndex: 3, StartTime: "18:00", EndTime: "19:00", Label: label,
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.ClearManualBlocks(ctx, "user-001", "20253"); err != nil {
		t.Fatalf("清空应成功: %v", err)
	}
	blocks, err := svc.ListManualBlocks(ctx, "user-001", "20253")
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 0 {
		t.Errorf("清空后应无剩余时间块，实际 %d", len(blocks))
	}
	// 空课表再清空仍成功
	if err := svc.ClearManualBlocks(ctx, "user-001", "20253"); err != nil {
		t.Errorf("幂等清空应成功: %v", err)
	}
}

func TestScheduleService_ManualBlock_UpdateAndDelete(t *testing.T) {
	svc, _ := setupScheduleService()
	ctx := context.Background()

	block, err := svc.CreateManualBlock(ctx, "user-001", "20253", &dto.CreateManualBlockRequest{
		DayIndex: 1, StartTime: "18:00", EndTime: "20:00", Label: "例会",
	})
	if err != nil {
		t.Fatal(err)
	}

	newLabel := "周会"
	newEnd := "21:00"
	updated, err := svc.UpdateManualBlock(ctx, "user-001", block.BlockID, &dto.UpdateManualBlockRequest{
		Label:   &newLabel,
		EndTime: &newEnd,
	})
	if err != nil {
		t.Fatalf("更新应成功: %v", err)
	}
	if updated.Label != "周会" || updated.EndMinutes != 1260 {
		t.Errorf("更新结果错误: %+v", updated)
	}

	// 他人的时间块不可更新/删除
	if _, err := svc.UpdateManualBlock(ctx, "user-002", block.BlockID, &dto.UpdateManualBlockRequest{Label: &newLabel}); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("跨用户更新应报 ErrBlockNotFound，实际: %v", err)
	}
	if err := svc.DeleteManualBlock(ctx, "user-002", block.BlockID); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("跨用户删除应报 ErrBlockNotFound，实际: %v", err)
	}

	if err := svc.DeleteManualBlock(ctx, "user-001", block.BlockID); err != nil {
		t.Fatalf("删除应成功: %v", err)
	}
	if err := svc.DeleteManualBlock(ctx, "user-001", block.BlockID); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("重复删除应报 ErrBlockNotFound，实际: %v", err)
	}
}
