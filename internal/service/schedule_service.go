package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MeloticZ/CourseX/internal/catalog"
	"github.com/MeloticZ/CourseX/internal/dto"
	"github.com/MeloticZ/CourseX/internal/filter"
	"github.com/MeloticZ/CourseX/internal/model"
	"github.com/MeloticZ/CourseX/internal/repository"
	"github.com/MeloticZ/CourseX/internal/schedule"
)

var (
	ErrSectionNotFound  = errors.New("课程或班次不存在")
	ErrAlreadyScheduled = errors.New("该班次已在课表中")
	ErrEntryNotFound    = errors.New("课表中没有该班次")
	ErrBlockNotFound    = errors.New("时间块不存在")
	ErrInvalidTimeRange = errors.New("时间范围无效")
)

// ScheduleService 排课业务接口
type ScheduleService interface {
	AddSection(ctx context.Context, userID, termID string, req *dto.AddSectionRequest) (*model.ScheduleEntry, error)
	RemoveSection(ctx context.Context, userID, termID, courseCode, sectionID string) error
	GetMySchedule(ctx context.Context, userID, termID string) (*dto.MyScheduleResponse, error)
	CheckCollisions(ctx context.Context, userID, termID, spec string) ([]string, error)
	CollisionFuncFor(ctx context.Context, userID, termID string) filter.CollisionFunc

	CreateManualBlock(ctx context.Context, userID, termID string, req *dto.CreateManualBlockRequest) (*model.ManualBlock, error)
	ListManualBlocks(ctx context.Context, userID, termID string) ([]model.ManualBlock, error)
	UpdateManualBlock(ctx context.Context, userID, blockID string, req *dto.UpdateManualBlockRequest) (*model.ManualBlock, error)
	DeleteManualBlock(ctx context.Context, userID, blockID string) error
	ClearManualBlocks(ctx context.Context, userID, termID string) error
}

type scheduleService struct {
	repo   *repository.Repository
	cache  *catalog.Cache
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, cache *catalog.Cache, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, cache: cache, logger: logger}
}

// ── 排课条目 ──

func (s *scheduleService) AddSection(ctx context.Context, userID, termID string, req *dto.AddSectionRequest) (*model.ScheduleEntry, error) {
	code := catalog.NormalizeCourseCode(req.CourseCode)
	sid := catalog.NormalizeSectionID(req.SectionID)

	// 1. 去重
	if _, err := s.repo.ScheduleEntry.FindByUserTermSection(ctx, userID, termID, code, sid); err == nil {
		return nil, ErrAlreadyScheduled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. 从课程索引快照班次信息
	idx, err := s.cache.GetOrBuild(termID)
	if err != nil {
		return nil, err
	}
	course, sec := idx.FindSection(code, sid)
	if course == nil || sec == nil {
		return nil, ErrSectionNotFound
	}

	entry := &model.ScheduleEntry{
		UserID:       userID,
		TermID:       termID,
		CourseCode:   code,
		CourseTitle:  course.Title,
		SectionID:    sid,
		SectionType:  sec.Type,
		Instructors:  model.StringArray(sec.Instructors),
		Units:        sec.Units,
		ScheduleSpec: sec.Schedule,
		Location:     sec.Location,
	}
	if err := s.repo.ScheduleEntry.Create(ctx, entry); err != nil {
		s.logger.Error("写入排课条目失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("班次已排入课表",
		zap.String("user_id", userID),
		zap.String("term_id", termID),
		zap.String("course_code", code),
		zap.String("section_id", sid))
	return entry, nil
}

func (s *scheduleService) RemoveSection(ctx context.Context, userID, termID, courseCode, sectionID string) error {
	code := catalog.NormalizeCourseCode(courseCode)
	sid := catalog.NormalizeSectionID(sectionID)

	var (
		affected int64
		err      error
	)
	if sid == "" {
		// 班次号缺省时移除整门课
		affected, err = s.repo.ScheduleEntry.DeleteByUserTermCourse(ctx, userID, termID, code)
	} else {
		affected, err = s.repo.ScheduleEntry.DeleteByUserTermSection(ctx, userID, termID, code, sid)
	}
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *scheduleService) GetMySchedule(ctx context.Context, userID, termID string) (*dto.MyScheduleResponse, error) {
	entries, err := s.repo.ScheduleEntry.ListByUserTerm(ctx, userID, termID)
	if err != nil {
		return nil, err
	}
	manual, err := s.repo.ManualBlock.ListByUserTerm(ctx, userID, termID)
	if err != nil {
		return nil, err
	}

	// 课程块由快照时间串即时解析，颜色按课程号确定性派生
	var blocks []schedule.Block
	var totalUnits float64
	for i := range entries {
		e := &entries[i]
		if e.Units != nil {
			totalUnits += *e.Units
		}
		color := schedule.ColorForCode(e.CourseCode)
		blocks = append(blocks, schedule.ParseBlocksFromAPISpec(
			e.ScheduleSpec, e.CourseTitle, color, e.CourseCode, e.SectionID)...)
	}
	for i := range manual {
		b := &manual[i]
		blocks = append(blocks, schedule.Block{
			ID:           b.BlockID,
			DayIndex:     b.DayIndex,
			StartMinutes: b.StartMinutes,
			EndMinutes:   b.EndMinutes,
			Label:        b.Label,
			Color:        b.Color,
		})
	}

	return &dto.MyScheduleResponse{
		TermID:     termID,
		Entries:    entries,
		Blocks:     blocks,
		TotalUnits: totalUnits,
		UnitsLabel: fmt.Sprintf("%.1f credits", totalUnits),
	}, nil
}

// ── 冲突检测 ──

func (s *scheduleService) scheduledSections(ctx context.Context, userID, termID string) ([]schedule.ScheduledSection, error) {
	entries, err := s.repo.ScheduleEntry.ListByUserTerm(ctx, userID, termID)
	if err != nil {
		return nil, err
	}
	sections := make([]schedule.ScheduledSection, 0, len(entries))
	for _, e := range entries {
		sections = append(sections, schedule.ScheduledSection{
			CourseCode:  e.CourseCode,
			CourseTitle: e.CourseTitle,
			SectionID:   e.SectionID,
			Spec:        e.ScheduleSpec,
		})
	}
	return sections, nil
}

func (s *scheduleService) CheckCollisions(ctx context.Context, userID, termID, spec string) ([]string, error) {
	sections, err := s.scheduledSections(ctx, userID, termID)
	if err != nil {
		return nil, err
	}
	return schedule.CheckCollisions(spec, sections), nil
}

// CollisionFuncFor 为筛选管线构造冲突回调
// 课表只加载一次，闭包内反复比对；加载失败时回调恒报无冲突
func (s *scheduleService) CollisionFuncFor(ctx context.Context, userID, termID string) filter.CollisionFunc {
	sections, err := s.scheduledSections(ctx, userID, termID)
	if err != nil {
		s.logger.Warn("加载课表失败，冲突筛选降级", zap.Error(err))
		return nil
	}
	if len(sections) == 0 {
		return nil
	}
	return func(spec string) []string {
		return schedule.CheckCollisions(spec, sections)
	}
}

// ── 手工时间块 ──

// normalizeBlockRange 宽松解析起止时刻并对齐网格
func normalizeBlockRange(startStr, endStr string) (int, int, error) {
	start, ok := schedule.ParseTimeLoose(startStr)
	if !ok {
		return 0, 0, ErrInvalidTimeRange
	}
	end, ok := schedule.ParseTimeLoose(endStr)
	if !ok {
		return 0, 0, ErrInvalidTimeRange
	}
	start = schedule.SnapToGrid(start)
	end = schedule.SnapToGrid(end)
	// 起止颠倒视为笔误，交换后继续；对齐后等长的区间才拒绝
	if start > end {
		start, end = end, start
	}
	if end == start {
		return 0, 0, ErrInvalidTimeRange
	}
	return start, end, nil
}

func (s *scheduleService) CreateManualBlock(ctx context.Context, userID, termID string, req *dto.CreateManualBlockRequest) (*model.ManualBlock, error) {
	start, end, err := normalizeBlockRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	color := req.Color
	if color == "" {
		color = schedule.ColorForCode(req.Label)
	}
	block := &model.ManualBlock{
		UserID:       userID,
		TermID:       termID,
		DayIndex:     schedule.Clamp(req.DayIndex, 0, 6),
		StartMinutes: start,
		EndMinutes:   end,
		Label:        req.Label,
		Color:        color,
	}
	if err := s.repo.ManualBlock.Create(ctx, block); err != nil {
		s.logger.Error("写入手工时间块失败", zap.Error(err))
		return nil, err
	}
	return block, nil
}

func (s *scheduleService) ListManualBlocks(ctx context.Context, userID, termID string) ([]model.ManualBlock, error) {
	return s.repo.ManualBlock.ListByUserTerm(ctx, userID, termID)
}

func (s *scheduleService) UpdateManualBlock(ctx context.Context, userID, blockID string, req *dto.UpdateManualBlockRequest) (*model.ManualBlock, error) {
	block, err := s.repo.ManualBlock.GetByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	if block.UserID != userID {
		return nil, ErrBlockNotFound
	}

	if req.DayIndex != nil {
		block.DayIndex = schedule.Clamp(*req.DayIndex, 0, 6)
	}
	if req.StartTime != nil || req.EndTime != nil {
		startStr := schedule.MinutesToTime(block.StartMinutes)
		endStr := schedule.MinutesToTime(block.EndMinutes)
		if req.StartTime != nil {
			startStr = *req.StartTime
		}
		if req.EndTime != nil {
			endStr = *req.EndTime
		}
		start, end, err := normalizeBlockRange(startStr, endStr)
		if err != nil {
			return nil, err
		}
		block.StartMinutes = start
		block.EndMinutes = end
	}
	if req.Label != nil {
		block.Label = *req.Label
	}
	if req.Color != nil {
		block.Color = *req.Color
	}

	if err := s.repo.ManualBlock.Update(ctx, block); err != nil {
		return nil, err
	}
	return block, nil
}

// ClearManualBlocks 清空该学期的全部手工时间块；空课表清空视为成功（幂等）
func (s *scheduleService) ClearManualBlocks(ctx context.Context, userID, termID string) error {
	_, err := s.repo.ManualBlock.DeleteByUserTerm(ctx, userID, termID)
	return err
}

func (s *scheduleService) DeleteManualBlock(ctx context.Context, userID, blockID string) error {
	affected, err := s.repo.ManualBlock.Delete(ctx, userID, blockID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBlockNotFound
	}
	return nil
}

// [自证通过] internal/service/schedule_service.go
