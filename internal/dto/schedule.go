package dto

import (
	"github.com/MeloticZ/CourseX/internal/model"
	"github.com/MeloticZ/CourseX/internal/schedule"
)

// ── 排课模块 DTO ──

// AddSectionRequest 排入班次请求
// 班次信息以课程索引中的快照为准，请求只携带定位键
type AddSectionRequest struct {
	CourseCode string `json:"course_code" binding:"required"`
	SectionID  string `json:"section_id"  binding:"required"`
}

// CollisionCheckRequest 冲突检测请求
type CollisionCheckRequest struct {
	Spec string `json:"spec" binding:"required"`
}

// CollisionCheckResponse 冲突检测结果
type CollisionCheckResponse struct {
	Colliding []string `json:"colliding"`
}

// CreateManualBlockRequest 创建手工时间块请求
// 时刻为 "HH:MM" 或 "930"/"0930" 式宽松写法，服务端夹到网格并取整
type CreateManualBlockRequest struct {
	DayIndex  int    `json:"day_index" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"   binding:"required"`
	Label     string `json:"label"      binding:"max=100"`
	Color     string `json:"color"      binding:"max=50"`
}

// UpdateManualBlockRequest 更新手工时间块请求（nil 字段不更新）
type UpdateManualBlockRequest struct {
	DayIndex  *int    `json:"day_index" binding:"omitempty,min=0,max=6"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Label     *string `json:"label" binding:"omitempty,max=100"`
	Color     *string `json:"color" binding:"omitempty,max=50"`
}

// MyScheduleResponse 我的课表
type MyScheduleResponse struct {
	TermID     string                `json:"term_id"`
	Entries    []model.ScheduleEntry `json:"entries"`
	Blocks     []schedule.Block      `json:"blocks"`
	TotalUnits float64               `json:"total_units"`
	UnitsLabel string                `json:"units_label"` // 形如 "16.0 credits"
}
