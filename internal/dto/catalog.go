package dto

import "github.com/MeloticZ/CourseX/internal/filter"

// ── 目录模块 DTO ──

// TermListResponse 学期列表
type TermListResponse struct {
	Terms       []string `json:"terms"`
	DefaultTerm string   `json:"default_term,omitempty"`
}

// FilterRequest 课程筛选请求
// 筛选条件直接复用引擎的 State 结构；省略的字段落在中性默认值上
type FilterRequest struct {
	Filters filter.State `json:"filters"`
}
