package model

// ManualBlock 手工时间块表 — 对应 manual_blocks
// 用户自行在课表上划出的占用时段（实习、社团等），与课程无关
type ManualBlock struct {
	BlockID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"block_id"`
	UserID       string `gorm:"type:uuid;not null;index:idx_block_user_term"   json:"user_id"`
	TermID       string `gorm:"type:varchar(20);not null;index:idx_block_user_term" json:"term_id"`
	DayIndex     int    `gorm:"type:smallint;not null"                         json:"day_index"` // 0=周日 .. 6=周六
	StartMinutes int    `gorm:"type:smallint;not null"                         json:"start_minutes"`
	EndMinutes   int    `gorm:"type:smallint;not null"                         json:"end_minutes"`
	Label        string `gorm:"type:varchar(100)"                              json:"label"`
	Color        string `gorm:"type:varchar(50)"                               json:"color"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (ManualBlock) TableName() string { return "manual_blocks" }
