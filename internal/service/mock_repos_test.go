package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/MeloticZ/CourseX/internal/model"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock ScheduleEntryRepository ──

type mockScheduleEntryRepo struct {
	entries map[string]*model.ScheduleEntry
	seq     int
}

func newMockScheduleEntryRepo() *mockScheduleEntryRepo {
	return &mockScheduleEntryRepo{entries: make(map[string]*model.ScheduleEntry)}
}

func (m *mockScheduleEntryRepo) Create(_ context.Context, entry *model.ScheduleEntry) error {
	if entry.EntryID == "" {
		m.seq++
		entry.EntryID = fmt.Sprintf("entry-%03d", m.seq)
	}
	m.entries[entry.EntryID] = entry
	return nil
}

func (m *mockScheduleEntryRepo) ListByUserTerm(_ context.Context, userID, termID string) ([]model.ScheduleEntry, error) {
	var result []model.ScheduleEntry
	// 按写入顺序返回
	for i := 1; i <= m.seq; i++ {
		e, ok := m.entries[fmt.Sprintf("entry-%03d", i)]
		if !ok {
			continue
		}
		if e.UserID == userID && e.TermID == termID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockScheduleEntryRepo) FindByUserTermSection(_ context.Context, userID, termID, courseCode, sectionID string) (*model.ScheduleEntry, error) {
	for _, e := range m.entries {
		if e.UserID == userID && e.TermID == termID && e.CourseCode == courseCode && e.SectionID == sectionID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleEntryRepo) DeleteByUserTermSection(_ context.Context, userID, termID, courseCode, sectionID string) (int64, error) {
	var n int64
	for id, e := range m.entries {
		if e.UserID == userID && e.TermID == termID && e.CourseCode == courseCode && e.SectionID == sectionID {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

func (m *mockScheduleEntryRepo) DeleteByUserTermCourse(_ context.Context, userID, termID, courseCode string) (int64, error) {
	var n int64
	for id, e := range m.entries {
		if e.UserID == userID && e.TermID == termID && e.CourseCode == courseCode {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

// ── Mock ManualBlockRepository ──

type mockManualBlockRepo struct {
	blocks map[string]*model.ManualBlock
	seq    int
}

func newMockManualBlockRepo() *mockManualBlockRepo {
	return &mockManualBlockRepo{blocks: make(map[string]*model.ManualBlock)}
}

func (m *mockManualBlockRepo) Create(_ context.Context, block *model.ManualBlock) error {
	if block.BlockID == "" {
		m.seq++
		block.BlockID = fmt.Sprintf("block-%03d", m.seq)
	}
	m.blocks[block.BlockID] = block
	return nil
}

func (m *mockManualBlockRepo) GetByID(_ context.Context, id string) (*model.ManualBlock, error) {
	if b, ok := m.blocks[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockManualBlockRepo) ListByUserTerm(_ context.Context, userID, termID string) ([]model.ManualBlock, error) {
	var result []model.ManualBlock
	for i := 1; i <= m.seq; i++ {
		b, ok := m.blocks[fmt.Sprintf("block-%03d", i)]
		if !ok {
			continue
		}
		if b.UserID == userID && b.TermID == termID {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockManualBlockRepo) Update(_ context.Context, block *model.ManualBlock) error {
	m.blocks[block.BlockID] = block
	return nil
}

func (m *mockManualBlockRepo) Delete(_ context.Context, userID, blockID string) (int64, error) {
	b, ok := m.blocks[blockID]
	if !ok || b.UserID != userID {
		return 0, nil
	}
	delete(m.blocks, blockID)
	return 1, nil
}

func (m *mockManualBlockRepo) DeleteByUserTerm(_ context.Context, userID, termID string) (int64, error) {
	var n int64
	for id, b := range m.blocks {
		if b.UserID == userID && b.TermID == termID {
			delete(m.blocks, id)
			n++
		}
	}
	return n, nil
}
