package repository

import "gorm.io/gorm"

// Repository 全 Repository の集約
//
// 4 つの外部ストア（枠・希望・履歴・名簿）と割当ランの保管庫を束ねる。
// いずれも失敗はエラーとして返す。空のテーブルは「空のスライス＋nil」で
// あり、ストア障害を空データに読み替えることはしない。
type Repository struct {
	Slot          SlotRepository
	Student       StudentRepository
	LessonRequest LessonRequestRepository
	History       HistoryRepository
	AllocationRun AllocationRunRepository
}

// NewRepository Repository 集約を生成する
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Slot:          NewSlotRepo(db),
		Student:       NewStudentRepo(db),
		LessonRequest: NewLessonRequestRepo(db),
		History:       NewHistoryRepo(db),
		AllocationRun: NewAllocationRunRepo(db),
	}
}
