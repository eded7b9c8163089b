package models

import "time"

type Education struct {
	ID         uint    `gorm:"primaryKey"`
	PersonID   *uint   `gorm:"column:person_id"`
	Degree     *string `gorm:"column:degree"`
	Activities *string `gorm:"column:activities"`
	Name       string  `gorm:"column:name;not null"`
	Field      *string `gorm:"column:field"`
	Start      *int    `gorm:"column:start"`
	End        *int    `gorm:"column:end"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Education) TableName() string {
	return "education"
}
