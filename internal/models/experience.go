package models

import "time"

type Experience struct {
	ID          uint    `gorm:"primaryKey"`
	PersonID    *uint   `gorm:"column:person_id"`
	Location    *string `gorm:"column:location"`
	CompanyName string  `gorm:"column:company_name;not null"`
	CompanyURN  *string `gorm:"column:company_urn"`
	Title       string  `gorm:"column:title;not null"`
	Start       *int    `gorm:"column:start"`
	End         *int    `gorm:"column:end"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Experience) TableName() string {
	return "experience"
}
