package models

import (
	"time"

	"github.com/lib/pq"
)

type Company struct {
	URNID        int64          `gorm:"column:urn_id;primaryKey;autoIncrement:false"`
	URL          string         `gorm:"column:url;not null"`
	StaffCount   int            `gorm:"column:staff_count;not null"`
	Specialities pq.StringArray `gorm:"column:specialities;type:varchar[];not null"`
	Name         string         `gorm:"column:name;not null"`
	Symbol       string         `gorm:"column:symbol;not null"`
	Locations    []Location     `gorm:"foreignKey:CompanyURNID;references:URNID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Company) TableName() string {
	return "company"
}
