package models

import "time"

type People struct {
	ID           uint    `gorm:"primaryKey"`
	IndustryName *string `gorm:"column:industry_name"`
	FirstName    string  `gorm:"column:first_name;not null"`
	LastName     string  `gorm:"column:last_name;not null"`
	Student      bool    `gorm:"column:student;not null"`
	Country      string  `gorm:"column:country;not null"`
	City         *string `gorm:"column:city"`

	// Education and Experience are inserted together with the person and
	// carry its id in person_id.
	Education  []Education  `gorm:"foreignKey:PersonID"`
	Experience []Experience `gorm:"foreignKey:PersonID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (People) TableName() string {
	return "people"
}
