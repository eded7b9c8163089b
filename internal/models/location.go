package models

import "time"

// Location is a confirmed office of a company.
type Location struct {
	ID             uint    `gorm:"primaryKey"`
	CompanyURNID   int64   `gorm:"column:company_urn_id;not null"`
	Country        string  `gorm:"column:country;not null"`
	GeographicArea *string `gorm:"column:geographic_area"`
	City           string  `gorm:"column:city;not null"`
	PostalCode     string  `gorm:"column:postal_code;not null"`
	Line           *string `gorm:"column:line"`
	Headquarter    bool    `gorm:"column:headquarter;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Location) TableName() string {
	return "locations"
}
