package models

import "time"

// Course carries one price point per billing cadence.
type Course struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"not null;index"`
	Description     string    `json:"description"`
	PriceMonthly    float64   `json:"price_monthly" gorm:"type:decimal(10,2)"`
	PriceQuarterly  float64   `json:"price_quarterly" gorm:"type:decimal(10,2)"`
	PriceSemiAnnual float64   `json:"price_semi_annual" gorm:"type:decimal(10,2)"`
	CreatedAt       time.Time `json:"created_at"`
}
