package models

import (
	"time"
)

const DefaultCurrency = "CNY"

// Source is the upstream origin postings are ingested from.
type Source struct {
	ID      uint    `gorm:"primaryKey"`
	Name    string  `gorm:"size:100;not null;uniqueIndex"`
	BaseURL *string `gorm:"size:255"`
}

// Company is identified by its exact name. City holds the first reported value.
type Company struct {
	ID   uint    `gorm:"primaryKey"`
	Name string  `gorm:"size:255;not null;uniqueIndex"`
	City *string `gorm:"column:location_city;size:100"`
}

// Job is a single posting. (Title, CompanyID, SourceID) identifies a posting for
// deduplication. The index over it is not unique, callers check Exists before Insert.
type Job struct {
	ID          uint      `gorm:"primaryKey"`
	SourceID    uint      `gorm:"not null;index:idx_jobs_dedup_key,priority:3"`
	Source      Source    `gorm:"constraint:OnDelete:RESTRICT"`
	CompanyID   uint      `gorm:"not null;index:idx_jobs_dedup_key,priority:2"`
	Company     Company   `gorm:"constraint:OnDelete:RESTRICT"`
	Title       string    `gorm:"size:200;not null;index:idx_jobs_dedup_key,priority:1"`
	City        *string   `gorm:"column:location_city;size:100"`
	SalaryMin   *int
	SalaryMax   *int
	Currency    string    `gorm:"size:10;default:CNY"`
	Description string    `gorm:"type:text"`
	PostedAt    time.Time `gorm:"type:date"`
	CreatedAt   time.Time
}

func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
