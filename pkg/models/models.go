package models

import (
	"strconv"
	"time"
)

// ScrapedAtFormat is the fixed timestamp format used in persisted records
const ScrapedAtFormat = "2006-01-02 15:04:05"

// Profile is one extracted profile record. Every field is optional: a record
// with all fields empty is still valid and persisted.
type Profile struct {
	ProfileURL     string          `json:"profile_url"`
	ScrapedAt      string          `json:"scraped_at"`
	Name           string          `json:"name"`
	Headline       string          `json:"headline"`
	Location       string          `json:"location"`
	About          string          `json:"about"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []string        `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Languages      []string        `json:"languages"`
}

// Experience is one work history entry
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Dates       string `json:"dates"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Education is one education entry
type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Dates  string `json:"dates"`
}

// Certification is one credential entry
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// NewProfile creates a Profile stamped with the current capture time
func NewProfile(profileURL string, now time.Time) *Profile {
	return &Profile{
		ProfileURL: profileURL,
		ScrapedAt:  now.Format(ScrapedAtFormat),
	}
}

// CSVHeader is the fixed column set of the tabular projection.
// Repeated substructures are reduced to their counts; the JSON store
// remains the source of truth.
func CSVHeader() []string {
	return []string{
		"profile_url", "scraped_at", "name", "headline", "location", "about",
		"num_experiences", "num_education", "num_skills",
		"num_certifications", "num_languages",
	}
}

// FlatRow returns the profile flattened into one CSV row, column order
// matching CSVHeader.
func (p *Profile) FlatRow() []string {
	return []string{
		p.ProfileURL,
		p.ScrapedAt,
		p.Name,
		p.Headline,
		p.Location,
		p.About,
		strconv.Itoa(len(p.Experience)),
		strconv.Itoa(len(p.Education)),
		strconv.Itoa(len(p.Skills)),
		strconv.Itoa(len(p.Certifications)),
		strconv.Itoa(len(p.Languages)),
	}
}
