package model

import "time"

// Persona is one synthesized audience profile created by the analysis
// pipeline's persona stage. Demographic fields are optional; list fields
// default to empty rather than absent.
type Persona struct {
	ID                string    `json:"id"`
	BusinessID        string    `json:"businessId"`
	Name              string    `json:"name"`
	AgeRange          string    `json:"ageRange,omitempty"`
	Gender            string    `json:"gender,omitempty"`
	Location          string    `json:"location,omitempty"`
	Occupation        string    `json:"occupation,omitempty"`
	IncomeLevel       string    `json:"incomeLevel,omitempty"`
	Goals             []string  `json:"goals"`
	PainPoints        []string  `json:"painPoints"`
	Motivations       []string  `json:"motivations"`
	PreferredChannels []string  `json:"preferredChannels"`
	Description       string    `json:"description,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Normalize replaces nil list fields with empty slices.
func (p *Persona) Normalize() {
	if p.Goals == nil {
		p.Goals = []string{}
	}
	if p.PainPoints == nil {
		p.PainPoints = []string{}
	}
	if p.Motivations == nil {
		p.Motivations = []string{}
	}
	if p.PreferredChannels == nil {
		p.PreferredChannels = []string{}
	}
}
