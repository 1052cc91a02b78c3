package model

import "time"

// CampaignObjective tags a marketing plan with a campaign goal.
type CampaignObjective string

// Campaign objectives accepted by plan synthesis.
const (
	ObjectiveBrandAwareness     CampaignObjective = "BRAND_AWARENESS"
	ObjectiveLeadGeneration     CampaignObjective = "LEAD_GENERATION"
	ObjectiveSalesConversion    CampaignObjective = "SALES_CONVERSION"
	ObjectiveCustomerEngagement CampaignObjective = "CUSTOMER_ENGAGEMENT"
	ObjectiveWebsiteTraffic     CampaignObjective = "WEBSITE_TRAFFIC"
	ObjectiveProductLaunch      CampaignObjective = "PRODUCT_LAUNCH"
	ObjectiveMarketEducation    CampaignObjective = "MARKET_EDUCATION"
	ObjectiveCommunityBuilding  CampaignObjective = "COMMUNITY_BUILDING"
)

var validObjectives = map[CampaignObjective]bool{
	ObjectiveBrandAwareness: true, ObjectiveLeadGeneration: true,
	ObjectiveSalesConversion: true, ObjectiveCustomerEngagement: true,
	ObjectiveWebsiteTraffic: true, ObjectiveProductLaunch: true,
	ObjectiveMarketEducation: true, ObjectiveCommunityBuilding: true,
}

// Valid reports whether o is a known campaign objective.
func (o CampaignObjective) Valid() bool {
	return validObjectives[o]
}

// Strategy is one plan strategy with its concrete tactics.
type Strategy struct {
	Name        string   `json:"strategyName"`
	Description string   `json:"description,omitempty"`
	Tactics     []string `json:"tactics"`
}

// Plan is a synthesized marketing plan built from a completed analysis and
// a non-empty set of target personas under the same business.
type Plan struct {
	ID               string              `json:"id"`
	BusinessID       string              `json:"businessId"`
	AnalysisID       string              `json:"marketAnalysisId"`
	Title            string              `json:"title"`
	Objectives       []CampaignObjective `json:"objectives"`
	TargetPersonaIDs []string            `json:"targetAudienceIds"`
	KeyMessages      []string            `json:"keyMessages"`
	Channels         []string            `json:"channels"`
	KPIs             []string            `json:"kpis"`
	Strategies       []Strategy          `json:"strategies"`
	Timeline         string              `json:"timeline,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// Normalize replaces nil list fields with empty slices.
func (p *Plan) Normalize() {
	if p.Objectives == nil {
		p.Objectives = []CampaignObjective{}
	}
	if p.TargetPersonaIDs == nil {
		p.TargetPersonaIDs = []string{}
	}
	if p.KeyMessages == nil {
		p.KeyMessages = []string{}
	}
	if p.Channels == nil {
		p.Channels = []string{}
	}
	if p.KPIs == nil {
		p.KPIs = []string{}
	}
	if p.Strategies == nil {
		p.Strategies = []Strategy{}
	}
}
