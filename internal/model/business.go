// Package model defines the core domain records shared across the
// analysis pipeline, plan synthesis, and content generation.
package model

import "time"

// Business is the owning entity for analyses, personas, plans, and content.
type Business struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry,omitempty"`
	WebsiteURL  string    `json:"websiteUrl,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ContentType categorizes a generated piece of content.
type ContentType string

// Content types accepted by the generation endpoints.
const (
	ContentBlogPost           ContentType = "BLOG_POST"
	ContentSocialMediaUpdate  ContentType = "SOCIAL_MEDIA_UPDATE"
	ContentEmailCopy          ContentType = "EMAIL_COPY"
	ContentAdCopy             ContentType = "AD_COPY"
	ContentWebsiteCopy        ContentType = "WEBSITE_COPY"
	ContentProductDescription ContentType = "PRODUCT_DESCRIPTION"
	ContentVideoScript        ContentType = "VIDEO_SCRIPT"
	ContentSEOMeta            ContentType = "SEO_META"
	ContentArticle            ContentType = "ARTICLE"
	ContentNewsletter         ContentType = "NEWSLETTER"
	ContentCaseStudy          ContentType = "CASE_STUDY"
	ContentWhitePaper         ContentType = "WHITE_PAPER"
	ContentLandingPageCopy    ContentType = "LANDING_PAGE_COPY"
	ContentOther              ContentType = "OTHER"
)

var validContentTypes = map[ContentType]bool{
	ContentBlogPost: true, ContentSocialMediaUpdate: true, ContentEmailCopy: true,
	ContentAdCopy: true, ContentWebsiteCopy: true, ContentProductDescription: true,
	ContentVideoScript: true, ContentSEOMeta: true, ContentArticle: true,
	ContentNewsletter: true, ContentCaseStudy: true, ContentWhitePaper: true,
	ContentLandingPageCopy: true, ContentOther: true,
}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return validContentTypes[t]
}

// Label returns a human-readable form, e.g. "blog post" for BLOG_POST.
// Used when embedding the content type into prompts.
func (t ContentType) Label() string {
	out := make([]byte, 0, len(t))
	for i := 0; i < len(t); i++ {
		c := t[i]
		switch {
		case c == '_':
			out = append(out, ' ')
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// Content is a persisted piece of generated content.
type Content struct {
	ID          string      `json:"id"`
	BusinessID  string      `json:"businessId"`
	PlanID      string      `json:"marketingPlanId,omitempty"`
	ContentType ContentType `json:"contentType"`
	Title       string      `json:"title,omitempty"`
	Body        string      `json:"body"`
	PromptUsed  string      `json:"promptUsed,omitempty"`
	ModelUsed   string      `json:"aiModelUsed,omitempty"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
