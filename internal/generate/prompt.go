// Package generate builds content-generation prompts, picks the model for
// the job, and relays token streams from the completion provider to SSE
// consumers.
package generate

import (
	"fmt"
	"strings"

	"github.com/marketsmith/marketsmith/internal/model"
)

// Length presets accepted by Params.Length.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Params carries the caller's content-generation request.
type Params struct {
	BusinessID      string            `json:"businessId"`
	ContentType     model.ContentType `json:"contentType"`
	Tone            string            `json:"tone,omitempty"`
	Style           string            `json:"style,omitempty"`
	Keywords        []string          `json:"keywords,omitempty"`
	TargetPersonaID string            `json:"targetAudienceId,omitempty"`
	PlanID          string            `json:"marketingPlanId,omitempty"`
	CustomPrompt    string            `json:"customPrompt,omitempty"`
	Length          string            `json:"length,omitempty"`
	Model           string            `json:"model,omitempty"`
}

// customPromptUpgradeChars is the custom-prompt size past which generation
// switches to the more capable model.
const customPromptUpgradeChars = 200

// SelectModel picks the completion model for the request. An explicit
// Params.Model is the starting point, but complex work upgrades to the
// power model regardless: long content, white papers, case studies, large
// custom prompts, and the more demanding styles.
func SelectModel(p Params, fastModel, powerModel string) string {
	chosen := fastModel
	if p.Model != "" {
		chosen = p.Model
	}
	if p.Length == LengthLong ||
		p.ContentType == model.ContentWhitePaper ||
		p.ContentType == model.ContentCaseStudy ||
		len(p.CustomPrompt) > customPromptUpgradeChars {
		chosen = powerModel
	}
	if p.Style == "highly creative" || p.Style == "technical deep-dive" {
		chosen = powerModel
	}
	return chosen
}

// BuildPrompt assembles the final generation prompt from the request and
// the stored business context. plan and persona are optional.
func BuildPrompt(p Params, business *model.Business, plan *model.Plan, persona *model.Persona) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a piece of content for the business %q.\n", business.Name)
	fmt.Fprintf(&b, "Business Description: %s.\n", businessBlurb(business))
	fmt.Fprintf(&b, "Content Type: %s.\n", p.ContentType.Label())

	if p.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", p.Tone)
	}
	if p.Style != "" {
		fmt.Fprintf(&b, "Style: %s.\n", p.Style)
	}
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords to include: %s.\n", strings.Join(p.Keywords, ", "))
	}
	if p.Length != "" {
		fmt.Fprintf(&b, "Desired Length: %s.\n", p.Length)
	}

	switch {
	case persona != nil:
		fmt.Fprintf(&b, "\nTarget Audience Persona:\nName: %s\nDescription: %s\nPreferred Channels: %s\n",
			persona.Name, personaBlurb(persona), strings.Join(persona.PreferredChannels, ", "))
	case p.TargetPersonaID != "":
		b.WriteString("Target Audience: General audience for this type of business, or as implied by other parameters.\n")
	}

	if plan != nil {
		names := make([]string, 0, len(plan.Objectives))
		for _, o := range plan.Objectives {
			names = append(names, string(o))
		}
		fmt.Fprintf(&b, "\nThis content should align with the marketing plan titled %q.\nObjectives: %s\nKey Messages: %s\n",
			plan.Title, strings.Join(names, ", "), strings.Join(plan.KeyMessages, ", "))
	}

	if p.CustomPrompt != "" {
		fmt.Fprintf(&b, "\nUser's Specific Instructions/Prompt: %q\n", p.CustomPrompt)
	}

	fmt.Fprintf(&b, "\nPlease generate the %s now.", p.ContentType.Label())
	return b.String()
}

func businessBlurb(business *model.Business) string {
	if business.Description != "" {
		return business.Description
	}
	if business.Industry != "" {
		return business.Industry
	}
	return "An innovative company"
}

func personaBlurb(persona *model.Persona) string {
	if persona.Description != "" {
		return persona.Description
	}
	return fmt.Sprintf("Goals: %s, Pain Points: %s",
		strings.Join(persona.Goals, ", "), strings.Join(persona.PainPoints, ", "))
}

func systemPrompt(t model.ContentType) string {
	return fmt.Sprintf("You are a professional %s writer for businesses, skilled in creating engaging content.", t.Label())
}
