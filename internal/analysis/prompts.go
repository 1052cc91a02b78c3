package analysis

import "fmt"

const (
	swotSystem       = "You are a business analyst specializing in SWOT analysis."
	competitorSystem = "You are a market research analyst identifying business competitors."
	personaSystem    = "You are a marketing strategist creating detailed customer personas."
)

func swotPrompt(content string) string {
	return `Analyze the following business information scraped from their website and provide a SWOT analysis (Strengths, Weaknesses, Opportunities, Threats). Present the output as a JSON object with keys "strengths", "weaknesses", "opportunities", "threats", where each key holds an array of strings. Business content: """` + content + `"""`
}

func competitorPrompt(content string) string {
	return `Based on the following business information, identify 3-5 key competitors. For each competitor, provide their name, website (if inferable or commonly known), and a brief list of their perceived strengths and weaknesses. Present the output as a JSON array of objects, where each object has keys "name", "website", "strengths" (array of strings), and "weaknesses" (array of strings). Business content: """` + content + `"""`
}

func personaPrompt(index, total int, content string) string {
	return fmt.Sprintf(`Based on the business information provided, create a detailed audience persona. This is persona %d of %d. Include: name, ageRange, gender, location (general), occupation, incomeLevel (general), goals (array), painPoints (array), motivations (array), and preferredChannels (array for marketing). Present the output as a single JSON object. Business content: """%s"""`, index, total, content)
}
