package services

import (
	"fmt"
	"strings"

	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/utils"
)

const (
	ApologyAnswer   = "I apologize, but I'm having trouble processing your request right now. Please try again later."
	LegalDisclaimer = "This is informational only and not legal advice. Always confirm with official embassies/authorities."

	programmeContextLimit  = 8
	universityContextLimit = 5
	planStepContextLimit   = 5
	transcriptMessages     = 6
	transcriptChars        = 150
	priorTurns             = 3
	priorTurnChars         = 300
)

const notSpecified = "Not specified"

var counselorSystemPrompt = `You are a friendly, proactive AI counselor helping international students study in Germany. Your role is to:

1. **Ask Questions Proactively**: When information is missing, ask targeted questions in a natural, conversational way. Don't just answer, help gather what you need to give the best recommendations.

2. **Provide Specific Recommendations**: When students ask about programmes or universities, use the SPECIFIC details from the available programmes list: university name, programme title, tuition fees, language requirements, duration, application deadlines and city.

   NEVER say "visit the website". Provide the actual information from the database!

3. **Information Gathering Order**: When the profile is incomplete, ask in this order:
   - Current degree/education level
   - Desired field of study
   - Desired degree level (Bachelor/Master/PhD)
   - IELTS/English proficiency score
   - German proficiency (if relevant)
   - Budget/financial situation (funds available per year)
   - Preferred cities in Germany

4. **Be Conversational**: Speak like a helpful human counselor. Be warm and encouraging.

5. **Immigration Disclaimer**: For visa/immigration questions, always include: "` + LegalDisclaimer + `"

6. **Database First**: Check the provided programmes/universities before giving generic advice.

IMPORTANT: If programmes are provided in the context, list them with specific details (fees, requirements, deadlines). Don't just mention names, give actionable information!`

func orNotSpecified(s string) string { return utils.OrDefault(s, notSpecified) }

func formatProfile(p models.Profile) string {
	cities := notSpecified
	if len(p.PreferredCities) > 0 {
		cities = strings.Join(p.PreferredCities, ", ")
	}
	return fmt.Sprintf(`Student Profile:
- Nationality: %s
- Current Education: %s in %s
- GPA/Marks: %s
- Desired Study Level: %s
- Desired Field: %s
- Preferred Cities: %s
- English Level: %s
- German Level: %s
- Budget/Funds: %s
`,
		orNotSpecified(p.Nationality),
		orNotSpecified(p.HighestEducationLevel), orNotSpecified(p.HighestEducationField),
		orNotSpecified(p.GPAOrMarks),
		orNotSpecified(p.DesiredStudyLevel),
		orNotSpecified(p.DesiredField),
		cities,
		orNotSpecified(p.EnglishLevel),
		orNotSpecified(p.GermanLevel),
		orNotSpecified(p.BudgetFunds),
	)
}

func formatProgrammes(progs []models.Programme) string {
	var sb strings.Builder
	sb.WriteString("\n=== Available Programmes in Database ===\n")
	for i, p := range progs {
		if i == programmeContextLimit {
			break
		}
		tuition := "Free/Not specified"
		if p.TuitionEURSemester != nil && *p.TuitionEURSemester > 0 {
			tuition = fmt.Sprintf("€%d/semester", *p.TuitionEURSemester)
		}
		duration := notSpecified
		if p.DurationSemesters != nil && *p.DurationSemesters > 0 {
			duration = fmt.Sprintf("%d semesters", *p.DurationSemesters)
		}
		lang := notSpecified
		if len(p.Language) > 0 {
			lang = strings.Join(p.Language, ", ")
		}
		fmt.Fprintf(&sb, `
Programme: %s
- University: %s
- Degree: %s
- City: %s
- Language: %s
- Tuition: %s
- Duration: %s
- Application Deadline: %s
- Source URL: %s
---
`,
			utils.OrDefault(p.Title, "Unknown"),
			utils.OrDefault(p.UniversityName, "Unknown"),
			orNotSpecified(p.DegreeType),
			orNotSpecified(p.City),
			lang, tuition, duration,
			orNotSpecified(p.ApplicationDeadline),
			utils.OrDefault(p.SourceURL, "Not available"),
		)
	}
	return sb.String()
}

func formatUniversities(unis []models.University) string {
	var sb strings.Builder
	sb.WriteString("\n=== Available Universities in Database ===\n")
	for i, u := range unis {
		if i == universityContextLimit {
			break
		}
		fmt.Fprintf(&sb, "\nUniversity: %s\n- State: %s\n- Website: %s\n---\n",
			utils.OrDefault(u.Name, "Unknown"),
			orNotSpecified(u.StateProvince),
			utils.OrDefault(u.Website(), "Not available"),
		)
	}
	return sb.String()
}

func formatAssessment(a *models.Assessment) string {
	gaps := "None identified"
	if len(a.KeyGaps) > 0 {
		gaps = strings.Join(a.KeyGaps, ", ")
	}
	return fmt.Sprintf("Current Assessment:\n- Feasibility: %s\n- Suggested Path: %s\n- Key Gaps: %s\n",
		utils.OrDefault(a.OverallFeasibility, "Not assessed"),
		orNotSpecified(a.SuggestedEntryPath),
		gaps,
	)
}

func formatPlan(p *models.Plan) string {
	var sb strings.Builder
	sb.WriteString("Current Action Plan:\n")
	for i, s := range p.Steps {
		if i == planStepContextLimit {
			break
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", utils.OrDefault(s.Title, "Step"), utils.OrDefault(s.Status, models.StepStatusPending))
	}
	return sb.String()
}

func formatTranscript(history []models.Message) string {
	if len(history) > transcriptMessages {
		history = history[len(history)-transcriptMessages:]
	}
	var sb strings.Builder
	sb.WriteString("\nRecent Conversation:\n")
	for _, m := range history {
		fmt.Fprintf(&sb, "%s: %s\n", utils.Capitalize(utils.OrDefault(m.Sender, models.SenderUser)), utils.Truncate(m.Text, transcriptChars))
	}
	return sb.String()
}

func stateGuidance(missing []string, next string, st models.ConversationState) string {
	if len(missing) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nConversation State:\n")
	fmt.Fprintf(&sb, "- Missing information: %s\n", strings.Join(missing, ", "))
	if next != "" {
		fmt.Fprintf(&sb, "- Next priority question: %s\n", next)
	}
	fmt.Fprintf(&sb, "- Recently asked questions: %s\n", utils.OrDefault(strings.Join(st.RecentlyAsked(recentQuestionWindow), ", "), "None"))
	sb.WriteString("\nIMPORTANT: Ask for missing information in a natural, conversational way. Don't ask multiple questions at once, ask one at a time.")
	return sb.String()
}

// addSource appends a citation unless its URL is empty or already present.
func addSource(sources []models.Source, title, url string) []models.Source {
	if strings.TrimSpace(url) == "" {
		return sources
	}
	for _, s := range sources {
		if s.URL == url {
			return sources
		}
	}
	return append(sources, models.Source{Title: title, URL: url})
}
