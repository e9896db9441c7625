package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleSystem = "system"

	// Inputs larger than this are cut before prompting.
	MaxCVRunes          = 12000
	MaxJobPostingRunes  = 8000
	MaxCoverLetterWords = 400

	AssistantSystemPrompt = `You are a careful career assistant helping a candidate apply for jobs.
Write in the candidate's voice. Never invent employers, degrees, dates or certifications that are not in the CV.
Prefer concrete, measurable achievements. Plain text only, no markdown headings.`

	CoverLetterPrompt = `Write a cover letter of at most %d words for the role below.

Company: %s
Role: %s
Preferred tone: %s

Job posting:
"""
%s
"""

Candidate CV:
"""
%s
"""

Open with why this role, map two or three CV achievements to the posting's requirements, and close with a short call to action.`

	CVSuggestionsPrompt = `Review the CV against the job posting and suggest concrete edits.

Job posting:
"""
%s
"""

Candidate CV:
"""
%s
"""

Reply with a numbered list of at most %d suggestions. Each suggestion names the CV section, quotes the current text when there is one, and gives the rewritten text.`
)
