package ai

import (
	"context"
	"fmt"
	"strings"
)

// Provider is one AI text-generation backend. Implementations return an
// error or empty text when the provider is out of quota or unreachable.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnswerFacts is the profile context embedded in a screening-question prompt.
type AnswerFacts struct {
	Salary            string
	NoticePeriod      string
	Location          string
	Relocation        string
	WorkAuthorization string
	Education         string
}

func (f AnswerFacts) String() string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "- %s: %s\n", label, value)
		}
	}
	line("Expected Salary (CTC)", f.Salary)
	line("Notice Period", f.NoticePeriod)
	line("Current Location", f.Location)
	line("Relocation", f.Relocation)
	line("Work Authorization", f.WorkAuthorization)
	line("Education", f.Education)
	return b.String()
}

// BuildAnswerPrompt creates the single prompt used to answer one form question.
func BuildAnswerPrompt(question string, facts AnswerFacts, resumeExcerpt string) string {
	return fmt.Sprintf(`You are a smart job applicant. Answer this form question based on your profile facts.
Question: %s

YOUR FACTS:
%s
Resume Snippet:
%s

INSTRUCTIONS:
1. If asking for Salary/CTC number, output ONLY the number.
2. If asking for Years of Experience, calculate roughly from the resume and output ONLY the number, or 0 if fresher.
3. If it is a yes/no question, answer Yes or No.
4. Keep answer extremely concise (1-5 words). No quotes, no explanation.
Answer:`, question, facts, resumeExcerpt)
}

// BuildTailorPrompt asks for a plain-text resume body rewritten for one posting.
func BuildTailorPrompt(company, title, jobDescription, resumeText string) string {
	return fmt.Sprintf(`You are an expert ATS-friendly resume writer.
Role: %s at %s
Task: Rewrite the resume below to match the job description.
1. Keep company names, durations, education and certifications exactly as they are.
2. Re-prioritize and rewrite the summary and responsibilities towards the keywords in the job description. Do not make up fake experience.
3. Return ONLY the clean plain-text resume body. No markdown, no commentary.

Job Description:
%s

Resume:
%s`, title, company, jobDescription, resumeText)
}

// CleanMarkdown removes code fences if the AI model tries to be helpful.
func CleanMarkdown(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if nl := strings.IndexByte(content, '\n'); nl >= 0 && !strings.ContainsAny(content[:nl], " \t") {
			// drop the language tag ("```text", "```json")
			content = content[nl+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
