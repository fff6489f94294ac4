package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildInterviewEvaluationPrompt asks for one score per answer, in order.
func (pb *PromptBuilder) BuildInterviewEvaluationPrompt(questions, answers []string, rubricContext string) string {
	var qa strings.Builder
	for i := range questions {
		fmt.Fprintf(&qa, "QUESTION %d:\n%s\nANSWER %d:\n%s\n\n", i+1, strings.TrimSpace(questions[i]), i+1, strings.TrimSpace(answers[i]))
	}

	return fmt.Sprintf(`You are an admissions interviewer grading a candidate's written interview for an international study program.

SCORING RUBRIC:
%s

INTERVIEW:
%s
Score every answer from 0 to 100 for relevance, depth and clarity. An empty or off-topic answer scores 0.

Return ONLY a JSON object in this format, with exactly %d evaluations in question order:
{
  "evaluations": [
    {"score": <integer 0-100>, "explanation": "<one or two sentences>"}
  ]
}`, rubricContext, qa.String(), len(questions))
}

// BuildSkillExtractionPrompt asks for the skills stated or clearly implied by a CV.
func (pb *PromptBuilder) BuildSkillExtractionPrompt(cvText string) string {
	return fmt.Sprintf(`You are an admissions officer reading a candidate's CV.

CANDIDATE CV:
%s

List the candidate's professional skills, both technical and interpersonal. Use short labels (1-4 words) and do not invent skills that the CV does not support.

Return ONLY a JSON object in this format:
{
  "skills": ["<skill>", "<skill>"]
}`, cvText)
}

// BuildRetrievalQuery creates the query used to look up rubric passages.
func (pb *PromptBuilder) BuildRetrievalQuery(docType string, questions []string) string {
	switch docType {
	case RubricDocType:
		return "Interview answer evaluation criteria: " + strings.Join(questions, " ")
	default:
		return strings.Join(questions, " ")
	}
}

// FormatRAGContext renders retrieved passages for a prompt.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return "No rubric available. Use general admissions interview judgement."
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Rubric %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
