package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/models"
)

// RubricDocType tags interview rubric passages in the vector store.
const RubricDocType = "interview_rubric"

const (
	rubricPassages      = 3
	judgeTemperature    = 0.2
	extractTemperature  = 0.1
	maxCVCharsForPrompt = 30000
)

const answerEvaluationSchema = `{
  "type": "object",
  "required": ["evaluations"],
  "properties": {
    "evaluations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["score"],
        "properties": {
          "score": {"type": "integer"},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`

const skillExtractionSchema = `{
  "type": "object",
  "required": ["skills"],
  "properties": {
    "skills": {"type": "array", "items": {"type": "string"}}
  }
}`

// SemanticEvaluator is the judge behind interview scoring and CV skill
// extraction.
type SemanticEvaluator interface {
	EvaluateAnswers(ctx context.Context, questions, answers []string) ([]models.AnswerEvaluation, error)
	ExtractSkills(ctx context.Context, text string) ([]string, error)
}

type geminiEvaluator struct {
	geminiService GeminiService
	qdrantService QdrantService
	promptBuilder *PromptBuilder
	maxRetries    int
	answerSchema  *gojsonschema.Schema
	skillSchema   *gojsonschema.Schema
	log           logger.Logger
}

// NewSemanticEvaluator builds the Gemini-backed judge. qdrantService may be
// nil, in which case answers are graded without rubric context.
func NewSemanticEvaluator(
	geminiService GeminiService,
	qdrantService QdrantService,
	maxRetries int,
	log logger.Logger,
) (SemanticEvaluator, error) {
	answerSchema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(answerEvaluationSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile answer schema: %w", err)
	}
	skillSchema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(skillExtractionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile skill schema: %w", err)
	}

	return &geminiEvaluator{
		geminiService: geminiService,
		qdrantService: qdrantService,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		answerSchema:  answerSchema,
		skillSchema:   skillSchema,
		log:           log.WithFields(map[string]interface{}{"component": "semantic_evaluator"}),
	}, nil
}

func (e *geminiEvaluator) EvaluateAnswers(ctx context.Context, questions, answers []string) ([]models.AnswerEvaluation, error) {
	rubric := e.retrieveRubric(ctx, questions)
	prompt := e.promptBuilder.BuildInterviewEvaluationPrompt(questions, answers, rubric)

	response, err := e.geminiService.GenerateJSONWithRetry(ctx, prompt, judgeTemperature, e.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate answers: %w", err)
	}

	var parsed struct {
		Evaluations []models.AnswerEvaluation `json:"evaluations"`
	}
	if err := parseJudgeResponse(response, e.answerSchema, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse answer evaluations: %w", err)
	}

	e.log.Info("interview answers evaluated", map[string]interface{}{
		"questions":   len(questions),
		"evaluations": len(parsed.Evaluations),
	})
	return parsed.Evaluations, nil
}

func (e *geminiEvaluator) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	text = truncateRunes(text, maxCVCharsForPrompt)
	prompt := e.promptBuilder.BuildSkillExtractionPrompt(text)

	response, err := e.geminiService.GenerateJSONWithRetry(ctx, prompt, extractTemperature, e.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to extract skills: %w", err)
	}

	var parsed struct {
		Skills []string `json:"skills"`
	}
	if err := parseJudgeResponse(response, e.skillSchema, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extracted skills: %w", err)
	}
	return parsed.Skills, nil
}

// retrieveRubric returns formatted rubric passages, or the no-rubric notice
// when retrieval is unavailable.
func (e *geminiEvaluator) retrieveRubric(ctx context.Context, questions []string) string {
	if e.qdrantService == nil {
		return FormatRAGContext(nil)
	}

	query := e.promptBuilder.BuildRetrievalQuery(RubricDocType, questions)
	embedding, err := e.geminiService.GenerateEmbedding(ctx, query)
	if err != nil {
		e.log.WithError(err).Warn("rubric embedding failed, grading without rubric", nil)
		return FormatRAGContext(nil)
	}

	results, err := e.qdrantService.SearchSimilar(ctx, embedding, RubricDocType, rubricPassages)
	if err != nil {
		e.log.WithError(err).Warn("rubric search failed, grading without rubric", nil)
		return FormatRAGContext(nil)
	}
	return FormatRAGContext(results)
}

func parseJudgeResponse(response string, schema *gojsonschema.Schema, target interface{}) error {
	jsonStr := extractJSON(response)

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonStr))
	if err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("response does not match schema: %s", strings.Join(problems, "; "))
	}

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// extractJSON strips markdown fences and surrounding prose from a model reply.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}
