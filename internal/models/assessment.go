package models

// CompetencyResult is the score of one competency and the level it falls in.
type CompetencyResult struct {
	Score int    `json:"score"`
	Level string `json:"level"`
}

// InstrumentResult is the scored outcome of one survey instrument.
type InstrumentResult struct {
	Instrument    string                      `json:"instrument"`
	PerCompetency map[string]CompetencyResult `json:"perCompetency"`
	Order         []string                    `json:"order"`
	Total         int                         `json:"total"`
	OverallLevel  string                      `json:"overallLevel"`
}

// AnswerEvaluation is the judge's verdict for one interview answer.
type AnswerEvaluation struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

type InterviewResult struct {
	TotalScore  int                `json:"totalScore"`
	Evaluations []AnswerEvaluation `json:"evaluations"`
}
