package services

import (
	"SocialPulse/models"
	"SocialPulse/repositories"
	"errors"
	"sort"
)

var ErrInvalidSentiment = errors.New("sentiment components must be fractions between 0 and 1")

type CreateAnalysisInput struct {
	PostID            string   `json:"post_id"`
	SentimentPositive float64  `json:"sentiment_positive"`
	SentimentNegative float64  `json:"sentiment_negative"`
	SentimentNeutral  float64  `json:"sentiment_neutral"`
	ConfidenceScore   float64  `json:"confidence_score"`
	Keywords          []string `json:"keywords"`
	AnalysisModel     string   `json:"analysis_model"`
	Summary           string   `json:"summary"`
}

// AnalysisStats is the aggregate view over everything a user has analyzed.
type AnalysisStats struct {
	TotalAnalyses         int                `json:"total_analyses"`
	AverageConfidence     float64            `json:"average_confidence"`
	SentimentDistribution map[string]float64 `json:"sentiment_distribution"`
	TopKeywords           []KeywordCount     `json:"top_keywords"`
	ModelUsage            map[string]int     `json:"model_usage"`
}

type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// AnalysisService stores externally computed sentiment results and serves
// aggregate statistics. Posts transition to completed when an analysis for
// them lands.
type AnalysisService struct {
	analyses repositories.AnalysisRepository
	posts    repositories.PostRepository
}

func NewAnalysisService(analyses repositories.AnalysisRepository, posts repositories.PostRepository) *AnalysisService {
	return &AnalysisService{analyses: analyses, posts: posts}
}

func (s *AnalysisService) Create(userID uint, input CreateAnalysisInput) (*models.Analysis, error) {
	for _, v := range []float64{input.SentimentPositive, input.SentimentNegative, input.SentimentNeutral, input.ConfidenceScore} {
		if v < 0 || v > 1 {
			return nil, ErrInvalidSentiment
		}
	}

	post, err := s.posts.FindByID(input.PostID, userID)
	if err != nil {
		return nil, err
	}

	analysis := &models.Analysis{
		PostID:            input.PostID,
		UserID:            userID,
		SentimentPositive: input.SentimentPositive,
		SentimentNegative: input.SentimentNegative,
		SentimentNeutral:  input.SentimentNeutral,
		ConfidenceScore:   input.ConfidenceScore,
		Keywords:          input.Keywords,
		AnalysisModel:     input.AnalysisModel,
		Summary:           input.Summary,
	}
	if err := s.analyses.Create(analysis); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateStatus(post.ID, models.PostStatusCompleted); err != nil {
		return nil, err
	}
	AnalysesCounter.Inc()
	return analysis, nil
}

func (s *AnalysisService) Get(userID uint, analysisID string) (*models.Analysis, error) {
	return s.analyses.FindByID(analysisID, userID)
}

func (s *AnalysisService) GetByPost(userID uint, postID string) (*models.Analysis, error) {
	return s.analyses.FindByPostID(postID, userID)
}

func (s *AnalysisService) List(userID uint, opts repositories.AnalysisListOptions) ([]models.Analysis, error) {
	return s.analyses.ListByUser(userID, opts)
}

func (s *AnalysisService) Delete(userID uint, analysisID string) error {
	return s.analyses.Delete(analysisID, userID)
}

// Stats aggregates over the user's full analysis history: average
// confidence, the dominant-sentiment distribution as percentages, the ten
// most frequent keywords and per-model usage counts.
func (s *AnalysisService) Stats(userID uint) (*AnalysisStats, error) {
	analyses, err := s.analyses.ListAllByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := &AnalysisStats{
		TotalAnalyses:         len(analyses),
		SentimentDistribution: map[string]float64{"positive": 0, "negative": 0, "neutral": 0},
		TopKeywords:           []KeywordCount{},
		ModelUsage:            make(map[string]int),
	}
	if len(analyses) == 0 {
		return stats, nil
	}

	var confidenceSum float64
	sentimentCounts := map[string]int{"positive": 0, "negative": 0, "neutral": 0}
	keywordCounts := make(map[string]int)

	for _, a := range analyses {
		confidenceSum += a.ConfidenceScore
		sentimentCounts[dominantSentiment(a)]++
		for _, kw := range a.Keywords {
			keywordCounts[kw]++
		}
		if a.AnalysisModel != "" {
			stats.ModelUsage[a.AnalysisModel]++
		}
	}

	total := float64(len(analyses))
	stats.AverageConfidence = confidenceSum / total
	for sentiment, count := range sentimentCounts {
		stats.SentimentDistribution[sentiment] = float64(count) / total * 100
	}

	for kw, count := range keywordCounts {
		stats.TopKeywords = append(stats.TopKeywords, KeywordCount{Keyword: kw, Count: count})
	}
	sort.Slice(stats.TopKeywords, func(i, j int) bool {
		if stats.TopKeywords[i].Count != stats.TopKeywords[j].Count {
			return stats.TopKeywords[i].Count > stats.TopKeywords[j].Count
		}
		return stats.TopKeywords[i].Keyword < stats.TopKeywords[j].Keyword
	})
	if len(stats.TopKeywords) > 10 {
		stats.TopKeywords = stats.TopKeywords[:10]
	}
	return stats, nil
}

func dominantSentiment(a models.Analysis) string {
	switch {
	case a.SentimentPositive >= a.SentimentNegative && a.SentimentPositive >= a.SentimentNeutral:
		return "positive"
	case a.SentimentNegative >= a.SentimentNeutral:
		return "negative"
	default:
		return "neutral"
	}
}
