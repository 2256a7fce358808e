package claim

// InsurerRanking is one row of /analytics/ranking
type InsurerRanking struct {
	Insurer         string  `json:"insurer"`
	TotalClauses    int     `json:"total_clauses"`
	ExclusionCount  int     `json:"exclusion_count"`
	ConditionCount  int     `json:"condition_count"`
	StrictnessScore float64 `json:"strictness_score"`
	RiskScore       float64 `json:"risk_score"`
}

// InsurerSimilarity is one row of /analytics/similarity
type InsurerSimilarity struct {
	InsurerA        string  `json:"insurer_a"`
	InsurerB        string  `json:"insurer_b"`
	SimilarityScore float64 `json:"similarity_score"`
}
