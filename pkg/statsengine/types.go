package statsengine

import "encoding/json"

// AnovaResponse is the engine's reply to RunAnova. Success is false
// when every category came back insufficient.
type AnovaResponse struct {
	Success bool                            `json:"success"`
	Message string                          `json:"message"`
	Results map[string]*AnovaCategoryResult `json:"results"`
}

// AnovaCategoryResult is the per-category ANOVA output. When Success is
// false only Message and IgnoredGroups are meaningful.
type AnovaCategoryResult struct {
	Success        bool               `json:"success"`
	Message        string             `json:"message"`
	FValue         *float64           `json:"F_value"`
	PValue         *float64           `json:"p_value"`
	MSB            *float64           `json:"MSB"`
	MSW            *float64           `json:"MSW"`
	Interpretation *string            `json:"interpretation"`
	GroupMeans     map[string]float64 `json:"groupMeans"`
	GroupCounts    map[string]int     `json:"groupCounts"`
	IncludedGroups []string           `json:"includedGroups"`
	IgnoredGroups  []string           `json:"ignoredGroups"`
	Pairwise       []PairwiseRow      `json:"tukeyHSD"`
}

// PairwiseRow is one post-hoc comparison between two groups.
type PairwiseRow struct {
	Group1   string
	Group2   string
	MeanDiff *float64
	PAdj     *float64
	Lower    *float64
	Upper    *float64
	Reject   bool
}

// UnmarshalJSON accepts both "p_adj" and "p-adj" for the adjusted
// significance field; engine versions have emitted either spelling.
func (r *PairwiseRow) UnmarshalJSON(data []byte) error {
	var aux struct {
		Group1   string   `json:"group1"`
		Group2   string   `json:"group2"`
		MeanDiff *float64 `json:"meandiff"`
		PAdj     *float64 `json:"p_adj"`
		PAdjAlt  *float64 `json:"p-adj"`
		Lower    *float64 `json:"lower"`
		Upper    *float64 `json:"upper"`
		Reject   bool     `json:"reject"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Group1 = aux.Group1
	r.Group2 = aux.Group2
	r.MeanDiff = aux.MeanDiff
	r.PAdj = aux.PAdj
	if r.PAdj == nil {
		r.PAdj = aux.PAdjAlt
	}
	r.Lower = aux.Lower
	r.Upper = aux.Upper
	r.Reject = aux.Reject
	return nil
}

// ActivityScore pairs an activity with its mean score on the wire.
type ActivityScore struct {
	Activity string  `json:"activity"`
	Score    float64 `json:"moodScore"`
}

// ConcordanceResponse is the engine's reply to RunConcordance.
type ConcordanceResponse struct {
	Success bool                                  `json:"success"`
	Message string                                `json:"message"`
	Results map[string]*ConcordanceCategoryResult `json:"results"`
}

// ConcordanceCategoryResult is the per-category concordance output.
type ConcordanceCategoryResult struct {
	Success        bool               `json:"success"`
	Insufficient   bool               `json:"insufficient"`
	Message        *string            `json:"message"`
	IncludedGroups []string           `json:"includedGroups"`
	IgnoredGroups  []string           `json:"ignoredGroups"`
	GroupCounts    map[string]int     `json:"groupCounts"`
	GroupMeans     map[string]float64 `json:"groupMeans"`
	Labels         map[string]string  `json:"labels"`
	TopPositive    []ActivityScore    `json:"topPositive"`
	TopNegative    []ActivityScore    `json:"topNegative"`
	Overall        *struct {
		CCC float64 `json:"ccc"`
	} `json:"overall"`
}
