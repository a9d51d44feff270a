package statsengine

import (
	"encoding/json"
	"testing"
)

func TestPairwiseRowAcceptsBothPAdjSpellings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{
			name: "underscore spelling",
			body: `{"group1":"gym","group2":"reading","meandiff":12.5,"p_adj":0.031,"lower":1.2,"upper":23.8,"reject":true}`,
			want: 0.031,
		},
		{
			name: "dash spelling",
			body: `{"group1":"gym","group2":"reading","meandiff":12.5,"p-adj":0.042,"lower":1.2,"upper":23.8,"reject":false}`,
			want: 0.042,
		},
		{
			name: "both spellings prefers underscore",
			body: `{"group1":"a","group2":"b","p_adj":0.01,"p-adj":0.99}`,
			want: 0.01,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row PairwiseRow
			if err := json.Unmarshal([]byte(tt.body), &row); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if row.PAdj == nil {
				t.Fatal("PAdj is nil")
			}
			if *row.PAdj != tt.want {
				t.Errorf("PAdj = %v, want %v", *row.PAdj, tt.want)
			}
		})
	}
}

func TestPairwiseRowNullPAdj(t *testing.T) {
	var row PairwiseRow
	body := `{"group1":"a","group2":"b","meandiff":null,"p_adj":null,"reject":false}`
	if err := json.Unmarshal([]byte(body), &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if row.PAdj != nil {
		t.Errorf("PAdj = %v, want nil", *row.PAdj)
	}
	if row.MeanDiff != nil {
		t.Errorf("MeanDiff = %v, want nil", *row.MeanDiff)
	}
}

func TestAnovaResponseDecode(t *testing.T) {
	body := `{
		"success": true,
		"results": {
			"activity": {
				"success": true,
				"F_value": 5.2341,
				"p_value": 0.012345,
				"MSB": 1200.5,
				"MSW": 229.4,
				"groupMeans": {"gym": 60, "reading": 20},
				"groupCounts": {"gym": 3, "reading": 2},
				"interpretation": "Some activities showed different mood impacts.",
				"includedGroups": ["gym", "reading"],
				"ignoredGroups": ["walking"],
				"tukeyHSD": [
					{"group1":"gym","group2":"reading","meandiff":40,"p-adj":0.02,"lower":10,"upper":70,"reject":true}
				]
			},
			"social": {
				"success": false,
				"message": "Logs are still insufficient to run a proper analysis. Come back later!",
				"ignoredGroups": ["party"]
			}
		}
	}`
	var resp AnovaResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	act := resp.Results["activity"]
	if act == nil || !act.Success {
		t.Fatal("activity result missing or unsuccessful")
	}
	if len(act.Pairwise) != 1 || act.Pairwise[0].PAdj == nil || *act.Pairwise[0].PAdj != 0.02 {
		t.Errorf("pairwise rows not decoded: %+v", act.Pairwise)
	}
	if act.GroupCounts["gym"] != 3 {
		t.Errorf("gym count = %d, want 3", act.GroupCounts["gym"])
	}
	soc := resp.Results["social"]
	if soc == nil || soc.Success {
		t.Fatal("social result should be unsuccessful")
	}
	if len(soc.IgnoredGroups) != 1 || soc.IgnoredGroups[0] != "party" {
		t.Errorf("social ignored groups = %v", soc.IgnoredGroups)
	}
}

func TestConcordanceResponseDecode(t *testing.T) {
	body := `{
		"success": true,
		"results": {
			"activity": {
				"success": true,
				"insufficient": false,
				"includedGroups": ["gym"],
				"ignoredGroups": [],
				"groupCounts": {"gym": 2},
				"groupMeans": {"gym": 35.0},
				"labels": {"gym": "boosted"},
				"topPositive": [{"activity":"gym","moodScore":35.0}],
				"topNegative": [],
				"overall": {"ccc": 0.82}
			}
		}
	}`
	var resp ConcordanceResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	act := resp.Results["activity"]
	if act == nil {
		t.Fatal("activity result missing")
	}
	if act.Labels["gym"] != "boosted" {
		t.Errorf("label = %q, want boosted", act.Labels["gym"])
	}
	if len(act.TopPositive) != 1 || act.TopPositive[0].Score != 35.0 {
		t.Errorf("top positive not decoded: %+v", act.TopPositive)
	}
	if act.Overall == nil || act.Overall.CCC != 0.82 {
		t.Errorf("overall ccc not decoded: %+v", act.Overall)
	}
}
