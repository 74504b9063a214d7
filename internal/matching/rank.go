package matching

import (
	"sort"

	"labmatch/internal/domain/application"
	"labmatch/internal/domain/project"
)

const DefaultRecommendationLimit = 5

// Candidate pairs a pending application with the applicant's skill profile.
// Callers supply candidates in appliedDate ascending order; ranking is stable
// so equal scores keep that order.
type Candidate struct {
	Application application.Application
	Skills      []string
}

type RankedCandidate struct {
	Candidate
	Score   int     `json:"match_score"`
	Details Details `json:"match_details"`
}

// RankCandidates scores pending applications against a requirement list and
// orders them best-first. A 0% match is still ranked, just last; exclusion is
// the recommender's job, not the ranker's.
func RankCandidates(candidates []Candidate, requiredSkills []string) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Application.Status != application.StatusPending {
			continue
		}
		ranked = append(ranked, RankedCandidate{
			Candidate: c,
			Score:     Score(c.Skills, requiredSkills),
			Details:   MatchDetails(c.Skills, requiredSkills),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

type RankedProject struct {
	Project project.Project `json:"project"`
	Score   int             `json:"match_score"`
	Details Details         `json:"match_details"`
}

// RecommendProjects ranks open projects for a candidate, dropping projects
// the candidate does not match at all. A candidate with no skills gets no
// recommendations.
func RecommendProjects(candidateSkills []string, projects []project.Project) []RankedProject {
	ranked := make([]RankedProject, 0, len(projects))
	if len(candidateSkills) == 0 {
		return ranked
	}
	for _, p := range projects {
		if p.Status != project.StatusOpen {
			continue
		}
		score := Score(candidateSkills, p.RequiredSkills)
		if score == 0 {
			continue
		}
		ranked = append(ranked, RankedProject{
			Project: p,
			Score:   score,
			Details: MatchDetails(candidateSkills, p.RequiredSkills),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// TopRecommendations truncates RecommendProjects to the first limit entries.
// A non-positive limit falls back to the default of 5.
func TopRecommendations(candidateSkills []string, projects []project.Project, limit int) []RankedProject {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	ranked := RecommendProjects(candidateSkills, projects)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
