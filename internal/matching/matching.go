// Package matching implements the skill scoring used to rank internship
// candidates and recommend projects. Skills are compared by canonical form:
// trimmed, lower-cased, exact equality. There is no fuzzy matching.
package matching

import (
	"math"
	"strings"
)

// Canonical returns the form of a skill string used for comparison.
func Canonical(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

func canonicalSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		set[Canonical(skill)] = struct{}{}
	}
	return set
}

// Score returns the percentage of required skills covered by the candidate.
// An empty requirement list is a full match for everyone, including a
// candidate with no skills at all; that rule is checked first.
func Score(candidateSkills, requiredSkills []string) int {
	if len(requiredSkills) == 0 {
		return 100
	}
	if len(candidateSkills) == 0 {
		return 0
	}
	have := canonicalSet(candidateSkills)
	matched := 0
	for _, skill := range requiredSkills {
		if _, ok := have[Canonical(skill)]; ok {
			matched++
		}
	}
	return int(math.Round(float64(matched) / float64(len(requiredSkills)) * 100))
}

// Details splits a requirement list into the skills the candidate covers and
// the ones they are missing. Required skills keep their original casing and
// order.
type Details struct {
	MatchingSkills  []string `json:"matchingSkills"`
	MissingSkills   []string `json:"missingSkills"`
	MatchPercentage int      `json:"matchPercentage"`
}

func MatchDetails(candidateSkills, requiredSkills []string) Details {
	have := canonicalSet(candidateSkills)
	matching := make([]string, 0, len(requiredSkills))
	missing := make([]string, 0, len(requiredSkills))
	for _, skill := range requiredSkills {
		if _, ok := have[Canonical(skill)]; ok {
			matching = append(matching, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return Details{
		MatchingSkills:  matching,
		MissingSkills:   missing,
		MatchPercentage: Score(candidateSkills, requiredSkills),
	}
}

// GapAnalysis is MatchDetails plus an advisory for students with an empty
// skill profile.
type GapAnalysis struct {
	Details
	Recommendation string `json:"recommendation,omitempty"`
}

func SkillGap(candidateSkills, requiredSkills []string) GapAnalysis {
	analysis := GapAnalysis{Details: MatchDetails(candidateSkills, requiredSkills)}
	if len(candidateSkills) == 0 {
		analysis.Recommendation = "Add skills to your profile to improve your match score"
	}
	return analysis
}
