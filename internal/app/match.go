package app

import (
	"sort"

	"survey-match-service/internal/domain"
)

// Rank scores every other user in dir against target by counting question
// ids both answered with the same choice index. Results are ordered by score
// descending; equal scores keep directory order. A target with no record
// scores zero against everyone.
func Rank(target string, dir *domain.UserDirectory) []domain.Match {
	if dir == nil {
		return []domain.Match{}
	}
	mine, _ := dir.Get(target)

	matches := make([]domain.Match, 0, dir.Len())
	for _, entry := range dir.Entries() {
		if entry.Username == target {
			continue
		}
		score := 0
		for questionID, choice := range entry.Choices {
			if own, ok := mine[questionID]; ok && own == choice {
				score++
			}
		}
		matches = append(matches, domain.Match{Username: entry.Username, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
