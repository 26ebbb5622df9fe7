// Package projections contains read-side queries that assemble views
// from one or more stores without mutating state.
package projections

import (
	"context"
	"sort"

	"pointsboard/internal/domain/member"
	"pointsboard/internal/domain/rotation"
)

// ScoreboardMemberStore defines the member store interface needed by the scoreboard.
type ScoreboardMemberStore interface {
	List(ctx context.Context) ([]member.Member, error)
}

// ScoreboardHistoryStore defines the speaker history interface needed by the scoreboard.
type ScoreboardHistoryStore interface {
	ListAll(ctx context.Context) ([]rotation.HistoryEntry, error)
}

// ScoreboardRow is one ranked member on the scoreboard.
type ScoreboardRow struct {
	Rank             int    `json:"rank"`
	ID               string `json:"id"`
	Name             string `json:"name"`
	Points           int    `json:"points"`
	YellowCards      int    `json:"yellow_cards"`
	RedCards         int    `json:"red_cards"`
	TimesSelected    int    `json:"times_selected"`
	LastSelectedDate string `json:"last_selected_date,omitempty"`
}

// GetScoreboardResult carries the ranked member list.
type GetScoreboardResult struct {
	Rows []ScoreboardRow `json:"rows"`
}

// GetScoreboardDeps holds dependencies for the scoreboard projection.
type GetScoreboardDeps struct {
	MemberStore  ScoreboardMemberStore
	HistoryStore ScoreboardHistoryStore
}

// QueryGetScoreboard ranks all members by points descending, ties
// broken by name. Members tied on points share a rank.
// POST: Rows are ordered by (points desc, name asc)
func QueryGetScoreboard(ctx context.Context, deps GetScoreboardDeps) (GetScoreboardResult, error) {
	members, err := deps.MemberStore.List(ctx)
	if err != nil {
		return GetScoreboardResult{}, err
	}
	history, err := deps.HistoryStore.ListAll(ctx)
	if err != nil {
		return GetScoreboardResult{}, err
	}

	historyByID := make(map[string]rotation.HistoryEntry, len(history))
	for _, h := range history {
		historyByID[h.MemberID] = h
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].Points != members[j].Points {
			return members[i].Points > members[j].Points
		}
		return members[i].Name < members[j].Name
	})

	rows := make([]ScoreboardRow, 0, len(members))
	rank := 0
	prevPoints := -1
	for i, m := range members {
		if i == 0 || m.Points != prevPoints {
			rank = i + 1
			prevPoints = m.Points
		}
		row := ScoreboardRow{
			Rank:        rank,
			ID:          m.ID,
			Name:        m.Name,
			Points:      m.Points,
			YellowCards: m.YellowCards,
			RedCards:    m.RedCards,
		}
		if h, ok := historyByID[m.ID]; ok {
			row.TimesSelected = h.SelectionCount
			row.LastSelectedDate = h.LastSelectedDate
		}
		rows = append(rows, row)
	}

	return GetScoreboardResult{Rows: rows}, nil
}
