package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"huntboard/internal/directory/models"
)

type EngineSuite struct {
	suite.Suite
	now   time.Time
	users []models.UserRecord
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s.users = []models.UserRecord{
		{
			ID: "u-alice", Email: "alice@example.com", DisplayName: "Alice",
			JoinedAt:     s.now.Add(-60 * 24 * time.Hour),
			LastActiveAt: s.now.Add(-2 * 24 * time.Hour),
			Status:       models.StatusActive, TotalApplications: 5,
		},
		{
			ID: "u-bob", Email: "bob@example.com", DisplayName: "Bob",
			JoinedAt:     s.now.Add(-3 * 24 * time.Hour),
			LastActiveAt: s.now.Add(-1 * time.Hour),
			Status:       models.StatusActive, TotalApplications: 12,
		},
		{
			ID: "u-carol", Email: "carol@example.com", DisplayName: "Carol",
			JoinedAt:     s.now.Add(-200 * 24 * time.Hour),
			LastActiveAt: s.now.Add(-30 * 24 * time.Hour),
			Status:       models.StatusInactive, TotalApplications: 3,
		},
		{
			ID: "u-dave", Email: "dave@example.com", DisplayName: "Dave",
			JoinedAt: s.now.Add(-2 * time.Hour),
			Status:   models.StatusNew, TotalApplications: 0,
		},
	}
}

func (s *EngineSuite) TestEmptyQueryReturnsEverything() {
	got := Search(s.users, models.DirectoryQuery{})
	s.Len(got, len(s.users))
}

func (s *EngineSuite) TestSearchMatchesEmailNameAndID() {
	s.Run("by email fragment", func() {
		got := Search(s.users, models.DirectoryQuery{Search: "bob@"})
		s.Require().Len(got, 1)
		s.Equal("u-bob", got[0].ID)
	})

	s.Run("by display name, case-insensitive", func() {
		got := Search(s.users, models.DirectoryQuery{Search: "CAROL"})
		s.Require().Len(got, 1)
		s.Equal("u-carol", got[0].ID)
	})

	s.Run("by id fragment", func() {
		got := Search(s.users, models.DirectoryQuery{Search: "u-dave"})
		s.Require().Len(got, 1)
		s.Equal("Dave", got[0].DisplayName)
	})

	s.Run("no match returns empty, not nil panic", func() {
		got := Search(s.users, models.DirectoryQuery{Search: "zebra"})
		s.Empty(got)
	})
}

func (s *EngineSuite) TestResultNeverLargerThanInput() {
	for _, term := range []string{"", "a", "example.com", "u-", "nothing-matches"} {
		got := Search(s.users, models.DirectoryQuery{Search: term})
		s.LessOrEqual(len(got), len(s.users), "term %q", term)
	}
}

func (s *EngineSuite) TestStatusFilter() {
	s.Run("active only", func() {
		got := Search(s.users, models.DirectoryQuery{Status: models.FilterActive})
		s.Len(got, 2)
	})

	s.Run("new only", func() {
		got := Search(s.users, models.DirectoryQuery{Status: models.FilterNew})
		s.Require().Len(got, 1)
		s.Equal("u-dave", got[0].ID)
	})

	s.Run("all is a pass-through", func() {
		got := Search(s.users, models.DirectoryQuery{Status: models.FilterAll})
		s.Len(got, len(s.users))
	})

	s.Run("search and status compose", func() {
		got := Search(s.users, models.DirectoryQuery{Search: "example.com", Status: models.FilterInactive})
		s.Require().Len(got, 1)
		s.Equal("u-carol", got[0].ID)
	})
}

func (s *EngineSuite) TestSortByApplicationsDescending() {
	got := Search(s.users, models.DirectoryQuery{Sort: models.SortByApplications})
	s.Require().Len(got, 4)
	for i := 1; i < len(got); i++ {
		s.GreaterOrEqual(got[i-1].TotalApplications, got[i].TotalApplications)
	}
	s.Equal("u-bob", got[0].ID)
}

func (s *EngineSuite) TestSortByLastActiveDescending() {
	got := Search(s.users, models.DirectoryQuery{Sort: models.SortByLastActive})
	s.Require().Len(got, 4)
	for i := 1; i < len(got); i++ {
		s.False(got[i].LastActiveAt.After(got[i-1].LastActiveAt))
	}
	// Dave has no activity timestamp and sinks to the bottom.
	s.Equal("u-dave", got[3].ID)
}

func (s *EngineSuite) TestSortByJoinDateDescending() {
	got := Search(s.users, models.DirectoryQuery{Sort: models.SortByJoinDate})
	s.Require().Len(got, 4)
	s.Equal("u-dave", got[0].ID)
	s.Equal("u-carol", got[3].ID)
}

func (s *EngineSuite) TestUnknownSortKeyPreservesOrder() {
	got := Search(s.users, models.DirectoryQuery{Sort: "bogus"})
	s.Require().Len(got, 4)
	for i, u := range s.users {
		s.Equal(u.ID, got[i].ID)
	}
}

func (s *EngineSuite) TestInputNotMutated() {
	original := make([]models.UserRecord, len(s.users))
	copy(original, s.users)

	Search(s.users, models.DirectoryQuery{Search: "a", Sort: models.SortByApplications})
	s.Equal(original, s.users)
}

func (s *EngineSuite) TestIdempotentForIdenticalInput() {
	q := models.DirectoryQuery{Search: "example", Status: models.FilterActive, Sort: models.SortByApplications}
	first := Search(s.users, q)
	second := Search(s.users, q)
	s.Equal(first, second)
}

func (s *EngineSuite) TestStableSortKeepsInputOrderOnTies() {
	tied := []models.UserRecord{
		{ID: "first", TotalApplications: 4},
		{ID: "second", TotalApplications: 4},
		{ID: "third", TotalApplications: 4},
	}
	got := Search(tied, models.DirectoryQuery{Sort: models.SortByApplications})
	s.Equal("first", got[0].ID)
	s.Equal("second", got[1].ID)
	s.Equal("third", got[2].ID)
}

func (s *EngineSuite) TestAggregateEmptyCollection() {
	stats := Aggregate(nil, s.now)
	s.Zero(stats.TotalUsers)
	s.Zero(stats.AvgApplicationsPerUser)
	s.Equal("N/A", stats.MostActiveUser)
}

func (s *EngineSuite) TestAggregateCounts() {
	stats := Aggregate(s.users, s.now)
	s.Equal(4, stats.TotalUsers)
	s.Equal(2, stats.ActiveUsers)
	// Bob and Dave joined within the last 7 days.
	s.Equal(2, stats.NewUsersThisWeek)
	s.Equal(20, stats.TotalApplications)
	s.Equal(5, stats.AvgApplicationsPerUser) // round(20/4)
	s.Equal("Bob", stats.MostActiveUser)
}

func (s *EngineSuite) TestAggregateMostActiveByApplications() {
	users := []models.UserRecord{
		{ID: "a", DisplayName: "A", TotalApplications: 5},
		{ID: "b", DisplayName: "B", TotalApplications: 12},
		{ID: "c", DisplayName: "C", TotalApplications: 3},
	}
	s.Equal("B", Aggregate(users, s.now).MostActiveUser)
}

func (s *EngineSuite) TestAggregateTieKeepsFirstOccurrence() {
	users := []models.UserRecord{
		{ID: "a", DisplayName: "A", TotalApplications: 7},
		{ID: "b", DisplayName: "B", TotalApplications: 7},
	}
	s.Equal("A", Aggregate(users, s.now).MostActiveUser)
}

func (s *EngineSuite) TestAggregateRounding() {
	users := []models.UserRecord{
		{ID: "a", DisplayName: "A", TotalApplications: 1},
		{ID: "b", DisplayName: "B", TotalApplications: 2},
	}
	// 1.5 rounds to 2.
	s.Equal(2, Aggregate(users, s.now).AvgApplicationsPerUser)
}

func (s *EngineSuite) TestAggregateLabelFallsBackToEmailThenID() {
	users := []models.UserRecord{
		{ID: "u-1", Email: "only@example.com", TotalApplications: 1},
	}
	s.Equal("only@example.com", Aggregate(users, s.now).MostActiveUser)

	users = []models.UserRecord{{ID: "u-2", TotalApplications: 1}}
	s.Equal("u-2", Aggregate(users, s.now).MostActiveUser)
}
