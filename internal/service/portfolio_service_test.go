package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

func TestComposePortfolioGroupsInDisplayOrder(t *testing.T) {
	input := []dto.ActivityResponse{
		{ID: "p1", Type: "project"},
		{ID: "c1", Type: "certification"},
		{ID: "p2", Type: "project"},
		{ID: "i1", Type: "internship"},
		{ID: "c2", Type: "certification"},
	}

	portfolio := ComposePortfolio(input)
	require.Equal(t, 5, portfolio.Total)
	require.Equal(t, 3, portfolio.Categories)
	require.Len(t, portfolio.Groups, 3)

	require.Equal(t, "certification", portfolio.Groups[0].Type)
	require.Equal(t, "Certification", portfolio.Groups[0].Label)
	require.Equal(t, []string{"c1", "c2"}, activityIDs(portfolio.Groups[0].Activities))
	require.Equal(t, "internship", portfolio.Groups[1].Type)
	require.Equal(t, "project", portfolio.Groups[2].Type)
	require.Equal(t, []string{"p1", "p2"}, activityIDs(portfolio.Groups[2].Activities))

	reversed := make([]dto.ActivityResponse, len(input))
	for i := range input {
		reversed[len(input)-1-i] = input[i]
	}
	again := ComposePortfolio(reversed)
	require.Equal(t, []string{"certification", "internship", "project"}, groupTypes(again.Groups))
	require.Equal(t, portfolio.Total, again.Total)
	require.Equal(t, portfolio.Categories, again.Categories)
}

func TestComposePortfolioEmpty(t *testing.T) {
	portfolio := ComposePortfolio(nil)
	require.Zero(t, portfolio.Total)
	require.Zero(t, portfolio.Categories)
	require.NotNil(t, portfolio.Groups)
	require.Empty(t, portfolio.Groups)
}

func TestPortfolioServiceCachesAndInvalidatesOnReview(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	db := newTestDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	require.NoError(t, users.EnsureExists(ctx, &models.User{ID: "u1", Name: "Asha", Email: "asha@example.com", Role: models.RoleStudent, Department: "Computer Science", RollNumber: "CS01"}))

	cache := NewViewCache(redisClient, time.Minute, testLogger())
	activities := NewActivityService(repository.NewActivityRepository(db), nil, utils.NewValidator(), nil, nil, cache, testLogger())
	portfolios := NewPortfolioService(activities, users, cache, testLogger())

	created, err := activities.Submit(ctx, studentU1, certificationRequest("AWS"))
	require.NoError(t, err)

	first, err := portfolios.Get(ctx, studentU1)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Zero(t, first.Total)
	require.Equal(t, "Asha", first.Owner.Name)
	require.Equal(t, "CS01", first.Owner.RollNumber)

	cached, err := portfolios.Get(ctx, studentU1)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)

	_, err = activities.Review(ctx, facultyF1, created.ID, dto.ActivityReviewRequest{Decision: "approved"})
	require.NoError(t, err)
	require.False(t, server.Exists(portfolioKey("u1")))

	refreshed, err := portfolios.Get(ctx, studentU1)
	require.NoError(t, err)
	require.False(t, refreshed.CacheHit)
	require.Equal(t, 1, refreshed.Total)
	require.Equal(t, 1, refreshed.Categories)
	require.Equal(t, created.ID, refreshed.Groups[0].Activities[0].ID)
}

func TestPortfolioServiceRequiresStudent(t *testing.T) {
	db := newTestDB(t)
	activities := NewActivityService(repository.NewActivityRepository(db), nil, utils.NewValidator(), nil, nil, nil, testLogger())
	portfolios := NewPortfolioService(activities, repository.NewUserRepository(db), nil, testLogger())

	_, err := portfolios.Get(context.Background(), facultyF1)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = portfolios.Get(context.Background(), nil)
	require.ErrorIs(t, err, ErrUnauthenticated)

	empty, err := portfolios.Get(context.Background(), studentU2)
	require.NoError(t, err)
	require.Equal(t, "u2", empty.Owner.ID)
	require.Equal(t, "Mechanical", empty.Owner.Department)
}

func activityIDs(items []dto.ActivityResponse) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func groupTypes(groups []dto.PortfolioGroup) []string {
	types := make([]string, 0, len(groups))
	for _, group := range groups {
		types = append(types, group.Type)
	}
	return types
}
