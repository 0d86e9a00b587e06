package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuqie6/reme/internal/repository"
	"github.com/yuqie6/reme/internal/schema"
	"github.com/yuqie6/reme/internal/testutil"
)

func TestTreeBuild(t *testing.T) {
	db := testutil.OpenTestDB(t)
	hobbies := repository.NewHobbyRepository(db)
	reflections := repository.NewReflectionRepository(db)
	moments := repository.NewMomentRepository(db)
	svc := NewTreeService(hobbies, repository.NewActivityRepository(db), reflections, moments)
	ctx := context.Background()

	require.NoError(t, hobbies.Create(ctx, &schema.Hobby{ID: "h1", UserID: "u1", Name: "🎸 Guitar", Level: 2}))
	_, err := hobbies.ApplyActivities(ctx, "h1", []schema.ActivityLog{
		{ID: "a1", UserID: "u1", HobbyID: "h1", Text: "played", AISummary: "Practiced scales", ExpGained: 10, Source: schema.ActivitySourceLog},
	}, 10)
	require.NoError(t, err)
	require.NoError(t, reflections.Create(ctx, &schema.Reflection{ID: "r1", UserID: "u1", Text: "calm day", Emotion: "calm"}))

	root, err := svc.Build(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, NodeRoot, root.Type)
	require.Len(t, root.Children, 2)

	hobby := root.Children[0]
	assert.Equal(t, NodeHobby, hobby.Type)
	require.Len(t, hobby.Children, 1)
	assert.Equal(t, "Practiced scales", hobby.Children[0].Name)

	assert.Equal(t, NodeReflection, root.Children[1].Type)
	assert.Equal(t, "calm", root.Children[1].Children[0].Name)

	_, err = svc.Build(ctx, " ")
	assert.ErrorIs(t, err, ErrValidation)
}
