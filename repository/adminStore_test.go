package repository

import (
	"context"
	"testing"

	"civic-issues-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryAdminStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAdminStore()

	admin := &models.Admin{Name: "Ops", Email: "ops@civic.gov", Role: models.RoleAdmin}
	require.NoError(t, s.Create(ctx, admin))
	require.False(t, admin.ID.IsZero())

	err := s.Create(ctx, &models.Admin{Name: "Dup", Email: "OPS@civic.gov"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	byEmail, err := s.FindByEmail(ctx, "ops@civic.gov")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, byEmail.ID)

	byID, err := s.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ops", byID.Name)

	_, err = s.FindByEmail(ctx, "missing@civic.gov")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}
