package service

import (
	"context"
	"testing"
	"time"

	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleService_GrantReplacesAndRevokes(t *testing.T) {
	h := newHarness(t)
	svc := NewRoleService(h.factory, h.publisher, h.log)
	ctx := context.Background()
	actor := uuid.New()
	userId := h.user(t)

	_, err := svc.GrantRole(ctx, actor, &dto.GrantRoleRequest{UserId: userId, Role: "super_user"})
	require.NoError(t, err)
	isAdmin, err := svc.IsAdmin(ctx, userId)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	res, err := svc.GrantRole(ctx, actor, &dto.GrantRoleRequest{UserId: userId, Role: "admin", Notes: "on-call"})
	require.NoError(t, err)
	require.NotNil(t, res.GrantedBy)
	assert.Equal(t, actor, *res.GrantedBy)

	isAdmin, err = svc.IsAdmin(ctx, userId)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	active, err := svc.ListGrants(ctx, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "admin", active[0].Role)

	all, err := svc.ListGrants(ctx, false, 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	revoked, err := svc.RevokeRole(ctx, actor, userId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, revoked.Revoked)

	isAdmin, err = svc.IsAdmin(ctx, userId)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	assert.Equal(t, []string{events.TypeRoleGranted, events.TypeRoleGranted, events.TypeRoleRevoked}, h.publisher.types())
}

func TestRoleService_ListGrantsCapsPageSize(t *testing.T) {
	h := newHarness(t)
	svc := NewRoleService(h.factory, nil, h.log)
	ctx := context.Background()
	actor := uuid.New()

	for i := 0; i < MaxGrantPageSize+5; i++ {
		_, err := svc.GrantRole(ctx, actor, &dto.GrantRoleRequest{UserId: h.user(t), Role: "super_user"})
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		page  int
		limit int
		want  int
	}{
		{"huge limit is capped", 1, 1000000, MaxGrantPageSize},
		{"default limit", 1, 0, defaultGrantPageSize},
		{"second capped page holds the rest", 2, 1000000, 5},
		{"huge page is empty", 1 << 40, 1000000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grants, err := svc.ListGrants(ctx, true, tt.page, tt.limit)
			require.NoError(t, err)
			assert.Len(t, grants, tt.want)
		})
	}
}

func TestRoleService_RejectsBadGrants(t *testing.T) {
	h := newHarness(t)
	svc := NewRoleService(h.factory, nil, h.log)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	_, err := svc.GrantRole(ctx, uuid.Nil, &dto.GrantRoleRequest{UserId: uuid.New(), Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.GrantRole(ctx, uuid.Nil, &dto.GrantRoleRequest{UserId: uuid.New(), Role: "admin", ExpiresAt: &past})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRoleService_ExpiredGrantIsNotAdmin(t *testing.T) {
	h := newHarness(t)
	svc := NewRoleService(h.factory, nil, h.log).(*roleService)
	ctx := context.Background()
	userId := uuid.New()
	expiry := time.Now().Add(time.Hour)

	_, err := svc.GrantRole(ctx, uuid.Nil, &dto.GrantRoleRequest{UserId: userId, Role: "admin", ExpiresAt: &expiry})
	require.NoError(t, err)

	svc.now = func() time.Time { return expiry.Add(time.Minute) }
	isAdmin, err := svc.IsAdmin(ctx, userId)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}
