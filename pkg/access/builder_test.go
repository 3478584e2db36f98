package access

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParts() (*User, *Operation, *Resource) {
	return NewUser("alice", RoleStudent, time.Now()),
		NewOperation("placeBlock", CategoryBuilding, RoleStudent),
		NewResource("lobby", "world", RoleStudent)
}

func TestBuild_RequiresUserOperationResource(t *testing.T) {
	t.Parallel()
	u, op, res := testParts()

	_, err := NewContextBuilder().Operation(op).Resource(res).Build()
	assert.ErrorIs(t, err, ErrMissingUser)

	_, err = NewContextBuilder().User(u).Resource(res).Build()
	assert.ErrorIs(t, err, ErrMissingOperation)

	_, err = NewContextBuilder().User(u).Operation(op).Build()
	assert.ErrorIs(t, err, ErrMissingResource)

	_, err = NewContextBuilder().Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingUser) && errors.Is(err, ErrMissingOperation) && errors.Is(err, ErrMissingResource))
}

func TestBuild_FillsDefaults(t *testing.T) {
	t.Parallel()
	u, op, res := testParts()
	fixed := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	ctx, err := NewContextBuilder().User(u).Operation(op).Resource(res).
		Clock(func() time.Time { return fixed }).
		Build()
	require.NoError(t, err)

	assert.Equal(t, fixed, ctx.Now())
	assert.Equal(t, DefaultNetworkContext(), ctx.Network())
	assert.Equal(t, DefaultDeviceContext(), ctx.Device())
	assert.NotEmpty(t, ctx.Session().SessionID)
	assert.Equal(t, fixed, ctx.Session().SessionStart)
	assert.True(t, ctx.Time().IsBusinessHours())
}

func TestBuild_IsolatedFromCaller(t *testing.T) {
	t.Parallel()
	u, op, res := testParts()

	b := NewContextBuilder().User(u).Operation(op).Resource(res).Attribute("lesson", "geometry")
	ctx, err := b.Build()
	require.NoError(t, err)

	t.Log("Mutating the caller's values after Build must not leak into the context")
	u.Role = RoleAdmin
	res.Name = "other"
	b.Attribute("lesson", "history")
	attrs := ctx.Attributes()
	attrs["lesson"] = "chemistry"

	assert.Equal(t, RoleStudent, ctx.User().Role)
	assert.Equal(t, "lobby", ctx.Resource().Name)
	v, ok := ctx.Attribute("lesson")
	assert.True(t, ok)
	assert.Equal(t, "geometry", v)
}

func TestTimeContext_BusinessHours(t *testing.T) {
	t.Parallel()

	at := func(h, m int) TimeContext {
		return NewTimeContext(time.Date(2026, 10, 19, h, m, 0, 0, time.UTC))
	}
	assert.False(t, at(8, 59).IsBusinessHours())
	assert.True(t, at(9, 0).IsBusinessHours())
	assert.True(t, at(17, 59).IsBusinessHours())
	assert.False(t, at(18, 0).IsBusinessHours())
}

func TestSessionContext_Duration(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s := SessionContext{SessionID: "s1", SessionStart: start}
	assert.Equal(t, 90*time.Minute, s.Duration(start.Add(90*time.Minute)))
	assert.Equal(t, time.Duration(0), s.Duration(start.Add(-time.Minute)))
}
