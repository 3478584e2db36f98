package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureRequestID(t *testing.T) {
	t.Parallel()

	ctx, id := EnsureRequestID(context.Background())
	assert.Len(t, id, 36)
	assert.Equal(t, id, RequestIDFromContext(ctx))

	ctx2, id2 := EnsureRequestID(ctx)
	assert.Equal(t, id, id2, "existing id is kept")
	assert.Equal(t, ctx, ctx2)
}

func TestResultContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ResultFromContext(context.Background()))
	r := Authorized("")
	ctx := ContextWithResult(context.Background(), &r)
	assert.Same(t, &r, ResultFromContext(ctx))
}
