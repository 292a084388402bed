// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeIDsAreInsertionOrdered(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := store.NewExchange(ctx, "s1", RoleUser, Payload{ChatText: "hi"})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	exchanges := store.List("s1")
	require.Len(t, exchanges, 5)
	for i, ex := range exchanges {
		assert.Equal(t, i, ex.Index)
		assert.Equal(t, ids[i], ex.ID)
	}
}

func TestStateLatticeRejectsIllegalTransitions(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	id, err := store.NewExchange(ctx, "s1", RoleUser, Payload{})
	require.NoError(t, err)

	// pending -> accepted is not an edge.
	err = store.SetState("s1", id, StateAccepted)
	assert.Error(t, err)

	require.NoError(t, store.SetState("s1", id, StateInference))
	require.NoError(t, store.SetState("s1", id, StateFinished))

	// finished is terminal: further transitions are no-ops, not errors.
	assert.NoError(t, store.SetState("s1", id, StateInference))

	ex, ok := store.GetExchange("s1", id)
	require.True(t, ok)
	assert.Equal(t, StateFinished, ex.State)
}

func TestCancelIsIdempotent(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	id, err := store.NewExchange(ctx, "s1", RoleUser, Payload{})
	require.NoError(t, err)
	require.NoError(t, store.SetState("s1", id, StateInference))

	require.NoError(t, store.Cancel("s1", id))
	require.NoError(t, store.Cancel("s1", id))

	ex, _ := store.GetExchange("s1", id)
	assert.Equal(t, StateCancelled, ex.State)
	select {
	case <-ex.Token().Done():
	default:
		t.Fatal("expected cancellation token to be tripped")
	}
}

func TestUndoCreatesNewExchangeWithoutRewritingHistory(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	original, err := store.NewExchange(ctx, "s1", RoleAgent, Payload{ChatText: "edit applied"})
	require.NoError(t, err)

	inverseID, err := store.Undo(ctx, "s1", original, Payload{ChatText: "inverse patch"})
	require.NoError(t, err)
	assert.NotEqual(t, original, inverseID)

	exchanges := store.List("s1")
	require.Len(t, exchanges, 2)
	assert.Equal(t, original, exchanges[0].ID)
	assert.Equal(t, inverseID, exchanges[1].ID)
}
