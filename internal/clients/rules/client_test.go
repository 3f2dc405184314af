package rules_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greyhelm/charkeep/internal/clients/rules"
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
)

func newTestClient(t *testing.T, handler http.Handler) rules.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := rules.New(&rules.Config{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
	})
	require.NoError(t, err)

	return client
}

func TestGetClass(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classes/fighter", r.URL.Path)
		_ = json.NewEncoder(w).Encode(rulebook.Class{
			Key:    "fighter",
			Name:   "Fighter",
			HitDie: 10,
		})
	}))

	class, err := client.GetClass(context.Background(), "fighter")

	require.NoError(t, err)
	assert.Equal(t, "Fighter", class.Name)
	assert.Equal(t, 10, class.HitDie)
}

func TestGetClass_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.GetClass(context.Background(), "artificer")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetClass_CachesRepeatedLookups(t *testing.T) {
	var hits atomic.Int64

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(rulebook.Class{Key: "fighter", Name: "Fighter", HitDie: 10})
	}))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		class, err := client.GetClass(ctx, "fighter")
		require.NoError(t, err)
		assert.Equal(t, "Fighter", class.Name)
	}

	assert.Equal(t, int64(1), hits.Load())
}

func TestGetClassLevel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classes/bard/levels/2", r.URL.Path)
		_ = json.NewEncoder(w).Encode(rulebook.ClassLevel{
			ClassKey:          "bard",
			Level:             2,
			SpellsKnownGained: 1,
			MaxSpellLevel:     1,
		})
	}))

	classLevel, err := client.GetClassLevel(context.Background(), "bard", 2)

	require.NoError(t, err)
	assert.Equal(t, 1, classLevel.SpellsKnownGained)
}

func TestListClassSpells(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classes/bard/spells", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("max_level"))
		_ = json.NewEncoder(w).Encode([]*rulebook.Spell{
			{Key: "healing-word", Name: "Healing Word", Level: 1},
		})
	}))

	spells, err := client.ListClassSpells(context.Background(), "bard", 2)

	require.NoError(t, err)
	require.Len(t, spells, 1)
	assert.Equal(t, "healing-word", spells[0].Key)
}

func TestGetClass_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.GetClass(context.Background(), "fighter")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.GetCode(err))
}

func TestGetClass_RequiresKey(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.GetClass(context.Background(), "")

	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
}
