package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OpportunityValidator/internal/config"
	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/logging"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Agent: config.AgentConfig{
			Provider: config.ProviderAnthropic,
			Endpoint: "http://127.0.0.1:0/v1/messages",
			Model:    "claude-test",
		},
		Storage: config.StorageConfig{Root: t.TempDir()},
	}
}

func TestValidatorRequiresCredential(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Validator()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	_, err = a.Comparer(true)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	comparer, err := a.Comparer(false)
	require.NoError(t, err)
	assert.NotNil(t, comparer)
}

func TestValidatorWithCredential(t *testing.T) {
	cfg := testConfig(t).WithAgentOverrides("sk-test", "claude-override")
	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	v, err := a.Validator()
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestAgentRegistryProviders(t *testing.T) {
	assert.Equal(t, []string{config.ProviderAnthropic, config.ProviderChatGPT}, NewAgentRegistry().Names())
}

func TestLoadResults(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	ctx := context.Background()
	for _, name := range []string{"Bravo", "Alpha"} {
		require.NoError(t, a.store.Save(ctx, domain.NewFailedResult(domain.Opportunity{Name: name}, "seed")))
	}

	all, err := a.LoadResults(ctx, nil, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Opportunity.Name)

	some, err := a.LoadResults(ctx, []string{"Bravo"}, false)
	require.NoError(t, err)
	require.Len(t, some, 1)

	_, err = a.LoadResults(ctx, []string{"Missing"}, false)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = a.LoadResults(ctx, nil, true)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}
