package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBrowserSkipsWithoutCredentials(t *testing.T) {
	t.Parallel()

	b := NewBrowser(BrowserConfig{}, zap.NewNop())

	postings := b.Fetch(context.Background(), Query{Keywords: []string{"data"}, Locations: []string{"Remote"}})
	assert.Nil(t, postings)
}

func TestBrowserExtractsFromRenderedPage(t *testing.T) {
	b := NewBrowser(BrowserConfig{Email: "user@example.com", Password: "secret"}, zap.NewNop())
	b.delay = noDelay
	b.render = func(_ context.Context, _, _ string) (string, error) {
		return searchFixture, nil
	}

	postings := b.Fetch(context.Background(), Query{
		Keywords:  []string{"data scientist"},
		Locations: []string{"Remote"},
		Quota:     10,
	})

	require.Len(t, postings, 2)
	assert.Equal(t, "Globex", postings[0].Company)
}

func TestBrowserSwallowsRenderErrors(t *testing.T) {
	b := NewBrowser(BrowserConfig{Email: "user@example.com", Password: "secret"}, zap.NewNop())
	b.delay = noDelay
	b.render = func(context.Context, string, string) (string, error) {
		return "", errors.New("chrome exploded")
	}

	postings := b.Fetch(context.Background(), Query{
		Keywords:  []string{"data scientist"},
		Locations: []string{"Remote"},
	})

	assert.Empty(t, postings)
}

func TestBrowserConfigDefaults(t *testing.T) {
	t.Parallel()

	b := NewBrowser(BrowserConfig{Email: "a", Password: "b"}, zap.NewNop())
	assert.Equal(t, defaultLoginURL, b.cfg.LoginURL)
	assert.Equal(t, defaultBrowserURL, b.cfg.SearchURL)
	assert.Equal(t, defaultMaxSteps, b.cfg.MaxSteps)
}
