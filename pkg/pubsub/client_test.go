package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maldonadorepuestos/storefront/pkg/config"
)

func TestResourcePath(t *testing.T) {
	cases := []struct {
		name    string
		project string
		kind    resourceKind
		in      string
		want    string
	}{
		{"short topic", "shop", kindTopic, "quote-events", "projects/shop/topics/quote-events"},
		{"trims input", "shop", kindSubscription, "  quotes  ", "projects/shop/subscriptions/quotes"},
		{"full name kept", "shop", kindTopic, "projects/other/topics/x", "projects/other/topics/x"},
		{"wrong kind gets prefixed", "shop", kindSubscription, "projects/other/topics/x", "projects/shop/subscriptions/projects/other/topics/x"},
		{"empty name", "shop", kindTopic, " ", ""},
		{"missing project", "", kindTopic, "quote-events", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resourcePath(tc.project, tc.kind, tc.in))
		})
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{ProjectID: " "}, config.PubSubConfig{}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("quote-events"))
	assert.Nil(t, c.Subscription("quotes"))
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Ping(context.Background()), errNotInitialized)
}
