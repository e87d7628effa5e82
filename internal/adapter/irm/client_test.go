package irm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"OutreachSync/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(&config.ServiceConfig{BaseURL: srv.URL, Timeout: 2}, logrus.New())
}

func TestGroupForInstitution(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dealogicMapping/company/co-1/institution/inst-7", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"shareholderGroupId":"grp-3"}]}`))
	})

	id, found, err := c.GroupForInstitution(context.Background(), "co-1", "inst-7")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "grp-3", id)
}

func TestInstitutionForGroupNumericID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dealogicMapping/company/co-1/shareholderGroup/grp-3", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"dealogicInstitutionId":12345}]}`))
	})

	id, found, err := c.InstitutionForGroup(context.Background(), "co-1", "grp-3")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "12345", id)
}

func TestLookupNoMapping(t *testing.T) {
	for name, body := range map[string]string{
		"empty data":   `{"data":[]}`,
		"missing data": `{}`,
		"null id":      `{"data":[{"shareholderGroupId":null}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			id, found, err := c.GroupForInstitution(context.Background(), "co-1", "inst-7")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Empty(t, id)
		})
	}
}

func TestLookupFailures(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, _, err := c.GroupForInstitution(context.Background(), "co-1", "inst-7")
		assert.Error(t, err)
	})

	t.Run("undecodable body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		_, _, err := c.InstitutionForGroup(context.Background(), "co-1", "grp-3")
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		base := srv.URL
		srv.Close()
		c := NewClient(&config.ServiceConfig{BaseURL: base, Timeout: 1}, logrus.New())
		_, _, err := c.GroupForInstitution(context.Background(), "co-1", "inst-7")
		assert.Error(t, err)
	})
}
