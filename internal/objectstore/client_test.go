package objectstore

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uploadURL = `=~^https://store\.example/storage/v1/object/observations/obs_`

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client := NewClient("https://store.example/", "service-key", "observations", 5*time.Second)
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func TestUploadReturnsPublicURL(t *testing.T) {
	client := newTestClient(t)

	var captured *http.Request
	var body []byte
	httpmock.RegisterResponder(http.MethodPost, uploadURL,
		func(req *http.Request) (*http.Response, error) {
			captured = req
			var err error
			body, err = io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"Key":"ok"}`), nil
		})

	publicURL, err := client.Upload(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.Regexp(t,
		regexp.MustCompile(`^https://store\.example/storage/v1/object/public/observations/obs_\d+_[0-9a-f]{8}\.jpg$`),
		publicURL)

	require.NotNil(t, captured)
	assert.Equal(t, "Bearer service-key", captured.Header.Get("Authorization"))
	assert.Equal(t, "service-key", captured.Header.Get("apikey"))
	assert.Equal(t, "image/jpeg", captured.Header.Get("Content-Type"))
	assert.Equal(t, []byte("jpeg-bytes"), body)
}

func TestUploadNamesAreUnique(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, uploadURL,
		httpmock.NewStringResponder(http.StatusOK, `{}`))

	first, err := client.Upload(context.Background(), []byte("a"), "image/jpeg")
	require.NoError(t, err)
	second, err := client.Upload(context.Background(), []byte("b"), "image/jpeg")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestUploadUpstreamError(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, uploadURL,
		httpmock.NewStringResponder(http.StatusForbidden, `{"message":"invalid key"}`))

	_, err := client.Upload(context.Background(), []byte("x"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
