package vision

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annotateURL = `=~^https://vision\.googleapis\.com/v1/images:annotate`

func newTestGoogleClient(t *testing.T) *GoogleClient {
	t.Helper()

	client := NewGoogleClient("test-key", 5*time.Second, 20, []string{"fr", "en"})
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func TestGoogleAnnotateMapsResponse(t *testing.T) {
	client := newTestGoogleClient(t)

	httpmock.RegisterResponder(http.MethodPost, annotateURL,
		httpmock.NewStringResponder(http.StatusOK, `{
			"responses": [{
				"labelAnnotations": [
					{"description": "Hedgehog", "score": 0.92},
					{"description": "Mammal", "score": 0.85}
				],
				"localizedObjectAnnotations": [
					{"name": "Animal", "score": 0.8}
				],
				"webDetection": {
					"webEntities": [{"description": "European hedgehog", "score": 1.2}],
					"bestGuessLabels": [{"label": "hedgehog in grass"}]
				}
			}]
		}`))

	result, err := client.Annotate(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, result.Labels, 2)
	assert.Equal(t, "Hedgehog", result.Labels[0].Text)
	require.NotNil(t, result.Labels[0].Score)
	assert.InDelta(t, 0.92, *result.Labels[0].Score, 1e-9)

	require.Len(t, result.Objects, 1)
	assert.Equal(t, "Animal", result.Objects[0].Text)

	require.Len(t, result.WebEntities, 1)
	assert.Equal(t, "European hedgehog", result.WebEntities[0].Text)

	assert.Equal(t, []string{"hedgehog in grass"}, result.BestGuesses)
}

func TestGoogleAnnotateRequestShape(t *testing.T) {
	client := newTestGoogleClient(t)

	var captured googleRequest
	httpmock.RegisterResponder(http.MethodPost, annotateURL,
		func(req *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(body, &captured); err != nil {
				return nil, err
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"responses":[{}]}`), nil
		})

	_, err := client.Annotate(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)

	require.Len(t, captured.Requests, 1)
	r := captured.Requests[0]
	assert.NotEmpty(t, r.Image.Content)
	assert.Equal(t, []string{"fr", "en"}, r.ImageContext.LanguageHints)

	types := make(map[string]int, len(r.Features))
	for _, f := range r.Features {
		types[f.Type] = f.MaxResults
	}
	assert.Equal(t, 20, types["LABEL_DETECTION"])
	assert.Equal(t, 20, types["OBJECT_LOCALIZATION"])
	assert.Equal(t, 5, types["WEB_DETECTION"])
}

func TestGoogleAnnotateEmptyResponse(t *testing.T) {
	client := newTestGoogleClient(t)

	httpmock.RegisterResponder(http.MethodPost, annotateURL,
		httpmock.NewStringResponder(http.StatusOK, `{"responses":[]}`))

	result, err := client.Annotate(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Labels)
	assert.Empty(t, result.Objects)
}

func TestGoogleAnnotateUpstreamError(t *testing.T) {
	client := newTestGoogleClient(t)

	httpmock.RegisterResponder(http.MethodPost, annotateURL,
		httpmock.NewStringResponder(http.StatusForbidden, `{"error":{"message":"key invalid"}}`))

	result, err := client.Annotate(context.Background(), []byte("jpeg-bytes"))
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestGoogleAnnotateWithoutKey(t *testing.T) {
	client := NewGoogleClient("", 5*time.Second, 20, nil)

	result, err := client.Annotate(context.Background(), []byte("jpeg-bytes"))
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, result)
}
