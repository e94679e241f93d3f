package driver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"description-publisher/models"
)

const testEndpoint = "/w/api.php"

// apiStub simulates the structured-data API: GET serves tokens, POST serves
// writes. Write behavior is scripted per call.
type apiStub struct {
	t           *testing.T
	anonymous   bool
	tokenCalls  int
	writeCalls  int
	writeBodies []url.Values
	writeScript []string // one raw JSON body per expected write
}

func (s *apiStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.tokenCalls++
			userinfo := `{"id":42,"name":"TestUser"}`
			if s.anonymous {
				userinfo = `{"id":0,"name":"127.0.0.1","anon":""}`
			}
			fmt.Fprintf(w, `{"query":{"tokens":{"csrftoken":"token-%d+\\"},"userinfo":%s}}`, s.tokenCalls, userinfo)
		case http.MethodPost:
			require.NoError(s.t, r.ParseForm())
			s.writeBodies = append(s.writeBodies, r.PostForm)
			require.Less(s.t, s.writeCalls, len(s.writeScript), "unexpected extra write call")
			body := s.writeScript[s.writeCalls]
			s.writeCalls++
			fmt.Fprint(w, body)
		default:
			http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
		}
	}
}

func newTestClient(t *testing.T, serverURL string) *StructuredDataClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewStructuredDataClient(serverURL, "description-publisher-test/1.0", 5*time.Second, logger)
}

func TestStructuredDataClient_Submit_Success(t *testing.T) {
	stub := &apiStub{t: t, writeScript: []string{`{"success":1}`}}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(t, server.URL)

	body := url.Values{"language": {"fr"}, "value": {"Capitale de la France"}}
	result, authenticated, err := client.Submit(context.Background(), testEndpoint,
		url.Values{"action": {"wbsetdescription"}, "format": {"json"}}, body, "token")

	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.True(t, authenticated)
	assert.Equal(t, 1, stub.tokenCalls)
	assert.Equal(t, 1, stub.writeCalls)

	// The freshly acquired token must ride in the form body, and the caller's
	// body parameters must survive the merge.
	require.Len(t, stub.writeBodies, 1)
	assert.Equal(t, `token-1+\`, stub.writeBodies[0].Get("token"))
	assert.Equal(t, "Capitale de la France", stub.writeBodies[0].Get("value"))
}

func TestStructuredDataClient_Submit_AnonymousSession(t *testing.T) {
	stub := &apiStub{t: t, anonymous: true, writeScript: []string{`{"success":1}`}}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, authenticated, err := client.Submit(context.Background(), testEndpoint, nil, url.Values{}, "token")

	require.NoError(t, err)
	assert.True(t, result.Succeeded(), "anonymous writes can still succeed")
	assert.False(t, authenticated)
}

func TestStructuredDataClient_Submit_TokenRetry(t *testing.T) {
	tests := map[string]struct {
		writeScript    string // second write response
		wantErrCode    string
		wantSucceeded  bool
		wantTokenCalls int
		wantWriteCalls int
	}{
		"second token accepted": {
			writeScript:    `{"success":1}`,
			wantSucceeded:  true,
			wantTokenCalls: 2,
			wantWriteCalls: 2,
		},
		"second token rejected is terminal": {
			writeScript:    `{"error":{"code":"badtoken","info":"Invalid CSRF token."}}`,
			wantErrCode:    "badtoken",
			wantTokenCalls: 2,
			wantWriteCalls: 2,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			stub := &apiStub{t: t, writeScript: []string{
				`{"error":{"code":"badtoken","info":"Invalid CSRF token."}}`,
				tc.writeScript,
			}}
			server := httptest.NewServer(stub.handler())
			defer server.Close()

			client := newTestClient(t, server.URL)

			result, _, err := client.Submit(context.Background(), testEndpoint, nil, url.Values{}, "token")

			require.NoError(t, err)
			assert.Equal(t, tc.wantTokenCalls, stub.tokenCalls, "token acquisitions")
			assert.Equal(t, tc.wantWriteCalls, stub.writeCalls, "write submissions")

			if tc.wantSucceeded {
				assert.True(t, result.Succeeded())
				// The retry must carry the re-acquired token, not the first one.
				assert.Equal(t, `token-2+\`, stub.writeBodies[1].Get("token"))
			} else {
				require.NotNil(t, result.RemoteError)
				assert.Equal(t, tc.wantErrCode, result.RemoteError.Code)
			}
		})
	}
}

func TestStructuredDataClient_Submit_NonTokenRejectionNotRetried(t *testing.T) {
	stub := &apiStub{t: t, writeScript: []string{
		`{"error":{"code":"no-permission","info":"You do not have permission."}}`,
	}}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, _, err := client.Submit(context.Background(), testEndpoint, nil, url.Values{}, "token")

	require.NoError(t, err)
	require.NotNil(t, result.RemoteError)
	assert.Equal(t, "no-permission", result.RemoteError.Code)
	assert.Equal(t, 1, stub.tokenCalls)
	assert.Equal(t, 1, stub.writeCalls)
}

func TestStructuredDataClient_Submit_TokenAcquisitionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, authenticated, err := client.Submit(context.Background(), testEndpoint, nil, url.Values{}, "token")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.False(t, authenticated)
	assert.Contains(t, err.Error(), "token acquisition failed")
}

func TestStructuredDataClient_Submit_UnparseableResponses(t *testing.T) {
	tests := map[string]struct {
		handler http.HandlerFunc
	}{
		"write body is not json": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodGet {
					fmt.Fprint(w, `{"query":{"tokens":{"csrftoken":"abc+\\"},"userinfo":{"id":1,"name":"u"}}}`)
					return
				}
				fmt.Fprint(w, `<html>maintenance</html>`)
			},
		},
		"token body carries no token": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"query":{}}`)
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := newTestClient(t, server.URL)

			_, _, err := client.Submit(context.Background(), testEndpoint, nil, url.Values{}, "token")

			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrUnparseableResponse)
		})
	}
}
