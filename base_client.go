package aware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const defaultRequestTimeout = 60 * time.Second

// refreshKey is the sole key ever used with the refresh singleflight group,
// making it a single-slot future: at most one refresh exchange is in flight
// system-wide and every caller needing one awaits the same result.
const refreshKey = "refresh"

type baseClient struct {
	apiAddress string
	httpClient *http.Client
	tokens     *TokenStore
	timeout    time.Duration
	logger     zerolog.Logger

	refreshGroup singleflight.Group

	observersMu sync.Mutex
	observers   []func()
}

// onSessionInvalidated registers fn to be invoked when a failed refresh
// invalidates the session. Registration happens at construction time; there
// is no unregister.
func (b *baseClient) onSessionInvalidated(fn func()) {
	b.observersMu.Lock()
	defer b.observersMu.Unlock()
	b.observers = append(b.observers, fn)
}

func (b *baseClient) notifySessionInvalidated() {
	b.observersMu.Lock()
	observers := make([]func(), len(b.observers))
	copy(observers, b.observers)
	b.observersMu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// executeAPIRequest submits an API request end to end: bearer attachment,
// one-shot refresh-and-retry, status checking, and response decoding.
func (b *baseClient) executeAPIRequest(
	ctx context.Context,
	apiReq apiRequest,
) error {
	resp, err := b.submitAPIRequest(ctx, apiReq)
	if err != nil {
		return err
	}
	if err := checkResponseStatus(apiReq, resp); err != nil {
		return err
	}
	if apiReq.respObj != nil {
		if err := json.Unmarshal(resp.body, apiReq.respObj); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// submitAPIRequest submits an API request with bearer attachment and the
// one-shot refresh-and-retry, but leaves status interpretation to the caller.
// Session operations use this directly because they map failure statuses to
// user-facing messages themselves.
func (b *baseClient) submitAPIRequest(
	ctx context.Context,
	apiReq apiRequest,
) (*apiResponse, error) {
	return b.submit(ctx, apiReq, true)
}

func (b *baseClient) submit(
	ctx context.Context,
	apiReq apiRequest,
	retryOnAuthFailure bool,
) (*apiResponse, error) {
	resp, err := b.send(ctx, apiReq)
	if err != nil {
		return nil, err
	}
	if apiReq.authenticate &&
		(resp.statusCode == http.StatusUnauthorized ||
			resp.statusCode == http.StatusForbidden) &&
		retryOnAuthFailure &&
		b.tokens.HasRefreshToken() {
		if err := b.refreshForRetry(); err != nil {
			return nil, err
		}
		// Re-issue the original request exactly once, with the retry disarmed
		// so a second 401 cannot loop.
		return b.submit(ctx, apiReq, false)
	}
	return resp, nil
}

// send executes one HTTP request with an upper time bound. The cancellation
// timer is released on every path out of this function, and transport-level
// failures are classified into the error taxonomy here, at the point they
// occur.
func (b *baseClient) send(
	ctx context.Context,
	apiReq apiRequest,
) (*apiResponse, error) {
	op := fmt.Sprintf("%s %s", apiReq.method, apiReq.path)

	reqBodyBytes, contentType, err := encodeRequestBody(apiReq)
	if err != nil {
		return nil, err
	}
	var reqBodyReader io.Reader
	if reqBodyBytes != nil {
		reqBodyReader = bytes.NewReader(reqBodyBytes)
	}

	timeout := apiReq.timeout
	if timeout == 0 {
		timeout = b.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		apiReq.method,
		fmt.Sprintf("%s/%s", b.apiAddress, apiReq.path),
		reqBodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating request %s", op)
	}
	if len(apiReq.queryParams) > 0 {
		q := req.URL.Query()
		for k, v := range apiReq.queryParams {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range apiReq.headers {
		req.Header.Add(k, v)
	}
	if apiReq.authenticate {
		if accessToken := b.tokens.AccessToken(); accessToken != "" {
			req.Header.Set(
				"Authorization",
				fmt.Sprintf("Bearer %s", accessToken),
			)
		}
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(op, err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(op, err)
	}

	return &apiResponse{
		statusCode: resp.StatusCode,
		body:       respBodyBytes,
	}, nil
}

// refreshForRetry joins (or starts) the single in-flight refresh on behalf of
// a request that just saw a 401/403. When the shared refresh fails, the
// session teardown and the invalidated broadcast run inside the shared call,
// so they happen exactly once no matter how many requests were waiting.
func (b *baseClient) refreshForRetry() error {
	_, err, _ := b.refreshGroup.Do(refreshKey, func() (interface{}, error) {
		if err := b.doRefresh(); err != nil {
			b.tokens.ClearTokens()
			b.notifySessionInvalidated()
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		b.logger.Debug().Err(err).Msg("token refresh failed")
		return NewErrSessionExpired()
	}
	return nil
}

// refreshSession joins (or starts) the single in-flight refresh without the
// teardown-on-failure side effects. The session manager uses this for its
// explicit and startup refreshes, where a failure means "not logged in"
// rather than "session invalidated mid-flight".
func (b *baseClient) refreshSession() error {
	_, err, _ := b.refreshGroup.Do(refreshKey, func() (interface{}, error) {
		return nil, b.doRefresh()
	})
	return err
}

// doRefresh performs one refresh exchange and stores the rotated tokens. The
// backend rotates refresh tokens, so the whole session record is replaced.
// It runs on a background context: the refresh outcome is shared state and
// must not be tied to whichever caller's context happened to start it.
func (b *baseClient) doRefresh() error {
	refreshToken := b.tokens.RefreshToken()
	if refreshToken == "" {
		return errors.New("no refresh token held")
	}
	resp, err := b.send(
		context.Background(),
		apiRequest{
			method: http.MethodPost,
			path:   "auth/refresh",
			reqBodyObj: refreshTokenRequest{
				RefreshToken: refreshToken,
			},
		},
	)
	if err != nil {
		return err
	}
	if resp.statusCode != http.StatusOK {
		return NewErrAPI(resp.statusCode, decodeDetail(resp.body))
	}
	authResp := AuthResponse{}
	if err := json.Unmarshal(resp.body, &authResp); err != nil {
		return errors.Wrap(err, "error unmarshaling refresh response")
	}
	b.tokens.SetTokens(
		authResp.AccessToken,
		authResp.RefreshToken,
		authResp.ExpiresIn,
		authResp.UserID,
	)
	return nil
}

func checkResponseStatus(apiReq apiRequest, resp *apiResponse) error {
	successCode := apiReq.successCode
	if successCode == 0 {
		successCode = http.StatusOK
	}
	if resp.statusCode == successCode {
		return nil
	}
	detail := decodeDetail(resp.body)
	switch resp.statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		// Reaching here means the refresh-and-retry either wasn't applicable
		// or was already spent.
		return NewErrSessionExpired()
	case http.StatusExpectationFailed:
		return NewErrProcessing(detail)
	default:
		return NewErrAPI(resp.statusCode, detail)
	}
}

func encodeRequestBody(apiReq apiRequest) ([]byte, string, error) {
	if apiReq.reqBodyObj == nil {
		return nil, "", nil
	}
	switch rb := apiReq.reqBodyObj.(type) {
	case []byte:
		return rb, apiReq.contentType, nil
	default:
		reqBodyBytes, err := json.Marshal(apiReq.reqBodyObj)
		if err != nil {
			return nil, "", errors.Wrap(err, "error marshaling request body")
		}
		return reqBodyBytes, "application/json", nil
	}
}

// classifyTransportError maps a transport-level failure to the error
// taxonomy: its own elapsed timeout becomes ErrTimeout, everything else that
// kept a response from arriving becomes ErrNetwork.
func classifyTransportError(op string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return NewErrTimeout(op)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewErrTimeout(op)
	}
	if errors.Is(err, context.Canceled) {
		return errors.Wrapf(err, "request %s canceled", op)
	}
	return NewErrNetwork(op, err)
}

func decodeDetail(body []byte) string {
	detailResp := detailResponse{}
	if err := json.Unmarshal(body, &detailResp); err != nil {
		return ""
	}
	return detailResp.Detail
}
