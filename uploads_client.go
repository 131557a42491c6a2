package aware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// directUploadAttempts bounds the direct-to-storage path: one attempt
	// plus one retry after a network-class failure.
	directUploadAttempts = 2
	directRetryDelay     = 500 * time.Millisecond
)

// ProgressFunc receives best-effort progress milestones in the range 0-100.
// Within a single orchestrated call, reported values never decrease.
type ProgressFunc func(percent int)

// UploadsClient gets a local file to a public URL, preferring a direct
// signed upload to the storage provider and degrading to a backend-mediated
// upload when the direct path is unavailable or exhausted.
type UploadsClient interface {
	// GetUploadCredential fetches a fresh short-lived credential for one
	// direct upload.
	GetUploadCredential(ctx context.Context) (UploadCredential, error)
	// Upload pushes the file and returns its public URL. Exactly one URL is
	// returned, from whichever path succeeded, or an error.
	Upload(
		ctx context.Context,
		file UploadFile,
		onProgress ProgressFunc,
	) (string, error)
}

type uploadsClient struct {
	*baseClient
	uploadAPIURL string
	publicKey    string
	urlEndpoint  string
	retryDelay   time.Duration
	now          func() time.Time
}

func newUploadsClient(
	base *baseClient,
	uploadAPIURL string,
	publicKey string,
	urlEndpoint string,
) UploadsClient {
	return &uploadsClient{
		baseClient:   base,
		uploadAPIURL: uploadAPIURL,
		publicKey:    publicKey,
		urlEndpoint:  urlEndpoint,
		retryDelay:   directRetryDelay,
		now:          time.Now,
	}
}

func (u *uploadsClient) GetUploadCredential(
	ctx context.Context,
) (UploadCredential, error) {
	cred := UploadCredential{}
	if err := u.executeAPIRequest(
		ctx,
		apiRequest{
			method:       http.MethodGet,
			path:         "imagekit/auth",
			authenticate: true,
			respObj:      &cred,
		},
	); err != nil {
		return cred, err
	}
	return cred, nil
}

func (u *uploadsClient) Upload(
	ctx context.Context,
	file UploadFile,
	onProgress ProgressFunc,
) (string, error) {
	if err := file.Validate(); err != nil {
		return "", err
	}
	progress := newProgressReporter(onProgress)

	cred, err := u.GetUploadCredential(ctx)
	if err != nil {
		return "", err
	}

	publicKey := cred.PublicKey
	if publicKey == "" {
		publicKey = u.publicKey
	}
	if cred.MockMode || publicKey == "" {
		// The storage provider is bypassed entirely: either the backend said
		// so, or no public key is configured anywhere. The backend-mediated
		// path is then the primary path, and its failure is the failure.
		progress.report(10)
		imageURL, err := u.fallbackUpload(ctx, file)
		if err != nil {
			return "", err
		}
		progress.report(100)
		return imageURL, nil
	}

	var directErr error
	for attempt := 0; attempt < directUploadAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", classifyTransportError("upload", ctx.Err())
			case <-time.After(u.retryDelay):
			}
		}
		// An expired credential is rejected locally; no network call is made
		// with it.
		if cred.Expired(u.now()) {
			directErr = errors.Errorf(
				"upload credential expired at %d",
				cred.Expire,
			)
			break
		}
		if !cred.Complete() {
			directErr = errors.New(
				"upload credential is missing authentication parameters",
			)
			break
		}
		progress.report(10)
		imageURL, err := u.directUpload(ctx, file, cred, publicKey)
		if err == nil {
			progress.report(100)
			return imageURL, nil
		}
		directErr = err
		if !IsNetworkError(err) {
			// A rejected request won't get better on a retry.
			break
		}
	}
	u.logger.Warn().
		Err(directErr).
		Str("file", file.Name).
		Msg("direct upload failed; falling back to backend-mediated upload")

	imageURL, fallbackErr := u.fallbackUpload(ctx, file)
	if fallbackErr != nil {
		// The direct path's error is the primary signal; the fallback's is
		// secondary context.
		u.logger.Warn().
			Err(fallbackErr).
			Str("file", file.Name).
			Msg("fallback upload failed")
		return "", NewErrUploadExhausted(directErr, fallbackErr)
	}
	progress.report(100)
	return imageURL, nil
}

// directUpload pushes the file straight to the storage provider's upload API
// using the signed credential.
func (u *uploadsClient) directUpload(
	ctx context.Context,
	file UploadFile,
	cred UploadCredential,
	publicKey string,
) (string, error) {
	fileName := file.Name
	if fileName == "" {
		fileName = uuid.NewString()
	}
	body, contentType, err := encodeMultipart(
		map[string]string{
			"publicKey":         publicKey,
			"signature":         cred.Signature,
			"expire":            strconv.FormatInt(cred.Expire, 10),
			"token":             cred.Token,
			"fileName":          fileName,
			"useUniqueFileName": "true",
		},
		fileName,
		file.Data,
	)
	if err != nil {
		return "", err
	}

	op := fmt.Sprintf("POST %s", u.uploadAPIURL)
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		u.uploadAPIURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return "", errors.Wrap(err, "error creating direct upload request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(op, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportError(op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf(
			"storage provider rejected upload with %d: %s",
			resp.StatusCode,
			string(respBody),
		)
	}
	result := struct {
		URL string `json:"url"`
	}{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", errors.Wrap(err, "error unmarshaling upload response")
	}
	if result.URL == "" {
		return "", errors.New("storage provider returned no URL")
	}
	return result.URL, nil
}

// fallbackUpload sends the raw file to the backend, which performs the
// storage write server-side and returns the resulting URL.
func (u *uploadsClient) fallbackUpload(
	ctx context.Context,
	file UploadFile,
) (string, error) {
	body, contentType, err := encodeMultipart(nil, file.Name, file.Data)
	if err != nil {
		return "", err
	}
	uploadResp := struct {
		ImageURL string `json:"image_url"`
		Success  bool   `json:"success"`
	}{}
	if err := u.executeAPIRequest(
		ctx,
		apiRequest{
			method:       http.MethodPost,
			path:         "imagekit/upload",
			contentType:  contentType,
			reqBodyObj:   body,
			authenticate: true,
			respObj:      &uploadResp,
		},
	); err != nil {
		return "", err
	}
	if uploadResp.ImageURL == "" {
		return "", errors.New("backend upload returned no URL")
	}
	return uploadResp.ImageURL, nil
}

func encodeMultipart(
	fields map[string]string,
	fileName string,
	data []byte,
) ([]byte, string, error) {
	if fileName == "" {
		fileName = uuid.NewString()
	}
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", errors.Wrap(err, "error encoding form field")
		}
	}
	fw, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", errors.Wrap(err, "error encoding form file")
	}
	if _, err := fw.Write(data); err != nil {
		return nil, "", errors.Wrap(err, "error encoding file content")
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "error finalizing form")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// progressReporter clamps reported progress to a high-water mark so that
// mid-upload retries, which reset their internal milestones, never surface a
// decreasing value to the caller.
type progressReporter struct {
	mu   sync.Mutex
	fn   ProgressFunc
	high int
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{
		fn: fn,
	}
}

func (p *progressReporter) report(percent int) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	if percent > p.high {
		p.high = percent
	}
	high := p.high
	p.mu.Unlock()
	p.fn(high)
}
