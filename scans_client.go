package aware

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Shares of the aggregate compare progress: the two uploads together
// contribute up to 35 points on top of a 10-point floor, the join pins 50,
// and the comparison call accounts for the rest.
const (
	compareProgressFloor = 10
	compareUploadShare   = 0.35
)

// ScansClient composes the domain-level analysis calls on top of the
// authenticated dispatcher and the upload orchestrator.
type ScansClient interface {
	// Scan analyzes a single already-uploaded image.
	Scan(ctx context.Context, req ScanRequest) (ScanResult, error)
	// Compare uploads two local files in parallel, then weighs the two
	// products against each other. Either upload failing fails the whole
	// operation; there is no partial-compare state.
	Compare(
		ctx context.Context,
		file1 UploadFile,
		file2 UploadFile,
		req CompareRequest,
		onProgress ProgressFunc,
	) (CompareResult, error)
	// History returns past scans, newest first. History is supplementary and
	// never blocking: on any failure it degrades to an empty list.
	History(ctx context.Context) []HistoryItem
}

type scansClient struct {
	*baseClient
	uploads UploadsClient
}

func newScansClient(base *baseClient, uploads UploadsClient) ScansClient {
	return &scansClient{
		baseClient: base,
		uploads:    uploads,
	}
}

func (s *scansClient) Scan(
	ctx context.Context,
	req ScanRequest,
) (ScanResult, error) {
	result := ScanResult{}
	if err := s.executeAPIRequest(
		ctx,
		apiRequest{
			method:       http.MethodPost,
			path:         "scan",
			reqBodyObj:   req,
			authenticate: true,
			respObj:      &result,
		},
	); err != nil {
		return result, err
	}
	if result.URL == "" {
		result.URL = req.URL
	}
	return result, nil
}

func (s *scansClient) Compare(
	ctx context.Context,
	file1 UploadFile,
	file2 UploadFile,
	req CompareRequest,
	onProgress ProgressFunc,
) (CompareResult, error) {
	result := CompareResult{}
	progress := newCompareProgress(onProgress)
	progress.overall(compareProgressFloor)

	// Both uploads run in parallel; the comparison call is issued only after
	// both URLs are available.
	var urls [2]string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		imageURL, err := s.uploads.Upload(gctx, file1, progress.child(0))
		urls[0] = imageURL
		return err
	})
	g.Go(func() error {
		imageURL, err := s.uploads.Upload(gctx, file2, progress.child(1))
		urls[1] = imageURL
		return err
	})
	if err := g.Wait(); err != nil {
		return result, err
	}
	progress.overall(50)

	req.URL1 = urls[0]
	req.URL2 = urls[1]
	if err := s.executeAPIRequest(
		ctx,
		apiRequest{
			method:       http.MethodPost,
			path:         "compare",
			reqBodyObj:   req,
			authenticate: true,
			respObj:      &result,
		},
	); err != nil {
		return result, err
	}
	progress.overall(100)
	return result, nil
}

func (s *scansClient) History(ctx context.Context) []HistoryItem {
	items := []HistoryItem{}
	if err := s.executeAPIRequest(
		ctx,
		apiRequest{
			method:       http.MethodGet,
			path:         "history",
			authenticate: true,
			respObj:      &items,
		},
	); err != nil {
		s.logger.Warn().Err(err).Msg("history fetch failed")
		return []HistoryItem{}
	}
	return items
}

// compareProgress aggregates two per-upload progress streams and the
// comparison call into a single monotonically non-decreasing 0-100 stream.
type compareProgress struct {
	mu     sync.Mutex
	fn     ProgressFunc
	shares [2]float64
	high   int
}

func newCompareProgress(fn ProgressFunc) *compareProgress {
	return &compareProgress{
		fn: fn,
	}
}

// child returns the ProgressFunc handed to upload i.
func (c *compareProgress) child(i int) ProgressFunc {
	return func(percent int) {
		c.mu.Lock()
		if p := float64(percent); p > c.shares[i] {
			c.shares[i] = p
		}
		// Both uploads at 100 puts the aggregate at 45; the join then pins 50.
		aggregate := compareProgressFloor +
			int(compareUploadShare*(c.shares[0]+c.shares[1])/2)
		c.emit(aggregate)
		c.mu.Unlock()
	}
}

func (c *compareProgress) overall(percent int) {
	c.mu.Lock()
	c.emit(percent)
	c.mu.Unlock()
}

// emit is called with c.mu held.
func (c *compareProgress) emit(percent int) {
	if percent > c.high {
		c.high = percent
	}
	if c.fn != nil {
		c.fn(c.high)
	}
}
