package intake

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// maxFetchBytes caps a remote JSON body.
const maxFetchBytes = 64 << 20

// Loader resolves a source (a local path or an http(s) URL) into a table.
type Loader struct {
	Client *http.Client
	Log    logrus.FieldLogger
}

// NewLoader returns a Loader with a client using timeout.
func NewLoader(timeout time.Duration, log logrus.FieldLogger) *Loader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Loader{Client: &http.Client{Timeout: timeout}, Log: log}
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load parses a local file or fetches a remote JSON array.
func (l *Loader) Load(ctx context.Context, source string) (*table.Table, error) {
	var (
		t   *table.Table
		err error
	)
	if IsURL(source) {
		t, err = l.FetchJSON(ctx, source)
	} else {
		t, err = ParseFile(source)
	}
	if err != nil {
		l.Log.WithError(err).WithField("source", source).Debug("intake failed")
		return nil, err
	}
	l.Log.WithFields(logrus.Fields{
		"source":  source,
		"rows":    t.Len(),
		"columns": len(t.Columns),
	}).Debug("intake complete")
	return t, nil
}

// FetchJSON issues a single GET and decodes the body as a JSON array of
// objects. Transport failures and non-2xx responses are external errors;
// a body that is not an array of objects is a parse error.
func (l *Loader) FetchJSON(ctx context.Context, url string) (*table.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Validation("url", err.Error())
	}
	req.Header.Set("Accept", "application/json")
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, apperr.External("data source", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.External("data source", fmt.Errorf("GET %s: %s: %s", url, resp.Status, strings.TrimSpace(string(snippet))))
	}
	recs, err := DecodeJSONArray(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, apperr.Parse("json response", err)
	}
	if len(recs) == 0 {
		return nil, apperr.Parsef("json response", "no rows")
	}
	return table.Load(recs), nil
}
