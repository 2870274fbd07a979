// Package fixtures downloads the third-party data files that the test suite runs against, but
// that can't be redistributed with it.
package fixtures

import (
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/datawire/dlib/dlog"
)

// DataDir is the default cache directory.
const DataDir = "data"

// Sources is the list of files to fetch.
var Sources = []string{
	"http://cvs.savannah.gnu.org/viewvc/*checkout*/miscfiles/cities.dat?root=miscfiles",
	"http://weather.noaa.gov/data/nsd_bbsss.txt",
	"http://weather.noaa.gov/data/nsd_cccc.txt",
	"http://www.haroldstreet.org.uk/waypoints/alltrigs-wgs84.txt",
	"http://www.opencellid.org/data/cells.txt.gz",
	"http://xplanet.sourceforge.net/Extras/earth-markers-schaumann",
}

// Warning is shown before anything is fetched.
const Warning = "*WARNING* This script will fetch some data files that can not be distributed " +
	"legally!  In some jurisdictions you may not even be entitled to personal use of the data " +
	"it fetches without express consent of the copyright holders."

// DataFile returns the local filename that a resource is cached as: the last element of the
// URL's path, inside dir, less any .gz or .bz2 suffix.
func DataFile(dir, resource string) (string, error) {
	u, err := url.Parse(resource)
	if err != nil {
		return "", err
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return "", fmt.Errorf("resource %q has no file name: it would be cached as %q itself",
			resource, dir)
	}
	for _, ext := range []string{".gz", ".bz2"} {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}
	return filepath.Join(dir, base), nil
}

type HTTPError struct {
	Status     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %s", e.Status)
}

type Fetcher struct {
	// Dir is the cache directory; DataDir if empty.
	Dir        string
	HTTPClient *http.Client
	UserAgent  string
	// Force re-downloads files that are already cached.
	Force bool
}

func (f *Fetcher) fillDefaults() {
	if f.Dir == "" {
		f.Dir = DataDir
	}
	if f.HTTPClient == nil {
		f.HTTPClient = http.DefaultClient
	}
	if f.UserAgent == "" {
		f.UserAgent = "github.com/datawire/scmdist/pkg/fixtures"
	}
}

// decoder returns a reader that decompresses body according to the suffix on the resource's
// path.
func decoder(resource *url.URL, body io.Reader) (io.Reader, error) {
	switch {
	case strings.HasSuffix(resource.Path, ".gz"):
		return gzip.NewReader(body)
	case strings.HasSuffix(resource.Path, ".bz2"):
		return bzip2.NewReader(body), nil
	default:
		return body, nil
	}
}

// Fetch downloads a single resource to filename, decompressing it on the way.  filename is only
// created once the whole resource has been read.
func (f *Fetcher) Fetch(ctx context.Context, resource, filename string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("GET %q => %w", resource, err)
		}
	}()
	f.fillDefaults()
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	u, err := url.Parse(resource)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		maybeSetErr(resp.Body.Close())
	}()
	if resp.StatusCode != http.StatusOK {
		return &HTTPError{Status: resp.Status, StatusCode: resp.StatusCode}
	}
	body, err := decoder(u, resp.Body)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".")
	if err != nil {
		return err
	}
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := io.Copy(tmp, body); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return err
	}
	tmp = nil
	return nil
}

// FetchAll fetches each of resources that isn't already cached (or all of them, if Force is
// set), stopping at the first failure.  It returns how many were skipped as already cached.
func (f *Fetcher) FetchAll(ctx context.Context, resources []string) (cached int, err error) {
	f.fillDefaults()
	for _, resource := range resources {
		filename, err := DataFile(f.Dir, resource)
		if err != nil {
			return cached, err
		}
		if !f.Force {
			_, err := os.Stat(filename)
			if err == nil {
				dlog.Infof(ctx, "%q already downloaded", resource)
				cached++
				continue
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return cached, err
			}
		}
		dlog.Infof(ctx, "fetching %q...", resource)
		if err := f.Fetch(ctx, resource, filename); err != nil {
			return cached, err
		}
	}
	return cached, nil
}
