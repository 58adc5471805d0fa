// Package updater checks GitHub releases for a newer crusader build and
// can swap the running binary in place. Checks are best-effort: network
// failures never surface to the serve path.
package updater

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	githubRepo   = "taskcrusade/crusader"
	binaryName   = "crusader"
	fetchTimeout = 10 * time.Second
)

// Overridable in tests.
var (
	releaseEndpoint = "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	httpClient      = &http.Client{Timeout: fetchTimeout}
)

type release struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Status describes the outcome of a version check.
type Status struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// CheckVersion compares the running version against the latest GitHub
// release. It never fails: on any error the returned Status simply
// reports no update available.
func CheckVersion(currentVersion string) *Status {
	st := &Status{CurrentVersion: trimV(currentVersion)}

	rel, err := fetchLatestRelease(currentVersion)
	if err != nil {
		return st
	}

	st.LatestVersion = trimV(rel.TagName)
	st.ReleaseURL = rel.HTMLURL
	st.UpdateAvailable = versionLess(st.CurrentVersion, st.LatestVersion)
	return st
}

// SelfUpdate downloads the release archive for this OS/arch and replaces
// the running executable. The write is atomic: a temp file next to the
// binary is renamed over it.
func SelfUpdate(currentVersion string) error {
	rel, err := fetchLatestRelease(currentVersion)
	if err != nil {
		return err
	}

	latest := trimV(rel.TagName)
	if !versionLess(trimV(currentVersion), latest) {
		return fmt.Errorf("already at latest version (%s)", currentVersion)
	}

	if runtime.GOOS == "windows" {
		// Release archives for Windows are zip files, which need random
		// access to unpack. Point the user at the release page instead.
		return fmt.Errorf("automatic update is not supported on Windows, download from %s", rel.HTMLURL)
	}

	assetName := archiveName(latest)
	var url string
	for _, a := range rel.Assets {
		if a.Name == assetName {
			url = a.BrowserDownloadURL
			break
		}
	}
	if url == "" {
		return fmt.Errorf("no release asset for %s/%s (expected %s)", runtime.GOOS, runtime.GOARCH, assetName)
	}

	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("downloading release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %d", resp.StatusCode)
	}

	bin, err := binaryFromTarGz(resp.Body)
	if err != nil {
		return fmt.Errorf("extracting binary: %w", err)
	}
	return replaceExecutable(bin)
}

func fetchLatestRelease(currentVersion string) (*release, error) {
	req, err := http.NewRequest(http.MethodGet, releaseEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", binaryName+"/"+currentVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("parsing release info: %w", err)
	}
	return &rel, nil
}

// binaryFromTarGz scans a .tar.gz stream for the crusader binary.
func binaryFromTarGz(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if filepath.Base(hdr.Name) == binaryName {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("%s binary not found in archive", binaryName)
}

func replaceExecutable(bin []byte) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding current executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving symlinks: %w", err)
	}

	tmpPath := execPath + ".new"
	if err := os.WriteFile(tmpPath, bin, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}
	if err := os.Rename(tmpPath, execPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

// archiveName matches the goreleaser name_template for this platform.
func archiveName(version string) string {
	return fmt.Sprintf("%s_%s_%s_%s.tar.gz", binaryName, version, runtime.GOOS, runtime.GOARCH)
}

func trimV(v string) string {
	return strings.TrimPrefix(v, "v")
}

// versionLess reports whether current is older than latest, comparing
// up to three dotted numeric parts. "dev" builds never update.
func versionLess(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}

	cur := strings.Split(current, ".")
	lat := strings.Split(latest, ".")
	for i := 0; i < 3; i++ {
		c, l := numPart(cur, i), numPart(lat, i)
		if l != c {
			return l > c
		}
	}
	return false
}

func numPart(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	digits := parts[i]
	if j := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }); j >= 0 {
		digits = digits[:j]
	}
	n, _ := strconv.Atoi(digits)
	return n
}
