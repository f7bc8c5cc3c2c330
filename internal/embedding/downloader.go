package embedding

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DaemonVersion is the released version of the embedding daemon binary,
// decoupled from the module's own version so the daemon can ship on its
// own cadence.
const DaemonVersion = "v1.0.1"

// Downloader fetches and extracts a daemon release archive.
type Downloader interface {
	DownloadAndExtract(url, targetDir, ext string) error
}

// HTTPDownloader implements Downloader over plain HTTP GET.
type HTTPDownloader struct{}

func NewHTTPDownloader() Downloader { return &HTTPDownloader{} }

// EnsureBinaryInstalled returns the path to the local daemon binary,
// downloading and extracting it into ~/.codeindex/bin on first use. A nil
// downloader defaults to HTTPDownloader.
func EnsureBinaryInstalled(downloader Downloader) (string, error) {
	if downloader == nil {
		downloader = NewHTTPDownloader()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}

	binDir := filepath.Join(homeDir, ".codeindex", "bin")
	binaryPath := filepath.Join(binDir, "codeindex-embed")
	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	if _, err := os.Stat(binaryPath); err == nil {
		return binaryPath, nil
	}

	platform, err := detectPlatform()
	if err != nil {
		return "", err
	}

	ext := "tar.gz"
	if runtime.GOOS == "windows" {
		ext = "zip"
	}
	url := fmt.Sprintf("https://github.com/mvp-joe/project-cortex/releases/download/embed-%s/codeindex-embed-%s.%s", DaemonVersion, platform, ext)

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return "", fmt.Errorf("create bin directory: %w", err)
	}
	if err := downloader.DownloadAndExtract(url, binDir, ext); err != nil {
		return "", fmt.Errorf("download embedding daemon: %w", err)
	}

	extractedName := fmt.Sprintf("codeindex-embed-%s", platform)
	if runtime.GOOS == "windows" {
		extractedName += ".exe"
	}
	extractedPath := filepath.Join(binDir, extractedName)
	if extractedPath != binaryPath {
		if err := os.Rename(extractedPath, binaryPath); err != nil {
			return "", fmt.Errorf("place embedding daemon binary: %w", err)
		}
	}
	if err := os.Chmod(binaryPath, 0o755); err != nil {
		return "", fmt.Errorf("make embedding daemon executable: %w", err)
	}

	return binaryPath, nil
}

func detectPlatform() (string, error) {
	var osName string
	switch runtime.GOOS {
	case "darwin", "linux", "windows":
		osName = runtime.GOOS
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	switch runtime.GOARCH {
	case "amd64", "arm64":
	default:
		return "", fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
	}
	return fmt.Sprintf("%s-%s", osName, runtime.GOARCH), nil
}

func (d *HTTPDownloader) DownloadAndExtract(url, targetDir, ext string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	if strings.HasSuffix(ext, "zip") {
		return extractZipFromReader(resp.Body, targetDir)
	}
	return extractTarGz(resp.Body, targetDir)
}

func extractTarGz(r io.Reader, targetDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		dest := filepath.Join(targetDir, filepath.Base(hdr.Name))
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return err
		}
		f.Close()
	}
}

func extractZipFromReader(r io.Reader, targetDir string) error {
	tmp, err := os.CreateTemp("", "codeindex-embed-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	tmp.Close()

	zr, err := zip.OpenReader(tmp.Name())
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		dest := filepath.Join(targetDir, filepath.Base(f.Name))
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close()
			return err
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			rc.Close()
			return err
		}
		out.Close()
		rc.Close()
	}
	return nil
}
