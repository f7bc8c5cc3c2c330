package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/mvp-joe/project-cortex/internal/daemon"
	"github.com/mvp-joe/project-cortex/internal/indexerr"
)

const (
	localModelID      = "bge-small-en-v1.5"
	localModelVersion = "v1.0.1"
	localDimensions   = 384
	defaultPort       = 8799
)

// LocalProvider manages a locally-running embedding daemon binary,
// installed on first use, and speaks a small JSON HTTP protocol to it.
type LocalProvider struct {
	binaryPath  string
	port        int
	cmd         *exec.Cmd
	client      *http.Client
	initialized bool
}

// NewLocalProvider constructs an uninitialized local provider. Call
// Initialize before Embed/EmbedBatch.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{
		port:   defaultPort,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Initialize ensures the daemon binary is installed and running and waits
// for it to report healthy.
func (p *LocalProvider) Initialize(ctx context.Context) error {
	if p.initialized {
		return nil
	}

	binaryPath, err := EnsureBinaryInstalled(nil)
	if err != nil {
		return indexerr.Wrap(indexerr.EmbeddingProviderError, "install embedding daemon", err)
	}
	p.binaryPath = binaryPath

	if err := p.startServer(ctx); err != nil {
		return indexerr.Wrap(indexerr.EmbeddingProviderError, "start embedding daemon", err)
	}
	if err := p.waitForHealthy(ctx, 60*time.Second); err != nil {
		return indexerr.Wrap(indexerr.EmbeddingProviderError, "embedding daemon did not become healthy", err)
	}

	p.initialized = true
	return nil
}

func (p *LocalProvider) startServer(ctx context.Context) error {
	if p.isHealthy() {
		return nil
	}
	p.cmd = exec.CommandContext(ctx, p.binaryPath)
	p.cmd.Stdout = os.Stdout
	p.cmd.Stderr = os.Stderr
	return p.cmd.Start()
}

func (p *LocalProvider) isHealthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://127.0.0.1:%d/", p.port), nil)
	resp, err := p.client.Do(req)
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		return true
	}
	return false
}

func (p *LocalProvider) waitForHealthy(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for embedding daemon")
		case <-ticker.C:
			if p.isHealthy() {
				return nil
			}
		}
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed embeds a single piece of text.
func (p *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch posts texts to the daemon's /embed endpoint, retrying with a
// halved batch on failure. A connection failure (daemon idled out and
// exited) triggers one resurrection-and-retry before giving up.
func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !p.initialized {
		return nil, indexerr.New(indexerr.EmbeddingProviderError, "local provider not initialized")
	}
	vectors, err := withBatchHalving(ctx, texts, p.doEmbed)
	if err != nil && daemon.IsConnectionError(err) {
		if restartErr := p.startServer(ctx); restartErr == nil {
			if waitErr := p.waitForHealthy(ctx, 60*time.Second); waitErr == nil {
				return withBatchHalving(ctx, texts, p.doEmbed)
			}
		}
	}
	return vectors, err
}

func (p *LocalProvider) doEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/embed", p.port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding daemon returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Embeddings, nil
}

func (p *LocalProvider) Dim() int             { return localDimensions }
func (p *LocalProvider) ModelID() string      { return localModelID }
func (p *LocalProvider) ModelVersion() string { return localModelVersion }

// Close attempts a graceful SIGTERM shutdown of the daemon process,
// escalating to SIGKILL after 5 seconds.
func (p *LocalProvider) Close() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return p.cmd.Process.Kill()
	}
}
