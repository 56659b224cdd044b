package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Acquirer resolves user input into a normalized audio artifact.
type Acquirer interface {
	// SaveUpload stores uploaded media under the work directory and returns
	// its path. Content that is not audio or video is rejected.
	SaveUpload(ctx context.Context, name string, r io.Reader) (string, error)

	// Download fetches the best audio stream of a remote video and returns
	// the normalized WAV path.
	Download(ctx context.Context, url string) (string, error)

	// Normalize converts any media file into 16 kHz mono PCM WAV.
	Normalize(ctx context.Context, path string) (string, error)

	// Discard removes a temporary artifact, logging instead of failing.
	Discard(path string)
}

type toolAcquirer struct {
	config Config
	settings
}

// newAcquirer is an internal constructor that returns the concrete type.
func newAcquirer(config Config, opts ...Option) (*toolAcquirer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &toolAcquirer{
		config:   config,
		settings: applyOptions("media-acquirer", opts),
	}, nil
}

// NewAcquirer creates an Acquirer driven by ffmpeg and yt-dlp.
func NewAcquirer(config Config, opts ...Option) (Acquirer, error) {
	return newAcquirer(config, opts...)
}

func (a *toolAcquirer) SaveUpload(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(a.config.WorkDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(a.config.WorkDir, uploadName(name))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		os.Remove(path)
		return "", err
	}
	if !IsMediaType(mtype) {
		os.Remove(path)
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
	}

	a.logger.Debug("upload saved", "path", path, "mime", mtype.String())
	return path, nil
}

func (a *toolAcquirer) Download(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(a.config.WorkDir, 0755); err != nil {
		return "", err
	}

	a.logger.Info("downloading audio", "url", url)
	result, err := a.runner.Run(ctx, a.config.YTDLPPath, buildDownloadArgs(a.config.WorkDir, url)...)
	if err != nil {
		return "", err
	}

	downloaded := lastLine(result.Stdout)
	if downloaded == "" {
		return "", fmt.Errorf("%w: yt-dlp reported no file for %s", ErrDownloadFailed, url)
	}

	wav, err := a.Normalize(ctx, downloaded)
	if err != nil {
		return "", err
	}
	if downloaded != wav {
		a.Discard(downloaded)
	}
	return wav, nil
}

func (a *toolAcquirer) Normalize(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", err
	}

	out := normalizedPath(a.config.WorkDir, path)
	if _, err := a.runner.Run(ctx, a.config.FFmpegPath, buildNormalizeArgs(path, out)...); err != nil {
		return "", err
	}
	return out, nil
}

func (a *toolAcquirer) Discard(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		a.logger.Warn("failed to remove temporary file", "path", path, "err", err)
	}
}

// uploadName builds a collision-free file name that keeps the original
// extension and a readable stem.
func uploadName(name string) string {
	base := filepath.Base(name)
	ext := strings.ToLower(filepath.Ext(base))
	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "upload"
	}
	return uuid.NewString()[:8] + "_" + stem + ext
}

func normalizedPath(workDir, input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(workDir, stem+"_16k.wav")
}

// IsMediaType reports whether mtype or one of its parents is an audio or
// video type.
func IsMediaType(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		s := m.String()
		if strings.HasPrefix(s, "audio/") || strings.HasPrefix(s, "video/") {
			return true
		}
	}
	return false
}

func buildDownloadArgs(workDir, url string) []string {
	return []string{
		"-f", "bestaudio/best",
		"--no-playlist",
		"--no-warnings",
		"-o", filepath.Join(workDir, "%(id)s.%(ext)s"),
		"--print", "after_move:filepath",
		url,
	}
}

func buildNormalizeArgs(input, output string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", input,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		output,
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
