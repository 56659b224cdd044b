package media

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound indicates the input media file does not exist.
	ErrFileNotFound = errors.New("media file not found")

	// ErrUnsupportedMedia indicates an upload that is neither audio nor video.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrNoAudio indicates conversion produced no audio windows.
	ErrNoAudio = errors.New("no audio produced")

	// ErrDownloadFailed indicates yt-dlp did not report a downloaded file.
	ErrDownloadFailed = errors.New("download failed")
)

// maxStderrLines bounds how much tool output ends up in an error message.
const maxStderrLines = 5

// CommandError describes a failed external tool invocation.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

// Error formats the failure with the tail of the tool's stderr.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d)", e.Command, e.ExitCode)
	if tail := stderrTail(e.Stderr); tail != "" {
		msg += ": " + tail
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > maxStderrLines {
		lines = lines[len(lines)-maxStderrLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
