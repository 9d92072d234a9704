// Package playback hands finished narration files to an OS audio player.
//
// Player selection is a prioritized lookup over well-known binaries for the
// host platform, with format-specific fallbacks on Linux. There is no
// in-process decoding here; the external player owns the audio device.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoPlayer is returned when no suitable player binary is installed.
var ErrNoPlayer = errors.New("no suitable audio player found")

// lookPath is swapped out by tests to simulate installed players.
var lookPath = exec.LookPath

// candidate describes one player binary and how to invoke it quietly.
type candidate struct {
	bin  string
	args func(path string) []string
	// formats restricts the candidate to file extensions; empty means any.
	formats []string
}

var darwinPlayers = []candidate{
	{bin: "afplay", args: func(p string) []string { return []string{p} }},
	{bin: "ffplay", args: func(p string) []string { return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", p} }},
	{bin: "mpv", args: func(p string) []string { return []string{"--no-video", "--really-quiet", p} }},
	{bin: "vlc", args: func(p string) []string { return []string{"--intf", "dummy", "--play-and-exit", "--quiet", p} }},
}

var linuxPlayers = []candidate{
	{bin: "ffplay", args: func(p string) []string { return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", p} }},
	{bin: "mpv", args: func(p string) []string { return []string{"--no-video", "--really-quiet", p} }},
	{bin: "vlc", args: func(p string) []string { return []string{"--intf", "dummy", "--play-and-exit", "--quiet", p} }},
	{bin: "mplayer", args: func(p string) []string { return []string{"-really-quiet", p} }},
	{bin: "mpg123", args: func(p string) []string { return []string{"-q", p} }, formats: []string{"mp3", "aac", "opus"}},
	{bin: "aplay", args: func(p string) []string { return []string{p} }, formats: []string{"wav"}},
	{bin: "paplay", args: func(p string) []string { return []string{p} }},
	{bin: "play", args: func(p string) []string { return []string{"-q", p} }},
}

// SelectPlayer returns the command line for the best installed player on
// this platform for the given audio file, or ErrNoPlayer.
func SelectPlayer(audioPath string) ([]string, error) {
	return selectFor(runtime.GOOS, audioPath)
}

func selectFor(goos, audioPath string) ([]string, error) {
	var players []candidate
	switch goos {
	case "darwin":
		players = darwinPlayers
	case "linux":
		players = linuxPlayers
	default:
		// Windows and everything else: playback is not supported.
		return nil, ErrNoPlayer
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(audioPath), "."))

	for _, c := range players {
		if len(c.formats) > 0 && !containsFormat(c.formats, ext) {
			continue
		}
		if _, err := lookPath(c.bin); err != nil {
			continue
		}
		return append([]string{c.bin}, c.args(audioPath)...), nil
	}

	return nil, ErrNoPlayer
}

func containsFormat(formats []string, ext string) bool {
	for _, f := range formats {
		if f == ext {
			return true
		}
	}
	return false
}

// Play runs the selected player to completion and returns its exit code.
// ErrNoPlayer is returned unwrapped so callers can treat it as a skip
// rather than a failure.
func Play(ctx context.Context, audioPath string) (int, error) {
	cmd, err := SelectPlayer(audioPath)
	if err != nil {
		return 1, err
	}

	slog.Debug("Playback: starting player", "cmd", cmd[0], "file", audioPath)

	c := exec.CommandContext(ctx, cmd[0], cmd[1:]...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), err
		}
		return 1, err
	}
	return 0, nil
}
