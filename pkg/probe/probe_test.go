package probe

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSynthesizer fails for the voices in failOn and records call order.
type mockSynthesizer struct {
	failOn map[string]error
	calls  []string
	texts  []string
	paths  []string
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, text, voice, outputPath string) (string, error) {
	m.calls = append(m.calls, voice)
	m.texts = append(m.texts, text)
	m.paths = append(m.paths, outputPath)
	if err, ok := m.failOn[voice]; ok {
		return "", err
	}
	return "mp3", nil
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	mock := &mockSynthesizer{
		failOn: map[string]error{"v2": errors.New("voice not available")},
	}

	results := Run(context.Background(), mock, []string{"v1", "v2", "v3"}, t.TempDir())
	report := Partition(results)

	assert.Equal(t, []string{"v1", "v2", "v3"}, mock.calls, "every voice gets exactly one attempt")
	assert.Equal(t, []string{"v1", "v3"}, report.Succeeded)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "v2", report.Failed[0].Voice)
	assert.Contains(t, report.Failed[0].Message, "voice not available")
}

func TestRun_AllVoicesFail(t *testing.T) {
	mock := &mockSynthesizer{
		failOn: map[string]error{
			"a": errors.New("nope"),
			"b": errors.New("nope"),
		},
	}

	results := Run(context.Background(), mock, []string{"a", "b"}, t.TempDir())
	report := Partition(results)

	assert.Empty(t, report.Succeeded)
	assert.Len(t, report.Failed, 2)
}

func TestRun_PartitionCoversInputInOrder(t *testing.T) {
	voices := []string{"alloy", "verse", "coral", "onyx"}
	mock := &mockSynthesizer{
		failOn: map[string]error{
			"verse": errors.New("x"),
			"onyx":  errors.New("y"),
		},
	}

	report := Partition(Run(context.Background(), mock, voices, t.TempDir()))

	// Disjoint partitions whose union is the input, order preserved.
	var reassembled []string
	si, fi := 0, 0
	for _, v := range voices {
		switch {
		case si < len(report.Succeeded) && report.Succeeded[si] == v:
			si++
			reassembled = append(reassembled, v)
		case fi < len(report.Failed) && report.Failed[fi].Voice == v:
			fi++
			reassembled = append(reassembled, v)
		}
	}
	assert.Equal(t, voices, reassembled)
	assert.Equal(t, len(voices), len(report.Succeeded)+len(report.Failed))
}

func TestRun_UsesSampleTextAndScratchDir(t *testing.T) {
	dir := t.TempDir()
	mock := &mockSynthesizer{}

	Run(context.Background(), mock, []string{"alloy"}, dir)

	require.Len(t, mock.texts, 1)
	assert.Equal(t, SampleText, mock.texts[0])
	assert.Equal(t, filepath.Join(dir, "alloy"), mock.paths[0])
}

func TestRun_EmptyVoiceList(t *testing.T) {
	mock := &mockSynthesizer{}

	results := Run(context.Background(), mock, nil, t.TempDir())
	report := Partition(results)

	assert.Empty(t, results)
	assert.Empty(t, report.Succeeded)
	assert.Empty(t, report.Failed)
}

func TestPartition_MessagesAreDiagnostic(t *testing.T) {
	results := []Result{
		{Voice: "a", Err: fmt.Errorf("openai speech api error (status 403): %s", "forbidden")},
	}
	report := Partition(results)

	require.Len(t, report.Failed, 1)
	assert.True(t, strings.Contains(report.Failed[0].Message, "403"))
}
