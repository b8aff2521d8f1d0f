package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxsplit/backend/internal/domain/stations"
	"github.com/voxsplit/backend/internal/models"
)

// writeSource creates a source file of the given byte size without writing
// the bytes (sparse), so large-path tests stay cheap.
func writeSource(t *testing.T, dir, name string, size int64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

func newTestPipeline(prober *fakeProber, detector *fakeDetector, cutter *fakeCutter, stt *fakeSTT, structurer *fakeStructurer, chunkRoot string) *Pipeline {
	p := NewPipeline(prober, detector, cutter, stt, structurer, chunkRoot)
	return p
}

func TestPipelineLargePath(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "lecture.mp3", 21<<20)

	prober := &fakeProber{duration: 1500}
	detector := &fakeDetector{intervals: []models.SilenceInterval{
		{Start: 598, End: 600, Duration: 2},
		{Start: 1195, End: 1197, Duration: 2},
	}}
	cutter := &fakeCutter{}
	stt := &fakeSTT{segments: []models.Segment{{Start: 60, End: 120, Text: "Hello"}}}
	structurer := &fakeStructurer{}

	chunkRoot := filepath.Join(dir, "chunks")
	p := newTestPipeline(prober, detector, cutter, stt, structurer, chunkRoot)

	drafts, err := p.Process(context.Background(), src)
	require.NoError(t, err)

	// Three physical segments, three transcription calls, three chunks.
	require.Len(t, cutter.calls, 3)
	require.Len(t, stt.paths, 3)
	require.Len(t, drafts, 3)

	assert.InDelta(t, 0, cutter.calls[0].start, 1e-9)
	assert.InDelta(t, 599, cutter.calls[0].end, 1e-9)
	assert.InDelta(t, 599, cutter.calls[1].start, 1e-9)
	assert.InDelta(t, 1196, cutter.calls[1].end, 1e-9)
	assert.InDelta(t, 1196, cutter.calls[2].start, 1e-9)
	assert.InDelta(t, 1500, cutter.calls[2].end, 1e-9)

	// Absolute timestamps: provider-relative plus each segment's offset.
	assert.InDelta(t, 60, drafts[0].Start, 1e-9)
	assert.InDelta(t, 60+599, drafts[1].Start, 1e-9)
	assert.InDelta(t, 60+1196, drafts[2].Start, 1e-9)

	// Globally non-decreasing across segment boundaries.
	for i := 1; i < len(drafts); i++ {
		assert.GreaterOrEqual(t, drafts[i].Start, drafts[i-1].End)
	}

	// Every chunk carries its originating segment's audio file.
	segDir := ChunkDirFor(chunkRoot, src)
	assert.Equal(t, filepath.Join(segDir, "chunk_000.mp3"), drafts[0].AudioPath)
	assert.Equal(t, filepath.Join(segDir, "chunk_001.mp3"), drafts[1].AudioPath)
	assert.Equal(t, filepath.Join(segDir, "chunk_002.mp3"), drafts[2].AudioPath)

	// STT saw the segments, not the source.
	for _, p := range stt.paths {
		assert.NotEqual(t, src, p)
	}
}

func TestPipelineLargePathSilenceFailureFallsBackToForcedSplits(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "talk.mp3", 21<<20)

	prober := &fakeProber{duration: 1500}
	detector := &fakeDetector{err: errors.New("detector exploded")}
	cutter := &fakeCutter{}
	stt := &fakeSTT{segments: []models.Segment{{Start: 0, End: 5, Text: "x"}}}
	structurer := &fakeStructurer{}

	p := newTestPipeline(prober, detector, cutter, stt, structurer, filepath.Join(dir, "chunks"))

	_, err := p.Process(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, cutter.calls, 3)
	assert.InDelta(t, 600, cutter.calls[0].end, 1e-9)
	assert.InDelta(t, 1200, cutter.calls[1].end, 1e-9)
}

func TestPipelineLargePathProbeFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "broken.mp3", 21<<20)

	prober := &fakeProber{err: errors.New("no duration metadata")}
	p := newTestPipeline(prober, &fakeDetector{}, &fakeCutter{}, &fakeSTT{}, &fakeStructurer{}, filepath.Join(dir, "chunks"))

	_, err := p.Process(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, stations.ErrProbe)
}

func TestPipelineLargePathUnstructuredSegmentLeavesNoAudio(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "lecture.mp3", 21<<20)

	prober := &fakeProber{duration: 1500}
	cutter := &fakeCutter{}
	stt := &fakeSTT{segments: []models.Segment{{Start: 0, End: 5, Text: "x"}}}
	// Middle segment degrades to zero chunks (tolerant structurer parse).
	structurer := &fakeStructurer{emptyOnCall: 2}

	chunkRoot := filepath.Join(dir, "chunks")
	p := newTestPipeline(prober, &fakeDetector{}, cutter, stt, structurer, chunkRoot)

	drafts, err := p.Process(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	segDir := ChunkDirFor(chunkRoot, src)
	assert.Equal(t, filepath.Join(segDir, "chunk_000.mp3"), drafts[0].AudioPath)
	assert.Equal(t, filepath.Join(segDir, "chunk_002.mp3"), drafts[1].AudioPath)

	// Every surviving file is referenced by a draft; the contribution-less
	// segment's export is gone.
	_, statErr := os.Stat(filepath.Join(segDir, "chunk_001.mp3"))
	assert.True(t, os.IsNotExist(statErr))
	for _, d := range drafts {
		_, err := os.Stat(d.AudioPath)
		assert.NoError(t, err)
	}
}

func TestPipelineSmallPath(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "memo.mp3", 1024)

	stt := &fakeSTT{segments: []models.Segment{
		{Start: 0, End: 8, Text: "first topic"},
		{Start: 8, End: 20, Text: "second topic"},
	}}
	structurer := &fakeStructurer{chunks: []models.ChunkDraft{
		{Title: "First", Transcript: "first topic", Start: 0, End: 8},
		{Title: "Second", Transcript: "second topic", Start: 8, End: 20},
	}}
	cutter := &fakeCutter{}

	chunkRoot := filepath.Join(dir, "chunks")
	p := newTestPipeline(&fakeProber{}, &fakeDetector{}, cutter, stt, structurer, chunkRoot)

	drafts, err := p.Process(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	// One transcription of the whole file, then one re-cut per chunk.
	require.Len(t, stt.paths, 1)
	assert.Equal(t, src, stt.paths[0])
	require.Len(t, cutter.calls, 2)
	assert.InDelta(t, 0, cutter.calls[0].start, 1e-9)
	assert.InDelta(t, 8, cutter.calls[0].end, 1e-9)
	assert.InDelta(t, 8, cutter.calls[1].start, 1e-9)
	assert.InDelta(t, 20, cutter.calls[1].end, 1e-9)

	segDir := ChunkDirFor(chunkRoot, src)
	assert.Equal(t, filepath.Join(segDir, "chunk_000.mp3"), drafts[0].AudioPath)
	assert.Equal(t, filepath.Join(segDir, "chunk_001.mp3"), drafts[1].AudioPath)
}

func TestPipelineSmallPathCutFailureKeepsChunkWithoutAudio(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "memo.mp3", 1024)

	stt := &fakeSTT{segments: []models.Segment{{Start: 0, End: 20, Text: "talk"}}}
	structurer := &fakeStructurer{chunks: []models.ChunkDraft{
		{Title: "A", Start: 0, End: 10},
		{Title: "B", Start: 10, End: 20},
	}}
	cutter := &fakeCutter{errOnCall: 2}

	p := newTestPipeline(&fakeProber{}, &fakeDetector{}, cutter, stt, structurer, filepath.Join(dir, "chunks"))

	drafts, err := p.Process(context.Background(), src)
	require.NoError(t, err, "a per-chunk re-cut failure must not abort the run")
	require.Len(t, drafts, 2)
	assert.NotEmpty(t, drafts[0].AudioPath)
	assert.Empty(t, drafts[1].AudioPath)
}

func TestPipelineTranscriptionFailureAbortsAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "memo.mp3", 1024)

	stt := &fakeSTT{err: errors.New("provider down")}
	chunkRoot := filepath.Join(dir, "chunks")
	p := newTestPipeline(&fakeProber{}, &fakeDetector{}, &fakeCutter{}, stt, &fakeStructurer{}, chunkRoot)

	// Retries make the failure terminal quickly.
	p.s5.Backoff = 0

	_, err := p.Process(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, stations.ErrTranscription)
	assert.Len(t, stt.paths, 3, "bounded retry: exactly three attempts")

	// No chunk audio may survive a failed run.
	_, statErr := os.Stat(ChunkDirFor(chunkRoot, src))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipelineOversizedExportIsFatal(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "huge.mp3", 21<<20)

	prober := &fakeProber{duration: 1500}
	cutter := &fakeCutter{size: 26 << 20}

	p := newTestPipeline(prober, &fakeDetector{}, cutter, &fakeSTT{}, &fakeStructurer{}, filepath.Join(dir, "chunks"))

	_, err := p.Process(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, stations.ErrSegmentExport)
}
