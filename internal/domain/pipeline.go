package domain

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxsplit/backend/internal/domain/stations"
	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

// largeFileBytes decides which path a recording takes: anything above is
// split at silences before it reaches the speech provider.
const largeFileBytes = 20 * 1024 * 1024

type Pipeline struct {
	s1 *stations.S1Probe
	s2 *stations.S2Silence
	s4 *stations.S4Cut
	s5 *stations.S5Transcribe
	s6 *stations.S6Structure

	// chunkRoot is the directory materialized chunk audio lives under, one
	// subdirectory per recording keyed by the source file's base name.
	chunkRoot string
}

func NewPipeline(
	prober ports.DurationProber,
	detector ports.SilenceDetector,
	cutter ports.SegmentCutter,
	stt ports.STTService,
	structurer ports.StructuringService,
	chunkRoot string,
) *Pipeline {
	return &Pipeline{
		s1:        stations.NewS1Probe(prober),
		s2:        stations.NewS2Silence(detector),
		s4:        stations.NewS4Cut(cutter),
		s5:        stations.NewS5Transcribe(stt),
		s6:        stations.NewS6Structure(structurer),
		chunkRoot: chunkRoot,
	}
}

// ChunkDirFor returns the per-recording audio directory under root for a
// source file, keyed by the source's base name.
func ChunkDirFor(root, src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(root, base)
}

// ChunkDir returns the per-recording audio directory for a source file.
func (p *Pipeline) ChunkDir(src string) string {
	return ChunkDirFor(p.chunkRoot, src)
}

// Process runs the full ingestion for one source file. It returns either the
// complete ordered chunk list or an error, never a partial result; on error
// the recording's audio directory is removed so a failed run leaves no
// artifacts behind.
func (p *Pipeline) Process(ctx context.Context, path string) (drafts []models.ChunkDraft, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	dir := p.ChunkDir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	if fi.Size() > largeFileBytes {
		log.Printf("[PIPELINE] file=%s bytes=%d path=large", filepath.Base(path), fi.Size())
		return p.processLarge(ctx, path, dir)
	}
	log.Printf("[PIPELINE] file=%s bytes=%d path=small", filepath.Base(path), fi.Size())
	return p.processSmall(ctx, path, dir)
}

// processLarge cuts the source into physical segments at planned boundaries
// and feeds them to the providers strictly in time order, so the accumulated
// chunk list stays globally ordered.
func (p *Pipeline) processLarge(ctx context.Context, path, dir string) ([]models.ChunkDraft, error) {
	total, err := p.s1.Run(ctx, path)
	if err != nil {
		return nil, err
	}

	silences := p.s2.Run(ctx, path)
	bounds := stations.Boundaries(total, stations.DefaultTargetChunkSec, silences)

	var (
		out   []models.ChunkDraft
		index int
	)
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]

		segPath := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", index))
		ok, err := p.s4.Run(ctx, path, segPath, start, end)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		index++

		segments, err := p.s5.Run(ctx, segPath)
		if err != nil {
			return nil, err
		}

		chunks, err := p.s6.Run(ctx, segments)
		if err != nil {
			return nil, err
		}
		if len(chunks) == 0 {
			// Nothing references this segment's audio; a successful run must
			// not leave unreferenced files in the chunk directory.
			log.Printf("[PIPELINE][WARN] segment %.1f-%.1f produced no chunks, dropping audio", start, end)
			_ = os.Remove(segPath)
			continue
		}

		// Provider timestamps are relative to the physical segment; shift
		// them back onto the recording's clock and attach the segment audio.
		for _, c := range chunks {
			c.Start += start
			c.End += start
			c.AudioPath = segPath
			out = append(out, c)
		}
	}

	return out, nil
}

// processSmall transcribes the whole file in one call, then cuts a dedicated
// audio snippet per resulting chunk. A snippet export failure keeps the
// chunk, just without audio.
func (p *Pipeline) processSmall(ctx context.Context, path, dir string) ([]models.ChunkDraft, error) {
	segments, err := p.s5.Run(ctx, path)
	if err != nil {
		return nil, err
	}

	chunks, err := p.s6.Run(ctx, segments)
	if err != nil {
		return nil, err
	}

	out := make([]models.ChunkDraft, 0, len(chunks))
	for i, c := range chunks {
		snippet := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", i))
		ok, err := p.s4.Run(ctx, path, snippet, c.Start, c.End)
		switch {
		case err != nil:
			log.Printf("[PIPELINE][WARN] chunk %d snippet export failed: %v", i, err)
		case ok:
			c.AudioPath = snippet
		}
		out = append(out, c)
	}

	return out, nil
}
