package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/inference"
)

// Load reads and cross-checks a bundle. Model, encoders and metadata are
// required and must come from the same training run; the neighborhood map
// is optional and loads as empty when absent.
func Load(paths Paths) (*Bundle, error) {
	var meta Metadata
	if err := readJSON(paths.Metadata, &meta); err != nil {
		return nil, err
	}
	var enc encodersFile
	if err := readJSON(paths.Encoders, &enc); err != nil {
		return nil, err
	}
	var forest inference.Forest
	if err := readJSON(paths.Model, &forest); err != nil {
		return nil, err
	}

	b := &Bundle{
		Metadata:        meta,
		Model:           &forest,
		Encoders:        enc.Encoders,
		NeighborhoodMap: map[string][]string{},
	}
	if b.Encoders == nil {
		b.Encoders = map[string][]string{}
	}

	if err := checkVersions(meta.Version, enc.Version, forest.Version); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if paths.NeighborhoodMap != "" {
		var m map[string][]string
		err := readJSON(paths.NeighborhoodMap, &m)
		switch {
		case err == nil:
			if m != nil {
				b.NeighborhoodMap = m
			}
		case errors.Is(err, ErrArtifactMissing):
			// optional
		default:
			return nil, err
		}
	}

	return b, nil
}

// Validate checks that the model, encoders and metadata describe the same
// feature schema.
func (b *Bundle) Validate() error {
	names := b.Metadata.FeatureNames
	if len(names) == 0 {
		return fmt.Errorf("%w: metadata declares no features", ErrArtifactMismatch)
	}

	index := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := index[n]; dup {
			return fmt.Errorf("%w: duplicate feature %q", ErrArtifactMismatch, n)
		}
		index[n] = struct{}{}
	}

	for feature, classes := range b.Encoders {
		if _, ok := index[feature]; !ok {
			return fmt.Errorf("%w: encoder %q is not in the feature schema", ErrArtifactMismatch, feature)
		}
		if len(classes) == 0 {
			return fmt.Errorf("%w: encoder %q has no classes", ErrArtifactMismatch, feature)
		}
		seen := make(map[string]struct{}, len(classes))
		for _, c := range classes {
			if _, dup := seen[c]; dup {
				return fmt.Errorf("%w: encoder %q repeats class %q", ErrArtifactMismatch, feature, c)
			}
			seen[c] = struct{}{}
		}
	}

	if b.Model == nil {
		return fmt.Errorf("%w: bundle has no model", ErrArtifactMismatch)
	}
	if b.Model.NFeatures != len(names) {
		return fmt.Errorf("%w: model expects %d features, metadata declares %d",
			ErrArtifactMismatch, b.Model.NFeatures, len(names))
	}
	if err := b.Model.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactMismatch, err)
	}

	return nil
}

// Save writes the bundle into dir. Every file is written to a temp file and
// renamed so readers never observe a partial artifact.
func Save(dir string, b *Bundle) error {
	if b == nil || b.Model == nil {
		return fmt.Errorf("nothing to save")
	}
	if b.Metadata.Version == "" {
		return fmt.Errorf("bundle has no version")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model dir: %w", err)
	}

	b.Model.Version = b.Metadata.Version
	paths := DefaultPaths(dir)

	files := []struct {
		path string
		v    any
	}{
		{paths.Model, b.Model},
		{paths.Encoders, encodersFile{Version: b.Metadata.Version, Encoders: b.Encoders}},
		{paths.NeighborhoodMap, b.NeighborhoodMap},
		// metadata last: a bundle without metadata fails Load as missing
		{paths.Metadata, b.Metadata},
	}
	for _, f := range files {
		if err := writeJSONAtomic(f.path, f.v); err != nil {
			return err
		}
	}
	return nil
}

func checkVersions(meta, encoders, model string) error {
	if meta == "" {
		return fmt.Errorf("%w: metadata has no version", ErrArtifactMismatch)
	}
	if encoders != meta {
		return fmt.Errorf("%w: encoders version %q, metadata version %q", ErrArtifactMismatch, encoders, meta)
	}
	if model != meta {
		return fmt.Errorf("%w: model version %q, metadata version %q", ErrArtifactMismatch, model, meta)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArtifactMismatch, path, err)
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}
	return nil
}
