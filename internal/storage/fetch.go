package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FetchSnapshot downloads the snapshot files found directly under prefix into
// destDir. Only names listed in files are fetched; the first one is required.
func FetchSnapshot(ctx context.Context, store ObjectStorage, prefix, destDir string, files ...string) (int, error) {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return 0, err
	}

	dir := path.Clean(prefix)
	byName := make(map[string]ObjectInfo, len(objects))
	for _, obj := range objects {
		// nested keys (archives, older runs) never shadow the current files
		if path.Dir(obj.Key) != dir {
			continue
		}
		byName[path.Base(obj.Key)] = obj
	}

	fetched := 0
	for i, name := range files {
		obj, ok := byName[name]
		if !ok {
			if i == 0 {
				return fetched, fmt.Errorf("snapshot object %s not found under %q", name, prefix)
			}
			continue
		}
		dest := filepath.Join(destDir, name)
		if err := store.DownloadObject(ctx, obj.Key, dest); err != nil {
			return fetched, err
		}
		log.Info().Str("key", obj.Key).Int64("size", obj.Size).Str("dest", dest).Msg("snapshot object downloaded")
		fetched++
	}
	return fetched, nil
}
