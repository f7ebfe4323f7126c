package repository

import (
	"fmt"

	"github.com/andresuchdata/shelfwatch/internal/config"
	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/repository/postgres"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// OpenSource builds the snapshot source selected by cfg.Source.Kind. The
// returned close func releases any connection the source holds.
func OpenSource(cfg *config.Config) (SnapshotSource, func() error, error) {
	switch cfg.Source.Kind {
	case SourceFile, "":
		return NewFileSource(cfg.Source.DataDir), func() error { return nil }, nil
	case SourcePostgres:
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return NewPostgresSource(db, 0), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownSource, cfg.Source.Kind)
	}
}
