package index

import (
	"log/slog"
	"time"

	"github.com/starford/vaultmeta/internal/models"
	"github.com/starford/vaultmeta/internal/parser"
	"github.com/starford/vaultmeta/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed Markdown documents are parsed and upserted
//   - documents removed from disk are deleted from the index
//
// .mdx documents are not indexed; their headers live in the frontmatter store.
func Sync(db MetadataIndex, store storage.Provider, logger *slog.Logger) error {
	docs, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if d.Extension != models.ExtMarkdown {
			continue
		}
		disk[d.Path] = struct{}{}

		if checksums[d.Path] == d.Checksum {
			continue
		}

		data, err := store.Read(d.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", d.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexDocument(db, d.Path, data, d.ModTime); err != nil {
			logger.Warn("sync: index failed", slog.String("path", d.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", d.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexDocument parses data and upserts it into the index.
func indexDocument(db MetadataIndex, path string, data []byte, mtime time.Time) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	return db.UpsertDocument(DocumentRow{
		Path:        path,
		Title:       res.Title,
		Checksum:    storage.Checksum(data),
		Frontmatter: res.Frontmatter,
		Tags:        res.Tags,
		Links:       res.Links,
		Headings:    res.Headings,
		ModTime:     mtime,
	})
}
