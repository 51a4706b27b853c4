package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/koustreak/mysqlts/internal/config"
	"github.com/koustreak/mysqlts/internal/errs"
	"github.com/koustreak/mysqlts/internal/filestore"
	"github.com/koustreak/mysqlts/internal/filestore/minio"
	"github.com/koustreak/mysqlts/internal/logger"
	"github.com/koustreak/mysqlts/internal/server"
)

const contentTypeTS = "application/typescript"

// maxPresignTTL is the longest expiry S3-compatible stores accept for a
// presigned URL.
const maxPresignTTL = 7 * 24 * time.Hour

func openStore(ctx context.Context, cfg *config.Config) (filestore.Store, error) {
	switch cfg.Upload.Provider {
	case filestore.ProviderMinIO:
		d, err := minio.New(ctx, &cfg.Upload.Config)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported object store provider %q", cfg.Upload.Provider)
	}
}

// emit generates the configured scope and delivers it. With an upload
// store the text is uploaded, and also written locally only when an
// output path is set. Without one it goes to the output path or stdout.
func emit(ctx context.Context, cfg *config.Config, src server.Source, stdout io.Writer, store filestore.Store, log *logger.Logger) error {
	var (
		out string
		err error
	)
	if cfg.Generate.Table != "" {
		out, err = src.Table(ctx, cfg.Generate.Table)
	} else {
		out, err = src.Schema(ctx)
	}
	if err != nil {
		return err
	}

	if store != nil {
		if err := upload(ctx, cfg, store, out, log); err != nil {
			return err
		}
		if cfg.Output.Path == "" {
			return nil
		}
	}

	if cfg.Output.Path != "" {
		if err := writeFile(cfg.Output.Path, out); err != nil {
			return err
		}
		log.With().Str("path", cfg.Output.Path).Int("bytes", len(out)).Logger().Info("wrote typescript interfaces")
		return nil
	}

	if _, err := io.WriteString(stdout, out); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write output", err)
	}
	return nil
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.ErrKindPermissionDenied, "cannot create output directory "+dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errs.Wrap(errs.ErrKindPermissionDenied, "cannot write "+path, err)
	}
	return nil
}

func upload(ctx context.Context, cfg *config.Config, store filestore.Store, content string, log *logger.Logger) error {
	bucket, key := cfg.Upload.Bucket, cfg.UploadKey()

	if err := store.EnsureBucket(ctx, bucket); err != nil {
		return err
	}
	info, err := store.PutObject(ctx, bucket, key, strings.NewReader(content), int64(len(content)),
		filestore.PutOptions{ContentType: contentTypeTS})
	if err != nil {
		return err
	}

	l := log.With().Str("bucket", info.Bucket).Str("key", info.Key).Logger()
	l.InfoWith("uploaded typescript interfaces", map[string]interface{}{"size": info.Size, "etag": info.ETag})

	if ttl := cfg.Upload.PresignTTL; ttl > 0 {
		if ttl > maxPresignTTL {
			l.Warnf("presign ttl %s exceeds the %s limit, using the limit", ttl, maxPresignTTL)
			ttl = maxPresignTTL
		}
		url, err := store.PresignGetURL(ctx, bucket, key, ttl)
		if err != nil {
			return err
		}
		l.With().Str("url", url).Logger().Info("download link")
	}
	return nil
}
