// Package publish uploads a run directory to Cloud Storage.
//
// Uploads are idempotent: every object is written with a DoesNotExist
// precondition, and an object that is already there is skipped rather
// than overwritten. Re-publishing a directory is therefore safe.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
)

// maxParallel bounds concurrent uploads.
const maxParallel = 8

// Bucket opens writers for new objects. A writer must fail, on Write or
// Close, with a googleapi.Error carrying 412 when the object exists.
type Bucket interface {
	NewWriter(ctx context.Context, name string) io.WriteCloser
}

type gcsBucket struct {
	handle *storage.BucketHandle
}

func (b gcsBucket) NewWriter(ctx context.Context, name string) io.WriteCloser {
	return b.handle.Object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
}

// GCS adapts a Cloud Storage bucket.
func GCS(client *storage.Client, bucket string) Bucket {
	return gcsBucket{handle: client.Bucket(bucket)}
}

// Stats counts the outcome of a Publish call.
type Stats struct {
	Uploaded int `json:"uploaded"`
	Skipped  int `json:"skipped"`
}

// Publisher copies local files to a bucket under a prefix.
type Publisher struct {
	bucket Bucket
	prefix string
	log    logrus.FieldLogger
}

// New creates a Publisher. Objects are named prefix/<path relative to the
// published directory>, always with forward slashes.
func New(bucket Bucket, prefix string, log logrus.FieldLogger) *Publisher {
	return &Publisher{bucket: bucket, prefix: prefix, log: log}
}

// Publish uploads every regular file under dir.
func (p *Publisher) Publish(ctx context.Context, dir string) (Stats, error) {
	var files []string
	err := filepath.WalkDir(dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, name)
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var uploaded, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for _, file := range files {
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return Stats{}, err
		}
		object := path.Join(p.prefix, filepath.ToSlash(rel))

		g.Go(func() error {
			created, err := p.upload(gctx, file, object)
			if err != nil {
				return err
			}
			if created {
				uploaded.Add(1)
			} else {
				skipped.Add(1)
			}
			return nil
		})
	}

	err = g.Wait()
	stats := Stats{Uploaded: int(uploaded.Load()), Skipped: int(skipped.Load())}
	if err != nil {
		return stats, err
	}

	p.log.WithFields(logrus.Fields{
		"dir":      dir,
		"prefix":   p.prefix,
		"uploaded": stats.Uploaded,
		"skipped":  stats.Skipped,
	}).Info("published run directory")
	return stats, nil
}

// upload writes one object. It reports false when the object already
// existed.
func (p *Publisher) upload(ctx context.Context, file, object string) (bool, error) {
	f, err := os.Open(file)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	w := p.bucket.NewWriter(ctx, object)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		if exists(err) {
			p.log.WithField("object", object).Debug("object exists, skipping")
			return false, nil
		}
		return false, fmt.Errorf("failed to upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		if exists(err) {
			p.log.WithField("object", object).Debug("object exists, skipping")
			return false, nil
		}
		return false, fmt.Errorf("failed to finalize %s: %w", object, err)
	}
	return true, nil
}

func exists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
