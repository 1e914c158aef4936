package runpheno

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// SplitGSPath splits a gs://bucket/path/to/object address into its bucket and
// object names.
func SplitGSPath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// Open opens a local path or a gs:// object and transparently decompresses it.
// A nil client is only acceptable for local paths.
func Open(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	var raw io.ReadCloser

	if strings.HasPrefix(path, "gs://") {
		if client == nil {
			return nil, pfx.Err(fmt.Errorf("%s: no Google Storage client was configured", path))
		}

		bucketName, pathName, err := SplitGSPath(path)
		if err != nil {
			return nil, pfx.Err(err)
		}

		rdr, err := client.Bucket(bucketName).Object(pathName).NewReader(ctx)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}
		raw = rdr
	} else {
		local, err := ExpandHome(path)
		if err != nil {
			return nil, err
		}

		f, err := os.Open(local)
		if err != nil {
			return nil, err
		}
		raw = f
	}

	rc, dt, err := MaybeDecompress(raw)
	if err != nil {
		raw.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	if dt != DataTypeNoCompression {
		log.Printf("Reading %s as %s\n", path, dt)
	}

	return rc, nil
}

// ReadAll opens path with Open and returns its full (decompressed) contents.
func ReadAll(ctx context.Context, path string, client *storage.Client) ([]byte, error) {
	rc, err := Open(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// NeedsStorageClient reports whether any of the paths point at Google Storage.
func NeedsStorageClient(paths ...string) bool {
	for _, path := range paths {
		if strings.HasPrefix(path, "gs://") {
			return true
		}
	}

	return false
}
