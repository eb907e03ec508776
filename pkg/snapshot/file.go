package snapshot

import (
	"bufio"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ajitpratap0/hashgrid/pkg/errors"
	"github.com/ajitpratap0/hashgrid/pkg/table"
)

// WriteFile writes t to path. The snapshot is written to a temporary file in
// the same directory and renamed into place, so readers never observe a
// partial snapshot.
func WriteFile[K comparable, V any](path string, t *table.Table[K, V], opts Options) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create snapshot file").
			WithDetail("path", path)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, t, opts); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to flush snapshot file").
			WithDetail("path", path)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to sync snapshot file").
			WithDetail("path", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to close snapshot file").
			WithDetail("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to move snapshot into place").
			WithDetail("path", path)
	}
	committed = true

	opts.logger().Debug("snapshot file written", zap.String("path", path))
	return nil
}

// ReadFile reads the snapshot stored at path. A missing file fails with
// ErrorTypeNotFound.
func ReadFile[K comparable, V any](path string, opts Options) (*table.Table[K, V], error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "snapshot file does not exist").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to open snapshot file").
			WithDetail("path", path)
	}
	defer f.Close()

	t, err := Read[K, V](f, opts)
	if err != nil {
		return nil, err
	}
	opts.logger().Debug("snapshot file read", zap.String("path", path))
	return t, nil
}
