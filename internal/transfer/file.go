package transfer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// writeFile streams body into targetPath through a temporary file in the
// same directory, so a failed transfer never leaves a partial target.
func writeFile(ctx context.Context, targetPath string, body io.Reader, total int64, observer imodels.ProgressObserver) error {
	err := os.MkdirAll(filepath.Dir(targetPath), constants.DownloadDirPerm)
	if err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(targetPath), "."+filepath.Base(targetPath)+".*.part")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriterSize(tmp, constants.TransferBufferSize)

	_, err = io.CopyBuffer(writer, newProgressReader(ctx, body, total, observer), make([]byte, constants.TransferBufferSize))
	if err == nil {
		err = writer.Flush()
	}

	closeErr := tmp.Close()
	if err != nil {
		return err
	}

	if closeErr != nil {
		return fmt.Errorf("closing temporary file: %w", closeErr)
	}

	err = os.Chmod(tmpPath, constants.DownloadFilePerm)
	if err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	err = os.Rename(tmpPath, targetPath)
	if err != nil {
		return fmt.Errorf("moving downloaded file into place: %w", err)
	}

	return nil
}
