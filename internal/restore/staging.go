package restore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Fixed directory layout under the output folder. The four stage dirs are
// cleared and recreated before every run so stage detection and the final
// file search never see artifacts from a previous run.
var stageDirNames = [...]string{
	"stage_1_restore_output",
	"stage_2_detection_output",
	"stage_3_face_output",
	"final_output",
}

const (
	// stagingDirName holds the single staged input file for file inputs.
	// Hidden so the latest-file search never picks it up.
	stagingDirName = "_gui_input"

	// finalDirName is where the worker deposits the final artifact.
	finalDirName = "final_output"

	// defaultOutputDirName is used when the request names no output folder.
	defaultOutputDirName = "output_gui"
)

// stageSingleInput prepares a directory containing exactly one input file.
// Any prior staging contents are removed first.
func stageSingleInput(inputPath, outputFolder string) (string, error) {
	dir := filepath.Join(outputFolder, stagingDirName)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", stagingDirName, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", stagingDirName, err)
	}

	dst := filepath.Join(dir, filepath.Base(inputPath))
	if err := copyFile(inputPath, dst); err != nil {
		return "", fmt.Errorf("failed to copy input file: %w", err)
	}
	return dir, nil
}

// resetStageDirs deletes and recreates the four stage output directories.
func resetStageDirs(outputFolder string) error {
	for _, name := range stageDirNames {
		dir := filepath.Join(outputFolder, name)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// copyFile copies src to dst, truncating dst if it exists. The destination
// keeps the source's permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	// Chmod explicitly so the process umask cannot strip bits at creation.
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
