// file: internal/backup/backup.go
// version: 2.0.0
// guid: 8f9e0a1b-2c3d-4e5f-6a7b-8c9d0e1f2a3b

package backup

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"
)

const (
	archivePrefix  = "catalog_"
	archiveSuffix  = ".tar.gz"
	checksumSuffix = ".sha256"
	unknownStore   = "unknown"
)

// ErrChecksumMismatch is returned by Restore when an archive fails verification.
var ErrChecksumMismatch = errors.New("backup checksum mismatch")

// Info describes one catalog snapshot archive.
type Info struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	StoreType string    `json:"store_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Config holds backup configuration
type Config struct {
	Dir              string
	MaxBackups       int // 0 keeps everything
	CompressionLevel int
}

// DefaultConfig returns default backup configuration
func DefaultConfig() Config {
	return Config{
		Dir:              "catalog_backups",
		MaxBackups:       10,
		CompressionLevel: gzip.BestCompression,
	}
}

// Create archives the catalog at location (a file, or a Pebble directory) into
// cfg.Dir. Archive names embed a ULID, so lexical order is creation order.
// A SHA-256 sidecar is written next to the archive.
func Create(location, storeType string, cfg Config) (*Info, error) {
	if _, err := os.Stat(location); err != nil {
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	id := ulid.Make()
	filename := fmt.Sprintf("%s%s_%s%s", archivePrefix, storeType, id.String(), archiveSuffix)
	path := filepath.Join(cfg.Dir, filename)

	if err := writeArchive(path, location, cfg.CompressionLevel); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	checksum, err := fileChecksum(path)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}
	if err := os.WriteFile(path+checksumSuffix, []byte(checksum+"  "+filename+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write checksum: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}

	if cfg.MaxBackups > 0 {
		if err := prune(cfg.Dir, cfg.MaxBackups); err != nil {
			log.Printf("[WARN] failed to prune old catalog backups: %v", err)
		}
	}

	return &Info{
		Filename:  filename,
		Path:      path,
		Size:      stat.Size(),
		Checksum:  checksum,
		StoreType: storeType,
		CreatedAt: ulid.Time(id.Time()),
	}, nil
}

func writeArchive(path, location string, level int) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer out.Close()

	gz, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	tw := tar.NewWriter(gz)

	if err := addToArchive(tw, location); err != nil {
		return fmt.Errorf("failed to add files to archive: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return out.Close()
}

// addToArchive stores location under its base name; directories are walked.
func addToArchive(tw *tar.Writer, location string) error {
	base := filepath.Dir(location)
	return filepath.Walk(location, func(file string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, file)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}

// Restore extracts archive into targetDir. With verify set, the archive must
// match its checksum sidecar.
func Restore(archive, targetDir string, verify bool) error {
	if verify {
		if err := Verify(archive); err != nil {
			return err
		}
	}

	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		target, err := safeJoin(targetDir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			mode := os.FileMode(header.Mode).Perm()
			if mode == 0 {
				mode = 0o644
			}
			if err := extractFile(tr, target, mode); err != nil {
				return err
			}
		default:
			log.Printf("[WARN] skipping unsupported entry %s in %s", header.Name, archive)
		}
	}
}

// safeJoin rejects entries that would land outside dir.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the target directory", name)
	}
	return target, nil
}

func extractFile(r io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", target, err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	return out.Close()
}

// Verify compares archive against its checksum sidecar.
func Verify(archive string) error {
	data, err := os.ReadFile(archive + checksumSuffix)
	if err != nil {
		return fmt.Errorf("failed to read checksum: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty checksum file", ErrChecksumMismatch)
	}
	actual, err := fileChecksum(archive)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	if actual != fields[0] {
		return fmt.Errorf("%w: %s", ErrChecksumMismatch, filepath.Base(archive))
	}
	return nil
}

// List returns the snapshots in dir, newest first. A missing dir is empty.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]Info, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		storeType, created := parseName(name)
		if created.IsZero() {
			created = fi.ModTime()
		}
		info := Info{
			Filename:  name,
			Path:      filepath.Join(dir, name),
			Size:      fi.Size(),
			StoreType: storeType,
			CreatedAt: created,
		}
		if data, err := os.ReadFile(info.Path + checksumSuffix); err == nil {
			if fields := strings.Fields(string(data)); len(fields) > 0 {
				info.Checksum = fields[0]
			}
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Filename > backups[j].Filename
	})
	return backups, nil
}

// parseName splits catalog_<type>_<ulid>.tar.gz.
func parseName(name string) (string, time.Time) {
	core := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), archiveSuffix)
	i := strings.LastIndexByte(core, '_')
	if i < 0 {
		return unknownStore, time.Time{}
	}
	id, err := ulid.ParseStrict(core[i+1:])
	if err != nil {
		return core[:i], time.Time{}
	}
	return core[:i], ulid.Time(id.Time())
}

// Delete removes an archive and its checksum sidecar.
func Delete(archive string) error {
	if err := os.Remove(archive); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	if err := os.Remove(archive + checksumSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checksum: %w", err)
	}
	return nil
}

// prune keeps the newest keep archives.
func prune(dir string, keep int) error {
	backups, err := List(dir)
	if err != nil {
		return err
	}
	for _, b := range backups[min(keep, len(backups)):] {
		if err := Delete(b.Path); err != nil {
			log.Printf("[WARN] failed to delete old backup %s: %v", b.Filename, err)
		}
	}
	return nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
