package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	fileNameRe   = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	nameSafeRe   = regexp.MustCompile(`[^a-z0-9_]+`)
	createDDLRe  = regexp.MustCompile(`(?i)\bCREATE\s+(?:UNIQUE\s+)?(TABLE|INDEX)\s+`)
	dropDDLRe    = regexp.MustCompile(`(?i)\bDROP\s+(TABLE|INDEX)\s+`)
	ifNotExistRe = regexp.MustCompile(`(?i)^IF\s+NOT\s+EXISTS\b`)
	ifExistRe    = regexp.MustCompile(`(?i)^IF\s+EXISTS\b`)
)

// File is one migration known to the binary or found on disk.
type File struct {
	Version int64
	Name    string
}

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s: use IF NOT EXISTS, the dev auto-run and sqlite tests replay this file
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<name>.sql. The version is
// bumped past the newest file already in dir so two migrations authored within
// the same second never collide.
func CreateSQLMigration(dir, name string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := strings.Trim(nameSafeRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_"), "_")
	if safe == "" {
		return "", fmt.Errorf("migration name %q is empty once sanitized", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	existing, err := scan(os.DirFS(dir), ".", false)
	if err != nil {
		return "", err
	}
	version, _ := strconv.ParseInt(time.Now().UTC().Format("20060102150405"), 10, 64)
	if n := len(existing); n > 0 && existing[n-1].Version >= version {
		version = existing[n-1].Version + 1
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, safe))
	if err := os.WriteFile(fullpath, []byte(fmt.Sprintf(migrationTemplate, safe)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

// ValidateDir checks an on-disk migrations directory.
func ValidateDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("dir is required")
	}
	_, err := scan(os.DirFS(dir), ".", true)
	return err
}

// ValidateEmbedded checks the migrations compiled into the binary.
func ValidateEmbedded() error {
	_, err := Embedded()
	return err
}

// Embedded lists the compiled-in migrations in version order.
func Embedded() ([]File, error) {
	return scan(migrationsFS, embeddedDir, true)
}

// Pending returns the embedded migrations newer than current.
func Pending(current int64) ([]File, error) {
	files, err := Embedded()
	if err != nil {
		return nil, err
	}
	idx := sort.Search(len(files), func(i int) bool { return files[i].Version > current })
	return files[idx:], nil
}

func scan(fsys fs.FS, dir string, strict bool) ([]File, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var files []File
	seen := map[int64]string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m := fileNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", e.Name())
		}
		version, _ := strconv.ParseInt(m[1], 10, 64)
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d in %q and %q", version, prev, e.Name())
		}
		seen[version] = e.Name()

		if strict {
			body, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
			if err != nil {
				return nil, fmt.Errorf("read file %q: %w", e.Name(), err)
			}
			if err := checkBody(string(body)); err != nil {
				return nil, fmt.Errorf("migration %q: %w", e.Name(), err)
			}
		}
		files = append(files, File{Version: version, Name: m[2]})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

func checkBody(body string) error {
	up := strings.Index(body, "-- +goose Up")
	down := strings.Index(body, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("missing \"-- +goose Up\"")
	case down < 0:
		return fmt.Errorf("missing \"-- +goose Down\"")
	case down < up:
		return fmt.Errorf("down section precedes up section")
	}

	for _, loc := range createDDLRe.FindAllStringIndex(body, -1) {
		if !ifNotExistRe.MatchString(body[loc[1]:]) {
			return fmt.Errorf("CREATE without IF NOT EXISTS near offset %d", loc[0])
		}
	}
	for _, loc := range dropDDLRe.FindAllStringIndex(body, -1) {
		if !ifExistRe.MatchString(body[loc[1]:]) {
			return fmt.Errorf("DROP without IF EXISTS near offset %d", loc[0])
		}
	}
	return nil
}
