package report

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/naka-gawa/timesheet/internal/domain"
)

// Layout decides where the reports of a window are written.
type Layout struct {
	Root   string
	Window domain.Window
}

func (l Layout) relativeDir(repo domain.Repository) string {
	return path.Join("repositories", strconv.Itoa(l.Window.Now.Year()), repo.Name)
}

// ReportPath is the markdown report of repo, e.g. "<root>/repositories/2024/widgets/05 - May.md".
func (l Layout) ReportPath(repo domain.Repository) string {
	return filepath.Join(l.Root, filepath.FromSlash(l.relativeDir(repo)), l.Window.MonthFilename(".md"))
}

// WorkbookPath is the xlsx breakdown export of repo, next to its markdown report.
func (l Layout) WorkbookPath(repo domain.Repository) string {
	return filepath.Join(l.Root, filepath.FromSlash(l.relativeDir(repo)), l.Window.MonthFilename(".xlsx"))
}

// MasterPath is the index document listing every repository.
func (l Layout) MasterPath() string {
	return filepath.Join(l.Root, "README.md")
}

// ReportLink is the escaped, root relative link to the markdown report of repo.
func (l Layout) ReportLink(repo domain.Repository) string {
	u := url.URL{Path: "/" + path.Join(l.relativeDir(repo), l.Window.MonthFilename(".md"))}
	return u.EscapedPath()
}

// WriteFile writes content to name, creating parent directories as needed.
func WriteFile(name string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(name, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
