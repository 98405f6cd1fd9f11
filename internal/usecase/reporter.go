package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/duration"
	"github.com/naka-gawa/timesheet/internal/gateway"
	"github.com/naka-gawa/timesheet/internal/report"
	"go.uber.org/zap"
)

// Publisher commits the written files somewhere.
type Publisher interface {
	Publish(ctx context.Context, branch string, files []string) error
}

// ReportOptions controls what a report run writes and which side effects it has.
type ReportOptions struct {
	Layout         report.Layout
	TemplateDir    string
	Template       string
	MasterTemplate string
	DurationFormat string
	CloseIssues    bool
	Workbook       bool
	Push           bool
	PushBranch     string
}

// Summary is the machine readable outcome of one repository.
type Summary struct {
	Repository    string             `json:"repository"`
	Report        string             `json:"report"`
	TotalDuration string             `json:"total_duration"`
	Breakdown     []domain.Breakdown `json:"breakdown"`
}

// Reporter aggregates repositories and writes their monthly reports.
type Reporter struct {
	aggregator *Aggregator
	closer     gateway.IssueCloser
	publisher  Publisher
	logger     *zap.Logger
}

// NewReporter creates a Reporter. closer and publisher are only used when the options enable them.
func NewReporter(aggregator *Aggregator, closer gateway.IssueCloser, publisher Publisher, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{aggregator: aggregator, closer: closer, publisher: publisher, logger: logger}
}

// Run writes one report per repository and the master index. Issue close failures do not
// stop the run; they are returned after every file has been written and published.
func (r *Reporter) Run(ctx context.Context, refs []string, opts ReportOptions) ([]Summary, error) {
	repoTemplate, err := readTemplate(opts.TemplateDir, opts.Template)
	if err != nil {
		return nil, err
	}
	masterTemplate, err := readTemplate(opts.TemplateDir, opts.MasterTemplate)
	if err != nil {
		return nil, err
	}

	repos, err := r.aggregator.Aggregate(ctx, refs)
	if err != nil {
		return nil, err
	}

	var (
		written   []string
		data      []report.RepositoryData
		summaries []Summary
		closeErrs []error
	)
	now := opts.Layout.Window.Now

	for _, repo := range repos {
		name := opts.Layout.ReportPath(repo.Data.Repository)
		content := report.Render(repoTemplate, report.RepositoryTokens(repo.Data, now, opts.DurationFormat))
		if err := report.WriteFile(name, []byte(content)); err != nil {
			return nil, err
		}
		written = append(written, name)

		if opts.Workbook {
			workbook := opts.Layout.WorkbookPath(repo.Data.Repository)
			if err := report.WriteWorkbook(workbook, repo.Data, opts.DurationFormat); err != nil {
				return nil, err
			}
			written = append(written, workbook)
		}

		if opts.CloseIssues {
			if err := r.aggregator.CloseIssues(ctx, r.closer, repo); err != nil {
				r.logger.Warn("some issues could not be closed", zap.String("repository", repo.Data.Repository.Path()), zap.Error(err))
				closeErrs = append(closeErrs, err)
			}
		}

		data = append(data, repo.Data)
		summaries = append(summaries, Summary{
			Repository:    repo.Data.Repository.Path(),
			Report:        name,
			TotalDuration: duration.Format(repo.Data.TotalDuration(), opts.DurationFormat),
			Breakdown:     repo.Breakdown,
		})
		r.logger.Info("report written", zap.String("path", name))
	}

	r.logger.Debug("durations parsed", zap.Int64("tally_ms", r.aggregator.Total()))
	master := report.Render(masterTemplate, report.MasterTokens(data, opts.Layout, opts.DurationFormat))
	if err := report.WriteFile(opts.Layout.MasterPath(), []byte(master)); err != nil {
		return nil, err
	}
	written = append(written, opts.Layout.MasterPath())

	if opts.Push {
		if err := r.publisher.Publish(ctx, opts.PushBranch, written); err != nil {
			return nil, fmt.Errorf("failed to publish reports: %w", err)
		}
	}

	return summaries, errors.Join(closeErrs...)
}

func readTemplate(dir, name string) (string, error) {
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return string(content), nil
}

func lowerMonth(window domain.Window) string {
	return strings.ToLower(window.Now.Month().String())
}
