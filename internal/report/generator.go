package report

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/jobs"
	"github.com/dvloznov/cfo-copilot/internal/telemetry"
	"github.com/rs/zerolog"
)

// Generator builds, renders and publishes reports.
type Generator struct {
	Builder   *Builder
	Publisher Publisher
	Format    Format
	Now       func() time.Time
	Log       zerolog.Logger
}

// NewGenerator creates an HTML Generator using the wall clock.
func NewGenerator(engine Engine, publisher Publisher, log zerolog.Logger) *Generator {
	return &Generator{
		Builder:   NewBuilder(engine),
		Publisher: publisher,
		Format:    FormatHTML,
		Now:       time.Now,
		Log:       log,
	}
}

// Generate produces the report for month and returns where it was published.
func (g *Generator) Generate(ctx context.Context, month string) (string, error) {
	start := time.Now()
	uri, err := g.generate(ctx, month)
	telemetry.RecordReportJob(err, time.Since(start))
	return uri, err
}

func (g *Generator) generate(ctx context.Context, month string) (string, error) {
	r, err := g.Builder.Build(month, g.Now())
	if err != nil {
		return "", fmt.Errorf("Generate: %w", err)
	}

	doc, err := RenderDocument(r, g.Format)
	if err != nil {
		return "", fmt.Errorf("Generate: %w", err)
	}

	uri, err := g.Publisher.Publish(ctx, r, doc)
	if err != nil {
		return "", fmt.Errorf("Generate: publishing: %w", err)
	}

	g.Log.Info().Str("month", month).Str("output_uri", uri).Str("format", string(doc.Format)).Int("bytes", len(doc.Data)).Msg("Report published")
	return uri, nil
}

// JobHandler adapts Generate to the job queue, recording the output URI on
// the job.
func (g *Generator) JobHandler() jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		reportJob, ok := job.(*jobs.GenerateReportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		g.Log.Info().Str("job_id", reportJob.JobID).Str("month", reportJob.Month).Msg("Processing report job")

		uri, err := g.Generate(ctx, reportJob.Month)
		if err != nil {
			return err
		}
		reportJob.OutputURI = uri
		return nil
	}
}
