package activities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"paperchat/internal/citations"
	"paperchat/internal/config"
	"paperchat/internal/extract"
	"paperchat/internal/jobs"
	"paperchat/internal/models"
	"paperchat/internal/storage"
	"paperchat/internal/util"

	"github.com/ledongthuc/pdf"
)

type Activities struct {
	cfg         config.Config
	registry    *jobs.Registry
	contentRepo *storage.ContentRepo
	paperRepo   *storage.PaperRepo
}

func New(cfg config.Config, db *storage.DB, registry *jobs.Registry) *Activities {
	return &Activities{
		cfg:         cfg,
		registry:    registry,
		contentRepo: storage.NewContentRepo(db),
		paperRepo:   storage.NewPaperRepo(db),
	}
}

func (a *Activities) StartJobActivity(ctx context.Context, in StartJobInput) error {
	return a.registry.Start(ctx, in.JobID)
}

func (a *Activities) AdvanceJobActivity(ctx context.Context, in AdvanceJobInput) error {
	return a.registry.Advance(ctx, in.JobID, in.Step, in.Percent)
}

func (a *Activities) CompleteJobActivity(ctx context.Context, in CompleteJobInput) error {
	return a.registry.Complete(ctx, in.JobID, in.Result)
}

func (a *Activities) FailJobActivity(ctx context.Context, in FailJobInput) error {
	return a.registry.Fail(ctx, in.JobID, in.Error)
}

func (a *Activities) VerifyUploadActivity(ctx context.Context, in VerifyUploadInput) (VerifyUploadOutput, error) {
	_ = ctx
	f, err := os.Open(in.PaperPath)
	if err != nil {
		return VerifyUploadOutput{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return VerifyUploadOutput{}, fmt.Errorf("stat upload: %w", err)
	}
	hash, err := util.SHA256HexFromReader(f)
	if err != nil {
		return VerifyUploadOutput{}, fmt.Errorf("hash upload: %w", err)
	}
	return VerifyUploadOutput{ContentHash: hash, SizeBytes: st.Size()}, nil
}

func (a *Activities) ParsePDFActivity(ctx context.Context, in ParsePDFInput) (ParsePDFOutput, error) {
	_ = ctx
	f, r, err := pdf.Open(in.PaperPath)
	if err != nil {
		return ParsePDFOutput{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]extract.PageText, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = util.SanitizeText(text)
		if text == "" {
			continue
		}
		pages = append(pages, extract.PageText{Page: i, Text: text})
	}
	if len(pages) == 0 {
		return ParsePDFOutput{}, util.ErrNoExtractableText
	}
	return ParsePDFOutput{Pages: pages}, nil
}

func (a *Activities) ExtractStructureActivity(ctx context.Context, in ExtractStructureInput) (ExtractStructureOutput, error) {
	units, meta := extract.Structure(in.PaperID, in.Pages)
	meta.Filename = in.Filename
	if err := a.contentRepo.UpsertContentUnits(ctx, units); err != nil {
		return ExtractStructureOutput{}, err
	}
	if err := a.paperRepo.UpsertPaper(ctx, meta); err != nil {
		return ExtractStructureOutput{}, err
	}
	return ExtractStructureOutput{UnitCount: len(units), Title: meta.Title, Authors: meta.Authors}, nil
}

func (a *Activities) LoadCitationUnitsActivity(ctx context.Context, in LoadCitationUnitsInput) (LoadCitationUnitsOutput, error) {
	units, err := a.contentRepo.GetContentUnits(ctx, in.PaperID)
	if err != nil {
		return LoadCitationUnitsOutput{}, err
	}
	out := LoadCitationUnitsOutput{}
	for _, u := range units {
		switch u.Kind {
		case models.KindReference:
			out.References = append(out.References, u)
		case models.KindSection, models.KindParagraph:
			out.Body = append(out.Body, u)
		}
	}
	return out, nil
}

func (a *Activities) SearchEvidenceActivity(ctx context.Context, in SearchEvidenceInput) (SearchEvidenceOutput, error) {
	_ = ctx
	return SearchEvidenceOutput{Findings: citations.SearchEvidence(in.References, in.Body)}, nil
}

func (a *Activities) DetectIssuesActivity(ctx context.Context, in DetectIssuesInput) (DetectIssuesOutput, error) {
	_ = ctx
	return DetectIssuesOutput{Issues: citations.DetectIssues(in.References, in.Findings)}, nil
}

func (a *Activities) WriteCitationReportActivity(ctx context.Context, in WriteCitationReportInput) (WriteCitationReportOutput, error) {
	_ = ctx
	report := citations.BuildReport(in.PaperID, in.JobID, in.References, in.Body, in.Findings, in.Issues)
	path := filepath.Join(a.cfg.DataOutRoot, in.PaperID, "citation_reports", sanitizeFilename(in.JobID)+".json")
	if err := util.WriteJSONAtomic(path, report); err != nil {
		return WriteCitationReportOutput{}, err
	}
	return WriteCitationReportOutput{Path: path}, nil
}

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, string(os.PathSeparator), "-")
	s = strings.ReplaceAll(s, "..", "-")
	if s == "" {
		return "report"
	}
	return s
}
