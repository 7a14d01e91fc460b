// Package seed inserts a demo company so a fresh installation has
// something to show.
package seed

import (
	"context"
	"fmt"

	"github.com/gartstein/isocompliance/internal/compliance/db"
	"github.com/gartstein/isocompliance/internal/compliance/documents"
	"github.com/gartstein/isocompliance/internal/compliance/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Demo is the company inserted into an empty store.
var Demo = models.Company{
	Name:   "TechNova Solutions",
	Sector: "Software Development",
	Size:   "10-50",
}

var (
	demoStandards = []string{"ISO 9001", "ISO 27001"}

	demoDocuments = []models.DocumentDraft{
		{
			Type: documents.TypeQualityManual,
			Content: "TechNova Solutions is committed to excellence in delivering secure, high-quality software. " +
				"Our management system ensures the continual improvement of our processes and the satisfaction of our customers.",
		},
		{
			Type: documents.TypeActionPlan,
			Content: "- Map internal processes\n" +
				"- Train the team in information security\n" +
				"- Schedule an internal audit",
		},
	}
)

// Run seeds the demo company when no company exists yet. It reports
// whether anything was inserted; running it again is a no-op.
func Run(ctx context.Context, repo *db.Repository, logger *zap.Logger) (bool, error) {
	logger = logger.Named("seed")
	seeded := false

	err := repo.WithTransaction(ctx, func(tx *db.Repository) error {
		count, err := tx.CountCompanies(ctx)
		if err != nil {
			return fmt.Errorf("failed to count companies: %w", err)
		}
		if count > 0 {
			return nil
		}

		company := Demo
		company.ID = uuid.New()
		if err := tx.CreateCompany(ctx, &company); err != nil {
			return fmt.Errorf("failed to create demo company: %w", err)
		}
		if _, err := tx.ReplaceSelections(ctx, company.ID, demoStandards); err != nil {
			return fmt.Errorf("failed to select demo standards: %w", err)
		}
		if _, err := tx.AppendDocuments(ctx, company.ID, demoDocuments); err != nil {
			return fmt.Errorf("failed to store demo documents: %w", err)
		}

		logger.Info("Seeded demo company",
			zap.String("company_id", company.ID.String()),
			zap.String("name", company.Name),
		)
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !seeded {
		logger.Debug("Companies already present, skipping seed")
	}
	return seeded, nil
}
