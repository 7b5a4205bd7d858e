package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/termfx/hlebhint/internal/model"
	"github.com/termfx/hlebhint/internal/report"
	"github.com/termfx/hlebhint/models"
)

// ErrNoRun is returned when a root has no stored scan
var ErrNoRun = errors.New("no stored scan run")

const hintBatchSize = 500

// NewSession stores a new session. clientInfo may be nil.
func NewSession(db *gorm.DB, clientInfo any) (*models.Session, error) {
	session := &models.Session{ID: uuid.NewString()}
	if clientInfo != nil {
		raw, err := json.Marshal(clientInfo)
		if err != nil {
			return nil, fmt.Errorf("encode client info: %w", err)
		}
		session.ClientInfo = datatypes.JSON(raw)
	}
	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// UpdateClientInfo replaces the client info of a session
func UpdateClientInfo(db *gorm.DB, sessionID string, clientInfo any) error {
	raw, err := json.Marshal(clientInfo)
	if err != nil {
		return fmt.Errorf("encode client info: %w", err)
	}
	return db.Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("client_info", datatypes.JSON(raw)).Error
}

// EndSession stamps the end time of a session
func EndSession(db *gorm.DB, sessionID string) error {
	now := time.Now()
	return db.Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("ended_at", &now).Error
}

// SaveRun stores a scan with all its hints. sessionID may be empty.
func SaveRun(db *gorm.DB, sessionID string, result *model.ScanResult) (*models.ScanRun, error) {
	if result == nil {
		return nil, errors.New("save run: nil result")
	}

	summary, err := json.Marshal(Summary(result))
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}

	run := &models.ScanRun{
		ID:          uuid.NewString(),
		Root:        result.Root,
		Framework:   result.Framework,
		Digest:      report.Digest(result),
		FilesCount:  len(result.Files),
		HintsCount:  result.HintCount(),
		FailedCount: len(result.Failed()),
		DurationMs:  result.Duration.Milliseconds(),
		Summary:     datatypes.JSON(summary),
		Report:      strings.Join(report.Lines(result), "\n"),
	}
	if sessionID != "" {
		run.SessionID = &sessionID
	}
	hints := Hints(run.ID, result)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Hints").Create(run).Error; err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		if len(hints) > 0 {
			if err := tx.CreateInBatches(hints, hintBatchSize).Error; err != nil {
				return fmt.Errorf("create hints: %w", err)
			}
		}
		if sessionID != "" {
			return tx.Model(&models.Session{}).
				Where("id = ?", sessionID).
				UpdateColumn("scans_count", gorm.Expr("scans_count + ?", 1)).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// LatestRun returns the most recent run stored for root
func LatestRun(db *gorm.DB, root string) (*models.ScanRun, error) {
	var run models.ScanRun
	err := db.Where("root = ?", root).Order("created_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", root, ErrNoRun)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// RunHints loads the hints of a run in file and position order
func RunHints(db *gorm.DB, runID string) ([]models.Hint, error) {
	var hints []models.Hint
	err := db.Where("run_id = ?", runID).
		Order("file, line, \"column\", id").
		Find(&hints).Error
	return hints, err
}

// ReportLines splits a stored report back into lines
func ReportLines(run *models.ScanRun) []string {
	if run == nil || run.Report == "" {
		return nil
	}
	return strings.Split(run.Report, "\n")
}

// Summary counts hints per annotator source and reference kind
func Summary(result *model.ScanResult) map[string]int {
	counts := map[string]int{}
	for _, f := range result.Files {
		for _, ann := range f.Annotations {
			counts[ann.Source]++
		}
		for _, ref := range f.References {
			counts[string(ref.Kind)]++
		}
	}
	return counts
}

// Hints flattens a scan into rows. Lines and columns are stored 1-based.
func Hints(runID string, result *model.ScanResult) []models.Hint {
	var hints []models.Hint
	for _, f := range result.Files {
		for _, ann := range f.Annotations {
			hints = append(hints, models.Hint{
				RunID:   runID,
				File:    f.Path,
				Line:    ann.Range.Start.Line + 1,
				Column:  ann.Range.Start.Column + 1,
				Source:  ann.Source,
				Style:   ann.Style.String(),
				Tooltip: ann.Tooltip,
			})
		}
		for _, ref := range f.References {
			hints = append(hints, models.Hint{
				RunID:  runID,
				File:   f.Path,
				Line:   ref.Range.Start.Line + 1,
				Column: ref.Range.Start.Column + 1,
				Source: string(ref.Kind),
				Target: ref.Target,
			})
		}
	}
	return hints
}
