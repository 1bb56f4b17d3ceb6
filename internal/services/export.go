package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/arzan03/OnboardGate/internal/models"
	"golang.org/x/sync/errgroup"
)

const exportURLExpiry = 15 * time.Minute

// ObjectStore is implemented by storage.Minio.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, name string, expiry time.Duration) (string, error)
}

type Export struct {
	Object    string `json:"object"`
	URL       string `json:"url"`
	ExpiresIn string `json:"expiresIn"`
}

// ExportResponses writes every user account and its answers to a CSV
// object and returns a time-limited download link.
func (s *AdminService) ExportResponses(ctx context.Context) (Export, error) {
	if s.exports == nil {
		return Export{}, ErrExportDisabled
	}

	var (
		users     []models.User
		questions []models.Question
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.ListByRole(gctx, models.RoleUser)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = s.questions.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Export{}, fmt.Errorf("load export data: %w", err)
	}

	data, err := RenderResponsesCSV(users, questions)
	if err != nil {
		return Export{}, err
	}

	name := fmt.Sprintf("responses-%s.csv", s.now().UTC().Format("20060102T150405Z"))
	if err := s.exports.Put(ctx, name, data, "text/csv"); err != nil {
		return Export{}, err
	}

	url, err := s.exports.PresignedURL(ctx, name, exportURLExpiry)
	if err != nil {
		return Export{}, err
	}

	return Export{Object: name, URL: url, ExpiresIn: exportURLExpiry.String()}, nil
}

// RenderResponsesCSV writes one row per user with a column per question in
// questionnaire order. Answers to questions that are no longer in the
// questionnaire go to the trailing "other" column as id=answer pairs.
func RenderResponsesCSV(users []models.User, questions []models.Question) ([]byte, error) {
	header := []string{"id", "email", "status", "created_at"}
	column := make(map[string]int, len(questions))
	for _, q := range questions {
		header = append(header, q.Text)
		column[q.ID.Hex()] = len(header) - 1
	}
	header = append(header, "other")

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, u := range users {
		row := make([]string, len(header))
		row[0] = u.ID.Hex()
		row[1] = u.Email
		row[2] = string(u.Status)
		row[3] = u.CreatedAt.UTC().Format(time.RFC3339)

		var other []string
		for _, r := range u.Responses {
			if idx, ok := column[r.QuestionID]; ok {
				row[idx] = r.Answer
				continue
			}
			other = append(other, r.QuestionID+"="+r.Answer)
		}
		row[len(row)-1] = strings.Join(other, "; ")

		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
