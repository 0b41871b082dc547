package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ResumeInput is one row of a batch input file.
type ResumeInput struct {
	ID   string
	Text string
}

// Row is the stable output schema for batch resume analysis.
type Row struct {
	ID           string
	Score        int
	Strengths    string
	Improvements string
	Outcome      string
	ErrorMessage string
	Status       string
	Error        string
}

// Header returns the stable CSV header for Row.
func Header() []string {
	return []string{
		"id",
		"score",
		"strengths",
		"improvements",
		"outcome",
		"error_message",
		"status",
		"error",
	}
}

// ReadResumesCSV reads the "resume" column and the optional "id" column. Rows without an
// id are numbered from 1 in file order.
func ReadResumesCSV(r io.Reader) ([]ResumeInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	resumeIdx, idIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "resume":
			if resumeIdx < 0 {
				resumeIdx = i
			}
		case "id":
			if idIdx < 0 {
				idIdx = i
			}
		}
	}
	if resumeIdx < 0 {
		return nil, fmt.Errorf("missing required column %q", "resume")
	}

	var out []ResumeInput
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if resumeIdx >= len(rec) {
			return nil, fmt.Errorf("row %d has %d columns, want at least %d", n, len(rec), resumeIdx+1)
		}
		id := ""
		if idIdx >= 0 && idIdx < len(rec) {
			id = strings.TrimSpace(rec[idIdx])
		}
		if id == "" {
			id = strconv.Itoa(n)
		}
		out = append(out, ResumeInput{ID: id, Text: rec[resumeIdx]})
	}
	return out, nil
}

// WriteCSV writes rows as a CSV with the stable Header() ordering.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range rows {
		score := ""
		if r.Status == statusOK {
			score = strconv.Itoa(r.Score)
		}
		if err := cw.Write([]string{
			r.ID,
			score,
			r.Strengths,
			r.Improvements,
			r.Outcome,
			r.ErrorMessage,
			r.Status,
			r.Error,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
