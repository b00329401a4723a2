package synthload

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/vikashgd/liverTracker-sub000/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	documentSpacing    = 14 // days between a patient's consecutive reports
)

// labProfile describes how one metric is synthesized: value range plus
// the raw spellings and units the extractor might emit for it.
type labProfile struct {
	names []string
	units []string
	hint  string
	min   float64
	max   float64
}

// labProfiles covers the liver panel plus supporting chemistry. Ranges
// deliberately straddle reference limits so flags and score variation
// show up in read-back.
var labProfiles = []labProfile{
	{names: []string{"ALT", "SGPT", "Alanine Aminotransferase"}, units: []string{"U/L", "IU/L"}, hint: "LFT", min: 15, max: 180},
	{names: []string{"AST", "SGOT"}, units: []string{"U/L", "IU/L"}, hint: "LFT", min: 15, max: 200},
	{names: []string{"Total Bilirubin", "Bilirubin", "T. Bili"}, units: []string{"mg/dL", "µmol/L"}, hint: "LFT", min: 0.4, max: 6.0},
	{names: []string{"Albumin", "Serum Albumin"}, units: []string{"g/dL", "g/L"}, hint: "LFT", min: 2.2, max: 4.8},
	{names: []string{"Creatinine", "Serum Creatinine"}, units: []string{"mg/dL", "µmol/L"}, hint: "RFT", min: 0.6, max: 3.5},
	{names: []string{"INR"}, units: []string{"", "ratio"}, hint: "COAG", min: 0.9, max: 3.2},
	{names: []string{"Sodium", "Na", "Serum Sodium"}, units: []string{"mmol/L", "mEq/L"}, hint: "RFT", min: 122, max: 144},
	{names: []string{"Platelets", "Platelet Count", "PLT"}, units: []string{"10^9/L", "lakhs/cumm"}, hint: "CBC", min: 40, max: 350},
	{names: []string{"Hemoglobin", "Hb"}, units: []string{"g/dL"}, hint: "CBC", min: 7, max: 16},
}

// unresolvableNames occasionally injected to exercise the audit path.
var unresolvableNames = []string{"Serum Widget", "XYZ Factor", "Unlisted Assay"}

var confidences = []string{"low", "medium", "high", ""}

// randInt returns a random int in [0, n) using crypto/rand.
func randInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// randFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateDocuments creates DocsPerPat reports for each of NumPatients
// synthetic patients, spaced across the recent past.
func generateDocuments(ctx context.Context, config *Config, stats *Stats) ([]Document, error) {
	logger.Get().Info(ctx, "generating synthetic lab documents",
		logger.Int("patients", config.NumPatients),
		logger.Int("docsPerPatient", config.DocsPerPat))

	docs := make([]Document, 0, config.NumPatients*config.DocsPerPat)
	for p := 0; p < config.NumPatients; p++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		patientID := "synth-" + uuid.NewString()
		// Oldest report first; each subsequent one is documentSpacing days later.
		firstDate := time.Now().UTC().AddDate(0, 0, -documentSpacing*config.DocsPerPat)
		for d := 0; d < config.DocsPerPat; d++ {
			date := firstDate.AddDate(0, 0, documentSpacing*d)
			docs = append(docs, generateSingleDocument(patientID, date))
		}
	}

	stats.DocumentsGenerated = len(docs)
	logger.Get().Info(ctx, "generated documents successfully", logger.Int("count", len(docs)))
	return docs, nil
}

// generateSingleDocument builds one report dated on the given day.
func generateSingleDocument(patientID string, date time.Time) Document {
	doc := Document{
		DocumentID:   uuid.NewString(),
		PatientID:    patientID,
		DocumentDate: date.Format("2006-01-02"),
	}

	for _, profile := range labProfiles {
		// Roughly one metric in eight is absent from any given report.
		if randInt(8) == 0 {
			continue
		}
		value := profile.min + randFloat()*(profile.max-profile.min)
		cand := Candidate{
			Name:       profile.names[randInt(len(profile.names))],
			Value:      roundTo(value, 2),
			Unit:       profile.units[randInt(len(profile.units))],
			Confidence: confidences[randInt(len(confidences))],
		}
		// Converted-unit values need scaling so the canonical value stays
		// in the intended range.
		switch cand.Unit {
		case "µmol/L":
			if cand.Name == "Creatinine" || cand.Name == "Serum Creatinine" {
				cand.Value = roundTo(value*88.42, 1)
			} else {
				cand.Value = roundTo(value*17.1049, 1)
			}
		case "g/L":
			cand.Value = roundTo(value*10, 1)
		case "lakhs/cumm":
			cand.Value = roundTo(value/100, 2)
		}
		// Category hints show up on about half the candidates.
		if randInt(2) == 0 {
			cand.CategoryHint = profile.hint
		}
		doc.Candidates = append(doc.Candidates, cand)
	}

	// Duplicate one candidate under another alias now and then; the
	// consolidator should keep exactly one observation for it.
	if randInt(4) == 0 && len(doc.Candidates) > 0 {
		dup := doc.Candidates[randInt(len(doc.Candidates))]
		doc.Candidates = append(doc.Candidates, dup)
	}

	// Inject an unresolvable name on a minority of reports.
	if randInt(5) == 0 {
		doc.Candidates = append(doc.Candidates, Candidate{
			Name:  unresolvableNames[randInt(len(unresolvableNames))],
			Value: roundTo(randFloat()*100, 1),
			Unit:  "U/L",
		})
	}

	return doc
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+0.5)) / scale
}
