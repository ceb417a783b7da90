package report

import (
	"encoding/json"
	"io"
	"runtime"
)

// Version is reported in the JSON metadata
var Version = "dev"

// JSONFormatter writes the RuboCop JSON report shape
type JSONFormatter struct{}

type jsonReport struct {
	Metadata jsonMetadata `json:"metadata"`
	Files    []jsonFile   `json:"files"`
	Summary  jsonSummary  `json:"summary"`
}

type jsonMetadata struct {
	Version   string `json:"paranoia_version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"go_platform"`
}

type jsonFile struct {
	Path     string        `json:"path"`
	Offenses []jsonOffense `json:"offenses"`
}

type jsonOffense struct {
	Severity    string       `json:"severity"`
	Message     string       `json:"message"`
	CopName     string       `json:"cop_name"`
	Corrected   bool         `json:"corrected"`
	Correctable bool         `json:"correctable"`
	Location    jsonLocation `json:"location"`
}

type jsonLocation struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	LastLine    int `json:"last_line"`
	LastColumn  int `json:"last_column"`
	Length      int `json:"length"`
	Line        int `json:"line"`
	Column      int `json:"column"`
}

type jsonSummary struct {
	OffenseCount       int `json:"offense_count"`
	TargetFileCount    int `json:"target_file_count"`
	InspectedFileCount int `json:"inspected_file_count"`
}

// Format implements Formatter
func (f *JSONFormatter) Format(w io.Writer, results []FileResult) error {
	summary := Summarize(results)
	doc := jsonReport{
		Metadata: jsonMetadata{
			Version:   Version,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		Files: make([]jsonFile, 0, len(results)),
		Summary: jsonSummary{
			OffenseCount:       summary.Offenses,
			TargetFileCount:    summary.TargetFiles,
			InspectedFileCount: summary.InspectedFiles,
		},
	}

	for _, result := range sorted(results) {
		file := jsonFile{Path: result.Path, Offenses: make([]jsonOffense, 0, len(result.Offenses))}
		for _, o := range result.Offenses {
			file.Offenses = append(file.Offenses, jsonOffense{
				Severity:    o.Severity.String(),
				Message:     o.Message,
				CopName:     o.CopName,
				Corrected:   o.Corrected,
				Correctable: o.Correctable,
				Location: jsonLocation{
					StartLine:   o.Start.Line,
					StartColumn: o.Start.Column + 1,
					LastLine:    o.End.Line,
					LastColumn:  o.End.Column,
					Length:      o.Range.Len(),
					Line:        o.Start.Line,
					Column:      o.Start.Column + 1,
				},
			})
		}
		doc.Files = append(doc.Files, file)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
