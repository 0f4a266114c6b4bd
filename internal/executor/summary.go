package executor

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/genomehub/busco-tracker/internal/store/model"
)

// BUSCO's short summary is free text; each field is pulled out with its
// own pattern. Missing individual fields default to zero/empty rather
// than failing the attempt: partial metrics are still useful.
var (
	lineageRe    = regexp.MustCompile(`lineage dataset is: (\S+)`)
	completeRe   = regexp.MustCompile(`C:(\d+(?:\.\d+)?)%`)
	singleRe     = regexp.MustCompile(`S:(\d+(?:\.\d+)?)%`)
	duplicatedRe = regexp.MustCompile(`D:(\d+(?:\.\d+)?)%`)
	fragmentedRe = regexp.MustCompile(`F:(\d+(?:\.\d+)?)%`)
	missingRe    = regexp.MustCompile(`M:(\d+(?:\.\d+)?)%`)
	countRe      = regexp.MustCompile(`(?i)(\d+)\s+total BUSCO`)
)

// ParseSummary locates the short_summary.*.txt report under outputDir and
// extracts the lineage plus the five percentage metrics and total count.
// A missing report is a hard error; absent fields are not.
func ParseSummary(outputDir string) (model.BuscoMetrics, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, "short_summary.*.txt"))
	if err != nil {
		return model.BuscoMetrics{}, err
	}
	if len(matches) == 0 {
		return model.BuscoMetrics{}, errors.Errorf("BUSCO summary file not found in %s", outputDir)
	}
	content, err := os.ReadFile(matches[0])
	if err != nil {
		return model.BuscoMetrics{}, errors.Wrap(err, "reading BUSCO summary")
	}

	m := model.BuscoMetrics{}
	if g := lineageRe.FindSubmatch(content); g != nil {
		m.Lineage = string(g[1])
	}
	m.Complete = matchFloat(completeRe, content)
	m.Single = matchFloat(singleRe, content)
	m.Duplicated = matchFloat(duplicatedRe, content)
	m.Fragmented = matchFloat(fragmentedRe, content)
	m.Missing = matchFloat(missingRe, content)
	if g := countRe.FindSubmatch(content); g != nil {
		m.BuscoCount, _ = strconv.Atoi(string(g[1]))
	}
	return m, nil
}

func matchFloat(re *regexp.Regexp, content []byte) float64 {
	g := re.FindSubmatch(content)
	if g == nil {
		return 0
	}
	f, err := strconv.ParseFloat(string(g[1]), 64)
	if err != nil {
		return 0
	}
	return f
}
