package web

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/JonMunkholm/fileconv/internal/core"
)

// Form and query keys for pipeline options. On the batch page each key is
// prefixed with the file id and a dot.
const (
	keySummary = "summary"
	keyDedupe  = "dedupe"
	keyImpute  = "impute"
	keyCorr    = "corr"
	keyColumns = "columns"
	keyChart   = "chart"
	keyFormat  = "format"
)

// optionsFromValues reads pipeline options from form values. Unchecked
// boxes are absent, so a missing key is false.
func optionsFromValues(v url.Values, prefix string) (core.Options, error) {
	format, err := core.ParseFormat(v.Get(prefix + keyFormat))
	if err != nil {
		return core.Options{}, fmt.Errorf("%w: %v", core.ErrInvalidOptions, err)
	}

	var columns []string
	for _, c := range v[prefix+keyColumns] {
		if c != "" {
			columns = append(columns, c)
		}
	}

	return core.Options{
		ShowSummary:      flag(v, prefix+keySummary),
		RemoveDuplicates: flag(v, prefix+keyDedupe),
		FillMissing:      flag(v, prefix+keyImpute),
		ShowCorrelation:  flag(v, prefix+keyCorr),
		Columns:          columns,
		ShowChart:        flag(v, prefix+keyChart),
		Format:           format,
	}, nil
}

// optionValues is the inverse of optionsFromValues for unprefixed keys.
// Only options that change the exported table or chart are encoded.
func optionValues(opts core.Options) url.Values {
	v := url.Values{}
	if opts.RemoveDuplicates {
		v.Set(keyDedupe, "on")
	}
	if opts.FillMissing {
		v.Set(keyImpute, "on")
	}
	for _, c := range opts.Columns {
		v.Add(keyColumns, c)
	}
	v.Set(keyFormat, string(opts.TargetFormat()))
	return v
}

func flag(v url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(v.Get(key))) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
