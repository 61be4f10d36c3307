package api

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/arbor/pkg/analysis"
	"github.com/matzehuels/arbor/pkg/arbor"
	errs "github.com/matzehuels/arbor/pkg/errors"
)

// parseOptions reads analysis options from query parameters on top of
// defaults. Invalid values are INVALID_INPUT errors; metric names and
// increments are checked later by the runner.
func parseOptions(q url.Values, defaults analysis.Options) (analysis.Options, error) {
	opts := analysis.Options{
		Metrics:         slices.Clone(defaults.Metrics),
		ShollIncrement:  defaults.ShollIncrement,
		RadialIncrement: defaults.RadialIncrement,
		Center:          defaults.Center,
		Sigma:           defaults.Sigma,
		Normalize:       defaults.Normalize,
		Collapse:        defaults.Collapse,
	}

	if v := q.Get("metrics"); v != "" {
		opts.Metrics = nil
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				opts.Metrics = append(opts.Metrics, m)
			}
		}
	}

	var err error
	if opts.ShollIncrement, err = parseFloat(q, "sholl_increment", opts.ShollIncrement); err != nil {
		return opts, err
	}
	if opts.RadialIncrement, err = parseFloat(q, "radial_increment", opts.RadialIncrement); err != nil {
		return opts, err
	}
	if opts.Sigma, err = parseFloat(q, "sigma", opts.Sigma); err != nil {
		return opts, err
	}
	if opts.Normalize, err = parseBool(q, "normalize", opts.Normalize); err != nil {
		return opts, err
	}
	if opts.Collapse, err = parseBool(q, "collapse", opts.Collapse); err != nil {
		return opts, err
	}
	if opts.Refresh, err = parseBool(q, "refresh", false); err != nil {
		return opts, err
	}
	if v := q.Get("center"); v != "" {
		p, err := ParsePoint(v)
		if err != nil {
			return opts, err
		}
		opts.Center = &p
	}
	return opts, nil
}

// ParsePoint parses "x,y,z".
func ParsePoint(s string) (arbor.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return arbor.Point{}, errs.New(errs.ErrCodeInvalidInput, "center must be x,y,z, got %q", s)
	}
	var xyz [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return arbor.Point{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "center coordinate %d", i+1)
		}
		xyz[i] = f
	}
	return arbor.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func parseFloat(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "parameter %s", name)
	}
	return f, nil
}

func parseBool(q url.Values, name string, def bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.Wrap(errs.ErrCodeInvalidInput, err, "parameter %s", name)
	}
	return b, nil
}
