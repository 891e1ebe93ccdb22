package aeff

import "fmt"

// #region checks
// Check is one validation outcome over a stored or computed result.
type Check struct {
	Name   string
	Pass   bool
	Detail string
}

// Validate runs lightweight consistency checks on a result: array
// alignment, factor ranges, and the derived factorization bound
// effectiveArea[i,:] <= geometric[i]*pexit[i]*pdecay[i] (the trigger
// factor only reduces the product further).
func Validate(a *EffectiveArea) []Check {
	var checks []Check

	bins := len(a.Elevation)
	aligned := len(a.N0) == bins && len(a.Geometric) == bins &&
		len(a.Pexit) == bins && len(a.Pdecay) == bins &&
		len(a.Ptrigger) == bins && len(a.EffectiveArea) == bins
	detail := ""
	if !aligned {
		detail = fmt.Sprintf("elevation has %d bins; other arrays disagree", bins)
	}
	checks = append(checks, Check{Name: "array_alignment", Pass: aligned, Detail: detail})
	if !aligned {
		return checks
	}

	checks = append(checks,
		probabilityRange("pexit", a.Pexit),
		probabilityRange("pdecay", a.Pdecay),
		probabilityRange("ptrigger", a.Ptrigger),
	)

	bound := Check{Name: "factorization_bound", Pass: true}
	for i := 0; i < bins; i++ {
		limit := a.Geometric[i]*a.Pexit[i]*a.Pdecay[i] + 1e-12
		for k, v := range a.EffectiveArea[i] {
			if v > limit*(1+1e-9) {
				bound.Pass = false
				bound.Detail = fmt.Sprintf(
					"bin %d azimuth %d: effective area %g exceeds factor product %g", i, k, v, limit)
				break
			}
		}
		if !bound.Pass {
			break
		}
	}
	checks = append(checks, bound)
	return checks
}

// AllPassed reports whether every check passed.
func AllPassed(checks []Check) bool {
	for _, c := range checks {
		if !c.Pass {
			return false
		}
	}
	return true
}

func probabilityRange(name string, xs []float64) Check {
	for i, x := range xs {
		if x < 0 || x > 1 {
			return Check{
				Name:   name + "_range",
				Pass:   false,
				Detail: fmt.Sprintf("bin %d: %s = %g outside [0, 1]", i, name, x),
			}
		}
	}
	return Check{Name: name + "_range", Pass: true}
}

// #endregion checks
