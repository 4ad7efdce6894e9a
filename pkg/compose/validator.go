// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"github.com/platform-engineering-labs/composa/pkg/model"
)

// InvariantRule is one structural check over the finished graph. Rules are
// independent and order-insensitive; each returns every violation it finds.
type InvariantRule struct {
	Name  string
	Check func(g *Graph) []model.Violation
}

// Validate runs the full rule table and collects all findings in one call,
// the way a configuration linter should: a user fixing an environment sees
// every problem in one run, not one per run.
//
// Validation is non-fatal at this layer. The findings are stored on the graph
// and returned; the caller decides whether any of them block emission.
func (g *Graph) Validate() []model.Violation {
	var violations []model.Violation
	for _, rule := range g.rules {
		violations = append(violations, rule.Check(g)...)
	}
	g.Violations = violations
	return violations
}
