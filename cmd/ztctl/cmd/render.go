package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/laughtale01/Scratch-sub001/pkg/authz"
	"github.com/laughtale01/Scratch-sub001/pkg/policy"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

var (
	allowFmt  = color.New(color.FgGreen, color.Bold).SprintFunc()
	denyFmt   = color.New(color.FgRed, color.Bold).SprintFunc()
	verifyFmt = color.New(color.FgYellow, color.Bold).SprintFunc()
	dimFmt    = color.New(color.Faint).SprintFunc()
)

func statusText(s authz.Status) string {
	switch s {
	case authz.StatusAuthorized:
		return allowFmt(string(s))
	case authz.StatusVerificationRequired:
		return verifyFmt(string(s))
	default:
		return denyFmt(string(s))
	}
}

func decisionText(d policy.Decision) string {
	switch d {
	case policy.Allow:
		return allowFmt(string(d))
	case policy.Deny:
		return denyFmt(string(d))
	default:
		return dimFmt(string(d))
	}
}

func levelText(l risk.Level) string {
	switch {
	case l >= risk.LevelHigh:
		return denyFmt(l.String())
	case l == risk.LevelMedium:
		return verifyFmt(l.String())
	default:
		return allowFmt(l.String())
	}
}

func listOrDash[T ~string](items []T) string {
	if len(items) == 0 {
		return dimFmt("-")
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = string(it)
	}
	return strings.Join(parts, ", ")
}

func writeResult(w io.Writer, res authz.Result) {
	fmt.Fprintf(w, "STATUS\t%s\n", statusText(res.Status))
	fmt.Fprintf(w, "REASON\t%s\n", res.Reason)
	if res.Code != "" {
		fmt.Fprintf(w, "CODE\t%s\n", res.Code)
	}
	if res.Decision != nil {
		fmt.Fprintf(w, "POLICY\t%s %s\n", decisionText(res.Decision.Decision), res.Decision.PolicyName())
	}
	if res.Assessment != nil {
		fmt.Fprintf(w, "RISK\t%.2f (%s)\n", res.Assessment.Score, levelText(res.Assessment.Level))
	}
	fmt.Fprintf(w, "VERIFICATIONS\t%s\n", listOrDash(res.Verifications))
	fmt.Fprintf(w, "REQUEST ID\t%s\n", dimFmt(res.RequestID))
}

func writeAssessment(w io.Writer, a risk.Assessment, weights risk.Weights) {
	fmt.Fprintln(w, "FACTOR\tSCORE\tWEIGHT")
	for _, row := range []struct {
		name   string
		score  int
		weight float64
	}{
		{"user", a.Factors.User, weights.User},
		{"network", a.Factors.Network, weights.Network},
		{"operation", a.Factors.Operation, weights.Operation},
		{"time", a.Factors.Time, weights.Time},
		{"session", a.Factors.Session, weights.Session},
		{"device", a.Factors.Device, weights.Device},
	} {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", row.name, row.score, row.weight)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "SCORE\t%.2f\n", a.Score)
	fmt.Fprintf(w, "LEVEL\t%s\n", levelText(a.Level))
	fmt.Fprintf(w, "VERIFICATIONS\t%s\n", listOrDash(a.Verifications))
	fmt.Fprintf(w, "INDICATORS\t%s\n", listOrDash(a.Indicators))
}

func writePolicies(w io.Writer, policies []policy.Policy) {
	fmt.Fprintln(w, "PRIORITY\tNAME\tDECISION\tCONDITION")
	for _, p := range policies {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.Priority, p.Name, decisionText(p.Decision), p.Condition.String())
	}
}

func writePolicyDecision(w io.Writer, d policy.PolicyDecision) {
	name := d.PolicyName()
	if name == "" {
		name = dimFmt("(default)")
	}
	fmt.Fprintf(w, "POLICY\t%s %s\n", decisionText(d.Decision), name)
	fmt.Fprintf(w, "POLICY REASON\t%s\n", d.Reason)
}
